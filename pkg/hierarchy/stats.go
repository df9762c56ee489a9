package hierarchy

import "os"

// Statistics is the project health summary surfaced to the user.
// MissingFiles counts hierarchy entries whose stored path no longer exists on
// disk, the primary drift signal.
type Statistics struct {
	TotalFiles           int
	MissingFiles         int
	SrcFiles             int
	TestbenchFiles       int
	TopFiles             int
	AvailableEntities    int
	AvailableTestbenches int
}

// Statistics computes file counts, missing-file count and derived entity
// counts for the current hierarchy.
func (m *Manager) Statistics() Statistics {
	stats := Statistics{}
	for _, cat := range categories {
		entries, _ := m.cfg().Hierarchy.Category(cat)
		switch cat {
		case "src":
			stats.SrcFiles = len(entries)
		case "testbench":
			stats.TestbenchFiles = len(entries)
		case "top":
			stats.TopFiles = len(entries)
		}
		stats.TotalFiles += len(entries)
		for _, path := range entries {
			if _, err := os.Stat(path); err != nil {
				stats.MissingFiles++
			}
		}
	}
	stats.AvailableEntities = len(m.AvailableEntities())
	stats.AvailableTestbenches = len(m.AvailableTestbenches())
	m.Log.Info("project statistics: %+v", stats)
	return stats
}

// FilesInfo returns the tracked files per category (file name -> path),
// copied so callers cannot mutate the hierarchy directly.
func (m *Manager) FilesInfo() map[string]map[string]string {
	info := map[string]map[string]string{}
	for _, cat := range categories {
		entries, _ := m.cfg().Hierarchy.Category(cat)
		copied := make(map[string]string, len(entries))
		for name, path := range entries {
			copied[name] = path
		}
		info[cat] = copied
	}
	return info
}
