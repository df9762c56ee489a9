package hierarchy

import (
	"os"
	"path/filepath"

	"ccpm/pkg/config"
)

// Rebuild destructively re-derives the hierarchy from the src directory under
// the project's actual location, trusting the filesystem over stale
// configuration. It also rebases the configured src path, log paths and
// project_path onto ProjectDir, which repairs a project that was moved to a
// new path or drive. Returns false (with the previous hierarchy restored) if
// the configuration cannot be written.
func (m *Manager) Rebuild() bool {
	m.Log.Info("starting project hierarchy rebuild")

	srcDir := filepath.Join(m.ProjectDir, "src")
	if _, err := os.Stat(srcDir); err != nil {
		m.Log.Error("source directory does not exist at %s", srcDir)
		return false
	}

	files, err := ScanSourceDir(srcDir)
	if err != nil {
		m.Log.Error("failed to scan src directory: %v", err)
		return false
	}
	if len(files) == 0 {
		m.Log.Warning("no HDL sources found in src directory")
	}
	sorted := Categorize(files, srcDir)
	for _, f := range sorted.Unrecognized {
		m.Log.Warning("unrecognized HDL file format: %s", f)
	}

	cfg := m.cfg()
	oldHierarchy := cfg.Hierarchy

	cfg.Hierarchy = config.Hierarchy{
		Top:       sorted.Top,
		Testbench: sorted.Testbench,
		Src:       sorted.Src,
	}

	// Rebase the structure and log registry onto the actual location.
	if len(cfg.Structure.Src) > 0 {
		cfg.Structure.Src[0] = srcDir
	} else {
		cfg.Structure.Src = []string{srcDir}
	}
	logsDir := filepath.Join(m.ProjectDir, "logs")
	for category, logFiles := range cfg.Logs {
		for name, path := range logFiles {
			cfg.Logs[category][name] = filepath.Join(logsDir, filepath.Base(path))
		}
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		m.Log.Warning("failed to create logs directory at %s: %v", logsDir, err)
	}
	cfg.ProjectPath = m.ProjectDir

	if err := m.Store.Save(); err != nil {
		cfg.Hierarchy = oldHierarchy
		m.Log.Error("failed to write configuration, restored previous hierarchy: %v", err)
		return false
	}

	m.Log.Info("project hierarchy rebuild completed: %d src, %d testbench, %d top",
		len(sorted.Src), len(sorted.Testbench), len(sorted.Top))
	return true
}
