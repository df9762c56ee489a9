package hierarchy

// Detected holds files present on disk but absent from the hierarchy,
// already categorized by the naming convention. Files under the testbench
// directory are always detected as testbenches.
type Detected struct {
	Src       map[string]string
	Testbench map[string]string
	Top       map[string]string
}

// Total counts all detected files.
func (d Detected) Total() int {
	return len(d.Src) + len(d.Testbench) + len(d.Top)
}

// DetectManualFiles scans the configured source and testbench directories and
// returns VHDL files that are not tracked in any hierarchy category. Nothing
// is mutated; AddDetectedFiles merges a chosen subset.
func (m *Manager) DetectManualFiles() Detected {
	m.Log.Info("detecting manually added files in project directories")

	detected := Detected{
		Src:       map[string]string{},
		Testbench: map[string]string{},
		Top:       map[string]string{},
	}

	tracked := func(name string) bool {
		for _, cat := range categories {
			if entries, _ := m.cfg().Hierarchy.Category(cat); entries != nil {
				if _, ok := entries[name]; ok {
					return true
				}
			}
		}
		return false
	}

	scan := func(dir string, forceTestbench bool) {
		if dir == "" {
			return
		}
		files, err := ScanSourceDir(dir)
		if err != nil {
			m.Log.Error("error scanning directory %s: %v", dir, err)
			return
		}
		sorted := Categorize(files, dir)
		for name, path := range sorted.Testbench {
			if !tracked(name) {
				detected.Testbench[name] = path
			}
		}
		for name, path := range sorted.Top {
			if tracked(name) {
				continue
			}
			if forceTestbench {
				detected.Testbench[name] = path
			} else {
				detected.Top[name] = path
			}
		}
		for name, path := range sorted.Src {
			if tracked(name) {
				continue
			}
			if forceTestbench {
				detected.Testbench[name] = path
			} else {
				detected.Src[name] = path
			}
		}
	}

	scan(m.cfg().SrcDir(), false)
	if tbDir := m.cfg().TestbenchDir(); tbDir != m.cfg().SrcDir() {
		scan(tbDir, true)
	}

	m.Log.Info("detection complete: %d untracked files found", detected.Total())
	return detected
}

// AddedSummary reports how many detected files were merged per category.
type AddedSummary struct {
	Src       int
	Testbench int
	Top       int
	Total     int
}

// AddDetectedFiles merges the chosen categories of a detection result into
// the hierarchy and persists. A nil categoriesToAdd means all three.
func (m *Manager) AddDetectedFiles(detected Detected, categoriesToAdd []string) (AddedSummary, error) {
	if categoriesToAdd == nil {
		categoriesToAdd = categories
	}
	summary := AddedSummary{}
	m.cfg().EnsureSections()

	for _, cat := range categoriesToAdd {
		var pending map[string]string
		switch cat {
		case "src":
			pending = detected.Src
		case "testbench":
			pending = detected.Testbench
		case "top":
			pending = detected.Top
		default:
			continue
		}
		entries, _ := m.cfg().Hierarchy.Category(cat)
		for name, path := range pending {
			entries[name] = path
			switch cat {
			case "src":
				summary.Src++
			case "testbench":
				summary.Testbench++
			case "top":
				summary.Top++
			}
			summary.Total++
			m.Log.Info("added detected file %s to %s", name, cat)
		}
	}

	if summary.Total > 0 {
		if err := m.Store.Save(); err != nil {
			m.Log.Error("error persisting detected files: %v", err)
			return summary, err
		}
		m.Log.Info("added %d detected files to project hierarchy", summary.Total)
	}
	return summary, nil
}
