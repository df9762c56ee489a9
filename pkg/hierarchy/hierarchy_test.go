package hierarchy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ccpm/pkg/config"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// newTestManager scaffolds a minimal project under a temp directory with the
// given files dropped into src/.
func newTestManager(t *testing.T, srcFiles map[string]string) *Manager {
	t.Helper()
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	tbDir := filepath.Join(dir, "testbench")
	for _, d := range []string{srcDir, tbDir, filepath.Join(dir, "logs"), filepath.Join(dir, "config")} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	for name, content := range srcFiles {
		write(t, filepath.Join(srcDir, name), content)
	}

	cfgPath := filepath.Join(dir, "config", "demo_project_config.yml")
	cfg := &config.ProjectConfig{
		ConfigVersion: config.CurrentConfigVersion,
		ProjectName:   "demo",
		ProjectPath:   dir,
		Structure: config.ProjectStructure{
			Src:       []string{srcDir},
			Testbench: []string{tbDir},
			Logs:      []string{filepath.Join(dir, "logs")},
		},
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatal(err)
	}
	return New(config.NewStore(cfgPath), dir)
}

func TestNewRegistersLogFile(t *testing.T) {
	m := newTestManager(t, nil)

	loaded := config.Load(m.Store.Path)
	want := filepath.Join(m.cfg().LogsDir(), "project_manager.log")
	if loaded.Logs["project_manager"]["project_manager.log"] != want {
		t.Errorf("logs registry = %+v, want project_manager at %q", loaded.Logs, want)
	}

	New(config.NewStore(m.Store.Path), m.ProjectDir)
	if len(config.Load(m.Store.Path).Logs["project_manager"]) != 1 {
		t.Error("re-registration changed the registry")
	}
}

func TestInitSources(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"counter.vhd":    "entity counter is end;",
		"blink_top.vhd":  "entity blink is end;",
		"counter_tb.vhd": "entity counter_tb is end;",
	})

	if err := m.InitSources(); err != nil {
		t.Fatalf("InitSources: %v", err)
	}
	h := m.cfg().Hierarchy
	if len(h.Src) != 1 || len(h.Top) != 1 || len(h.Testbench) != 1 {
		t.Fatalf("hierarchy = %+v", h)
	}

	// The guard is persisted: a fresh manager over the same file must refuse.
	reloaded := New(config.NewStore(m.Store.Path), m.ProjectDir)
	if err := reloaded.InitSources(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("re-initialization after reload: got %v, want ErrAlreadyInitialized", err)
	}
}

func TestInitSourcesEmptyDirStillInitializes(t *testing.T) {
	m := newTestManager(t, nil)
	if err := m.InitSources(); err != nil {
		t.Fatalf("InitSources on empty src: %v", err)
	}
	if !m.cfg().Hierarchy.Exists() {
		t.Error("hierarchy section not created for an empty source directory")
	}
	if err := m.InitSources(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second InitSources: got %v, want ErrAlreadyInitialized", err)
	}
}

func TestAddFileCopies(t *testing.T) {
	m := newTestManager(t, nil)
	external := filepath.Join(t.TempDir(), "uart.vhd")
	write(t, external, "entity uart is end;")

	stored, err := m.AddFile(external, "src", true)
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	want := filepath.Join(m.cfg().SrcDir(), "uart.vhd")
	if stored != want {
		t.Errorf("stored %q, want copy at %q", stored, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Error("file was not copied into the project")
	}
	if _, err := os.Stat(external); err != nil {
		t.Error("original file disappeared")
	}

	loaded := config.Load(m.Store.Path)
	if loaded.Hierarchy.Src["uart.vhd"] != want {
		t.Error("hierarchy entry not persisted")
	}
}

func TestAddFileByReference(t *testing.T) {
	m := newTestManager(t, nil)
	external := filepath.Join(t.TempDir(), "spi_tb.vhd")
	write(t, external, "entity spi_tb is end;")

	stored, err := m.AddFile(external, "testbench", false)
	if err != nil {
		t.Fatal(err)
	}
	if stored != external {
		t.Errorf("stored %q, want the original path %q", stored, external)
	}
	if _, err := os.Stat(filepath.Join(m.cfg().TestbenchDir(), "spi_tb.vhd")); err == nil {
		t.Error("by-reference add still copied the file")
	}
}

func TestAddFileTestbenchGoesToTestbenchDir(t *testing.T) {
	m := newTestManager(t, nil)
	external := filepath.Join(t.TempDir(), "alu_tb.vhd")
	write(t, external, "entity alu_tb is end;")

	stored, err := m.AddFile(external, "testbench", true)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(stored) != m.cfg().TestbenchDir() {
		t.Errorf("testbench copied to %q, want %q", filepath.Dir(stored), m.cfg().TestbenchDir())
	}
}

func TestAddFileValidation(t *testing.T) {
	m := newTestManager(t, nil)
	existing := filepath.Join(t.TempDir(), "x.vhd")
	write(t, existing, "")

	if _, err := m.AddFile(existing, "sources", true); err == nil {
		t.Error("invalid category accepted")
	}
	if _, err := m.AddFile(filepath.Join(t.TempDir(), "ghost.vhd"), "src", true); err == nil {
		t.Error("nonexistent file accepted")
	}
}

func TestAddFileRefusesWithoutStructure(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bare_project_config.yml")
	if err := config.Save(cfgPath, &config.ProjectConfig{ProjectName: "bare"}); err != nil {
		t.Fatal(err)
	}
	m := New(config.NewStore(cfgPath), filepath.Dir(cfgPath))

	existing := filepath.Join(t.TempDir(), "x.vhd")
	write(t, existing, "")
	if _, err := m.AddFile(existing, "src", true); !errors.Is(err, ErrProjectNotInitialized) {
		t.Errorf("got %v, want ErrProjectNotInitialized", err)
	}
}

func TestRemoveFileKeepsFileOnDisk(t *testing.T) {
	m := newTestManager(t, map[string]string{"counter.vhd": "entity counter is end;"})
	if err := m.InitSources(); err != nil {
		t.Fatal(err)
	}
	onDisk := filepath.Join(m.cfg().SrcDir(), "counter.vhd")

	result := m.RemoveFile("counter.vhd", "src")
	if !result.Removed || result.Category != "src" {
		t.Fatalf("removal result %+v", result)
	}
	if _, err := os.Stat(onDisk); err != nil {
		t.Error("removal deleted the file on disk")
	}
	if config.Load(m.Store.Path).Hierarchy.Src["counter.vhd"] != "" {
		t.Error("entry still present after persisted removal")
	}
}

func TestRemoveFileSearchesAllCategories(t *testing.T) {
	m := newTestManager(t, map[string]string{"blink_top.vhd": "entity blink is end;"})
	if err := m.InitSources(); err != nil {
		t.Fatal(err)
	}

	result := m.RemoveFile("blink_top.vhd", "")
	if !result.Removed || result.Category != "top" {
		t.Errorf("category-less removal: %+v", result)
	}

	missing := m.RemoveFile("nothere.vhd", "")
	if missing.Removed {
		t.Error("removal of an untracked file reported success")
	}
}

func TestRemoveFiles(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"a.vhd": "entity a is end;",
		"b.vhd": "entity b is end;",
	})
	if err := m.InitSources(); err != nil {
		t.Fatal(err)
	}

	summary := m.RemoveFiles([]string{"a.vhd", "ghost.vhd", "b.vhd"}, "src")
	if summary.Removed != 2 || summary.NotFound != 1 {
		t.Errorf("batch summary %+v", summary)
	}
	if len(summary.NotFoundFiles) != 1 || summary.NotFoundFiles[0] != "ghost.vhd" {
		t.Errorf("not-found list %v", summary.NotFoundFiles)
	}
}

func TestSetTopReplacesPrevious(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"first_top.vhd":  "entity first is end;",
		"second_top.vhd": "entity second is end;",
	})
	if err := m.SetTop("first_top.vhd"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetTop("second_top.vhd"); err != nil {
		t.Fatal(err)
	}
	top := m.cfg().Hierarchy.Top
	if len(top) != 1 {
		t.Fatalf("top category holds %d entries, want exactly 1: %v", len(top), top)
	}
	if _, ok := top["second_top.vhd"]; !ok {
		t.Errorf("top = %v, want second_top.vhd", top)
	}
}

func TestSetTopRequiresFileInSrc(t *testing.T) {
	m := newTestManager(t, nil)
	if err := m.SetTop("ghost_top.vhd"); err == nil {
		t.Error("SetTop accepted a file absent from the source directory")
	}
}

func TestSetTestbench(t *testing.T) {
	m := newTestManager(t, map[string]string{"uart_tb.vhd": "entity uart_tb is end;"})
	if err := m.SetTestbench("uart_tb.vhd"); err != nil {
		t.Fatal(err)
	}
	tb := m.cfg().Hierarchy.Testbench
	if len(tb) != 1 || tb["uart_tb.vhd"] == "" {
		t.Errorf("testbench = %v", tb)
	}
}

func TestStatisticsCountsMissingFiles(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"counter.vhd":    "entity counter is end;",
		"counter_tb.vhd": "entity counter_tb is end;",
	})
	if err := m.InitSources(); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(m.cfg().SrcDir(), "counter.vhd")); err != nil {
		t.Fatal(err)
	}

	stats := m.Statistics()
	if stats.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", stats.TotalFiles)
	}
	if stats.MissingFiles != 1 {
		t.Errorf("MissingFiles = %d, want 1", stats.MissingFiles)
	}
	if stats.SrcFiles != 1 || stats.TestbenchFiles != 1 {
		t.Errorf("per-category counts %+v", stats)
	}
}

func TestFilesInfoReturnsCopies(t *testing.T) {
	m := newTestManager(t, map[string]string{"a.vhd": "entity a is end;"})
	if err := m.InitSources(); err != nil {
		t.Fatal(err)
	}
	info := m.FilesInfo()
	delete(info["src"], "a.vhd")
	if _, ok := m.cfg().Hierarchy.Src["a.vhd"]; !ok {
		t.Error("mutating FilesInfo result changed the hierarchy")
	}
}
