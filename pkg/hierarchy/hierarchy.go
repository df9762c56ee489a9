// Package hierarchy maintains the categorized VHDL file mapping of a project:
// which files are sources, testbenches and the top module, and whether that
// mapping still agrees with the filesystem.
package hierarchy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ccpm/pkg/applog"
	"ccpm/pkg/config"
)

// ErrProjectNotInitialized is returned by write operations when no usable
// project structure exists. Proceeding would scatter files into the CLI's
// working directory.
var ErrProjectNotInitialized = errors.New("no valid project configuration found, create a project first")

// ErrAlreadyInitialized is returned by InitSources when the hierarchy section
// already exists in the configuration. Use Rebuild to re-derive it.
var ErrAlreadyInitialized = errors.New("project sources already initialized, use rebuild instead")

var categories = []string{"src", "testbench", "top"}

// Manager owns the hdl_project_hierarchy section of a project configuration.
type Manager struct {
	Store      *config.Store
	ProjectDir string
	Log        *applog.Logger
}

// New builds a Manager over an opened Store. projectDir is the directory the
// project actually lives in right now (normally the config file's project
// root); Rebuild trusts it over whatever paths the configuration remembers.
func New(store *config.Store, projectDir string) *Manager {
	logPath := ""
	if dir := store.Config.LogsDir(); dir != "" {
		logPath = filepath.Join(dir, "project_manager.log")
	}
	m := &Manager{
		Store:      store,
		ProjectDir: projectDir,
		Log:        applog.New(logPath),
	}
	applog.RegisterFile(store, "project_manager", m.Log)
	return m
}

func (m *Manager) cfg() *config.ProjectConfig {
	return m.Store.Config
}

// InitSources scans the configured source directory and writes the initial
// hierarchy. The guard is a persisted fact: once the hierarchy section exists
// in the configuration, InitSources refuses and Rebuild is the way to
// re-derive it.
func (m *Manager) InitSources() error {
	if m.cfg().Hierarchy.Exists() {
		m.Log.Error("attempted to initialize sources, but the hierarchy already exists")
		return ErrAlreadyInitialized
	}
	srcDir := m.cfg().SrcDir()
	if srcDir == "" {
		return ErrProjectNotInitialized
	}
	files, err := ScanSourceDir(srcDir)
	if err != nil {
		m.Log.Error("failed to find HDL sources in %s: %v", srcDir, err)
		return fmt.Errorf("failed to scan source directory %s: %w", srcDir, err)
	}
	sorted := Categorize(files, srcDir)
	for _, f := range sorted.Unrecognized {
		m.Log.Warning("unrecognized HDL file format: %s", f)
	}
	m.cfg().Hierarchy = config.Hierarchy{
		Top:       sorted.Top,
		Testbench: sorted.Testbench,
		Src:       sorted.Src,
	}
	if err := m.Store.Save(); err != nil {
		m.Log.Error("failed to write initial hierarchy: %v", err)
		return err
	}
	m.Log.Info("initialized project sources: %d src, %d testbench, %d top",
		len(sorted.Src), len(sorted.Testbench), len(sorted.Top))
	return nil
}

// AddFile adds a file to the hierarchy under the given category. With
// copyToProject the file is copied into the project's source (or testbench)
// directory, overwriting silently; otherwise the original path is stored
// by-reference. Returns the stored path.
func (m *Manager) AddFile(filePath, category string, copyToProject bool) (string, error) {
	m.Log.Info("adding file %s as %s, copy_to_project=%v", filePath, category, copyToProject)

	if !m.cfg().StructureReady() {
		m.Log.Error("no valid project structure, refusing to add %s", filePath)
		return "", ErrProjectNotInitialized
	}
	if _, ok := m.cfg().Hierarchy.Category(category); !ok {
		return "", fmt.Errorf("invalid file category %q, must be src, testbench or top", category)
	}
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("file does not exist: %s", filePath)
	}

	fileName := filepath.Base(filePath)
	destDir := m.cfg().SrcDir()
	if category == "testbench" {
		destDir = m.cfg().TestbenchDir()
	}

	storedPath := filePath
	if copyToProject {
		if err := os.MkdirAll(destDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", destDir, err)
		}
		destPath := filepath.Join(destDir, fileName)
		if _, err := os.Stat(destPath); err == nil {
			m.Log.Warning("file already exists at destination, overwriting: %s", destPath)
		}
		if err := copyFile(filePath, destPath); err != nil {
			m.Log.Error("failed to copy file: %v", err)
			return "", fmt.Errorf("failed to copy file: %w", err)
		}
		storedPath = destPath
	}

	m.cfg().EnsureSections()
	for _, other := range categories {
		if other == category {
			continue
		}
		if entries, _ := m.cfg().Hierarchy.Category(other); entries != nil {
			if _, dup := entries[fileName]; dup {
				m.Log.Warning("%s is already tracked under %s, it is now tracked in two categories", fileName, other)
			}
		}
	}
	entries, _ := m.cfg().Hierarchy.Category(category)
	entries[fileName] = storedPath

	if err := m.Store.Save(); err != nil {
		m.Log.Error("failed to persist hierarchy after adding %s: %v", fileName, err)
		return storedPath, err
	}
	m.Log.Info("added %s to %s section at %s", fileName, category, storedPath)
	return storedPath, nil
}

// RemovalResult reports the outcome of a single hierarchy removal. The file
// on disk is never touched.
type RemovalResult struct {
	Removed  bool
	Category string
	Path     string
	Message  string
}

// RemoveFile removes a file entry from the hierarchy. When category is empty
// all three categories are searched. The entry's file is left on disk.
func (m *Manager) RemoveFile(fileName, category string) RemovalResult {
	m.Log.Info("removing %s from project hierarchy, category=%q", fileName, category)

	search := categories
	if category != "" {
		search = []string{category}
	}
	for _, cat := range search {
		entries, ok := m.cfg().Hierarchy.Category(cat)
		if !ok || entries == nil {
			continue
		}
		path, found := entries[fileName]
		if !found {
			continue
		}
		delete(entries, fileName)
		if err := m.Store.Save(); err != nil {
			// Keep the in-memory removal so a retry of Save can succeed.
			m.Log.Error("failed to persist removal of %s: %v", fileName, err)
			return RemovalResult{
				Removed:  true,
				Category: cat,
				Path:     path,
				Message:  fmt.Sprintf("removed %s from %s, but saving the configuration failed: %v", fileName, cat, err),
			}
		}
		m.Log.Info("removed %s from %s category", fileName, cat)
		return RemovalResult{
			Removed:  true,
			Category: cat,
			Path:     path,
			Message:  fmt.Sprintf("successfully removed %s from %s category", fileName, cat),
		}
	}
	m.Log.Warning("file %s not found in project hierarchy", fileName)
	return RemovalResult{Message: fmt.Sprintf("file %s not found in project hierarchy", fileName)}
}

// RemovedFile identifies one entry removed by a batch operation.
type RemovedFile struct {
	Name     string
	Category string
	Path     string
}

// BatchRemoval summarizes RemoveFiles. A missing file does not abort the
// batch.
type BatchRemoval struct {
	Requested     int
	Removed       int
	NotFound      int
	RemovedFiles  []RemovedFile
	NotFoundFiles []string
}

// RemoveFiles applies RemoveFile per name, aggregating the results.
func (m *Manager) RemoveFiles(fileNames []string, category string) BatchRemoval {
	summary := BatchRemoval{Requested: len(fileNames)}
	for _, name := range fileNames {
		result := m.RemoveFile(name, category)
		if result.Removed {
			summary.Removed++
			summary.RemovedFiles = append(summary.RemovedFiles, RemovedFile{
				Name:     name,
				Category: result.Category,
				Path:     result.Path,
			})
		} else {
			summary.NotFound++
			summary.NotFoundFiles = append(summary.NotFoundFiles, name)
		}
	}
	m.Log.Info("batch removal complete: %d removed, %d not found", summary.Removed, summary.NotFound)
	return summary
}

// SetTop designates fileName (which must already exist in the scanned source
// directory) as the single top module, replacing any previous one.
func (m *Manager) SetTop(fileName string) error {
	return m.setSingle(fileName, "top")
}

// SetTestbench designates fileName as the single active testbench. This is
// the legacy single-testbench API; AddFile allows tracking several.
func (m *Manager) SetTestbench(fileName string) error {
	return m.setSingle(fileName, "testbench")
}

func (m *Manager) setSingle(fileName, category string) error {
	srcDir := m.cfg().SrcDir()
	if srcDir == "" {
		return ErrProjectNotInitialized
	}
	files, err := ScanSourceDir(srcDir)
	if err != nil {
		return fmt.Errorf("failed to scan source directory %s: %w", srcDir, err)
	}
	present := false
	for _, f := range files {
		if f == fileName {
			present = true
			break
		}
	}
	if !present {
		m.Log.Error("%s is not found in the source directory, add it first", fileName)
		return fmt.Errorf("%s is not found in %s, add it first", fileName, srcDir)
	}

	entry := map[string]string{fileName: filepath.Join(srcDir, fileName)}
	m.cfg().EnsureSections()
	if category == "top" {
		m.cfg().Hierarchy.Top = entry
	} else {
		m.cfg().Hierarchy.Testbench = entry
	}
	if err := m.Store.Save(); err != nil {
		return err
	}
	m.Log.Info("%s set to %s", category, fileName)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
