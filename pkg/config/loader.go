package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no project configuration file exists under the
// searched directory. Callers should treat it as "no project here", not as a
// failure.
var ErrNotFound = errors.New("project configuration file not found")

// ConfigFileSuffix is the file name suffix every project configuration file
// carries, e.g. "blink_project_config.yml".
const ConfigFileSuffix = "project_config.yml"

// FindConfigPath searches rootDir recursively for the first file whose name
// ends in ConfigFileSuffix. filepath.WalkDir visits entries in lexical order,
// so the result is deterministic for a given tree.
func FindConfigPath(rootDir string) (string, error) {
	var found string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ConfigFileSuffix) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("error searching for project configuration in %q: %w", rootDir, err)
	}
	if found == "" {
		return "", ErrNotFound
	}
	return found, nil
}

// FindAllProjects recursively finds all project configuration files under
// rootDir and returns their paths in lexical order.
func FindAllProjects(rootDir string) ([]string, error) {
	var configs []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ConfigFileSuffix) {
			configs = append(configs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %q: %w", rootDir, err)
	}
	return configs, nil
}

// Load parses the configuration document at path. A missing file or a parse
// failure yields an empty configuration rather than an error: downstream code
// treats missing sections as "not yet initialized".
func Load(path string) *ProjectConfig {
	cfg := &ProjectConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ProjectConfig{}
	}
	return cfg
}

// Save serializes the full configuration back to path, overwriting the file.
// The in-memory configuration is left untouched on failure so the caller can
// retry.
func Save(path string, cfg *ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize project configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project configuration to %s: %w", path, err)
	}
	return nil
}

// EnsureSections lazily initializes the map-valued sections a component is
// about to write into, without clobbering data already present. Returns true
// if anything was created.
func (c *ProjectConfig) EnsureSections() bool {
	changed := false
	if c.Hierarchy.Top == nil {
		c.Hierarchy.Top = map[string]string{}
		changed = true
	}
	if c.Hierarchy.Testbench == nil {
		c.Hierarchy.Testbench = map[string]string{}
		changed = true
	}
	if c.Hierarchy.Src == nil {
		c.Hierarchy.Src = map[string]string{}
		changed = true
	}
	if c.ToolchainPaths == nil {
		c.ToolchainPaths = map[string]string{}
		changed = true
	}
	if c.ToolPreferences == nil {
		c.ToolPreferences = map[string]string{}
		changed = true
	}
	if c.Logs == nil {
		c.Logs = map[string]map[string]string{}
		changed = true
	}
	if c.SetupFilesInitial == nil {
		c.SetupFilesInitial = map[string][]string{}
		changed = true
	}
	return changed
}

// StructureReady reports whether the project structure section describes a
// usable project: source and testbench directories configured, and neither
// pointing at the process working directory. Write operations must check this
// before touching the filesystem so an uninitialized project never dumps
// files into the CLI's own directory.
func (c *ProjectConfig) StructureReady() bool {
	srcDir := c.SrcDir()
	tbDir := c.TestbenchDir()
	if srcDir == "" || tbDir == "" {
		return false
	}
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}
	for _, dir := range []string{srcDir, tbDir} {
		if dir == "." || filepath.Clean(dir) == filepath.Clean(cwd) {
			return false
		}
	}
	return true
}
