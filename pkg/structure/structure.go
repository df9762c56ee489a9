// Package structure creates new GateMate projects: the directory scaffold,
// the initial configuration document and the default constraint file.
package structure

import (
	"fmt"
	"os"
	"path/filepath"

	"ccpm/pkg/applog"
	"ccpm/pkg/config"
)

// Creator scaffolds one project.
type Creator struct {
	ProjectName string
	ProjectPath string
	Log         *applog.Logger
}

// New prepares a Creator. basePath "." resolves to a subdirectory named after
// the project under the working directory; any other path gets the project
// subdirectory appended.
func New(projectName, basePath string) (*Creator, error) {
	var projectPath string
	switch basePath {
	case "", ".":
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		projectPath = filepath.Join(cwd, projectName)
	default:
		abs, err := filepath.Abs(basePath)
		if err != nil {
			return nil, fmt.Errorf("invalid project path %q: %w", basePath, err)
		}
		projectPath = filepath.Join(abs, projectName)
	}
	if err := os.MkdirAll(projectPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory %s: %w", projectPath, err)
	}
	return &Creator{
		ProjectName: projectName,
		ProjectPath: projectPath,
		Log:         applog.New(filepath.Join(projectPath, "logs", "project_manager.log")),
	}, nil
}

// ConfigPath returns where the initial configuration document is written.
// Finalize later moves it into the config directory.
func (c *Creator) ConfigPath() string {
	return filepath.Join(c.ProjectPath, c.ProjectName+"_"+config.ConfigFileSuffix)
}

func (c *Creator) dir(parts ...string) []string {
	return []string{filepath.Join(append([]string{c.ProjectPath}, parts...)...)}
}

// BuildConfig assembles the initial configuration document for the project.
func (c *Creator) BuildConfig() *config.ProjectConfig {
	cfg := &config.ProjectConfig{
		ConfigVersion: config.CurrentConfigVersion,
		ProjectName:   c.ProjectName,
		ProjectPath:   c.ProjectPath,
		Structure: config.ProjectStructure{
			Env:         c.dir("env"),
			Logs:        c.dir("logs"),
			Build:       c.dir("build"),
			Constraints: c.dir("constraints"),
			Config:      c.dir("config"),
			Src:         c.dir("src"),
			Testbench:   c.dir("testbench"),
			Synth:       c.dir("synth"),
			Sim: config.SimDirs{
				Behavioral: c.dir("sim", "behavioral"),
				PostSynth:  c.dir("sim", "post-synthesis"),
				PostImpl:   c.dir("sim", "post-implementation"),
			},
			Impl: config.ImplDirs{
				Bitstream: c.dir("impl", "bitstream"),
				Netlist:   c.dir("impl", "netlist"),
				Timing:    c.dir("impl", "timing"),
				Logs:      c.dir("impl", "logs"),
			},
		},
		SetupFilesInitial: map[string][]string{
			"config_file": {c.ConfigPath(), filepath.Join(c.ProjectPath, "config")},
			"log_file":    {c.Log.Path(), filepath.Join(c.ProjectPath, "logs")},
		},
		Logs: map[string]map[string]string{
			"project_manager": {
				"project_manager.log": filepath.Join(c.ProjectPath, "logs", "project_manager.log"),
			},
		},
	}
	cfg.EnsureSections()
	return cfg
}

// CreateConfig writes the initial configuration document. An existing file is
// overwritten.
func (c *Creator) CreateConfig() error {
	path := c.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		c.Log.Warning("project configuration already exists, overwriting %s", path)
	}
	if err := config.Save(path, c.BuildConfig()); err != nil {
		c.Log.Error("error creating configuration file: %v", err)
		return err
	}
	c.Log.Info("project configuration file created at %s", path)
	return nil
}

// CreateDirs creates every directory declared by the configuration's
// project_structure section.
func (c *Creator) CreateDirs() error {
	cfg := config.Load(c.ConfigPath())
	if cfg.ProjectName == "" {
		return fmt.Errorf("no configuration file found at %s, run CreateConfig first", c.ConfigPath())
	}
	s := cfg.Structure
	groups := [][]string{
		s.Env, s.Logs, s.Build, s.Constraints, s.Config, s.Src, s.Testbench, s.Synth,
		s.Sim.Behavioral, s.Sim.PostSynth, s.Sim.PostImpl,
		s.Impl.Bitstream, s.Impl.Netlist, s.Impl.Timing, s.Impl.Logs,
	}
	for _, group := range groups {
		for _, dir := range group {
			if err := os.MkdirAll(dir, 0755); err != nil {
				c.Log.Error("failed to create directory %s: %v", dir, err)
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	c.Log.Info("project directory structure created at %s", c.ProjectPath)
	return nil
}

// Finalize moves the configuration document into the config directory and
// updates its recorded setup file locations. Called once, after the scaffold
// exists.
func (c *Creator) Finalize() (string, error) {
	oldPath := c.ConfigPath()
	cfg := config.Load(oldPath)
	if cfg.ProjectName == "" {
		return "", fmt.Errorf("project configuration not found at %s", oldPath)
	}
	cfg.EnsureSections()

	destDir := filepath.Join(c.ProjectPath, "config")
	if dirs := cfg.Structure.Config; len(dirs) > 0 {
		destDir = dirs[0]
	}
	newPath := filepath.Join(destDir, filepath.Base(oldPath))

	cfg.SetupFilesInitial["config_file"] = []string{newPath, destDir}
	if err := config.Save(newPath, cfg); err != nil {
		return "", err
	}
	if newPath != oldPath {
		if err := os.Remove(oldPath); err != nil {
			c.Log.Warning("failed to remove original configuration at %s: %v", oldPath, err)
		}
	}
	c.Log.Info("project configuration relocated to %s", newPath)
	return newPath, nil
}

// CreateProject runs the full creation sequence and returns the final
// configuration path.
func CreateProject(projectName, basePath string) (string, error) {
	creator, err := New(projectName, basePath)
	if err != nil {
		return "", err
	}
	if err := creator.CreateConfig(); err != nil {
		return "", err
	}
	if err := creator.CreateDirs(); err != nil {
		return "", err
	}
	return creator.Finalize()
}
