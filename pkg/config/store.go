package config

import (
	"path/filepath"
)

// Store couples a loaded configuration with the file it came from. Components
// share one Store per logical manager; each mutation is written back through
// Save (read-modify-write, single-writer model).
type Store struct {
	Path   string
	Config *ProjectConfig
}

// Open locates the project configuration under startDir and loads it.
// Returns ErrNotFound when no project exists.
func Open(startDir string) (*Store, error) {
	path, err := FindConfigPath(startDir)
	if err != nil {
		return nil, err
	}
	return &Store{Path: path, Config: Load(path)}, nil
}

// NewStore loads the configuration at an explicit path. The load is lenient:
// a missing or unparseable file produces an empty configuration.
func NewStore(path string) *Store {
	return &Store{Path: path, Config: Load(path)}
}

// Save flushes the in-memory configuration back to disk.
func (s *Store) Save() error {
	return Save(s.Path, s.Config)
}

// Dir returns the directory holding the configuration file.
func (s *Store) Dir() string {
	return filepath.Dir(s.Path)
}
