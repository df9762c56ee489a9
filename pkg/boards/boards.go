// Package boards maintains the global FPGA board catalog consumed by the
// programming adapter. Boards are shared across projects, so the catalog
// lives in the user configuration directory rather than in any project's
// config file.
package boards

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Board describes one programmable target board.
type Board struct {
	Name             string   `toml:"name"`
	Description      string   `toml:"description"`
	Manufacturer     string   `toml:"manufacturer"`
	FPGAFamily       string   `toml:"fpga_family"`
	Identifier       string   `toml:"openfpgaloader_identifier"`
	Interfaces       []string `toml:"supported_interfaces"`
	DefaultInterface string   `toml:"default_interface"`
	ProgrammingModes []string `toml:"programming_modes"`
	Verified         bool     `toml:"verified"`
	Notes            string   `toml:"notes,omitempty"`
}

// SupportsMode reports whether the board supports a programming mode
// ("sram" or "flash").
func (b Board) SupportsMode(mode string) bool {
	for _, m := range b.ProgrammingModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Catalog is the persisted board collection.
type Catalog struct {
	Path    string           `toml:"-"`
	Version string           `toml:"version"`
	Boards  map[string]Board `toml:"boards"`
}

// DefaultPath returns the catalog location under the user configuration
// directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user configuration directory: %w", err)
	}
	return filepath.Join(base, "ccpm", "boards_configuration.toml"), nil
}

// Load reads the catalog at path, creating it with the default boards when it
// does not exist yet. Boards missing from an existing file (e.g. after a
// truncated write) are restored from the defaults.
func Load(path string) (*Catalog, error) {
	cat := &Catalog{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read board catalog at %s: %w", path, err)
		}
		cat.Version = "1.0.0"
		cat.Boards = DefaultBoards()
		if err := cat.Save(); err != nil {
			return nil, err
		}
		return cat, nil
	}
	if err := toml.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("failed to parse board catalog at %s: %w", path, err)
	}
	if cat.Boards == nil {
		cat.Boards = map[string]Board{}
	}
	changed := false
	for id, board := range DefaultBoards() {
		if _, ok := cat.Boards[id]; !ok {
			cat.Boards[id] = board
			changed = true
		}
	}
	if changed {
		if err := cat.Save(); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// Save writes the catalog back to its path.
func (c *Catalog) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize board catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	if err := os.WriteFile(c.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write board catalog to %s: %w", c.Path, err)
	}
	return nil
}

// Find returns the board registered under id.
func (c *Catalog) Find(id string) (Board, bool) {
	b, ok := c.Boards[id]
	return b, ok
}

// IDs returns the registered board identifiers in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Boards))
	for id := range c.Boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Add registers or replaces a board and persists the catalog.
func (c *Catalog) Add(id string, board Board) error {
	if id == "" || board.Identifier == "" {
		return fmt.Errorf("board id and openFPGALoader identifier are required")
	}
	if c.Boards == nil {
		c.Boards = map[string]Board{}
	}
	c.Boards[id] = board
	return c.Save()
}

// DefaultBoards returns the built-in GateMate board definitions.
func DefaultBoards() map[string]Board {
	return map[string]Board{
		"olimex_gatemateevb": {
			Name:             "Olimex GateMate EVB",
			Description:      "Olimex GateMate Evaluation Board",
			Manufacturer:     "Olimex",
			FPGAFamily:       "GateMate",
			Identifier:       "olimex_gatemateevb",
			Interfaces:       []string{"jtag", "spi"},
			DefaultInterface: "auto",
			ProgrammingModes: []string{"sram", "flash"},
			Verified:         true,
			Notes:            "Default board - well tested and supported",
		},
		"gatemate_evb_jtag": {
			Name:             "Cologne Chip GateMate EVB (JTAG)",
			Description:      "Cologne Chip GateMate FPGA Evaluation Board (JTAG mode)",
			Manufacturer:     "Cologne Chip",
			FPGAFamily:       "GateMate",
			Identifier:       "gatemate_evb_jtag",
			Interfaces:       []string{"jtag"},
			DefaultInterface: "jtag",
			ProgrammingModes: []string{"sram", "flash"},
			Verified:         true,
			Notes:            "Official Cologne Chip evaluation board - JTAG interface",
		},
		"gatemate_evb_spi": {
			Name:             "Cologne Chip GateMate EVB (SPI)",
			Description:      "Cologne Chip GateMate FPGA Evaluation Board (SPI mode)",
			Manufacturer:     "Cologne Chip",
			FPGAFamily:       "GateMate",
			Identifier:       "gatemate_evb_spi",
			Interfaces:       []string{"spi"},
			DefaultInterface: "spi",
			ProgrammingModes: []string{"sram", "flash"},
			Verified:         true,
			Notes:            "Official Cologne Chip evaluation board - SPI interface",
		},
		"gatemate_pgm_spi": {
			Name:             "Cologne Chip GateMate Programmer (SPI)",
			Description:      "Cologne Chip GateMate FPGA Programmer (SPI mode)",
			Manufacturer:     "Cologne Chip",
			FPGAFamily:       "GateMate",
			Identifier:       "gatemate_pgm_spi",
			Interfaces:       []string{"spi"},
			DefaultInterface: "spi",
			ProgrammingModes: []string{"sram", "flash"},
			Verified:         true,
			Notes:            "Official Cologne Chip FPGA programmer - SPI interface",
		},
	}
}
