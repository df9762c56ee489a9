package config

// Access preferences for external toolchain binaries.
const (
	AccessPath      = "PATH"
	AccessDirect    = "DIRECT"
	AccessUndefined = "UNDEFINED"
)

// CurrentConfigVersion is written into new configurations. A document without
// the field decodes as version 0 and is accepted as-is.
const CurrentConfigVersion = 1

// ProjectConfig is the root of the project configuration document
// (<name>_project_config.yml). Every component loads the whole document into
// memory and writes the whole document back after a mutation; there is no
// partial persistence.
type ProjectConfig struct {
	ConfigVersion int    `yaml:"config_version"`
	ProjectName   string `yaml:"project_name"`
	ProjectPath   string `yaml:"project_path"`

	Structure ProjectStructure `yaml:"project_structure"`
	Hierarchy Hierarchy        `yaml:"hdl_project_hierarchy"`

	ToolchainPaths      map[string]string `yaml:"cologne_chip_gatemate_toolchain_paths"`
	ToolchainPreference string            `yaml:"cologne_chip_gatemate_toolchain_preference"`
	ToolPreferences     map[string]string `yaml:"cologne_chip_gatemate_tool_preferences"`

	// Logs maps a log category to its known log files (file name -> path).
	Logs map[string]map[string]string `yaml:"logs"`

	SimulationSettings *SimulationSettings `yaml:"simulation_settings,omitempty"`
	SimulationConfig   *SimulationConfig   `yaml:"simulation_configuration,omitempty"`

	// SetupFilesInitial records where auxiliary generated files live
	// ([source, destination dir]) so they are created/moved at most once.
	SetupFilesInitial map[string][]string `yaml:"setup_files_initial"`
}

// ProjectStructure declares the canonical project directories. Each entry is a
// list of directory paths; only the first element is consulted, the list form
// is the on-disk schema.
type ProjectStructure struct {
	Env         []string `yaml:"env"`
	Logs        []string `yaml:"logs"`
	Build       []string `yaml:"build"`
	Constraints []string `yaml:"constraints"`
	Config      []string `yaml:"config"`
	Src         []string `yaml:"src"`
	Testbench   []string `yaml:"testbench"`
	Synth       []string `yaml:"synth"`
	Sim         SimDirs  `yaml:"sim"`
	Impl        ImplDirs `yaml:"impl"`
}

type SimDirs struct {
	Behavioral []string `yaml:"behavioral"`
	PostSynth  []string `yaml:"post-synthesis"`
	PostImpl   []string `yaml:"post-implementation"`
}

type ImplDirs struct {
	Bitstream []string `yaml:"bitstream"`
	Netlist   []string `yaml:"netlist"`
	Timing    []string `yaml:"timing"`
	Logs      []string `yaml:"logs"`
}

// Hierarchy is the categorized VHDL file mapping (file name -> path).
// The top category holds at most one entry at a time.
type Hierarchy struct {
	Top       map[string]string `yaml:"top"`
	Testbench map[string]string `yaml:"testbench"`
	Src       map[string]string `yaml:"src"`
}

// SimulationSettings is the legacy flat settings pair.
type SimulationSettings struct {
	SimulationTime int    `yaml:"simulation_time"`
	TimePrefix     string `yaml:"time_prefix"`
}

// SimulationConfig is the richer settings section with named profiles.
type SimulationConfig struct {
	DefaultSettings       SimulationSettings           `yaml:"default_simulation_settings"`
	CurrentSettings       SimulationSettings           `yaml:"current_simulation_settings"`
	SupportedTimePrefixes []string                     `yaml:"supported_time_prefixes"`
	Profiles              map[string]SimulationProfile `yaml:"simulation_profiles"`
	UserProfiles          map[string]SimulationProfile `yaml:"user_simulation_profiles,omitempty"`
}

type SimulationProfile struct {
	SimulationTime int    `yaml:"simulation_time"`
	TimePrefix     string `yaml:"time_prefix"`
	Description    string `yaml:"description"`
}

// Exists reports whether the hierarchy section has ever been written. A
// freshly initialized hierarchy round-trips as empty maps, not nil ones, so
// this doubles as the persisted "sources initialized" fact.
func (h Hierarchy) Exists() bool {
	return h.Top != nil || h.Testbench != nil || h.Src != nil
}

// Category returns the mapping for a hierarchy category name.
func (h *Hierarchy) Category(name string) (map[string]string, bool) {
	switch name {
	case "top":
		return h.Top, true
	case "testbench":
		return h.Testbench, true
	case "src":
		return h.Src, true
	}
	return nil, false
}

func first(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

// SrcDir returns the configured source directory, or "" if unconfigured.
func (c *ProjectConfig) SrcDir() string { return first(c.Structure.Src) }

// TestbenchDir returns the configured testbench directory.
func (c *ProjectConfig) TestbenchDir() string { return first(c.Structure.Testbench) }

// LogsDir returns the configured logs directory.
func (c *ProjectConfig) LogsDir() string { return first(c.Structure.Logs) }

// BuildDir returns the configured build directory.
func (c *ProjectConfig) BuildDir() string { return first(c.Structure.Build) }

// SynthDir returns the configured synthesis output directory.
func (c *ProjectConfig) SynthDir() string { return first(c.Structure.Synth) }

// ConstraintsDir returns the configured constraints directory.
func (c *ProjectConfig) ConstraintsDir() string { return first(c.Structure.Constraints) }

// NetlistDir returns the implementation netlist directory.
func (c *ProjectConfig) NetlistDir() string { return first(c.Structure.Impl.Netlist) }

// BitstreamDir returns the implementation bitstream directory.
func (c *ProjectConfig) BitstreamDir() string { return first(c.Structure.Impl.Bitstream) }

// BehavioralSimDir returns the behavioral simulation output directory.
func (c *ProjectConfig) BehavioralSimDir() string { return first(c.Structure.Sim.Behavioral) }
