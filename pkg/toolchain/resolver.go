package toolchain

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ccpm/pkg/applog"
	"ccpm/pkg/config"
)

// DefaultProbeTimeout bounds tool version probes. Availability checks must
// never hang the front-end on a wedged binary.
const DefaultProbeTimeout = 10 * time.Second

// RunFunc executes a command and returns its combined output. It is a field
// of Resolver so tests can substitute the external processes.
type RunFunc func(timeout time.Duration, name string, args ...string) (string, error)

// Resolver decides and records, per managed tool, whether it is invoked via
// the system PATH or a configured direct path.
type Resolver struct {
	Store *config.Store
	Log   *applog.Logger

	// Run executes probe commands; defaults to a real subprocess call.
	Run          RunFunc
	ProbeTimeout time.Duration
}

// New builds a Resolver over an opened Store.
func New(store *config.Store) *Resolver {
	logPath := ""
	if dir := store.Config.LogsDir(); dir != "" {
		logPath = filepath.Join(dir, "toolchain_manager.log")
	}
	r := &Resolver{
		Store:        store,
		Log:          applog.New(logPath),
		Run:          runCommand,
		ProbeTimeout: DefaultProbeTimeout,
	}
	applog.RegisterFile(store, "toolchain_manager", r.Log)
	return r
}

func runCommand(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

func (r *Resolver) cfg() *config.ProjectConfig {
	return r.Store.Config
}

// Preference returns the access preference for a tool: the per-tool override
// when set, else the global preference, else PATH.
func (r *Resolver) Preference(tool string) string {
	if _, ok := toolBinaries[tool]; !ok {
		r.Log.Error("unknown tool: %s", tool)
		return config.AccessUndefined
	}
	if pref, ok := r.cfg().ToolPreferences[tool]; ok && pref != "" {
		return pref
	}
	if pref := r.cfg().ToolchainPreference; pref != "" {
		return pref
	}
	return config.AccessPath
}

// SetPreference records a per-tool access preference and persists it.
func (r *Resolver) SetPreference(tool, preference string) bool {
	preference = strings.ToUpper(preference)
	switch preference {
	case config.AccessPath, config.AccessDirect, config.AccessUndefined:
	default:
		r.Log.Error("invalid preference %s for %s", preference, tool)
		return false
	}
	if _, ok := toolBinaries[tool]; !ok {
		r.Log.Error("unknown tool: %s", tool)
		return false
	}
	r.cfg().EnsureSections()
	r.cfg().ToolPreferences[tool] = preference
	if err := r.Store.Save(); err != nil {
		r.Log.Error("failed to persist preference for %s: %v", tool, err)
		return false
	}
	r.Log.Info("set %s preference to %s", tool, preference)
	return true
}

// SetGlobalPreference is the legacy all-tools preference setter.
func (r *Resolver) SetGlobalPreference(preference string) bool {
	preference = strings.ToUpper(preference)
	switch preference {
	case config.AccessPath, config.AccessDirect, config.AccessUndefined:
	default:
		r.Log.Error("invalid toolchain preference %s", preference)
		return false
	}
	r.cfg().ToolchainPreference = preference
	ok := true
	for _, tool := range Tools() {
		if !r.SetPreference(tool, preference) {
			ok = false
		}
	}
	r.Log.Info("set all tools to preference %s", preference)
	return ok
}

// ResolveAccess returns the string to invoke a tool with: the configured
// direct path when the DIRECT preference is set and usable, otherwise the
// bare command name for PATH lookup. A misconfigured direct path degrades to
// PATH with a warning, never to an empty command. Only an unknown tool or the
// UNDEFINED preference yields "".
func (r *Resolver) ResolveAccess(tool string) string {
	bin, ok := BinaryName(tool)
	if !ok {
		r.Log.Error("unknown tool: %s", tool)
		return ""
	}
	switch r.Preference(tool) {
	case config.AccessDirect:
		path := r.cfg().ToolchainPaths[tool]
		if path != "" && exists(path) {
			return path
		}
		r.Log.Warning("%s preference is DIRECT but the configured path is unusable, falling back to PATH", tool)
		return bin
	case config.AccessUndefined:
		r.Log.Warning("%s preference is UNDEFINED, tool may not be available", tool)
		return ""
	default:
		return bin
	}
}

// ProbePath checks whether a tool answers a version probe through the system
// PATH.
func (r *Resolver) ProbePath(tool string) bool {
	bin, ok := BinaryName(tool)
	if !ok {
		return false
	}
	out, err := r.Run(r.ProbeTimeout, bin, versionFlag(tool))
	if err != nil {
		r.Log.Debug("%s PATH check failed: %v", tool, err)
		return false
	}
	r.Log.Debug("%s PATH check successful: %.100s", tool, out)
	return true
}

// ProbeDirect checks whether the configured direct path for a tool exists
// and answers a version probe.
func (r *Resolver) ProbeDirect(tool string) bool {
	if _, ok := toolBinaries[tool]; !ok {
		return false
	}
	path := r.cfg().ToolchainPaths[tool]
	if path == "" || !exists(path) {
		return false
	}
	out, err := r.Run(r.ProbeTimeout, path, versionFlag(tool))
	if err != nil {
		r.Log.Debug("%s DIRECT check failed: %v", tool, err)
		return false
	}
	r.Log.Debug("%s DIRECT check successful: %.100s", tool, out)
	return true
}

// CheckToolchain probes every registered tool through both access modes and
// records the outcome. Overall success requires every tool to answer through
// at least one mode. The global preference becomes PATH when all tools work
// through PATH (PATH is preferred when both modes work), DIRECT when the
// toolchain is only complete through direct paths, and UNDEFINED on failure.
// Per-tool preferences are set to whichever mode each tool answered on.
func (r *Resolver) CheckToolchain() bool {
	r.cfg().EnsureSections()

	allPath, allDirect, allAvailable := true, true, true
	for _, tool := range Tools() {
		pathOK := r.ProbePath(tool)
		directOK := r.ProbeDirect(tool)

		switch {
		case pathOK:
			r.cfg().ToolPreferences[tool] = config.AccessPath
		case directOK:
			r.cfg().ToolPreferences[tool] = config.AccessDirect
		default:
			r.cfg().ToolPreferences[tool] = config.AccessUndefined
			r.Log.Error("%s: neither PATH nor DIRECT access available", tool)
		}
		if pathOK {
			r.Log.Info("%s is available through PATH", tool)
		}
		if directOK {
			r.Log.Info("%s is available through direct path", tool)
		}

		allPath = allPath && pathOK
		allDirect = allDirect && directOK
		allAvailable = allAvailable && (pathOK || directOK)
	}

	switch {
	case allPath:
		r.cfg().ToolchainPreference = config.AccessPath
	case allAvailable && allDirect:
		r.cfg().ToolchainPreference = config.AccessDirect
	case allAvailable:
		// Mixed availability: the global preference stays PATH and the
		// per-tool preferences recorded above carry the exceptions.
		r.cfg().ToolchainPreference = config.AccessPath
	default:
		r.cfg().ToolchainPreference = config.AccessUndefined
	}

	if err := r.Store.Save(); err != nil {
		r.Log.Error("failed to persist toolchain check results: %v", err)
	}

	if !allAvailable {
		r.Log.Error("toolchain check failed, at least one tool is unreachable")
		return false
	}
	r.Log.Info("toolchain check complete, all tools available (global preference %s)", r.cfg().ToolchainPreference)
	return true
}

// AddToolPath validates and records a direct binary path for a tool. The
// path's file name must match the tool's expected binary name and the path
// must exist. Validation failures log the cause and return false, they never
// raise.
func (r *Resolver) AddToolPath(tool, path string) bool {
	bin, ok := BinaryName(tool)
	if !ok {
		r.Log.Error("%s is not a managed tool, supported tools are %v", tool, Tools())
		return false
	}
	cleaned := filepath.Clean(strings.TrimSpace(path))
	if !strings.EqualFold(filepath.Base(cleaned), bin) {
		r.Log.Error("mismatch between tool %s and binary name %s, expected %s", tool, filepath.Base(cleaned), bin)
		return false
	}
	if !exists(cleaned) {
		r.Log.Error("tool path does not exist for %s at %s", tool, cleaned)
		return false
	}
	r.cfg().EnsureSections()
	r.cfg().ToolchainPaths[tool] = cleaned
	if err := r.Store.Save(); err != nil {
		r.Log.Error("failed to persist tool path for %s: %v", tool, err)
		return false
	}
	r.Log.Info("added %s at %s to project configuration", tool, cleaned)
	return true
}

// CheckGHDLYosysLink queries the resolved Yosys binary for its GHDL plugin.
// This is a soft diagnostic: a negative result is a warning, it never blocks
// CheckToolchain.
func (r *Resolver) CheckGHDLYosysLink() bool {
	access := r.ResolveAccess(Yosys)
	if access == "" {
		r.Log.Error("yosys is not available, cannot check GHDL plugin")
		return false
	}
	out, err := r.Run(r.ProbeTimeout, access, "-p", "help ghdl")
	if err != nil {
		r.Log.Error("error querying the yosys binary for the GHDL plugin: %v", err)
		return false
	}
	keywords := []string{"analyse", "elaborate", "vhdl standard", "ghdl [options] unit [arch]"}
	lower := strings.ToLower(out)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			r.Log.Info("GHDL plugin is available in Yosys")
			return true
		}
	}
	r.Log.Warning("GHDL plugin may not be properly installed in Yosys")
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
