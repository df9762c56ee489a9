package tools

import (
	"fmt"
	"path/filepath"
	"sort"

	"ccpm/pkg/applog"
	"ccpm/pkg/config"
	"ccpm/pkg/toolchain"
)

// GHDL wraps the VHDL analyzer, elaborator and simulator.
type GHDL struct {
	Store    *config.Store
	Resolver *toolchain.Resolver
	Log      *applog.Logger

	// VHDLStd is the --std argument, default "08".
	VHDLStd string
	// IEEELib is the IEEE library flavor flag, default synopsys.
	IEEELib string
}

// NewGHDL builds the adapter and registers its log file in the configuration
// once.
func NewGHDL(store *config.Store, resolver *toolchain.Resolver) *GHDL {
	g := &GHDL{
		Store:    store,
		Resolver: resolver,
		Log:      adapterLog(store, "ghdl_commands"),
		VHDLStd:  "08",
		IEEELib:  "synopsys",
	}
	applog.RegisterFile(store, "ghdl_commands", g.Log)
	return g
}

func (g *GHDL) args(extra ...string) []string {
	base := []string{
		"--std=" + g.VHDLStd,
		"--ieee=" + g.IEEELib,
		"--workdir=" + g.Store.Config.BuildDir(),
	}
	return append(base, extra...)
}

// sourceFiles returns every tracked VHDL file (src, top, testbench) in a
// stable order for analysis.
func (g *GHDL) sourceFiles() []string {
	var files []string
	h := g.Store.Config.Hierarchy
	for _, entries := range []map[string]string{h.Src, h.Top, h.Testbench} {
		for _, path := range entries {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files
}

// Analyze runs ghdl -a over every tracked source file.
func (g *GHDL) Analyze() Result {
	access := g.Resolver.ResolveAccess(toolchain.GHDL)
	if access == "" {
		return unavailable(g.Log, toolchain.GHDL)
	}
	files := g.sourceFiles()
	if len(files) == 0 {
		g.Log.Error("no tracked VHDL sources to analyze")
		return Result{Err: fmt.Errorf("no tracked VHDL sources to analyze"), ExitCode: -1}
	}
	return run(g.Log, 0, access, append(g.args("-a"), files...)...)
}

// Elaborate runs ghdl -e for a design unit.
func (g *GHDL) Elaborate(unit string) Result {
	access := g.Resolver.ResolveAccess(toolchain.GHDL)
	if access == "" {
		return unavailable(g.Log, toolchain.GHDL)
	}
	return run(g.Log, 0, access, g.args("-e", unit)...)
}

// Simulate runs a testbench entity, writing a VCD waveform into the
// behavioral simulation directory and stopping at the given time.
func (g *GHDL) Simulate(testbench string, simTime int, timePrefix string) Result {
	access := g.Resolver.ResolveAccess(toolchain.GHDL)
	if access == "" {
		return unavailable(g.Log, toolchain.GHDL)
	}
	vcd := filepath.Join(g.Store.Config.BehavioralSimDir(), testbench+".vcd")
	return run(g.Log, 0, access, g.args(
		"-r", testbench,
		"--vcd="+vcd,
		fmt.Sprintf("--stop-time=%d%s", simTime, timePrefix),
	)...)
}

func adapterLog(store *config.Store, name string) *applog.Logger {
	dir := store.Config.LogsDir()
	if dir == "" {
		return applog.Discard()
	}
	return applog.New(filepath.Join(dir, name+".log"))
}

func unavailable(log *applog.Logger, tool string) Result {
	log.Error("%s is not available, run the toolchain check", tool)
	return Result{Err: fmt.Errorf("%s is not available", tool), ExitCode: -1}
}
