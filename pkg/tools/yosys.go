package tools

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"ccpm/pkg/applog"
	"ccpm/pkg/config"
	"ccpm/pkg/toolchain"
)

// Yosys wraps synthesis through the Yosys GHDL plugin, targeting the
// GateMate architecture.
type Yosys struct {
	Store    *config.Store
	Resolver *toolchain.Resolver
	Log      *applog.Logger

	VHDLStd string
}

func NewYosys(store *config.Store, resolver *toolchain.Resolver) *Yosys {
	y := &Yosys{
		Store:    store,
		Resolver: resolver,
		Log:      adapterLog(store, "yosys_commands"),
		VHDLStd:  "08",
	}
	applog.RegisterFile(store, "yosys_commands", y.Log)
	return y
}

// Synthesize elaborates the design with the GHDL plugin and runs
// synth_gatemate, emitting the netlist into the synth directory.
func (y *Yosys) Synthesize(topEntity string) Result {
	access := y.Resolver.ResolveAccess(toolchain.Yosys)
	if access == "" {
		return unavailable(y.Log, toolchain.Yosys)
	}

	var files []string
	h := y.Store.Config.Hierarchy
	for _, entries := range []map[string]string{h.Src, h.Top} {
		for _, path := range entries {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		y.Log.Error("no synthesizable sources tracked in the hierarchy")
		return Result{Err: fmt.Errorf("no synthesizable sources tracked in the hierarchy"), ExitCode: -1}
	}

	netlist := filepath.Join(y.Store.Config.SynthDir(), topEntity+"_synth.v")
	script := fmt.Sprintf("ghdl --std=%s %s -e %s; synth_gatemate -top %s -vlog %s",
		y.VHDLStd, strings.Join(files, " "), topEntity, topEntity, netlist)

	return run(y.Log, 0, access, "-p", script)
}

// NetlistPath returns where Synthesize places the netlist for an entity.
func (y *Yosys) NetlistPath(topEntity string) string {
	return filepath.Join(y.Store.Config.SynthDir(), topEntity+"_synth.v")
}
