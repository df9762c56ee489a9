package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"ccpm/pkg/applog"
	"ccpm/pkg/config"
	"ccpm/pkg/toolchain"
)

// PnR wraps the Cologne Chip place-and-route tool for GateMate A1.
type PnR struct {
	Store    *config.Store
	Resolver *toolchain.Resolver
	Log      *applog.Logger
}

func NewPnR(store *config.Store, resolver *toolchain.Resolver) *PnR {
	p := &PnR{
		Store:    store,
		Resolver: resolver,
		Log:      adapterLog(store, "pnr_commands"),
	}
	applog.RegisterFile(store, "pnr_commands", p.Log)
	return p
}

// ConstraintFilePath returns the project's default constraint file location.
func (p *PnR) ConstraintFilePath() string {
	cfg := p.Store.Config
	return filepath.Join(cfg.ConstraintsDir(), cfg.ProjectName+".ccf")
}

// EnsureDefaultConstraintFile writes a commented constraint file skeleton if
// none exists yet. Existing files are never overwritten.
func (p *PnR) EnsureDefaultConstraintFile() error {
	path := p.ConstraintFilePath()
	if path == ".ccf" || p.Store.Config.ConstraintsDir() == "" {
		return fmt.Errorf("constraints directory is not configured")
	}
	if _, err := os.Stat(path); err == nil {
		p.Log.Info("constraint file already exists at %s", path)
		return nil
	}
	content := "# Default constraint file for " + p.Store.Config.ProjectName + "\n" +
		"# Pin assignments, e.g.:\n" +
		"# Pin_in \"clk\" Loc = \"IO_SB_A8\";\n"
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create constraints directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		p.Log.Error("failed to create default constraint file: %v", err)
		return fmt.Errorf("failed to create default constraint file: %w", err)
	}
	p.Log.Info("created default constraint file at %s", path)
	return nil
}

// PlaceAndRoute runs p_r on the synthesized netlist of topEntity, placing
// bitstream and reports under the impl directories.
func (p *PnR) PlaceAndRoute(topEntity string) Result {
	access := p.Resolver.ResolveAccess(toolchain.PnR)
	if access == "" {
		return unavailable(p.Log, toolchain.PnR)
	}
	cfg := p.Store.Config
	netlist := filepath.Join(cfg.SynthDir(), topEntity+"_synth.v")
	if _, err := os.Stat(netlist); err != nil {
		p.Log.Error("netlist not found at %s, run synthesis first", netlist)
		return Result{Err: fmt.Errorf("netlist not found at %s, run synthesis first", netlist), ExitCode: -1}
	}
	output := filepath.Join(cfg.BitstreamDir(), topEntity)
	args := []string{"-i", netlist, "-o", output}
	if ccf := p.ConstraintFilePath(); exists(ccf) {
		args = append(args, "-ccf", ccf)
	} else {
		p.Log.Warning("no constraint file at %s, placing without pin constraints", p.ConstraintFilePath())
	}
	return run(p.Log, 0, access, args...)
}

// BitstreamPath returns where PlaceAndRoute emits the configuration
// bitstream for an entity.
func (p *PnR) BitstreamPath(topEntity string) string {
	return filepath.Join(p.Store.Config.BitstreamDir(), topEntity+"_00.cfg")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
