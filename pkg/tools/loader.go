package tools

import (
	"fmt"
	"os"
	"time"

	"ccpm/pkg/applog"
	"ccpm/pkg/boards"
	"ccpm/pkg/config"
	"ccpm/pkg/toolchain"
)

// ProgramTimeout bounds device programming. Unlike synthesis, programming a
// wedged cable must not hang the front-end forever.
const ProgramTimeout = 120 * time.Second

// Programming modes accepted by Program.
const (
	ModeSRAM  = "sram"
	ModeFlash = "flash"
)

// Loader wraps openFPGALoader for programming GateMate boards.
type Loader struct {
	Store    *config.Store
	Resolver *toolchain.Resolver
	Log      *applog.Logger

	Timeout time.Duration
}

func NewLoader(store *config.Store, resolver *toolchain.Resolver) *Loader {
	l := &Loader{
		Store:    store,
		Resolver: resolver,
		Log:      adapterLog(store, "openfpgaloader"),
		Timeout:  ProgramTimeout,
	}
	applog.RegisterFile(store, "openfpgaloader", l.Log)
	return l
}

// Program loads a bitstream onto a board. mode selects volatile SRAM or
// persistent flash programming; the board must support it.
func (l *Loader) Program(board boards.Board, bitstreamPath, mode string) Result {
	access := l.Resolver.ResolveAccess(toolchain.OpenFPGALoader)
	if access == "" {
		return unavailable(l.Log, toolchain.OpenFPGALoader)
	}
	if mode != ModeSRAM && mode != ModeFlash {
		l.Log.Error("invalid programming mode %q, must be %s or %s", mode, ModeSRAM, ModeFlash)
		return Result{Err: fmt.Errorf("invalid programming mode %q", mode), ExitCode: -1}
	}
	if !board.SupportsMode(mode) {
		l.Log.Error("board %s does not support %s programming", board.Identifier, mode)
		return Result{Err: fmt.Errorf("board %s does not support %s programming", board.Identifier, mode), ExitCode: -1}
	}
	if _, err := os.Stat(bitstreamPath); err != nil {
		l.Log.Error("bitstream not found at %s", bitstreamPath)
		return Result{Err: fmt.Errorf("bitstream not found at %s", bitstreamPath), ExitCode: -1}
	}

	args := []string{"-b", board.Identifier}
	if mode == ModeFlash {
		args = append(args, "-f")
	}
	args = append(args, bitstreamPath)
	return run(l.Log, l.Timeout, access, args...)
}

// Detect lists devices visible to openFPGALoader.
func (l *Loader) Detect() Result {
	access := l.Resolver.ResolveAccess(toolchain.OpenFPGALoader)
	if access == "" {
		return unavailable(l.Log, toolchain.OpenFPGALoader)
	}
	return run(l.Log, l.Timeout, access, "--detect")
}
