// Package toolchain resolves how each external GateMate tool is invoked:
// by bare command name through the system PATH, or by an explicit binary
// path recorded in the project configuration.
package toolchain

import "runtime"

// Managed tool identifiers.
const (
	GHDL           = "ghdl"
	Yosys          = "yosys"
	PnR            = "p_r"
	OpenFPGALoader = "openfpgaloader"
)

// toolBinaries maps a tool identifier to its expected binary file name,
// before any platform suffix.
var toolBinaries = map[string]string{
	GHDL:           "ghdl",           // VHDL analyzer/elaborator, Yosys plugin
	Yosys:          "yosys",          // HDL synthesizer
	PnR:            "p_r",            // Cologne Chip place and route for GateMate A1
	OpenFPGALoader: "openFPGALoader", // universal FPGA programmer
}

// Tools returns the registered tool identifiers in a fixed order.
func Tools() []string {
	return []string{GHDL, Yosys, PnR, OpenFPGALoader}
}

// BinaryName returns the platform-suffixed binary file name expected for a
// tool, and whether the tool is registered.
func BinaryName(tool string) (string, bool) {
	name, ok := toolBinaries[tool]
	if !ok {
		return "", false
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name, true
}

// versionFlag returns the flag that makes a tool print its version.
// openFPGALoader uses a capitalized flag.
func versionFlag(tool string) string {
	if tool == OpenFPGALoader {
		return "--Version"
	}
	return "--version"
}
