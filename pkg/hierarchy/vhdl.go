package hierarchy

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsVHDL reports whether name carries a VHDL source extension.
func IsVHDL(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".vhd") || strings.HasSuffix(lower, ".vhdl")
}

// IsTestbench reports whether name follows the testbench naming convention.
func IsTestbench(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, "_tb.vhd") || strings.HasSuffix(lower, "_tb.vhdl")
}

// IsTop reports whether name follows the top-module naming convention.
func IsTop(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, "_top.vhd") || strings.HasSuffix(lower, "_top.vhdl")
}

// Categorized is the result of sorting a source listing into hierarchy
// categories. Unrecognized holds files that matched no rule; they are
// excluded from every category.
type Categorized struct {
	Top          map[string]string
	Testbench    map[string]string
	Src          map[string]string
	Unrecognized []string
}

// Categorize applies the naming-convention rule to each file, pairing it with
// its path under srcDir. The checks run in a fixed priority order: the _tb
// suffix is tested before _top, so a name like foo_top_tb.vhd is a testbench.
func Categorize(files []string, srcDir string) Categorized {
	sorted := Categorized{
		Top:       map[string]string{},
		Testbench: map[string]string{},
		Src:       map[string]string{},
	}
	for _, file := range files {
		path := filepath.Join(srcDir, file)
		switch {
		case IsTestbench(file):
			sorted.Testbench[file] = path
		case IsTop(file):
			sorted.Top[file] = path
		case IsVHDL(file):
			sorted.Src[file] = path
		default:
			sorted.Unrecognized = append(sorted.Unrecognized, file)
		}
	}
	return sorted
}

// ScanSourceDir lists VHDL files directly inside dir (non-recursive), in
// lexical order.
func ScanSourceDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && IsVHDL(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
