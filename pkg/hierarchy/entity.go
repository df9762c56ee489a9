package hierarchy

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ParseEntityName scans a VHDL file line by line for a declaration beginning
// with the token "entity" and returns the following token as the entity name.
// This is a heuristic, not a VHDL parser: only the first entity in a file is
// found. Returns "" when no declaration exists or the file cannot be read.
func ParseEntityName(filePath string) string {
	f, err := os.Open(filePath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && strings.EqualFold(fields[0], "entity") {
			return fields[1]
		}
	}
	return ""
}

// AvailableEntities returns the sorted, de-duplicated entity names declared
// by the src and top files. Files without a parseable declaration fall back
// to their name stem.
func (m *Manager) AvailableEntities() []string {
	seen := map[string]bool{}
	for _, entries := range []map[string]string{m.cfg().Hierarchy.Src, m.cfg().Hierarchy.Top} {
		for name, path := range entries {
			if !IsVHDL(name) {
				continue
			}
			entity := ParseEntityName(path)
			if entity == "" {
				entity = stem(name)
			}
			seen[entity] = true
		}
	}
	return sortedKeys(seen)
}

// AvailableTestbenches returns the sorted testbench entity names: everything
// in the testbench category, plus top-category files whose name contains
// "_tb".
func (m *Manager) AvailableTestbenches() []string {
	seen := map[string]bool{}
	collect := func(name, path string) {
		entity := ParseEntityName(path)
		if entity == "" {
			entity = stem(name)
		}
		seen[entity] = true
	}
	for name, path := range m.cfg().Hierarchy.Testbench {
		if IsVHDL(name) {
			collect(name, path)
		}
	}
	for name, path := range m.cfg().Hierarchy.Top {
		if IsVHDL(name) && strings.Contains(strings.ToLower(name), "_tb") {
			collect(name, path)
		}
	}
	return sortedKeys(seen)
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
