package hierarchy

import (
	"path/filepath"
	"testing"
)

func TestParseEntityName(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"plain.vhd", "library ieee;\nentity counter is\nend counter;\n", "counter"},
		{"upper.vhd", "ENTITY Blink IS\nEND;\n", "Blink"},
		{"indented.vhd", "  \tentity uart_rx is\n", "uart_rx"},
		{"second_line.vhd", "-- a counter\nentity c8 is end;\n", "c8"},
		{"none.vhd", "architecture rtl of counter is\nbegin\nend;\n", ""},
		{"empty.vhd", "", ""},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, tc.name)
		write(t, path, tc.content)
		if got := ParseEntityName(path); got != tc.want {
			t.Errorf("%s: parsed %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseEntityNameMissingFile(t *testing.T) {
	if got := ParseEntityName(filepath.Join(t.TempDir(), "ghost.vhd")); got != "" {
		t.Errorf("parsed %q from a missing file", got)
	}
}

func TestAvailableEntities(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"counter.vhd":    "entity counter is end;",
		"blink_top.vhd":  "entity blink is end;",
		"counter_tb.vhd": "entity counter_tb is end;",
		// no declaration, falls back to the file name stem
		"mystery.vhd": "-- nothing here\n",
	})
	if err := m.InitSources(); err != nil {
		t.Fatal(err)
	}

	got := m.AvailableEntities()
	want := []string{"blink", "counter", "mystery"}
	if len(got) != len(want) {
		t.Fatalf("entities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entities = %v, want %v", got, want)
		}
	}
}

func TestAvailableTestbenches(t *testing.T) {
	m := newTestManager(t, map[string]string{
		"counter.vhd":    "entity counter is end;",
		"counter_tb.vhd": "entity counter_tb is end;",
		"sys_top.vhd":    "entity sys is end;",
		// lands in the top category but still counts as a testbench because
		// its name contains _tb
		"sys_tb_top.vhd": "entity sys_tb is end;",
	})
	if err := m.InitSources(); err != nil {
		t.Fatal(err)
	}

	got := m.AvailableTestbenches()
	want := []string{"counter_tb", "sys_tb"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("testbenches = %v, want %v", got, want)
	}
}
