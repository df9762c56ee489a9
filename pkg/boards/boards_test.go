package boards

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ccpm", "boards_configuration.toml")

	cat, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("catalog file not created on first load")
	}
	if len(cat.Boards) != len(DefaultBoards()) {
		t.Errorf("catalog holds %d boards, want %d", len(cat.Boards), len(DefaultBoards()))
	}
	if _, ok := cat.Find("olimex_gatemateevb"); !ok {
		t.Error("default Olimex board missing")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards_configuration.toml")
	cat, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	custom := Board{
		Name:             "Bench Board",
		Identifier:       "bench_board",
		Interfaces:       []string{"jtag"},
		ProgrammingModes: []string{"sram"},
	}
	if err := cat.Add("bench_board", custom); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := reloaded.Find("bench_board")
	if !ok {
		t.Fatal("custom board lost on reload")
	}
	if got.Name != "Bench Board" || got.Identifier != "bench_board" {
		t.Errorf("reloaded board %+v", got)
	}
}

func TestLoadRestoresMissingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards_configuration.toml")
	if err := os.WriteFile(path, []byte("version = \"1.0.0\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cat.Find("gatemate_evb_jtag"); !ok {
		t.Error("missing default board not restored")
	}
}

func TestAddValidation(t *testing.T) {
	cat := &Catalog{Path: filepath.Join(t.TempDir(), "b.toml"), Boards: map[string]Board{}}
	if err := cat.Add("", Board{Identifier: "x"}); err == nil {
		t.Error("empty id accepted")
	}
	if err := cat.Add("x", Board{}); err == nil {
		t.Error("board without a programmer identifier accepted")
	}
}

func TestAddInitializesBoards(t *testing.T) {
	cat := &Catalog{Path: filepath.Join(t.TempDir(), "b.toml")}
	if err := cat.Add("bare", Board{Identifier: "bare_board"}); err != nil {
		t.Fatalf("Add on a fresh catalog: %v", err)
	}
	if _, ok := cat.Find("bare"); !ok {
		t.Error("board not stored")
	}
}

func TestSupportsMode(t *testing.T) {
	b := Board{ProgrammingModes: []string{"sram", "flash"}}
	if !b.SupportsMode("sram") || !b.SupportsMode("flash") {
		t.Error("declared modes not supported")
	}
	if b.SupportsMode("eeprom") {
		t.Error("undeclared mode supported")
	}
}

func TestIDsSorted(t *testing.T) {
	cat := &Catalog{Boards: map[string]Board{"zz": {}, "aa": {}, "mm": {}}}
	ids := cat.IDs()
	if len(ids) != 3 || ids[0] != "aa" || ids[1] != "mm" || ids[2] != "zz" {
		t.Errorf("ids = %v, want sorted order", ids)
	}
}
