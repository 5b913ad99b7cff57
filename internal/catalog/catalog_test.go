package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

func fixtureTables() Tables {
	return Tables{
		SystemRates: map[string]map[string]map[string]float64{
			"Aluprof": {
				"MB-70": {"Tilt & Turn": 44, "Fixed": 28},
			},
			"Schuco": {
				"ASS 77": {"OXXO": 36},
			},
		},
		LaborRates:  map[string]float64{"Fixed": 4.5, "Hinged": 22},
		GlassPrices: map[string]float64{"Low-E": 15.5},
	}
}

func TestSystemRate_CatalogEntryWins(t *testing.T) {
	var buf bytes.Buffer
	c := New(fixtureTables(), WithLogger(zerolog.New(&buf)))

	if got := c.SystemRate(systemWindows, "Aluprof", "MB-70", "Tilt & Turn"); got != 44 {
		t.Fatalf("SystemRate = %v, want 44", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no fallback log, got %s", buf.String())
	}
}

func TestSystemRate_WindowsFallbackLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	c := New(fixtureTables(), WithLogger(zerolog.New(&buf)))

	if got := c.SystemRate(systemWindows, "Aluprof", "MB-70", "Casement"); got != 32 {
		t.Fatalf("Casement fallback = %v, want 32", got)
	}
	if got := c.SystemRate(systemWindows, "Unknown", "X", "Hopper"); got != 30 {
		t.Fatalf("unknown window fallback = %v, want 30", got)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) || !strings.Contains(buf.String(), "Casement") {
		t.Fatalf("expected warn log for fallback, got %s", buf.String())
	}
}

func TestSystemRate_EntranceDoorsFallback(t *testing.T) {
	c := New(Tables{})

	cases := map[string]float64{
		"Single Door": 70,
		"Double Door": 75,
		"Pivot Door":  85,
		"Fixed":       32,
		"French Door": 70,
	}
	for key, want := range cases {
		if got := c.SystemRate(systemEntranceDoors, "b", "m", key); got != want {
			t.Fatalf("%s = %v, want %v", key, got, want)
		}
	}
}

func TestSystemRate_SlidingFallbackUsesCanonicalPattern(t *testing.T) {
	c := New(fixtureTables())

	cases := map[string]float64{
		"OXXXO":  33.5, // exact canonical
		"OXOXO":  33.0, // exact canonical
		"OOXXO":  33.0, // 3 fixed of 5, nearest OXOXO
		"OOOOX":  33.0, // 4 fixed of 5, nearest OXOXO
		"OXXXXO": 34.5,
		"XXXXXX": 35.5, // 0 fixed of 6, nearest XXXOXX
		"OXO":    32,   // three panels, generic
		"":       32,
	}
	for pattern, want := range cases {
		if got := c.SystemRate(systemSlidingDoors, "Schuco", "ASS 77", pattern); got != want {
			t.Fatalf("%q = %v, want %v", pattern, got, want)
		}
	}
	if got := c.SystemRate(systemSlidingDoors, "Schuco", "ASS 77", "OXXO"); got != 36 {
		t.Fatalf("catalog pattern = %v, want 36", got)
	}
}

func TestSystemRate_UnknownSystemTypeIsGeneric(t *testing.T) {
	c := New(Tables{})
	if got := c.SystemRate("Skylights", "b", "m", "Fixed"); got != GenericSystemRate {
		t.Fatalf("SystemRate = %v, want %v", got, GenericSystemRate)
	}
}

func TestLaborRate(t *testing.T) {
	c := New(fixtureTables())

	cases := map[string]float64{
		"Fixed":                 4.5,
		"Hinged Left Open In":   22,
		"Hinged Right Open Out": 22,
		"Pivot":                 25,
		"Sliding":               10,
		"Awning":                5,
		"Something Else":        DefaultLaborRate,
	}
	for op, want := range cases {
		if got := c.LaborRate(op); got != want {
			t.Fatalf("%s = %v, want %v", op, got, want)
		}
	}

	if got := New(Tables{}).LaborRate("Hinged Left Open In"); got != 20 {
		t.Fatalf("default hinged = %v, want 20", got)
	}
}

func TestGlassRate(t *testing.T) {
	c := New(fixtureTables())

	attached := 19.75
	zero := 0.0
	if got := c.GlassRate("Low-E", &attached); got != 19.75 {
		t.Fatalf("attached = %v, want 19.75", got)
	}
	if got := c.GlassRate("Low-E", &zero); got != 15.5 {
		t.Fatalf("zero attached = %v, want table 15.5", got)
	}
	if got := c.GlassRate("Unobtainium", nil); got != DefaultGlassRate {
		t.Fatalf("default = %v, want %v", got, DefaultGlassRate)
	}
}

func TestNewCopiesTables(t *testing.T) {
	tables := fixtureTables()
	c := New(tables)

	tables.SystemRates["Aluprof"]["MB-70"]["Tilt & Turn"] = 1
	tables.LaborRates["Fixed"] = 1

	if got := c.SystemRate(systemWindows, "Aluprof", "MB-70", "Tilt & Turn"); got != 44 {
		t.Fatalf("catalog changed through caller map: %v", got)
	}
	if got := c.LaborRate("Fixed"); got != 4.5 {
		t.Fatalf("labor changed through caller map: %v", got)
	}
}

func TestDefaultsReturnsCopies(t *testing.T) {
	first := Defaults()
	first.LaborRates["Fixed"] = 99
	first.GlassPrices["Low-E"] = 99
	delete(first.LaborRates, "Pivot")

	second := Defaults()
	if second.LaborRates["Fixed"] != 4 || second.GlassPrices["Low-E"] != 15.5 {
		t.Fatalf("mutating one Defaults result changed the next: %+v", second)
	}
	if _, ok := second.LaborRates["Pivot"]; !ok {
		t.Fatalf("expected Pivot to survive deletion from an earlier copy")
	}
	if got := New(Tables{}).LaborRate("Fixed"); got != 4 {
		t.Fatalf("fallback labor rate = %v, want 4", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	content := []byte(`{
		"systemRates": {"Aluprof": {"MB-70": {"Fixed": 27}}},
		"laborRates": {"Fixed": 4},
		"glassPrices": {"Clear": 11}
	}`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	tables, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tables.SystemRates["Aluprof"]["MB-70"]["Fixed"] != 27 || tables.GlassPrices["Clear"] != 11 {
		t.Fatalf("unexpected tables: %+v", tables)
	}
}

func TestLoadFromDB(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE system_rates (brand TEXT, model TEXT, operation_key TEXT, rate NUMERIC, active BOOLEAN);
		CREATE TABLE labor_rates (operation_type TEXT, rate NUMERIC);
		CREATE TABLE glass_prices (glass_type TEXT, unit_cost NUMERIC, active BOOLEAN);
		INSERT INTO system_rates VALUES ('Aluprof', 'MB-70', 'Fixed', 27, TRUE);
		INSERT INTO system_rates VALUES ('Aluprof', 'MB-70', 'Casement', 99, FALSE);
		INSERT INTO labor_rates VALUES ('Pivot', 26);
		INSERT INTO glass_prices VALUES ('Clear', 11.5, TRUE);
	`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}

	tables, err := LoadFromDB(context.Background(), db)
	if err != nil {
		t.Fatalf("LoadFromDB: %v", err)
	}

	if got := tables.SystemRates["Aluprof"]["MB-70"]["Fixed"]; got != 27 {
		t.Fatalf("system rate = %v, want 27", got)
	}
	if _, ok := tables.SystemRates["Aluprof"]["MB-70"]["Casement"]; ok {
		t.Fatalf("inactive rate must not load")
	}
	if tables.LaborRates["Pivot"] != 26 || tables.GlassPrices["Clear"] != 11.5 {
		t.Fatalf("unexpected tables: %+v", tables)
	}
}
