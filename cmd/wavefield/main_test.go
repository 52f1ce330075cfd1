package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/wavefield/internal/config"
	"github.com/lawnchairsociety/wavefield/internal/store"
	"github.com/lawnchairsociety/wavefield/internal/wfc"
)

const meadowTileset = `name: meadow
tiles:
  - id: grass
    texture_id: grass_png
    edge_ids: [G, G, G, G]
  - id: flowers
    texture_id: flowers_png
    edge_ids: [G, G, G, G]
rules:
  - [G, G]
weights:
  - [grass, 3]
  - [flowers, 1]
`

func writeTileset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meadow.yaml")
	if err := os.WriteFile(path, []byte(meadowTileset), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.GeneratorConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Tileset = writeTileset(t)
	cfg.Seed = 99
	cfg.Sector.Width = 4
	cfg.Sector.Height = 3
	cfg.Cell.Width = 10
	cfg.Cell.Height = 10
	cfg.Store.Path = filepath.Join(t.TempDir(), "field.db")
	return cfg
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		input   string
		want    area
		count   int
		wantErr bool
	}{
		{"0,0", area{0, 0, 0, 0}, 1, false},
		{"-2, 3", area{-2, 3, -2, 3}, 1, false},
		{"-1,-1,1,1", area{-1, -1, 1, 1}, 9, false},
		{"0,0,3,0", area{0, 0, 3, 0}, 4, false},
		{"1,1,0,0", area{}, 0, true},
		{"1", area{}, 0, true},
		{"1,2,3", area{}, 0, true},
		{"a,b", area{}, 0, true},
		{"0,99999999999", area{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseArea(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseArea(%q) = %+v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArea(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseArea(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.Count() != tt.count {
				t.Errorf("Count() = %d, want %d", got.Count(), tt.count)
			}
		})
	}
}

func TestAreaCountFullRange(t *testing.T) {
	full := area{MinX: math.MinInt32, MinY: 0, MaxX: math.MaxInt32, MaxY: 1}
	if got, want := int64(full.Count()), int64(2)<<32; got != want {
		t.Errorf("Count() = %d, want %d", got, want)
	}
}

func TestRunAtCoordinateLimit(t *testing.T) {
	cfg := testConfig(t)
	out := filepath.Join(t.TempDir(), "edge.yaml")
	edge := area{MinX: math.MaxInt32 - 1, MinY: math.MaxInt32, MaxX: math.MaxInt32, MaxY: math.MaxInt32}

	if err := run(cfg, edge, out, false, false); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var dump FieldYAML
	if err := yaml.Unmarshal(data, &dump); err != nil {
		t.Fatal(err)
	}
	if len(dump.Sectors) != 2 {
		t.Errorf("len(Sectors) = %d, want 2", len(dump.Sectors))
	}
}

func TestWriteFieldYAML(t *testing.T) {
	td, err := wfc.ParseTileset([]byte(meadowTileset))
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := wfc.NewCatalog(td)
	if err != nil {
		t.Fatal(err)
	}
	field, err := wfc.NewField(catalog, wfc.FieldConfig{SectorWidth: 2, SectorHeight: 2, CellWidth: 8, CellHeight: 8})
	if err != nil {
		t.Fatal(err)
	}
	if err := wfc.NewGenerator(field, 5, 3).GenerateArea(0, 0, 1, 0); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeFieldYAML(&buf, buildFieldYAML(field, 5)); err != nil {
		t.Fatalf("writeFieldYAML() failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "# Wave field render dump\n") {
		t.Errorf("dump missing header:\n%s", out)
	}
	if !strings.Contains(out, "# Sectors: 2, cells: 8") {
		t.Errorf("dump header missing counts:\n%s", out)
	}

	var dump FieldYAML
	if err := yaml.Unmarshal(buf.Bytes(), &dump); err != nil {
		t.Fatalf("dump is not valid YAML: %v", err)
	}
	if dump.Tileset != "meadow" || dump.Seed != 5 {
		t.Errorf("dump tileset, seed = %q, %d", dump.Tileset, dump.Seed)
	}
	if len(dump.Sectors) != 2 {
		t.Fatalf("len(Sectors) = %d, want 2", len(dump.Sectors))
	}
	second := dump.Sectors[1]
	if second.X != 1 || second.Y != 0 || len(second.Cells) != 4 {
		t.Fatalf("second sector = (%d, %d) with %d cells", second.X, second.Y, len(second.Cells))
	}
	last := second.Cells[3]
	if last.X != 1 || last.Y != 1 || last.WorldX != 24 || last.WorldY != 8 {
		t.Errorf("last cell = %+v, want cell (1, 1) at world (24, 8)", last)
	}
	if last.Texture != "grass_png" && last.Texture != "flowers_png" {
		t.Errorf("last cell texture = %q", last.Texture)
	}
}

func TestRunGeneratesAndDumps(t *testing.T) {
	cfg := testConfig(t)
	out := filepath.Join(t.TempDir(), "dump.yaml")

	if err := run(cfg, area{MinX: -1, MinY: 0, MaxX: 0, MaxY: 0}, out, false, false); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("dump not written: %v", err)
	}
	var dump FieldYAML
	if err := yaml.Unmarshal(data, &dump); err != nil {
		t.Fatal(err)
	}
	if len(dump.Sectors) != 2 {
		t.Fatalf("len(Sectors) = %d, want 2", len(dump.Sectors))
	}
	for _, s := range dump.Sectors {
		if len(s.Cells) != 12 {
			t.Errorf("sector (%d, %d) has %d cells, want 12", s.X, s.Y, len(s.Cells))
		}
	}
}

func TestRunPersistsSectors(t *testing.T) {
	cfg := testConfig(t)
	bounds := area{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}

	if err := run(cfg, bounds, "", true, false); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		t.Fatal(err)
	}
	coords, err := st.ListSectors("meadow")
	st.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(coords) != 4 {
		t.Fatalf("stored %d sectors, want 4", len(coords))
	}

	// A different seed must not change sectors that are already stored
	first := filepath.Join(t.TempDir(), "first.yaml")
	second := filepath.Join(t.TempDir(), "second.yaml")
	if err := run(cfg, bounds, first, true, false); err != nil {
		t.Fatal(err)
	}
	cfg.Seed = 12345
	if err := run(cfg, bounds, second, true, false); err != nil {
		t.Fatal(err)
	}
	if !sameSectors(t, first, second) {
		t.Error("stored sectors changed when reloaded with another seed")
	}
}

func TestRunMissingTileset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tileset = filepath.Join(t.TempDir(), "absent.yaml")

	err := run(cfg, area{}, "", false, false)
	if err == nil {
		t.Fatal("run() should fail without a tileset")
	}
	if !strings.Contains(err.Error(), "absent.yaml") {
		t.Errorf("error %q should name the tileset path", err)
	}
}

func TestStoreConfig(t *testing.T) {
	cfg := config.DefaultConfig().Store
	cfg.Driver = "postgres"
	cfg.Postgres.Database = "tiles"

	got := storeConfig(cfg)
	if got.Driver != "postgres" || got.SQLitePath != "data/wavefield.db" {
		t.Errorf("storeConfig() = %+v", got)
	}
	if got.Postgres.Database != "tiles" || got.Postgres.Port != 5432 || got.Postgres.MaxOpenConns != 25 {
		t.Errorf("postgres settings not carried over: %+v", got.Postgres)
	}
}

func sameSectors(t *testing.T, a, b string) bool {
	t.Helper()
	read := func(path string) []SectorYAML {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var dump FieldYAML
		if err := yaml.Unmarshal(data, &dump); err != nil {
			t.Fatal(err)
		}
		return dump.Sectors
	}

	sa, sb := read(a), read(b)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if len(sa[i].Cells) != len(sb[i].Cells) {
			return false
		}
		for j := range sa[i].Cells {
			if sa[i].Cells[j] != sb[i].Cells[j] {
				return false
			}
		}
	}
	return true
}
