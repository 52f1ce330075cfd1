package store

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/lawnchairsociety/wavefield/internal/wfc"
)

func coastTiles() []wfc.TileData {
	return []wfc.TileData{
		{ID: "grass", TextureID: "grass_png", EdgeIDs: []string{"G", "G", "G", "G"}},
		{ID: "water", TextureID: "water_png", EdgeIDs: []string{"W", "W", "W", "W"}},
		{ID: "shore", TextureID: "shore_png", EdgeIDs: []string{"G", "S", "W", "S"}, CanRotate: true},
	}
}

func testCatalog(t *testing.T, name string, tiles []wfc.TileData) *wfc.Catalog {
	t.Helper()
	td := &wfc.TilesetData{Name: name, Tiles: tiles}
	for _, tile := range tiles {
		td.Weights = append(td.Weights, wfc.WeightData{TileID: tile.ID, Weight: 1})
	}
	c, err := wfc.NewCatalog(td)
	if err != nil {
		t.Fatalf("NewCatalog() failed: %v", err)
	}
	return c
}

func testField(t *testing.T, c *wfc.Catalog, w, h int) *wfc.Field {
	t.Helper()
	f, err := wfc.NewField(c, wfc.FieldConfig{SectorWidth: w, SectorHeight: h, CellWidth: 16, CellHeight: 16})
	if err != nil {
		t.Fatalf("NewField() failed: %v", err)
	}
	return f
}

func collapsedSector(t *testing.T, f *wfc.Field, x, y int32, seed int64) *wfc.Sector {
	t.Helper()
	sector, err := f.AddSector(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.CollapseSector(x, y, rand.New(rand.NewSource(seed))); err != nil {
		t.Fatalf("CollapseSector() failed: %v", err)
	}
	return sector
}

func TestSaveAndLoadSector(t *testing.T) {
	s := openTestStore(t)
	c := testCatalog(t, "coast", coastTiles())

	original := collapsedSector(t, testField(t, c, 5, 4), 2, -3, 17)
	if err := s.SaveSector(c, original); err != nil {
		t.Fatalf("SaveSector() failed: %v", err)
	}

	fresh := testField(t, c, 5, 4)
	loaded, err := s.LoadSector(fresh, 2, -3)
	if err != nil {
		t.Fatalf("LoadSector() failed: %v", err)
	}

	want, _ := original.Tiles()
	got, ok := loaded.Tiles()
	if !ok {
		t.Fatal("loaded sector is not collapsed")
	}
	if !slices.Equal(got, want) {
		t.Errorf("loaded tiles = %v, want %v", got, want)
	}
	if sector, ok := fresh.Sector(2, -3); !ok || sector != loaded {
		t.Error("LoadSector() should place the sector in the field")
	}
}

func TestSaveSectorReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	c := testCatalog(t, "coast", coastTiles())

	first := collapsedSector(t, testField(t, c, 6, 6), 0, 0, 1)
	second := collapsedSector(t, testField(t, c, 6, 6), 0, 0, 2)

	if err := s.SaveSector(c, first); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSector(c, second); err != nil {
		t.Fatalf("second SaveSector() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sector_cells").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 36 {
		t.Errorf("stored %d cells, want 36 after overwrite", count)
	}

	loaded, err := s.LoadSector(testField(t, c, 6, 6), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := second.Tiles()
	got, _ := loaded.Tiles()
	if !slices.Equal(got, want) {
		t.Error("LoadSector() should return the most recent save")
	}
}

func TestSaveSectorRejectsUndecided(t *testing.T) {
	s := openTestStore(t)
	c := testCatalog(t, "coast", coastTiles())

	sector, err := testField(t, c, 3, 3).AddSector(0, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SaveSector(c, sector); !errors.Is(err, ErrNotCollapsed) {
		t.Errorf("SaveSector() error = %v, want ErrNotCollapsed", err)
	}
}

func TestLoadSectorNotFound(t *testing.T) {
	s := openTestStore(t)
	coast := testCatalog(t, "coast", coastTiles())
	desert := testCatalog(t, "desert", coastTiles())

	if err := s.SaveSector(coast, collapsedSector(t, testField(t, coast, 3, 3), 0, 0, 4)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		catalog *wfc.Catalog
		x, y    int32
	}{
		{"other location", coast, 1, 0},
		{"other tileset", desert, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testField(t, tt.catalog, 3, 3)
			if _, err := s.LoadSector(f, tt.x, tt.y); !errors.Is(err, ErrSectorNotFound) {
				t.Errorf("LoadSector() error = %v, want ErrSectorNotFound", err)
			}
			if len(f.Sectors()) != 0 {
				t.Error("failed load should not add a sector")
			}
		})
	}
}

func TestLoadSectorSizeMismatch(t *testing.T) {
	s := openTestStore(t)
	c := testCatalog(t, "coast", coastTiles())

	if err := s.SaveSector(c, collapsedSector(t, testField(t, c, 4, 4), 0, 0, 9)); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadSector(testField(t, c, 8, 8), 0, 0); !errors.Is(err, wfc.ErrInvalidSize) {
		t.Errorf("LoadSector() error = %v, want ErrInvalidSize", err)
	}
}

func TestLoadSectorAfterTilesetReorder(t *testing.T) {
	s := openTestStore(t)
	c := testCatalog(t, "coast", coastTiles())

	original := collapsedSector(t, testField(t, c, 4, 4), 0, 0, 23)
	if err := s.SaveSector(c, original); err != nil {
		t.Fatal(err)
	}

	reordered := coastTiles()
	slices.Reverse(reordered)
	rc := testCatalog(t, "coast", reordered)

	loaded, err := s.LoadSector(testField(t, rc, 4, 4), 0, 0)
	if err != nil {
		t.Fatalf("LoadSector() failed: %v", err)
	}

	want, _ := original.Tiles()
	got, _ := loaded.Tiles()
	for i := range want {
		wv, _ := c.Variant(want[i])
		gv, _ := rc.Variant(got[i])
		if c.ClassID(wv.Class) != rc.ClassID(gv.Class) || wv.Rotation != gv.Rotation {
			t.Errorf("cell %d = %s/%d, want %s/%d", i,
				rc.ClassID(gv.Class), gv.Rotation, c.ClassID(wv.Class), wv.Rotation)
		}
	}
}

func TestLoadSectorUnknownTile(t *testing.T) {
	s := openTestStore(t)
	c := testCatalog(t, "coast", coastTiles())

	// Handle 0 is grass
	sector, err := testField(t, c, 2, 2).RestoreSector(0, 0, []wfc.TileHandle{0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSector(c, sector); err != nil {
		t.Fatal(err)
	}

	// Same name, but grass is gone
	trimmed := testCatalog(t, "coast", coastTiles()[1:])
	_, err = s.LoadSector(testField(t, trimmed, 2, 2), 0, 0)

	var ref *wfc.UnresolvedReferenceError
	if !errors.As(err, &ref) {
		t.Fatalf("LoadSector() error = %v, want *UnresolvedReferenceError", err)
	}
	if ref.ID != "grass" {
		t.Errorf("unresolved tile = %q, want grass", ref.ID)
	}
	if !errors.Is(err, wfc.ErrUnresolvedReference) {
		t.Errorf("error should wrap ErrUnresolvedReference")
	}
}

func TestListSectors(t *testing.T) {
	s := openTestStore(t)
	coast := testCatalog(t, "coast", coastTiles())
	desert := testCatalog(t, "desert", coastTiles())

	f := testField(t, coast, 2, 2)
	for i, sc := range []wfc.SectorCoord{{X: 1, Y: 1}, {X: 0, Y: 1}, {X: 3, Y: -2}} {
		if err := s.SaveSector(coast, collapsedSector(t, f, sc.X, sc.Y, int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveSector(desert, collapsedSector(t, testField(t, desert, 2, 2), 9, 9, 1)); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListSectors("coast")
	if err != nil {
		t.Fatalf("ListSectors() failed: %v", err)
	}
	want := []wfc.SectorCoord{{X: 3, Y: -2}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	if !slices.Equal(got, want) {
		t.Errorf("ListSectors(coast) = %v, want %v", got, want)
	}

	none, err := s.ListSectors("tundra")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("ListSectors(tundra) = %v, want empty", none)
	}
}

func TestDeleteSector(t *testing.T) {
	s := openTestStore(t)
	c := testCatalog(t, "coast", coastTiles())

	if err := s.SaveSector(c, collapsedSector(t, testField(t, c, 2, 2), 5, 5, 8)); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSector("coast", 5, 5); err != nil {
		t.Fatalf("DeleteSector() failed: %v", err)
	}
	if _, err := s.LoadSector(testField(t, c, 2, 2), 5, 5); !errors.Is(err, ErrSectorNotFound) {
		t.Errorf("LoadSector() after delete = %v, want ErrSectorNotFound", err)
	}
	if err := s.DeleteSector("coast", 5, 5); err != nil {
		t.Errorf("deleting a missing sector = %v, want nil", err)
	}
}
