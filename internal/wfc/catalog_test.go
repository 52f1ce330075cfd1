package wfc

import (
	"errors"
	"math"
	"testing"
)

// mustCatalog builds a catalog or fails the test
func mustCatalog(t *testing.T, td *TilesetData) *Catalog {
	t.Helper()
	c, err := NewCatalog(td)
	if err != nil {
		t.Fatalf("NewCatalog() failed: %v", err)
	}
	return c
}

func solidTile(id, edge string) TileData {
	return TileData{ID: id, TextureID: id + "_png", EdgeIDs: []string{edge, edge, edge, edge}}
}

func TestCatalogRotationExpansion(t *testing.T) {
	c := mustCatalog(t, &TilesetData{
		Tiles: []TileData{
			{ID: "road", TextureID: "road_png", EdgeIDs: []string{"U", "R", "D", "L"}, CanRotate: true},
		},
		Weights: []WeightData{{TileID: "road", Weight: 1}},
	})

	if c.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", c.Len())
	}

	u, _ := c.EdgeHandle("U")
	r, _ := c.EdgeHandle("R")
	d, _ := c.EdgeHandle("D")
	l, _ := c.EdgeHandle("L")

	want := []Edges{
		{u, r, d, l},
		{l, u, r, d},
		{d, l, u, r},
		{r, d, l, u},
	}

	road, ok := c.ClassHandle("road")
	if !ok {
		t.Fatal("ClassHandle(road) not found")
	}

	for rot, edges := range want {
		v, ok := c.Variant(TileHandle(rot))
		if !ok {
			t.Fatalf("Variant(%d) not found", rot)
		}
		if v.Rotation != rot {
			t.Errorf("Variant(%d).Rotation = %d, want %d", rot, v.Rotation, rot)
		}
		if v.Edges != edges {
			t.Errorf("Variant(%d).Edges = %v, want %v", rot, v.Edges, edges)
		}
		if v.Class != road {
			t.Errorf("Variant(%d).Class = %d, want %d", rot, v.Class, road)
		}
		if got := c.TileWeight(TileHandle(rot)); got != 1 {
			t.Errorf("TileWeight(%d) = %v, want 1", rot, got)
		}
	}
}

func TestCatalogInterningIsStable(t *testing.T) {
	td := &TilesetData{
		Tiles: []TileData{
			{ID: "a", TextureID: "shared", EdgeIDs: []string{"x", "y", "x", "y"}},
			{ID: "b", TextureID: "shared", EdgeIDs: []string{"y", "z", "y", "z"}, CanRotate: true},
			{ID: "c", TextureID: "own", EdgeIDs: []string{"z", "z", "x", "x"}},
		},
	}

	first := mustCatalog(t, td)
	second := mustCatalog(t, td)

	edges := []struct {
		id   string
		want EdgeHandle
	}{
		{"x", 0},
		{"y", 1},
		{"z", 2},
	}
	for _, tc := range edges {
		for _, c := range []*Catalog{first, second} {
			if got, ok := c.EdgeHandle(tc.id); !ok || got != tc.want {
				t.Errorf("EdgeHandle(%q) = %d, %v, want %d", tc.id, got, ok, tc.want)
			}
		}
	}

	if first.Len() != 6 {
		t.Fatalf("Len() = %d, want 6 (1 + 4 + 1)", first.Len())
	}

	for h := 0; h < first.Len(); h++ {
		a, _ := first.Variant(TileHandle(h))
		b, _ := second.Variant(TileHandle(h))
		if a != b {
			t.Errorf("Variant(%d) differs between builds: %+v vs %+v", h, a, b)
		}
	}

	shared0, _ := first.Variant(0)
	shared1, _ := first.Variant(1)
	own, _ := first.Variant(5)
	if shared0.Texture != shared1.Texture {
		t.Error("tiles sharing a texture id should share a texture handle")
	}
	if own.Texture == shared0.Texture {
		t.Error("distinct texture ids should get distinct handles")
	}
	if got := first.TextureID(own.Texture); got != "own" {
		t.Errorf("TextureID() = %q, want %q", got, "own")
	}
	if got := first.ClassID(own.Class); got != "c" {
		t.Errorf("ClassID() = %q, want %q", got, "c")
	}
	if got := first.EdgeID(2); got != "z" {
		t.Errorf("EdgeID(2) = %q, want %q", got, "z")
	}
}

func TestCatalogUnresolvedReferences(t *testing.T) {
	c := mustCatalog(t, &TilesetData{
		Tiles: []TileData{solidTile("grass", "G")},
		Rules: []RuleData{
			{A: "G", B: "G"},
			{A: "G", B: "lava"},
		},
		Weights: []WeightData{
			{TileID: "grass", Weight: 1},
			{TileID: "dragon", Weight: 5},
		},
	})

	if got := len(c.Rules()); got != 1 {
		t.Errorf("len(Rules()) = %d, want 1", got)
	}
	if got := len(c.Weights()); got != 1 {
		t.Errorf("len(Weights()) = %d, want 1", got)
	}

	warnings := c.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("len(Warnings()) = %d, want 2", len(warnings))
	}
	for _, w := range warnings {
		if !errors.Is(w, ErrUnresolvedReference) {
			t.Errorf("warning %v does not wrap ErrUnresolvedReference", w)
		}
	}

	var ref *UnresolvedReferenceError
	if !errors.As(warnings[1], &ref) || ref.Kind != "weight" || ref.ID != "dragon" {
		t.Errorf("second warning = %v, want weight reference to dragon", warnings[1])
	}
}

func TestCatalogWeights(t *testing.T) {
	c := mustCatalog(t, &TilesetData{
		Tiles: []TileData{
			solidTile("grass", "G"),
			solidTile("rock", "R"),
		},
		Weights: []WeightData{
			{TileID: "grass", Weight: 3},
			{TileID: "grass", Weight: 9},
		},
	})

	grass, _ := c.ClassHandle("grass")
	rock, _ := c.ClassHandle("rock")

	if got := c.Weight(grass); got != 3 {
		t.Errorf("Weight(grass) = %v, want 3 (first match)", got)
	}
	if got := c.Weight(rock); got != 0 {
		t.Errorf("Weight(rock) = %v, want 0 for unweighted class", got)
	}
	if got := c.Weight(ClassHandle(42)); got != 0 {
		t.Errorf("Weight(42) = %v, want 0 for unknown class", got)
	}
}

func TestCatalogRenderData(t *testing.T) {
	c := mustCatalog(t, &TilesetData{
		Tiles: []TileData{
			{ID: "corner", TextureID: "corner_png", EdgeIDs: []string{"a", "a", "b", "b"}, CanRotate: true},
		},
	})

	texture, rotation, ok := c.RenderData(2)
	if !ok {
		t.Fatal("RenderData(2) not found")
	}
	if texture != "corner_png" {
		t.Errorf("texture = %q, want %q", texture, "corner_png")
	}
	if math.Abs(rotation-math.Pi) > 1e-12 {
		t.Errorf("rotation = %v, want pi", rotation)
	}

	if _, _, ok := c.RenderData(99); ok {
		t.Error("RenderData(99) should not be found")
	}
}

func TestCatalogAllVariantsIsACopy(t *testing.T) {
	c := mustCatalog(t, &TilesetData{
		Tiles: []TileData{solidTile("a", "x"), solidTile("b", "y")},
	})

	set := c.AllVariants()
	set.Remove(0)

	if got := c.AllVariants().Size(); got != 2 {
		t.Errorf("AllVariants().Size() = %d after mutating a copy, want 2", got)
	}
}

func TestNewCatalogRejectsInvalidData(t *testing.T) {
	_, err := NewCatalog(&TilesetData{})
	if !errors.Is(err, ErrLoad) {
		t.Errorf("NewCatalog(empty) error = %v, want ErrLoad", err)
	}
}

func TestCatalogVariantOf(t *testing.T) {
	c := coastCatalog(t)

	shore, _ := c.ClassHandle("shore")
	water, _ := c.ClassHandle("water")

	tests := []struct {
		class    ClassHandle
		rotation int
		want     TileHandle
		ok       bool
	}{
		{shore, 0, 2, true},
		{shore, 3, 5, true},
		{water, 0, 1, true},
		{water, 1, 0, false},
	}
	for _, tc := range tests {
		got, ok := c.VariantOf(tc.class, tc.rotation)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("VariantOf(%s, %d) = %d, %v, want %d, %v", c.ClassID(tc.class), tc.rotation, got, ok, tc.want, tc.ok)
		}
	}
}
