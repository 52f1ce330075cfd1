package wfc

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/lawnchairsociety/wavefield/internal/logger"
)

// interner hands out dense indexes to strings in first-seen order
type interner struct {
	ids   []string
	index map[string]int
}

func newInterner() *interner {
	return &interner{index: make(map[string]int)}
}

// intern returns the index for id, adding it if this is its first occurrence
func (in *interner) intern(id string) int {
	if i, ok := in.index[id]; ok {
		return i
	}
	i := len(in.ids)
	in.ids = append(in.ids, id)
	in.index[id] = i
	return i
}

func (in *interner) lookup(id string) (int, bool) {
	i, ok := in.index[id]
	return i, ok
}

func (in *interner) name(i int) (string, bool) {
	if i < 0 || i >= len(in.ids) {
		return "", false
	}
	return in.ids[i], true
}

// Rule is a resolved compatibility rule between two edges
type Rule struct {
	A, B EdgeHandle
}

// Weight is a resolved selection weight for a tile class
type Weight struct {
	Class ClassHandle
	Value float64
}

// Catalog is the expanded, interned tileset. It is immutable once built and
// is shared by every cell, sector and field that uses it.
type Catalog struct {
	name string

	classes  *interner
	edges    *interner
	textures *interner

	variants []TileVariant
	rules    []Rule
	weights  []Weight

	// classWeight is the dense form of weights; first match wins
	classWeight []float64

	all       mapset.Set[TileHandle]
	adjacency *AdjacencyIndex
	warnings  []error
}

// NewCatalog builds a catalog from a tileset definition. Handles are assigned
// in input order, so identical input always produces identical numbering.
func NewCatalog(data *TilesetData) (*Catalog, error) {
	if err := data.Validate(); err != nil {
		return nil, &LoadError{Err: err}
	}

	c := &Catalog{
		name:     data.Name,
		classes:  newInterner(),
		edges:    newInterner(),
		textures: newInterner(),
		all:      mapset.New[TileHandle](),
	}

	// Expand tiles into variants, rotation 0 first
	for _, td := range data.Tiles {
		class := ClassHandle(c.classes.intern(td.ID))
		texture := TextureHandle(c.textures.intern(td.TextureID))

		var edges Edges
		for i, id := range td.EdgeIDs {
			edges[i] = EdgeHandle(c.edges.intern(id))
		}

		base := TileVariant{
			Edges:   edges,
			Texture: texture,
			Class:   class,
		}
		c.addVariant(base)

		if td.CanRotate {
			for r := 1; r < 4; r++ {
				v := base
				v.Edges = edges.Rotate(r)
				v.Rotation = r
				c.addVariant(v)
			}
		}
	}

	for _, rd := range data.Rules {
		a, okA := c.edges.lookup(rd.A)
		b, okB := c.edges.lookup(rd.B)
		if !okA {
			c.warn(&UnresolvedReferenceError{Kind: "rule", ID: rd.A})
		}
		if !okB {
			c.warn(&UnresolvedReferenceError{Kind: "rule", ID: rd.B})
		}
		if okA && okB {
			c.rules = append(c.rules, Rule{A: EdgeHandle(a), B: EdgeHandle(b)})
		}
	}

	c.classWeight = make([]float64, len(c.classes.ids))
	weighted := make([]bool, len(c.classes.ids))
	for _, wd := range data.Weights {
		class, ok := c.classes.lookup(wd.TileID)
		if !ok {
			c.warn(&UnresolvedReferenceError{Kind: "weight", ID: wd.TileID})
			continue
		}
		c.weights = append(c.weights, Weight{Class: ClassHandle(class), Value: wd.Weight})
		if weighted[class] {
			logger.Warning("Duplicate tile weight ignored", "tile", wd.TileID, "weight", wd.Weight)
			continue
		}
		weighted[class] = true
		c.classWeight[class] = wd.Weight
	}

	c.adjacency = newAdjacencyIndex(c.variants, c.rules)

	logger.Info("Tileset catalog built",
		"name", c.name,
		"classes", len(c.classes.ids),
		"variants", len(c.variants),
		"edges", len(c.edges.ids),
		"rules", len(c.rules),
		"warnings", len(c.warnings))

	return c, nil
}

func (c *Catalog) addVariant(v TileVariant) {
	h := TileHandle(len(c.variants))
	c.variants = append(c.variants, v)
	c.all.Put(h)
}

func (c *Catalog) warn(err error) {
	logger.Warning("Tileset reference dropped", "error", err)
	c.warnings = append(c.warnings, err)
}

// Name returns the tileset name, empty if the definition had none
func (c *Catalog) Name() string {
	return c.name
}

// Len returns the number of tile variants
func (c *Catalog) Len() int {
	return len(c.variants)
}

// Variant returns the tile variant for a handle
func (c *Catalog) Variant(h TileHandle) (TileVariant, bool) {
	if h < 0 || int(h) >= len(c.variants) {
		return TileVariant{}, false
	}
	return c.variants[h], true
}

// Variants returns a copy of every tile variant, indexed by TileHandle
func (c *Catalog) Variants() []TileVariant {
	return slices.Clone(c.variants)
}

// AllVariants returns a fresh set holding every variant handle
func (c *Catalog) AllVariants() mapset.Set[TileHandle] {
	set := mapset.New[TileHandle]()
	c.all.Each(func(h TileHandle) {
		set.Put(h)
	})
	return set
}

// EdgeHandle resolves an edge id
func (c *Catalog) EdgeHandle(id string) (EdgeHandle, bool) {
	i, ok := c.edges.lookup(id)
	return EdgeHandle(i), ok
}

// ClassHandle resolves a tile id
func (c *Catalog) ClassHandle(id string) (ClassHandle, bool) {
	i, ok := c.classes.lookup(id)
	return ClassHandle(i), ok
}

// ClassOf returns the class of a tile variant
func (c *Catalog) ClassOf(h TileHandle) (ClassHandle, bool) {
	v, ok := c.Variant(h)
	if !ok {
		return 0, false
	}
	return v.Class, true
}

// VariantOf finds the variant of a class with the given rotation
func (c *Catalog) VariantOf(class ClassHandle, rotation int) (TileHandle, bool) {
	for h, v := range c.variants {
		if v.Class == class && v.Rotation == rotation {
			return TileHandle(h), true
		}
	}
	return 0, false
}

// Weight returns the selection weight of a class, 0 if it has none
func (c *Catalog) Weight(class ClassHandle) float64 {
	if class < 0 || int(class) >= len(c.classWeight) {
		return 0
	}
	return c.classWeight[class]
}

// TileWeight returns the weight of the class a variant belongs to
func (c *Catalog) TileWeight(h TileHandle) float64 {
	class, ok := c.ClassOf(h)
	if !ok {
		return 0
	}
	return c.Weight(class)
}

// Rules returns the resolved rules in input order
func (c *Catalog) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Weights returns the resolved weights in input order
func (c *Catalog) Weights() []Weight {
	return slices.Clone(c.weights)
}

// Adjacency returns the directional adjacency index
func (c *Catalog) Adjacency() *AdjacencyIndex {
	return c.adjacency
}

// Warnings returns the unresolved references dropped while building
func (c *Catalog) Warnings() []error {
	return slices.Clone(c.warnings)
}

// ClassID returns the tile id for a class handle
func (c *Catalog) ClassID(class ClassHandle) string {
	id, _ := c.classes.name(int(class))
	return id
}

// EdgeID returns the edge id for an edge handle
func (c *Catalog) EdgeID(edge EdgeHandle) string {
	id, _ := c.edges.name(int(edge))
	return id
}

// TextureID returns the texture id for a texture handle
func (c *Catalog) TextureID(texture TextureHandle) string {
	id, _ := c.textures.name(int(texture))
	return id
}

// RenderData returns the texture id and rotation in radians for a variant
func (c *Catalog) RenderData(h TileHandle) (string, float64, bool) {
	v, ok := c.Variant(h)
	if !ok {
		return "", 0, false
	}
	return c.TextureID(v.Texture), v.Radians(), true
}
