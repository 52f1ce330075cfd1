package wfc

import (
	"github.com/zyedidia/generic/mapset"
)

// RandomSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Cell is a superposition of the tile variants still possible at one grid
// position. Entropy 0 is a contradiction, 1 is collapsed, anything higher is
// undecided.
type Cell struct {
	states mapset.Set[TileHandle]
}

// NewEmptyCell creates a cell in full superposition over every variant
func NewEmptyCell(catalog *Catalog) Cell {
	return Cell{states: catalog.AllVariants()}
}

// NewCollapsedCell creates a cell already decided on a single variant
func NewCollapsedCell(h TileHandle) Cell {
	states := mapset.New[TileHandle]()
	states.Put(h)
	return Cell{states: states}
}

// Entropy returns the number of possible states
func (c *Cell) Entropy() int {
	return c.states.Size()
}

// Collapsed returns true if exactly one state remains
func (c *Cell) Collapsed() bool {
	return c.Entropy() == 1
}

// Contradicted returns true if no state remains
func (c *Cell) Contradicted() bool {
	return c.Entropy() == 0
}

// Tile returns the decided variant. It only reports a tile at entropy 1.
func (c *Cell) Tile() (TileHandle, bool) {
	if c.Entropy() != 1 {
		return 0, false
	}
	var tile TileHandle
	c.states.Each(func(h TileHandle) {
		tile = h
	})
	return tile, true
}

// Has returns true if the variant is still possible
func (c *Cell) Has(h TileHandle) bool {
	return c.states.Has(h)
}

// Candidates returns the possible variants in ascending handle order
func (c *Cell) Candidates() []TileHandle {
	return sortedHandles(c.states)
}

// Collapse picks one candidate at random, biased by class weight, and
// discards the rest. Candidates whose class has no positive weight are never
// picked; if none has one the cell is left untouched and ErrContradiction is
// returned.
func (c *Cell) Collapse(catalog *Catalog, rng RandomSource) (TileHandle, error) {
	type option struct {
		tile   TileHandle
		weight float64
	}

	var total float64
	options := make([]option, 0, c.Entropy())
	for _, h := range c.Candidates() {
		w := catalog.TileWeight(h)
		if w <= 0 {
			continue
		}
		total += w
		options = append(options, option{tile: h, weight: w})
	}
	if len(options) == 0 || total <= 0 {
		return 0, ErrContradiction
	}

	selected := options[len(options)-1].tile
	r := rng.Float64() * total
	for _, o := range options {
		r -= o.weight
		if r <= 0 {
			selected = o.tile
			break
		}
	}

	c.Set(selected)
	return selected, nil
}

// Set forces the cell to a single variant
func (c *Cell) Set(h TileHandle) {
	states := mapset.New[TileHandle]()
	states.Put(h)
	c.states = states
}

// Restrict intersects the candidates with allowed and reports whether any
// candidate was removed. Entropy never grows.
func (c *Cell) Restrict(allowed mapset.Set[TileHandle]) bool {
	var removed []TileHandle
	c.states.Each(func(h TileHandle) {
		if !allowed.Has(h) {
			removed = append(removed, h)
		}
	})
	for _, h := range removed {
		c.states.Remove(h)
	}
	return len(removed) > 0
}

// reset returns the cell to full superposition
func (c *Cell) reset(catalog *Catalog) {
	c.states = catalog.AllVariants()
}
