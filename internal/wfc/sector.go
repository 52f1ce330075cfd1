package wfc

import (
	"fmt"
	"iter"
)

// Sector is a fixed width x height block of cells stored row-major. Sectors
// never overlap and are never resized.
type Sector struct {
	X, Y          int32 // sector coordinates within the field
	width, height int
	cells         []Cell
}

// NewSector creates a sector with every cell in full superposition
func NewSector(catalog *Catalog, x, y int32, width, height int) (*Sector, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	s := &Sector{
		X:      x,
		Y:      y,
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	for i := range s.cells {
		s.cells[i] = NewEmptyCell(catalog)
	}
	return s, nil
}

// newCollapsedSector creates a sector whose cells are fixed to tiles, row-major
func newCollapsedSector(x, y int32, width, height int, tiles []TileHandle) (*Sector, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if len(tiles) != width*height {
		return nil, fmt.Errorf("%w: %d tiles for a %dx%d sector", ErrInvalidSize, len(tiles), width, height)
	}

	s := &Sector{
		X:      x,
		Y:      y,
		width:  width,
		height: height,
		cells:  make([]Cell, len(tiles)),
	}
	for i, h := range tiles {
		s.cells[i] = NewCollapsedCell(h)
	}
	return s, nil
}

// Width returns the sector width in cells
func (s *Sector) Width() int { return s.width }

// Height returns the sector height in cells
func (s *Sector) Height() int { return s.height }

// Len returns the number of cells
func (s *Sector) Len() int { return len(s.cells) }

// Index maps local coordinates to the linear cell index
func (s *Sector) Index(x, y int) int { return y*s.width + x }

// Coords maps a linear cell index back to local coordinates
func (s *Sector) Coords(i int) (int, int) { return i % s.width, i / s.width }

// InBounds returns true if the local coordinates are inside the sector
func (s *Sector) InBounds(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

// Cell returns the cell at local coordinates, nil when out of bounds
func (s *Sector) Cell(x, y int) *Cell {
	if !s.InBounds(x, y) {
		return nil
	}
	return &s.cells[s.Index(x, y)]
}

// neighbor returns the index of the cell next to i in dir, or -1 at the border
func (s *Sector) neighbor(i int, dir Direction) int {
	x, y := s.Coords(i)
	dx, dy := dir.Offset()
	nx, ny := x+dx, y+dy
	if !s.InBounds(nx, ny) {
		return -1
	}
	return s.Index(nx, ny)
}

// Collapsed returns true if every cell is decided
func (s *Sector) Collapsed() bool {
	for i := range s.cells {
		if !s.cells[i].Collapsed() {
			return false
		}
	}
	return true
}

// Contradicted returns true if any cell has no candidates left
func (s *Sector) Contradicted() bool {
	for i := range s.cells {
		if s.cells[i].Contradicted() {
			return true
		}
	}
	return false
}

// Tiles returns the decided variant of every cell, row-major. The second
// result is false if any cell is undecided.
func (s *Sector) Tiles() ([]TileHandle, bool) {
	tiles := make([]TileHandle, len(s.cells))
	for i := range s.cells {
		h, ok := s.cells[i].Tile()
		if !ok {
			return nil, false
		}
		tiles[i] = h
	}
	return tiles, true
}

// Reset puts every cell back into full superposition
func (s *Sector) Reset(catalog *Catalog) {
	for i := range s.cells {
		s.cells[i].reset(catalog)
	}
}

// Origin returns the world-space position of the sector's top-left corner
func (s *Sector) Origin(cellWidth, cellHeight float64) Position {
	return Position{
		X: float64(s.X) * float64(s.width) * cellWidth,
		Y: float64(s.Y) * float64(s.height) * cellHeight,
	}
}

// Position is a world-space coordinate
type Position struct {
	X, Y float64
}

// Cells yields every cell with its world position, row-major
func (s *Sector) Cells(cellWidth, cellHeight float64) iter.Seq2[Position, *Cell] {
	return func(yield func(Position, *Cell) bool) {
		origin := s.Origin(cellWidth, cellHeight)
		for i := range s.cells {
			x, y := s.Coords(i)
			pos := Position{
				X: origin.X + float64(x)*cellWidth,
				Y: origin.Y + float64(y)*cellHeight,
			}
			if !yield(pos, &s.cells[i]) {
				return
			}
		}
	}
}
