package wfc

import (
	"fmt"
	"iter"
	"time"

	"github.com/lawnchairsociety/wavefield/internal/grid"
	"github.com/lawnchairsociety/wavefield/internal/logger"
)

// FieldConfig contains the dimensions used for every sector of a field
type FieldConfig struct {
	SectorWidth  int     // cells per sector row
	SectorHeight int     // cells per sector column
	CellWidth    float64 // world units per cell
	CellHeight   float64
}

// DefaultFieldConfig returns 16x16 sectors of 32x32 unit cells
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		SectorWidth:  16,
		SectorHeight: 16,
		CellWidth:    32,
		CellHeight:   32,
	}
}

// SectorCoord addresses a sector within a field
type SectorCoord struct {
	X, Y int32
}

// Field is a sparse, unbounded grid of sectors sharing one catalog. Sectors
// are created on demand and solved independently of each other. A field is
// not safe for concurrent use.
type Field struct {
	catalog *Catalog
	config  FieldConfig
	sectors *grid.InfiniteGrid[*Sector]
}

// NewField creates an empty field
func NewField(catalog *Catalog, config FieldConfig) (*Field, error) {
	if config.SectorWidth <= 0 || config.SectorHeight <= 0 {
		return nil, fmt.Errorf("%w: sector %dx%d", ErrInvalidSize, config.SectorWidth, config.SectorHeight)
	}
	if config.CellWidth <= 0 || config.CellHeight <= 0 {
		return nil, fmt.Errorf("%w: cell %vx%v", ErrInvalidSize, config.CellWidth, config.CellHeight)
	}
	return &Field{
		catalog: catalog,
		config:  config,
		sectors: grid.New[*Sector](),
	}, nil
}

// Catalog returns the shared catalog
func (f *Field) Catalog() *Catalog {
	return f.catalog
}

// Config returns the field dimensions
func (f *Field) Config() FieldConfig {
	return f.config
}

// AddSector allocates a sector in full superposition. It fails with an
// *OccupiedSectorError if one already exists at the location.
func (f *Field) AddSector(x, y int32) (*Sector, error) {
	if f.sectors.Has(x, y) {
		return nil, &OccupiedSectorError{X: x, Y: y}
	}

	sector, err := NewSector(f.catalog, x, y, f.config.SectorWidth, f.config.SectorHeight)
	if err != nil {
		return nil, err
	}
	f.sectors.Set(x, y, sector)

	logger.Debug("Sector added", "x", x, "y", y)
	return sector, nil
}

// RestoreSector places a sector of already decided cells, for example one
// loaded from storage. Tiles are row-major.
func (f *Field) RestoreSector(x, y int32, tiles []TileHandle) (*Sector, error) {
	if f.sectors.Has(x, y) {
		return nil, &OccupiedSectorError{X: x, Y: y}
	}
	for _, h := range tiles {
		if _, ok := f.catalog.Variant(h); !ok {
			return nil, fmt.Errorf("restore sector (%d, %d): unknown tile handle %d", x, y, h)
		}
	}

	sector, err := newCollapsedSector(x, y, f.config.SectorWidth, f.config.SectorHeight, tiles)
	if err != nil {
		return nil, err
	}
	f.sectors.Set(x, y, sector)

	logger.Debug("Sector restored", "x", x, "y", y)
	return sector, nil
}

// Sector returns the sector at the location
func (f *Field) Sector(x, y int32) (*Sector, bool) {
	return f.sectors.Get(x, y)
}

// Sectors returns the coordinates of every sector in key order
func (f *Field) Sectors() []SectorCoord {
	coords := make([]SectorCoord, 0, f.sectors.Len())
	f.sectors.Each(func(x, y int32, _ *Sector) {
		coords = append(coords, SectorCoord{X: x, Y: y})
	})
	return coords
}

// CollapseSector solves every cell of the sector. It does nothing if no
// sector exists at the location. On contradiction the sector keeps its
// partial state; ResetSector makes it solvable again.
func (f *Field) CollapseSector(x, y int32, rng RandomSource) error {
	sector, ok := f.sectors.Get(x, y)
	if !ok {
		return nil
	}

	start := time.Now()
	solver := NewSolver(f.catalog, sector, rng)
	if err := solver.Solve(); err != nil {
		return fmt.Errorf("sector (%d, %d): %w", x, y, err)
	}

	logger.Debug("Sector collapsed",
		"x", x,
		"y", y,
		"steps", solver.Steps(),
		"duration", time.Since(start))
	return nil
}

// ResetSector returns every cell of the sector to full superposition
func (f *Field) ResetSector(x, y int32) error {
	sector, ok := f.sectors.Get(x, y)
	if !ok {
		return fmt.Errorf("%w: (%d, %d)", ErrNoSector, x, y)
	}
	sector.Reset(f.catalog)
	return nil
}

// RenderRecords yields render data for every decided cell of the sector in
// row-major order. The sequence is empty if the sector does not exist.
func (f *Field) RenderRecords(x, y int32) iter.Seq[RenderRecord] {
	return func(yield func(RenderRecord) bool) {
		sector, ok := f.sectors.Get(x, y)
		if !ok {
			return
		}
		for rec := range sector.Records(f.catalog, f.config.CellWidth, f.config.CellHeight) {
			if !yield(rec) {
				return
			}
		}
	}
}

// EachRenderRecord calls fn once per decided cell of the sector, row-major
func (f *Field) EachRenderRecord(x, y int32, fn func(RenderRecord)) {
	for rec := range f.RenderRecords(x, y) {
		fn(rec)
	}
}
