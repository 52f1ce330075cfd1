package wfc

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/wavefield/internal/grid"
	"github.com/lawnchairsociety/wavefield/internal/logger"
)

// Generator fills sectors of a field, retrying a sector with a fresh seed when
// its solve ends in a contradiction
type Generator struct {
	field      *Field
	seed       int64
	maxRetries int
}

// NewGenerator creates a generator. maxRetries below 1 means a single attempt.
func NewGenerator(field *Field, seed int64, maxRetries int) *Generator {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Generator{
		field:      field,
		seed:       seed,
		maxRetries: maxRetries,
	}
}

// Field returns the field being generated
func (g *Generator) Field() *Field {
	return g.field
}

// SectorSeed returns the base seed for a sector. It depends only on the
// generator seed and the coordinates, so the order sectors are generated in
// does not change their contents.
func (g *Generator) SectorSeed(x, y int32) int64 {
	return g.seed ^ int64(grid.ToHash(x, y))
}

// Generate makes sure the sector exists and is fully collapsed. An already
// collapsed sector is returned untouched.
func (g *Generator) Generate(x, y int32) (*Sector, error) {
	sector, ok := g.field.Sector(x, y)
	if !ok {
		var err error
		sector, err = g.field.AddSector(x, y)
		if err != nil {
			return nil, err
		}
	}
	if sector.Collapsed() {
		return sector, nil
	}

	if err := g.CollapseSectorWithRetry(x, y); err != nil {
		return nil, err
	}
	return sector, nil
}

// CollapseSectorWithRetry collapses an existing sector. On contradiction the
// sector is reset and solved again with seed + attempt*1000. A sector that
// already holds a contradiction is reset before the first attempt.
func (g *Generator) CollapseSectorWithRetry(x, y int32) error {
	sector, ok := g.field.Sector(x, y)
	if !ok {
		return fmt.Errorf("%w: (%d, %d)", ErrNoSector, x, y)
	}

	var lastErr error
	base := g.SectorSeed(x, y)

	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if attempt > 0 || sector.Contradicted() {
			if err := g.field.ResetSector(x, y); err != nil {
				return err
			}
		}

		rng := rand.New(rand.NewSource(base + int64(attempt*1000)))
		err := g.field.CollapseSector(x, y, rng)
		if err == nil {
			if attempt > 0 {
				logger.Info("Sector solved after retry", "x", x, "y", y, "attempts", attempt+1)
			}
			return nil
		}
		if !errors.Is(err, ErrContradiction) {
			return err
		}

		lastErr = err
		logger.Warning("Sector contradiction, retrying", "x", x, "y", y, "attempt", attempt+1, "error", err)
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrNoSolution, g.maxRetries, lastErr)
}

// GenerateArea generates every sector in the inclusive rectangle, row by row
func (g *Generator) GenerateArea(minX, minY, maxX, maxY int32) error {
	if maxX < minX || maxY < minY {
		return fmt.Errorf("%w: area (%d, %d)-(%d, %d)", ErrInvalidSize, minX, minY, maxX, maxY)
	}
	// int32 counters would wrap at math.MaxInt32
	for y := int64(minY); y <= int64(maxY); y++ {
		for x := int64(minX); x <= int64(maxX); x++ {
			if _, err := g.Generate(int32(x), int32(y)); err != nil {
				return err
			}
		}
	}
	return nil
}
