package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/wavefield/internal/wfc"
)

// FieldYAML is the render dump of every sector in a field
type FieldYAML struct {
	Tileset      string       `yaml:"tileset,omitempty"`
	Seed         int64        `yaml:"seed"`
	SectorWidth  int          `yaml:"sector_width"`
	SectorHeight int          `yaml:"sector_height"`
	CellWidth    float64      `yaml:"cell_width"`
	CellHeight   float64      `yaml:"cell_height"`
	Sectors      []SectorYAML `yaml:"sectors"`
}

// SectorYAML holds one sector's decided cells, row-major
type SectorYAML struct {
	X     int32      `yaml:"x"`
	Y     int32      `yaml:"y"`
	Cells []CellYAML `yaml:"cells"`
}

// CellYAML is one render record
type CellYAML struct {
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	WorldX   float64 `yaml:"world_x"`
	WorldY   float64 `yaml:"world_y"`
	Texture  string  `yaml:"texture"`
	Rotation float64 `yaml:"rotation"`
}

// buildFieldYAML collects the render records of every sector
func buildFieldYAML(field *wfc.Field, seed int64) *FieldYAML {
	cfg := field.Config()
	out := &FieldYAML{
		Tileset:      field.Catalog().Name(),
		Seed:         seed,
		SectorWidth:  cfg.SectorWidth,
		SectorHeight: cfg.SectorHeight,
		CellWidth:    cfg.CellWidth,
		CellHeight:   cfg.CellHeight,
	}

	for _, sc := range field.Sectors() {
		sector := SectorYAML{X: sc.X, Y: sc.Y}
		field.EachRenderRecord(sc.X, sc.Y, func(rec wfc.RenderRecord) {
			sector.Cells = append(sector.Cells, CellYAML{
				X:        rec.CellX,
				Y:        rec.CellY,
				WorldX:   rec.World.X,
				WorldY:   rec.World.Y,
				Texture:  rec.Texture,
				Rotation: rec.Rotation,
			})
		})
		out.Sectors = append(out.Sectors, sector)
	}
	return out
}

// writeFieldYAML encodes the dump with a short header comment
func writeFieldYAML(w io.Writer, dump *FieldYAML) error {
	cells := 0
	for _, s := range dump.Sectors {
		cells += len(s.Cells)
	}

	fmt.Fprintf(w, "# Wave field render dump\n")
	fmt.Fprintf(w, "# Generated with seed: %d\n", dump.Seed)
	fmt.Fprintf(w, "# Sectors: %d, cells: %d\n\n", len(dump.Sectors), cells)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(dump); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteFieldYAMLFile writes the dump to path
func WriteFieldYAMLFile(field *wfc.Field, seed int64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	return writeFieldYAML(f, buildFieldYAML(field, seed))
}
