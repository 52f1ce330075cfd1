package wfc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// TileData is a tile as authored in a tileset file
type TileData struct {
	ID        string   `yaml:"id"`
	TextureID string   `yaml:"texture_id"`
	EdgeIDs   []string `yaml:"edge_ids"`
	CanRotate bool     `yaml:"can_rotate"`
}

// RuleData pairs two edge ids that may touch. Written as a two element list.
type RuleData struct {
	A, B string
}

// UnmarshalYAML decodes a rule from a [edgeA, edgeB] sequence
func (r *RuleData) UnmarshalYAML(value *yaml.Node) error {
	var pair []string
	if err := value.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: rule needs 2 edge ids, got %d", value.Line, len(pair))
	}
	r.A, r.B = pair[0], pair[1]
	return nil
}

// MarshalYAML encodes a rule as a [edgeA, edgeB] sequence
func (r RuleData) MarshalYAML() (interface{}, error) {
	return []string{r.A, r.B}, nil
}

// WeightData assigns a selection weight to a tile id. Written as [tileId, weight].
type WeightData struct {
	TileID string
	Weight float64
}

// UnmarshalYAML decodes a weight from a [tileId, weight] sequence
func (w *WeightData) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 2 {
		return fmt.Errorf("line %d: weight must be a [tile_id, weight] pair", value.Line)
	}
	if err := value.Content[0].Decode(&w.TileID); err != nil {
		return err
	}
	return value.Content[1].Decode(&w.Weight)
}

// MarshalYAML encodes a weight as a [tileId, weight] sequence
func (w WeightData) MarshalYAML() (interface{}, error) {
	return []interface{}{w.TileID, w.Weight}, nil
}

// TilesetData is the declarative tileset definition consumed by NewCatalog.
// JSON documents are accepted as well since they parse as YAML.
type TilesetData struct {
	Name    string       `yaml:"name,omitempty"`
	Tiles   []TileData   `yaml:"tiles"`
	Rules   []RuleData   `yaml:"rules"`
	Weights []WeightData `yaml:"weights"`
}

// LoadTileset reads and parses a tileset definition file
func LoadTileset(path string) (*TilesetData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	td, err := ParseTileset(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return td, nil
}

// ParseTileset parses a tileset definition. Unknown fields, malformed rules or
// weights, and documents without tiles are load errors.
func ParseTileset(data []byte) (*TilesetData, error) {
	var td TilesetData

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&td); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Err: errors.New("empty tileset definition")}
		}
		return nil, &LoadError{Err: err}
	}

	if err := td.Validate(); err != nil {
		return nil, &LoadError{Err: err}
	}
	return &td, nil
}

// Validate checks the structural requirements of the definition
func (td *TilesetData) Validate() error {
	if len(td.Tiles) == 0 {
		return errors.New("tileset defines no tiles")
	}
	for i, tile := range td.Tiles {
		if tile.ID == "" {
			return fmt.Errorf("tile %d has no id", i)
		}
		if tile.TextureID == "" {
			return fmt.Errorf("tile %q has no texture_id", tile.ID)
		}
		if len(tile.EdgeIDs) != 4 {
			return fmt.Errorf("tile %q needs 4 edge ids, got %d", tile.ID, len(tile.EdgeIDs))
		}
	}
	for _, w := range td.Weights {
		// NaN fails every comparison, so test for the valid range
		if !(w.Weight >= 0) {
			return fmt.Errorf("weight for %q must not be negative, got %v", w.TileID, w.Weight)
		}
	}
	return nil
}
