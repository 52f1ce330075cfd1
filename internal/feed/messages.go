package feed

import "github.com/lawnchairsociety/wavefield/internal/wfc"

// Request asks for the render records of one sector.
type Request struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Response carries a sector's render records, or an error message.
type Response struct {
	X       int32    `json:"x"`
	Y       int32    `json:"y"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`
	Records []Record `json:"records"`
	Error   string   `json:"error,omitempty"`
}

// Record is one decided cell. World coordinates are the cell's top-left corner.
type Record struct {
	CellX    int     `json:"cell_x"`
	CellY    int     `json:"cell_y"`
	WorldX   float64 `json:"world_x"`
	WorldY   float64 `json:"world_y"`
	Texture  string  `json:"texture"`
	Rotation float64 `json:"rotation"`
}

func newRecord(rec wfc.RenderRecord) Record {
	return Record{
		CellX:    rec.CellX,
		CellY:    rec.CellY,
		WorldX:   rec.World.X,
		WorldY:   rec.World.Y,
		Texture:  rec.Texture,
		Rotation: rec.Rotation,
	}
}
