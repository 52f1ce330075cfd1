package wfc

import "iter"

// RenderRecord is what a renderer needs to draw one decided cell
type RenderRecord struct {
	CellX, CellY int      // position within the sector
	World        Position // top-left corner in world space
	Texture      string
	Rotation     float64 // radians, clockwise
}

// Records yields a render record for every decided cell of the sector in
// row-major order. Undecided and contradicted cells are skipped. The sequence
// can be ranged over any number of times.
func (s *Sector) Records(catalog *Catalog, cellWidth, cellHeight float64) iter.Seq[RenderRecord] {
	return func(yield func(RenderRecord) bool) {
		i := 0
		for pos, cell := range s.Cells(cellWidth, cellHeight) {
			x, y := s.Coords(i)
			i++

			h, ok := cell.Tile()
			if !ok {
				continue
			}
			texture, rotation, ok := catalog.RenderData(h)
			if !ok {
				continue
			}
			rec := RenderRecord{
				CellX:    x,
				CellY:    y,
				World:    pos,
				Texture:  texture,
				Rotation: rotation,
			}
			if !yield(rec) {
				return
			}
		}
	}
}
