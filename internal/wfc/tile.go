package wfc

import "math"

// Direction represents a cardinal direction in the grid.
// The values double as indexes into a tile's edge array, which is ordered
// clockwise starting from the top.
type Direction int

const (
	North Direction = iota // up
	East                   // right
	South                  // down
	West                   // left
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Offset returns the cell step for the direction. Y grows downward.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	return 0, 0
}

// AllDirections returns all four cardinal directions
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// TileHandle identifies a concrete tile variant in a Catalog.
type TileHandle int

// ClassHandle identifies a user-authored tile id before rotation expansion.
type ClassHandle int

// EdgeHandle identifies an interned edge id.
type EdgeHandle int

// TextureHandle identifies an interned texture id.
type TextureHandle int

// Edges holds one edge per direction, indexed by Direction.
type Edges [4]EdgeHandle

// Rotate returns the edges turned clockwise by the given number of quarter
// turns. A clockwise turn shifts every edge one slot to the right.
func (e Edges) Rotate(quarterTurns int) Edges {
	r := ((quarterTurns % 4) + 4) % 4
	var out Edges
	for i := range e {
		out[(i+r)%4] = e[i]
	}
	return out
}

// TileVariant is a placeable tile: a class at a specific rotation.
type TileVariant struct {
	Edges    Edges
	Texture  TextureHandle
	Rotation int // quarter turns clockwise, 0-3
	Class    ClassHandle
}

// Edge returns the edge facing the given direction
func (t TileVariant) Edge(dir Direction) EdgeHandle {
	return t.Edges[dir]
}

// Radians returns the variant's rotation as an angle
func (t TileVariant) Radians() float64 {
	return float64(t.Rotation) * math.Pi / 2
}
