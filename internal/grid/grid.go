// Package grid provides a sparse, logically unbounded 2D grid addressed by
// signed 32-bit coordinates.
package grid

import "slices"

// InfiniteGrid stores values at integer coordinates without allocating the
// empty space between them.
type InfiniteGrid[T any] struct {
	cells map[uint64]T
}

// New creates an empty grid
func New[T any]() *InfiniteGrid[T] {
	return &InfiniteGrid[T]{cells: make(map[uint64]T)}
}

// ToHash packs a coordinate pair into a single key.
// The low 32 bits hold x and the high 32 bits hold y, both as unsigned.
func ToHash(x, y int32) uint64 {
	return uint64(uint32(x)) | uint64(uint32(y))<<32
}

// FromHash recovers the coordinate pair packed by ToHash
func FromHash(hash uint64) (int32, int32) {
	return int32(uint32(hash)), int32(uint32(hash >> 32))
}

// Get returns the value stored at (x, y)
func (g *InfiniteGrid[T]) Get(x, y int32) (T, bool) {
	v, ok := g.cells[ToHash(x, y)]
	return v, ok
}

// Has returns true if a value is stored at (x, y)
func (g *InfiniteGrid[T]) Has(x, y int32) bool {
	_, ok := g.cells[ToHash(x, y)]
	return ok
}

// Set stores a value at (x, y), replacing any existing value
func (g *InfiniteGrid[T]) Set(x, y int32, value T) {
	g.cells[ToHash(x, y)] = value
}

// Len returns the number of occupied coordinates
func (g *InfiniteGrid[T]) Len() int {
	return len(g.cells)
}

// Keys returns the occupied keys in ascending order
func (g *InfiniteGrid[T]) Keys() []uint64 {
	keys := make([]uint64, 0, len(g.cells))
	for k := range g.cells {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Each calls fn for every occupied coordinate in key order
func (g *InfiniteGrid[T]) Each(fn func(x, y int32, value T)) {
	for _, k := range g.Keys() {
		x, y := FromHash(k)
		fn(x, y, g.cells[k])
	}
}
