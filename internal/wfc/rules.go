package wfc

import (
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// AdjacencyIndex caches, per direction and edge, the tile variants that may be
// placed next to that edge. It is built once from the catalog rules and never
// modified afterwards.
//
// Edges that no rule mentions are unconstrained: they match each other freely
// but never match an edge that rules do mention. The relation stays symmetric
// either way.
type AdjacencyIndex struct {
	// compatible is the undirected edge graph: rule(a, b) links both ways
	compatible map[EdgeHandle]mapset.Set[EdgeHandle]

	// valid[dir][edge] holds the variants allowed beside a cell whose edge
	// facing dir is edge
	valid [4]map[EdgeHandle]mapset.Set[TileHandle]

	// free[dir] holds the variants whose edge facing back from dir is
	// unconstrained; they are what may sit beside an unconstrained edge
	free [4]mapset.Set[TileHandle]
}

func newAdjacencyIndex(variants []TileVariant, rules []Rule) *AdjacencyIndex {
	a := &AdjacencyIndex{
		compatible: make(map[EdgeHandle]mapset.Set[EdgeHandle]),
	}
	for i := range a.valid {
		a.valid[i] = make(map[EdgeHandle]mapset.Set[TileHandle])
	}

	for _, r := range rules {
		a.setCompatible(r.A, r.B)
	}

	for _, dir := range AllDirections() {
		tiles := mapset.New[TileHandle]()
		facing := dir.Opposite()
		for h, v := range variants {
			if !a.Constrained(v.Edges[facing]) {
				tiles.Put(TileHandle(h))
			}
		}
		a.free[dir] = tiles
	}

	// A neighbour in direction dir touches us with its opposite edge
	for edge, partners := range a.compatible {
		for _, dir := range AllDirections() {
			tiles := mapset.New[TileHandle]()
			facing := dir.Opposite()
			for h, v := range variants {
				if partners.Has(v.Edges[facing]) {
					tiles.Put(TileHandle(h))
				}
			}
			a.valid[dir][edge] = tiles
		}
	}

	return a
}

// setCompatible records a bidirectional edge pairing
func (a *AdjacencyIndex) setCompatible(e1, e2 EdgeHandle) {
	for _, pair := range [][2]EdgeHandle{{e1, e2}, {e2, e1}} {
		set, ok := a.compatible[pair[0]]
		if !ok {
			set = mapset.New[EdgeHandle]()
			a.compatible[pair[0]] = set
		}
		set.Put(pair[1])
	}
}

// Constrained returns true if at least one rule mentions the edge
func (a *AdjacencyIndex) Constrained(edge EdgeHandle) bool {
	_, ok := a.compatible[edge]
	return ok
}

// Compatible returns true if a rule pairs the two edges
func (a *AdjacencyIndex) Compatible(e1, e2 EdgeHandle) bool {
	set, ok := a.compatible[e1]
	return ok && set.Has(e2)
}

// Legal returns true if the two edges may touch: a rule pairs them, or
// neither is mentioned by any rule
func (a *AdjacencyIndex) Legal(e1, e2 EdgeHandle) bool {
	if !a.Constrained(e1) && !a.Constrained(e2) {
		return true
	}
	return a.Compatible(e1, e2)
}

// CompatibleEdges returns the edges paired with edge, in ascending order
func (a *AdjacencyIndex) CompatibleEdges(edge EdgeHandle) []EdgeHandle {
	set, ok := a.compatible[edge]
	if !ok {
		return nil
	}
	out := make([]EdgeHandle, 0, set.Size())
	set.Each(func(e EdgeHandle) {
		out = append(out, e)
	})
	slices.Sort(out)
	return out
}

// Allowed returns the rule-derived variants that may sit in direction dir of
// a cell whose edge facing dir is edge. The second result is false when no
// rule mentions the edge; use Beside for the full answer. The returned set is
// shared and must not be modified.
func (a *AdjacencyIndex) Allowed(dir Direction, edge EdgeHandle) (mapset.Set[TileHandle], bool) {
	var set mapset.Set[TileHandle]
	if dir < North || dir > West {
		return set, false
	}
	set, ok := a.valid[dir][edge]
	return set, ok
}

// Beside returns the variants that may sit in direction dir of a cell whose
// edge facing dir is edge. For an unconstrained edge that is every variant
// whose touching edge is unconstrained too. The returned set is shared and
// must not be modified.
func (a *AdjacencyIndex) Beside(dir Direction, edge EdgeHandle) mapset.Set[TileHandle] {
	if set, ok := a.Allowed(dir, edge); ok {
		return set
	}
	if dir < North || dir > West {
		return mapset.New[TileHandle]()
	}
	return a.free[dir]
}

// AllowedList is Allowed with the handles sorted, for inspection and tests
func (a *AdjacencyIndex) AllowedList(dir Direction, edge EdgeHandle) []TileHandle {
	set, ok := a.Allowed(dir, edge)
	if !ok {
		return nil
	}
	return sortedHandles(set)
}

func sortedHandles(set mapset.Set[TileHandle]) []TileHandle {
	out := make([]TileHandle, 0, set.Size())
	set.Each(func(h TileHandle) {
		out = append(out, h)
	})
	slices.Sort(out)
	return out
}
