package wfc

import (
	"github.com/zyedidia/generic/mapset"
)

// Solver runs lowest-entropy-first collapse with constraint propagation over
// a single sector. It mutates the sector's cells in place and is not safe for
// concurrent use; the catalog is only read.
type Solver struct {
	catalog *Catalog
	sector  *Sector
	rng     RandomSource

	steps int
	done  bool
}

// NewSolver creates a solver for the sector
func NewSolver(catalog *Catalog, sector *Sector, rng RandomSource) *Solver {
	return &Solver{
		catalog: catalog,
		sector:  sector,
		rng:     rng,
	}
}

// Steps returns the number of collapses performed
func (s *Solver) Steps() int {
	return s.steps
}

// Done returns true once every cell is decided
func (s *Solver) Done() bool {
	return s.done
}

// Solve collapses cells until every cell is decided. A contradiction stops
// the solve with a *ContradictionError.
func (s *Solver) Solve() error {
	if err := s.propagateAll(); err != nil {
		return err
	}
	for !s.done {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step collapses the undecided cell with the lowest entropy and propagates
// the consequences. It marks the solver done when no undecided cell remains.
func (s *Solver) Step() error {
	if s.done {
		return nil
	}

	i, err := s.pickLowestEntropyCell()
	if err != nil {
		return err
	}
	if i < 0 {
		s.done = true
		return nil
	}

	if _, err := s.sector.cells[i].Collapse(s.catalog, s.rng); err != nil {
		return s.contradiction(i)
	}
	s.steps++

	return s.propagate([]int{i})
}

// pickLowestEntropyCell returns the undecided cell with the fewest candidates,
// lowest index first on ties, or -1 if every cell is decided
func (s *Solver) pickLowestEntropyCell() (int, error) {
	best := -1
	bestCount := 0

	for i := range s.sector.cells {
		c := s.sector.cells[i].Entropy()
		if c == 0 {
			return -1, s.contradiction(i)
		}
		if c == 1 {
			continue
		}
		if best < 0 || c < bestCount {
			best = i
			bestCount = c
		}
	}
	return best, nil
}

// propagateAll runs one propagation pass seeded with every cell, so border
// constraints and pre-placed tiles are honoured before the first collapse
func (s *Solver) propagateAll() error {
	start := make([]int, len(s.sector.cells))
	for i := range start {
		start[i] = i
	}
	return s.propagate(start)
}

// propagate restricts neighbours of the queued cells, re-queuing any
// neighbour whose candidate set shrank, until nothing changes
func (s *Solver) propagate(start []int) error {
	queue := append(make([]int, 0, 64), start...)
	head := 0

	for head < len(queue) {
		c := queue[head]
		head++

		for _, dir := range AllDirections() {
			n := s.sector.neighbor(c, dir)
			if n < 0 {
				continue
			}

			allowed, constrained := s.allowedFrom(c, dir)
			if !constrained {
				continue
			}

			if s.sector.cells[n].Restrict(allowed) {
				if s.sector.cells[n].Contradicted() {
					return s.contradiction(n)
				}
				queue = append(queue, n)
			}
		}
	}
	return nil
}

// allowedFrom returns the union of variants permitted in direction dir by
// every candidate of cell i. It reports false when that union is every
// variant, since the neighbour then needs no restricting.
func (s *Solver) allowedFrom(i int, dir Direction) (mapset.Set[TileHandle], bool) {
	adjacency := s.catalog.Adjacency()
	edges := mapset.New[EdgeHandle]()

	s.sector.cells[i].states.Each(func(h TileHandle) {
		edges.Put(s.catalog.variants[h].Edges[dir])
	})

	allowed := mapset.New[TileHandle]()
	edges.Each(func(e EdgeHandle) {
		adjacency.Beside(dir, e).Each(func(h TileHandle) {
			allowed.Put(h)
		})
	})
	return allowed, allowed.Size() < s.catalog.Len()
}

func (s *Solver) contradiction(i int) error {
	x, y := s.sector.Coords(i)
	return &ContradictionError{X: x, Y: y}
}
