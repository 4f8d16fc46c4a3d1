package grain

import (
	"slices"
	"sort"

	"grain-ca/internal/core"
)

// Lattice is the read-only grid view a Neighbourhood evaluates against.
type Lattice interface {
	Size() core.Size
	At(x, y int) Cell
}

// Neighbourhood computes neighbour relations for a coordinate on a lattice.
// Implementations read the lattice at call time, so results track whatever
// grid the lattice currently exposes.
type Neighbourhood interface {
	Name() string
	// Coordinates lists neighbour coordinates in a fixed order.
	Coordinates(x, y int) []Point
	// Energy counts neighbours whose marker differs from candidate.
	Energy(x, y int, candidate Marker) int
	// Markers lists the markers neighbours could donate, in Coordinates
	// order. Duplicates are kept; only live grain cells donate.
	Markers(x, y int) []Marker
	// NextState is the grain-growth rule's next state for (x, y).
	NextState(x, y int) Cell
	Periodic() bool
}

// Factory builds a Neighbourhood over a lattice with the given boundary mode.
type Factory func(l Lattice, periodic bool) Neighbourhood

var neighbourhoods = map[string]Factory{}

// RegisterNeighbourhood adds a neighbourhood factory under the provided name.
func RegisterNeighbourhood(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	neighbourhoods[name] = f
}

// LookupNeighbourhood returns the factory registered under name.
func LookupNeighbourhood(name string) (Factory, bool) {
	f, ok := neighbourhoods[name]
	return f, ok
}

// NeighbourhoodNames lists the registered names in sorted order.
func NeighbourhoodNames() []string {
	names := make([]string, 0, len(neighbourhoods))
	for name := range neighbourhoods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	mooreOffsets = []Point{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
	vonNeumannOffsets = []Point{
		{0, -1},
		{-1, 0}, {1, 0},
		{0, 1},
	}
)

// Stencil is a Neighbourhood defined by a fixed list of relative offsets.
type Stencil struct {
	name     string
	offsets  []Point
	periodic bool
	lattice  Lattice
}

// NewStencil builds a neighbourhood from arbitrary offsets. The origin offset
// is dropped.
func NewStencil(name string, offsets []Point, l Lattice, periodic bool) *Stencil {
	offs := slices.DeleteFunc(slices.Clone(offsets), func(p Point) bool { return p == Point{} })
	return &Stencil{name: name, offsets: offs, periodic: periodic, lattice: l}
}

// NewMoore returns the 8-neighbour Moore neighbourhood.
func NewMoore(l Lattice, periodic bool) *Stencil {
	return NewStencil("moore", mooreOffsets, l, periodic)
}

// NewVonNeumann returns the 4-neighbour von Neumann neighbourhood.
func NewVonNeumann(l Lattice, periodic bool) *Stencil {
	return NewStencil("vonneumann", vonNeumannOffsets, l, periodic)
}

// Name identifies the neighbourhood shape.
func (s *Stencil) Name() string { return s.name }

// Periodic reports whether coordinates wrap at the lattice edges.
func (s *Stencil) Periodic() bool { return s.periodic }

// Coordinates returns the neighbours of (x, y). In bounded mode neighbours
// outside the lattice are omitted.
func (s *Stencil) Coordinates(x, y int) []Point {
	size := s.lattice.Size()
	out := make([]Point, 0, len(s.offsets))
	for _, off := range s.offsets {
		nx, ny := x+off.X, y+off.Y
		if s.periodic {
			nx = ((nx+size.W)%size.W + size.W) % size.W
			ny = ((ny+size.H)%size.H + size.H) % size.H
		} else if nx < 0 || nx >= size.W || ny < 0 || ny >= size.H {
			continue
		}
		out = append(out, Point{X: nx, Y: ny})
	}
	return out
}

// Energy counts neighbours whose marker differs from candidate.
func (s *Stencil) Energy(x, y int, candidate Marker) int {
	energy := 0
	for _, p := range s.Coordinates(x, y) {
		if s.lattice.At(p.X, p.Y).Marker != candidate {
			energy++
		}
	}
	return energy
}

// Markers returns the markers of live, non-inclusion neighbours. Empty cells
// never donate, so a grain cannot be flipped back to MarkerEmpty.
func (s *Stencil) Markers(x, y int) []Marker {
	coords := s.Coordinates(x, y)
	out := make([]Marker, 0, len(coords))
	for _, p := range coords {
		c := s.lattice.At(p.X, p.Y)
		if !c.Alive || c.Disabled {
			continue
		}
		out = append(out, c.Marker)
	}
	return out
}

// NextState grows empty cells into the most frequent marker among live,
// non-inclusion neighbours. Ties go to the lowest marker value. Live and
// disabled cells keep their state.
func (s *Stencil) NextState(x, y int) Cell {
	cur := s.lattice.At(x, y)
	if cur.Alive || cur.Disabled {
		return cur
	}

	type tally struct {
		marker Marker
		count  int
	}
	var counts []tally
	for _, p := range s.Coordinates(x, y) {
		c := s.lattice.At(p.X, p.Y)
		if !c.Alive || c.Disabled {
			continue
		}
		i := slices.IndexFunc(counts, func(t tally) bool { return t.marker == c.Marker })
		if i < 0 {
			counts = append(counts, tally{marker: c.Marker, count: 1})
			continue
		}
		counts[i].count++
	}
	if len(counts) == 0 {
		return cur
	}

	best := counts[0]
	for _, t := range counts[1:] {
		if t.count > best.count || (t.count == best.count && t.marker < best.marker) {
			best = t
		}
	}
	return NewCell(true, best.marker)
}

func init() {
	RegisterNeighbourhood("moore", func(l Lattice, periodic bool) Neighbourhood {
		return NewMoore(l, periodic)
	})
	RegisterNeighbourhood("vonneumann", func(l Lattice, periodic bool) Neighbourhood {
		return NewVonNeumann(l, periodic)
	})
}
