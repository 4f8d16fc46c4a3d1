package grain

import (
	"fmt"

	"grain-ca/internal/core"
)

// Step advances the lattice by one pass of the active rule. SRX has no rule
// and reports ErrUnsupportedMode.
func (s *Space) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.mode {
	case GrainGrowth:
		s.stepGrainGrowth()
	case MonteCarlo:
		s.stepMonteCarlo()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMode, s.mode)
	}
	s.steps++
	return nil
}

// stepGrainGrowth evaluates every cell against the current lattice into a new
// grid and swaps it in once the pass is complete.
func (s *Space) stepGrainGrowth() {
	next := core.NewGrid[Cell](s.size.W, s.size.H)
	for y := 0; y < s.size.H; y++ {
		for x := 0; x < s.size.W; x++ {
			next.Set(x, y, s.nbhd.NextState(x, y))
		}
	}
	s.grid = next
}

// stepMonteCarlo runs one Potts trial per border listing. Accepted flips are
// written in place, so later trials in the same pass see them.
func (s *Space) stepMonteCarlo() {
	accepted := 0
	border := s.findBorderGrains()
	for _, p := range border {
		cur := s.grid.At(p.X, p.Y)
		if cur.Disabled {
			continue
		}
		candidates := s.nbhd.Markers(p.X, p.Y)
		if len(candidates) == 0 {
			continue
		}
		before := s.nbhd.Energy(p.X, p.Y, cur.Marker)
		candidate := candidates[s.rng.IntN(len(candidates))]
		after := s.nbhd.Energy(p.X, p.Y, candidate)
		if after-before <= 0 {
			cur.Marker = candidate
			s.grid.Set(p.X, p.Y, cur)
			accepted++
		}
	}
	s.log.Trace().Int("trials", len(border)).Int("accepted", accepted).Msg("monte carlo step")
}

// FindBorderGrains lists live cells with a Moore neighbour of a different
// marker, once per differing neighbour, in row-major order.
func (s *Space) FindBorderGrains() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findBorderGrains()
}

func (s *Space) findBorderGrains() []Point {
	var out []Point
	for y := 0; y < s.size.H; y++ {
		for x := 0; x < s.size.W; x++ {
			c := s.grid.At(x, y)
			if !c.Alive {
				continue
			}
			for _, n := range s.border.Coordinates(x, y) {
				if s.grid.At(n.X, n.Y).Marker != c.Marker {
					out = append(out, Point{X: x, Y: y})
				}
			}
		}
	}
	return out
}
