package grain

import (
	"fmt"
	"math"

	"grain-ca/internal/core"
)

// generateMonteCarlo allocates the configured number of markers and assigns
// every cell one of them. The pick is rand(2000) % count, which is only
// uniform when count divides 2000.
func (s *Space) generateMonteCarlo() error {
	if s.grains <= 0 || s.grains > s.size.Area() {
		return fmt.Errorf("%w: generated grains %d for %d cells", ErrInvalidConfig, s.grains, s.size.Area())
	}
	markers := make([]Marker, s.grains)
	for i := range markers {
		markers[i] = s.markers.Allocate(s.rng)
	}
	grid := core.NewGrid[Cell](s.size.W, s.size.H)
	cells := grid.Cells()
	for i := range cells {
		cells[i] = NewCell(true, markers[s.rng.IntN(monteCarloSpread)%len(markers)])
	}
	s.grid = grid
	s.log.Debug().Int("grains", s.grains).Msg("monte carlo lattice generated")
	return nil
}

func (s *Space) checkSeedCount(what string, n int) error {
	if n <= 0 || n > s.size.Area() {
		return fmt.Errorf("%w: %s %d for %d cells", ErrInvalidConfig, what, n, s.size.Area())
	}
	return nil
}

// plant places a new grain at (x, y) unless the cell is an inclusion.
func (s *Space) plant(x, y int) (Marker, bool) {
	if s.grid.At(x, y).Disabled {
		return 0, false
	}
	m := s.markers.Allocate(s.rng)
	s.grid.Set(x, y, NewCell(true, m))
	return m, true
}

// RandomPlacement places n grains at uniformly random coordinates. Later
// seeds may land on earlier ones; inclusions are never overwritten.
func (s *Space) RandomPlacement(n int) error {
	if err := s.checkSeedCount("random grains", n); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	placed := 0
	for i := 0; i < n; i++ {
		x := s.rng.IntN(s.size.W)
		y := s.rng.IntN(s.size.H)
		if _, ok := s.plant(x, y); ok {
			placed++
		}
	}
	s.log.Debug().Int("requested", n).Int("placed", placed).Msg("random placement")
	return nil
}

// UniformPlacement tiles the lattice into a near-square rows x cols layout and
// places one grain at each tile centre, row-major, stopping after n grains.
// rows = cols = floor(sqrt(n)); an even remainder is split between rows and
// cols, an odd remainder goes to rows.
func (s *Space) UniformPlacement(n int) error {
	if err := s.checkSeedCount("uniform grains", n); err != nil {
		return err
	}
	rows, cols := uniformTiling(n)
	rowSpan := s.size.H / rows
	colSpan := s.size.W / cols
	if rowSpan == 0 || colSpan == 0 {
		return fmt.Errorf("%w: %dx%d tiling does not fit %dx%d lattice", ErrInvalidConfig, cols, rows, s.size.W, s.size.H)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	placed := 0
	for i := 0; i < rows && placed < n; i++ {
		for j := 0; j < cols && placed < n; j++ {
			y := rowSpan/2 + i*rowSpan
			x := colSpan/2 + j*colSpan
			s.plant(x, y)
			placed++
		}
	}
	s.log.Debug().Int("rows", rows).Int("cols", cols).Int("placed", placed).Msg("uniform placement")
	return nil
}

func uniformTiling(n int) (rows, cols int) {
	base := int(math.Sqrt(float64(n)))
	rows, cols = base, base
	if diff := n - base*base; diff != 0 {
		if diff%2 == 0 {
			rows += diff / 2
			cols += diff / 2
		} else {
			rows += diff
		}
	}
	return rows, cols
}

// PlaceInclusions picks k random coordinates and turns each, along with its
// neighbours under the active neighbourhood, into inclusion cells.
func (s *Space) PlaceInclusions(k int) error {
	if err := s.checkSeedCount("inclusions", k); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < k; i++ {
		x := s.rng.IntN(s.size.W)
		y := s.rng.IntN(s.size.H)
		s.grid.Set(x, y, InclusionCell())
		for _, p := range s.nbhd.Coordinates(x, y) {
			s.grid.Set(p.X, p.Y, InclusionCell())
		}
	}
	s.log.Debug().Int("inclusions", k).Msg("inclusions placed")
	return nil
}

// PlaceGrain seeds a single new grain at (x, y) and returns its marker.
func (s *Space) PlaceGrain(x, y int) (Marker, error) {
	if x < 0 || x >= s.size.W || y < 0 || y >= s.size.H {
		return 0, fmt.Errorf("%w: (%d,%d) outside %dx%d lattice", ErrInvalidConfig, x, y, s.size.W, s.size.H)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.plant(x, y)
	if !ok {
		return 0, fmt.Errorf("%w: (%d,%d) is an inclusion", ErrInvalidConfig, x, y)
	}
	return m, nil
}
