package export

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"grain-ca/internal/sims/grain"
)

// ErrNoSamples is returned when plotting an empty series.
var ErrNoSamples = errors.New("export: no samples to plot")

// Series accumulates lattice statistics over a run. It is safe for concurrent
// use so a runner observer can record while another goroutine reads.
type Series struct {
	mu      sync.Mutex
	samples []grain.Stats
}

// Record appends a sample.
func (s *Series) Record(st grain.Stats) {
	s.mu.Lock()
	s.samples = append(s.samples, st)
	s.mu.Unlock()
}

// Samples returns a copy of the recorded samples.
func (s *Series) Samples() []grain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]grain.Stats, len(s.samples))
	copy(out, s.samples)
	return out
}

// Len returns the number of recorded samples.
func (s *Series) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// SavePlot draws grain and border counts against the step number and writes
// the figure to path. The file extension selects the image format.
func (s *Series) SavePlot(path, title string) error {
	samples := s.Samples()
	if len(samples) == 0 {
		return ErrNoSamples
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Count"

	grains := make(plotter.XYs, len(samples))
	border := make(plotter.XYs, len(samples))
	for i, st := range samples {
		grains[i].X = float64(st.Step)
		grains[i].Y = float64(st.Grains)
		border[i].X = float64(st.Step)
		border[i].Y = float64(st.Border)
	}
	if err := plotutil.AddLinePoints(p, "Grains", grains, "Border sites", border); err != nil {
		return fmt.Errorf("export: add plot lines: %w", err)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("export: save plot %s: %w", path, err)
	}
	return nil
}
