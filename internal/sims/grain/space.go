package grain

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"grain-ca/internal/core"
	prng "grain-ca/pkg/core"
)

// Boltzmann is the Boltzmann constant in eV/K.
const Boltzmann = 8.617332e-5

const (
	// DefaultTemperature is the initial lattice temperature in Kelvin.
	DefaultTemperature = 720.0
	// DefaultGeneratedGrains is the number of markers a Monte Carlo lattice is
	// generated with.
	DefaultGeneratedGrains = 50
	// DefaultSeed seeds the engine when no seed option is given.
	DefaultSeed int64 = 1

	// monteCarloSpread is the draw range the initial Monte Carlo assignment
	// reduces modulo the marker count.
	monteCarloSpread = 2000
)

// TaskMode selects the update rule and the seeding routine.
type TaskMode int

const (
	GrainGrowth TaskMode = iota
	MonteCarlo
	// SRX is reserved for static recrystallization and has no step rule.
	SRX
)

func (m TaskMode) String() string {
	switch m {
	case GrainGrowth:
		return "grain-growth"
	case MonteCarlo:
		return "monte-carlo"
	case SRX:
		return "srx"
	default:
		return fmt.Sprintf("TaskMode(%d)", int(m))
	}
}

// ParseTaskMode accepts the String form, with underscores or dashes and in any
// case.
func ParseTaskMode(raw string) (TaskMode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-") {
	case "grain-growth", "gg":
		return GrainGrowth, nil
	case "monte-carlo", "mc":
		return MonteCarlo, nil
	case "srx":
		return SRX, nil
	default:
		return 0, fmt.Errorf("%w: task mode %q", ErrInvalidConfig, raw)
	}
}

func (m TaskMode) valid() bool { return m >= GrainGrowth && m <= SRX }

// Option customizes a Space at construction.
type Option func(*Space)

// WithSeed seeds the engine's random source.
func WithSeed(seed int64) Option {
	return func(s *Space) { s.seed = seed }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Space) { s.log = l }
}

// WithGeneratedGrains sets the Monte Carlo marker count before the initial
// lattice is generated.
func WithGeneratedGrains(n int) Option {
	return func(s *Space) { s.grains = n }
}

// WithTemperature sets the initial temperature.
func WithTemperature(t float64) Option {
	return func(s *Space) { s.temperature = t }
}

// WithNeighbourhood selects a registered neighbourhood by name.
func WithNeighbourhood(name string, periodic bool) Option {
	return func(s *Space) {
		s.nbName = name
		s.periodic = periodic
	}
}

// Space owns the lattice, the marker registry, the active neighbourhood and
// rule. All methods are safe for concurrent use; Step holds the lock for the
// whole pass so readers only ever observe step boundaries.
type Space struct {
	mu sync.Mutex

	size    core.Size
	grid    *core.Grid[Cell]
	markers *Registry

	nbName   string
	periodic bool
	nbhd     Neighbourhood
	border   Neighbourhood

	mode        TaskMode
	temperature float64
	grains      int
	steps       uint64

	seed int64
	rng  *prng.RNG
	log  zerolog.Logger
}

var _ core.Sim = (*Space)(nil)

// New builds a height x width lattice for mode. Grain-growth and SRX lattices
// start empty; Monte Carlo lattices start fully assigned to randomly chosen
// generated markers.
func New(height, width int, mode TaskMode, opts ...Option) (*Space, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: lattice %dx%d", ErrInvalidConfig, width, height)
	}
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, mode)
	}
	s := &Space{
		size:        core.Size{W: width, H: height},
		nbName:      "moore",
		periodic:    true,
		mode:        mode,
		temperature: DefaultTemperature,
		grains:      DefaultGeneratedGrains,
		seed:        DefaultSeed,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.temperature <= 0 {
		return nil, fmt.Errorf("%w: temperature %g", ErrInvalidConfig, s.temperature)
	}
	if err := s.setNeighbourhood(s.nbName, s.periodic); err != nil {
		return nil, err
	}
	s.rng = prng.NewRNG(s.seed)
	s.markers = NewRegistry()
	if err := s.populate(); err != nil {
		return nil, err
	}
	s.log.Debug().
		Int("width", width).
		Int("height", height).
		Stringer("mode", mode).
		Int64("seed", s.seed).
		Msg("space created")
	return s, nil
}

// spaceLattice exposes the live grid to neighbourhoods. Callers hold s.mu.
type spaceLattice struct{ s *Space }

func (l spaceLattice) Size() core.Size { return l.s.size }

func (l spaceLattice) At(x, y int) Cell { return l.s.grid.At(x, y) }

func (s *Space) lattice() spaceLattice { return spaceLattice{s: s} }

// Name returns the simulation identifier.
func (s *Space) Name() string { return "grain" }

// Size reports the lattice dimensions.
func (s *Space) Size() core.Size { return s.size }

// Height returns the number of rows.
func (s *Space) Height() int { return s.size.H }

// Width returns the number of columns.
func (s *Space) Width() int { return s.size.W }

// Reset rebuilds the lattice for the current task mode with a fresh registry
// and the random source reseeded from seed.
func (s *Space) Reset(seed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = seed
	s.rng.Reseed(seed)
	s.markers = NewRegistry()
	s.steps = 0
	if err := s.populate(); err != nil {
		return err
	}
	s.log.Debug().Int64("seed", seed).Stringer("mode", s.mode).Msg("space reset")
	return nil
}

func (s *Space) populate() error {
	if s.mode == MonteCarlo {
		return s.generateMonteCarlo()
	}
	grid := core.NewGrid[Cell](s.size.W, s.size.H)
	grid.Fill(EmptyCell())
	s.grid = grid
	return nil
}

// SetTaskMode switches the rule used by later steps. The lattice is left as
// is; call Reset to regenerate it for the new mode.
func (s *Space) SetTaskMode(mode TaskMode) error {
	if !mode.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, mode)
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	return nil
}

// TaskMode returns the active mode.
func (s *Space) TaskMode() TaskMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetTemperature sets the lattice temperature in Kelvin. It is recorded for
// reporting; neither rule weighs moves by it.
func (s *Space) SetTemperature(t float64) error {
	if t <= 0 {
		return fmt.Errorf("%w: temperature %g", ErrInvalidConfig, t)
	}
	s.mu.Lock()
	s.temperature = t
	s.mu.Unlock()
	return nil
}

// Temperature returns the lattice temperature in Kelvin.
func (s *Space) Temperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temperature
}

// ThermalEnergy returns kT in eV for the current temperature.
func (s *Space) ThermalEnergy() float64 { return Boltzmann * s.Temperature() }

// SetGeneratedGrains sets how many markers the next Monte Carlo generation
// allocates.
func (s *Space) SetGeneratedGrains(n int) error {
	if n <= 0 || n > s.size.Area() {
		return fmt.Errorf("%w: generated grains %d for %d cells", ErrInvalidConfig, n, s.size.Area())
	}
	s.mu.Lock()
	s.grains = n
	s.mu.Unlock()
	return nil
}

// GeneratedGrains returns the Monte Carlo marker count.
func (s *Space) GeneratedGrains() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grains
}

// SetNeighbourhood switches to the registered neighbourhood name with the
// given boundary mode.
func (s *Space) SetNeighbourhood(name string, periodic bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setNeighbourhood(name, periodic)
}

func (s *Space) setNeighbourhood(name string, periodic bool) error {
	factory, ok := LookupNeighbourhood(name)
	if !ok {
		return fmt.Errorf("%w: %q (known: %s)", ErrUnknownNeighbourhood, name, strings.Join(NeighbourhoodNames(), ", "))
	}
	s.nbName = name
	s.periodic = periodic
	s.nbhd = factory(s.lattice(), periodic)
	// Border detection is always Moore, with the configured periodicity.
	s.border = NewMoore(s.lattice(), periodic)
	return nil
}

// Markers returns the current marker registry.
func (s *Space) Markers() *Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markers
}

// ColorOf returns the display colour of marker.
func (s *Space) ColorOf(m Marker) (color.RGBA, error) {
	return s.Markers().Color(m)
}

// Steps returns the number of steps completed since construction or Reset.
func (s *Space) Steps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

// Snapshot is a deep copy of the lattice taken at a step boundary together
// with the registry that resolves its markers.
type Snapshot struct {
	Step    uint64
	Grid    *core.Grid[Cell]
	Markers *Registry
}

// Snapshot copies the lattice. Callers own the returned grid.
func (s *Space) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Step: s.steps, Grid: s.grid.Clone(), Markers: s.markers}
}

// Stats summarizes the lattice.
type Stats struct {
	Step       uint64
	Grains     int
	Live       int
	Empty      int
	Inclusions int
	Border     int
}

// Stats computes lattice statistics. Grains counts distinct markers over live
// non-inclusion cells.
func (s *Space) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Step: s.steps}
	seen := make(map[Marker]struct{})
	for _, c := range s.grid.Cells() {
		switch {
		case c.Disabled:
			st.Inclusions++
		case c.Alive:
			st.Live++
			seen[c.Marker] = struct{}{}
		default:
			st.Empty++
		}
	}
	st.Grains = len(seen)
	st.Border = len(s.findBorderGrains())
	return st
}

// Parameters describes the engine settings for display.
func (s *Space) Parameters() core.ParameterSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Lattice",
			Params: []core.Parameter{
				core.IntParam("w", "Width", s.size.W),
				core.IntParam("h", "Height", s.size.H),
				core.StringParam("neighbourhood", "Neighbourhood", s.nbName),
				core.BoolParam("periodic", "Periodic", s.periodic),
			},
		},
		{
			Name: "Rule",
			Params: []core.Parameter{
				core.StringParam("mode", "Task mode", s.mode.String()),
				core.FloatParam("temperature", "Temperature (K)", s.temperature),
				core.IntParam("grains", "Generated grains", s.grains),
				core.IntParam("markers", "Registered markers", s.markers.Len()),
			},
		},
	}}
}

// ParameterControls lists the settings the viewer may adjust while running.
// Generated grains take effect on the next Reset.
func (s *Space) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "temperature", Label: "Temperature (K)", Type: core.ParamTypeFloat, Step: 10, Min: 10, HasMin: true},
		{Key: "grains", Label: "Generated grains", Type: core.ParamTypeInt, Step: 1, Min: 1, HasMin: true, Max: float64(s.size.Area()), HasMax: true},
	}
}

// SetIntParameter applies an integer control.
func (s *Space) SetIntParameter(key string, value int) bool {
	switch key {
	case "grains":
		return s.SetGeneratedGrains(value) == nil
	default:
		return false
	}
}

// SetFloatParameter applies a floating point control.
func (s *Space) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "temperature":
		return s.SetTemperature(value) == nil
	default:
		return false
	}
}
