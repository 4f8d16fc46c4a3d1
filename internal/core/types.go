package core

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Area returns the number of cells covered by the size.
func (s Size) Area() int { return s.W * s.H }

// Sim defines the minimal contract a steppable simulation must implement.
// Step runs one full update; an error leaves the simulation in an
// unspecified state and callers should stop driving it.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64) error
	Step() error
}
