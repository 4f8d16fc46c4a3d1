package grain

import (
	"fmt"
	"image/color"
	"sync"

	prng "grain-ca/pkg/core"
)

var (
	// EmptyColor is the display colour bound to MarkerEmpty.
	EmptyColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	// InclusionColor is the display colour bound to MarkerInclusion.
	InclusionColor = color.RGBA{A: 255}
)

// Registry maps markers to display colours. Entries are only ever added, via
// Allocate, and never overwritten. It is safe for concurrent use so renderers
// can resolve colours while the engine allocates.
type Registry struct {
	mu        sync.RWMutex
	colors    map[Marker]color.RGBA
	allocated []Marker
}

// NewRegistry returns a registry holding only the reserved entries.
func NewRegistry() *Registry {
	return &Registry{
		colors: map[Marker]color.RGBA{
			MarkerEmpty:     EmptyColor,
			MarkerInclusion: InclusionColor,
		},
	}
}

// Allocate draws a random colour and a previously unused marker from r, binds
// them and returns the marker. Collisions are retried.
func (reg *Registry) Allocate(r *prng.RNG) Marker {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for {
		cr, cg, cb := r.RGB()
		m := Marker(r.Int64())
		if _, taken := reg.colors[m]; taken {
			continue
		}
		reg.colors[m] = color.RGBA{R: cr, G: cg, B: cb, A: 255}
		reg.allocated = append(reg.allocated, m)
		return m
	}
}

// Color returns the colour bound to m.
func (reg *Registry) Color(m Marker) (color.RGBA, error) {
	reg.mu.RLock()
	c, ok := reg.colors[m]
	reg.mu.RUnlock()
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: %s", ErrUnknownMarker, m)
	}
	return c, nil
}

// Contains reports whether m has an entry.
func (reg *Registry) Contains(m Marker) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	_, ok := reg.colors[m]
	return ok
}

// Len returns the number of entries, reserved ones included.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.colors)
}

// Allocated returns the allocated markers in allocation order.
func (reg *Registry) Allocated() []Marker {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return append([]Marker(nil), reg.allocated...)
}
