// Package grain implements grain growth on a 2D lattice with two update rules:
// a deterministic cellular automaton and a Monte Carlo Potts model.
package grain

import "fmt"

// Marker identifies a grain. Cells sharing a marker belong to the same grain.
type Marker int64

const (
	// MarkerEmpty is carried by dead cells that no grain has reached yet.
	MarkerEmpty Marker = 0
	// MarkerInclusion is carried by disabled inclusion cells.
	MarkerInclusion Marker = 1
)

// Reserved reports whether m is one of the registry's built-in markers.
func (m Marker) Reserved() bool { return m == MarkerEmpty || m == MarkerInclusion }

func (m Marker) String() string {
	switch m {
	case MarkerEmpty:
		return "empty"
	case MarkerInclusion:
		return "inclusion"
	default:
		return fmt.Sprintf("%#x", uint64(m))
	}
}

// Cell is the smallest unit of state on the lattice.
type Cell struct {
	Alive  bool
	Marker Marker
	// Disabled cells are permanent matter and are never re-evaluated.
	Disabled bool
}

// NewCell returns a live or dead cell owned by marker.
func NewCell(alive bool, marker Marker) Cell {
	return Cell{Alive: alive, Marker: marker}
}

// EmptyCell returns a dead cell carrying MarkerEmpty.
func EmptyCell() Cell { return Cell{Marker: MarkerEmpty} }

// InclusionCell returns a disabled inclusion cell.
func InclusionCell() Cell {
	return Cell{Alive: true, Marker: MarkerInclusion, Disabled: true}
}

// Point is a lattice coordinate with x as column and y as row.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }
