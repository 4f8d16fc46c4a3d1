package grain

import (
	"image/color"
	"testing"

	"grain-ca/internal/testutil/testlog"
)

func newTestSpace(t *testing.T, w, h int, mode TaskMode, opts ...Option) *Space {
	t.Helper()
	opts = append([]Option{WithLogger(testlog.New(t))}, opts...)
	s, err := New(h, w, mode, opts...)
	if err != nil {
		t.Fatalf("New(%d,%d,%s): %v", h, w, mode, err)
	}
	return s
}

// paint replaces the lattice with rows of letters. '.' is an empty cell, '#'
// an inclusion, and any other byte a live cell owned by the mapped marker.
// Markers are registered so colour lookups stay consistent.
func paint(t *testing.T, s *Space, rows []string, markers map[byte]Marker) {
	t.Helper()
	if len(rows) != s.size.H {
		t.Fatalf("paint: %d rows for height %d", len(rows), s.size.H)
	}
	for _, m := range markers {
		s.markers.colors[m] = color.RGBA{R: uint8(m), G: uint8(m >> 8), B: uint8(m >> 16), A: 255}
	}
	for y, row := range rows {
		if len(row) != s.size.W {
			t.Fatalf("paint: row %d has %d cells for width %d", y, len(row), s.size.W)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '.':
				s.grid.Set(x, y, EmptyCell())
			case '#':
				s.grid.Set(x, y, InclusionCell())
			default:
				m, ok := markers[row[x]]
				if !ok {
					t.Fatalf("paint: no marker for %q", row[x])
				}
				s.grid.Set(x, y, NewCell(true, m))
			}
		}
	}
}

func countPoint(points []Point, p Point) int {
	n := 0
	for _, q := range points {
		if q == p {
			n++
		}
	}
	return n
}
