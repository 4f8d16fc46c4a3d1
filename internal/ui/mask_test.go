package ui

import (
	"image/color"
	"testing"

	"grain-ca/internal/core"
	"grain-ca/internal/sims/grain"
)

func gridOf(rows ...string) *core.Grid[grain.Cell] {
	g := core.NewGrid[grain.Cell](len(rows[0]), len(rows))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '.':
				g.Set(x, y, grain.EmptyCell())
			case '#':
				g.Set(x, y, grain.InclusionCell())
			default:
				g.Set(x, y, grain.NewCell(true, grain.Marker(row[x])))
			}
		}
	}
	return g
}

func TestBoundaryMask(t *testing.T) {
	g := gridOf(
		"aab",
		"aab",
		"#..",
	)
	mask := boundaryMask(g, false, nil)
	// (0,0) bounded Moore: 3 neighbours, all 'a'.
	if mask[g.Index(0, 0)] != 0 {
		t.Fatalf("interior cell mask %g", mask[g.Index(0, 0)])
	}
	// (1,0): neighbours a(0,0) b(2,0) a(0,1) a(1,1) b(2,1) -> 2/5.
	if got := mask[g.Index(1, 0)]; got != float32(2)/5 {
		t.Fatalf("boundary cell mask %g", got)
	}
	for _, p := range [][2]int{{0, 2}, {1, 2}, {2, 2}} {
		if mask[g.Index(p[0], p[1])] != 0 {
			t.Fatalf("empty or inclusion cell %v should be zero", p)
		}
	}

	reused := boundaryMask(g, true, mask)
	if &reused[0] != &mask[0] {
		t.Fatal("mask buffer should be reused")
	}
	if reused[g.Index(0, 0)] == 0 {
		t.Fatal("periodic wrap should expose the b column to (0,0)")
	}
}

func TestInclusionMaskAndTint(t *testing.T) {
	g := gridOf("a#", ".#")
	mask := inclusionMask(g, nil)
	want := []float32{0, 1, 0, 1}
	for i := range want {
		if mask[i] != want[i] {
			t.Fatalf("mask %v, want %v", mask, want)
		}
	}
	buf := make([]byte, 4*len(mask))
	for i := range buf {
		buf[i] = 99
	}
	tintMask(buf, mask, color.RGBA{R: 255, A: 255})
	if buf[3] != 0 || buf[0] != 0 {
		t.Fatalf("zero intensity should clear pixel, got %v", buf[:4])
	}
	if buf[7] != 160 || buf[4] != 160 || buf[5] != 0 {
		t.Fatalf("full intensity pixel %v", buf[4:8])
	}
}
