//go:build ebiten

package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"grain-ca/internal/sims/grain"
)

// GridPainter updates a single RGBA image from lattice snapshots.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h)}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Blit uploads the snapshot into the painter image and draws it.
func (gp *GridPainter) Blit(dst *ebiten.Image, snap grain.Snapshot, scale int) error {
	if snap.Grid == nil || snap.Grid.W != gp.w || snap.Grid.H != gp.h {
		return nil
	}
	if err := fillMarkerRGBA(gp.buf, snap.Grid.Cells(), snap.Markers.Color); err != nil {
		return err
	}
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
	return nil
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
