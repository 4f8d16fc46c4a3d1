//go:build ebiten

package ui

import (
	"image/color"

	"grain-ca/internal/sims/grain"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var (
	boundaryTint  = color.RGBA{R: 20, G: 20, B: 28, A: 255}
	inclusionTint = color.RGBA{R: 255, G: 64, B: 64, A: 255}
)

// Overlay draws optional grain boundary and inclusion highlights over the
// lattice. B toggles boundaries, H toggles inclusions.
type Overlay struct {
	scale          int
	periodic       bool
	showBoundaries bool
	showInclusions bool

	img  *ebiten.Image
	buf  []byte
	mask []float32
}

// NewOverlay constructs an overlay for a lattice drawn at scale.
func NewOverlay(scale int, periodic bool) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	return &Overlay{scale: scale, periodic: periodic}
}

// Update handles the toggle keys.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		o.showBoundaries = !o.showBoundaries
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.showInclusions = !o.showInclusions
	}
}

// Draw renders the enabled masks for snap.
func (o *Overlay) Draw(screen *ebiten.Image, snap grain.Snapshot) {
	if snap.Grid == nil || (!o.showBoundaries && !o.showInclusions) {
		return
	}
	w, h := snap.Grid.W, snap.Grid.H
	if o.img == nil || o.img.Bounds().Dx() != w || o.img.Bounds().Dy() != h {
		o.img = ebiten.NewImage(w, h)
		o.buf = make([]byte, 4*w*h)
	}
	if o.showBoundaries {
		o.mask = boundaryMask(snap.Grid, o.periodic, o.mask)
		o.drawMask(screen, boundaryTint)
	}
	if o.showInclusions {
		o.mask = inclusionMask(snap.Grid, o.mask)
		o.drawMask(screen, inclusionTint)
	}
}

func (o *Overlay) drawMask(screen *ebiten.Image, tint color.RGBA) {
	tintMask(o.buf, o.mask, tint)
	o.img.WritePixels(o.buf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.img, op)
}
