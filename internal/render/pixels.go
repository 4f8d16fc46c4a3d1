package render

import (
	"fmt"
	"image"
	"image/color"

	"grain-ca/internal/sims/grain"
)

// ColorFunc resolves a marker to its display colour.
type ColorFunc func(grain.Marker) (color.RGBA, error)

// fillMarkerRGBA converts cells into RGBA pixels in buf using colorOf. An
// unresolvable marker aborts the fill.
func fillMarkerRGBA(buf []byte, cells []grain.Cell, colorOf ColorFunc) error {
	if len(buf) < 4*len(cells) {
		return fmt.Errorf("render: buffer holds %d pixels, need %d", len(buf)/4, len(cells))
	}
	var (
		last    grain.Marker
		lastCol color.RGBA
		cached  bool
	)
	for i, c := range cells {
		// Neighbouring cells mostly share a grain.
		if !cached || c.Marker != last {
			col, err := colorOf(c.Marker)
			if err != nil {
				return fmt.Errorf("render: cell %d: %w", i, err)
			}
			last, lastCol, cached = c.Marker, col, true
		}
		base := i * 4
		buf[base+0] = lastCol.R
		buf[base+1] = lastCol.G
		buf[base+2] = lastCol.B
		buf[base+3] = lastCol.A
	}
	return nil
}

// Image renders a snapshot into an RGBA image, each cell scale x scale pixels.
func Image(snap grain.Snapshot, scale int) (*image.RGBA, error) {
	if scale <= 0 {
		scale = 1
	}
	g := snap.Grid
	base := make([]byte, 4*g.W*g.H)
	if err := fillMarkerRGBA(base, g.Cells(), snap.Markers.Color); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, g.W*scale, g.H*scale))
	if scale == 1 {
		copy(img.Pix, base)
		return img, nil
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			src := base[(y*g.W+x)*4 : (y*g.W+x)*4+4]
			for dy := 0; dy < scale; dy++ {
				row := img.PixOffset(x*scale, y*scale+dy)
				for dx := 0; dx < scale; dx++ {
					copy(img.Pix[row+dx*4:row+dx*4+4], src)
				}
			}
		}
	}
	return img, nil
}
