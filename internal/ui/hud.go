//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"grain-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	headerColor = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	textColor   = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	dimColor    = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	panelColor  = color.RGBA{R: 16, G: 16, B: 20, A: 255}
)

// HUD renders the parameter panel to the right of the lattice view.
type HUD struct {
	sim      core.Sim
	width    int
	panel    *ebiten.Image
	pixel    *ebiten.Image
	snapshot core.ParameterSnapshot
	status   []string

	controls    []controlState
	intSetter   core.IntParameterSetter
	floatSetter core.FloatParameterSetter
	title       string
}

// NewHUD constructs a HUD for sim with a panel of the given width.
func NewHUD(sim core.Sim, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sim: sim, width: width, title: buildTitle(sim)}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		h.controls = newControlStates(provider.ParameterControls())
		layoutControls(h.controls, width)
	}
	h.intSetter, _ = sim.(core.IntParameterSetter)
	h.floatSetter, _ = sim.(core.FloatParameterSetter)
	return h
}

// Width returns the panel width in pixels.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// SetStatus replaces the free-form lines drawn under the parameters.
func (h *HUD) SetStatus(lines ...string) {
	if h == nil {
		return
	}
	h.status = lines
}

// Update refreshes the parameter snapshot and applies button clicks. It
// reports whether the click landed on the panel.
func (h *HUD) Update(panelOffsetX int) bool {
	if h == nil {
		return false
	}
	if provider, ok := h.sim.(core.ParameterProvider); ok {
		h.snapshot = provider.Parameters()
	} else {
		h.snapshot = core.ParameterSnapshot{}
	}
	for i := range h.controls {
		h.controls[i].refresh(h.snapshot)
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return false
	}
	mx, my := ebiten.CursorPosition()
	if mx < panelOffsetX {
		return false
	}
	if i, dir, ok := hit(h.controls, mx-panelOffsetX, my); ok {
		h.controls[i].adjust(dir, h.intSetter, h.floatSetter)
	}
	return true
}

// Draw paints the panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := h.sim.Size().H * scale
	if height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(panelColor)
	h.drawContents()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func buildTitle(sim core.Sim) string {
	name := sim.Name()
	if name == "" {
		return "Controls"
	}
	return strings.ToUpper(name[:1]) + name[1:] + " Controls"
}

func (h *HUD) drawContents() {
	face := basicfont.Face7x13
	text.Draw(h.panel, h.title, face, panelPadding, panelPadding+headerBaseline, headerColor)

	y := controlsTop
	for i := range h.controls {
		st := &h.controls[i]
		text.Draw(h.panel, st.control.Label, face, panelPadding, st.top+labelBaseline, textColor)
		valueColor := textColor
		if !st.hasValue {
			valueColor = dimColor
		}
		bounds := text.BoundString(face, st.value)
		text.Draw(h.panel, st.value, face, st.minusRect.Min.X-buttonGap-bounds.Dx(), st.top+labelBaseline, valueColor)
		_, canDec := st.target(-1)
		_, canInc := st.target(1)
		h.drawButton(st.minusRect, "-", canDec)
		h.drawButton(st.plusRect, "+", canInc)
		y = st.top + lineHeight
	}

	y += infoSpacing
	for _, line := range infoLines(h.snapshot, h.controls) {
		text.Draw(h.panel, line, face, panelPadding, y, dimColor)
		y += infoSpacing
	}
	y += infoSpacing / 2
	for _, line := range h.status {
		text.Draw(h.panel, line, face, panelPadding, y, textColor)
		y += infoSpacing
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

// StatusLine formats a labelled value for SetStatus.
func StatusLine(label string, value any) string {
	return fmt.Sprintf("%s: %v", label, value)
}
