package ui

import (
	"image/color"
	"math"

	"grain-ca/internal/core"
	"grain-ca/internal/sims/grain"
)

// boundaryMask stores, per cell, the share of Moore neighbours owned by a
// different marker. Empty cells and inclusions stay at zero.
func boundaryMask(grid *core.Grid[grain.Cell], periodic bool, dst []float32) []float32 {
	dst = resizeMask(dst, grid.W*grid.H)
	moore := grain.NewMoore(grid, periodic)
	for y := 0; y < grid.H; y++ {
		for x := 0; x < grid.W; x++ {
			i := grid.Index(x, y)
			c := grid.At(x, y)
			if !c.Alive || c.Disabled {
				dst[i] = 0
				continue
			}
			n := len(moore.Coordinates(x, y))
			if n == 0 {
				dst[i] = 0
				continue
			}
			dst[i] = float32(moore.Energy(x, y, c.Marker)) / float32(n)
		}
	}
	return dst
}

// inclusionMask marks inclusion cells with full intensity.
func inclusionMask(grid *core.Grid[grain.Cell], dst []float32) []float32 {
	dst = resizeMask(dst, grid.W*grid.H)
	for i, c := range grid.Cells() {
		dst[i] = 0
		if c.Disabled {
			dst[i] = 1
		}
	}
	return dst
}

func resizeMask(dst []float32, n int) []float32 {
	if cap(dst) < n {
		return make([]float32, n)
	}
	return dst[:n]
}

// tintMask writes mask intensities into buf as translucent tint pixels.
func tintMask(buf []byte, mask []float32, tint color.RGBA) {
	const (
		maxAlpha      = 160.0
		glowBase      = 0.35
		glowRange     = 0.65
		intensityBias = 0.75
	)
	for i, v := range mask {
		base := i * 4
		intensity := clamp01(float64(v))
		if intensity == 0 {
			buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 0, 0, 0, 0
			continue
		}
		glow := glowBase + glowRange*math.Sqrt(intensity)
		// Premultiplied alpha.
		alpha := math.Round(maxAlpha * math.Pow(intensity, intensityBias))
		buf[base+0] = scaleColorComponent(tint.R, glow*alpha/255)
		buf[base+1] = scaleColorComponent(tint.G, glow*alpha/255)
		buf[base+2] = scaleColorComponent(tint.B, glow*alpha/255)
		buf[base+3] = uint8(alpha)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scaleColorComponent(value uint8, factor float64) uint8 {
	scaled := math.Round(float64(value) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
