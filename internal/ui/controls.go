// Package ui draws the viewer side panel and lattice overlays.
package ui

import (
	"image"
	"math"
	"strconv"

	"grain-ca/internal/core"
)

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	infoSpacing    = 18
	controlsTop    = panelPadding + headerBaseline + 14
)

type controlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

func newControlStates(controls []core.ParameterControl) []controlState {
	states := make([]controlState, len(controls))
	for i, ctrl := range controls {
		states[i] = controlState{control: ctrl, value: "--"}
	}
	return states
}

// refresh reads each control's current value from the snapshot.
func (st *controlState) refresh(snap core.ParameterSnapshot) {
	st.hasValue = false
	st.value = "--"
	param, ok := snap.Lookup(st.control.Key)
	if !ok {
		return
	}
	switch st.control.Type {
	case core.ParamTypeInt:
		n, err := strconv.Atoi(param.Value)
		if err != nil {
			return
		}
		st.intValue = n
		st.floatValue = float64(n)
		st.value = strconv.Itoa(n)
		st.hasValue = true
	case core.ParamTypeFloat:
		f, err := strconv.ParseFloat(param.Value, 64)
		if err != nil {
			return
		}
		st.floatValue = f
		st.value = formatFloat(st.control, f)
		st.hasValue = true
	}
}

func (st *controlState) step() float64 {
	step := st.control.Step
	if st.control.Type == core.ParamTypeInt {
		step = math.Round(step)
		if step <= 0 {
			step = 1
		}
	} else if step <= 0 {
		step = 0.05
	}
	return step
}

// target returns the value one step in direction, clamped to the control
// bounds. ok is false when the value cannot move.
func (st *controlState) target(direction int) (value float64, ok bool) {
	if !st.hasValue || direction == 0 {
		return 0, false
	}
	value = st.floatValue + float64(direction)*st.step()
	if st.control.HasMin && value < st.control.Min {
		value = st.control.Min
	}
	if st.control.HasMax && value > st.control.Max {
		value = st.control.Max
	}
	if math.Abs(value-st.floatValue) < 1e-9 {
		return value, false
	}
	return value, true
}

// adjust moves the control one step through whichever setter matches its type.
func (st *controlState) adjust(direction int, ints core.IntParameterSetter, floats core.FloatParameterSetter) bool {
	value, ok := st.target(direction)
	if !ok {
		return false
	}
	switch st.control.Type {
	case core.ParamTypeInt:
		if ints == nil {
			return false
		}
		n := int(math.Round(value))
		if !ints.SetIntParameter(st.control.Key, n) {
			return false
		}
		st.intValue = n
		st.floatValue = float64(n)
		st.value = strconv.Itoa(n)
	case core.ParamTypeFloat:
		if floats == nil || !floats.SetFloatParameter(st.control.Key, value) {
			return false
		}
		st.floatValue = value
		st.value = formatFloat(st.control, value)
	default:
		return false
	}
	return true
}

func layoutControls(states []controlState, width int) {
	for i := range states {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plus := image.Rect(width-panelPadding-buttonSize, buttonY, width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		states[i].top = top
		states[i].minusRect = minus
		states[i].plusRect = plus
	}
}

// hit returns the control and direction under the panel-relative point.
func hit(states []controlState, x, y int) (int, int, bool) {
	p := image.Pt(x, y)
	for i := range states {
		if !states[i].hasValue {
			continue
		}
		if p.In(states[i].minusRect) {
			return i, -1, true
		}
		if p.In(states[i].plusRect) {
			return i, 1, true
		}
	}
	return 0, 0, false
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	case step >= 1:
		precision = 0
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

// infoLines formats the read-only parameters, skipping adjustable ones.
func infoLines(snap core.ParameterSnapshot, states []controlState) []string {
	adjustable := make(map[string]bool, len(states))
	for _, st := range states {
		adjustable[st.control.Key] = true
	}
	var lines []string
	for _, g := range snap.Groups {
		lines = append(lines, g.Name)
		for _, p := range g.Params {
			if adjustable[p.Key] {
				continue
			}
			lines = append(lines, "  "+p.Label+": "+p.Value)
		}
	}
	return lines
}
