package ui

import (
	"testing"

	"grain-ca/internal/core"
)

type fakeSetter struct {
	ints   map[string]int
	floats map[string]float64
	reject bool
}

func (f *fakeSetter) SetIntParameter(key string, v int) bool {
	if f.reject {
		return false
	}
	f.ints[key] = v
	return true
}

func (f *fakeSetter) SetFloatParameter(key string, v float64) bool {
	if f.reject {
		return false
	}
	f.floats[key] = v
	return true
}

func snapshot(params ...core.Parameter) core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{Name: "Rule", Params: params}}}
}

func TestControlAdjustClampsToBounds(t *testing.T) {
	states := newControlStates([]core.ParameterControl{
		{Key: "grains", Type: core.ParamTypeInt, Step: 1, Min: 1, HasMin: true, Max: 3, HasMax: true},
		{Key: "temperature", Type: core.ParamTypeFloat, Step: 10, Min: 10, HasMin: true},
	})
	snap := snapshot(core.IntParam("grains", "Grains", 3), core.FloatParam("temperature", "T", 15))
	for i := range states {
		states[i].refresh(snap)
	}
	set := &fakeSetter{ints: map[string]int{}, floats: map[string]float64{}}

	if states[0].adjust(1, set, set) {
		t.Fatal("grains at max should not increase")
	}
	if !states[0].adjust(-1, set, set) || set.ints["grains"] != 2 || states[0].value != "2" {
		t.Fatalf("grains decrement failed: %v %q", set.ints, states[0].value)
	}
	if !states[1].adjust(-1, set, set) || set.floats["temperature"] != 10 {
		t.Fatalf("temperature should clamp to 10, got %v", set.floats)
	}
	if states[1].adjust(-1, set, set) {
		t.Fatal("temperature at min should not decrease")
	}
	if states[1].value != "10" {
		t.Fatalf("value %q", states[1].value)
	}

	set.reject = true
	if states[1].adjust(1, set, set) || states[1].floatValue != 10 {
		t.Fatal("rejected change should leave the control untouched")
	}
}

func TestControlRefreshMissingValue(t *testing.T) {
	states := newControlStates([]core.ParameterControl{{Key: "grains", Type: core.ParamTypeInt}})
	states[0].refresh(snapshot(core.StringParam("grains", "Grains", "many")))
	if states[0].hasValue || states[0].value != "--" {
		t.Fatalf("unparsable value should clear control: %+v", states[0])
	}
	if _, ok := states[0].target(1); ok {
		t.Fatal("control without value should not move")
	}
}

func TestLayoutAndHit(t *testing.T) {
	states := newControlStates([]core.ParameterControl{
		{Key: "a", Type: core.ParamTypeInt},
		{Key: "b", Type: core.ParamTypeInt},
	})
	snap := snapshot(core.IntParam("a", "A", 1), core.IntParam("b", "B", 2))
	for i := range states {
		states[i].refresh(snap)
	}
	layoutControls(states, 200)
	r := states[1].plusRect
	i, dir, ok := hit(states, r.Min.X+1, r.Min.Y+1)
	if !ok || i != 1 || dir != 1 {
		t.Fatalf("hit = %d %d %v", i, dir, ok)
	}
	r = states[0].minusRect
	if i, dir, ok := hit(states, r.Min.X, r.Min.Y); !ok || i != 0 || dir != -1 {
		t.Fatalf("hit = %d %d %v", i, dir, ok)
	}
	if _, _, ok := hit(states, 0, 0); ok {
		t.Fatal("padding should not hit a control")
	}
}

func TestInfoLinesSkipsAdjustable(t *testing.T) {
	states := newControlStates([]core.ParameterControl{{Key: "temperature", Type: core.ParamTypeFloat}})
	lines := infoLines(snapshot(core.FloatParam("temperature", "T", 1), core.StringParam("mode", "Task mode", "mc")), states)
	if len(lines) != 2 || lines[0] != "Rule" || lines[1] != "  Task mode: mc" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestFormatFloat(t *testing.T) {
	cases := []struct {
		step float64
		v    float64
		want string
	}{
		{10, 720, "720"},
		{0.5, 1.25, "1.2"},
		{0.05, 0.125, "0.12"},
		{0.005, 0.1234, "0.123"},
	}
	for _, c := range cases {
		if got := formatFloat(core.ParameterControl{Step: c.step}, c.v); got != c.want {
			t.Fatalf("formatFloat(%g, %g) = %q, want %q", c.step, c.v, got, c.want)
		}
	}
}
