package core

import (
	"testing"
	"time"
)

func TestPacerUnboundedNeverDelays(t *testing.T) {
	p := NewPacer(0)
	now := time.Unix(100, 0)
	for i := 0; i < 5; i++ {
		if d := p.Delay(now); d != 0 {
			t.Fatalf("expected no delay, got %v", d)
		}
	}
}

func TestPacerSpacesSteps(t *testing.T) {
	p := NewPacer(10)
	now := time.Unix(100, 0)
	if d := p.Delay(now); d != 0 {
		t.Fatalf("first step should not wait, got %v", d)
	}
	if d := p.Delay(now); d != 100*time.Millisecond {
		t.Fatalf("expected 100ms, got %v", d)
	}
	if d := p.Delay(now.Add(50 * time.Millisecond)); d != 150*time.Millisecond {
		t.Fatalf("expected 150ms, got %v", d)
	}
	if d := p.Delay(now.Add(time.Second)); d != 0 {
		t.Fatalf("late caller should not wait, got %v", d)
	}
}
