package core

import "time"

// Pacer caps the rate at which a loop advances. A zero rate never delays.
type Pacer struct {
	step time.Duration
	next time.Time
}

// NewPacer constructs a Pacer targeting the given steps per second. A
// non-positive rate disables pacing.
func NewPacer(tps int) *Pacer {
	p := &Pacer{}
	p.SetTPS(tps)
	return p
}

// SetTPS changes the step rate.
func (p *Pacer) SetTPS(tps int) {
	if tps <= 0 {
		p.step = 0
		return
	}
	p.step = time.Second / time.Duration(tps)
}

// Delay reports how long the caller should wait at now before the next step,
// and reserves that step's slot.
func (p *Pacer) Delay(now time.Time) time.Duration {
	if p.step == 0 {
		return 0
	}
	if p.next.IsZero() || now.After(p.next) {
		// Fell behind; don't try to catch up with a burst.
		p.next = now.Add(p.step)
		return 0
	}
	wait := p.next.Sub(now)
	p.next = p.next.Add(p.step)
	return wait
}
