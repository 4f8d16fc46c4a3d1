package grain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"grain-ca/internal/core"
	"grain-ca/internal/testutil/testlog"
)

type panickySim struct{ after int }

func (p *panickySim) Name() string { return "panicky" }

func (p *panickySim) Size() core.Size { return core.Size{W: 1, H: 1} }

func (p *panickySim) Reset(int64) error { return nil }

func (p *panickySim) Step() error {
	if p.after == 0 {
		panic("lattice corrupted")
	}
	p.after--
	return nil
}

func runAsync(t *testing.T, r *Runner) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- r.Run(context.Background()) }()
	return errc
}

func waitErr(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
		return nil
	}
}

func TestRunnerStepsAndNotifiesInOrder(t *testing.T) {
	s := newTestSpace(t, 10, 10, GrainGrowth)
	if err := s.RandomPlacement(3); err != nil {
		t.Fatalf("random placement: %v", err)
	}
	var seen []uint64
	var r *Runner
	r = NewRunner(s,
		WithRunnerLogger(testlog.New(t)),
		WithObserver(func() {
			seen = append(seen, s.Steps())
			if len(seen) == 5 {
				r.Cancel()
			}
		}),
	)
	if err := waitErr(t, runAsync(t, r)); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []uint64{1, 2, 3, 4, 5}
	if len(seen) != len(want) {
		t.Fatalf("observer saw %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("observer saw %v, want %v", seen, want)
		}
	}
	if r.Steps() != 5 || r.Working() || r.Err() != nil {
		t.Fatalf("steps=%d working=%v err=%v", r.Steps(), r.Working(), r.Err())
	}
	select {
	case <-r.Done():
	default:
		t.Fatal("Done should be closed after Run returns")
	}
}

func TestRunnerPauseAndResume(t *testing.T) {
	s := newTestSpace(t, 6, 6, MonteCarlo, WithGeneratedGrains(4))
	paused := make(chan struct{})
	var once sync.Once
	var r *Runner
	r = NewRunner(s,
		WithIdleInterval(5*time.Millisecond),
		WithObserver(func() {
			if r.Steps() == 3 {
				r.Pause()
				once.Do(func() { close(paused) })
			}
			if r.Steps() == 6 {
				r.Cancel()
			}
		}),
	)
	errc := runAsync(t, r)

	select {
	case <-paused:
	case <-time.After(5 * time.Second):
		t.Fatal("runner never paused")
	}
	time.Sleep(30 * time.Millisecond)
	if r.Working() {
		t.Fatal("runner should report paused")
	}
	if got := r.Steps(); got != 3 {
		t.Fatalf("paused runner advanced to %d", got)
	}

	r.Resume()
	if err := waitErr(t, errc); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.Steps() != 6 || s.Steps() != 6 {
		t.Fatalf("runner steps %d, space steps %d", r.Steps(), s.Steps())
	}
}

func TestRunnerStopsOnStepError(t *testing.T) {
	s := newTestSpace(t, 4, 4, SRX)
	notified := false
	r := NewRunner(s, WithObserver(func() { notified = true }))
	err := waitErr(t, runAsync(t, r))
	if !errors.Is(err, ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
	if !errors.Is(r.Err(), ErrUnsupportedMode) {
		t.Fatalf("Err() = %v", r.Err())
	}
	if notified || r.Steps() != 0 || r.Working() {
		t.Fatalf("failed step must not notify: notified=%v steps=%d", notified, r.Steps())
	}
}

func TestRunnerRecoversPanics(t *testing.T) {
	r := NewRunner(&panickySim{after: 2})
	err := waitErr(t, runAsync(t, r))
	if err == nil || !strings.Contains(err.Error(), "lattice corrupted") {
		t.Fatalf("expected recovered panic, got %v", err)
	}
	if r.Steps() != 2 {
		t.Fatalf("expected 2 completed steps, got %d", r.Steps())
	}
}

func TestRunnerContextCancel(t *testing.T) {
	s := newTestSpace(t, 4, 4, GrainGrowth)
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(s, WithTPS(50))
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := waitErr(t, errc); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunnerRunsOnce(t *testing.T) {
	s := newTestSpace(t, 2, 2, GrainGrowth)
	r := NewRunner(s)
	r.Cancel()
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("cancelled run: %v", err)
	}
	if err := r.Run(context.Background()); !errors.Is(err, ErrRunnerStarted) {
		t.Fatalf("expected ErrRunnerStarted, got %v", err)
	}
	r.Resume()
	if r.Working() {
		t.Fatal("resume after cancel must be a no-op")
	}
}

func TestSnapshotDuringRun(t *testing.T) {
	s := newTestSpace(t, 16, 16, GrainGrowth, WithSeed(2))
	if err := s.RandomPlacement(4); err != nil {
		t.Fatalf("random placement: %v", err)
	}
	r := NewRunner(s)
	errc := runAsync(t, r)
	for i := 0; i < 20; i++ {
		snap := s.Snapshot()
		for _, c := range snap.Grid.Cells() {
			if !snap.Markers.Contains(c.Marker) {
				t.Fatalf("snapshot holds unregistered marker %s", c.Marker)
			}
		}
	}
	r.Cancel()
	if err := waitErr(t, errc); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunnerPauseDuringPacerDelay(t *testing.T) {
	s := newTestSpace(t, 6, 6, MonteCarlo, WithGeneratedGrains(4))
	first := make(chan struct{})
	var once sync.Once
	r := NewRunner(s,
		WithTPS(5),
		WithIdleInterval(5*time.Millisecond),
		WithObserver(func() { once.Do(func() { close(first) }) }),
	)
	errc := runAsync(t, r)

	select {
	case <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("runner never stepped")
	}
	// The runner is now inside its 200ms pacer delay.
	time.Sleep(50 * time.Millisecond)
	r.Pause()
	time.Sleep(400 * time.Millisecond)
	if got := r.Steps(); got != 1 {
		t.Fatalf("pause during pacer delay let the runner reach step %d", got)
	}

	r.Cancel()
	if err := waitErr(t, errc); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestResumeWakesOnlyFromPause(t *testing.T) {
	r := NewRunner(newTestSpace(t, 2, 2, GrainGrowth))
	r.Resume()
	if !r.Working() || len(r.wake) != 1 {
		t.Fatalf("resume from pause: working=%v pending wakes=%d", r.Working(), len(r.wake))
	}
	r.drainWake()
	r.Resume()
	if len(r.wake) != 0 {
		t.Fatal("resume while working must not queue a wake")
	}
	r.Pause()
	r.Cancel()
	r.Resume()
	if r.Working() || len(r.wake) != 0 {
		t.Fatal("resume after cancel must be a no-op")
	}
}
