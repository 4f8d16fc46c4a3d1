package grain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"grain-ca/internal/core"
)

// DefaultIdleInterval is how often a paused runner checks for resumption.
const DefaultIdleInterval = 100 * time.Millisecond

// ErrRunnerStarted is returned by Run when the runner has already been run.
var ErrRunnerStarted = errors.New("grain: runner already started")

// Observer is called after every completed step, on the runner goroutine,
// before the next step starts. Observers re-read whatever state they need.
type Observer func()

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithIdleInterval sets the paused polling interval.
func WithIdleInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.idle = d
		}
	}
}

// WithTPS caps the step rate. Zero runs steps back to back.
func WithTPS(tps int) RunnerOption {
	return func(r *Runner) { r.pacer.SetTPS(tps) }
}

// WithRunnerLogger attaches a logger.
func WithRunnerLogger(l zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

// WithObserver registers an observer.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// Runner drives a simulation on a single background goroutine. Steps run
// strictly one after another; Pause is reversible, Cancel is not.
type Runner struct {
	sim       core.Sim
	log       zerolog.Logger
	idle      time.Duration
	pacer     *core.Pacer
	observers []Observer

	working atomic.Bool
	started atomic.Bool
	steps   atomic.Uint64

	wake       chan struct{}
	cancel     chan struct{}
	cancelOnce sync.Once
	done       chan struct{}

	mu  sync.Mutex
	err error
}

// NewRunner returns a paused runner for sim.
func NewRunner(sim core.Sim, opts ...RunnerOption) *Runner {
	r := &Runner{
		sim:    sim,
		log:    zerolog.Nop(),
		idle:   DefaultIdleInterval,
		pacer:  core.NewPacer(0),
		wake:   make(chan struct{}, 1),
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run marks the runner working and loops until Cancel, ctx cancellation or a
// step failure. A failed step is returned and also kept for Err. Run may only
// be called once.
func (r *Runner) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrRunnerStarted
	}
	defer close(r.done)
	defer r.working.Store(false)

	r.Resume()
	r.log.Info().Str("sim", r.sim.Name()).Msg("runner started")
	for {
		select {
		case <-r.cancel:
			r.log.Info().Uint64("steps", r.steps.Load()).Msg("runner cancelled")
			return nil
		case <-ctx.Done():
			r.log.Info().Uint64("steps", r.steps.Load()).Msg("runner context done")
			return ctx.Err()
		default:
		}

		if !r.working.Load() {
			r.wait(ctx, r.idle)
			continue
		}
		r.drainWake()
		if d := r.pacer.Delay(time.Now()); d > 0 && !r.wait(ctx, d) {
			continue
		}
		// Pause may have arrived during the pacer delay.
		if !r.working.Load() {
			continue
		}

		if err := r.guard(r.sim.Step); err != nil {
			r.fail(err)
			return err
		}
		n := r.steps.Add(1)
		if err := r.guard(r.notify); err != nil {
			r.fail(err)
			return err
		}
		if n%1000 == 0 {
			r.log.Debug().Uint64("steps", n).Msg("runner progress")
		}
	}
}

// wait blocks for d or until woken. It reports false when interrupted by a
// control signal rather than the timer.
func (r *Runner) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-r.wake:
		return false
	case <-r.cancel:
		return false
	case <-ctx.Done():
		return false
	}
}

func (r *Runner) drainWake() {
	select {
	case <-r.wake:
	default:
	}
}

func (r *Runner) guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("grain: step %d panicked: %v", r.steps.Load()+1, p)
		}
	}()
	return fn()
}

func (r *Runner) notify() error {
	for _, o := range r.observers {
		o()
	}
	return nil
}

func (r *Runner) fail(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	r.log.Error().Err(err).Uint64("steps", r.steps.Load()).Msg("runner stopped on failure")
}

// Resume lets the loop step again. It is a no-op after Cancel or while the
// runner is already working.
func (r *Runner) Resume() {
	select {
	case <-r.cancel:
		return
	default:
	}
	if !r.working.CompareAndSwap(false, true) {
		return
	}
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Pause stops stepping after the current step without losing state.
func (r *Runner) Pause() {
	r.working.Store(false)
}

// Cancel stops the loop permanently after the current iteration.
func (r *Runner) Cancel() {
	r.cancelOnce.Do(func() { close(r.cancel) })
}

// Working reports whether the loop is currently stepping.
func (r *Runner) Working() bool { return r.working.Load() }

// Steps returns how many steps the runner has completed.
func (r *Runner) Steps() uint64 { return r.steps.Load() }

// Done is closed once Run returns.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Err returns the failure that stopped the runner, if any.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
