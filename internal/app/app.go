//go:build ebiten

package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"grain-ca/internal/config"
	"grain-ca/internal/render"
	"grain-ca/internal/sims/grain"
	"grain-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts a grain space to the ebiten.Game interface. The space steps on
// a background runner; the game only ever draws published snapshots.
type Game struct {
	space   *grain.Space
	runner  *grain.Runner
	stop    context.CancelFunc
	snap    atomic.Pointer[grain.Snapshot]
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay

	started bool
	seeding config.SeedingConfig
	scale   int
	seed    int64
	log     zerolog.Logger
}

// New builds a Game for space and starts its runner. Pass paused to hold the
// first step until the user resumes.
func New(space *grain.Space, cfg config.Config, hudWidth int, paused bool, log zerolog.Logger) *Game {
	size := space.Size()
	g := &Game{
		space:   space,
		painter: render.NewGridPainter(size.W, size.H),
		hud:     ui.NewHUD(space, hudWidth),
		overlay: ui.NewOverlay(cfg.Output.Scale, cfg.Lattice.Periodic),
		seeding: cfg.Seeding,
		scale:   cfg.Output.Scale,
		seed:    cfg.Seeding.Seed,
		log:     log,
	}
	g.publish()
	g.runner = grain.NewRunner(space,
		grain.WithTPS(cfg.Run.TPS),
		grain.WithRunnerLogger(log.With().Str("component", "runner").Logger()),
		grain.WithObserver(g.publish),
	)

	if !paused {
		g.start()
	}
	return g
}

// start launches the runner goroutine. The runner steps as soon as it runs, so
// a paused game defers this until the first resume.
func (g *Game) start() {
	if g.started {
		return
	}
	g.started = true
	ctx, stop := context.WithCancel(context.Background())
	g.stop = stop
	go func() {
		if err := g.runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			g.log.Error().Err(err).Msg("runner stopped")
		}
	}()
}

// publish stores a fresh snapshot for drawing.
func (g *Game) publish() {
	snap := g.space.Snapshot()
	g.snap.Store(&snap)
}

// Reset rebuilds the lattice from seed and reapplies the configured seeding.
func (g *Game) Reset(seed int64) error {
	g.seed = seed
	if err := g.space.Reset(seed); err != nil {
		return err
	}
	if err := config.Seed(g.space, g.seeding); err != nil {
		return err
	}
	g.publish()
	g.log.Info().Int64("seed", seed).Msg("lattice reset")
	return nil
}

// Update handles input. Simulation steps happen on the runner goroutine.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.Close()
		return ebiten.Termination
	}
	if err := g.runner.Err(); err != nil {
		return fmt.Errorf("simulation stopped: %w", err)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if !g.started {
			g.start()
		} else if g.runner.Working() {
			g.runner.Pause()
		} else {
			g.runner.Resume()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && !g.runner.Working() {
		if err := g.space.Step(); err != nil {
			g.log.Warn().Err(err).Msg("single step failed")
		}
		g.publish()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.Reset(g.seed); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.Reset(time.Now().UnixNano()); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		n := g.seeding.Inclusions
		if n <= 0 {
			n = 1
		}
		if err := g.space.PlaceInclusions(n); err != nil {
			g.log.Warn().Err(err).Msg("place inclusions")
		}
		g.publish()
	}

	g.overlay.Update()
	size := g.space.Size()
	if g.hud.Update(size.W * g.scale) {
		return nil
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		x, y := mx/g.scale, my/g.scale
		if m, err := g.space.PlaceGrain(x, y); err != nil {
			g.log.Debug().Err(err).Int("x", x).Int("y", y).Msg("place grain")
		} else {
			g.log.Debug().Int64("marker", int64(m)).Int("x", x).Int("y", y).Msg("grain placed")
		}
		g.publish()
	}
	return nil
}

// Draw renders the latest snapshot, the overlay and the side panel.
func (g *Game) Draw(screen *ebiten.Image) {
	snap := g.snap.Load()
	if snap == nil {
		return
	}
	if err := g.painter.Blit(screen, *snap, g.scale); err != nil {
		g.log.Error().Err(err).Msg("draw lattice")
	}
	g.overlay.Draw(screen, *snap)

	state := "running"
	if !g.runner.Working() {
		state = "paused"
	}
	g.hud.SetStatus(
		ui.StatusLine("Step", snap.Step),
		ui.StatusLine("State", state),
		ui.StatusLine("Seed", g.seed),
	)
	g.hud.Draw(screen, snap.Grid.W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.space.Size()
	return s.W*g.scale + g.hud.Width(), s.H * g.scale
}

// Close cancels the runner and waits for it to stop.
func (g *Game) Close() {
	g.runner.Cancel()
	if !g.started {
		return
	}
	g.stop()
	<-g.runner.Done()
}
