//go:build ebiten

package main

import (
	"errors"
	"flag"

	"grain-ca/internal/app"
	"grain-ca/internal/config"
	"grain-ca/internal/logging"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	flags := app.NewFlags()
	flags.Bind(flag.CommandLine)
	flag.Parse()

	log := logging.NewRuntime("ca")

	overrides := flags.Overrides(flag.CommandLine)
	cfg, err := config.Load(flags.ConfigPath, overrides)
	if err != nil {
		log.Fatal().Err(err).Str("config", flags.ConfigPath).Msg("load configuration")
	}
	if _, ok := overrides["tps"]; !ok && cfg.Run.TPS == 0 {
		cfg.Run.TPS = flags.TPS
	}

	space, err := config.NewSpace(cfg, log.With().Str("component", "space").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("build space")
	}

	game := app.New(space, cfg, flags.HUDWidth, flags.Paused, log)
	defer game.Close()
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("grain-ca: " + space.TaskMode().String())
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error().Err(err).Msg("viewer stopped")
	}
}
