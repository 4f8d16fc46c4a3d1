// Command grainsim runs a grain simulation headlessly and writes its video and
// statistics plot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"grain-ca/internal/config"
	"grain-ca/internal/export"
	"grain-ca/internal/logging"
	"grain-ca/internal/sims/grain"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func (l kvList) Map() (map[string]string, error) {
	out := make(map[string]string, len(l))
	for _, kv := range l {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: override %q is not key=value", grain.ErrInvalidConfig, kv)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	steps := flag.Int("steps", -1, "number of steps to run (overrides the configuration when >= 0)")
	listKeys := flag.Bool("keys", false, "print the keys accepted by -set and exit")
	var overrides kvList
	flag.Var(&overrides, "set", "configuration override in key=value form (repeatable)")
	flag.Parse()

	if *listKeys {
		fmt.Println(strings.Join(config.Keys(), "\n"))
		return
	}

	log := logging.NewRuntime("grainsim")

	kv, err := overrides.Map()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid override")
	}
	if *steps >= 0 {
		kv["steps"] = strconv.Itoa(*steps)
	}
	cfg, err := config.Load(*configPath, kv)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := run(ctx, cfg, log)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("run failed")
	}
	log.Info().
		Uint64("steps", sum.Steps).
		Int("grains", sum.Final.Grains).
		Int("empty", sum.Final.Empty).
		Int("frames", sum.Frames).
		Msg("run finished")
}

// summary describes a finished run.
type summary struct {
	Steps  uint64
	Final  grain.Stats
	Frames int
}

// recorder observes every completed step. It records statistics, feeds the
// video and cancels the runner once the step limit is reached.
type recorder struct {
	space  *grain.Space
	runner *grain.Runner
	limit  uint64
	series *export.Series
	video  *export.Video
	err    error
}

func (r *recorder) observe() {
	r.series.Record(r.space.Stats())
	if r.video != nil {
		if _, err := r.video.Add(r.space.Snapshot()); err != nil {
			r.err = err
			r.runner.Cancel()
			return
		}
	}
	if r.space.Steps() >= r.limit {
		r.runner.Cancel()
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) (summary, error) {
	space, err := config.NewSpace(cfg, log.With().Str("component", "space").Logger())
	if err != nil {
		return summary{}, err
	}
	log.Info().
		Int("width", cfg.Lattice.Width).
		Int("height", cfg.Lattice.Height).
		Str("mode", cfg.Rule.Mode).
		Str("neighbourhood", cfg.Lattice.Neighbourhood).
		Bool("periodic", cfg.Lattice.Periodic).
		Int("steps", cfg.Run.Steps).
		Msg("space ready")

	rec := &recorder{
		space:  space,
		limit:  uint64(cfg.Run.Steps),
		series: &export.Series{},
	}
	if cfg.Output.Video != "" {
		rec.video, err = export.NewVideo(cfg.Output.Video, space.Size(), cfg.Output.Scale, cfg.Output.FrameRate, cfg.Output.VideoEvery)
		if err != nil {
			return summary{}, err
		}
		defer func() {
			if cerr := rec.video.Close(); cerr != nil {
				log.Error().Err(cerr).Str("video", cfg.Output.Video).Msg("close video")
			}
		}()
	}

	// The initial lattice is sample zero.
	rec.observe()
	if rec.err != nil {
		return summary{}, rec.err
	}

	var runErr error
	if cfg.Run.Steps > 0 {
		runner := grain.NewRunner(space,
			grain.WithTPS(cfg.Run.TPS),
			grain.WithRunnerLogger(log.With().Str("component", "runner").Logger()),
			grain.WithObserver(rec.observe),
		)
		rec.runner = runner
		runErr = runner.Run(ctx)
		if rec.err != nil {
			runErr = rec.err
		}
	}

	sum := summary{Steps: space.Steps(), Final: space.Stats()}
	if rec.video != nil {
		sum.Frames = rec.video.Frames()
	}
	if cfg.Output.Plot != "" {
		title := fmt.Sprintf("%s %dx%d", cfg.Rule.Mode, cfg.Lattice.Width, cfg.Lattice.Height)
		if err := rec.series.SavePlot(cfg.Output.Plot, title); err != nil {
			return sum, errors.Join(runErr, err)
		}
		log.Info().Str("plot", cfg.Output.Plot).Int("samples", rec.series.Len()).Msg("plot saved")
	}
	return sum, runErr
}
