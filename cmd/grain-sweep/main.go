// Command grain-sweep runs a configuration across neighbourhoods, boundary
// modes and seeds and ranks the runs by how fast the lattice fills.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"grain-ca/internal/config"
	"grain-ca/internal/logging"
	"grain-ca/internal/sims/grain"
	"grain-ca/internal/sweep"
)

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	steps := flag.Int("steps", 500, "maximum steps per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	seeds := flag.Int("seeds", 4, "number of consecutive seeds per scenario, starting at the configured seed")
	nbhds := flag.String("neighbourhoods", strings.Join(grain.NeighbourhoodNames(), ","), "comma separated neighbourhoods")
	boundaries := flag.String("periodic", "true,false", "comma separated boundary modes")
	flag.Parse()

	log := logging.NewRuntime("grain-sweep")

	cfg, err := config.Load(*configPath, nil)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load configuration")
	}
	periodic, err := parseBools(*boundaries)
	if err != nil {
		log.Fatal().Err(err).Msg("parse -periodic")
	}
	seedList := make([]int64, 0, *seeds)
	for i := 0; i < *seeds; i++ {
		seedList = append(seedList, cfg.Seeding.Seed+int64(i))
	}
	scenarios := sweep.Grid(splitList(*nbhds), periodic, seedList)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Sweeping %d scenarios (%d workers, %d steps, %s %dx%d)\n",
		len(scenarios), *workers, *steps, cfg.Rule.Mode, cfg.Lattice.Width, cfg.Lattice.Height)
	start := time.Now()
	results := sweep.Run(ctx, cfg, scenarios, *steps, *workers, log)
	elapsed := time.Since(start)

	for _, r := range sweep.Rank(results) {
		switch {
		case r.Err != nil:
			fmt.Printf("  %-28s error: %v\n", r.Scenario, r.Err)
		case r.FilledAt < 0:
			fmt.Printf("  %-28s not filled after %d steps, %d empty, %d grains\n", r.Scenario, r.Final.Step, r.Final.Empty, r.Final.Grains)
		default:
			fmt.Printf("  %-28s filled at step %d, %d grains, %d border sites\n", r.Scenario, r.FilledAt, r.Final.Grains, r.Final.Border)
		}
	}
	fmt.Printf("Completed in %s\n", elapsed.Round(time.Millisecond))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBools(raw string) ([]bool, error) {
	var out []bool
	for _, part := range splitList(raw) {
		b, err := strconv.ParseBool(part)
		if err != nil {
			return nil, fmt.Errorf("%w: boundary mode %q", grain.ErrInvalidConfig, part)
		}
		out = append(out, b)
	}
	return out, nil
}
