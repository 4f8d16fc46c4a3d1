// Package sweep runs a base configuration across many scenarios in parallel
// and summarizes how each lattice evolved.
package sweep

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"grain-ca/internal/config"
	"grain-ca/internal/sims/grain"
)

// Scenario varies the base configuration.
type Scenario struct {
	Neighbourhood string
	Periodic      bool
	Seed          int64
}

func (s Scenario) String() string {
	boundary := "bounded"
	if s.Periodic {
		boundary = "periodic"
	}
	return fmt.Sprintf("%s/%s seed=%d", s.Neighbourhood, boundary, s.Seed)
}

// Result summarizes one scenario run.
type Result struct {
	Scenario Scenario
	// FilledAt is the first step with no empty cells, or -1 if the lattice
	// never filled.
	FilledAt int
	Initial  grain.Stats
	Final    grain.Stats
	Err      error
}

// Grid builds the cross product of neighbourhoods, boundary modes and seeds.
func Grid(neighbourhoods []string, periodic []bool, seeds []int64) []Scenario {
	var out []Scenario
	for _, n := range neighbourhoods {
		for _, p := range periodic {
			for _, seed := range seeds {
				out = append(out, Scenario{Neighbourhood: n, Periodic: p, Seed: seed})
			}
		}
	}
	return out
}

// Run evaluates every scenario for up to steps steps on workers goroutines.
// Results come back in scenario order. A cancelled context stops pending
// scenarios, which report ctx.Err().
func Run(ctx context.Context, base config.Config, scenarios []Scenario, steps, workers int, log zerolog.Logger) []Result {
	if workers <= 0 {
		workers = 1
	}
	type job struct {
		index    int
		scenario Scenario
	}
	jobs := make(chan job)
	results := make([]Result, len(scenarios))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = runScenario(ctx, base, j.scenario, steps)
				log.Debug().Stringer("scenario", j.scenario).Int("filled_at", results[j.index].FilledAt).Msg("scenario done")
			}
		}()
	}

	for i, sc := range scenarios {
		jobs <- job{index: i, scenario: sc}
	}
	close(jobs)
	wg.Wait()
	return results
}

func runScenario(ctx context.Context, base config.Config, sc Scenario, steps int) Result {
	res := Result{Scenario: sc, FilledAt: -1}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	cfg := base
	cfg.Lattice.Neighbourhood = sc.Neighbourhood
	cfg.Lattice.Periodic = sc.Periodic
	cfg.Seeding.Seed = sc.Seed
	if err := cfg.Validate(); err != nil {
		res.Err = err
		return res
	}
	space, err := config.NewSpace(cfg, zerolog.Nop())
	if err != nil {
		res.Err = err
		return res
	}

	res.Initial = space.Stats()
	last := res.Initial
	if last.Empty == 0 {
		res.FilledAt = 0
	}
	for i := 1; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		if err := space.Step(); err != nil {
			res.Err = err
			break
		}
		last = space.Stats()
		if res.FilledAt < 0 && last.Empty == 0 {
			res.FilledAt = i
		}
	}
	res.Final = last
	return res
}

// Rank orders successful results by fill step, fastest first, with unfilled
// and failed runs last.
func Rank(results []Result) []Result {
	out := make([]Result, len(results))
	copy(out, results)
	key := func(r Result) int {
		if r.Err != nil {
			return int(^uint(0) >> 1)
		}
		if r.FilledAt < 0 {
			return int(^uint(0)>>1) - 1
		}
		return r.FilledAt
	}
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}
