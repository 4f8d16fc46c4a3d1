package sweep

import (
	"context"
	"errors"
	"testing"

	"grain-ca/internal/config"
	"grain-ca/internal/sims/grain"
	"grain-ca/internal/testutil/testlog"
)

func baseConfig() config.Config {
	cfg := config.Default()
	cfg.Lattice.Width, cfg.Lattice.Height = 20, 20
	cfg.Seeding.Placement = config.PlacementUniform
	cfg.Seeding.Grains = 4
	return cfg
}

func TestGrid(t *testing.T) {
	got := Grid([]string{"moore", "vonneumann"}, []bool{true, false}, []int64{1, 2, 3})
	if len(got) != 12 {
		t.Fatalf("expected 12 scenarios, got %d", len(got))
	}
	if got[0] != (Scenario{Neighbourhood: "moore", Periodic: true, Seed: 1}) {
		t.Fatalf("unexpected first scenario %v", got[0])
	}
	if got[11].String() != "vonneumann/bounded seed=3" {
		t.Fatalf("unexpected last scenario %s", got[11])
	}
}

func TestRunUniformSeedsFillDeterministically(t *testing.T) {
	scenarios := Grid([]string{"moore", "vonneumann"}, []bool{true}, []int64{1, 2})
	results := Run(context.Background(), baseConfig(), scenarios, 40, 3, testlog.New(t))
	if len(results) != len(scenarios) {
		t.Fatalf("expected %d results, got %d", len(scenarios), len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Scenario, r.Err)
		}
		if r.Scenario != scenarios[i] {
			t.Fatalf("result %d out of order: %s", i, r.Scenario)
		}
		if r.FilledAt <= 0 || r.Final.Empty != 0 || r.Final.Grains != 4 {
			t.Fatalf("%s: unexpected result %+v", r.Scenario, r)
		}
		if r.Initial.Grains != 4 || r.Initial.Live != 4 {
			t.Fatalf("%s: unexpected initial stats %+v", r.Scenario, r.Initial)
		}
	}
	// Uniform placement ignores the seed, so both seeds fill at the same step.
	if results[0].FilledAt != results[1].FilledAt {
		t.Fatalf("moore fill steps differ: %d vs %d", results[0].FilledAt, results[1].FilledAt)
	}
	// Von Neumann growth is slower than Moore.
	if results[2].FilledAt <= results[0].FilledAt {
		t.Fatalf("von Neumann filled at %d, Moore at %d", results[2].FilledAt, results[0].FilledAt)
	}
}

func TestRunReportsErrors(t *testing.T) {
	results := Run(context.Background(), baseConfig(), []Scenario{{Neighbourhood: "hex", Seed: 1}}, 5, 1, testlog.New(t))
	if !errors.Is(results[0].Err, grain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", results[0].Err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results = Run(ctx, baseConfig(), Grid([]string{"moore"}, []bool{true}, []int64{1}), 5, 2, testlog.New(t))
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", results[0].Err)
	}
}

func TestRank(t *testing.T) {
	in := []Result{
		{Scenario: Scenario{Seed: 1}, FilledAt: -1},
		{Scenario: Scenario{Seed: 2}, FilledAt: 7},
		{Scenario: Scenario{Seed: 3}, Err: errors.New("boom")},
		{Scenario: Scenario{Seed: 4}, FilledAt: 3},
	}
	got := Rank(in)
	want := []int64{4, 2, 1, 3}
	for i, seed := range want {
		if got[i].Scenario.Seed != seed {
			t.Fatalf("rank %d = seed %d, want %d", i, got[i].Scenario.Seed, seed)
		}
	}
	if in[0].Scenario.Seed != 1 {
		t.Fatal("Rank must not reorder its input")
	}
}
