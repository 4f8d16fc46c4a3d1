// Package config loads run settings for the grain-ca commands. Values are
// layered: defaults, then a TOML file, then GRAINCA_* environment variables,
// then key=value overrides from the command line.
package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"grain-ca/internal/sims/grain"
)

// Placement names accepted by SeedingConfig.Placement.
const (
	PlacementRandom  = "random"
	PlacementUniform = "uniform"
	PlacementNone    = "none"
)

type LatticeConfig struct {
	Width         int    `toml:"width" env:"GRAINCA_WIDTH"`
	Height        int    `toml:"height" env:"GRAINCA_HEIGHT"`
	Neighbourhood string `toml:"neighbourhood" env:"GRAINCA_NEIGHBOURHOOD"`
	Periodic      bool   `toml:"periodic" env:"GRAINCA_PERIODIC"`
}

type RuleConfig struct {
	Mode            string  `toml:"mode" env:"GRAINCA_MODE"`
	Temperature     float64 `toml:"temperature" env:"GRAINCA_TEMPERATURE"`
	GeneratedGrains int     `toml:"generated_grains" env:"GRAINCA_GENERATED_GRAINS"`
}

type SeedingConfig struct {
	Seed       int64  `toml:"seed" env:"GRAINCA_SEED"`
	Placement  string `toml:"placement" env:"GRAINCA_PLACEMENT"`
	Grains     int    `toml:"grains" env:"GRAINCA_GRAINS"`
	Inclusions int    `toml:"inclusions" env:"GRAINCA_INCLUSIONS"`
}

type RunConfig struct {
	Steps int `toml:"steps" env:"GRAINCA_STEPS"`
	TPS   int `toml:"tps" env:"GRAINCA_TPS"`
}

type OutputConfig struct {
	Scale      int    `toml:"scale" env:"GRAINCA_SCALE"`
	Video      string `toml:"video" env:"GRAINCA_VIDEO"`
	VideoEvery int    `toml:"video_every" env:"GRAINCA_VIDEO_EVERY"`
	FrameRate  int    `toml:"frame_rate" env:"GRAINCA_FRAME_RATE"`
	Plot       string `toml:"plot" env:"GRAINCA_PLOT"`
}

// Config is the full set of run settings.
type Config struct {
	Lattice LatticeConfig `toml:"lattice"`
	Rule    RuleConfig    `toml:"rule"`
	Seeding SeedingConfig `toml:"seeding"`
	Run     RunConfig     `toml:"run"`
	Output  OutputConfig  `toml:"output"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Lattice: LatticeConfig{Width: 200, Height: 200, Neighbourhood: "moore", Periodic: true},
		Rule: RuleConfig{
			Mode:            grain.GrainGrowth.String(),
			Temperature:     grain.DefaultTemperature,
			GeneratedGrains: grain.DefaultGeneratedGrains,
		},
		Seeding: SeedingConfig{Seed: grain.DefaultSeed, Placement: PlacementRandom, Grains: 40},
		Run:     RunConfig{Steps: 200},
		Output:  OutputConfig{Scale: 3, VideoEvery: 1, FrameRate: 10},
	}
}

// Load layers the TOML file at path (skipped when empty), the environment and
// overrides onto the defaults, then validates the result.
func Load(path string, overrides map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Apply(overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys in %s: %s", grain.ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	return nil
}

type setter func(c *Config, v string) error

func intSetter(field func(*Config) *int) setter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func stringSetter(field func(*Config) *string) setter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

var setters = map[string]setter{
	"w":             intSetter(func(c *Config) *int { return &c.Lattice.Width }),
	"h":             intSetter(func(c *Config) *int { return &c.Lattice.Height }),
	"neighbourhood": stringSetter(func(c *Config) *string { return &c.Lattice.Neighbourhood }),
	"periodic": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Lattice.Periodic = b
		return nil
	},
	"mode": stringSetter(func(c *Config) *string { return &c.Rule.Mode }),
	"temperature": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Rule.Temperature = f
		return nil
	},
	"generated_grains": intSetter(func(c *Config) *int { return &c.Rule.GeneratedGrains }),
	"seed": func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.Seeding.Seed = n
		return nil
	},
	"placement":   stringSetter(func(c *Config) *string { return &c.Seeding.Placement }),
	"grains":      intSetter(func(c *Config) *int { return &c.Seeding.Grains }),
	"inclusions":  intSetter(func(c *Config) *int { return &c.Seeding.Inclusions }),
	"steps":       intSetter(func(c *Config) *int { return &c.Run.Steps }),
	"tps":         intSetter(func(c *Config) *int { return &c.Run.TPS }),
	"scale":       intSetter(func(c *Config) *int { return &c.Output.Scale }),
	"video":       stringSetter(func(c *Config) *string { return &c.Output.Video }),
	"video_every": intSetter(func(c *Config) *int { return &c.Output.VideoEvery }),
	"frame_rate":  intSetter(func(c *Config) *int { return &c.Output.FrameRate }),
	"plot":        stringSetter(func(c *Config) *string { return &c.Output.Plot }),
}

// Keys lists the override keys accepted by Apply.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply sets each key=value pair. Unknown keys and unparsable values fail.
func (c *Config) Apply(kv map[string]string) error {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set, ok := setters[k]
		if !ok {
			return fmt.Errorf("%w: unknown key %q (known: %s)", grain.ErrInvalidConfig, k, strings.Join(Keys(), ", "))
		}
		if err := set(c, strings.TrimSpace(kv[k])); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", grain.ErrInvalidConfig, k, kv[k], err)
		}
	}
	return nil
}

// TaskMode parses the configured rule mode.
func (c Config) TaskMode() (grain.TaskMode, error) {
	return grain.ParseTaskMode(c.Rule.Mode)
}

// Validate fails fast on settings that would produce a degenerate run.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{grain.ErrInvalidConfig}, args...)...))
	}

	area := c.Lattice.Width * c.Lattice.Height
	if c.Lattice.Width <= 0 || c.Lattice.Height <= 0 {
		bad("lattice %dx%d", c.Lattice.Width, c.Lattice.Height)
	}
	if !slices.Contains(grain.NeighbourhoodNames(), c.Lattice.Neighbourhood) {
		bad("neighbourhood %q", c.Lattice.Neighbourhood)
	}
	mode, err := c.TaskMode()
	if err != nil {
		errs = append(errs, err)
	}
	if c.Rule.Temperature <= 0 {
		bad("temperature %g", c.Rule.Temperature)
	}
	if mode == grain.MonteCarlo && (c.Rule.GeneratedGrains <= 0 || c.Rule.GeneratedGrains > area) {
		bad("generated_grains %d for %d cells", c.Rule.GeneratedGrains, area)
	}
	switch c.Seeding.Placement {
	case PlacementNone:
	case PlacementRandom, PlacementUniform:
		if c.Seeding.Grains <= 0 || c.Seeding.Grains > area {
			bad("grains %d for %d cells", c.Seeding.Grains, area)
		}
	default:
		bad("placement %q", c.Seeding.Placement)
	}
	if c.Seeding.Inclusions < 0 || c.Seeding.Inclusions > area {
		bad("inclusions %d", c.Seeding.Inclusions)
	}
	if c.Run.Steps < 0 {
		bad("steps %d", c.Run.Steps)
	}
	if c.Run.TPS < 0 {
		bad("tps %d", c.Run.TPS)
	}
	if c.Output.Scale <= 0 {
		bad("scale %d", c.Output.Scale)
	}
	if c.Output.Video != "" && (c.Output.FrameRate <= 0 || c.Output.VideoEvery <= 0) {
		bad("video frame_rate %d every %d", c.Output.FrameRate, c.Output.VideoEvery)
	}
	return errors.Join(errs...)
}
