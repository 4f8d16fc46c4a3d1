package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"grain-ca/internal/sims/grain"
)

// NewSpace builds a Space from the configuration and applies the configured
// grain placement and inclusions.
func NewSpace(c Config, log zerolog.Logger) (*grain.Space, error) {
	mode, err := c.TaskMode()
	if err != nil {
		return nil, err
	}
	s, err := grain.New(c.Lattice.Height, c.Lattice.Width, mode,
		grain.WithSeed(c.Seeding.Seed),
		grain.WithLogger(log),
		grain.WithTemperature(c.Rule.Temperature),
		grain.WithGeneratedGrains(c.Rule.GeneratedGrains),
		grain.WithNeighbourhood(c.Lattice.Neighbourhood, c.Lattice.Periodic),
	)
	if err != nil {
		return nil, err
	}
	if err := Seed(s, c.Seeding); err != nil {
		return nil, err
	}
	return s, nil
}

// Seed applies placement and inclusions to an existing space.
func Seed(s *grain.Space, c SeedingConfig) error {
	switch c.Placement {
	case PlacementRandom:
		if err := s.RandomPlacement(c.Grains); err != nil {
			return fmt.Errorf("random placement: %w", err)
		}
	case PlacementUniform:
		if err := s.UniformPlacement(c.Grains); err != nil {
			return fmt.Errorf("uniform placement: %w", err)
		}
	}
	if c.Inclusions > 0 {
		if err := s.PlaceInclusions(c.Inclusions); err != nil {
			return fmt.Errorf("place inclusions: %w", err)
		}
	}
	return nil
}
