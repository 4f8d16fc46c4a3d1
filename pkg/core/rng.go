package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Reseed restarts the stream from the provided seed.
func (r *RNG) Reseed(seed int64) {
	r.r = rand.New(rand.NewPCG(uint64(seed), 0))
}

// IntN returns a random int in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Int64 returns a random 64-bit value covering the full signed range.
func (r *RNG) Int64() int64 {
	return int64(r.r.Uint64())
}

// RGB returns three independent uniform bytes.
func (r *RNG) RGB() (uint8, uint8, uint8) {
	return uint8(r.r.IntN(256)), uint8(r.r.IntN(256)), uint8(r.r.IntN(256))
}
