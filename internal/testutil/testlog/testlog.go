package testlog

import (
	"testing"

	"github.com/rs/zerolog"

	"grain-ca/internal/logging"
)

// New returns a logger that writes through t.Log, honouring the logging
// environment overrides.
func New(t testing.TB) zerolog.Logger {
	t.Helper()
	cfg := logging.FromEnv(logging.ProfileTest)
	return zerolog.New(zerolog.NewTestWriter(t)).Level(cfg.Level).With().Str("test", t.Name()).Logger()
}
