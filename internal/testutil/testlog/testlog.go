package testlog

import (
	"testing"

	"github.com/danmuck/evlctl/internal/logging"
	"github.com/rs/zerolog/log"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Msgf("test=%s", t.Name())
}

// Logger returns a core Logger that writes through the test logger.
func Logger(t *testing.T) logging.Logger {
	t.Helper()
	logging.ConfigureTests()
	return logging.FromZerolog(log.Logger.With().Str("test", t.Name()).Logger())
}
