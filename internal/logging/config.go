package logging

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "EVLCTL_LOG_LEVEL"
	EnvLogTimestamp = "EVLCTL_LOG_TIMESTAMP"
	EnvLogNoColor   = "EVLCTL_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Options shape the process-wide zerolog logger and every console destination.
type Options struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure installs the global zerolog logger used outside the core
// pipeline (http request logging, tests). It only runs once per process.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		opts := defaultOptions(profile)
		applyEnvOverrides(&opts)
		log.Logger = newConsole(os.Stdout, opts).Level(opts.Level)
	})
}

func defaultOptions(profile Profile) Options {
	switch profile {
	case ProfileTest:
		return Options{Level: zerolog.DebugLevel, Timestamp: false}
	default:
		return Options{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

func applyEnvOverrides(opts *Options) {
	if lvl, ok := envLevel(); ok {
		opts.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		opts.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
}

func newConsole(out *os.File, opts Options) zerolog.Logger {
	w := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}
	ctx := zerolog.New(w).With()
	if opts.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// ParseLevel maps a configured level name onto a zerolog level. The empty
// string is info.
func ParseLevel(raw string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "trace", "diagnostics":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "disable", "off", "none", "inactive":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, invalidLevel(raw)
	}
}

// envLevel reads EnvLogLevel. Unset or unparseable values are ignored.
func envLevel() (zerolog.Level, bool) {
	raw := os.Getenv(EnvLogLevel)
	if strings.TrimSpace(raw) == "" {
		return zerolog.InfoLevel, false
	}
	lvl, err := ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel, false
	}
	return lvl, true
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
