package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		" warning": zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"off":      zerolog.Disabled,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) got=%v want=%v", raw, got, want)
		}
	}
	if _, err := ParseLevel("loud"); !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("expected ErrInvalidLogLevel, got %v", err)
	}
}

func TestNewRejectsUnknownDestination(t *testing.T) {
	_, err := New("evlctl", []Destination{{Type: "syslog", Name: "bad"}})
	if !errors.Is(err, ErrInvalidLogDestination) {
		t.Fatalf("expected ErrInvalidLogDestination, got %v", err)
	}
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New("evlctl", []Destination{{Type: DestinationConsole, Name: "console", Level: "chatty"}})
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("expected ErrInvalidLogLevel, got %v", err)
	}
}

func TestNewRequiresFilePath(t *testing.T) {
	_, err := New("evlctl", []Destination{{Type: DestinationFile, Name: "file"}})
	if !errors.Is(err, ErrInvalidLogDestination) {
		t.Fatalf("expected ErrInvalidLogDestination, got %v", err)
	}
}

func TestFileDestinationFiltersByLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "evlctl.log")
	logger, err := New("evlctl", []Destination{{
		Type:     DestinationFile,
		Name:     "file",
		Level:    "info",
		Settings: map[string]string{"path": path},
	}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Debugf("hidden %d", 1)
	logger.Tracef("hidden %d", 2)
	logger.Infof("shown %d", 3)
	logger.Errorf("shown %d", 4)
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug/trace lines leaked: %s", out)
	}
	if !strings.Contains(out, "shown 3") || !strings.Contains(out, "shown 4") {
		t.Fatalf("missing info/error lines: %s", out)
	}
	if !strings.Contains(out, `"app":"evlctl"`) {
		t.Fatalf("missing app field: %s", out)
	}
}

func TestEnvLevelOverridesDestinations(t *testing.T) {
	t.Setenv(EnvLogLevel, "trace")
	path := filepath.Join(t.TempDir(), "evlctl.log")
	logger, err := New("evlctl", []Destination{{
		Type:     DestinationFile,
		Name:     "file",
		Level:    "error",
		Settings: map[string]string{"path": path},
	}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Tracef("trace line")
	_ = logger.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "trace line") {
		t.Fatalf("expected trace line with env override, got %q", raw)
	}
}

func TestNoDestinationsDiscards(t *testing.T) {
	logger, err := New("evlctl", nil)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Errorf("dropped")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNopSatisfiesLogger(t *testing.T) {
	var l Logger = Nop()
	l.Errorf("x")
	l.Warnf("x")
	l.Infof("x")
	l.Debugf("x")
	l.Tracef("x")
}
