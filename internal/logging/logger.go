package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidLogDestination = errors.New("logging: invalid log destination")
	ErrInvalidLogLevel       = errors.New("logging: invalid log level")
)

// Logger is the logging capability consumed by the tpi pipeline.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
	Tracef(format string, args ...any)
}

type DestinationType string

const (
	DestinationConsole DestinationType = "console"
	DestinationFile    DestinationType = "file"
)

// Destination is one configured log sink.
//
// Console settings: "stream" (stdout|stderr), "color" (true|false).
// File settings: "path" (required).
type Destination struct {
	Type     DestinationType   `toml:"type"`
	Name     string            `toml:"name"`
	Level    string            `toml:"level"`
	Settings map[string]string `toml:"settings"`
}

// ZeroLogger is a Logger writing to every configured destination, each
// filtered at its own level.
type ZeroLogger struct {
	zl      zerolog.Logger
	closers []io.Closer
}

var _ Logger = (*ZeroLogger)(nil)

// New builds a logger for app from dests. Invalid destinations or levels
// fail setup. No destinations yields a logger that discards everything.
func New(app string, dests []Destination) (*ZeroLogger, error) {
	override, hasOverride := envLevel()

	out := &ZeroLogger{}
	writers := make([]io.Writer, 0, len(dests))
	minLevel := zerolog.Disabled
	for i, dest := range dests {
		lvl, err := ParseLevel(dest.Level)
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("logging[%d] %q: %w", i, dest.Name, err)
		}
		if hasOverride {
			lvl = override
		}
		w, err := out.openWriter(dest)
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("logging[%d] %q: %w", i, dest.Name, err)
		}
		writers = append(writers, levelWriter{w: w, level: lvl})
		if lvl < minLevel {
			minLevel = lvl
		}
	}

	if len(writers) == 0 {
		out.zl = zerolog.Nop()
		return out, nil
	}
	out.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(minLevel).
		With().
		Timestamp().
		Str("app", app).
		Logger()
	return out, nil
}

// FromZerolog wraps an existing zerolog logger.
func FromZerolog(zl zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{zl: zl}
}

func (l *ZeroLogger) openWriter(dest Destination) (io.Writer, error) {
	switch dest.Type {
	case DestinationConsole:
		stream := os.Stdout
		if strings.EqualFold(strings.TrimSpace(dest.Settings["stream"]), "stderr") {
			stream = os.Stderr
		}
		noColor := false
		if v, ok := parseBool(dest.Settings["color"]); ok {
			noColor = !v
		}
		if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
			noColor = v
		}
		return zerolog.ConsoleWriter{Out: stream, TimeFormat: time.RFC3339, NoColor: noColor}, nil
	case DestinationFile:
		path := strings.TrimSpace(dest.Settings["path"])
		if path == "" {
			return nil, fmt.Errorf("%w: file destination requires settings.path", ErrInvalidLogDestination)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		l.closers = append(l.closers, f)
		return f, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidLogDestination, dest.Type)
	}
}

// Zerolog exposes the underlying logger for zerolog-native consumers.
func (l *ZeroLogger) Zerolog() zerolog.Logger {
	return l.zl
}

// Close releases any files opened for file destinations.
func (l *ZeroLogger) Close() error {
	var errs []error
	for _, c := range l.closers {
		errs = append(errs, c.Close())
	}
	l.closers = nil
	return errors.Join(errs...)
}

func (l *ZeroLogger) Errorf(format string, args ...any) { l.zl.Error().Msgf(format, args...) }
func (l *ZeroLogger) Warnf(format string, args ...any)  { l.zl.Warn().Msgf(format, args...) }
func (l *ZeroLogger) Infof(format string, args ...any)  { l.zl.Info().Msgf(format, args...) }
func (l *ZeroLogger) Debugf(format string, args ...any) { l.zl.Debug().Msgf(format, args...) }
func (l *ZeroLogger) Tracef(format string, args ...any) { l.zl.Trace().Msgf(format, args...) }

type nopLogger struct{}

// Nop returns a Logger that drops everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Errorf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Tracef(string, ...any) {}

// levelWriter drops entries below level.
type levelWriter struct {
	w     io.Writer
	level zerolog.Level
}

func (l levelWriter) Write(p []byte) (int, error) {
	return l.w.Write(p)
}

func (l levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < l.level {
		return len(p), nil
	}
	return l.w.Write(p)
}

func invalidLevel(raw string) error {
	return fmt.Errorf("%w: %q", ErrInvalidLogLevel, raw)
}
