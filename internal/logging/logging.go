// Package logging provides the structured logger handed to every job component.
//
// There is no package-level default: each process builds one Logger in main and
// passes it down explicitly.
package logging

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the logging capability injected into handlers and components.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

type Config struct {
	Level  string // debug|info|warn|error
	JSON   bool
	Prefix string
	Output io.Writer
}

// ConfigFromEnv reads LOG_LEVEL and LOG_FORMAT (json|text). JSON is the default
// because Lambda ships stdout to CloudWatch.
func ConfigFromEnv(prefix string) Config {
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	return Config{
		Level:  strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		JSON:   format != "text",
		Prefix: prefix,
		Output: os.Stdout,
	}
}

type charmLogger struct {
	l *charmlog.Logger
}

func New(cfg Config) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	level, err := charmlog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = charmlog.InfoLevel
	}

	l := charmlog.NewWithOptions(out, charmlog.Options{
		Level:           level,
		Prefix:          cfg.Prefix,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02T15:04:05.000Z07:00",
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return &charmLogger{l: l}
}

func (c *charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{l: c.l.With(keyvals...)}
}

// Nop discards everything. Used by tests and callers that pass no logger.
func Nop() Logger {
	return New(Config{Output: io.Discard, Level: "error"})
}
