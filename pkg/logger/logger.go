// Package logger provides opinionated logging capabilities for parley.
// Every component receives a *slog.Logger built here.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// ComponentKey is the attribute carrying WithComponent's name.
const ComponentKey = "component"

type config struct {
	level     slog.Level
	pretty    bool
	json      bool
	source    bool
	component string
	writers   []io.Writer
}

// New creates a *slog.Logger. Without options it writes text records at Info
// level to os.Stderr.
func New(opts ...Option) *slog.Logger {
	cfg := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(cfg)
	}

	w := cfg.output()

	if cfg.pretty {
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(cfg.level),
			Prefix:          cfg.component,
			ReportTimestamp: true,
			ReportCaller:    cfg.source,
			TimeFormat:      time.Kitchen,
		}))
	}

	hopts := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.source}

	var h slog.Handler
	if cfg.json {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	if cfg.component != "" {
		h = h.WithAttrs([]slog.Attr{slog.String(ComponentKey, cfg.component)})
	}
	return slog.New(h)
}

func (c *config) output() io.Writer {
	switch len(c.writers) {
	case 0:
		return os.Stderr
	case 1:
		return c.writers[0]
	default:
		return io.MultiWriter(c.writers...)
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
