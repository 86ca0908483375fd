package logger

import (
	"io"
	"log/slog"
)

// Option configures a logger created with New.
type Option func(*config)

// WithDebug lowers the level to Debug. False keeps Info.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithPretty selects the charmbracelet/log terminal handler.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON selects slog's JSON handler. Pretty wins when both are set.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithWriter adds an output. Repeated calls fan out to every writer; with
// none, output goes to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.writers = append(c.writers, w)
		}
	}
}

// WithComponent names the part of parley doing the logging. Pretty output
// shows it as a prefix, structured output as a "component" attribute.
func WithComponent(name string) Option {
	return func(c *config) { c.component = name }
}

// WithSource reports the caller's file:line.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}
