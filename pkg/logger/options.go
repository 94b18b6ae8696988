package logger

import (
	"io"
	"log/slog"
)

type Option func(*loggerConfig)

type loggerConfig struct {
	level  slog.Level
	json   bool
	source bool
	color  bool
	writer io.Writer
}

func WithLevel(level slog.Level) Option {
	return func(c *loggerConfig) {
		c.level = level
	}
}

func WithJSON() Option {
	return func(c *loggerConfig) {
		c.json = true
	}
}

func WithText() Option {
	return func(c *loggerConfig) {
		c.json = false
	}
}

// WithSource adds the calling file and line to every record.
func WithSource() Option {
	return func(c *loggerConfig) {
		c.source = true
	}
}

// WithColor colours level names, but only when the writer is a terminal.
func WithColor() Option {
	return func(c *loggerConfig) {
		c.color = true
	}
}

// WithWriter sets the output. A nil writer discards everything.
func WithWriter(w io.Writer) Option {
	return func(c *loggerConfig) {
		if w == nil {
			w = io.Discard
		}
		c.writer = w
	}
}
