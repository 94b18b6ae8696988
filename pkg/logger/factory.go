package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shuldan/kevent/pkg/contracts"
)

func NewLogger(opts ...Option) (contracts.Logger, error) {
	cfg := &loggerConfig{
		level:  slog.LevelInfo,
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var handler slog.Handler
	if cfg.json {
		handler = slog.NewJSONHandler(cfg.writer, &slog.HandlerOptions{
			Level:       cfg.level,
			AddSource:   cfg.source,
			ReplaceAttr: replaceLevel,
		})
	} else {
		handler = newTextHandler(cfg.writer, cfg.level, cfg.color, cfg.source)
	}

	return &sLogger{handler: handler}, nil
}

// NewFromConfig builds a logger from the "logger" section of cfg. Explicit
// opts are applied after the configured ones and win.
func NewFromConfig(cfg contracts.Config, opts ...Option) (contracts.Logger, error) {
	var fromCfg []Option

	if cfg != nil {
		if sub, ok := cfg.GetSub("logger"); ok {
			var err error
			if fromCfg, err = optionsFromConfig(sub); err != nil {
				return nil, err
			}
		}
	}

	return NewLogger(append(fromCfg, opts...)...)
}

func optionsFromConfig(cfg contracts.Config) ([]Option, error) {
	var opts []Option

	if cfg.Has("level") {
		level, err := ParseLevel(cfg.GetString("level"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLevel(level))
	}

	switch strings.ToLower(cfg.GetString("format", "text")) {
	case "json":
		opts = append(opts, WithJSON())
	default:
		opts = append(opts, WithText())
	}

	if cfg.GetBool("source") {
		opts = append(opts, WithSource())
	}
	if cfg.GetBool("color") {
		opts = append(opts, WithColor())
	}

	opts = append(opts, WithWriter(outputFromName(cfg.GetString("output", "stdout"))))

	return opts, nil
}

func outputFromName(name string) io.Writer {
	switch strings.ToLower(name) {
	case "stderr":
		return os.Stderr
	case "discard", "none":
		return io.Discard
	default:
		return os.Stdout
	}
}
