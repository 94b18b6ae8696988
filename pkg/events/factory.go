package events

import (
	"github.com/google/uuid"

	"github.com/shuldan/kevent/pkg/contracts"
)

func New(opts ...Option) *Bus {
	cfg := &busConfig{
		name:             "default",
		recoverPanics:    true,
		logRegistrations: true,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = stderrLogger()
	}

	b := &Bus{
		id:               uuid.New(),
		name:             cfg.name,
		recoverPanics:    cfg.recoverPanics,
		logRegistrations: cfg.logRegistrations,
	}
	b.logger = cfg.logger.With("bus", b.name, "bus_id", b.id.String())
	b.fallback = NewDefaultErrorHandler(b.logger)
	b.SetErrorHandler(cfg.errorHandler)

	return b
}

// NewFromConfig builds a bus from the "events" section of cfg. Explicit opts
// are applied after the configured values and win.
func NewFromConfig(cfg contracts.Config, l contracts.Logger, opts ...Option) *Bus {
	base := []Option{WithLogger(l)}

	if cfg != nil {
		if sub, ok := cfg.GetSub("events"); ok {
			base = append(base,
				WithName(sub.GetString("name", "default")),
				WithRecoverPanics(sub.GetBool("recover_panics", true)),
				WithRegistrationLogging(sub.GetBool("log_registrations", true)),
			)
		}
	}

	return New(append(base, opts...)...)
}
