package sink

import (
	"context"

	"github.com/shuldan/kevent/pkg/contracts"
	"github.com/shuldan/kevent/pkg/events"
)

// Sink is a closable failure recorder.
type Sink interface {
	events.ErrorHandler
	Close() error
}

// NewFromConfig builds a sink from the "sink" section of cfg. It returns a nil
// Sink when no driver is configured. SQL sinks are migrated before return.
func NewFromConfig(ctx context.Context, cfg contracts.Config, opts ...Option) (Sink, error) {
	if cfg == nil {
		return nil, nil
	}
	sub, ok := cfg.GetSub("sink")
	if !ok {
		return nil, nil
	}

	driver := sub.GetString("driver")
	base := []Option{
		WithTable(sub.GetString("table")),
		WithStream(sub.GetString("stream")),
	}
	if sub.Has("max_len") {
		base = append(base, WithMaxLen(int64(sub.GetInt("max_len")), true))
	}
	opts = append(base, opts...)

	switch driver {
	case "":
		return nil, nil
	case "redis":
		r, err := DialRedis(sub.GetString("redis_addr"), opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	s, err := OpenSQL(ctx, driver, sub.GetString("dsn"), opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
