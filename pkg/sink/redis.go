package sink

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shuldan/kevent/pkg/events"
)

// Redis appends handler failures to a capped stream. It implements
// events.ErrorHandler.
type Redis struct {
	client redis.UniversalClient
	owned  bool
	config *sinkConfig
}

func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	return &Redis{
		client: client,
		config: newConfig(opts),
	}
}

// DialRedis creates a client for addr. The returned sink owns the client.
func DialRedis(addr string, opts ...Option) (*Redis, error) {
	if addr == "" {
		return nil, ErrMissingAddress
	}
	r := NewRedis(redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	}), opts...)
	r.owned = true
	return r, nil
}

func (r *Redis) Handle(event any, record *events.HandlerRecord, err error) {
	f := newFailure(r.config.bus, event, record, err)

	ctx, cancel := context.WithTimeout(context.Background(), r.config.timeout)
	defer cancel()

	if _, werr := r.Write(ctx, f); werr != nil {
		r.config.logger.Error("failed to record event failure",
			append([]any{"sink", "redis", "error", werr}, f.logArgs()...)...)
	}
}

// Write appends f to the stream and returns the entry id.
func (r *Redis) Write(ctx context.Context, f Failure) (string, error) {
	args := &redis.XAddArgs{
		Stream: r.config.stream,
		Values: map[string]interface{}{
			"id":          f.ID.String(),
			"bus":         f.Bus,
			"handler_id":  f.HandlerID,
			"event_type":  f.EventType,
			"priority":    f.Priority,
			"code":        f.Code,
			"message":     f.Message,
			"occurred_at": f.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	if r.config.maxLen > 0 {
		args.MaxLen = r.config.maxLen
		args.Approx = r.config.approx
	}

	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", ErrWriteFailed.
			WithDetail("id", f.ID.String()).
			WithDetail("target", r.config.stream).
			WithCause(err)
	}
	return id, nil
}

// Close closes the client if the sink created it.
func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
