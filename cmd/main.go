package main

import (
	"context"
	"fmt"
	"log"

	"github.com/shuldan/kevent/pkg/config"
	"github.com/shuldan/kevent/pkg/contracts"
	"github.com/shuldan/kevent/pkg/events"
	"github.com/shuldan/kevent/pkg/logger"
	"github.com/shuldan/kevent/pkg/sink"
)

type UserEvent interface {
	Username() string
}

type UserLoggedIn struct {
	User string
}

func (e UserLoggedIn) Username() string { return e.User }

type PostPublished struct {
	ID   int
	User string
	Text string
}

func (e PostPublished) Username() string { return e.User }

type AuditListener struct {
	events.HandlerSet
}

func NewAuditListener(p events.Priority) *AuditListener {
	l := &AuditListener{}
	events.OnFunc(l, func(e UserEvent) {
		fmt.Printf("audit: %s did %T\n", e.Username(), e)
	}, events.WithPriority(p))
	return l
}

type FeedListener struct {
	events.HandlerSet
	published int
}

func NewFeedListener() *FeedListener {
	l := &FeedListener{}
	events.On(l, func(e PostPublished) error {
		if e.Text == "" {
			return fmt.Errorf("post %d has no text", e.ID)
		}
		l.published++
		fmt.Printf("feed: post %d by %s\n", e.ID, e.User)
		return nil
	}, events.WithPriority(events.PriorityHigh))
	events.OnFunc(l, func(e UserLoggedIn) {
		fmt.Printf("feed: welcome back, %s\n", e.User)
	})
	return l
}

// priorityFromConfig reads a priority name such as "high" at key, falling
// back to def when the key is absent.
func priorityFromConfig(cfg contracts.Config, key string, def events.Priority) (events.Priority, error) {
	if !cfg.Has(key) {
		return def, nil
	}
	return events.ParsePriority(cfg.GetString(key))
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load("KEVENT_", "kevent.yaml")
	if err != nil {
		log.Fatal(err)
	}

	l, err := logger.NewFromConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}

	bus := events.NewFromConfig(cfg, l)

	s, err := sink.NewFromConfig(ctx, cfg, sink.WithBus(bus.Name()), sink.WithLogger(l))
	if err != nil {
		l.Critical("failed to set up failure sink", "error", err)
		return
	}
	if s != nil {
		defer func() { _ = s.Close() }()
		bus.SetErrorHandler(events.NewChainErrorHandler(events.NewDefaultErrorHandler(l), s))
	}

	auditPriority, err := priorityFromConfig(cfg, "demo.audit_priority", events.PriorityLowest)
	if err != nil {
		l.Critical("invalid audit priority", "error", err)
		return
	}

	audit := NewAuditListener(auditPriority)
	feed := NewFeedListener()
	bus.MustRegister(audit)
	bus.MustRegister(feed)

	events.Post(bus, UserLoggedIn{User: "alice"})
	events.Post(bus, PostPublished{ID: 1, User: "alice", Text: "Hello world"})
	events.Post(bus, PostPublished{ID: 2, User: "bob"})

	bus.Unregister(audit)
	events.Post(bus, PostPublished{ID: 3, User: "bob", Text: "audit is off"})

	l.Info("done", "published", feed.published, "handlers", bus.Len())
}
