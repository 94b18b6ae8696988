package events

import (
	"fmt"
	"os"

	"github.com/shuldan/kevent/pkg/contracts"
	"github.com/shuldan/kevent/pkg/errors"
	"github.com/shuldan/kevent/pkg/logger"
)

// ErrorHandler receives every error returned by a handler, and every panic
// as ErrHandlerPanic, once per failing invocation. It runs on the posting
// goroutine and must not panic: a panic here is not recovered by the bus.
type ErrorHandler interface {
	Handle(event any, record *HandlerRecord, err error)
}

type ErrorHandlerFunc func(event any, record *HandlerRecord, err error)

func (f ErrorHandlerFunc) Handle(event any, record *HandlerRecord, err error) {
	f(event, record, err)
}

type defaultErrorHandler struct {
	logger contracts.Logger
}

// NewDefaultErrorHandler reports failures through l. A nil l logs to stderr.
func NewDefaultErrorHandler(l contracts.Logger) ErrorHandler {
	if l == nil {
		l = stderrLogger()
	}
	return &defaultErrorHandler{logger: l}
}

func (d *defaultErrorHandler) Handle(event any, record *HandlerRecord, err error) {
	args := []any{"event_type", eventTypeName(event), "error", err}
	if record != nil {
		args = append(args, "handler_id", record.ID().String(), "priority", record.Priority().String())
	}

	var e *errors.Error
	if errors.Is(err, ErrHandlerPanic) && errors.As(err, &e) {
		d.logger.Critical("event handler panicked", append(args, "stack", e.Stack)...)
		return
	}
	d.logger.Error("event handler failed", args...)
}

// ChainErrorHandler passes each failure to all of its handlers in order.
// Add is not safe to call once the chain is in use by a bus.
type ChainErrorHandler struct {
	handlers []ErrorHandler
}

func NewChainErrorHandler(handlers ...ErrorHandler) *ChainErrorHandler {
	return &ChainErrorHandler{
		handlers: handlers,
	}
}

func (c *ChainErrorHandler) Add(handler ErrorHandler) *ChainErrorHandler {
	c.handlers = append(c.handlers, handler)
	return c
}

func (c *ChainErrorHandler) Handle(event any, record *HandlerRecord, err error) {
	for _, h := range c.handlers {
		if h != nil {
			h.Handle(event, record, err)
		}
	}
}

func eventTypeName(event any) string {
	return fmt.Sprintf("%T", event)
}

func stderrLogger() contracts.Logger {
	l, _ := logger.NewLogger(logger.WithWriter(os.Stderr))
	return l
}
