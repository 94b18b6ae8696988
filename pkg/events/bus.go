package events

import (
	"cmp"
	"reflect"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/shuldan/kevent/pkg/contracts"
)

// Bus dispatches posted events to the handlers of registered listeners.
//
// The active handlers are kept as an immutable snapshot sorted by priority.
// Register and Unregister build a new snapshot under a lock and swap it in;
// Post reads whichever snapshot is current when it starts and never locks,
// so a handler may change registrations or post again while dispatching.
type Bus struct {
	id               uuid.UUID
	name             string
	logger           contracts.Logger
	recoverPanics    bool
	logRegistrations bool

	mu           sync.Mutex
	active       atomic.Pointer[[]*HandlerRecord]
	errorHandler atomic.Pointer[errorHandlerRef]
	fallback     ErrorHandler
}

type errorHandlerRef struct {
	ErrorHandler
}

func (b *Bus) ID() uuid.UUID {
	return b.id
}

func (b *Bus) Name() string {
	return b.name
}

// Register makes every handler l has declared so far active on b. It is a
// no-op when l is already registered.
func (b *Bus) Register(l Listener) error {
	set := handlerSetOf(l)
	if set == nil {
		return ErrNilListener
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.handlers()
	if ownsAny(current, set) {
		return nil
	}

	records := set.snapshot()
	next := make([]*HandlerRecord, 0, len(current)+len(records))
	next = append(next, current...)
	next = append(next, records...)
	slices.SortStableFunc(next, func(x, y *HandlerRecord) int {
		return cmp.Compare(x.priority, y.priority)
	})
	b.active.Store(&next)

	if b.logRegistrations {
		b.logger.Debug("listener registered", "listener", listenerName(l), "handlers", len(records))
	}
	return nil
}

// MustRegister is Register for setup code where a nil listener is a bug.
func (b *Bus) MustRegister(l Listener) {
	if err := b.Register(l); err != nil {
		panic(err)
	}
}

// Unregister removes every handler of l from b. The handlers stay declared
// on l, so a later Register restores them.
func (b *Bus) Unregister(l Listener) {
	set := handlerSetOf(l)
	if set == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.handlers()
	if !ownsAny(current, set) {
		return
	}

	next := slices.DeleteFunc(slices.Clone(current), func(r *HandlerRecord) bool {
		return r.owner == set
	})
	b.active.Store(&next)

	if b.logRegistrations {
		b.logger.Debug("listener unregistered", "listener", listenerName(l), "handlers", len(current)-len(next))
	}
}

func (b *Bus) IsRegistered(l Listener) bool {
	set := handlerSetOf(l)
	if set == nil {
		return false
	}
	return ownsAny(b.handlers(), set)
}

// Len is the number of active handlers.
func (b *Bus) Len() int {
	return len(b.handlers())
}

// Handlers returns the active handlers in dispatch order.
func (b *Bus) Handlers() []*HandlerRecord {
	return slices.Clone(b.handlers())
}

// SetErrorHandler replaces the error handler. nil restores the default.
func (b *Bus) SetErrorHandler(h ErrorHandler) {
	if h == nil {
		b.errorHandler.Store(nil)
		return
	}
	b.errorHandler.Store(&errorHandlerRef{h})
}

func (b *Bus) ErrorHandler() ErrorHandler {
	if ref := b.errorHandler.Load(); ref != nil {
		return ref.ErrorHandler
	}
	return b.fallback
}

// Post calls, in priority order, every active handler declared for the
// dynamic type of event or for an interface it implements, and returns
// event. A failing handler is reported to the error handler and does not
// stop the remaining ones. A nil event reaches no handler.
func (b *Bus) Post(event any) any {
	eventType := reflect.TypeOf(event)
	if eventType == nil {
		return event
	}

	for _, r := range b.handlers() {
		if r.accepts(eventType) {
			b.dispatch(r, event)
		}
	}

	return event
}

// Post is Bus.Post keeping the static type of event.
func Post[E any](b *Bus, event E) E {
	b.Post(event)
	return event
}

func (b *Bus) handlers() []*HandlerRecord {
	if p := b.active.Load(); p != nil {
		return *p
	}
	return nil
}

func (b *Bus) dispatch(r *HandlerRecord, event any) {
	recovered, err := invoke(r, event)
	if err == nil {
		return
	}

	b.ErrorHandler().Handle(event, r, err)

	if recovered != nil && !b.recoverPanics {
		panic(recovered)
	}
}

func invoke(r *HandlerRecord, event any) (recovered any, err error) {
	defer func() {
		if recovered = recover(); recovered != nil {
			panicErr := ErrHandlerPanic.
				WithDetail("handler_id", r.id.String()).
				WithDetail("event_type", eventTypeName(event)).
				WithDetail("panic", recovered)
			if cause, ok := recovered.(error); ok {
				panicErr = panicErr.WithCause(cause)
			}
			panicErr.Stack = string(debug.Stack())
			err = panicErr
		}
	}()

	return nil, r.invoke(event)
}

func ownsAny(records []*HandlerRecord, set *HandlerSet) bool {
	return slices.ContainsFunc(records, func(r *HandlerRecord) bool {
		return r.owner == set
	})
}

func listenerName(l Listener) string {
	return reflect.TypeOf(l).String()
}
