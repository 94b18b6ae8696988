package events

import (
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Listener owns handlers. Embedding HandlerSet by value is the usual way to
// satisfy it:
//
//	type AuditLog struct {
//		events.HandlerSet
//	}
//
//	func NewAuditLog() *AuditLog {
//		l := &AuditLog{}
//		events.On(l, l.onLogin, events.WithPriority(events.PriorityHigh))
//		return l
//	}
//
// The handler set lives inside the listener, so nothing outside the listener
// keeps it reachable except a bus it is registered with.
type Listener interface {
	EventHandlers() *HandlerSet
}

// HandlerSet is the handlers declared by one listener, in declaration order.
// Its address is the listener's identity on a bus, so a listener must not
// be copied once it has declared handlers.
type HandlerSet struct {
	mu      sync.Mutex
	records []*HandlerRecord
}

func (s *HandlerSet) EventHandlers() *HandlerSet {
	return s
}

// Len is the number of declared handlers.
func (s *HandlerSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *HandlerSet) add(r *HandlerRecord) {
	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
}

func (s *HandlerSet) snapshot() []*HandlerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	priority Priority
}

func WithPriority(p Priority) HandlerOption {
	return func(o *handlerOptions) {
		o.priority = p
	}
}

// On declares fn as l's handler for events of type E. E may be an interface,
// in which case every event implementing it is delivered. The handler takes
// effect on the next Register of l.
//
// On panics on a nil listener, a nil fn or an invalid priority.
func On[E any](l Listener, fn func(E) error, opts ...HandlerOption) *HandlerRecord {
	set := handlerSetOf(l)
	if set == nil {
		panic(ErrNilListener)
	}
	if fn == nil {
		panic(ErrNilHandler)
	}

	o := handlerOptions{priority: PriorityNormal}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.priority.Valid() {
		panic(ErrUnknownPriority.WithDetail("priority", int(o.priority)))
	}

	r := &HandlerRecord{
		id:        uuid.New(),
		owner:     set,
		eventType: reflect.TypeOf((*E)(nil)).Elem(),
		priority:  o.priority,
		invoke: func(event any) error {
			return fn(event.(E))
		},
	}
	set.add(r)
	return r
}

// OnFunc is On for handlers that cannot fail.
func OnFunc[E any](l Listener, fn func(E), opts ...HandlerOption) *HandlerRecord {
	if fn == nil {
		panic(ErrNilHandler)
	}
	return On(l, func(e E) error {
		fn(e)
		return nil
	}, opts...)
}

// handlerSetOf returns nil for nil interfaces and typed nil pointers, which
// would otherwise panic inside a promoted EventHandlers call.
func handlerSetOf(l Listener) *HandlerSet {
	if l == nil {
		return nil
	}
	if v := reflect.ValueOf(l); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return l.EventHandlers()
}
