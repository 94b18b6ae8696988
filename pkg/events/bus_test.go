package events

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
)

type EventBase interface {
	Kind() string
}

type EventChild struct {
	Value int
}

func (EventChild) Kind() string { return "child" }

type EventX struct {
	Message string
}

type Tagged interface {
	Tag() string
}

type TaggedChild struct {
	EventChild
}

func (TaggedChild) Tag() string { return "tagged" }

type testListener struct {
	HandlerSet
	name string
}

func newTestListener(name string) *testListener {
	return &testListener{name: name}
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, s)
}

func (c *callLog) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type recordingErrorHandler struct {
	mu      sync.Mutex
	events  []any
	records []*HandlerRecord
	errs    []error
}

func (h *recordingErrorHandler) Handle(event any, record *HandlerRecord, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	h.records = append(h.records, record)
	h.errs = append(h.errs, err)
}

func (h *recordingErrorHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.errs)
}

func newTestBus(opts ...Option) *Bus {
	return New(append([]Option{WithLogger(&mockLogger{})}, opts...)...)
}

func recordCall[E any](l *testListener, log *callLog, label string, p Priority) {
	OnFunc(l, func(E) { log.add(label) }, WithPriority(p))
}

func assertCalls(t *testing.T, log *callLog, want ...string) {
	t.Helper()
	got := log.get()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestBus_PriorityOrder(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}

	a := newTestListener("A")
	recordCall[EventX](a, log, "H1", PriorityHigh)
	b := newTestListener("B")
	recordCall[EventX](b, log, "H2", PriorityLow)

	bus.MustRegister(a)
	bus.MustRegister(b)
	bus.Post(EventX{Message: "x"})

	assertCalls(t, log, "H2", "H1")
}

func TestBus_AllPrioritiesAscending(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}
	l := newTestListener("all")

	for _, p := range []Priority{PriorityHighest, PriorityNormal, PriorityLowest, PriorityHigh, PriorityLow} {
		recordCall[EventX](l, log, p.String(), p)
	}
	bus.MustRegister(l)
	bus.Post(EventX{})

	assertCalls(t, log, "LOWEST", "LOW", "NORMAL", "HIGH", "HIGHEST")
}

func TestBus_EqualPriorityKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}

	first := newTestListener("first")
	recordCall[EventX](first, log, "first-1", PriorityNormal)
	recordCall[EventX](first, log, "first-2", PriorityNormal)

	second := newTestListener("second")
	recordCall[EventX](second, log, "second-1", PriorityNormal)
	recordCall[EventX](second, log, "second-low", PriorityLow)

	third := newTestListener("third")
	recordCall[EventX](third, log, "third-1", PriorityNormal)

	bus.MustRegister(second)
	bus.MustRegister(first)
	bus.MustRegister(third)
	bus.Post(EventX{})

	assertCalls(t, log, "second-low", "second-1", "first-1", "first-2", "third-1")
}

func TestBus_MatchesExactAndInterfaceTypes(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}
	l := newTestListener("matcher")

	recordCall[EventChild](l, log, "child", PriorityNormal)
	recordCall[EventBase](l, log, "base", PriorityNormal)
	recordCall[any](l, log, "any", PriorityNormal)
	recordCall[EventX](l, log, "x", PriorityNormal)
	recordCall[*EventChild](l, log, "child-ptr", PriorityNormal)
	recordCall[Tagged](l, log, "tagged", PriorityNormal)

	bus.MustRegister(l)
	bus.Post(EventChild{Value: 1})

	assertCalls(t, log, "child", "base", "any")
}

func TestBus_SupertypeHandlerReceivesSubtype(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	c := newTestListener("C")

	var got EventBase
	OnFunc(c, func(e EventBase) { got = e })

	bus.MustRegister(c)
	bus.Post(EventChild{Value: 7})

	child, ok := got.(EventChild)
	if !ok || child.Value != 7 {
		t.Errorf("expected EventChild{7}, got %#v", got)
	}
}

func TestBus_AncestorHandlersOrderedByPriorityNotSpecificity(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}
	l := newTestListener("mixed")

	recordCall[TaggedChild](l, log, "exact", PriorityHighest)
	recordCall[Tagged](l, log, "tagged", PriorityNormal)
	recordCall[EventBase](l, log, "base", PriorityLowest)

	bus.MustRegister(l)
	bus.Post(TaggedChild{})

	assertCalls(t, log, "base", "tagged", "exact")
}

func TestBus_PointerEventsMatchPointerHandlers(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}
	l := newTestListener("ptr")

	recordCall[*EventChild](l, log, "ptr", PriorityNormal)
	recordCall[EventChild](l, log, "value", PriorityNormal)
	recordCall[EventBase](l, log, "base", PriorityNormal)

	bus.MustRegister(l)
	bus.Post(&EventChild{})

	// *EventChild gets EventChild's value-receiver method set.
	assertCalls(t, log, "ptr", "base")
}

func TestBus_RegisterIsIdempotent(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}
	l := newTestListener("twice")
	recordCall[EventX](l, log, "h", PriorityNormal)
	recordCall[EventX](l, log, "h2", PriorityHigh)

	if err := bus.Register(l); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	before := bus.Handlers()

	if err := bus.Register(l); err != nil {
		t.Fatalf("second Register failed: %v", err)
	}

	if !slices.Equal(before, bus.Handlers()) {
		t.Errorf("second Register changed active handlers")
	}
	if bus.Len() != 2 {
		t.Errorf("expected 2 active handlers, got %d", bus.Len())
	}

	bus.Post(EventX{})
	assertCalls(t, log, "h", "h2")
}

func TestBus_UnregisterSilencesListener(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}

	gone := newTestListener("gone")
	recordCall[EventX](gone, log, "gone", PriorityNormal)
	stays := newTestListener("stays")
	recordCall[EventX](stays, log, "stays", PriorityNormal)

	bus.MustRegister(gone)
	bus.MustRegister(stays)
	bus.Unregister(gone)

	bus.Post(EventX{})
	assertCalls(t, log, "stays")

	if gone.Len() != 1 {
		t.Errorf("expected declared handlers to survive Unregister, got %d", gone.Len())
	}
	if bus.IsRegistered(gone) {
		t.Error("expected listener to be unregistered")
	}

	bus.MustRegister(gone)
	bus.Post(EventX{})
	assertCalls(t, log, "stays", "stays", "gone")
}

func TestBus_UnregisterUnknownListener(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	known := newTestListener("known")
	OnFunc(known, func(EventX) {})
	bus.MustRegister(known)

	before := bus.Handlers()
	bus.Unregister(newTestListener("stranger"))
	bus.Unregister(nil)

	var typedNil *testListener
	bus.Unregister(typedNil)

	if !slices.Equal(before, bus.Handlers()) {
		t.Error("unregistering unknown listeners changed active handlers")
	}
}

func TestBus_IdentityNotEquality(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}

	a := newTestListener("same")
	recordCall[EventX](a, log, "a", PriorityNormal)
	b := newTestListener("same")
	recordCall[EventX](b, log, "b", PriorityNormal)

	bus.MustRegister(a)
	bus.MustRegister(b)
	bus.Unregister(a)
	bus.Post(EventX{})

	assertCalls(t, log, "b")
}

func TestBus_HandlerErrorDoesNotStopDispatch(t *testing.T) {
	t.Parallel()

	errHandler := &recordingErrorHandler{}
	bus := newTestBus(WithErrorHandler(errHandler))
	log := &callLog{}
	boom := errors.New("boom")

	l := newTestListener("failing")
	recordCall[EventX](l, log, "low", PriorityLow)
	failing := On(l, func(EventX) error {
		log.add("failing")
		return boom
	})
	recordCall[EventX](l, log, "high", PriorityHigh)
	bus.MustRegister(l)

	event := EventX{Message: "e"}
	bus.Post(event)

	assertCalls(t, log, "low", "failing", "high")
	if errHandler.count() != 1 {
		t.Fatalf("expected 1 reported error, got %d", errHandler.count())
	}
	if errHandler.errs[0] != boom {
		t.Errorf("expected original error, got %v", errHandler.errs[0])
	}
	if errHandler.events[0] != event {
		t.Errorf("expected original event, got %v", errHandler.events[0])
	}
	if errHandler.records[0] != failing {
		t.Errorf("expected failing record, got %v", errHandler.records[0])
	}
}

func TestBus_ErrorHandlerCalledOncePerFailure(t *testing.T) {
	t.Parallel()

	errHandler := &recordingErrorHandler{}
	bus := newTestBus(WithErrorHandler(errHandler))

	first := errors.New("first")
	second := errors.New("second")

	l := newTestListener("two failures")
	On(l, func(EventX) error { return second }, WithPriority(PriorityHigh))
	On(l, func(EventX) error { return first }, WithPriority(PriorityLow))
	On(l, func(EventX) error { return nil })

	bus.MustRegister(l)
	bus.Post(EventX{})

	if errHandler.count() != 2 {
		t.Fatalf("expected 2 reported errors, got %d", errHandler.count())
	}
	if errHandler.errs[0] != first || errHandler.errs[1] != second {
		t.Errorf("errors reported out of order: %v", errHandler.errs)
	}
}

func TestBus_PanicIsReportedAndRecovered(t *testing.T) {
	t.Parallel()

	errHandler := &recordingErrorHandler{}
	bus := newTestBus(WithErrorHandler(errHandler))
	log := &callLog{}

	l := newTestListener("panicky")
	panicking := OnFunc(l, func(EventX) { panic("test panic") })
	recordCall[EventX](l, log, "after", PriorityHigh)

	bus.MustRegister(l)
	bus.Post(EventX{})

	assertCalls(t, log, "after")
	if errHandler.count() != 1 {
		t.Fatalf("expected 1 reported error, got %d", errHandler.count())
	}

	err := errHandler.errs[0]
	if !errors.Is(err, ErrHandlerPanic) {
		t.Errorf("expected ErrHandlerPanic, got %v", err)
	}
	if errHandler.records[0] != panicking {
		t.Error("expected panicking record to be reported")
	}
}

func TestBus_PanicWithErrorKeepsCause(t *testing.T) {
	t.Parallel()

	errHandler := &recordingErrorHandler{}
	bus := newTestBus(WithErrorHandler(errHandler))
	cause := errors.New("cause")

	l := newTestListener("panic error")
	OnFunc(l, func(EventX) { panic(cause) })
	bus.MustRegister(l)
	bus.Post(EventX{})

	if errHandler.count() != 1 || !errors.Is(errHandler.errs[0], cause) {
		t.Errorf("expected panic cause to be wrapped, got %v", errHandler.errs)
	}
}

func TestBus_PanicPropagatesWhenRecoveryDisabled(t *testing.T) {
	t.Parallel()

	errHandler := &recordingErrorHandler{}
	bus := newTestBus(WithErrorHandler(errHandler), WithRecoverPanics(false))

	l := newTestListener("fatal")
	OnFunc(l, func(EventX) { panic("fatal") })
	bus.MustRegister(l)

	defer func() {
		if r := recover(); r != "fatal" {
			t.Errorf("expected original panic value, got %v", r)
		}
		if errHandler.count() != 1 {
			t.Errorf("expected panic to be reported before propagating, got %d", errHandler.count())
		}
	}()

	bus.Post(EventX{})
	t.Error("Post should have panicked")
}

func TestBus_PostReturnsSameEvent(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	l := newTestListener("mutator")
	OnFunc(l, func(e *EventChild) { e.Value++ })
	bus.MustRegister(l)

	event := &EventChild{Value: 1}
	got := bus.Post(event)
	if got != event {
		t.Error("Post should return the identical pointer")
	}
	if event.Value != 2 {
		t.Errorf("expected handler to run, value = %d", event.Value)
	}

	typed := Post(bus, event)
	if typed != event || typed.Value != 3 {
		t.Errorf("generic Post returned %v", typed)
	}

	value := EventX{Message: "same"}
	if bus.Post(value) != value {
		t.Error("Post should return an equal value")
	}
}

func TestBus_EmptyBus(t *testing.T) {
	t.Parallel()

	errHandler := &recordingErrorHandler{}
	bus := newTestBus(WithErrorHandler(errHandler))

	event := EventX{Message: "nobody listens"}
	if bus.Post(event) != event {
		t.Error("expected event back")
	}
	if bus.Len() != 0 || errHandler.count() != 0 {
		t.Error("empty bus should do nothing")
	}
}

func TestBus_NilEvent(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}
	l := newTestListener("any")
	recordCall[any](l, log, "any", PriorityNormal)
	bus.MustRegister(l)

	if bus.Post(nil) != nil {
		t.Error("expected nil back")
	}
	assertCalls(t, log)
}

func TestBus_RegisterNilListener(t *testing.T) {
	t.Parallel()

	bus := newTestBus()

	if err := bus.Register(nil); !errors.Is(err, ErrNilListener) {
		t.Errorf("expected ErrNilListener, got %v", err)
	}

	var typedNil *testListener
	if err := bus.Register(typedNil); !errors.Is(err, ErrNilListener) {
		t.Errorf("expected ErrNilListener for typed nil, got %v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustRegister(nil) should panic")
		}
	}()
	bus.MustRegister(nil)
}

func TestBus_HandlersDeclaredAfterRegister(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}
	l := newTestListener("late")
	recordCall[EventX](l, log, "early", PriorityNormal)
	bus.MustRegister(l)

	recordCall[EventX](l, log, "late", PriorityNormal)
	bus.MustRegister(l)
	bus.Post(EventX{})
	assertCalls(t, log, "early")

	bus.Unregister(l)
	bus.MustRegister(l)
	bus.Post(EventX{})
	assertCalls(t, log, "early", "early", "late")
}

func TestBus_MutationDuringPostUsesStartSnapshot(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}

	victim := newTestListener("victim")
	recordCall[EventX](victim, log, "victim", PriorityHigh)

	newcomer := newTestListener("newcomer")
	recordCall[EventX](newcomer, log, "newcomer", PriorityHighest)

	mutator := newTestListener("mutator")
	OnFunc(mutator, func(EventX) {
		log.add("mutator")
		bus.Unregister(victim)
		bus.MustRegister(newcomer)
	}, WithPriority(PriorityLowest))

	bus.MustRegister(mutator)
	bus.MustRegister(victim)

	bus.Post(EventX{})
	assertCalls(t, log, "mutator", "victim")

	bus.Post(EventX{})
	assertCalls(t, log, "mutator", "victim", "mutator", "newcomer")
}

func TestBus_NestedPost(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	log := &callLog{}
	l := newTestListener("nested")

	OnFunc(l, func(e EventX) {
		log.add("x:" + e.Message)
		bus.Post(EventChild{Value: len(e.Message)})
	})
	OnFunc(l, func(e EventChild) {
		log.add(fmt.Sprintf("child:%d", e.Value))
	})

	bus.MustRegister(l)
	bus.Post(EventX{Message: "abc"})

	assertCalls(t, log, "x:abc", "child:3")
}

func TestBus_SetErrorHandler(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	if _, ok := bus.ErrorHandler().(*defaultErrorHandler); !ok {
		t.Fatalf("expected default error handler, got %T", bus.ErrorHandler())
	}

	var calls atomic.Int32
	bus.SetErrorHandler(ErrorHandlerFunc(func(any, *HandlerRecord, error) {
		calls.Add(1)
	}))

	l := newTestListener("failing")
	On(l, func(EventX) error { return errors.New("fail") })
	bus.MustRegister(l)
	bus.Post(EventX{})

	if calls.Load() != 1 {
		t.Errorf("expected replaced handler to be called once, got %d", calls.Load())
	}

	bus.SetErrorHandler(nil)
	if _, ok := bus.ErrorHandler().(*defaultErrorHandler); !ok {
		t.Errorf("SetErrorHandler(nil) should restore the default, got %T", bus.ErrorHandler())
	}
}

func TestBus_RegistrationLogging(t *testing.T) {
	t.Parallel()

	logger := &mockLogger{}
	bus := New(WithLogger(logger), WithName("orders"))

	l := newTestListener("logged")
	OnFunc(l, func(EventX) {})
	bus.MustRegister(l)
	bus.Unregister(l)

	entries := logger.entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].msg != "listener registered" || entries[1].msg != "listener unregistered" {
		t.Errorf("unexpected log messages: %+v", entries)
	}
	if entries[0].level != "debug" {
		t.Errorf("expected debug level, got %s", entries[0].level)
	}

	quiet := &mockLogger{}
	silent := New(WithLogger(quiet), WithRegistrationLogging(false))
	silent.MustRegister(l)
	if len(quiet.entries()) != 0 {
		t.Errorf("expected no registration logs, got %+v", quiet.entries())
	}
}

func TestBus_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	var delivered atomic.Int64

	const listeners = 16
	ls := make([]*testListener, listeners)
	for i := range ls {
		ls[i] = newTestListener(fmt.Sprintf("l%d", i))
		OnFunc(ls[i], func(EventX) { delivered.Add(1) }, WithPriority(Priority(i%5)))
	}

	var wg sync.WaitGroup
	for i := 0; i < listeners; i++ {
		wg.Add(2)
		go func(l *testListener) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.MustRegister(l)
				bus.Unregister(l)
			}
			bus.MustRegister(l)
		}(ls[i])
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bus.Post(EventX{})
			}
		}()
	}
	wg.Wait()

	if bus.Len() != listeners {
		t.Fatalf("expected %d active handlers, got %d", listeners, bus.Len())
	}

	handlers := bus.Handlers()
	for i := 1; i < len(handlers); i++ {
		if handlers[i-1].Priority() > handlers[i].Priority() {
			t.Fatalf("active handlers not sorted at %d", i)
		}
	}

	before := delivered.Load()
	bus.Post(EventX{})
	if got := delivered.Load() - before; got != listeners {
		t.Errorf("expected %d deliveries, got %d", listeners, got)
	}
}
