// Package events is a synchronous, in-process event bus.
//
// Listeners declare typed handlers with On, usually in their constructor, and
// a Bus routes every posted value to the handlers whose declared type is the
// value's dynamic type or an interface it implements:
//
//	type OrderPlaced struct{ ID string }
//
//	type Mailer struct {
//		events.HandlerSet
//	}
//
//	func NewMailer() *Mailer {
//		m := &Mailer{}
//		events.On(m, m.sendReceipt)
//		events.OnFunc(m, m.audit, events.WithPriority(events.PriorityHighest))
//		return m
//	}
//
//	bus := events.New()
//	bus.MustRegister(NewMailer())
//	bus.Post(OrderPlaced{ID: "42"})
//
// Handlers run on the posting goroutine, from PriorityLowest to
// PriorityHighest, ties in registration order. Errors and panics are handed
// to the bus ErrorHandler and never stop the remaining handlers.
//
// A registered listener is referenced by the bus until it is unregistered;
// unregister listeners that should be garbage collected.
package events
