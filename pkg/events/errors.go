package events

import "github.com/shuldan/kevent/pkg/errors"

var newEventCode = errors.WithPrefix("EVENTS")

var (
	ErrNilListener     = newEventCode().New("listener must not be nil")
	ErrNilHandler      = newEventCode().New("handler callback must not be nil")
	ErrUnknownPriority = newEventCode().New("unknown priority {{.priority}}")
	ErrHandlerPanic    = newEventCode().New("handler {{.handler_id}} panicked on {{.event_type}}: {{.panic}}")
)
