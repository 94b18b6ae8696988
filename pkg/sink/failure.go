package sink

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shuldan/kevent/pkg/errors"
	"github.com/shuldan/kevent/pkg/events"
)

// Failure is the persisted form of one failed handler invocation. The event
// itself is never stored, only its type.
type Failure struct {
	ID         uuid.UUID
	Bus        string
	HandlerID  string
	EventType  string
	Priority   string
	Code       string
	Message    string
	OccurredAt time.Time
}

func newFailure(bus string, event any, record *events.HandlerRecord, err error) Failure {
	f := Failure{
		ID:         uuid.New(),
		Bus:        bus,
		EventType:  fmt.Sprintf("%T", event),
		Code:       string(errors.GetErrorCode(err)),
		OccurredAt: time.Now().UTC(),
	}
	if record != nil {
		f.HandlerID = record.ID().String()
		f.Priority = record.Priority().String()
	}
	if err != nil {
		f.Message = err.Error()
	}
	return f
}

func (f Failure) logArgs() []any {
	return []any{
		"failure_id", f.ID.String(),
		"event_type", f.EventType,
		"handler_id", f.HandlerID,
		"priority", f.Priority,
		"code", f.Code,
		"message", f.Message,
	}
}
