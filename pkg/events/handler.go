package events

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// HandlerRecord is one callback declared by a listener through On. It never
// changes after creation.
type HandlerRecord struct {
	id        uuid.UUID
	owner     *HandlerSet
	eventType reflect.Type
	priority  Priority
	invoke    func(event any) error
}

func (r *HandlerRecord) ID() uuid.UUID {
	return r.id
}

// Owner identifies the listener that declared the handler.
func (r *HandlerRecord) Owner() *HandlerSet {
	return r.owner
}

func (r *HandlerRecord) EventType() reflect.Type {
	return r.eventType
}

func (r *HandlerRecord) Priority() Priority {
	return r.priority
}

func (r *HandlerRecord) String() string {
	return fmt.Sprintf("handler %s on %s at %s", r.id, r.eventType, r.priority)
}

// accepts reports whether events of dynamic type t are delivered to r: the
// declared type is t itself, or an interface t implements.
func (r *HandlerRecord) accepts(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if r.eventType == t {
		return true
	}
	return r.eventType.Kind() == reflect.Interface && t.Implements(r.eventType)
}
