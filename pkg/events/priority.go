package events

import (
	"fmt"
	"strings"
)

// Priority orders handlers of a bus. Handlers run from PriorityLowest to
// PriorityHighest.
type Priority int

const (
	// PriorityLowest runs first.
	PriorityLowest Priority = iota
	PriorityLow
	// PriorityNormal is used when On gets no WithPriority option.
	PriorityNormal
	PriorityHigh
	// PriorityHighest runs last.
	PriorityHighest
)

var priorityNames = [...]string{
	PriorityLowest:  "LOWEST",
	PriorityLow:     "LOW",
	PriorityNormal:  "NORMAL",
	PriorityHigh:    "HIGH",
	PriorityHighest: "HIGHEST",
}

func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Priority(%d)", int(p))
	}
	return priorityNames[p]
}

func (p Priority) Valid() bool {
	return p >= PriorityLowest && p <= PriorityHighest
}

func ParsePriority(name string) (Priority, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for p, n := range priorityNames {
		if n == upper {
			return Priority(p), nil
		}
	}
	return PriorityNormal, ErrUnknownPriority.WithDetail("priority", name)
}
