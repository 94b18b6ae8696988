package sink

import (
	"sync"

	"github.com/shuldan/kevent/pkg/contracts"
	"github.com/shuldan/kevent/pkg/events"
)

type mockLogger struct {
	mu     sync.Mutex
	msgs   []string
	fields [][]any
}

func (m *mockLogger) Trace(string, ...any) {}
func (m *mockLogger) Debug(string, ...any) {}
func (m *mockLogger) Info(string, ...any) {}
func (m *mockLogger) Warn(string, ...any) {}
func (m *mockLogger) Critical(string, ...any) {}

func (m *mockLogger) Error(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	m.fields = append(m.fields, args)
}

func (m *mockLogger) With(...any) contracts.Logger {
	return m
}

func (m *mockLogger) errorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
}

func fieldValue(fields []any, key string) any {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i] == key {
			return fields[i+1]
		}
	}
	return nil
}

type orderPlaced struct {
	ID string
}

type failingListener struct {
	events.HandlerSet
}
