package events

import "github.com/shuldan/kevent/pkg/contracts"

type Option func(*busConfig)

type busConfig struct {
	name             string
	logger           contracts.Logger
	errorHandler     ErrorHandler
	recoverPanics    bool
	logRegistrations bool
}

func WithName(name string) Option {
	return func(c *busConfig) {
		c.name = name
	}
}

func WithLogger(l contracts.Logger) Option {
	return func(c *busConfig) {
		c.logger = l
	}
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(c *busConfig) {
		c.errorHandler = h
	}
}

// WithRecoverPanics controls whether a panicking handler is reported and
// skipped (the default) or reported and re-panicked on the posting goroutine.
func WithRecoverPanics(enabled bool) Option {
	return func(c *busConfig) {
		c.recoverPanics = enabled
	}
}

func WithRegistrationLogging(enabled bool) Option {
	return func(c *busConfig) {
		c.logRegistrations = enabled
	}
}
