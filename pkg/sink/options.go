package sink

import (
	"os"
	"time"

	"github.com/shuldan/kevent/pkg/contracts"
	"github.com/shuldan/kevent/pkg/logger"
)

const (
	defaultTable   = "event_failures"
	defaultStream  = "kevent:failures"
	defaultMaxLen  = 10000
	defaultTimeout = 5 * time.Second
)

type sinkConfig struct {
	bus     string
	logger  contracts.Logger
	timeout time.Duration

	table   string
	dialect Dialect

	stream string
	maxLen int64
	approx bool
}

type Option func(*sinkConfig)

func defaultConfig() *sinkConfig {
	return &sinkConfig{
		bus:     "default",
		timeout: defaultTimeout,
		table:   defaultTable,
		dialect: DialectQuestion,
		stream:  defaultStream,
		maxLen:  defaultMaxLen,
		approx:  true,
	}
}

func newConfig(opts []Option) *sinkConfig {
	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger, _ = logger.NewLogger(logger.WithWriter(os.Stderr))
	}
	return c
}

// WithBus sets the bus name stored alongside every failure.
func WithBus(name string) Option {
	return func(c *sinkConfig) {
		c.bus = name
	}
}

// WithLogger sets the logger used when a failure cannot be written.
func WithLogger(l contracts.Logger) Option {
	return func(c *sinkConfig) {
		c.logger = l
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *sinkConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithTable(name string) Option {
	return func(c *sinkConfig) {
		if name != "" {
			c.table = name
		}
	}
}

func WithDialect(d Dialect) Option {
	return func(c *sinkConfig) {
		c.dialect = d
	}
}

func WithStream(name string) Option {
	return func(c *sinkConfig) {
		if name != "" {
			c.stream = name
		}
	}
}

// WithMaxLen caps the stream length. Zero disables trimming.
func WithMaxLen(n int64, approx bool) Option {
	return func(c *sinkConfig) {
		c.maxLen = n
		c.approx = approx
	}
}
