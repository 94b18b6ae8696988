package sink

import "github.com/shuldan/kevent/pkg/errors"

var newSinkCode = errors.WithPrefix("SINK")

var (
	ErrUnsupportedDriver = newSinkCode().New("unsupported sink driver {{.driver}}")
	ErrOpenFailed        = newSinkCode().New("failed to open {{.driver}} database")
	ErrMigrateFailed     = newSinkCode().New("failed to create table {{.table}}")
	ErrWriteFailed       = newSinkCode().New("failed to write failure {{.id}} to {{.target}}")
	ErrQueryFailed       = newSinkCode().New("failed to read failures from {{.table}}")
	ErrMissingAddress    = newSinkCode().New("redis sink requires an address")
)
