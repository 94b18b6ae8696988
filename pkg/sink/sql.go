package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shuldan/kevent/pkg/events"
)

type Dialect int

const (
	// DialectQuestion uses "?" placeholders (sqlite3, mysql).
	DialectQuestion Dialect = iota
	// DialectDollar uses "$1".."$n" placeholders (postgres).
	DialectDollar
)

var drivers = map[string]Dialect{
	"sqlite3":  DialectQuestion,
	"mysql":    DialectQuestion,
	"postgres": DialectDollar,
}

// DialectFor reports the placeholder dialect of a registered driver name.
func DialectFor(driver string) (Dialect, bool) {
	d, ok := drivers[driver]
	return d, ok
}

var columns = []string{"id", "bus", "handler_id", "event_type", "priority", "code", "message", "occurred_at"}

// SQL records handler failures as rows of a table. It implements
// events.ErrorHandler.
type SQL struct {
	db     *sql.DB
	owned  bool
	config *sinkConfig
	insert string
}

func NewSQL(db *sql.DB, opts ...Option) *SQL {
	c := newConfig(opts)
	return &SQL{
		db:     db,
		config: c,
		insert: fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			c.table, strings.Join(columns, ", "), placeholders(c.dialect, len(columns)),
		),
	}
}

// OpenSQL opens and pings a database for one of the sqlite3, mysql or
// postgres drivers. The returned sink owns the connection.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQL, error) {
	dialect, ok := DialectFor(driver)
	if !ok {
		return nil, ErrUnsupportedDriver.WithDetail("driver", driver)
	}

	if driver == "mysql" {
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, ErrOpenFailed.WithDetail("driver", driver).WithCause(err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, ErrOpenFailed.WithDetail("driver", driver).WithCause(err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	s := NewSQL(db, append([]Option{WithDialect(dialect)}, opts...)...)
	s.owned = true

	pingCtx, cancel := context.WithTimeout(ctx, s.config.timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, ErrOpenFailed.WithDetail("driver", driver).WithCause(err)
	}

	return s, nil
}

func (s *SQL) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR(36) PRIMARY KEY,
	bus VARCHAR(255) NOT NULL,
	handler_id VARCHAR(36) NOT NULL,
	event_type VARCHAR(255) NOT NULL,
	priority VARCHAR(16) NOT NULL,
	code VARCHAR(64) NOT NULL,
	message TEXT NOT NULL,
	occurred_at TIMESTAMP NOT NULL
)`, s.config.table)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return ErrMigrateFailed.WithDetail("table", s.config.table).WithCause(err)
	}
	return nil
}

func (s *SQL) Handle(event any, record *events.HandlerRecord, err error) {
	f := newFailure(s.config.bus, event, record, err)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.timeout)
	defer cancel()

	if werr := s.Write(ctx, f); werr != nil {
		s.config.logger.Error("failed to record event failure",
			append([]any{"sink", "sql", "error", werr}, f.logArgs()...)...)
	}
}

func (s *SQL) Write(ctx context.Context, f Failure) error {
	_, err := s.db.ExecContext(ctx, s.insert,
		f.ID.String(), f.Bus, f.HandlerID, f.EventType, f.Priority, f.Code, f.Message, f.OccurredAt,
	)
	if err != nil {
		return ErrWriteFailed.
			WithDetail("id", f.ID.String()).
			WithDetail("target", s.config.table).
			WithCause(err)
	}
	return nil
}

// Failures returns up to limit recorded failures, oldest first.
func (s *SQL) Failures(ctx context.Context, limit int) ([]Failure, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY occurred_at, id LIMIT %d",
		strings.Join(columns, ", "), s.config.table, limit,
	)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, ErrQueryFailed.WithDetail("table", s.config.table).WithCause(err)
	}
	defer func() { _ = rows.Close() }()

	var result []Failure
	for rows.Next() {
		var (
			f          Failure
			id         string
			occurredAt time.Time
		)
		if err := rows.Scan(&id, &f.Bus, &f.HandlerID, &f.EventType, &f.Priority, &f.Code, &f.Message, &occurredAt); err != nil {
			return nil, ErrQueryFailed.WithDetail("table", s.config.table).WithCause(err)
		}
		if f.ID, err = uuid.Parse(id); err != nil {
			return nil, ErrQueryFailed.WithDetail("table", s.config.table).WithCause(err)
		}
		f.OccurredAt = occurredAt
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, ErrQueryFailed.WithDetail("table", s.config.table).WithCause(err)
	}
	return result, nil
}

// Close closes the database if the sink opened it.
func (s *SQL) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// mysqlDSN turns on parseTime so occurred_at scans into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func placeholders(d Dialect, n int) string {
	ps := make([]string, n)
	for i := range ps {
		if d == DialectDollar {
			ps[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ps[i] = "?"
		}
	}
	return strings.Join(ps, ", ")
}
