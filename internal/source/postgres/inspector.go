package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/rudderlabs/rudder-go-kit/logger"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"

	"github.com/alexanderjulianmartinez/schema-watch/internal/source"
)

const driverName = "postgres"

const (
	catalogQuery         = `SELECT column_name, data_type FROM information_schema.columns WHERE table_name = $1`
	catalogQueryInSchema = catalogQuery + ` AND table_schema = $2`
)

const defaultTimeout = 5 * time.Second

type Inspector struct {
	db      *sql.DB
	schema  string
	timeout time.Duration
	log     logger.Logger
}

type Option func(*Inspector)

// WithSchema restricts catalog lookups to one schema. Without it every
// schema's table of the given name is folded into the result.
func WithSchema(schema string) Option {
	return func(i *Inspector) { i.schema = schema }
}

func WithTimeout(timeout time.Duration) Option {
	return func(i *Inspector) {
		if timeout > 0 {
			i.timeout = timeout
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(i *Inspector) { i.log = log }
}

// Open connects to the database and verifies the connection with a ping.
// The returned inspector holds a single connection.
func Open(ctx context.Context, dsn string, opts ...Option) (*Inspector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &source.ConnectionError{Driver: driverName, Err: err}
	}
	db.SetMaxOpenConns(1)

	i := New(db, opts...)

	pingCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &source.ConnectionError{Driver: driverName, Err: err}
	}
	i.log.Debugn("Connected to postgres", logger.NewStringField("schema", i.schema))
	return i, nil
}

// New wraps an already opened handle. The inspector takes ownership of db.
func New(db *sql.DB, opts ...Option) *Inspector {
	i := &Inspector{
		db:      db,
		timeout: defaultTimeout,
		log:     logger.NOP,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Inspector) Name() string { return driverName }

// DB exposes the underlying handle so other components can share the
// inspector's connection.
func (i *Inspector) DB() *sql.DB { return i.db }

func (i *Inspector) Close() error { return i.db.Close() }

func (i *Inspector) FetchSchema(ctx context.Context, table string) (source.ActualSchema, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	query, args := catalogQuery, []any{table}
	if i.schema != "" {
		query, args = catalogQueryInSchema, []any{table, i.schema}
	}

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, i.wrap(table, err)
	}
	defer func() { _ = rows.Close() }()

	actual := source.ActualSchema{}
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, fmt.Errorf("scan catalog row for %s: %w", table, err)
		}
		actual[name] = dataType
	}
	if err := rows.Err(); err != nil {
		return nil, i.wrap(table, err)
	}

	if len(actual) == 0 {
		i.log.Warnn("Table not found in catalog", logger.NewStringField("table", table))
	}
	return actual, nil
}

func (i *Inspector) wrap(table string, err error) error {
	if isConnectionFailure(err) {
		i.log.Errorn("Lost connection while reading catalog",
			logger.NewStringField("table", table),
			obskit.Error(err),
		)
		return &source.ConnectionError{Driver: driverName, Err: err}
	}
	return fmt.Errorf("query catalog for %s: %w", table, err)
}

// isConnectionFailure covers transport errors plus SQLSTATE class 08
// (connection exception) and 28 (invalid authorization).
func isConnectionFailure(err error) bool {
	if source.IsNetworkFailure(err) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "28":
			return true
		}
	}
	return false
}
