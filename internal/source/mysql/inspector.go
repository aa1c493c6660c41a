package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/rudderlabs/rudder-go-kit/logger"

	"github.com/alexanderjulianmartinez/schema-watch/internal/source"
)

const driverName = "mysql"

const catalogQuery = `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

type Inspector struct {
	db      *sql.DB
	schema  string
	timeout time.Duration
	log     logger.Logger
}

func NewInspector(ctx context.Context, dsn, schema string, timeout time.Duration, log logger.Logger) (*Inspector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &source.ConnectionError{Driver: driverName, Err: err}
	}
	db.SetMaxOpenConns(1)

	i := newWithDB(db, schema, timeout, log)

	pingCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &source.ConnectionError{Driver: driverName, Err: fmt.Errorf("mysql ping failed: %w", err)}
	}
	return i, nil
}

func newWithDB(db *sql.DB, schema string, timeout time.Duration, log logger.Logger) *Inspector {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.NOP
	}
	return &Inspector{
		db:      db,
		schema:  schema,
		timeout: timeout,
		log:     log,
	}
}

func (i *Inspector) Name() string { return driverName }

func (i *Inspector) Close() error { return i.db.Close() }

func (i *Inspector) FetchSchema(ctx context.Context, tableName string) (source.ActualSchema, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	rows, err := i.db.QueryContext(ctx, catalogQuery, i.schema, tableName)
	if err != nil {
		return nil, i.wrap(tableName, err)
	}
	defer func() { _ = rows.Close() }()

	actual := source.ActualSchema{}
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, err
		}
		actual[name] = dataType
	}
	if err := rows.Err(); err != nil {
		return nil, i.wrap(tableName, err)
	}
	if len(actual) == 0 {
		i.log.Warnn("Table not found in catalog",
			logger.NewStringField("schema", i.schema),
			logger.NewStringField("table", tableName),
		)
	}
	return actual, nil
}

// Access denied (1045) and unknown database (1049) are connection-level failures.
func (i *Inspector) wrap(tableName string, err error) error {
	if source.IsNetworkFailure(err) || errors.Is(err, gomysql.ErrInvalidConn) {
		return &source.ConnectionError{Driver: driverName, Err: err}
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) && (myErr.Number == 1045 || myErr.Number == 1049) {
		return &source.ConnectionError{Driver: driverName, Err: err}
	}
	return fmt.Errorf("query catalog for %s.%s: %w", i.schema, tableName, err)
}
