package source

import (
	"context"
	"sort"
)

// ActualSchema maps a column name to the data type reported by the catalog.
type ActualSchema map[string]string

// Columns returns the column names in lexical order.
func (s ActualSchema) Columns() []string {
	cols := make([]string, 0, len(s))
	for name := range s {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// Inspector reads a table's column catalog from a live database. An
// Inspector owns its connection until Close is called.
type Inspector interface {
	Name() string
	// FetchSchema returns an empty, non-nil schema when the table does not exist.
	FetchSchema(ctx context.Context, table string) (ActualSchema, error)
	Close() error
}
