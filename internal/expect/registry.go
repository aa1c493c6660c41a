// Package expect holds the declared shape of a table: an ordered list of
// column names and the data_type strings the database catalog should report
// for them.
package expect

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/alexanderjulianmartinez/schema-watch/internal/config"
)

// FieldExpectation declares one column and its catalog-reported data type.
type FieldExpectation struct {
	Name string
	Type string
}

// Registry is an ordered, read-only set of field expectations for one table.
type Registry struct {
	table  string
	fields []FieldExpectation
}

func New(table string, fields ...FieldExpectation) (*Registry, error) {
	if table == "" {
		return nil, errors.New("registry table name is required")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("registry for %s has no fields", table)
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("registry for %s: field name is required", table)
		}
		if f.Type == "" {
			return nil, fmt.Errorf("registry for %s: field %s has no type", table, f.Name)
		}
		if _, ok := seen[f.Name]; ok {
			return nil, fmt.Errorf("registry for %s: field %s declared twice", table, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return &Registry{
		table:  table,
		fields: append([]FieldExpectation(nil), fields...),
	}, nil
}

func MustNew(table string, fields ...FieldExpectation) *Registry {
	r, err := New(table, fields...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Table() string { return r.table }

// Fields returns a copy of the expectations in declaration order.
func (r *Registry) Fields() []FieldExpectation {
	return append([]FieldExpectation(nil), r.fields...)
}

func (r *Registry) Names() []string {
	return lo.Map(r.fields, func(f FieldExpectation, _ int) string { return f.Name })
}

func (r *Registry) Len() int { return len(r.fields) }

// Lookup returns the expectation for the named column.
func (r *Registry) Lookup(name string) (FieldExpectation, bool) {
	return lo.Find(r.fields, func(f FieldExpectation) bool { return f.Name == name })
}

// FromConfig builds a registry from a table config. A users table declared
// without fields falls back to UsersBaseline.
func FromConfig(table config.TableConfig) (*Registry, error) {
	if len(table.Fields) == 0 {
		if table.Name == UsersTable {
			return UsersBaseline, nil
		}
		return nil, fmt.Errorf("table %s declares no fields and has no built-in baseline", table.Name)
	}
	fields := lo.Map(table.Fields, func(f config.FieldConfig, _ int) FieldExpectation {
		return FieldExpectation{Name: f.Name, Type: f.Type}
	})
	return New(table.Name, fields...)
}
