package expect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderjulianmartinez/schema-watch/internal/config"
)

func TestNew_Validation(t *testing.T) {
	_, err := New("", FieldExpectation{Name: "a", Type: "integer"})
	require.Error(t, err)

	_, err = New("t1")
	require.ErrorContains(t, err, "has no fields")

	_, err = New("t1", FieldExpectation{Name: "", Type: "integer"})
	require.ErrorContains(t, err, "field name is required")

	_, err = New("t1", FieldExpectation{Name: "a"})
	require.ErrorContains(t, err, "field a has no type")

	_, err = New("t1", FieldExpectation{Name: "a", Type: "integer"}, FieldExpectation{Name: "a", Type: "text"})
	require.ErrorContains(t, err, "declared twice")
}

func TestRegistry_FieldsIsACopy(t *testing.T) {
	r := MustNew("t1", FieldExpectation{Name: "a", Type: "integer"}, FieldExpectation{Name: "b", Type: "text"})

	fields := r.Fields()
	fields[0].Type = "boolean"

	require.Equal(t, "integer", r.Fields()[0].Type)
	require.Equal(t, []string{"a", "b"}, r.Names())
	require.Equal(t, 2, r.Len())
	require.Equal(t, "t1", r.Table())
}

func TestRegistry_Lookup(t *testing.T) {
	f, ok := UsersBaseline.Lookup("birthdate")
	require.True(t, ok)
	require.Equal(t, "date", f.Type)

	_, ok = UsersBaseline.Lookup("nickname")
	require.False(t, ok)
}

func TestUsersBaseline(t *testing.T) {
	require.Equal(t, UsersTable, UsersBaseline.Table())
	require.Equal(t, []string{
		"id", "email", "username", "birthdate", "city", "password", "enabled", "created_at", "updated_at",
	}, UsersBaseline.Names())
}

func TestFromConfig(t *testing.T) {
	t.Run("users without fields uses baseline", func(t *testing.T) {
		r, err := FromConfig(config.TableConfig{Name: UsersTable})
		require.NoError(t, err)
		require.Same(t, UsersBaseline, r)
	})

	t.Run("unknown table without fields", func(t *testing.T) {
		_, err := FromConfig(config.TableConfig{Name: "orders"})
		require.ErrorContains(t, err, "no built-in baseline")
	})

	t.Run("declared fields keep order", func(t *testing.T) {
		r, err := FromConfig(config.TableConfig{
			Name: "orders",
			Fields: []config.FieldConfig{
				{Name: "total", Type: "numeric"},
				{Name: "id", Type: "bigint"},
			},
		})
		require.NoError(t, err)
		require.Equal(t, []FieldExpectation{
			{Name: "total", Type: "numeric"},
			{Name: "id", Type: "bigint"},
		}, r.Fields())
	})
}
