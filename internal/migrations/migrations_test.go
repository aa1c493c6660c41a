package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(FS, "sql")
	require.NoError(t, err)

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	require.Positive(t, up)
	require.Equal(t, up, down, "every up migration needs a down migration")
}

func TestUsersMigrationDeclaresConstraints(t *testing.T) {
	body, err := fs.ReadFile(FS, "sql/000001_create_users.up.sql")
	require.NoError(t, err)

	ddl := string(body)
	require.NotContains(t, ddl, "DROP TABLE", "the up migration must not discard existing rows")
	for _, want := range []string{
		"email      VARCHAR(255) NOT NULL CHECK",
		"birthdate  DATE",
		"city       VARCHAR(100) NOT NULL",
		"password   VARCHAR(255) NOT NULL",
		"enabled    BOOLEAN NOT NULL DEFAULT FALSE",
		"updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP",
	} {
		require.Contains(t, ddl, want)
	}
}
