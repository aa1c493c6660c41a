// Package testhelper starts a throwaway Postgres for integration tests.
package testhelper

import (
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/rudderlabs/rudder-go-kit/testhelper/docker/resource/postgres"

	"github.com/alexanderjulianmartinez/schema-watch/internal/migrations"
)

// SetupPostgres starts a container and returns it once the users table
// migration has been applied. The container is removed on test cleanup.
func SetupPostgres(t *testing.T) *postgres.Resource {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	pgResource, err := postgres.Setup(pool, t)
	require.NoError(t, err)

	t.Log("db:", pgResource.DBDsn)

	require.NoError(t, migrations.Up(pgResource.DBDsn, logger.NOP))
	return pgResource
}
