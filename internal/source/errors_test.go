package source

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectionError(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	err := fmt.Errorf("fetch schema: %w", &ConnectionError{Driver: "postgres", Err: cause})

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	require.Equal(t, "postgres", connErr.Driver)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "postgres connection failed")
}

func TestIsNetworkFailure(t *testing.T) {
	require.True(t, IsNetworkFailure(driver.ErrBadConn))
	require.True(t, IsNetworkFailure(fmt.Errorf("query: %w", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")})))
	require.False(t, IsNetworkFailure(errors.New("relation does not exist")))
	require.False(t, IsNetworkFailure(nil))
}

func TestActualSchemaColumns(t *testing.T) {
	s := ActualSchema{"email": "character varying", "city": "character varying", "id": "integer"}
	require.Equal(t, []string{"city", "email", "id"}, s.Columns())
	require.Empty(t, ActualSchema{}.Columns())
}
