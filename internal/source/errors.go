package source

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
)

// ConnectionError reports that the database could not be reached or refused
// the credentials. It is fatal for a run.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsNetworkFailure reports whether err came from the transport rather than
// from the database itself.
func IsNetworkFailure(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
