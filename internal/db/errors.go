package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrUnsupportedDriver = errors.New("db: unsupported driver")
	ErrClosed            = errors.New("db: store closed")
)

// Op names for error context.
const (
	OpOpen  = "OPEN"
	OpPing  = "PING"
	OpQuery = "QUERY"
	OpScan  = "SCAN"
	OpClose = "CLOSE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
