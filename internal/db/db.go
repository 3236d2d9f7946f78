package db

import (
	"context"
	"database/sql"
	"time"
)

// Store is the metadata database facade.
type Store interface {
	Pinger
	Querier
	Close() error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Querier runs read-only queries. Queries use '?' placeholders; the store
// rewrites them for the configured driver.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Supported drivers.
const (
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
	DriverSQLite    = "sqlite"
)
