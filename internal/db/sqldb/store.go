package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	_ "modernc.org/sqlite"              // SQLite driver

	"github.com/kailas-cloud/archivist/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a metadata store.
type Config struct {
	Driver   string
	DSN      string
	MaxConns int
}

// Store implements db.Store over database/sql.
type Store struct {
	driver string
	sqlDB  *sql.DB
	pool   *pgxpool.Pool // postgres only
	closed atomic.Bool
}

// Open creates a store for the configured driver. No connection is made
// until the first query or Ping.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, &db.Error{Op: db.OpOpen, Err: errors.New("dsn is required")}
	}

	switch cfg.Driver {
	case db.DriverPostgres:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, &db.Error{Op: db.OpOpen, Err: err}
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = int32(cfg.MaxConns) //nolint:gosec // validated by config
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "archivist"
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return nil, &db.Error{Op: db.OpOpen, Err: err}
		}
		return &Store{driver: cfg.Driver, sqlDB: stdlib.OpenDBFromPool(pool), pool: pool}, nil

	case db.DriverSQLServer, db.DriverSQLite:
		sqlDB, err := sql.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, &db.Error{Op: db.OpOpen, Err: err}
		}
		if cfg.MaxConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxConns)
		}
		if cfg.Driver == db.DriverSQLite && strings.Contains(cfg.DSN, ":memory:") {
			// Each connection would otherwise get its own empty database.
			sqlDB.SetMaxOpenConns(1)
		}
		return &Store{driver: cfg.Driver, sqlDB: sqlDB}, nil

	default:
		return nil, &db.Error{Op: db.OpOpen, Err: fmt.Errorf("%w: %q", db.ErrUnsupportedDriver, cfg.Driver)}
	}
}

// Driver returns the configured driver name.
func (s *Store) Driver() string { return s.driver }

// DB exposes the underlying handle. Used by tests to seed fixtures.
func (s *Store) DB() *sql.DB { return s.sqlDB }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// QueryContext rebinds '?' placeholders for the driver and runs the query.
func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.closed.Load() {
		return nil, &db.Error{Op: db.OpQuery, Err: db.ErrClosed}
	}
	rows, err := s.sqlDB.QueryContext(ctx, Rebind(s.driver, query), args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return rows, nil
}

// Close releases the handle and, for postgres, the pool.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := s.sqlDB.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	if err != nil {
		return &db.Error{Op: db.OpClose, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Rebind rewrites '?' placeholders into the driver's positional syntax:
// $N for postgres, @pN for sqlserver. Placeholders inside single-quoted
// literals are left alone.
func Rebind(driver, query string) string {
	var prefix string
	switch driver {
	case db.DriverPostgres:
		prefix = "$"
	case db.DriverSQLServer:
		prefix = "@p"
	default:
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteString(prefix)
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
