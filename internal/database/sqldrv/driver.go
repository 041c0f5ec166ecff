// Package sqldrv provides a database/sql-backed implementation of
// database.Conn shared by every backend that ships a database/sql driver:
// MySQL, SQLite, SQL Server, and Snowflake.
package sqldrv

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	_ "github.com/mattn/go-sqlite3"            // register "sqlite3"
	_ "github.com/microsoft/go-mssqldb"        // register "sqlserver"
	_ "github.com/snowflakedb/gosnowflake"     // register "snowflake"

	"github.com/datquery/dbexplorer/internal/database"
	"github.com/datquery/dbexplorer/internal/errs"
)

const (
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 2
)

// Conn wraps a *sql.DB. Safe for concurrent use by multiple goroutines.
type Conn struct {
	db *sql.DB
}

// Open opens a pool on the named database/sql driver and pings it before
// returning, so configuration mistakes surface immediately.
func Open(ctx context.Context, driverName, dsn string) (*Conn, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "", "invalid DSN", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)

	c := &Conn{db: db}

	if err := c.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return c, nil
}

// --- database.Conn implementation ---

// Ping verifies the database is reachable.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close closes the underlying pool.
func (c *Conn) Close() error {
	return c.db.Close()
}

// Query executes sql and materialises the full result set.
func (c *Conn) Query(ctx context.Context, query string) (*database.Result, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, mapError(err, "failed to read column names")
	}

	result := &database.Result{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, mapError(err, "failed to scan row")
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error during row iteration")
	}
	return result, nil
}

// mapError translates driver native errors into *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, "", msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, "", msg, err)
	}

	// MySQL server-side errors are execution failures; everything the
	// server never saw is a connectivity problem.
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return errs.Wrap(errs.ErrKindQueryFailed, "", msg, err)
	}

	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return errs.Wrap(errs.ErrKindConnectionFailed, "", msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, "", msg, err)
}
