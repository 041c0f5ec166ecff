// Package postgres provides a PostgreSQL implementation of database.Conn
// backed by pgxpool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datquery/dbexplorer/internal/database"
	"github.com/datquery/dbexplorer/internal/errs"
)

const (
	defaultMaxConns = 10
	defaultMinConns = 2
)

// Conn is a PostgreSQL connection pool. Safe for concurrent use by
// multiple goroutines.
type Conn struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL with the given DSN and returns a Conn.
// It pings before returning so configuration mistakes surface immediately.
func Open(ctx context.Context, dsn string) (*Conn, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "", "invalid DSN", err)
	}

	poolCfg.MaxConns = defaultMaxConns
	poolCfg.MinConns = defaultMinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "", "failed to create connection pool", err)
	}

	c := &Conn{pool: pool}

	if err := c.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return c, nil
}

// --- database.Conn implementation ---

// Ping verifies the database is reachable.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool.
func (c *Conn) Close() error {
	c.pool.Close()
	return nil
}

// Query executes sql and materialises the full result set.
func (c *Conn) Query(ctx context.Context, sql string) (*database.Result, error) {
	rows, err := c.pool.Query(ctx, sql)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	columns := make([]string, len(descs))
	for i, d := range descs {
		columns[i] = d.Name
	}

	result := &database.Result{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, mapError(err, "failed to read row")
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

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, "", msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, "", msg, err)
	}

	// Postgres server-side error (SQLSTATE codes); class 08 is connection.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := errs.ErrKindQueryFailed
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			kind = errs.ErrKindConnectionFailed
		}
		return errs.Wrap(kind, "", fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth).
	return errs.Wrap(errs.ErrKindConnectionFailed, "", msg, err)
}
