// Package database defines the driver-neutral connection contract and DSN
// assembly shared by every backend.
//
// Driver packages (postgres, sqldrv) implement Conn; the gateway package
// opens and caches one Conn per configured database. The explore
// operations never import a driver package directly.
package database

import "context"

// Result is the uniform shape of a query result: column names plus rows of
// driver-neutral values. Drivers normalise []byte payloads to string so
// callers never see raw byte slices.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Conn is the minimal contract a database driver must satisfy. Queries
// carry no bind arguments: the dialect catalog interpolates validated
// identifiers only, and data values never cross this boundary.
type Conn interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close() error

	// Query executes a SQL statement and materialises the full result.
	Query(ctx context.Context, sql string) (*Result, error)
}
