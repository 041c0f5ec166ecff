// Package explore implements the database exploration operations:
// describing tables, listing tables, sampling rows, running read-only
// queries, and connection checks.
//
// Every operation is a self-contained sequential pipeline over the
// Gateway: validation first, then existence/count queries, then the
// paginated fetches — later queries depend on counts computed earlier, so
// there is nothing to parallelise inside one call. A failing sub-query
// aborts the whole operation; no partial response is ever returned.
package explore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/datquery/dbexplorer/internal/database"
	"github.com/datquery/dbexplorer/internal/dialect"
	"github.com/datquery/dbexplorer/internal/errs"
)

// Gateway is the backend execution boundary: it resolves dialects,
// executes raw SQL against a named database, and exposes the configured
// row-limit ceiling. *gateway.Manager implements it; tests substitute
// fakes.
type Gateway interface {
	// ResolveDialect returns the query-catalog dialect for a database label.
	ResolveDialect(dbName string) (dialect.Name, error)

	// Query executes sql against the named database.
	Query(ctx context.Context, dbName, sql string) (*database.Result, error)

	// QueryValue executes sql and returns the first column of the first row.
	QueryValue(ctx context.Context, dbName, sql string) (any, error)

	// RowLimit returns the ceiling on rows per query; explore operations
	// clamp their limit parameter to it.
	RowLimit(dbName string) int
}

// ColumnInfo describes one column of a table. Type is the dialect-native
// type string, not normalised across backends. PrimaryKey is derived by
// intersecting the column name with the separately fetched primary-key
// set.
type ColumnInfo struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Nullable   bool    `json:"nullable"`
	Default    *string `json:"default,omitempty"`
	PrimaryKey bool    `json:"primary_key"`
}

// ForeignKey is an outgoing foreign key: the constrained columns of this
// table and the referred columns of the target table, positionally
// aligned.
type ForeignKey struct {
	ConstrainedColumns []string `json:"constrained_columns"`
	ReferredTable      string   `json:"referred_table"`
	ReferredColumns    []string `json:"referred_columns"`
}

// IncomingForeignKey is a foreign key in another table that refers to this
// table. FromColumns and ToColumns are positionally aligned.
type IncomingForeignKey struct {
	FromTable   string   `json:"from_table"`
	FromColumns []string `json:"from_columns"`
	ToColumns   []string `json:"to_columns"`
}

// TableDescription is the paginated structure of one table. Columns,
// outgoing foreign keys, and incoming foreign keys form one logical
// sequence; TotalCount and TotalPages cover all three groups together.
type TableDescription struct {
	Table               string               `json:"table"`
	Columns             []ColumnInfo         `json:"columns"`
	ForeignKeys         []ForeignKey         `json:"foreign_keys"`
	IncomingForeignKeys []IncomingForeignKey `json:"incoming_foreign_keys"`
	TotalCount          int                  `json:"total_count"`
	CurrentPage         int                  `json:"current_page"`
	TotalPages          int                  `json:"total_pages"`
}

// SchemaInfo groups the tables of one schema in a tables listing.
type SchemaInfo struct {
	Schema     string   `json:"schema"`
	Tables     []string `json:"tables"`
	TableCount int      `json:"table_count"`
}

// TablesResponse is the paginated table listing of one database.
// TotalCount counts tables, not schemas: a schema's tables may be split
// across pages.
type TablesResponse struct {
	Database    string       `json:"database"`
	Schemas     []SchemaInfo `json:"schemas"`
	TotalCount  int          `json:"total_count"`
	CurrentPage int          `json:"current_page"`
	TotalPages  int          `json:"total_pages"`
}

// validatePagination rejects bad limit/page values before any I/O.
func validatePagination(limit, page int) error {
	if limit < 1 {
		return errs.New(errs.ErrKindInvalidInput, "limit must be greater than 0")
	}
	if page < 1 {
		return errs.New(errs.ErrKindInvalidInput, "page number must be greater than 0")
	}
	return nil
}

// clampLimit applies the gateway's rows-per-query ceiling.
func clampLimit(gw Gateway, dbName string, limit int) int {
	if max := gw.RowLimit(dbName); max > 0 && limit > max {
		return max
	}
	return limit
}

// queryCount runs a count query and coerces the scalar result.
func queryCount(ctx context.Context, gw Gateway, dbName, sql, step string) (int, error) {
	v, err := gw.QueryValue(ctx, dbName, sql)
	if err != nil {
		return 0, errs.Wrap(errs.ErrKindQueryFailed, step, "count query failed", err)
	}
	n, err := asInt(v)
	if err != nil {
		return 0, errs.Wrap(errs.ErrKindQueryFailed, step, "count query returned a non-numeric value", err)
	}
	return n, nil
}

// --- driver value coercion ---
//
// Drivers return whatever native type the backend hands them; these
// helpers normalise the handful of shapes that matter for introspection
// rows.

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}

func asNullableString(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	return &s
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int32:
		return b != 0
	case int:
		return b != 0
	case float64:
		return b != 0
	case string:
		switch strings.ToLower(b) {
		case "1", "true", "yes", "y":
			return true
		}
		return false
	case []byte:
		return asBool(string(b))
	default:
		return false
	}
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	case []byte:
		return strconv.Atoi(strings.TrimSpace(string(n)))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}
