// Package dialect is the per-backend catalog of raw introspection SQL.
//
// Each supported backend implements the Queries interface, so a missing
// query for a dialect is a compile-time gap rather than a runtime lookup
// miss. Callers obtain an implementation via For and never branch on the
// dialect name themselves.
//
// Every builder returns a complete SQL string with table and schema names
// interpolated as literal text. These are structural identifiers, not data
// values, so they cannot go through parameter binding — instead every
// builder validates them against a strict allowlist before substitution.
// An empty schema name means "any schema" and is expressed in the SQL as
// an OR against the no-filter case.
//
// Result-shape contracts (uniform across dialects):
//
//	TableExists      → any row means the table exists
//	Columns          → name, data_type, nullable (1/0), default_value; ordered by ordinal position
//	ColumnsCount     → single count
//	ForeignKeys      → constraint_name, source_table, source_column, dest_table, dest_column;
//	                   ordered by constraint name, then key position
//	ForeignKeysCount → count of distinct constraints
//	PrimaryKeys      → column_name; ordered by key position
//	ListTables       → schema_name, table_name; ordered by (schema, table)
//	ListTablesCount  → single count
//	Sample           → SELECT * limited to n rows
//
// Foreign-key windows apply to whole constraints, not raw rows: a
// multi-column key is one item of the paginated sequence, so the fetch
// restricts to a windowed subquery over distinct constraint names.
package dialect

import (
	"regexp"

	"github.com/datquery/dbexplorer/internal/errs"
)

// Name identifies a SQL dialect in the catalog.
type Name string

const (
	Postgres  Name = "postgres"
	MySQL     Name = "mysql"
	SQLite    Name = "sqlite"
	MSSQL     Name = "mssql"
	Snowflake Name = "snowflake"
)

// TableRef names a table, optionally schema-qualified.
// An empty Schema matches any schema.
type TableRef struct {
	Schema string
	Table  string
}

// String returns the schema-qualified display form of the reference.
func (t TableRef) String() string {
	if t.Schema == "" {
		return t.Table
	}
	return t.Schema + "." + t.Table
}

// FKFilter selects foreign keys by their source (constrained) and
// destination (referred) side. Empty fields are wildcards. Outgoing keys of
// a table use SourceTable; incoming keys use DestTable.
type FKFilter struct {
	SourceSchema string
	SourceTable  string
	DestSchema   string
	DestTable    string
}

// Queries builds the raw introspection SQL for one dialect.
type Queries interface {
	Name() Name

	TableExists(t TableRef) (string, error)
	Columns(t TableRef, limit, offset int) (string, error)
	ColumnsCount(t TableRef) (string, error)
	ForeignKeys(f FKFilter, limit, offset int) (string, error)
	ForeignKeysCount(f FKFilter) (string, error)
	PrimaryKeys(t TableRef) (string, error)
	ListTables(schema string, limit, offset int) (string, error)
	ListTablesCount(schema string) (string, error)
	Sample(t TableRef, limit int) (string, error)
}

// For returns the query catalog for the named dialect.
func For(name Name) (Queries, error) {
	switch name {
	case Postgres:
		return postgres{}, nil
	case MySQL:
		return mysql{}, nil
	case SQLite:
		return sqlite{}, nil
	case MSSQL:
		return mssql{}, nil
	case Snowflake:
		return snowflake{}, nil
	default:
		return nil, errs.Newf(errs.ErrKindUnsupportedDialect, "unsupported dialect %q", name)
	}
}

// FromType maps a configured database type onto its dialect name.
func FromType(dbType string) (Name, error) {
	switch dbType {
	case "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite":
		return SQLite, nil
	case "sqlserver":
		return MSSQL, nil
	case "snowflake":
		return Snowflake, nil
	default:
		return "", errs.Newf(errs.ErrKindUnsupportedDialect, "unsupported database type %q", dbType)
	}
}

// identRe is the allowlist for interpolated identifiers. Anything with a
// quote, terminator, whitespace, or other punctuation is rejected outright.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidIdent checks that s is safe to interpolate into SQL text as a
// table or schema name.
func ValidIdent(s string) error {
	if !identRe.MatchString(s) {
		return errs.Newf(errs.ErrKindInvalidInput, "invalid identifier %q", s)
	}
	return nil
}

// checkTable validates a table reference: the table name is required, the
// schema may be empty (wildcard).
func checkTable(t TableRef) error {
	if err := ValidIdent(t.Table); err != nil {
		return err
	}
	return checkOptional(t.Schema)
}

// checkFilter validates a foreign-key filter. All fields are optional but
// must be safe when present.
func checkFilter(f FKFilter) error {
	for _, s := range []string{f.SourceSchema, f.SourceTable, f.DestSchema, f.DestTable} {
		if err := checkOptional(s); err != nil {
			return err
		}
	}
	return nil
}

// checkOptional validates an identifier that may legitimately be empty.
func checkOptional(s string) error {
	if s == "" {
		return nil
	}
	return ValidIdent(s)
}

// checkWindow rejects non-positive limits and negative offsets before they
// reach SQL text.
func checkWindow(limit, offset int) error {
	if limit < 1 {
		return errs.Newf(errs.ErrKindInvalidInput, "limit must be at least 1, got %d", limit)
	}
	if offset < 0 {
		return errs.Newf(errs.ErrKindInvalidInput, "offset must not be negative, got %d", offset)
	}
	return nil
}

// checkSampleLimit allows limit ≥ 1 for row sampling.
func checkSampleLimit(limit int) error {
	if limit < 1 {
		return errs.Newf(errs.ErrKindInvalidInput, "sample limit must be at least 1, got %d", limit)
	}
	return nil
}
