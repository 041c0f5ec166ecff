package dialect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datquery/dbexplorer/internal/errs"
)

func allDialects(t *testing.T) []Queries {
	t.Helper()

	var qs []Queries
	for _, name := range []Name{Postgres, MySQL, SQLite, MSSQL, Snowflake} {
		q, err := For(name)
		require.NoError(t, err)
		qs = append(qs, q)
	}
	return qs
}

func TestFor_Unknown(t *testing.T) {
	_, err := For("oracle")
	require.Error(t, err)
	assert.True(t, errs.IsUnsupportedDialect(err))
}

func TestFromType(t *testing.T) {
	tests := []struct {
		dbType string
		want   Name
	}{
		{"postgresql", Postgres},
		{"mysql", MySQL},
		{"sqlite", SQLite},
		{"sqlserver", MSSQL},
		{"snowflake", Snowflake},
	}

	for _, tt := range tests {
		got, err := FromType(tt.dbType)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := FromType("mongodb")
	require.Error(t, err)
	assert.True(t, errs.IsUnsupportedDialect(err))
}

func TestValidIdent(t *testing.T) {
	valid := []string{"users", "Users", "_internal", "order_items", "t$1"}
	for _, s := range valid {
		assert.NoError(t, ValidIdent(s), s)
	}

	invalid := []string{
		"",
		"user name",
		"users;",
		"users'--",
		`users"`,
		"users;DROP TABLE users",
		"1users",
		"users.orders",
	}
	for _, s := range invalid {
		err := ValidIdent(s)
		require.Error(t, err, s)
		assert.True(t, errs.IsInvalidInput(err), s)
	}
}

// Every builder must refuse a hostile table name before producing any SQL.
func TestBuilders_RejectInjection(t *testing.T) {
	hostile := TableRef{Table: "users'; DROP TABLE users; --"}

	for _, q := range allDialects(t) {
		t.Run(string(q.Name()), func(t *testing.T) {
			_, err := q.TableExists(hostile)
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.Columns(hostile, 10, 0)
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.ColumnsCount(hostile)
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.PrimaryKeys(hostile)
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.Sample(hostile, 10)
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.ForeignKeys(FKFilter{SourceTable: hostile.Table}, 10, 0)
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.ForeignKeysCount(FKFilter{DestTable: hostile.Table})
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.ListTables("bad schema", 10, 0)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}
}

func TestBuilders_RejectBadWindow(t *testing.T) {
	ref := TableRef{Table: "users"}

	for _, q := range allDialects(t) {
		t.Run(string(q.Name()), func(t *testing.T) {
			_, err := q.Columns(ref, 0, 0)
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.Columns(ref, 10, -1)
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.ForeignKeys(FKFilter{SourceTable: "users"}, -5, 0)
			assert.True(t, errs.IsInvalidInput(err))

			_, err = q.Sample(ref, 0)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}
}

// The ordering contract: columns by ordinal position, foreign keys by
// constraint name, table lists by (schema, table). Pagination correctness
// depends on these being present in the SQL.
func TestBuilders_OrderingContract(t *testing.T) {
	ref := TableRef{Table: "users", Schema: "app"}

	for _, q := range allDialects(t) {
		t.Run(string(q.Name()), func(t *testing.T) {
			cols, err := q.Columns(ref, 10, 0)
			require.NoError(t, err)
			assert.Contains(t, strings.ToUpper(cols), "ORDER BY")

			fks, err := q.ForeignKeys(FKFilter{SourceTable: "users"}, 10, 0)
			require.NoError(t, err)
			assert.Contains(t, strings.ToUpper(fks), "ORDER BY")

			list, err := q.ListTables("", 10, 0)
			require.NoError(t, err)
			assert.Contains(t, strings.ToUpper(list), "ORDER BY")
		})
	}
}

func TestBuilders_WindowSyntax(t *testing.T) {
	ref := TableRef{Table: "users"}

	for _, q := range allDialects(t) {
		sql, err := q.Columns(ref, 7, 14)
		require.NoError(t, err)

		if q.Name() == MSSQL {
			assert.Contains(t, sql, "OFFSET 14 ROWS FETCH NEXT 7 ROWS ONLY")
		} else {
			assert.Contains(t, sql, "LIMIT 7 OFFSET 14")
		}
	}
}

// An empty schema is a wildcard, matched in SQL by an OR against the
// no-filter case (or the DATABASE() default scope on MySQL).
func TestBuilders_SchemaWildcard(t *testing.T) {
	for _, q := range allDialects(t) {
		sql, err := q.TableExists(TableRef{Table: "users"})
		require.NoError(t, err)

		switch q.Name() {
		case MySQL:
			assert.Contains(t, sql, "DATABASE()")
		default:
			assert.Contains(t, sql, "('' = ''")
		}
	}
}

func TestBuilders_SchemaFilterInterpolated(t *testing.T) {
	for _, q := range allDialects(t) {
		sql, err := q.ColumnsCount(TableRef{Table: "users", Schema: "app"})
		require.NoError(t, err)
		assert.Contains(t, sql, "'app'")
		assert.Contains(t, sql, "'users'")
	}
}

func TestForeignKeys_ConstraintWindowing(t *testing.T) {
	// The window must apply to distinct constraints, not raw rows, so the
	// fetch carries a windowed subquery and the count is over DISTINCT.
	for _, q := range allDialects(t) {
		fetch, err := q.ForeignKeys(FKFilter{DestTable: "users"}, 3, 6)
		require.NoError(t, err)
		assert.Contains(t, strings.ToUpper(fetch), "DISTINCT")

		count, err := q.ForeignKeysCount(FKFilter{DestTable: "users"})
		require.NoError(t, err)
		assert.Contains(t, strings.ToUpper(count), "COUNT(DISTINCT")
	}
}

// Composite foreign keys must pair constrained and referred columns at
// the same key position: a two-column key (a,b) -> (x,y) is exactly the
// rows (a,x),(b,y), never the cross product. The information_schema
// dialects get this from the double key_column_usage join on
// ordinal_position; a name-only join to constraint_column_usage would
// cross-product the sides.
func TestForeignKeys_PositionalPairing(t *testing.T) {
	for _, q := range allDialects(t) {
		if q.Name() == SQLite || q.Name() == MySQL {
			// pragma_foreign_key_list and key_column_usage carry the
			// pairing in each row already.
			continue
		}
		t.Run(string(q.Name()), func(t *testing.T) {
			sql, err := q.ForeignKeys(FKFilter{SourceTable: "orders"}, 10, 0)
			require.NoError(t, err)
			assert.Contains(t, sql, "dst.ordinal_position  = src.ordinal_position")
			assert.Contains(t, sql, "rc.unique_constraint_name")
			assert.NotContains(t, sql, "constraint_column_usage")
		})
	}
}

// The foreign-key filter must scope a filtered side to the current
// database when no schema is given, matching the DATABASE() default the
// single-table queries use — otherwise a same-named table in another
// database leaks its keys into the paginated sequence.
func TestMySQLForeignKeysScopedToCurrentDatabase(t *testing.T) {
	q, err := For(MySQL)
	require.NoError(t, err)

	outgoing, err := q.ForeignKeys(FKFilter{SourceTable: "users"}, 10, 0)
	require.NoError(t, err)
	assert.Contains(t, outgoing, "kcu.table_schema = CASE WHEN '' = '' THEN DATABASE()")

	incoming, err := q.ForeignKeysCount(FKFilter{DestTable: "users"})
	require.NoError(t, err)
	assert.Contains(t, incoming, "kcu.referenced_table_schema = CASE WHEN '' = '' THEN DATABASE()")

	// An explicit schema wins over the default scope.
	scoped, err := q.ForeignKeysCount(FKFilter{SourceTable: "users", SourceSchema: "app"})
	require.NoError(t, err)
	assert.Contains(t, scoped, "CASE WHEN 'app' = '' THEN DATABASE() ELSE 'app' END")
}

func TestSample_DialectLimitSyntax(t *testing.T) {
	tests := []struct {
		name Name
		want string
	}{
		{Postgres, `SELECT * FROM "app"."users" LIMIT 10`},
		{MySQL, "SELECT * FROM `app`.`users` LIMIT 10"},
		{SQLite, `SELECT * FROM "users" LIMIT 10`},
		{MSSQL, "SELECT TOP 10 * FROM [app].[users]"},
		{Snowflake, `SELECT * FROM "app"."users" LIMIT 10`},
	}

	for _, tt := range tests {
		q, err := For(tt.name)
		require.NoError(t, err)

		sql, err := q.Sample(TableRef{Schema: "app", Table: "users"}, 10)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sql, string(tt.name))
	}
}

func TestTableRef_String(t *testing.T) {
	assert.Equal(t, "users", TableRef{Table: "users"}.String())
	assert.Equal(t, "app.users", TableRef{Schema: "app", Table: "users"}.String())
}
