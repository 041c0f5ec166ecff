package explore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datquery/dbexplorer/internal/errs"
)

func TestExecuteQueryRejectsNonSelect(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"insert", "INSERT INTO users VALUES (1)"},
		{"update", "update users set name = 'x'"},
		{"delete", "DELETE FROM users"},
		{"drop", "DROP TABLE users"},
		{"transaction", "BEGIN; DROP TABLE users; COMMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			_, err := ExecuteQuery(context.Background(), gw, QueryRequest{Database: "main", SQL: tt.sql})
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
			assert.Empty(t, gw.queries)
		})
	}
}

func TestExecuteQueryAcceptsSelectAndWith(t *testing.T) {
	for _, sql := range []string{
		"SELECT 1",
		"  select id from users  ",
		"WITH t AS (SELECT 1 AS n) SELECT n FROM t",
	} {
		gw := &fakeGateway{results: resultQueue(result([]string{"n"}, []any{int64(1)}))}
		resp, err := ExecuteQuery(context.Background(), gw, QueryRequest{Database: "main", SQL: sql})
		require.NoError(t, err, sql)
		assert.Equal(t, 1, resp.RowCount)
		assert.False(t, resp.Truncated)
	}
}

func TestExecuteQueryTruncatesAtRowLimit(t *testing.T) {
	gw := &fakeGateway{
		rowLimit: 2,
		results: resultQueue(
			result([]string{"n"}, []any{int64(1)}, []any{int64(2)}, []any{int64(3)}),
		),
	}

	resp, err := ExecuteQuery(context.Background(), gw, QueryRequest{Database: "main", SQL: "SELECT n FROM t"})
	require.NoError(t, err)

	assert.True(t, resp.Truncated)
	assert.Equal(t, 2, resp.RowCount)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, map[string]any{"n": int64(1)}, resp.Rows[0])
}

func TestExecuteQueryUnknownDatabase(t *testing.T) {
	gw := &fakeGateway{nameErr: errUnknownDB}
	_, err := ExecuteQuery(context.Background(), gw, QueryRequest{Database: "nope", SQL: "SELECT 1"})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Empty(t, gw.queries)
}
