package explore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datquery/dbexplorer/internal/errs"
)

func TestListTablesRejectsBadPagination(t *testing.T) {
	gw := &fakeGateway{}

	_, err := ListTables(context.Background(), gw, ListRequest{Database: "main", Limit: 0, Page: 1})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "limit must be greater than 0")

	_, err = ListTables(context.Background(), gw, ListRequest{Database: "main", Limit: 10, Page: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page number must be greater than 0")

	assert.Empty(t, gw.queries)
}

func TestListTablesUnknownDatabase(t *testing.T) {
	gw := &fakeGateway{nameErr: errUnknownDB}
	_, err := ListTables(context.Background(), gw, ListRequest{Database: "nope", Limit: 10, Page: 1})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Empty(t, gw.queries)
}

func TestListTablesGroupsBySchema(t *testing.T) {
	gw := &fakeGateway{
		values: []any{int64(4)},
		results: resultQueue(
			result([]string{"schema_name", "table_name"},
				[]any{"public", "orders"},
				[]any{"public", "users"},
				[]any{"sales", "invoices"},
				[]any{"sales", "payments"},
			),
		),
	}

	resp, err := ListTables(context.Background(), gw, ListRequest{Database: "main", Limit: 10, Page: 1})
	require.NoError(t, err)

	assert.Equal(t, "main", resp.Database)
	assert.Equal(t, 4, resp.TotalCount)
	assert.Equal(t, 1, resp.TotalPages)
	require.Len(t, resp.Schemas, 2)

	assert.Equal(t, SchemaInfo{Schema: "public", Tables: []string{"orders", "users"}, TableCount: 2}, resp.Schemas[0])
	assert.Equal(t, SchemaInfo{Schema: "sales", Tables: []string{"invoices", "payments"}, TableCount: 2}, resp.Schemas[1])
}

// A schema whose tables straddle a page boundary appears on both pages;
// TotalCount counts tables, not schemas.
func TestListTablesSchemaSplitAcrossPages(t *testing.T) {
	gw := &fakeGateway{
		values: []any{int64(5)},
		results: resultQueue(
			result([]string{"schema_name", "table_name"},
				[]any{"public", "c"},
				[]any{"sales", "a"},
			),
		),
	}

	resp, err := ListTables(context.Background(), gw, ListRequest{Database: "main", Limit: 2, Page: 2})
	require.NoError(t, err)

	assert.Equal(t, 5, resp.TotalCount)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.CurrentPage)
	require.Len(t, resp.Schemas, 2)
	assert.Equal(t, []string{"c"}, resp.Schemas[0].Tables)
	assert.Equal(t, []string{"a"}, resp.Schemas[1].Tables)
}

func TestListTablesEmptyDatabase(t *testing.T) {
	gw := &fakeGateway{values: []any{int64(0)}}

	resp, err := ListTables(context.Background(), gw, ListRequest{Database: "main", Limit: 50, Page: 1})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.TotalCount)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Empty(t, resp.Schemas)
	assert.Len(t, gw.queries, 1, "an empty database needs only the count query")
}

func TestListTablesPageBeyondRange(t *testing.T) {
	gw := &fakeGateway{values: []any{int64(3)}}

	resp, err := ListTables(context.Background(), gw, ListRequest{Database: "main", Limit: 2, Page: 9})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalCount)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Empty(t, resp.Schemas)
	assert.Len(t, gw.queries, 1)
}

func TestListTablesCountFailureCarriesStep(t *testing.T) {
	gw := &fakeGateway{}
	_, err := ListTables(context.Background(), gw, ListRequest{Database: "main", Limit: 10, Page: 1})
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
	assert.Equal(t, "list", errs.StepOf(err))
}
