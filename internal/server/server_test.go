package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datquery/dbexplorer/internal/config"
	"github.com/datquery/dbexplorer/internal/database"
	"github.com/datquery/dbexplorer/internal/dialect"
	"github.com/datquery/dbexplorer/internal/errs"
)

// scriptedBackend pops Query results and QueryValue values in call order
// and answers Ping from a fixed error.
type scriptedBackend struct {
	results []*database.Result
	values  []any
	pingErr error
	nameErr error
}

func (b *scriptedBackend) ResolveDialect(dbName string) (dialect.Name, error) {
	if b.nameErr != nil {
		return "", b.nameErr
	}
	return dialect.Postgres, nil
}

func (b *scriptedBackend) Query(ctx context.Context, dbName, sql string) (*database.Result, error) {
	if len(b.results) == 0 {
		return nil, errors.New("scriptedBackend: unexpected Query call")
	}
	res := b.results[0]
	b.results = b.results[1:]
	return res, nil
}

func (b *scriptedBackend) QueryValue(ctx context.Context, dbName, sql string) (any, error) {
	if len(b.values) == 0 {
		return nil, errors.New("scriptedBackend: unexpected QueryValue call")
	}
	v := b.values[0]
	b.values = b.values[1:]
	return v, nil
}

func (b *scriptedBackend) RowLimit(string) int { return 1000 }

func (b *scriptedBackend) Ping(ctx context.Context, dbName string) error { return b.pingErr }

func testConfig() *config.Config {
	return &config.Config{
		Databases: map[string]config.Database{
			"main": {Type: config.TypePostgres, Host: "h", Database: "d", Username: "u"},
		},
		Settings: config.Settings{MaxRowsPerQuery: 1000, SampleSize: 10, MaxQueryTimeout: 30},
	}
}

func doRequest(t *testing.T, backend Backend, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	srv := New(testConfig(), backend, nil, nil)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, &scriptedBackend{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListDatabasesRoute(t *testing.T) {
	rec := doRequest(t, &scriptedBackend{}, http.MethodGet, "/v1/databases", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Databases []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"databases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Databases, 1)
	assert.Equal(t, "main", body.Databases[0].Name)
	assert.Equal(t, "postgresql", body.Databases[0].Type)
}

func TestPingRoute(t *testing.T) {
	rec := doRequest(t, &scriptedBackend{}, http.MethodGet, "/v1/databases/main/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"connected":true`)

	failing := &scriptedBackend{pingErr: errs.New(errs.ErrKindConnectionFailed, "connection refused")}
	rec = doRequest(t, failing, http.MethodGet, "/v1/databases/main/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"connected":false`)
}

func TestPingRouteUnknownDatabase(t *testing.T) {
	rec := doRequest(t, &scriptedBackend{}, http.MethodGet, "/v1/databases/nope/ping", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTablesRoute(t *testing.T) {
	backend := &scriptedBackend{
		values: []any{int64(1)},
		results: []*database.Result{
			{Columns: []string{"schema_name", "table_name"}, Rows: [][]any{{"public", "users"}}},
		},
	}

	rec := doRequest(t, backend, http.MethodGet, "/v1/databases/main/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_count":1`)
	assert.Contains(t, rec.Body.String(), `"users"`)
}

func TestDescribeRouteInvalidPagination(t *testing.T) {
	rec := doRequest(t, &scriptedBackend{}, http.MethodGet, "/v1/databases/main/tables/users?limit=0", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "limit must be greater than 0")

	rec = doRequest(t, &scriptedBackend{}, http.MethodGet, "/v1/databases/main/tables/users?page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDescribeRouteTableNotFound(t *testing.T) {
	backend := &scriptedBackend{
		results: []*database.Result{
			{Columns: []string{"ok"}, Rows: [][]any{}}, // exists check: no rows
		},
	}

	rec := doRequest(t, backend, http.MethodGet, "/v1/databases/main/tables/ghost", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestQueryRoute(t *testing.T) {
	backend := &scriptedBackend{
		results: []*database.Result{
			{Columns: []string{"n"}, Rows: [][]any{{int64(1)}}},
		},
	}

	rec := doRequest(t, backend, http.MethodPost, "/v1/databases/main/query", `{"sql":"SELECT 1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"row_count":1`)
}

func TestQueryRouteRejectsWrites(t *testing.T) {
	rec := doRequest(t, &scriptedBackend{}, http.MethodPost, "/v1/databases/main/query", `{"sql":"DROP TABLE users"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only SELECT queries are allowed")
}

func TestSnapshotRouteWithoutExporter(t *testing.T) {
	rec := doRequest(t, &scriptedBackend{}, http.MethodPost, "/v1/databases/main/snapshot", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "snapshot storage is not configured")
}
