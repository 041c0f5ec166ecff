package explore

import (
	"context"
	"strings"

	"github.com/datquery/dbexplorer/internal/errs"
)

// QueryRequest carries a raw read-only SQL statement to execute.
type QueryRequest struct {
	Database string
	SQL      string
}

// QueryResponse holds the materialised result of a read-only query.
// Truncated is set when the backend returned more rows than the
// configured ceiling and the tail was dropped.
type QueryResponse struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated"`
}

// ExecuteQuery runs a caller-supplied statement against a database.
// Only SELECT and WITH statements are accepted; anything else is
// rejected before reaching the backend. Results are truncated at the
// gateway's row ceiling rather than failing.
func ExecuteQuery(ctx context.Context, gw Gateway, req QueryRequest) (*QueryResponse, error) {
	stmt := strings.TrimSpace(req.SQL)
	if stmt == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "query must not be empty")
	}
	if !isReadOnly(stmt) {
		return nil, errs.New(errs.ErrKindInvalidInput, "only SELECT queries are allowed")
	}

	if _, err := gw.ResolveDialect(req.Database); err != nil {
		return nil, err
	}

	res, err := gw.Query(ctx, req.Database, stmt)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "execute", "query execution failed", err)
	}

	limit := gw.RowLimit(req.Database)
	truncated := false
	raw := res.Rows
	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
		truncated = true
	}

	rows := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		row := make(map[string]any, len(res.Columns))
		for i, col := range res.Columns {
			if i < len(r) {
				row[col] = r[i]
			}
		}
		rows = append(rows, row)
	}

	return &QueryResponse{
		Columns:   res.Columns,
		Rows:      rows,
		RowCount:  len(rows),
		Truncated: truncated,
	}, nil
}

// isReadOnly accepts statements starting with SELECT or WITH. It is a
// prefix guard, not a parser: the connection itself should also be
// opened read-only where the backend supports it.
func isReadOnly(stmt string) bool {
	upper := strings.ToUpper(stmt)
	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
}
