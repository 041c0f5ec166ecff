package explore

import (
	"context"

	"github.com/datquery/dbexplorer/internal/dialect"
	"github.com/datquery/dbexplorer/internal/errs"
)

// ListRequest carries the parameters of a table listing. Schema may be
// empty (all schemas). Limit and Page must be positive.
type ListRequest struct {
	Database string
	Schema   string
	Limit    int
	Page     int
}

// ListTables returns a windowed listing of the (schema, table) pairs in a
// database. It is the single-group variant of the describe pipeline:
// validate, resolve, clamp, count, window, fetch.
//
// Rows are grouped by schema only after the raw window is applied, so a
// schema's tables may continue on the next page; TotalCount counts
// tables, not schemas.
func ListTables(ctx context.Context, gw Gateway, req ListRequest) (*TablesResponse, error) {
	if err := validatePagination(req.Limit, req.Page); err != nil {
		return nil, err
	}

	name, err := gw.ResolveDialect(req.Database)
	if err != nil {
		return nil, err
	}
	q, err := dialect.For(name)
	if err != nil {
		return nil, err
	}

	limit := clampLimit(gw, req.Database, req.Limit)

	countSQL, err := q.ListTablesCount(req.Schema)
	if err != nil {
		return nil, err
	}
	count, err := queryCount(ctx, gw, req.Database, countSQL, stepList)
	if err != nil {
		return nil, err
	}

	plan := Paginate([]int{count}, limit, req.Page)

	resp := &TablesResponse{
		Database:    req.Database,
		Schemas:     []SchemaInfo{},
		TotalCount:  plan.TotalCount,
		CurrentPage: plan.Page,
		TotalPages:  plan.TotalPages,
	}

	w := plan.Windows[0]
	if w.Count == 0 {
		return resp, nil
	}

	listSQL, err := q.ListTables(req.Schema, w.Count, w.Offset)
	if err != nil {
		return nil, err
	}
	res, err := gw.Query(ctx, req.Database, listSQL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, stepList, "listing tables failed", err)
	}

	for _, row := range res.Rows {
		if len(row) < 2 {
			return nil, errs.Newf(errs.ErrKindQueryFailed, "table list query returned %d fields, want 2", len(row))
		}
		schema := asString(row[0])
		table := asString(row[1])

		if n := len(resp.Schemas); n == 0 || resp.Schemas[n-1].Schema != schema {
			resp.Schemas = append(resp.Schemas, SchemaInfo{Schema: schema, Tables: []string{}})
		}
		info := &resp.Schemas[len(resp.Schemas)-1]
		info.Tables = append(info.Tables, table)
		info.TableCount = len(info.Tables)
	}

	return resp, nil
}
