package explore

import (
	"context"

	"github.com/datquery/dbexplorer/internal/dialect"
	"github.com/datquery/dbexplorer/internal/errs"
)

// SampleRequest carries the parameters of a row sample. Limit must be
// positive; the HTTP layer substitutes the configured sample size when
// the caller omits it.
type SampleRequest struct {
	Database string
	Table    string
	Schema   string
	Limit    int
}

// SampleResponse holds a small window of real rows from one table.
type SampleResponse struct {
	Table    string           `json:"table"`
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// SampleTable fetches up to Limit rows from a table, after verifying the
// table exists. Rows come back keyed by column name so callers do not
// need the column list to interpret them.
func SampleTable(ctx context.Context, gw Gateway, req SampleRequest) (*SampleResponse, error) {
	if req.Limit < 1 {
		return nil, errs.New(errs.ErrKindInvalidInput, "limit must be greater than 0")
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
	ref := dialect.TableRef{Schema: req.Schema, Table: req.Table}

	existsSQL, err := q.TableExists(ref)
	if err != nil {
		return nil, err
	}
	exists, err := gw.Query(ctx, req.Database, existsSQL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, stepExistsCheck, "table existence check failed", err)
	}
	if len(exists.Rows) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %q not found", ref.String())
	}

	sampleSQL, err := q.Sample(ref, limit)
	if err != nil {
		return nil, err
	}
	res, err := gw.Query(ctx, req.Database, sampleSQL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "sample", "sampling rows failed", err)
	}

	rows := make([]map[string]any, 0, len(res.Rows))
	for _, raw := range res.Rows {
		row := make(map[string]any, len(res.Columns))
		for i, col := range res.Columns {
			if i < len(raw) {
				row[col] = raw[i]
			}
		}
		rows = append(rows, row)
	}

	return &SampleResponse{
		Table:    ref.String(),
		Columns:  res.Columns,
		Rows:     rows,
		RowCount: len(rows),
	}, nil
}
