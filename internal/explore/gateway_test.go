package explore

import (
	"context"
	"errors"

	"github.com/datquery/dbexplorer/internal/database"
	"github.com/datquery/dbexplorer/internal/dialect"
	"github.com/datquery/dbexplorer/internal/errs"
)

// fakeGateway scripts backend responses for the sequential explore
// pipelines: Query pops results in call order, QueryValue pops values in
// call order, and every statement is recorded for assertions.
type fakeGateway struct {
	name    dialect.Name
	nameErr error

	rowLimit int

	results []*database.Result
	values  []any

	queryErr error

	queries []string
}

func (g *fakeGateway) ResolveDialect(dbName string) (dialect.Name, error) {
	if g.nameErr != nil {
		return "", g.nameErr
	}
	if g.name == "" {
		return dialect.Postgres, nil
	}
	return g.name, nil
}

func (g *fakeGateway) Query(ctx context.Context, dbName, sql string) (*database.Result, error) {
	g.queries = append(g.queries, sql)
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	if len(g.results) == 0 {
		return nil, errors.New("fakeGateway: unexpected Query call")
	}
	res := g.results[0]
	g.results = g.results[1:]
	return res, nil
}

func (g *fakeGateway) QueryValue(ctx context.Context, dbName, sql string) (any, error) {
	g.queries = append(g.queries, sql)
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	if len(g.values) == 0 {
		return nil, errors.New("fakeGateway: unexpected QueryValue call")
	}
	v := g.values[0]
	g.values = g.values[1:]
	return v, nil
}

func (g *fakeGateway) RowLimit(dbName string) int {
	if g.rowLimit == 0 {
		return 1000
	}
	return g.rowLimit
}

func resultQueue(results ...*database.Result) []*database.Result {
	return results
}

func result(columns []string, rows ...[]any) *database.Result {
	if rows == nil {
		rows = [][]any{}
	}
	return &database.Result{Columns: columns, Rows: rows}
}

var errUnknownDB = errs.Newf(errs.ErrKindNotFound, "database %q not found", "nope")
