package explore

import (
	"context"

	"github.com/datquery/dbexplorer/internal/dialect"
	"github.com/datquery/dbexplorer/internal/errs"
)

// DefaultDescribeLimit is the page size used when a caller does not
// specify one.
const DefaultDescribeLimit = 250

// Pipeline step names recorded on backend query errors.
const (
	stepExistsCheck = "exists_check"
	stepCounts      = "counts"
	stepColumns     = "columns"
	stepForeignKeys = "foreign_keys"
	stepPrimaryKeys = "primary_keys"
	stepList        = "list"
)

// DescribeRequest carries the parameters of a table description.
// Schema may be empty (any schema). Limit and Page must be positive; the
// HTTP layer applies DefaultDescribeLimit and page 1 for absent values.
type DescribeRequest struct {
	Database string
	Table    string
	Schema   string
	Limit    int
	Page     int
}

// DescribeTable returns the structure of one table: columns, outgoing
// foreign keys, and incoming foreign keys, merged into a single paginated
// sequence in that order.
//
// The pipeline is strictly sequential: validate, resolve the dialect,
// check existence, count the three groups, window them, then fetch only
// the slices the plan selects. The primary-key set is fetched once and
// used to annotate columns; it never contributes to the pagination
// counts.
func DescribeTable(ctx context.Context, gw Gateway, req DescribeRequest) (*TableDescription, error) {
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
	ref := dialect.TableRef{Schema: req.Schema, Table: req.Table}

	// Existence check: an empty result is "no such table", reported
	// distinctly from query failure so callers can branch on it.
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

	outFilter := dialect.FKFilter{SourceTable: req.Table, SourceSchema: req.Schema}
	inFilter := dialect.FKFilter{DestTable: req.Table, DestSchema: req.Schema}

	colCount, err := countColumns(ctx, gw, q, req.Database, ref)
	if err != nil {
		return nil, err
	}
	outCount, err := countForeignKeys(ctx, gw, q, req.Database, outFilter)
	if err != nil {
		return nil, err
	}
	inCount, err := countForeignKeys(ctx, gw, q, req.Database, inFilter)
	if err != nil {
		return nil, err
	}

	plan := Paginate([]int{colCount, outCount, inCount}, limit, req.Page)

	pkSet, err := fetchPrimaryKeySet(ctx, gw, q, req.Database, ref)
	if err != nil {
		return nil, err
	}

	desc := &TableDescription{
		Table:               ref.String(),
		Columns:             []ColumnInfo{},
		ForeignKeys:         []ForeignKey{},
		IncomingForeignKeys: []IncomingForeignKey{},
		TotalCount:          plan.TotalCount,
		CurrentPage:         plan.Page,
		TotalPages:          plan.TotalPages,
	}

	if w := plan.Windows[0]; w.Count > 0 {
		desc.Columns, err = fetchColumns(ctx, gw, q, req.Database, ref, w, pkSet)
		if err != nil {
			return nil, err
		}
	}
	if w := plan.Windows[1]; w.Count > 0 {
		rows, err := fetchForeignKeyRows(ctx, gw, q, req.Database, outFilter, w)
		if err != nil {
			return nil, err
		}
		desc.ForeignKeys = groupOutgoing(rows)
	}
	if w := plan.Windows[2]; w.Count > 0 {
		rows, err := fetchForeignKeyRows(ctx, gw, q, req.Database, inFilter, w)
		if err != nil {
			return nil, err
		}
		desc.IncomingForeignKeys = groupIncoming(rows)
	}

	return desc, nil
}

func countColumns(ctx context.Context, gw Gateway, q dialect.Queries, dbName string, ref dialect.TableRef) (int, error) {
	sql, err := q.ColumnsCount(ref)
	if err != nil {
		return 0, err
	}
	return queryCount(ctx, gw, dbName, sql, stepCounts)
}

func countForeignKeys(ctx context.Context, gw Gateway, q dialect.Queries, dbName string, f dialect.FKFilter) (int, error) {
	sql, err := q.ForeignKeysCount(f)
	if err != nil {
		return 0, err
	}
	return queryCount(ctx, gw, dbName, sql, stepCounts)
}

func fetchPrimaryKeySet(ctx context.Context, gw Gateway, q dialect.Queries, dbName string, ref dialect.TableRef) (map[string]bool, error) {
	sql, err := q.PrimaryKeys(ref)
	if err != nil {
		return nil, err
	}
	res, err := gw.Query(ctx, dbName, sql)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, stepPrimaryKeys, "fetching primary keys failed", err)
	}

	set := make(map[string]bool, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) > 0 {
			set[asString(row[0])] = true
		}
	}
	return set, nil
}

// fetchColumns maps windowed column rows (name, type, nullable, default)
// into ColumnInfo records, annotating each with the primary-key set.
func fetchColumns(ctx context.Context, gw Gateway, q dialect.Queries, dbName string, ref dialect.TableRef, w Window, pkSet map[string]bool) ([]ColumnInfo, error) {
	sql, err := q.Columns(ref, w.Count, w.Offset)
	if err != nil {
		return nil, err
	}
	res, err := gw.Query(ctx, dbName, sql)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, stepColumns, "fetching columns failed", err)
	}

	cols := make([]ColumnInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) < 4 {
			return nil, errs.Newf(errs.ErrKindQueryFailed, "columns query returned %d fields, want 4", len(row))
		}
		name := asString(row[0])
		cols = append(cols, ColumnInfo{
			Name:       name,
			Type:       asString(row[1]),
			Nullable:   asBool(row[2]),
			Default:    asNullableString(row[3]),
			PrimaryKey: pkSet[name],
		})
	}
	return cols, nil
}

// fkRow is one raw row of a foreign-key fetch: rows sharing a constraint
// name belong to the same (multi-column) key.
type fkRow struct {
	constraint   string
	sourceTable  string
	sourceColumn string
	destTable    string
	destColumn   string
}

func fetchForeignKeyRows(ctx context.Context, gw Gateway, q dialect.Queries, dbName string, f dialect.FKFilter, w Window) ([]fkRow, error) {
	sql, err := q.ForeignKeys(f, w.Count, w.Offset)
	if err != nil {
		return nil, err
	}
	res, err := gw.Query(ctx, dbName, sql)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, stepForeignKeys, "fetching foreign keys failed", err)
	}

	rows := make([]fkRow, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) < 5 {
			return nil, errs.Newf(errs.ErrKindQueryFailed, "foreign key query returned %d fields, want 5", len(row))
		}
		rows = append(rows, fkRow{
			constraint:   asString(row[0]),
			sourceTable:  asString(row[1]),
			sourceColumn: asString(row[2]),
			destTable:    asString(row[3]),
			destColumn:   asString(row[4]),
		})
	}
	return rows, nil
}

// groupOutgoing folds ordered foreign-key rows into one ForeignKey per
// constraint, appending column pairs in row order.
func groupOutgoing(rows []fkRow) []ForeignKey {
	fks := []ForeignKey{}
	last := ""
	for _, r := range rows {
		if r.constraint != last || len(fks) == 0 {
			fks = append(fks, ForeignKey{
				ConstrainedColumns: []string{},
				ReferredTable:      r.destTable,
				ReferredColumns:    []string{},
			})
			last = r.constraint
		}
		fk := &fks[len(fks)-1]
		fk.ConstrainedColumns = append(fk.ConstrainedColumns, r.sourceColumn)
		fk.ReferredColumns = append(fk.ReferredColumns, r.destColumn)
	}
	return fks
}

// groupIncoming is groupOutgoing from the referred table's point of view.
func groupIncoming(rows []fkRow) []IncomingForeignKey {
	fks := []IncomingForeignKey{}
	last := ""
	for _, r := range rows {
		if r.constraint != last || len(fks) == 0 {
			fks = append(fks, IncomingForeignKey{
				FromTable:   r.sourceTable,
				FromColumns: []string{},
				ToColumns:   []string{},
			})
			last = r.constraint
		}
		fk := &fks[len(fks)-1]
		fk.FromColumns = append(fk.FromColumns, r.sourceColumn)
		fk.ToColumns = append(fk.ToColumns, r.destColumn)
	}
	return fks
}
