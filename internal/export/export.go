// Package export captures full schema snapshots of configured databases
// and uploads them to object storage as JSON documents.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/datquery/dbexplorer/internal/errs"
	"github.com/datquery/dbexplorer/internal/explore"
	"github.com/datquery/dbexplorer/internal/filestore"
	"github.com/datquery/dbexplorer/internal/logger"
)

// pageSize is the window used when walking schemas during a snapshot.
const pageSize = 500

// presignTTL is how long a snapshot download link stays valid.
const presignTTL = 24 * time.Hour

// Snapshot is the JSON document written to object storage: every table of
// one database, fully described.
type Snapshot struct {
	Database string         `json:"database"`
	TakenAt  time.Time      `json:"taken_at"`
	Schemas  []SchemaTables `json:"schemas"`
}

// SchemaTables holds the described tables of one schema.
type SchemaTables struct {
	Schema string                     `json:"schema"`
	Tables []explore.TableDescription `json:"tables"`
}

// Result reports where a snapshot was stored.
type Result struct {
	Database string `json:"database"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag,omitempty"`
	URL      string `json:"url,omitempty"`
	Tables   int    `json:"tables"`
}

// Exporter walks a database's schema through the explore pipelines and
// writes the result to a filestore bucket.
type Exporter struct {
	store  filestore.Store
	bucket string
	log    *logger.Logger

	now func() time.Time
}

// New creates an Exporter writing into bucket on store.
func New(store filestore.Store, bucket string, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.New(nil)
	}
	return &Exporter{
		store:  store,
		bucket: bucket,
		log:    log,
		now:    time.Now,
	}
}

// Export snapshots the named database and uploads the JSON document. The
// object key is snapshots/<database>/<timestamp>.json; the returned URL
// is a presigned download link, empty when the backend cannot presign.
func (e *Exporter) Export(ctx context.Context, gw explore.Gateway, dbName string) (*Result, error) {
	snap, tables, err := e.collect(ctx, gw, dbName)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "snapshot", "encoding snapshot failed", err)
	}

	key := fmt.Sprintf("snapshots/%s/%s.json", dbName, snap.TakenAt.Format("2006-01-02T15-04-05Z"))
	info, err := e.store.PutObject(ctx, e.bucket, key, bytes.NewReader(data), int64(len(data)), "application/json")
	if err != nil {
		return nil, err
	}

	url, err := e.store.PresignGetURL(ctx, e.bucket, key, presignTTL)
	if err != nil {
		// The snapshot is stored; a missing link is not worth failing for.
		e.log.ErrorWith("presigning snapshot URL failed", err, map[string]any{"key": key})
		url = ""
	}

	e.log.With().Str("database", dbName).Str("key", key).Int("tables", tables).Logger().
		Info("schema snapshot uploaded")

	return &Result{
		Database: dbName,
		Key:      key,
		Size:     info.Size,
		ETag:     info.ETag,
		URL:      url,
		Tables:   tables,
	}, nil
}

// collect walks every schema and table of the database and describes each
// table completely, paging where a description exceeds one window.
func (e *Exporter) collect(ctx context.Context, gw explore.Gateway, dbName string) (*Snapshot, int, error) {
	snap := &Snapshot{
		Database: dbName,
		TakenAt:  e.now().UTC(),
		Schemas:  []SchemaTables{},
	}

	tables := 0
	for page := 1; ; page++ {
		resp, err := explore.ListTables(ctx, gw, explore.ListRequest{
			Database: dbName, Limit: pageSize, Page: page,
		})
		if err != nil {
			return nil, 0, err
		}

		for _, schema := range resp.Schemas {
			for _, table := range schema.Tables {
				desc, err := e.describeFully(ctx, gw, dbName, schema.Schema, table)
				if err != nil {
					return nil, 0, err
				}
				if n := len(snap.Schemas); n == 0 || snap.Schemas[n-1].Schema != schema.Schema {
					snap.Schemas = append(snap.Schemas, SchemaTables{Schema: schema.Schema, Tables: []explore.TableDescription{}})
				}
				st := &snap.Schemas[len(snap.Schemas)-1]
				st.Tables = append(st.Tables, *desc)
				tables++
			}
		}

		if page >= resp.TotalPages {
			break
		}
	}

	return snap, tables, nil
}

// describeFully merges every page of a table description into one record.
func (e *Exporter) describeFully(ctx context.Context, gw explore.Gateway, dbName, schema, table string) (*explore.TableDescription, error) {
	full, err := explore.DescribeTable(ctx, gw, explore.DescribeRequest{
		Database: dbName, Table: table, Schema: schema, Limit: pageSize, Page: 1,
	})
	if err != nil {
		return nil, err
	}

	for page := 2; page <= full.TotalPages; page++ {
		next, err := explore.DescribeTable(ctx, gw, explore.DescribeRequest{
			Database: dbName, Table: table, Schema: schema, Limit: pageSize, Page: page,
		})
		if err != nil {
			return nil, err
		}
		full.Columns = append(full.Columns, next.Columns...)
		full.ForeignKeys = append(full.ForeignKeys, next.ForeignKeys...)
		full.IncomingForeignKeys = append(full.IncomingForeignKeys, next.IncomingForeignKeys...)
	}
	full.CurrentPage = 1
	full.TotalPages = 1

	return full, nil
}
