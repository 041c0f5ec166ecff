package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datquery/dbexplorer/internal/errs"
)

func TestParse_Valid(t *testing.T) {
	raw := []byte(`
databases:
  warehouse:
    type: postgresql
    description: Analytics warehouse
    host: db.internal
    port: 5432
    database: analytics
    username: reader
  chinook:
    type: sqlite
    description: Demo database
    database: testdata/chinook.db
settings:
  max_rows_per_query: 500
  sample_size: 5
`)

	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Len(t, cfg.Databases, 2)
	assert.Equal(t, 500, cfg.Settings.MaxRowsPerQuery)
	assert.Equal(t, 5, cfg.Settings.SampleSize)

	db, err := cfg.Lookup("warehouse")
	require.NoError(t, err)
	assert.Equal(t, TypePostgres, db.Type)
	assert.Equal(t, "db.internal", db.Host)
}

func TestParse_Defaults(t *testing.T) {
	raw := []byte(`
databases:
  mem:
    type: sqlite
    description: in-memory
    database: ":memory:"
`)

	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, defaultMaxRowsPerQuery, cfg.Settings.MaxRowsPerQuery)
	assert.Equal(t, defaultSampleSize, cfg.Settings.SampleSize)
	assert.Equal(t, defaultQueryTimeout, cfg.Settings.MaxQueryTimeout)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "unsupported type",
			raw: `
databases:
  bad:
    type: oracle
    description: nope
    database: x
`,
		},
		{
			name: "missing database field",
			raw: `
databases:
  bad:
    type: postgresql
    description: nope
    host: h
    username: u
`,
		},
		{
			name: "missing host and username",
			raw: `
databases:
  bad:
    type: mysql
    description: nope
    database: x
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}
}

func TestParse_ConnectionStringSkipsFieldValidation(t *testing.T) {
	raw := []byte(`
databases:
  direct:
    type: postgresql
    description: via DSN
    connection_string: postgres://u:p@localhost:5432/mydb
`)

	cfg, err := Parse(raw)
	require.NoError(t, err)

	db, err := cfg.Lookup("direct")
	require.NoError(t, err)
	assert.NotEmpty(t, db.ConnectionString)
}

func TestParse_Storage(t *testing.T) {
	raw := []byte(`
databases:
  mem:
    type: sqlite
    database: ":memory:"
storage:
  endpoint: localhost:9000
  access_key: minioadmin
  secret_key: minioadmin
  bucket: schema-snapshots
`)

	cfg, err := Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, cfg.Storage)
	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "schema-snapshots", cfg.Storage.Bucket)
	assert.False(t, cfg.Storage.UseSSL)
}

func TestParse_StorageMissingBucket(t *testing.T) {
	raw := []byte(`
databases:
  mem:
    type: sqlite
    database: ":memory:"
storage:
  endpoint: localhost:9000
`)

	_, err := Parse(raw)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestLookup_Unknown(t *testing.T) {
	cfg := &Config{Databases: map[string]Database{}}

	_, err := cfg.Lookup("ghost")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}
