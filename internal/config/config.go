// Package config loads and validates the dbexplorer YAML configuration.
//
// The file has two sections: a "databases" map keyed by label, and a
// "settings" block with global limits. Example:
//
//	databases:
//	  warehouse:
//	    type: postgresql
//	    description: Analytics warehouse
//	    host: db.internal
//	    port: 5432
//	    database: analytics
//	    username: reader
//	settings:
//	  max_rows_per_query: 1000
//	  sample_size: 10
//	  max_query_timeout: 30
package config

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/datquery/dbexplorer/internal/errs"
)

// Supported database types. The value maps one-to-one onto a dialect in
// the query catalog.
const (
	TypePostgres  = "postgresql"
	TypeMySQL     = "mysql"
	TypeSQLite    = "sqlite"
	TypeSQLServer = "sqlserver"
	TypeSnowflake = "snowflake"
)

var supportedTypes = map[string]bool{
	TypePostgres:  true,
	TypeMySQL:     true,
	TypeSQLite:    true,
	TypeSQLServer: true,
	TypeSnowflake: true,
}

// Database describes one configured connection. Either ConnectionString or
// the individual fields are used; ConnectionString wins when both are set.
type Database struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`

	ConnectionString string `yaml:"connection_string"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Account  string `yaml:"account"` // Snowflake account identifier

	// PasswordStoreKey overrides the default secret lookup key
	// ("databases/<label>").
	PasswordStoreKey string `yaml:"password_store_key"`

	ExtraParams map[string]string `yaml:"extra_params"`
}

// Settings holds global limits applied to every database.
type Settings struct {
	// MaxRowsPerQuery caps the rows returned by any single query; the
	// explore operations clamp their limit parameter to this value.
	MaxRowsPerQuery int `yaml:"max_rows_per_query"`

	// SampleSize is the default row count for table sampling.
	SampleSize int `yaml:"sample_size"`

	// MaxQueryTimeout is the per-query deadline in seconds.
	MaxQueryTimeout int `yaml:"max_query_timeout"`
}

// Storage configures the optional object store for schema snapshots.
// When absent, the snapshot feature is disabled.
type Storage struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
}

// Config is the root of the parsed configuration file.
type Config struct {
	Databases map[string]Database `yaml:"databases"`
	Settings  Settings            `yaml:"settings"`
	Storage   *Storage            `yaml:"storage"`
}

const (
	defaultMaxRowsPerQuery = 1000
	defaultSampleSize      = 10
	defaultQueryTimeout    = 30
)

// Load reads, parses, and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "", fmt.Sprintf("reading config %s", path), err)
	}
	return Parse(data)
}

// Parse parses and validates raw YAML configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "", "parsing config", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Settings.MaxRowsPerQuery <= 0 {
		c.Settings.MaxRowsPerQuery = defaultMaxRowsPerQuery
	}
	if c.Settings.SampleSize <= 0 {
		c.Settings.SampleSize = defaultSampleSize
	}
	if c.Settings.MaxQueryTimeout <= 0 {
		c.Settings.MaxQueryTimeout = defaultQueryTimeout
	}
}

func (c *Config) validate() error {
	// Database labels must be unique case-insensitively: lookups are done
	// by label and two labels differing only in case are almost certainly
	// a config mistake.
	seen := make(map[string]string, len(c.Databases))
	for label, db := range c.Databases {
		lower := strings.ToLower(label)
		if prev, dup := seen[lower]; dup {
			return errs.Newf(errs.ErrKindInvalidInput, "database %q is defined twice (also as %q)", label, prev)
		}
		seen[lower] = label

		if err := db.validate(label); err != nil {
			return err
		}
	}

	if c.Storage != nil && (c.Storage.Endpoint == "" || c.Storage.Bucket == "") {
		return errs.New(errs.ErrKindInvalidInput, "storage: endpoint and bucket are required")
	}
	return nil
}

func (d Database) validate(label string) error {
	if !supportedTypes[d.Type] {
		return errs.Newf(errs.ErrKindInvalidInput, "database %q: unsupported type %q", label, d.Type)
	}

	// A full connection string needs no further validation.
	if d.ConnectionString != "" {
		return nil
	}

	if d.Database == "" {
		return errs.Newf(errs.ErrKindInvalidInput, "database %q: database field is required", label)
	}

	// SQLite needs only a file path (or :memory:).
	if d.Type == TypeSQLite {
		return nil
	}

	if d.Host == "" || d.Username == "" {
		return errs.Newf(errs.ErrKindInvalidInput,
			"database %q: either connection_string or host/database/username must be provided", label)
	}
	return nil
}

// Lookup returns the configuration for the given database label.
func (c *Config) Lookup(label string) (Database, error) {
	db, ok := c.Databases[label]
	if !ok {
		return Database{}, errs.Newf(errs.ErrKindNotFound, "database %q not found", label)
	}
	return db, nil
}
