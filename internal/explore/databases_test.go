package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datquery/dbexplorer/internal/config"
)

func TestListDatabasesSortedAndScrubbed(t *testing.T) {
	cfg := &config.Config{
		Databases: map[string]config.Database{
			"warehouse": {Type: config.TypeSnowflake, Description: "analytics warehouse"},
			"app":       {Type: config.TypePostgres, Host: "db.internal", Password: "hunter2"},
			"cache":     {Type: config.TypeSQLite, Database: "/var/lib/cache.db"},
		},
	}

	got := ListDatabases(cfg)

	assert.Equal(t, []DatabaseSummary{
		{Name: "app", Type: "postgresql"},
		{Name: "cache", Type: "sqlite"},
		{Name: "warehouse", Type: "snowflake", Description: "analytics warehouse"},
	}, got)
}

func TestListDatabasesEmptyConfig(t *testing.T) {
	got := ListDatabases(&config.Config{})
	assert.Empty(t, got)
}
