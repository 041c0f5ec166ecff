package explore

import (
	"sort"

	"github.com/datquery/dbexplorer/internal/config"
)

// DatabaseSummary is one configured database as shown to clients.
// Connection details never leave the server.
type DatabaseSummary struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ListDatabases returns the configured databases sorted by name.
func ListDatabases(cfg *config.Config) []DatabaseSummary {
	out := make([]DatabaseSummary, 0, len(cfg.Databases))
	for name, db := range cfg.Databases {
		out = append(out, DatabaseSummary{
			Name:        name,
			Type:        db.Type,
			Description: db.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
