package explore

import "context"

// Pinger checks reachability of a named database. *gateway.Manager
// implements it.
type Pinger interface {
	Ping(ctx context.Context, dbName string) error
}

// ConnectionStatus reports the outcome of a connectivity check.
type ConnectionStatus struct {
	Database  string `json:"database"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// TestConnection opens (or reuses) a connection to the named database
// and pings it. Failures are reported in the status rather than as an
// error, so a broken backend still yields a well-formed response;
// unknown database names do return an error.
func TestConnection(ctx context.Context, p Pinger, dbName string) ConnectionStatus {
	status := ConnectionStatus{Database: dbName, Connected: true}
	if err := p.Ping(ctx, dbName); err != nil {
		status.Connected = false
		status.Error = err.Error()
	}
	return status
}
