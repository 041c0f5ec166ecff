// Package gateway wires configuration, secrets, and database drivers into
// the backend execution gateway consumed by the explore operations.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/datquery/dbexplorer/internal/config"
	"github.com/datquery/dbexplorer/internal/database"
	"github.com/datquery/dbexplorer/internal/database/postgres"
	"github.com/datquery/dbexplorer/internal/database/sqldrv"
	"github.com/datquery/dbexplorer/internal/dialect"
	"github.com/datquery/dbexplorer/internal/errs"
	"github.com/datquery/dbexplorer/internal/logger"
	"github.com/datquery/dbexplorer/internal/secrets"
)

// Manager opens and caches one Conn per configured database and executes
// raw SQL against them. It implements the gateway interface consumed by
// the explore operations. Safe for concurrent use.
type Manager struct {
	cfg     *config.Config
	secrets secrets.Provider
	log     *logger.Logger

	mu    sync.Mutex
	conns map[string]database.Conn
}

// NewManager creates a Manager. provider may be nil, in which case no
// passwords are resolved beyond those in the configuration file.
func NewManager(cfg *config.Config, provider secrets.Provider, log *logger.Logger) *Manager {
	if provider == nil {
		provider = secrets.NoOp{}
	}
	if log == nil {
		log = logger.New(nil)
	}
	return &Manager{
		cfg:     cfg,
		secrets: provider,
		log:     log,
		conns:   make(map[string]database.Conn),
	}
}

// ResolveDialect returns the query-catalog dialect for a configured
// database label.
func (m *Manager) ResolveDialect(label string) (dialect.Name, error) {
	db, err := m.cfg.Lookup(label)
	if err != nil {
		return "", err
	}
	return dialect.FromType(db.Type)
}

// RowLimit returns the configured ceiling on rows per query.
func (m *Manager) RowLimit(string) int {
	return m.cfg.Settings.MaxRowsPerQuery
}

// Query executes sql against the named database and materialises the
// result. The configured query timeout is applied on top of ctx.
func (m *Manager) Query(ctx context.Context, label, sql string) (*database.Result, error) {
	conn, err := m.conn(ctx, label)
	if err != nil {
		return nil, err
	}

	qctx, cancel := m.queryContext(ctx)
	defer cancel()

	return conn.Query(qctx, sql)
}

// QueryValue executes sql and returns the first column of the first row.
// A result with no rows is a not-found error.
func (m *Manager) QueryValue(ctx context.Context, label, sql string) (any, error) {
	res, err := m.Query(ctx, label, sql)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return nil, errs.New(errs.ErrKindNotFound, "query returned no rows")
	}
	return res.Rows[0][0], nil
}

// Ping verifies the named database is reachable.
func (m *Manager) Ping(ctx context.Context, label string) error {
	conn, err := m.conn(ctx, label)
	if err != nil {
		return err
	}

	qctx, cancel := m.queryContext(ctx)
	defer cancel()

	return conn.Ping(qctx)
}

// Close drains every cached connection. Call on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for label, conn := range m.conns {
		if err := conn.Close(); err != nil {
			m.log.ErrorWith("closing connection failed", err, map[string]any{"database": label})
		}
	}
	m.conns = make(map[string]database.Conn)
}

func (m *Manager) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(m.cfg.Settings.MaxQueryTimeout) * time.Second
	return context.WithTimeout(ctx, timeout)
}

// conn returns the cached connection for label, opening it on first use.
func (m *Manager) conn(ctx context.Context, label string) (database.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, ok := m.conns[label]; ok {
		return conn, nil
	}

	db, err := m.cfg.Lookup(label)
	if err != nil {
		return nil, err
	}

	conn, err := m.open(ctx, label, db)
	if err != nil {
		return nil, err
	}

	m.conns[label] = conn
	m.log.With().Str("database", label).Str("type", db.Type).Logger().Info("connection opened")
	return conn, nil
}

func (m *Manager) open(ctx context.Context, label string, db config.Database) (database.Conn, error) {
	password := db.Password
	if password == "" && db.Username != "" && db.ConnectionString == "" {
		key := secrets.Key(label, db.PasswordStoreKey)
		resolved, err := m.secrets.Password(ctx, key)
		if err != nil {
			return nil, err
		}
		password = resolved
	}

	dsn, err := database.BuildDSN(db, password)
	if err != nil {
		return nil, err
	}

	if db.Type == config.TypePostgres {
		return postgres.Open(ctx, dsn)
	}

	driver, err := database.DriverFor(db.Type)
	if err != nil {
		return nil, err
	}
	return sqldrv.Open(ctx, driver, dsn)
}
