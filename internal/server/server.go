// Package server exposes the explore operations over HTTP.
//
// The surface is read-only: every route either inspects configuration or
// runs introspection/SELECT queries through the gateway. Connection
// details from the configuration never appear in responses.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/datquery/dbexplorer/internal/config"
	"github.com/datquery/dbexplorer/internal/explore"
	"github.com/datquery/dbexplorer/internal/export"
	"github.com/datquery/dbexplorer/internal/logger"
)

// Backend is what the server needs from the database gateway.
// *gateway.Manager implements it.
type Backend interface {
	explore.Gateway
	explore.Pinger
}

// Exporter uploads schema snapshots. Optional; when nil the snapshot
// route responds 503.
type Exporter interface {
	Export(ctx context.Context, gw explore.Gateway, dbName string) (*export.Result, error)
}

// Server is the HTTP API over one configuration and gateway.
type Server struct {
	cfg      *config.Config
	backend  Backend
	exporter Exporter
	log      *logger.Logger
}

// New creates a Server. exporter may be nil; log may be nil.
func New(cfg *config.Config, backend Backend, exporter Exporter, log *logger.Logger) *Server {
	if log == nil {
		log = logger.New(nil)
	}
	return &Server{cfg: cfg, backend: backend, exporter: exporter, log: log}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.log.RequestLogger())
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/databases", s.handleListDatabases)
		r.Route("/databases/{database}", func(r chi.Router) {
			r.Get("/ping", s.handlePing)
			r.Get("/tables", s.handleListTables)
			r.Get("/tables/{table}", s.handleDescribeTable)
			r.Get("/tables/{table}/sample", s.handleSampleTable)
			r.Post("/query", s.handleQuery)
			r.Post("/snapshot", s.handleSnapshot)
		})
	})

	return r
}
