package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/datquery/dbexplorer/internal/errs"
	"github.com/datquery/dbexplorer/internal/explore"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"databases": explore.ListDatabases(s.cfg),
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	dbName := chi.URLParam(r, "database")
	if _, err := s.cfg.Lookup(dbName); err != nil {
		s.writeError(w, r, err)
		return
	}
	status := explore.TestConnection(r.Context(), s.backend, dbName)
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	req := explore.ListRequest{
		Database: chi.URLParam(r, "database"),
		Schema:   r.URL.Query().Get("schema"),
		Limit:    intParam(r, "limit", explore.DefaultDescribeLimit),
		Page:     intParam(r, "page", 1),
	}

	resp, err := explore.ListTables(r.Context(), s.backend, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDescribeTable(w http.ResponseWriter, r *http.Request) {
	req := explore.DescribeRequest{
		Database: chi.URLParam(r, "database"),
		Table:    chi.URLParam(r, "table"),
		Schema:   r.URL.Query().Get("schema"),
		Limit:    intParam(r, "limit", explore.DefaultDescribeLimit),
		Page:     intParam(r, "page", 1),
	}

	desc, err := explore.DescribeTable(r.Context(), s.backend, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

func (s *Server) handleSampleTable(w http.ResponseWriter, r *http.Request) {
	req := explore.SampleRequest{
		Database: chi.URLParam(r, "database"),
		Table:    chi.URLParam(r, "table"),
		Schema:   r.URL.Query().Get("schema"),
		Limit:    intParam(r, "limit", s.cfg.Settings.SampleSize),
	}

	resp, err := explore.SampleTable(r.Context(), s.backend, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type queryBody struct {
	SQL string `json:"sql"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body queryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrKindInvalidInput, "", "invalid request body", err))
		return
	}

	resp, err := explore.ExecuteQuery(r.Context(), s.backend, explore.QueryRequest{
		Database: chi.URLParam(r, "database"),
		SQL:      body.SQL,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "snapshot storage is not configured",
		})
		return
	}

	res, err := s.exporter.Export(r.Context(), s.backend, chi.URLParam(r, "database"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// --- helpers ---

// intParam reads a positive integer query parameter, falling back to def
// when absent. A malformed or non-positive value is passed through as-is
// so the explore validation rejects it with its own message.
func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error kind onto an HTTP status and renders a JSON
// error body. Driver-level causes are logged but never sent to clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsInvalidInput(err), errs.IsUnsupportedDialect(err):
		status = http.StatusBadRequest
	case errs.IsNotFound(err):
		status = http.StatusNotFound
	case errs.IsPermissionDenied(err):
		status = http.StatusForbidden
	case errs.IsTimeout(err):
		status = http.StatusGatewayTimeout
	case errs.IsConnectionFailed(err):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.log.ErrorWith("request failed", err, map[string]any{
			"path": r.URL.Path,
			"step": errs.StepOf(err),
		})
	}

	var e *errs.Error
	msg := err.Error()
	if errors.As(err, &e) {
		msg = e.Message
	}

	writeJSON(w, status, map[string]any{
		"error": msg,
		"step":  errs.StepOf(err),
	})
}
