package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"finboard/internal/analyze"
	"finboard/internal/core"
	"finboard/internal/ledger"
)

// handleRoot returns a small service descriptor.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Welcome to the Financial Analysis API",
		"endpoints": []string{"/summary", "/timeseries", "/category_breakdown", "/reload"},
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	snap, ok := s.requireSnapshot(w, r)
	if !ok {
		return
	}
	s.serveCached(w, r, "summary", snap, func() (any, error) {
		summary, err := analyze.Analyze(snap.Ledger)
		if err != nil {
			return nil, err
		}
		return summary, nil
	})
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	snap, ok := s.requireSnapshot(w, r)
	if !ok {
		return
	}
	s.serveCached(w, r, "timeseries", snap, func() (any, error) {
		return analyze.Timeseries(snap.Ledger), nil
	})
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	snap, ok := s.requireSnapshot(w, r)
	if !ok {
		return
	}
	s.serveCached(w, r, "category_breakdown", snap, func() (any, error) {
		return analyze.CategoryBreakdown(snap.Ledger), nil
	})
}

// handleReload triggers a full re-ingestion. Concurrent calls are
// coalesced by the ledger service.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	snap, err := s.ledger.Reload(r.Context())

	var persistErr *core.PersistenceError
	if err != nil && !errors.As(err, &persistErr) {
		slog.ErrorContext(r.Context(), "Ledger reload failed", "error", err)
		writeDomainError(w, err)
		return
	}

	body := map[string]any{
		"version":       snap.Version,
		"records":       len(snap.Ledger),
		"rejected_rows": len(snap.Rejected),
	}
	if persistErr != nil {
		// Fresh data is being served from memory; the write failure is
		// surfaced rather than swallowed.
		body["persist_error"] = persistErr.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

// requireSnapshot fetches the current snapshot, rejecting requests made
// before any ledger was loaded.
func (s *Server) requireSnapshot(w http.ResponseWriter, r *http.Request) (ledger.Snapshot, bool) {
	snap := s.ledger.Snapshot()
	if snap.Version == 0 {
		writeError(w, http.StatusServiceUnavailable, "no_ledger", "no ledger loaded yet; POST /reload to ingest")
		return ledger.Snapshot{}, false
	}
	return snap, true
}

// serveCached renders the view once per snapshot version and replays
// the marshaled bytes afterwards.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, endpoint string, snap ledger.Snapshot, compute func() (any, error)) {
	key := endpoint + ":" + strconv.FormatUint(snap.Version, 10)
	if body, ok := s.responseCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Response cache hit", "endpoint", endpoint, "version", snap.Version)
		writeJSONBytes(w, http.StatusOK, body)
		return
	}

	view, err := compute()
	if err != nil {
		slog.ErrorContext(r.Context(), "View computation failed", "endpoint", endpoint, "error", err)
		writeDomainError(w, err)
		return
	}
	body, ok := marshalJSON(w, view)
	if !ok {
		return
	}
	s.responseCache.Set(key, body)
	writeJSONBytes(w, http.StatusOK, body)
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return false
	}
	return true
}
