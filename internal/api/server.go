package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agentdash/agent-analytics/internal/aggregate"
	"github.com/agentdash/agent-analytics/internal/filter"
	"github.com/agentdash/agent-analytics/internal/pattern"
	"github.com/agentdash/agent-analytics/internal/record"
)

// AppState exposes the analytics app's state for the API layer.
type AppState interface {
	IsRunning() bool
	Mode() string
	RecordCount() int
	LastSync() time.Time
	Summary() aggregate.Summary
	FilteredSummary(spec filter.Spec) (aggregate.Summary, error)
	Patterns() []pattern.Pattern
	Records(spec filter.Spec) ([]record.Record, error)
	Rules() []pattern.Rule
}

// Server is a lightweight HTTP API for the trading dashboard.
type Server struct {
	httpServer *http.Server
	appState   AppState
	startedAt  time.Time
}

// NewServer creates a new API server bound to addr.
func NewServer(addr string, appState AppState) *Server {
	s := &Server{
		appState:  appState,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/patterns", s.handlePatterns)
	mux.HandleFunc("/api/records", s.handleRecords)
	mux.HandleFunc("/api/rules", s.handleRules)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	log.Printf("api server listening on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("api server: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError maps core error types onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var filterErr *filter.InvalidFilterError
	var ruleErr *pattern.UnknownRuleError
	var validationErr *record.ValidationError
	switch {
	case errors.As(err, &filterErr), errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &ruleErr):
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// GET /api/health reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"ok":       true,
		"uptime_s": time.Since(s.startedAt).Seconds(),
	})
}

// GET /api/status reports run state and store size.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]interface{}{
		"running":  s.appState.IsRunning(),
		"mode":     s.appState.Mode(),
		"uptime_s": time.Since(s.startedAt).Seconds(),
		"records":  s.appState.RecordCount(),
	}
	if last := s.appState.LastSync(); !last.IsZero() {
		resp["last_sync"] = last
	}
	s.writeJSON(w, resp)
}

// GET /api/summary returns the aggregate summary, filterable via query params.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilterSpec(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if spec == nil {
		s.writeJSON(w, s.appState.Summary())
		return
	}
	summary, err := s.appState.FilteredSummary(*spec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, summary)
}

// GET /api/patterns returns detected patterns over the full record set.
func (s *Server) handlePatterns(w http.ResponseWriter, _ *http.Request) {
	patterns := s.appState.Patterns()
	s.writeJSON(w, map[string]interface{}{"patterns": patterns, "count": len(patterns)})
}

// GET /api/records returns filtered records, most recent first.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilterSpec(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if spec == nil {
		spec = &filter.Spec{}
	}

	records, err := s.appState.Records(*spec)
	if err != nil {
		s.writeError(w, err)
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if len(records) > limit {
		records = records[:limit]
	}
	s.writeJSON(w, map[string]interface{}{"records": records, "count": len(records)})
}

// GET /api/rules lists the registered pattern rules.
func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	rules := s.appState.Rules()
	s.writeJSON(w, map[string]interface{}{"rules": rules, "count": len(rules)})
}

// parseFilterSpec builds a filter.Spec from query parameters. Returns nil
// when no filter parameter is present.
//
// Supported parameters: category (repeatable), q, since, until (RFC3339),
// and range=field:min:max (repeatable).
func parseFilterSpec(r *http.Request) (*filter.Spec, error) {
	q := r.URL.Query()
	spec := filter.Spec{}
	present := false

	if cats := q["category"]; len(cats) > 0 {
		spec.Categories = cats
		present = true
	}
	if search := q.Get("q"); search != "" {
		spec.Search = search
		present = true
	}

	var window filter.TimeWindow
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, &filter.InvalidFilterError{Clause: "since", Reason: err.Error()}
		}
		window.Start = t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, &filter.InvalidFilterError{Clause: "until", Reason: err.Error()}
		}
		window.End = t
	}
	if !window.Start.IsZero() || !window.End.IsZero() {
		spec.Window = &window
		present = true
	}

	for _, raw := range q["range"] {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) != 3 {
			return nil, &filter.InvalidFilterError{Clause: "range", Reason: "want field:min:max"}
		}
		min, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, &filter.InvalidFilterError{Clause: "range " + parts[0], Reason: "bad min"}
		}
		max, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, &filter.InvalidFilterError{Clause: "range " + parts[0], Reason: "bad max"}
		}
		spec.Ranges = append(spec.Ranges, filter.NumericRange{Field: parts[0], Min: min, Max: max})
		present = true
	}

	if !present {
		return nil, nil
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}
