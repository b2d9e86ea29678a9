package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/cohort"
	"github.com/aretw0/cohort/internal/logging"
	"github.com/aretw0/cohort/pkg/adapters/memory"
	"github.com/aretw0/cohort/pkg/batch"
	"github.com/aretw0/cohort/pkg/domain"
	"github.com/aretw0/cohort/pkg/loader"
	"github.com/aretw0/cohort/pkg/observability"
	"github.com/aretw0/cohort/pkg/runs"
)

// Server exposes simulations over HTTP.
type Server struct {
	Catalog *memory.Catalog
	Runs    *runs.Manager
	Streams *StreamManager

	hooks    domain.LifecycleHooks
	registry *prometheus.Registry
	logger   *slog.Logger

	mu      sync.Mutex
	engines map[string]*cohort.Engine // compiled catalog models
}

// Option configures the Server.
type Option func(*Server)

// WithCatalog serves the models of c by name.
func WithCatalog(c *memory.Catalog) Option {
	return func(s *Server) {
		s.Catalog = c
	}
}

// WithRunManager persists results through m.
func WithRunManager(m *runs.Manager) Option {
	return func(s *Server) {
		s.Runs = m
	}
}

// WithLifecycleHooks attaches hooks to every engine the server creates.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(s *Server) {
		s.hooks = h
	}
}

// WithMetrics records run metrics into reg and serves them on /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server. Without options it has an empty catalog and
// keeps results in memory.
func NewServer(opts ...Option) (*Server, error) {
	s := &Server{
		Streams: NewStreamManager(),
		engines: make(map[string]*cohort.Engine),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Catalog == nil {
		s.Catalog, _ = memory.NewCatalog()
	}
	if s.Runs == nil {
		s.Runs = runs.NewManager(memory.NewStore(), runs.WithLogger(s.logger))
	}
	s.Streams.logger = s.logger

	sets := []domain.LifecycleHooks{s.hooks, s.Streams.Hooks()}
	if s.registry != nil {
		m, err := observability.NewMetrics(s.registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		sets = append(sets, m.Hooks())
	}
	s.hooks = observability.Combine(sets...)
	return s, nil
}

// NewHandler is a shortcut for NewServer followed by Handler.
func NewHandler(opts ...Option) (http.Handler, error) {
	s, err := NewServer(opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/models", s.ListModels)
		r.Post("/models", s.RegisterModel)
		r.Post("/simulate", s.Simulate)
		r.Post("/batch", s.Batch)
		r.Get("/results", s.ListResults)
		r.Get("/results/{id}", s.GetResult)
		r.Delete("/results/{id}", s.DeleteResult)
		r.Get("/runs/{id}/events", s.SubscribeEvents)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ModelRef names a catalog model or carries a model document inline.
type ModelRef struct {
	Model    string          `json:"model,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

// SimulateRequest is the body of POST /v1/simulate.
type SimulateRequest struct {
	ModelRef
	RunID      string             `json:"run_id,omitempty"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
	Seed       *int64             `json:"seed,omitempty"`
	Trace      bool               `json:"trace,omitempty"`
}

// BatchRequest is the body of POST /v1/batch.
type BatchRequest struct {
	ModelRef
	Prefix string       `json:"prefix,omitempty"`
	Config batch.Config `json:"config"`
}

// BatchResponse is a batch report plus the failed runs.
type BatchResponse struct {
	*batch.Report
	Errors []RunError `json:"errors,omitempty"`
}

// RunError describes one failed run of a batch.
type RunError struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

// engine resolves ref to a compiled engine.
func (s *Server) engine(ref ModelRef) (*cohort.Engine, error) {
	opts := []cohort.Option{
		cohort.WithLogger(s.logger),
		cohort.WithLifecycleHooks(s.hooks),
		cohort.WithRunManager(s.Runs),
	}
	if len(ref.Document) > 0 {
		model, err := loader.Parse(ref.Document, loader.FormatJSON)
		if err != nil {
			return nil, &requestError{err}
		}
		return cohort.New(model, opts...)
	}
	if ref.Model == "" {
		return nil, &requestError{errors.New("either model or document is required")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if eng, ok := s.engines[ref.Model]; ok {
		return eng, nil
	}
	model, err := s.Catalog.Get(ref.Model)
	if err != nil {
		return nil, err
	}
	eng, err := cohort.New(model, opts...)
	if err != nil {
		return nil, err
	}
	s.engines[ref.Model] = eng
	return eng, nil
}

// Simulate handles POST /v1/simulate.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	var body SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, "Simulate", &requestError{fmt.Errorf("invalid request body: %w", err)})
		return
	}
	eng, err := s.engine(body.ModelRef)
	if err != nil {
		s.fail(w, "Simulate", err)
		return
	}

	opts := []cohort.RunOption{cohort.WithParameters(body.Parameters)}
	if body.RunID != "" {
		opts = append(opts, cohort.WithRunID(body.RunID))
	}
	if body.Seed != nil {
		opts = append(opts, cohort.WithSeed(*body.Seed))
	}
	res, err := eng.Simulate(r.Context(), opts...)
	if err != nil {
		s.fail(w, "Simulate", err)
		return
	}
	if !body.Trace {
		res = res.Summary()
	}
	s.writeJSON(w, http.StatusOK, res)
}

// Batch handles POST /v1/batch.
func (s *Server) Batch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, "Batch", &requestError{fmt.Errorf("invalid request body: %w", err)})
		return
	}
	eng, err := s.engine(body.ModelRef)
	if err != nil {
		s.fail(w, "Batch", err)
		return
	}
	report, err := eng.Batch(r.Context(), body.Config, body.Prefix)
	if err != nil {
		if report == nil {
			err = &requestError{err}
		}
		s.fail(w, "Batch", err)
		return
	}

	resp := BatchResponse{Report: report}
	for _, o := range report.Errors() {
		resp.Errors = append(resp.Errors, RunError{RunID: o.Run.ID, Error: o.Err.Error()})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ListModels handles GET /v1/models.
func (s *Server) ListModels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"models": s.Catalog.Names()})
}

// RegisterModel handles POST /v1/models. The body is a JSON model document;
// it is compiled before it is added so broken models are rejected up front.
func (s *Server) RegisterModel(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.fail(w, "RegisterModel", &requestError{fmt.Errorf("invalid request body: %w", err)})
		return
	}
	model, err := loader.Parse(raw, loader.FormatJSON)
	if err != nil {
		s.fail(w, "RegisterModel", &requestError{err})
		return
	}
	if _, err := cohort.New(model); err != nil {
		s.fail(w, "RegisterModel", err)
		return
	}
	if err := s.Catalog.Register(model); err != nil {
		s.fail(w, "RegisterModel", &conflictError{err})
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"name":   model.Name,
		"states": len(model.Chain.Children),
	})
}

// ListResults handles GET /v1/results.
func (s *Server) ListResults(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Runs.List(r.Context())
	if err != nil {
		s.fail(w, "ListResults", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"results": ids})
}

// GetResult handles GET /v1/results/{id}.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.Runs.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetResult", err)
		return
	}
	if r.URL.Query().Get("trace") != "true" {
		res = res.Summary()
	}
	s.writeJSON(w, http.StatusOK, res)
}

// DeleteResult handles DELETE /v1/results/{id}.
func (s *Server) DeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := s.Runs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteResult", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "cohort-http",
		"version": strings.TrimSpace(cohort.Version),
	})
}

// SubscribeEvents handles GET /v1/runs/{id}/events (SSE). It streams every
// committed cycle of the run and closes after its end or error event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	runID := chi.URLParam(r, "id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(runID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "run_id", runID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data)
			flusher.Flush()
			if msg.Event == EventEnd || msg.Event == EventError {
				return
			}
		}
	}
}

type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

type conflictError struct{ err error }

func (e *conflictError) Error() string { return e.err.Error() }
func (e *conflictError) Unwrap() error { return e.err }

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		reqErr    *requestError
		confErr   *conflictError
		structErr *domain.StructuralError
		probErr   *domain.ProbabilityError
		evalErr   *domain.EvaluationError
	)
	switch {
	case errors.As(err, &reqErr), errors.Is(err, domain.ErrUnknownParameter):
		return http.StatusBadRequest
	case errors.As(err, &confErr), errors.Is(err, domain.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrModelNotFound), errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound
	case errors.As(err, &structErr), errors.As(err, &probErr), errors.As(err, &evalErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
