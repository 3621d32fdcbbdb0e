package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/codelite/internal/analyzer"
	"github.com/felixgeelhaar/codelite/internal/config"
	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/felixgeelhaar/codelite/internal/leaderboard"
	"github.com/felixgeelhaar/codelite/internal/learner"
	"github.com/felixgeelhaar/codelite/internal/problem"
	"github.com/felixgeelhaar/codelite/internal/streak"
	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies; submissions are short programs
const maxBodyBytes = 1 << 20

// defaultLeaderboardLimit applies when ?limit= is absent
const defaultLeaderboardLimit = 10

const healthCheckTimeout = 2 * time.Second

// Server represents the CodeLite daemon HTTP server
type Server struct {
	cfg     *config.LocalConfig
	server  *http.Server
	router  *http.ServeMux
	started time.Time

	// Services
	learners *learner.Service
	analyzer *analyzer.Analyzer
	problems *problem.Registry
	clock    streak.Clock
	checks   map[string]HealthCheck
}

// HealthCheck probes one backing dependency
type HealthCheck func(ctx context.Context) error

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config   *config.LocalConfig
	Learners *learner.Service
	Analyzer *analyzer.Analyzer // defaults to analyzer.New()
	Problems *problem.Registry  // defaults to the built-in catalog
	Clock    streak.Clock       // defaults to streak.SystemClock
	Checks   map[string]HealthCheck
}

// NewServer creates a new daemon server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Config == nil {
		return nil, fmt.Errorf("%w: daemon config is required", domain.ErrConfiguration)
	}
	if cfg.Learners == nil {
		return nil, fmt.Errorf("%w: learner service is required", domain.ErrConfiguration)
	}

	s := &Server{
		cfg:      cfg.Config,
		router:   http.NewServeMux(),
		started:  time.Now(),
		learners: cfg.Learners,
		analyzer: cfg.Analyzer,
		problems: cfg.Problems,
		clock:    cfg.Clock,
		checks:   cfg.Checks,
	}
	if s.analyzer == nil {
		s.analyzer = analyzer.New()
	}
	if s.problems == nil {
		reg, err := problem.NewBuiltinRegistry()
		if err != nil {
			return nil, fmt.Errorf("load problems: %w", err)
		}
		s.problems = reg
	}
	if s.clock == nil {
		s.clock = streak.SystemClock{}
	}

	s.setupRoutes()

	// Create HTTP server with middleware chain
	s.server = &http.Server{
		Addr:         cfg.Config.Daemon.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return recoveryMiddleware(correlationIDMiddleware(loggingMiddleware(limitBodyMiddleware(s.router))))
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health & status
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	// Problems
	s.router.HandleFunc("GET /v1/problems", s.handleListProblems)
	s.router.HandleFunc("GET /v1/problems/{id}", s.handleGetProblem)
	s.router.HandleFunc("GET /v1/problems/{id}/starter", s.handleStarterCode)

	// Stateless analysis & streak arithmetic
	s.router.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	s.router.HandleFunc("POST /v1/streak/update", s.handleStreakUpdate)
	s.router.HandleFunc("GET /v1/streak/status", s.handleStreakStatus)
	s.router.HandleFunc("GET /v1/streak/format", s.handleStreakFormat)

	// Learners
	s.router.HandleFunc("POST /v1/learners", s.handleRegister)
	s.router.HandleFunc("GET /v1/learners/{id}", s.handleGetLearner)
	s.router.HandleFunc("PUT /v1/learners/{id}/language", s.handleSetLanguage)
	s.router.HandleFunc("POST /v1/learners/{id}/submissions", s.handleSubmit)
	s.router.HandleFunc("GET /v1/learners/{id}/submissions", s.handleListSubmissions)
	s.router.HandleFunc("GET /v1/learners/{id}/streak", s.handleLearnerStreak)
	s.router.HandleFunc("GET /v1/learners/{id}/overview", s.handleOverview)

	// Leaderboard
	s.router.HandleFunc("GET /v1/leaderboard", s.handleLeaderboard)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting codelite daemon",
		"addr", s.server.Addr,
		"storage", s.cfg.Storage.Driver,
		"notify", s.cfg.Notify.Driver,
		"leaderboard", s.cfg.Leaderboard.Driver,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state := "running"
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			slog.Warn("health check failed", "check", name, "error", err)
			checks[name] = err.Error()
			state = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":      state,
		"checks":      checks,
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"today":       s.clock.Today(),
		"storage":     s.cfg.Storage.Driver,
		"notify":      s.cfg.Notify.Driver,
		"leaderboard": s.cfg.Leaderboard.Driver,
		"problems":    len(s.problems.List()),
	})
}

// Problem handlers

func (s *Server) handleListProblems(w http.ResponseWriter, r *http.Request) {
	problems := s.problems.List()
	if d := r.URL.Query().Get("difficulty"); d != "" {
		problems = s.problems.ByDifficulty(domain.Difficulty(d))
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"problems": problems,
		"count":    len(problems),
	})
}

func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	p, err := s.problems.Get(r.PathValue("id"))
	if err != nil {
		s.domainError(w, "problem not found", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *Server) handleStarterCode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	lang := domain.DefaultLanguage
	if raw := r.URL.Query().Get("language"); raw != "" {
		parsed, err := domain.ParseLanguage(raw)
		if err != nil {
			s.domainError(w, "unsupported language", err)
			return
		}
		lang = parsed
	}

	code, err := s.problems.StarterCode(id, lang)
	if err != nil {
		s.domainError(w, "starter code not found", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"problem_id": id,
		"language":   lang,
		"code":       code,
	})
}

// Stateless handlers

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string `json:"code"`
		Language string `json:"language"`
		Problem  string `json:"problem"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		s.domainError(w, "unsupported language", err)
		return
	}

	result, err := s.analyzer.AnalyzeProblem(req.Code, lang, req.Problem)
	if err != nil {
		s.domainError(w, "analysis failed", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleStreakUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		domain.StreakState
		Today string `json:"today"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Today == "" {
		req.Today = s.clock.Today()
	}

	next, err := streak.Update(req.StreakState, req.Today)
	if err != nil {
		s.domainError(w, "streak update failed", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, next)
}

func (s *Server) handleStreakStatus(w http.ResponseWriter, r *http.Request) {
	last := r.URL.Query().Get("last")
	today := r.URL.Query().Get("today")
	if last == "" {
		s.jsonError(w, http.StatusBadRequest, "last is required", nil)
		return
	}
	if today == "" {
		today = s.clock.Today()
	}

	status, err := streak.Status(last, today)
	if err != nil {
		s.domainError(w, "invalid dates", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"last_active_date": last,
		"today":            today,
		"status":           status,
		"active_today":     status == domain.StreakActive,
		"at_risk":          status == domain.StreakAtRisk,
	})
}

func (s *Server) handleStreakFormat(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n < 0 {
		s.jsonError(w, http.StatusBadRequest, "n must be a non-negative integer", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"n":       n,
		"display": streak.FormatDisplay(n),
	})
}

// Learner handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	l, err := s.learners.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		s.domainError(w, "failed to register learner", err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, l)
}

func (s *Server) handleGetLearner(w http.ResponseWriter, r *http.Request) {
	id, ok := s.learnerID(w, r)
	if !ok {
		return
	}

	l, err := s.learners.Get(r.Context(), id)
	if err != nil {
		s.domainError(w, "failed to get learner", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, l)
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.learnerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Language string `json:"language"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		s.domainError(w, "unsupported language", err)
		return
	}

	l, err := s.learners.SetLanguage(r.Context(), id, lang)
	if err != nil {
		s.domainError(w, "failed to set language", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, l)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.learnerID(w, r)
	if !ok {
		return
	}

	var req struct {
		ProblemID string `json:"problem_id"`
		Code      string `json:"code"`
		Language  string `json:"language,omitempty"`
	}
	if !s.decodeJSON(w, r, &req) {
		return
	}

	submit := learner.SubmitRequest{ProblemID: req.ProblemID, Code: req.Code}
	if req.Language != "" {
		lang, err := domain.ParseLanguage(req.Language)
		if err != nil {
			s.domainError(w, "unsupported language", err)
			return
		}
		submit.Language = lang
	}

	result, err := s.learners.Submit(r.Context(), id, submit)
	if err != nil {
		s.domainError(w, "submission failed", err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, result)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	id, ok := s.learnerID(w, r)
	if !ok {
		return
	}
	limit, ok := s.queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	records, err := s.learners.Submissions(r.Context(), id, limit)
	if err != nil {
		s.domainError(w, "failed to list submissions", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"submissions": records,
		"count":       len(records),
	})
}

func (s *Server) handleLearnerStreak(w http.ResponseWriter, r *http.Request) {
	id, ok := s.learnerID(w, r)
	if !ok {
		return
	}

	view, err := s.learners.Streak(r.Context(), id)
	if err != nil {
		s.domainError(w, "failed to get streak", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.learnerID(w, r)
	if !ok {
		return
	}

	overview, err := s.learners.Overview(r.Context(), id)
	if err != nil {
		s.domainError(w, "failed to get overview", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, overview)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	key, err := leaderboard.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		s.domainError(w, "invalid sort key", err)
		return
	}
	limit, ok := s.queryInt(w, r, "limit", defaultLeaderboardLimit)
	if !ok {
		return
	}

	entries, err := s.learners.Leaderboard(r.Context(), key, limit)
	if err != nil {
		s.domainError(w, "failed to get leaderboard", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"sort":    key,
		"entries": entries,
	})
}

// Helpers

func (s *Server) learnerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid learner id", err)
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON decodes the request body into v, writing a 400 (or 413 for
// oversized bodies) on failure
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.jsonError(w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return false
		}
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

func (s *Server) queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		s.jsonError(w, http.StatusBadRequest, name+" must be a non-negative integer", err)
		return 0, false
	}
	return n, true
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}

// domainError maps a domain error to its HTTP status
func (s *Server) domainError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(message, "error", err)
		err = domain.ErrInternalError
	}
	s.jsonError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidProblem),
		errors.Is(err, domain.ErrInvalidLanguage),
		errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLearnerNotFound),
		errors.Is(err, domain.ErrProblemNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLearnerAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
