// Package mcp exposes the analyzer, the streak tracker and the problem
// catalog as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/codelite/internal/analyzer"
	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/felixgeelhaar/codelite/internal/problem"
	"github.com/felixgeelhaar/codelite/internal/streak"
	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"
)

// Server wraps the MCP server with CodeLite functionality
type Server struct {
	mcpServer *server.Server
	analyzer  *analyzer.Analyzer
	problems  *problem.Registry
	clock     streak.Clock
}

// Config contains configuration for the MCP server
type Config struct {
	Version  string
	Analyzer *analyzer.Analyzer
	Problems *problem.Registry
	Clock    streak.Clock
}

// NewServer creates a new MCP server for CodeLite
func NewServer(cfg Config) (*Server, error) {
	s := &Server{
		analyzer: cfg.Analyzer,
		problems: cfg.Problems,
		clock:    cfg.Clock,
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

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s.mcpServer = server.New(server.Info{
		Name:    "codelite",
		Version: version,
	}, server.WithInstructions(`
CodeLite statically analyzes short practice programs and tracks daily streaks.
Code is never executed; scores come from pattern matching against the
problem's requirements.

Available tools:
- codelite_problems: List practice problems, or fetch one with starter code
- codelite_analyze: Score a submission and get topic feedback
- codelite_streak_update: Advance a streak for today's activity
- codelite_streak_status: Check whether a streak is active, at risk or broken

Languages: Python, C, Java.
Problems: add-two-numbers, even-or-odd, fizzbuzz, factorial.
`))

	s.registerTools()

	return s, nil
}

// registerTools registers all CodeLite MCP tools
func (s *Server) registerTools() {
	s.mcpServer.Tool("codelite_problems").
		Description("List practice problems, or get one problem with its starter code.").
		Handler(s.handleProblems)

	s.mcpServer.Tool("codelite_analyze").
		Description("Analyze code for a problem: detected topics, accuracy, status, feedback and recommendation.").
		Handler(s.handleAnalyze)

	s.mcpServer.Tool("codelite_streak_update").
		Description("Apply today's activity to a streak and return the new streak.").
		Handler(s.handleStreakUpdate)

	s.mcpServer.Tool("codelite_streak_status").
		Description("Classify a streak as active, at-risk or broken.").
		Handler(s.handleStreakStatus)
}

// Input/Output types for tools

type ProblemsInput struct {
	ProblemID string `json:"problem_id,omitempty" jsonschema:"description=Optional problem ID to fetch a single problem"`
	Language  string `json:"language,omitempty" jsonschema:"description=Starter code language,enum=Python,enum=C,enum=Java"`
}

type ProblemSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
}

type ProblemsOutput struct {
	Problems    []ProblemSummary `json:"problems,omitempty"`
	Problem     *domain.Problem  `json:"problem,omitempty"`
	StarterCode string           `json:"starter_code,omitempty"`
}

type AnalyzeInput struct {
	Code     string `json:"code" jsonschema:"description=Source code to analyze"`
	Language string `json:"language" jsonschema:"description=Source language,enum=Python,enum=C,enum=Java"`
	Problem  string `json:"problem" jsonschema:"description=Problem ID such as fizzbuzz or add-two-numbers"`
}

type AnalyzeOutput struct {
	Topics         []string `json:"topics"`
	Accuracy       int      `json:"accuracy"`
	Status         string   `json:"status"`
	Feedback       string   `json:"feedback"`
	Recommendation string   `json:"recommendation"`
}

type StreakUpdateInput struct {
	CurrentStreak  int    `json:"current_streak" jsonschema:"description=Current streak length"`
	BestStreak     int    `json:"best_streak" jsonschema:"description=Best streak so far"`
	LastActiveDate string `json:"last_active_date" jsonschema:"description=Last active date as YYYY-MM-DD"`
	Today          string `json:"today,omitempty" jsonschema:"description=Today as YYYY-MM-DD (default: server date)"`
}

type StreakUpdateOutput struct {
	CurrentStreak  int    `json:"current_streak"`
	BestStreak     int    `json:"best_streak"`
	LastActiveDate string `json:"last_active_date"`
	Display        string `json:"display"`
}

type StreakStatusInput struct {
	LastActiveDate string `json:"last_active_date" jsonschema:"description=Last active date as YYYY-MM-DD"`
	Today          string `json:"today,omitempty" jsonschema:"description=Today as YYYY-MM-DD (default: server date)"`
}

type StreakStatusOutput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleProblems(ctx context.Context, input ProblemsInput) (ProblemsOutput, error) {
	if input.ProblemID == "" {
		var out ProblemsOutput
		for _, p := range s.problems.List() {
			out.Problems = append(out.Problems, ProblemSummary{
				ID:         p.ID,
				Title:      p.Title,
				Difficulty: string(p.Difficulty),
			})
		}
		return out, nil
	}

	p, err := s.problems.Get(input.ProblemID)
	if err != nil {
		return ProblemsOutput{}, err
	}

	lang := domain.DefaultLanguage
	if input.Language != "" {
		if lang, err = domain.ParseLanguage(input.Language); err != nil {
			return ProblemsOutput{}, err
		}
	}
	code, _ := p.Starter(lang)

	return ProblemsOutput{Problem: p, StarterCode: code}, nil
}

func (s *Server) handleAnalyze(ctx context.Context, input AnalyzeInput) (AnalyzeOutput, error) {
	lang, err := domain.ParseLanguage(input.Language)
	if err != nil {
		return AnalyzeOutput{}, err
	}

	result, err := s.analyzer.AnalyzeProblem(input.Code, lang, input.Problem)
	if err != nil {
		return AnalyzeOutput{}, fmt.Errorf("analysis failed: %w", err)
	}

	return AnalyzeOutput{
		Topics:         result.Topics,
		Accuracy:       result.Accuracy,
		Status:         string(result.Status),
		Feedback:       result.Feedback,
		Recommendation: result.Recommendation,
	}, nil
}

func (s *Server) handleStreakUpdate(ctx context.Context, input StreakUpdateInput) (StreakUpdateOutput, error) {
	today := input.Today
	if today == "" {
		today = s.clock.Today()
	}

	next, err := streak.Update(domain.StreakState{
		CurrentStreak:  input.CurrentStreak,
		BestStreak:     input.BestStreak,
		LastActiveDate: input.LastActiveDate,
	}, today)
	if err != nil {
		return StreakUpdateOutput{}, err
	}

	return StreakUpdateOutput{
		CurrentStreak:  next.CurrentStreak,
		BestStreak:     next.BestStreak,
		LastActiveDate: next.LastActiveDate,
		Display:        streak.FormatDisplay(next.CurrentStreak),
	}, nil
}

func (s *Server) handleStreakStatus(ctx context.Context, input StreakStatusInput) (StreakStatusOutput, error) {
	today := input.Today
	if today == "" {
		today = s.clock.Today()
	}

	status, err := streak.Status(input.LastActiveDate, today)
	if err != nil {
		return StreakStatusOutput{}, err
	}

	var msg string
	switch status {
	case domain.StreakActive:
		msg = "Already practiced today. The streak is safe."
	case domain.StreakAtRisk:
		msg = "Practice today to keep the streak going."
	default:
		msg = "The streak has lapsed. Submit today to start a new one."
	}

	return StreakStatusOutput{Status: string(status), Message: msg}, nil
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP (alternative transport)
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
