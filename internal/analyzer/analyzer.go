// Package analyzer scores learner submissions by static pattern matching.
// Code is never parsed or executed: every check is an independent regular
// expression over the raw text.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/codelite/internal/domain"
)

// Analyzer combines the pattern catalog, scorer and feedback templates
type Analyzer struct {
	catalog *Catalog
}

// New creates an analyzer backed by the built-in catalog
func New() *Analyzer {
	return &Analyzer{catalog: DefaultCatalog()}
}

// Analyze detects topics, scores the code against the problem's requirement
// set and renders feedback. It fails with domain.ErrInvalidProblem when the
// language has no requirement set for the problem.
func (a *Analyzer) Analyze(code string, lang domain.Language, problem domain.ProblemType) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code is empty", domain.ErrInvalidInput)
	}
	if !lang.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidLanguage, lang)
	}

	req, err := a.catalog.Requirements(lang, problem)
	if err != nil {
		return nil, err
	}

	detectors, err := a.catalog.TopicDetectors(lang)
	if err != nil {
		return nil, err
	}
	topics := DetectTopics(code, detectors)

	accuracy, err := Score(code, req)
	if err != nil {
		return nil, err
	}

	return &domain.AnalysisResult{
		Topics:         topics,
		Accuracy:       accuracy,
		Status:         DetermineStatus(accuracy),
		Feedback:       Feedback(accuracy, topics, lang, req.Type),
		Recommendation: Recommendation(accuracy, topics, req.Type),
	}, nil
}

// AnalyzeProblem is Analyze keyed by a public problem ID or type tag
func (a *Analyzer) AnalyzeProblem(code string, lang domain.Language, problemID string) (*domain.AnalysisResult, error) {
	problem, err := domain.ParseProblem(problemID)
	if err != nil {
		return nil, err
	}
	return a.Analyze(code, lang, problem)
}
