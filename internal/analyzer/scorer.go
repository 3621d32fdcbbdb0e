package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/felixgeelhaar/codelite/internal/domain"
)

// Scoring weights. Required evidence is worth 70 points, optional evidence 30,
// and code spanning at least three non-blank lines earns a 5 point bonus.
const (
	requiredWeight = 70.0
	optionalWeight = 30.0
	effortBonus    = 5.0
	effortMinLines = 3
)

// Status thresholds (inclusive lower bounds)
const (
	correctThreshold = 75
	partialThreshold = 45
)

// Score computes the accuracy percentage of code against a requirement set.
// The result is deterministic and always within [0, 100].
func Score(code string, req RequirementSet) (int, error) {
	if len(req.Required) == 0 {
		return 0, fmt.Errorf("%w: %s/%s has no required patterns", domain.ErrConfiguration, req.Language, req.Type)
	}

	score := ratio(code, req.Required) * requiredWeight

	if len(req.Optional) > 0 {
		score += ratio(code, req.Optional) * optionalWeight
	} else {
		score += optionalWeight
	}

	if NonBlankLines(code) >= effortMinLines {
		score += effortBonus
	}

	score = math.Min(100, math.Max(0, score))
	return int(math.Floor(score + 0.5)), nil
}

// ratio returns the fraction of detectors matching code
func ratio(code string, detectors []Detector) float64 {
	matched := 0
	for _, d := range detectors {
		if d.Match(code) {
			matched++
		}
	}
	return float64(matched) / float64(len(detectors))
}

// NonBlankLines counts lines containing something other than whitespace
func NonBlankLines(code string) int {
	count := 0
	for _, line := range strings.Split(strings.TrimSpace(code), "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// DetectTopics evaluates every topic detector against code and returns the
// matching labels in declaration order, or ["Basic Syntax"] when none match.
func DetectTopics(code string, detectors []Detector) []string {
	var topics []string
	for _, d := range detectors {
		if d.Match(code) {
			topics = append(topics, d.Name)
		}
	}
	if len(topics) == 0 {
		return []string{domain.BasicSyntaxTopic}
	}
	return topics
}

// DetermineStatus maps an accuracy score to a qualitative status
func DetermineStatus(accuracy int) domain.SubmissionStatus {
	switch {
	case accuracy >= correctThreshold:
		return domain.StatusCorrect
	case accuracy >= partialThreshold:
		return domain.StatusPartiallyCorrect
	default:
		return domain.StatusNeedsImprovement
	}
}
