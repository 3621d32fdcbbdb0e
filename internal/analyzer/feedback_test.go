package analyzer

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/codelite/internal/domain"
)

func TestFeedback_Bands(t *testing.T) {
	topics := []string{TopicOutput, TopicModulo, TopicConditional}

	tests := []struct {
		accuracy   int
		wantPrefix string
		wantPart   string
	}{
		{100, "Excellent work!", "strong understanding of Output Operations and Modulo Operator"},
		{85, "Excellent work!", "The even/odd check logic is clean"},
		{84, "Good attempt!", "Your understanding of Output Operations is solid."},
		{60, "Good attempt!", "core even/odd check logic"},
		{59, "You're on the right track!", "Review C syntax for loops and conditions."},
		{40, "You're on the right track!", "complete even/odd check operation"},
		{39, "Keep practicing!", "control structures for even/odd check"},
		{0, "Keep practicing!", "every expert was once a beginner!"},
	}

	for _, tt := range tests {
		got := Feedback(tt.accuracy, topics, domain.LanguageC, domain.ProblemEvenOdd)
		if !strings.HasPrefix(got, tt.wantPrefix) {
			t.Errorf("Feedback(%d) = %q; want prefix %q", tt.accuracy, got, tt.wantPrefix)
		}
		if !strings.Contains(got, tt.wantPart) {
			t.Errorf("Feedback(%d) = %q; want to contain %q", tt.accuracy, got, tt.wantPart)
		}
	}
}

func TestFeedback_SingleTopic(t *testing.T) {
	got := Feedback(90, []string{domain.BasicSyntaxTopic}, domain.LanguageJava, domain.ProblemFactorial)
	if !strings.Contains(got, "strong understanding of Basic Syntax. The factorial calculation logic") {
		t.Errorf("Feedback() = %q", got)
	}
}

func TestRecommendation_Successors(t *testing.T) {
	tests := []struct {
		problem domain.ProblemType
		want    string
	}{
		{domain.ProblemAddition, "Try the Even or Odd problem next to practice conditional statements!"},
		{domain.ProblemEvenOdd, "Try the FizzBuzz problem to combine loops with conditionals!"},
		{domain.ProblemFizzBuzz, "Try the Factorial problem to practice loops and multiplication!"},
		{domain.ProblemFactorial, "Great job! You've completed all problems. Try optimizing your solutions or exploring recursion."},
	}

	for _, tt := range tests {
		if got := Recommendation(85, nil, tt.problem); got != tt.want {
			t.Errorf("Recommendation(85, %s) = %q; want %q", tt.problem, got, tt.want)
		}
	}

	if got := Recommendation(95, nil, domain.ProblemType("graphs")); got != exploreMoreMessage {
		t.Errorf("Recommendation(unknown) = %q; want %q", got, exploreMoreMessage)
	}
}

func TestRecommendation_ReviewFocus(t *testing.T) {
	tests := []struct {
		problem domain.ProblemType
		want    string
	}{
		{domain.ProblemFizzBuzz, "Review the basics of loops and conditionals."},
		{domain.ProblemFactorial, "Review the basics of loops and multiplication."},
		{domain.ProblemAddition, "Review the basics of operators and conditions."},
		{domain.ProblemEvenOdd, "Review the basics of operators and conditions."},
	}

	for _, tt := range tests {
		got := Recommendation(50, []string{TopicLoops}, tt.problem)
		if !strings.HasPrefix(got, tt.want) {
			t.Errorf("Recommendation(50, %s) = %q; want prefix %q", tt.problem, got, tt.want)
		}
	}
}

func TestRecommendation_LowerBands(t *testing.T) {
	if got := Recommendation(70, []string{TopicLoops, TopicMultiply}, domain.ProblemFactorial); !strings.HasPrefix(got, "Strengthen your understanding of Loops.") {
		t.Errorf("Recommendation(70) = %q", got)
	}
	if got := Recommendation(10, nil, domain.ProblemFactorial); !strings.HasPrefix(got, "Start with basic syntax tutorials") {
		t.Errorf("Recommendation(10) = %q", got)
	}
}

func TestSuccessor(t *testing.T) {
	next, ok := Successor(domain.ProblemAddition)
	if !ok || next != domain.ProblemEvenOdd {
		t.Errorf("Successor(addition) = %q, %v; want evenOdd, true", next, ok)
	}
	if _, ok := Successor(domain.ProblemFactorial); ok {
		t.Error("Successor(factorial) should be terminal")
	}
}

func TestDefaultCatalog_Complete(t *testing.T) {
	c := DefaultCatalog()

	for _, lang := range domain.Languages() {
		detectors, err := c.TopicDetectors(lang)
		if err != nil {
			t.Errorf("TopicDetectors(%s) error = %v", lang, err)
		}
		if len(detectors) != 9 {
			t.Errorf("TopicDetectors(%s) = %d detectors; want 9", lang, len(detectors))
		}

		for _, p := range domain.ProblemTypes() {
			req, err := c.Requirements(lang, p)
			if err != nil {
				t.Errorf("Requirements(%s, %s) error = %v", lang, p, err)
				continue
			}
			if len(req.Required) == 0 {
				t.Errorf("Requirements(%s, %s) has no required patterns", lang, p)
			}
		}
	}

	for _, p := range domain.ProblemTypes() {
		if _, ok := problemLabels[p]; !ok {
			t.Errorf("problem %s has no label", p)
		}
		if _, ok := successors[p]; !ok {
			t.Errorf("problem %s has no successor entry", p)
		}
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	plus := detector("addition", `\+`)

	_, err := NewCatalog(nil, []RequirementSet{{
		Type: domain.ProblemAddition, Language: domain.LanguagePython,
	}})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("empty required error = %v; want ErrConfiguration", err)
	}

	_, err = NewCatalog(nil, []RequirementSet{
		{Type: domain.ProblemAddition, Language: domain.LanguagePython, Required: []Detector{plus}},
		{Type: domain.ProblemAddition, Language: domain.LanguagePython, Required: []Detector{plus}},
	})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("duplicate set error = %v; want ErrConfiguration", err)
	}

	_, err = NewCatalog(map[domain.Language][]Detector{"Rust": {plus}}, nil)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("unknown language error = %v; want ErrConfiguration", err)
	}
}
