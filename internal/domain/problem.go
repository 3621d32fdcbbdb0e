package domain

import (
	"fmt"
	"strings"
)

// ProblemType identifies which requirement rule-set applies to a submission
type ProblemType string

const (
	ProblemAddition  ProblemType = "addition"
	ProblemEvenOdd   ProblemType = "evenOdd"
	ProblemFizzBuzz  ProblemType = "fizzbuzz"
	ProblemFactorial ProblemType = "factorial"
)

// ProblemTypes returns every problem type in curriculum order
func ProblemTypes() []ProblemType {
	return []ProblemType{ProblemAddition, ProblemEvenOdd, ProblemFizzBuzz, ProblemFactorial}
}

// problemIDs maps problem types to their public identifiers
var problemIDs = map[ProblemType]string{
	ProblemAddition:  "add-two-numbers",
	ProblemEvenOdd:   "even-or-odd",
	ProblemFizzBuzz:  "fizzbuzz",
	ProblemFactorial: "factorial",
}

// ID returns the public problem identifier (e.g. "add-two-numbers")
func (p ProblemType) ID() string {
	return problemIDs[p]
}

// IsValid checks if the problem type is known
func (p ProblemType) IsValid() bool {
	_, ok := problemIDs[p]
	return ok
}

// String returns the problem type tag
func (p ProblemType) String() string {
	return string(p)
}

// ParseProblem resolves a problem identifier ("even-or-odd") or a problem type
// tag ("evenOdd") to a ProblemType.
func ParseProblem(s string) (ProblemType, error) {
	s = strings.TrimSpace(s)
	for pt, id := range problemIDs {
		if s == id || s == string(pt) {
			return pt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidProblem, s)
}

// Difficulty represents problem difficulty
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Example is a sample input/output pair shown with a problem
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Problem is a practice problem presented to learners
type Problem struct {
	ID                string              `json:"id"`
	Type              ProblemType         `json:"type"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Difficulty        Difficulty          `json:"difficulty"`
	InputDescription  string              `json:"input_description"`
	OutputDescription string              `json:"output_description"`
	Examples          []Example           `json:"examples"`
	StarterCode       map[Language]string `json:"starter_code"`
}

// Starter returns the starter template for a language
func (p *Problem) Starter(lang Language) (string, bool) {
	code, ok := p.StarterCode[lang]
	return code, ok
}
