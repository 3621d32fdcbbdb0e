package analyzer

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/codelite/internal/domain"
)

// Feedback bands (inclusive lower bounds)
const (
	excellentBand = 85
	goodBand      = 60
	onTrackBand   = 40
)

// problemLabels are the human-readable phrases used inside feedback text
var problemLabels = map[domain.ProblemType]string{
	domain.ProblemAddition:  "addition",
	domain.ProblemEvenOdd:   "even/odd check",
	domain.ProblemFizzBuzz:  "FizzBuzz",
	domain.ProblemFactorial: "factorial calculation",
}

// successor links each problem to the one learners should try next.
// A zero next marks the end of the curriculum.
type successor struct {
	next    domain.ProblemType
	message string
}

var successors = map[domain.ProblemType]successor{
	domain.ProblemAddition: {
		next:    domain.ProblemEvenOdd,
		message: "Try the Even or Odd problem next to practice conditional statements!",
	},
	domain.ProblemEvenOdd: {
		next:    domain.ProblemFizzBuzz,
		message: "Try the FizzBuzz problem to combine loops with conditionals!",
	},
	domain.ProblemFizzBuzz: {
		next:    domain.ProblemFactorial,
		message: "Try the Factorial problem to practice loops and multiplication!",
	},
	domain.ProblemFactorial: {
		message: "Great job! You've completed all problems. Try optimizing your solutions or exploring recursion.",
	},
}

const exploreMoreMessage = "Explore more complex problems involving data structures and algorithms."

// reviewFocus names what to revisit when a solution is only half there
var reviewFocus = map[domain.ProblemType]string{
	domain.ProblemFizzBuzz:  "loops and conditionals",
	domain.ProblemFactorial: "loops and multiplication",
}

const defaultReviewFocus = "operators and conditions"

// ProblemLabel returns the display phrase for a problem type
func ProblemLabel(problem domain.ProblemType) string {
	if label, ok := problemLabels[problem]; ok {
		return label
	}
	return string(problem)
}

// Successor returns the problem that follows in the curriculum.
// ok is false when problem is the last one.
func Successor(problem domain.ProblemType) (next domain.ProblemType, ok bool) {
	s, found := successors[problem]
	if !found || s.next == "" {
		return "", false
	}
	return s.next, true
}

// Feedback renders the feedback paragraph for an analyzed submission
func Feedback(accuracy int, topics []string, lang domain.Language, problem domain.ProblemType) string {
	desc := ProblemLabel(problem)

	switch {
	case accuracy >= excellentBand:
		return fmt.Sprintf("Excellent work! Your %s code demonstrates strong understanding of %s. "+
			"The %s logic is clean and well-structured. Keep up the great coding practice!",
			lang, leadingTopics(topics, 2), desc)
	case accuracy >= goodBand:
		return fmt.Sprintf("Good attempt! You've correctly implemented core %s logic. "+
			"Consider adding proper input handling and ensuring all edge cases are covered. "+
			"Your understanding of %s is solid.",
			desc, leadingTopics(topics, 1))
	case accuracy >= onTrackBand:
		return fmt.Sprintf("You're on the right track! The basic structure is there, but some key elements are missing. "+
			"Focus on implementing the complete %s operation. Review %s syntax for loops and conditions.",
			desc, lang)
	default:
		return fmt.Sprintf("Keep practicing! Your code needs more work on the core logic. "+
			"Make sure to include the essential operators and control structures for %s. "+
			"Don't give up - every expert was once a beginner!",
			desc)
	}
}

// Recommendation renders the next-step suggestion for an analyzed submission
func Recommendation(accuracy int, topics []string, problem domain.ProblemType) string {
	switch {
	case accuracy >= excellentBand:
		if s, ok := successors[problem]; ok {
			return s.message
		}
		return exploreMoreMessage
	case accuracy >= goodBand:
		return fmt.Sprintf("Strengthen your understanding of %s. "+
			"Try rewriting the solution with different approaches to deepen your knowledge.",
			leadingTopics(topics, 1))
	case accuracy >= onTrackBand:
		focus, ok := reviewFocus[problem]
		if !ok {
			focus = defaultReviewFocus
		}
		return fmt.Sprintf("Review the basics of %s. "+
			"Practice with simpler examples before attempting this problem again.", focus)
	default:
		return "Start with basic syntax tutorials for your chosen language. " +
			"Focus on understanding print statements, variables, and basic operators before solving problems."
	}
}

// leadingTopics joins the first n topics with "and"
func leadingTopics(topics []string, n int) string {
	if len(topics) == 0 {
		return domain.BasicSyntaxTopic
	}
	if len(topics) < n {
		n = len(topics)
	}
	return strings.Join(topics[:n], " and ")
}
