package analyzer

import (
	"fmt"
	"regexp"

	"github.com/felixgeelhaar/codelite/internal/domain"
)

// Topic labels reported by DetectTopics, in declaration order
const (
	TopicOutput      = "Output Operations"
	TopicArithmetic  = "Arithmetic Operators"
	TopicModulo      = "Modulo Operator"
	TopicConditional = "Conditional Statements"
	TopicInput       = "Input Handling"
	TopicVariable    = "Variable Declaration"
	TopicComparison  = "Comparison Operators"
	TopicLoops       = "Loops"
	TopicMultiply    = "Multiplication"
)

// Detector is a named textual predicate over raw source code
type Detector struct {
	Name  string
	Regex *regexp.Regexp
}

// Match reports whether the detector fires on code
func (d Detector) Match(code string) bool {
	return d.Regex.MatchString(code)
}

func detector(name, expr string) Detector {
	return Detector{Name: name, Regex: regexp.MustCompile(expr)}
}

// RequirementSet holds the required and optional evidence expected for one
// problem in one language. It is built once and never mutated.
type RequirementSet struct {
	Type     domain.ProblemType
	Language domain.Language
	Required []Detector
	Optional []Detector
}

type requirementKey struct {
	lang    domain.Language
	problem domain.ProblemType
}

// Catalog supplies topic detectors per language and requirement sets per
// (language, problem) pair.
type Catalog struct {
	topics       map[domain.Language][]Detector
	requirements map[requirementKey]RequirementSet
}

// NewCatalog builds a catalog and validates every requirement set.
// A set without required detectors is a configuration error.
func NewCatalog(topics map[domain.Language][]Detector, sets []RequirementSet) (*Catalog, error) {
	c := &Catalog{
		topics:       make(map[domain.Language][]Detector, len(topics)),
		requirements: make(map[requirementKey]RequirementSet, len(sets)),
	}

	for lang, detectors := range topics {
		if !lang.IsValid() {
			return nil, fmt.Errorf("%w: topic detectors for unknown language %q", domain.ErrConfiguration, lang)
		}
		c.topics[lang] = append([]Detector(nil), detectors...)
	}

	for _, set := range sets {
		if len(set.Required) == 0 {
			return nil, fmt.Errorf("%w: %s/%s has no required patterns", domain.ErrConfiguration, set.Language, set.Type)
		}
		key := requirementKey{lang: set.Language, problem: set.Type}
		if _, dup := c.requirements[key]; dup {
			return nil, fmt.Errorf("%w: duplicate requirement set %s/%s", domain.ErrConfiguration, set.Language, set.Type)
		}
		c.requirements[key] = set
	}

	return c, nil
}

// TopicDetectors returns the ordered topic detectors for a language
func (c *Catalog) TopicDetectors(lang domain.Language) ([]Detector, error) {
	detectors, ok := c.topics[lang]
	if !ok {
		return nil, fmt.Errorf("%w: no topic detectors for %q", domain.ErrConfiguration, lang)
	}
	return detectors, nil
}

// Requirements returns the requirement set for a language/problem pair
func (c *Catalog) Requirements(lang domain.Language, problem domain.ProblemType) (RequirementSet, error) {
	set, ok := c.requirements[requirementKey{lang: lang, problem: problem}]
	if !ok {
		return RequirementSet{}, fmt.Errorf("%w: no requirements for %s in %s", domain.ErrInvalidProblem, problem, lang)
	}
	return set, nil
}

// DefaultCatalog returns the built-in catalog covering Python, C and Java for
// every problem type.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultTopics(), defaultRequirements())
	if err != nil {
		panic(err)
	}
	return c
}

func defaultTopics() map[domain.Language][]Detector {
	return map[domain.Language][]Detector{
		domain.LanguagePython: {
			detector(TopicOutput, `print\s*\(`),
			detector(TopicArithmetic, `\+`),
			detector(TopicModulo, `%`),
			detector(TopicConditional, `if\s+`),
			detector(TopicInput, `input\s*\(`),
			detector(TopicVariable, `\w+\s*=`),
			detector(TopicComparison, `==|!=|<=|>=|<|>`),
			detector(TopicLoops, `for\s+|while\s+`),
			detector(TopicMultiply, `\*`),
		},
		domain.LanguageC: {
			detector(TopicOutput, `printf\s*\(`),
			detector(TopicArithmetic, `\+`),
			detector(TopicModulo, `%`),
			detector(TopicConditional, `if\s*\(`),
			detector(TopicInput, `scanf\s*\(`),
			detector(TopicVariable, `int\s+\w+|float\s+\w+|char\s+\w+|long\s+\w+`),
			detector(TopicComparison, `==|!=|<=|>=|<|>`),
			detector(TopicLoops, `for\s*\(|while\s*\(`),
			detector(TopicMultiply, `\*`),
		},
		domain.LanguageJava: {
			detector(TopicOutput, `System\.out\.println\s*\(|System\.out\.print\s*\(`),
			detector(TopicArithmetic, `\+`),
			detector(TopicModulo, `%`),
			detector(TopicConditional, `if\s*\(`),
			detector(TopicInput, `Scanner|nextInt|nextLine`),
			detector(TopicVariable, `int\s+\w+|String\s+\w+|double\s+\w+|long\s+\w+`),
			detector(TopicComparison, `==|!=|<=|>=|<|>`),
			detector(TopicLoops, `for\s*\(|while\s*\(`),
			detector(TopicMultiply, `\*`),
		},
	}
}

func defaultRequirements() []RequirementSet {
	var (
		pyPrint   = detector("output", `print\s*\(`)
		cPrintf   = detector("output", `printf\s*\(`)
		javaPrint = detector("output", `System\.out\.print`)
		plus      = detector("addition", `\+`)
		modulo    = detector("modulo", `%`)
		star      = detector("multiplication", `\*`)
		pyIf      = detector("conditional", `if\s+`)
		braceIf   = detector("conditional", `if\s*\(`)
		pyLoop    = detector("loop", `for\s+|while\s+`)
		braceLoop = detector("loop", `for\s*\(|while\s*\(`)
		elseKw    = detector("else", `else`)
		zeroCheck = detector("zero-check", `==\s*0`)
		fizzWords = detector("fizzbuzz-words", `(?i)fizz|buzz`)
		pyRange   = detector("range", `range\s*\(`)
		longType  = detector("long", `long`)
	)

	py, c, java := domain.LanguagePython, domain.LanguageC, domain.LanguageJava

	return []RequirementSet{
		// Add two numbers
		{
			Type: domain.ProblemAddition, Language: py,
			Required: []Detector{pyPrint, plus},
			Optional: []Detector{detector("input", `input\s*\(`), detector("int-cast", `\bint\s*\(`)},
		},
		{
			Type: domain.ProblemAddition, Language: c,
			Required: []Detector{cPrintf, plus},
			Optional: []Detector{detector("input", `scanf\s*\(`), detector("main", `int\s+main`)},
		},
		{
			Type: domain.ProblemAddition, Language: java,
			Required: []Detector{javaPrint, plus},
			Optional: []Detector{detector("input", `Scanner`), detector("class", `class`)},
		},

		// Even or odd
		{
			Type: domain.ProblemEvenOdd, Language: py,
			Required: []Detector{pyPrint, modulo, pyIf},
			Optional: []Detector{elseKw, zeroCheck},
		},
		{
			Type: domain.ProblemEvenOdd, Language: c,
			Required: []Detector{cPrintf, modulo, braceIf},
			Optional: []Detector{elseKw, zeroCheck},
		},
		{
			Type: domain.ProblemEvenOdd, Language: java,
			Required: []Detector{javaPrint, modulo, braceIf},
			Optional: []Detector{elseKw, zeroCheck},
		},

		// FizzBuzz
		{
			Type: domain.ProblemFizzBuzz, Language: py,
			Required: []Detector{pyPrint, modulo, pyIf, pyLoop},
			Optional: []Detector{detector("elif", `elif|else`), pyRange, fizzWords},
		},
		{
			Type: domain.ProblemFizzBuzz, Language: c,
			Required: []Detector{cPrintf, modulo, braceIf, braceLoop},
			Optional: []Detector{elseKw, fizzWords},
		},
		{
			Type: domain.ProblemFizzBuzz, Language: java,
			Required: []Detector{javaPrint, modulo, braceIf, braceLoop},
			Optional: []Detector{elseKw, fizzWords},
		},

		// Factorial
		{
			Type: domain.ProblemFactorial, Language: py,
			Required: []Detector{pyPrint, star, detector("loop-or-call", `for\s+|while\s+|\w+\s*\(`)},
			Optional: []Detector{pyRange, detector("function", `def\s+`), detector("return", `return`)},
		},
		{
			Type: domain.ProblemFactorial, Language: c,
			Required: []Detector{cPrintf, star, braceLoop},
			Optional: []Detector{longType, detector("function", `int\s+\w+\s*\(`)},
		},
		{
			Type: domain.ProblemFactorial, Language: java,
			Required: []Detector{javaPrint, star, braceLoop},
			Optional: []Detector{longType, detector("method", `static\s+\w+\s+\w+\s*\(`)},
		},
	}
}
