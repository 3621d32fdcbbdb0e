package domain

import (
	"fmt"
	"strings"
)

// Language is one of the languages a learner can practice in
type Language string

const (
	LanguagePython Language = "Python"
	LanguageC      Language = "C"
	LanguageJava   Language = "Java"
)

// DefaultLanguage is assigned to newly registered learners
const DefaultLanguage = LanguagePython

// Languages returns all supported languages in display order
func Languages() []Language {
	return []Language{LanguagePython, LanguageC, LanguageJava}
}

// IsValid checks if the language is supported
func (l Language) IsValid() bool {
	switch l {
	case LanguagePython, LanguageC, LanguageJava:
		return true
	default:
		return false
	}
}

// String returns the language as a string
func (l Language) String() string {
	return string(l)
}

// ParseLanguage converts a string to a Language. Matching is case-insensitive
// so "python", "PYTHON" and "Python" are all accepted.
func ParseLanguage(s string) (Language, error) {
	for _, lang := range Languages() {
		if strings.EqualFold(strings.TrimSpace(s), string(lang)) {
			return lang, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
}
