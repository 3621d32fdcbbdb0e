package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by the analyzer,
// the streak tracker, repositories and services to communicate domain-specific
// error conditions.
// -----------------------------------------------------------------------------

// Analysis errors
var (
	// ErrConfiguration means a requirement set or a config value is missing
	// or malformed. It is never silently defaulted.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidProblem means no requirement set is registered for the
	// requested problem in the requested language.
	ErrInvalidProblem = errors.New("invalid problem")
	// ErrInvalidLanguage means the language is not one of Python, C or Java.
	ErrInvalidLanguage = errors.New("invalid language")
)

// Learner errors
var (
	ErrLearnerNotFound      = errors.New("learner not found")
	ErrLearnerAlreadyExists = errors.New("learner already exists")
	ErrInvalidEmail         = errors.New("invalid email address")
)

// Problem errors
var (
	ErrProblemNotFound = errors.New("problem not found")
)

// General errors
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternalError = errors.New("internal error")
)
