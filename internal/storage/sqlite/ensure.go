package sqlite

import (
	"github.com/felixgeelhaar/codelite/internal/learner"
)

// Ensure SQLite stores implement the storage interfaces.
var (
	_ learner.Store         = (*LearnerStore)(nil)
	_ learner.SubmissionLog = (*LearnerStore)(nil)
)
