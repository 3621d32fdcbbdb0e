package domain

// SubmissionStatus is the qualitative verdict derived from an accuracy score
type SubmissionStatus string

const (
	StatusCorrect          SubmissionStatus = "Correct"
	StatusPartiallyCorrect SubmissionStatus = "Partially Correct"
	StatusNeedsImprovement SubmissionStatus = "Needs Improvement"
)

// BasicSyntaxTopic is reported when no topic detector matches
const BasicSyntaxTopic = "Basic Syntax"

// AnalysisResult is the outcome of statically analyzing one submission.
// It is produced fresh per submission and carries no identity.
type AnalysisResult struct {
	Topics         []string         `json:"topics"`
	Accuracy       int              `json:"accuracy"`
	Status         SubmissionStatus `json:"status"`
	Feedback       string           `json:"feedback"`
	Recommendation string           `json:"recommendation"`
}
