package domain

// StreakState is a learner's consecutive-activity counter.
// BestStreak >= CurrentStreak holds after every update.
type StreakState struct {
	CurrentStreak  int    `json:"current_streak"`
	BestStreak     int    `json:"best_streak"`
	LastActiveDate string `json:"last_active_date"` // YYYY-MM-DD
}

// StreakStatus describes whether a streak is still alive
type StreakStatus string

const (
	StreakActive StreakStatus = "active"
	StreakAtRisk StreakStatus = "at-risk"
	StreakBroken StreakStatus = "broken"
)
