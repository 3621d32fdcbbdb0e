// Package streak tracks consecutive days of learner activity.
//
// All dates are civil calendar dates in YYYY-MM-DD form. The package never
// reads the wall clock directly; callers pass "today" or inject a Clock.
package streak

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/codelite/internal/domain"
)

// DateLayout is the calendar date format used for streak dates
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// Clock supplies the current calendar date
type Clock interface {
	Today() string
}

// SystemClock reads the UTC calendar date from the wall clock
type SystemClock struct{}

// Today returns the current UTC date
func (SystemClock) Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// FixedClock always reports the same date
type FixedClock string

// Today returns the fixed date
func (c FixedClock) Today() string {
	return string(c)
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return t, nil
}

// DaysBetween returns the absolute number of whole calendar days between
// two dates.
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDate(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDate(b)
	if err != nil {
		return 0, err
	}

	diff := tb.Sub(ta)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / day), nil
}

// Update advances a streak state to today.
//
// Activity on the same day leaves the state unchanged. Activity on the
// following day extends the streak. Any larger gap resets it to one.
func Update(state domain.StreakState, today string) (domain.StreakState, error) {
	diff, err := DaysBetween(state.LastActiveDate, today)
	if err != nil {
		return state, err
	}

	switch diff {
	case 0:
		return state, nil
	case 1:
		current := state.CurrentStreak + 1
		return domain.StreakState{
			CurrentStreak:  current,
			BestStreak:     max(state.BestStreak, current),
			LastActiveDate: normalize(today),
		}, nil
	default:
		return domain.StreakState{
			CurrentStreak:  1,
			BestStreak:     max(state.BestStreak, 1),
			LastActiveDate: normalize(today),
		}, nil
	}
}

// IsActiveToday reports whether the learner already acted today
func IsActiveToday(lastActive, today string) (bool, error) {
	diff, err := DaysBetween(lastActive, today)
	if err != nil {
		return false, err
	}
	return diff == 0, nil
}

// IsAtRisk reports whether the learner acted yesterday but not yet today
func IsAtRisk(lastActive, today string) (bool, error) {
	diff, err := DaysBetween(lastActive, today)
	if err != nil {
		return false, err
	}
	return diff == 1, nil
}

// Status classifies a streak as active, at-risk or broken
func Status(lastActive, today string) (domain.StreakStatus, error) {
	diff, err := DaysBetween(lastActive, today)
	if err != nil {
		return "", err
	}

	switch diff {
	case 0:
		return domain.StreakActive, nil
	case 1:
		return domain.StreakAtRisk, nil
	default:
		return domain.StreakBroken, nil
	}
}

// FormatDisplay renders a streak length for display
func FormatDisplay(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func normalize(date string) string {
	return strings.TrimSpace(date)
}
