package review

import (
	"math"
	"sort"
	"time"
)

// Record applies one quiz answer to the state and returns the transformed
// state. The transform is pure; nothing is persisted here.
//
// Correct answers walk the SM-2 ladder: interval 1 day after the first,
// 6 days after the second, then floor(interval * ease) with ease creeping up
// by 0.1 per answer. An incorrect answer resets the streak, drops ease by
// 0.2 and schedules the person for tomorrow. Ease never leaves
// [MinEaseFactor, MaxEaseFactor].
func Record(state State, correct bool, now time.Time) State {
	state.TotalAttempts++
	reviewedAt := now
	state.LastReviewedAt = &reviewedAt

	if correct {
		state.CorrectAttempts++
		state.Repetitions++
		switch state.Repetitions {
		case 1:
			state.IntervalDays = 1
		case 2:
			state.IntervalDays = 6
		default:
			state.IntervalDays = int(math.Floor(float64(state.IntervalDays) * state.EaseFactor))
		}
		state.EaseFactor = math.Min(MaxEaseFactor, state.EaseFactor+0.1)
	} else {
		state.Repetitions = 0
		state.IntervalDays = 1
		state.EaseFactor = math.Max(MinEaseFactor, state.EaseFactor-0.2)
	}

	if state.IntervalDays < 1 {
		state.IntervalDays = 1
	}
	state.NextReviewAt = now.AddDate(0, 0, state.IntervalDays)
	return state
}

// DueItem pairs a person with its review state for queue ordering.
type DueItem struct {
	PersonUID string
	State     State
}

// SortDue orders due items for presentation: most overdue first, never
// reviewed persons ahead of equally overdue ones.
func SortDue(items []DueItem, now time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		oi := now.Sub(items[i].State.NextReviewAt)
		oj := now.Sub(items[j].State.NextReviewAt)
		if oi != oj {
			return oi > oj
		}
		return items[i].State.TotalAttempts < items[j].State.TotalAttempts
	})
}
