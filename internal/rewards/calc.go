// Package rewards turns weekly screen time into reductions, token awards,
// and leaderboard standings.
//
// A reduction is previous-week minutes minus latest-week minutes, so a
// positive value means the user cut their screen time. The same convention
// is used by the awarder and the leaderboard.
package rewards

import (
	"sort"
	"time"

	"github.com/crucial707/screentime/internal/models"
)

// Tokens are earned at 1.67 per minute of reduction, floored. The rate is kept
// as a ratio so the product is exact.
const (
	tokenRateNum = 167
	tokenRateDen = 100
)

// PreviousWeek returns the week compared against latest: exactly seven days earlier.
func PreviousWeek(latest time.Time) time.Time {
	return latest.AddDate(0, 0, -7)
}

// WeekStart returns the Monday of the week containing t, at midnight UTC.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
}

// Reductions returns user_id -> previous-latest for users present in both weeks.
// Users missing from either week are left out rather than treated as zero.
func Reductions(latest, previous map[int]int) map[int]int {
	out := make(map[int]int)
	for userID, now := range latest {
		before, ok := previous[userID]
		if !ok {
			continue
		}
		out[userID] = before - now
	}
	return out
}

// TokensEarned converts a reduction into tokens: floor(reduction * 1.67).
// Increased usage (negative reduction) earns nothing and never costs tokens.
func TokensEarned(reduction int) int {
	if reduction <= 0 {
		return 0
	}
	return reduction * tokenRateNum / tokenRateDen
}

// Rank builds one standing per user. Users with a reduction come first, highest
// reduction first; ties and users without a reduction are ordered by username.
func Rank(users []models.User, reductions map[int]int) []models.Standing {
	out := make([]models.Standing, 0, len(users))
	for _, u := range users {
		s := models.Standing{UserID: u.ID, Username: u.Username}
		if r, ok := reductions[u.ID]; ok {
			r := r
			s.Reduction = &r
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Reduction, out[j].Reduction
		switch {
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		case a != nil && b != nil && *a != *b:
			return *a > *b
		}
		return out[i].Username < out[j].Username
	})

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
