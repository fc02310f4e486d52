package models

// Standing is one leaderboard row. Reduction is nil when the user has no
// entry for either of the two compared weeks.
type Standing struct {
	Rank      int    `json:"rank"`
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	Reduction *int   `json:"reduction"`
}

// AwardResult summarizes one award pass.
type AwardResult struct {
	Week          string `json:"week,omitempty"`
	PreviousWeek  string `json:"previous_week,omitempty"`
	UsersAwarded  int    `json:"users_awarded"`
	UsersSkipped  int    `json:"users_skipped"`
	TokensAwarded int    `json:"tokens_awarded"`
}
