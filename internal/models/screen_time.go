package models

import "time"

// ScreenTimeEntry is one user's total screen time for the week starting at Week.
type ScreenTimeEntry struct {
	UserID  int       `json:"user_id"`
	Week    time.Time `json:"week"`
	Minutes int       `json:"minutes"`
}
