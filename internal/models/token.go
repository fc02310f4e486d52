package models

import "time"

// TokenBalance is a user's running token total. A user without a row has 0 tokens.
type TokenBalance struct {
	UserID          int        `json:"user_id"`
	TotalTokens     int        `json:"total_tokens"`
	LastAwardedWeek *time.Time `json:"last_awarded_week,omitempty"`
}
