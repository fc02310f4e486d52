package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TokenRepo persists token balances. A user without a row has a balance of 0.
type TokenRepo struct {
	DB Querier
}

// NewTokenRepo returns a new TokenRepo.
func NewTokenRepo(db Querier) *TokenRepo {
	return &TokenRepo{DB: db}
}

// Balance returns the user's total tokens, or 0 when no row exists. It never creates a row.
func (r *TokenRepo) Balance(ctx context.Context, userID int) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT total_tokens FROM tokens WHERE user_id = $1`, userID).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("token balance: %w", Classify(err))
	}
	return total, nil
}

// Award adds tokens to the user's balance for week, creating the row when absent.
// It is a no-op, returning applied=false, when week was already awarded to the user
// or an older week than the one last awarded.
func (r *TokenRepo) Award(ctx context.Context, userID, tokens int, week time.Time) (applied bool, err error) {
	query := `
		INSERT INTO tokens (user_id, total_tokens, last_awarded_week)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET total_tokens = tokens.total_tokens + EXCLUDED.total_tokens,
		    last_awarded_week = EXCLUDED.last_awarded_week
		WHERE tokens.last_awarded_week IS NULL OR tokens.last_awarded_week < EXCLUDED.last_awarded_week
	`
	result, err := r.DB.ExecContext(ctx, query, userID, tokens, week)
	if err != nil {
		return false, fmt.Errorf("award tokens: %w", Classify(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
