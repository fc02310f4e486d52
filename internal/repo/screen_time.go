package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crucial707/screentime/internal/models"
)

// ScreenTimeRepo reads and writes weekly screen time entries.
type ScreenTimeRepo struct {
	DB Querier
}

// NewScreenTimeRepo returns a new ScreenTimeRepo.
func NewScreenTimeRepo(db Querier) *ScreenTimeRepo {
	return &ScreenTimeRepo{DB: db}
}

// ListByUser returns all entries for one user, newest week first.
func (r *ScreenTimeRepo) ListByUser(ctx context.Context, userID int) ([]models.ScreenTimeEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT user_id, week, minutes FROM screen_time WHERE user_id = $1 ORDER BY week DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list screen time: %w", Classify(err))
	}
	defer rows.Close()

	var list []models.ScreenTimeEntry
	for rows.Next() {
		var e models.ScreenTimeEntry
		if err := rows.Scan(&e.UserID, &e.Week, &e.Minutes); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// LatestWeek returns the most recent week with any entry on or before notAfter.
// ok is false when there is none.
func (r *ScreenTimeRepo) LatestWeek(ctx context.Context, notAfter time.Time) (week time.Time, ok bool, err error) {
	var latest sql.NullTime
	err = r.DB.QueryRowContext(ctx, `SELECT MAX(week) FROM screen_time WHERE week <= $1`, notAfter).Scan(&latest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest week: %w", Classify(err))
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return latest.Time, true, nil
}

// MinutesForWeek returns user_id -> minutes for every entry in the given week.
func (r *ScreenTimeRepo) MinutesForWeek(ctx context.Context, week time.Time) (map[int]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT user_id, minutes FROM screen_time WHERE week = $1`,
		week,
	)
	if err != nil {
		return nil, fmt.Errorf("week minutes: %w", Classify(err))
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var userID, minutes int
		if err := rows.Scan(&userID, &minutes); err != nil {
			return nil, err
		}
		out[userID] = minutes
	}
	return out, rows.Err()
}

// Upsert records minutes for (userID, week), replacing any existing value.
func (r *ScreenTimeRepo) Upsert(ctx context.Context, userID int, week time.Time, minutes int) (models.ScreenTimeEntry, error) {
	query := `
		INSERT INTO screen_time (user_id, week, minutes)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, week) DO UPDATE SET minutes = EXCLUDED.minutes
		RETURNING user_id, week, minutes
	`
	var e models.ScreenTimeEntry
	err := r.DB.QueryRowContext(ctx, query, userID, week, minutes).Scan(&e.UserID, &e.Week, &e.Minutes)
	if err != nil {
		return e, fmt.Errorf("upsert screen time: %w", Classify(err))
	}
	return e, nil
}
