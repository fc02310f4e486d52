package rewards

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/crucial707/screentime/internal/metrics"
	"github.com/crucial707/screentime/internal/models"
	"github.com/crucial707/screentime/internal/repo"
)

const weekLayout = "2006-01-02"

// Awarder runs the award pass and builds the leaderboard from the database.
type Awarder struct {
	DB     *sql.DB
	Logger *slog.Logger
	// Now is the clock; weeks after the current one are never treated as latest.
	Now func() time.Time
}

// NewAwarder returns an Awarder logging to logger, or to slog.Default when nil.
func NewAwarder(db *sql.DB, logger *slog.Logger) *Awarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Awarder{DB: db, Logger: logger, Now: time.Now}
}

func (a *Awarder) currentWeek() time.Time {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return WeekStart(now())
}

// weekPair loads the latest week up to current and the minutes for it and the week before.
// ok is false when there are no such entries.
func weekPair(ctx context.Context, st *repo.ScreenTimeRepo, current time.Time) (latestWeek time.Time, latest, previous map[int]int, ok bool, err error) {
	latestWeek, ok, err = st.LatestWeek(ctx, current)
	if err != nil || !ok {
		return latestWeek, nil, nil, ok, err
	}
	latest, err = st.MinutesForWeek(ctx, latestWeek)
	if err != nil {
		return latestWeek, nil, nil, false, err
	}
	previous, err = st.MinutesForWeek(ctx, PreviousWeek(latestWeek))
	if err != nil {
		return latestWeek, nil, nil, false, err
	}
	return latestWeek, latest, previous, true, nil
}

// Run awards tokens for the latest week's reductions in a single transaction.
// Users already awarded for that week are skipped, so repeated runs are no-ops.
// Any failure rolls back the whole pass.
func (a *Awarder) Run(ctx context.Context) (models.AwardResult, error) {
	var res models.AwardResult

	err := repo.WithTx(ctx, a.DB, func(tx *sql.Tx) error {
		latestWeek, latest, previous, ok, err := weekPair(ctx, repo.NewScreenTimeRepo(tx), a.currentWeek())
		if err != nil {
			return err
		}
		if !ok {
			a.Logger.Info("award pass: no screen time entries")
			return nil
		}
		res.Week = latestWeek.Format(weekLayout)
		res.PreviousWeek = PreviousWeek(latestWeek).Format(weekLayout)
		if len(previous) == 0 {
			a.Logger.Warn("award pass: no entries for previous week", "week", res.Week, "previous_week", res.PreviousWeek)
			return nil
		}

		reductions := Reductions(latest, previous)
		userIDs := make([]int, 0, len(reductions))
		for id := range reductions {
			userIDs = append(userIDs, id)
		}
		sort.Ints(userIDs)

		tokens := repo.NewTokenRepo(tx)
		for _, id := range userIDs {
			earned := TokensEarned(reductions[id])
			applied, err := tokens.Award(ctx, id, earned, latestWeek)
			if err != nil {
				return fmt.Errorf("award user %d: %w", id, err)
			}
			if !applied {
				res.UsersSkipped++
				continue
			}
			res.UsersAwarded++
			res.TokensAwarded += earned
		}
		return nil
	})
	if err != nil {
		metrics.IncAwardRuns("error")
		a.Logger.Error("award pass failed", "error", err)
		return models.AwardResult{}, err
	}

	metrics.IncAwardRuns("completed")
	metrics.AddAwardOutcome(res.UsersAwarded, res.UsersSkipped, res.TokensAwarded)
	a.Logger.Info("award pass completed",
		"week", res.Week,
		"users_awarded", res.UsersAwarded,
		"users_skipped", res.UsersSkipped,
		"tokens_awarded", res.TokensAwarded)
	return res, nil
}

// Leaderboard ranks every user by their reduction between the latest week and the week before.
func (a *Awarder) Leaderboard(ctx context.Context) ([]models.Standing, error) {
	var standings []models.Standing
	err := repo.WithConn(ctx, a.DB, func(conn *sql.Conn) error {
		users, err := repo.NewUserRepo(conn).List(ctx)
		if err != nil {
			return err
		}
		_, latest, previous, ok, err := weekPair(ctx, repo.NewScreenTimeRepo(conn), a.currentWeek())
		if err != nil {
			return err
		}
		reductions := map[int]int{}
		if ok {
			reductions = Reductions(latest, previous)
		}
		standings = Rank(users, reductions)
		return nil
	})
	return standings, err
}
