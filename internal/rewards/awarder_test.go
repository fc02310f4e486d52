package rewards

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/screentime/internal/repo"
)

var (
	testLatest   = time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	testPrevious = time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAwarder pins the clock to Wednesday of the latest test week.
func testAwarder(db *sql.DB) *Awarder {
	a := NewAwarder(db, quietLogger())
	a.Now = func() time.Time { return testLatest.Add(2*24*time.Hour + 9*time.Hour) }
	return a
}

func expectWeekPair(mock sqlmock.Sqlmock, latest, previous *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT MAX\(week\) FROM screen_time WHERE week <= \$1`).
		WithArgs(testLatest).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(testLatest))
	mock.ExpectQuery(`SELECT user_id, minutes FROM screen_time WHERE week = \$1`).
		WithArgs(testLatest).
		WillReturnRows(latest)
	mock.ExpectQuery(`SELECT user_id, minutes FROM screen_time WHERE week = \$1`).
		WithArgs(testPrevious).
		WillReturnRows(previous)
}

func TestAwarder_Run(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectWeekPair(mock,
		sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 290).AddRow(2, 400).AddRow(3, 50),
		sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 300).AddRow(2, 397))
	// user 1: reduction 10 -> 16 tokens; user 2: reduction -3 -> 0 tokens; user 3 has no previous week.
	mock.ExpectExec(`INSERT INTO tokens`).WithArgs(1, 16, testLatest).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO tokens`).WithArgs(2, 0, testLatest).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := testAwarder(db).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-10-12", res.Week)
	assert.Equal(t, "2026-10-05", res.PreviousWeek)
	assert.Equal(t, 2, res.UsersAwarded)
	assert.Equal(t, 0, res.UsersSkipped)
	assert.Equal(t, 16, res.TokensAwarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwarder_Run_SecondPassIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectWeekPair(mock,
		sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 290),
		sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 300))
	mock.ExpectExec(`INSERT INTO tokens`).WithArgs(1, 16, testLatest).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	res, err := testAwarder(db).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.UsersAwarded)
	assert.Equal(t, 1, res.UsersSkipped)
	assert.Equal(t, 0, res.TokensAwarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwarder_Run_NoEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT MAX\(week\) FROM screen_time`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectCommit()

	res, err := testAwarder(db).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Week)
	assert.Zero(t, res.UsersAwarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwarder_Run_SkippedWeek(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectWeekPair(mock,
		sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 290),
		sqlmock.NewRows([]string{"user_id", "minutes"}))
	mock.ExpectCommit()

	res, err := testAwarder(db).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-12", res.Week)
	assert.Zero(t, res.UsersAwarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwarder_Run_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectWeekPair(mock,
		sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 290).AddRow(2, 100),
		sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 300).AddRow(2, 200))
	mock.ExpectExec(`INSERT INTO tokens`).WithArgs(1, 16, testLatest).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO tokens`).WithArgs(2, 167, testLatest).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = testAwarder(db).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "award user 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwarder_Leaderboard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id, username, role FROM users ORDER BY username`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "role"}).
			AddRow(1, "alice", "member").
			AddRow(2, "bob", "member").
			AddRow(3, "carol", "member").
			AddRow(4, "dave", "member"))
	expectWeekPair(mock,
		sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 100).AddRow(2, 205).AddRow(3, 90).AddRow(4, 60),
		sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 120).AddRow(2, 200).AddRow(3, 100))

	standings, err := testAwarder(db).Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 4)

	assert.Equal(t, "alice", standings[0].Username)
	assert.Equal(t, 20, *standings[0].Reduction)
	assert.Equal(t, "carol", standings[1].Username)
	assert.Equal(t, "bob", standings[2].Username)
	assert.Equal(t, -5, *standings[2].Reduction)
	assert.Equal(t, "dave", standings[3].Username)
	assert.Nil(t, standings[3].Reduction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwarder_Leaderboard_Unavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id, username, role FROM users`).
		WillReturnError(repo.ErrUnavailable)

	_, err = testAwarder(db).Leaderboard(context.Background())
	assert.ErrorIs(t, err, repo.ErrUnavailable)
}

func TestAwarder_Run_IgnoresWeeksAfterCurrent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// A row recorded for 2099 must not become the latest week: the lookup is
	// capped at the Monday of the current week.
	a := testAwarder(db)
	a.Now = func() time.Time { return time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC) }

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT MAX\(week\) FROM screen_time WHERE week <= \$1`).
		WithArgs(testLatest).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(testLatest))
	mock.ExpectQuery(`SELECT user_id, minutes FROM screen_time WHERE week = \$1`).
		WithArgs(testLatest).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 90))
	mock.ExpectQuery(`SELECT user_id, minutes FROM screen_time WHERE week = \$1`).
		WithArgs(testPrevious).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "minutes"}).AddRow(1, 100))
	mock.ExpectExec(`INSERT INTO tokens`).WithArgs(1, 16, testLatest).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-12", res.Week)
	assert.Equal(t, 1, res.UsersAwarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
