package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/crucial707/screentime/internal/models"
)

type fakeRunner struct {
	calls int
	err   error
}

func (f *fakeRunner) Run(ctx context.Context) (models.AwardResult, error) {
	f.calls++
	return models.AwardResult{Week: "2026-10-12", UsersAwarded: 1, TokensAwarded: 16}, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_InvalidSchedule(t *testing.T) {
	err := Run(context.Background(), "not a cron line", &fakeRunner{}, discard())
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, "0 3 * * 1", &fakeRunner{}, discard()) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunOnce(t *testing.T) {
	r := &fakeRunner{}
	runOnce(context.Background(), r, discard())
	if r.calls != 1 {
		t.Errorf("calls: got %d, want 1", r.calls)
	}

	failing := &fakeRunner{err: errors.New("boom")}
	runOnce(context.Background(), failing, discard())
	if failing.calls != 1 {
		t.Errorf("failing runner should still be called once, got %d", failing.calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	skipped := &fakeRunner{}
	runOnce(ctx, skipped, discard())
	if skipped.calls != 0 {
		t.Errorf("cancelled context should skip the pass, got %d calls", skipped.calls)
	}
}
