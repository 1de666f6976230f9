// Package overdue provides the background sweep that flags late loans and
// accrues fines while they stay out.
package overdue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campuslib/campuslib/internal/core"
	"github.com/campuslib/campuslib/internal/data"
	"github.com/campuslib/campuslib/internal/domain/model"
)

const (
	// DefaultInterval is how often the sweep runs.
	DefaultInterval = 15 * time.Minute
	// assessWorkers bounds concurrent fine writes per sweep.
	assessWorkers = 4
)

// RunnerOptions configures the overdue sweep runner.
type RunnerOptions struct {
	DB     *sql.DB
	Logger *slog.Logger

	Interval       time.Duration // defaults to DefaultInterval
	FineDailyCents int64         // fine per late day, defaults to service policy
	TimeProvider   data.TimeProvider

	// Optional dependency injections (useful for tests/decoupling)
	Borrowings core.BorrowingRepository
	Fines      core.FineRepository
}

// Runner periodically marks active loans past their due date as overdue and
// assesses a fine for every loan still out past due at the configured daily
// rate. The fine upsert keeps re-assessment idempotent, so a loan accrues a
// growing fine on every sweep until it is returned.
type Runner struct {
	borrowings     core.BorrowingRepository
	fines          core.FineRepository
	timeProvider   data.TimeProvider
	logger         *slog.Logger
	interval       time.Duration
	fineDailyCents int64
}

// NewRunner creates a new overdue sweep runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.DB == nil && (opts.Borrowings == nil || opts.Fines == nil) {
		return nil, errors.New("database connection or injected repositories are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	fineDaily := opts.FineDailyCents
	if fineDaily <= 0 {
		fineDaily = 50
	}

	borrowings := opts.Borrowings
	if borrowings == nil {
		borrowings = data.NewBorrowingRepo(opts.DB)
	}
	fines := opts.Fines
	if fines == nil {
		fines = data.NewFineRepo(opts.DB)
	}

	return &Runner{
		borrowings:     borrowings,
		fines:          fines,
		timeProvider:   tp,
		logger:         logger.With("component", "overdue_runner"),
		interval:       interval,
		fineDailyCents: fineDaily,
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting overdue runner", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if _, err := r.Sweep(ctx); err != nil {
		r.logger.ErrorContext(ctx, "initial overdue sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "overdue runner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.logger.ErrorContext(ctx, "overdue sweep failed", "error", err)
			}
		}
	}
}

// Sweep flips active loans past due to overdue, then re-assesses the fine on
// every unreturned past-due loan, not just the newly flipped ones. It returns
// the number of loans assessed. Fine writes run with bounded concurrency; one
// failed write fails the sweep but never the loop.
func (r *Runner) Sweep(ctx context.Context) (int, error) {
	now := r.timeProvider.Now()
	flipped, err := r.borrowings.MarkOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}

	due, err := r.borrowings.ListUnreturnedPastDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list past-due loans: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(assessWorkers)
	for _, loan := range due {
		group.Go(func() error {
			return r.assess(gctx, loan, now)
		})
	}
	if waitErr := group.Wait(); waitErr != nil {
		return len(due), fmt.Errorf("assess fines: %w", waitErr)
	}

	r.logger.InfoContext(ctx, "overdue sweep complete",
		"loans_flagged", len(flipped), "fines_assessed", len(due))
	return len(due), nil
}

func (r *Runner) assess(ctx context.Context, loan *model.Borrowing, now time.Time) error {
	daysLate := loan.DaysLate(now)
	if daysLate < 1 {
		daysLate = 1
	}
	_, err := r.fines.Assess(ctx, core.AssessFineParams{
		BorrowingID: loan.ID,
		MemberID:    loan.MemberID,
		AmountCents: int64(daysLate) * r.fineDailyCents,
		Reason:      fmt.Sprintf("Overdue for %d day(s)", daysLate),
	})
	if err != nil {
		return fmt.Errorf("borrowing %s: %w", loan.ID, err)
	}
	return nil
}
