package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuslib/campuslib/internal/data/pgxutil"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// ReportRepo runs the read-only aggregate queries behind the report pages.
type ReportRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewReportRepo creates a new ReportRepo with real time provider.
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// OverdueBooks lists loans past their due date, most overdue first.
func (r *ReportRepo) OverdueBooks(ctx context.Context, limit int) ([]model.OverdueBookRow, error) {
	if limit <= 0 {
		limit = 100
	}
	now := r.timeProvider.Now().UTC()

	var out []model.OverdueBookRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT bw.id AS borrowing_id, bk.title, bk.author,
			       m.display_name AS member_name, m.id_number, bw.due_at,
			       CEIL(EXTRACT(EPOCH FROM ($1::timestamptz - bw.due_at)) / 86400)::int AS days_late
			FROM borrowings bw
			JOIN books bk ON bk.id = bw.book_id
			JOIN members m ON m.id = bw.member_id
			WHERE bw.returned_at IS NULL AND bw.due_at < $1
			ORDER BY bw.due_at
			LIMIT $2`, now, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.OverdueBookRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue books: %w", err)
	}
	return out, nil
}

// PopularBooks ranks catalog entries by lifetime borrow count.
func (r *ReportRepo) PopularBooks(ctx context.Context, limit int) ([]model.PopularBookRow, error) {
	if limit <= 0 {
		limit = 20
	}

	var out []model.PopularBookRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT bk.id AS book_id, bk.title, bk.author, COUNT(bw.id) AS borrow_count
			FROM books bk
			JOIN borrowings bw ON bw.book_id = bk.id
			GROUP BY bk.id, bk.title, bk.author
			ORDER BY borrow_count DESC, bk.title
			LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.PopularBookRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query popular books: %w", err)
	}
	return out, nil
}

// DailySummary aggregates circulation activity for the calendar day starting
// at the given date (UTC).
func (r *ReportRepo) DailySummary(ctx context.Context, date time.Time) (*model.DailySummary, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	out := model.DailySummary{Date: dayStart}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM borrowings WHERE borrowed_at >= $1 AND borrowed_at < $2),
				(SELECT COUNT(*) FROM borrowings WHERE returned_at >= $1 AND returned_at < $2),
				(SELECT COALESCE(SUM(amount_cents), 0) FROM fines WHERE assessed_at >= $1 AND assessed_at < $2),
				(SELECT COALESCE(SUM(amount_cents), 0) FROM fines WHERE settled_at >= $1 AND settled_at < $2 AND status = 'paid')`,
			dayStart, dayEnd).
			Scan(&out.LoansIssued, &out.ReturnsProcessed, &out.FinesAssessedCents, &out.FinesCollectedCents)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summary: %w", err)
	}
	return &out, nil
}

// CurrentBorrowings lists all open loans, soonest due first.
func (r *ReportRepo) CurrentBorrowings(ctx context.Context, limit int) ([]model.CurrentBorrowingRow, error) {
	if limit <= 0 {
		limit = 100
	}

	var out []model.CurrentBorrowingRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT bw.id AS borrowing_id, bk.title, bk.author,
			       m.display_name AS member_name, m.id_number, bw.borrowed_at, bw.due_at
			FROM borrowings bw
			JOIN books bk ON bk.id = bw.book_id
			JOIN members m ON m.id = bw.member_id
			WHERE bw.returned_at IS NULL
			ORDER BY bw.due_at
			LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.CurrentBorrowingRow])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query current borrowings: %w", err)
	}
	return out, nil
}
