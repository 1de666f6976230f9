package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campuslib/campuslib/internal/core"
	"github.com/campuslib/campuslib/internal/data/pgxutil"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// FineRepo provides database operations for fines.
type FineRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewFineRepo creates a new FineRepo with real time provider.
func NewFineRepo(db *sql.DB) *FineRepo {
	return &FineRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const fineColumns = `id, borrowing_id, member_id, amount_cents, reason, status, assessed_at, settled_at`

// Assess records a fine against a borrowing. Re-assessing the same borrowing
// replaces the outstanding amount rather than stacking rows, so a sweeper may
// run repeatedly while a loan stays overdue.
func (r *FineRepo) Assess(ctx context.Context, p core.AssessFineParams) (*model.Fine, error) {
	assessedAt := r.timeProvider.Now().UTC()
	var out model.Fine
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO fines (borrowing_id, member_id, amount_cents, reason, status, assessed_at)
			VALUES ($1, $2, $3, $4, 'outstanding', $5)
			ON CONFLICT (borrowing_id) WHERE status = 'outstanding'
			DO UPDATE SET amount_cents = EXCLUDED.amount_cents, assessed_at = EXCLUDED.assessed_at
			RETURNING `+fineColumns,
			p.BorrowingID, p.MemberID, p.AmountCents, p.Reason, assessedAt)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Fine])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assess fine: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a fine by ID.
func (r *FineRepo) GetByID(ctx context.Context, id string) (*model.Fine, error) {
	var out model.Fine
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+fineColumns+` FROM fines WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Fine])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFineNotFound
		}
		return nil, fmt.Errorf("failed to get fine by ID: %w", err)
	}
	return &out, nil
}

// Settle marks an outstanding fine paid or waived.
func (r *FineRepo) Settle(ctx context.Context, id string, status model.FineStatus) (*model.Fine, error) {
	if status != model.FinePaid && status != model.FineWaived {
		return nil, errors.New("settle status must be paid or waived")
	}

	settledAt := r.timeProvider.Now().UTC()
	var out model.Fine
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE fines SET status = $2, settled_at = $3
			WHERE id = $1 AND status = 'outstanding'
			RETURNING `+fineColumns, id, status, settledAt)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Fine])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return nil, ErrFineAlreadySettled
			}
			return nil, ErrFineNotFound
		}
		return nil, fmt.Errorf("failed to settle fine: %w", err)
	}
	return &out, nil
}

// List retrieves fines with optional filters, newest first.
func (r *FineRepo) List(ctx context.Context, opts model.FinesListOptions) ([]*model.Fine, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query := `SELECT ` + fineColumns + ` FROM fines`
	args := make([]any, 0, 4)
	var conds []string
	if opts.MemberID != nil {
		args = append(args, *opts.MemberID)
		conds = append(conds, "member_id = $"+strconv.Itoa(len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += " ORDER BY assessed_at DESC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.Fine
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Fine])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list fines: %w", err)
	}

	res := make([]*model.Fine, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// OutstandingTotalCents sums a member's unpaid fines.
func (r *FineRepo) OutstandingTotalCents(ctx context.Context, memberID string) (int64, error) {
	var total int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT COALESCE(SUM(amount_cents), 0) FROM fines
			WHERE member_id = $1 AND status = 'outstanding'`, memberID).Scan(&total)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum outstanding fines: %w", err)
	}
	return total, nil
}
