package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuslib/campuslib/internal/core"
	"github.com/campuslib/campuslib/internal/data/pgxutil"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// BorrowingRepo provides database operations for loans.
type BorrowingRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBorrowingRepo creates a new BorrowingRepo with real time provider.
func NewBorrowingRepo(db *sql.DB) *BorrowingRepo {
	return &BorrowingRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewBorrowingRepoWithTimeProvider creates a new BorrowingRepo with a custom time provider (useful for tests).
func NewBorrowingRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *BorrowingRepo {
	return &BorrowingRepo{DB: db, timeProvider: tp}
}

const borrowingColumns = `id, book_id, member_id, issued_by, borrowed_at, due_at, returned_at, status`

// Create issues one copy of a book to a member. The available-copy decrement
// and the loan insert happen in a single transaction; a book with no free
// copies yields ErrNoCopiesAvailable.
func (r *BorrowingRepo) Create(ctx context.Context, p core.BorrowBookParams) (*model.Borrowing, error) {
	borrowedAt := r.timeProvider.Now().UTC()
	var out model.Borrowing
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
			UPDATE books SET available_copies = available_copies - 1, updated_at = $2
			WHERE id = $1 AND available_copies > 0`, p.BookID, borrowedAt)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return ErrNoCopiesAvailable
		}

		rows, err := tx.Query(ctx, `
			INSERT INTO borrowings (book_id, member_id, issued_by, borrowed_at, due_at, status)
			VALUES ($1, $2, $3, $4, $5, 'active')
			RETURNING `+borrowingColumns,
			p.BookID, p.MemberID, p.IssuedBy, borrowedAt, p.DueAt.UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Borrowing])
		return err
	}})
	if err != nil {
		if errors.Is(err, ErrNoCopiesAvailable) {
			return nil, ErrNoCopiesAvailable
		}
		return nil, fmt.Errorf("failed to create borrowing: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a loan by ID.
func (r *BorrowingRepo) GetByID(ctx context.Context, id string) (*model.Borrowing, error) {
	var out model.Borrowing
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+borrowingColumns+` FROM borrowings WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Borrowing])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBorrowingNotFound
		}
		return nil, fmt.Errorf("failed to get borrowing by ID: %w", err)
	}
	return &out, nil
}

// MarkReturned closes a loan and releases its copy back to the catalog in a
// single transaction. Returns ErrAlreadyReturned for loans already closed.
func (r *BorrowingRepo) MarkReturned(ctx context.Context, id string, at time.Time) (*model.Borrowing, error) {
	var out model.Borrowing
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE borrowings SET returned_at = $2, status = 'returned'
			WHERE id = $1 AND returned_at IS NULL
			RETURNING `+borrowingColumns, id, at.UTC())
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Borrowing])
		rows.Close()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE books SET available_copies = LEAST(total_copies, available_copies + 1), updated_at = $2
			WHERE id = $1`, out.BookID, at.UTC())
		return err
	}})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the loan does not exist or it was already closed.
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return nil, ErrAlreadyReturned
			}
			return nil, ErrBorrowingNotFound
		}
		return nil, fmt.Errorf("failed to mark borrowing returned: %w", err)
	}
	return &out, nil
}

// List retrieves loans with optional filters, newest first.
func (r *BorrowingRepo) List(ctx context.Context, opts model.BorrowingsListOptions) ([]*model.Borrowing, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query := `SELECT ` + borrowingColumns + ` FROM borrowings`
	args := make([]any, 0, 5)
	var conds []string
	if opts.MemberID != nil {
		args = append(args, *opts.MemberID)
		conds = append(conds, "member_id = $"+strconv.Itoa(len(args)))
	}
	if opts.BookID != nil {
		args = append(args, *opts.BookID)
		conds = append(conds, "book_id = $"+strconv.Itoa(len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if opts.Unreturned {
		conds = append(conds, "returned_at IS NULL")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += " ORDER BY borrowed_at DESC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.Borrowing
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Borrowing])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowings: %w", err)
	}

	res := make([]*model.Borrowing, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// ListUnreturnedPastDue returns every loan still out past its due date at the
// given instant, whatever its status. The overdue sweeper re-assesses fines
// from this set so a loan keeps accruing while it stays out.
func (r *BorrowingRepo) ListUnreturnedPastDue(ctx context.Context, asOf time.Time) ([]*model.Borrowing, error) {
	var rowsOut []model.Borrowing
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+borrowingColumns+` FROM borrowings
			WHERE returned_at IS NULL AND due_at < $1
			ORDER BY due_at`, asOf.UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Borrowing])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list past-due borrowings: %w", err)
	}

	res := make([]*model.Borrowing, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// MarkOverdue flips active loans past their due date to overdue and returns
// the affected loans so callers can assess fines. Used by the overdue sweeper.
func (r *BorrowingRepo) MarkOverdue(ctx context.Context, asOf time.Time) ([]*model.Borrowing, error) {
	var rowsOut []model.Borrowing
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE borrowings SET status = 'overdue'
			WHERE status = 'active' AND returned_at IS NULL AND due_at < $1
			RETURNING `+borrowingColumns, asOf.UTC())
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Borrowing])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark overdue borrowings: %w", err)
	}

	res := make([]*model.Borrowing, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
