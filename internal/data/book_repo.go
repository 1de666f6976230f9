package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campuslib/campuslib/internal/data/pgxutil"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// BookRepo provides database operations for the catalog.
type BookRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBookRepo creates a new BookRepo with real time provider.
func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const bookColumns = `id, title, author, isbn, category, total_copies, available_copies, created_at, updated_at`

// Create inserts a new catalog entry with all copies available.
func (r *BookRepo) Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error) {
	if req == nil {
		return nil, errors.New("create book request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	createdAt := r.timeProvider.Now().UTC()
	var out model.Book
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO books (title, author, isbn, category, total_copies, available_copies, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5, $6, $6)
			RETURNING `+bookColumns,
			strings.TrimSpace(req.Title),
			strings.TrimSpace(req.Author),
			strings.TrimSpace(req.ISBN),
			strings.TrimSpace(req.Category),
			req.TotalCopies,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrISBNExists
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a book by ID.
func (r *BookRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	var out model.Book
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}
	return &out, nil
}

// List retrieves catalog entries with optional search and filters.
func (r *BookRepo) List(ctx context.Context, opts model.BooksListOptions) ([]*model.Book, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query := `SELECT ` + bookColumns + ` FROM books`
	args := make([]any, 0, 4)
	var conds []string
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		args = append(args, "%"+strings.TrimSpace(*opts.Q)+"%")
		n := strconv.Itoa(len(args))
		conds = append(conds, "(title ILIKE $"+n+" OR author ILIKE $"+n+" OR isbn ILIKE $"+n+")")
	}
	if opts.Category != nil && strings.TrimSpace(*opts.Category) != "" {
		args = append(args, strings.TrimSpace(*opts.Category))
		conds = append(conds, "category = $"+strconv.Itoa(len(args)))
	}
	if opts.AvailableOnly {
		conds = append(conds, "available_copies > 0")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += " ORDER BY title LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.Book
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	res := make([]*model.Book, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a book. Growing or shrinking total_copies adjusts
// available_copies by the same delta, clamped at zero.
func (r *BookRepo) Update(ctx context.Context, id string, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Author != nil {
		setParts = append(setParts, fmt.Sprintf("author = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Author))
	}
	if req.Category != nil {
		setParts = append(setParts, fmt.Sprintf("category = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Category))
	}
	if req.TotalCopies != nil {
		setParts = append(setParts,
			fmt.Sprintf("available_copies = GREATEST(0, available_copies + ($%d - total_copies))", nextIdx()))
		args = append(args, *req.TotalCopies)
		setParts = append(setParts, fmt.Sprintf("total_copies = $%d", nextIdx()))
		args = append(args, *req.TotalCopies)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())
	args = append(args, id)
	query := "UPDATE books SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) + " RETURNING " + bookColumns

	var out model.Book
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return &out, nil
}

// Delete removes a book from the catalog.
func (r *BookRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete book: %w", err)
	}
	return rows > 0, nil
}
