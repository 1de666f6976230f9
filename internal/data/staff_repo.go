package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campuslib/campuslib/internal/data/pgxutil"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// StaffRepo provides database operations for admin/librarian accounts.
type StaffRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewStaffRepo creates a new StaffRepo with real time provider.
func NewStaffRepo(db *sql.DB) *StaffRepo {
	return &StaffRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewStaffRepoWithTimeProvider creates a new StaffRepo with a custom time provider (useful for tests).
func NewStaffRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *StaffRepo {
	return &StaffRepo{DB: db, timeProvider: tp}
}

const staffColumns = `id, username, password_hash, display_name, role, status, last_login, created_at, updated_at`

const staffFindActiveByUsernameQuery = `
	SELECT ` + staffColumns + `
	FROM staff_users
	WHERE username = $1 AND status = 'active'`

// FindActiveByUsername looks up an active staff account by its login name.
// Returns ErrStaffUserNotFound when no active account matches.
func (r *StaffRepo) FindActiveByUsername(ctx context.Context, username string) (*model.StaffUser, error) {
	var out model.StaffUser
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, staffFindActiveByUsernameQuery, strings.TrimSpace(username))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.StaffUser])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffUserNotFound
		}
		return nil, fmt.Errorf("failed to find staff user by username: %w", err)
	}
	return &out, nil
}

// UpdateLastLogin records a successful staff login. Best-effort from the
// caller's perspective: the login decision does not depend on it.
func (r *StaffRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx,
			`UPDATE staff_users SET last_login = $1, updated_at = $1 WHERE id = $2`,
			at.UTC(), id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to update staff last_login: %w", err)
	}
	return nil
}

// Create inserts a new staff account.
func (r *StaffRepo) Create(ctx context.Context, req *model.CreateStaffUserRequest) (*model.StaffUser, error) {
	if req == nil {
		return nil, errors.New("create staff user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	createdAt := r.timeProvider.Now().UTC()
	var out model.StaffUser
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO staff_users (username, password_hash, display_name, role, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'active', $5, $5)
			RETURNING `+staffColumns,
			strings.TrimSpace(req.Username),
			req.PasswordHash,
			strings.TrimSpace(req.DisplayName),
			req.Role,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.StaffUser])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}
	return &out, nil
}

// List retrieves staff accounts ordered by username.
func (r *StaffRepo) List(ctx context.Context, limit, offset int) ([]*model.StaffUser, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.StaffUser
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+staffColumns+`
			FROM staff_users
			ORDER BY username
			LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.StaffUser])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list staff users: %w", err)
	}

	res := make([]*model.StaffUser, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
