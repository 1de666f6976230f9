package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campuslib/campuslib/internal/data/pgxutil"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// MemberRepo provides database operations for library patrons.
type MemberRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewMemberRepo creates a new MemberRepo with real time provider.
func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const memberColumns = `id, id_number, display_name, email, role, status, created_at, updated_at`

const memberFindActiveByIDNumberQuery = `
	SELECT ` + memberColumns + `
	FROM members
	WHERE id_number = $1 AND status = 'active'`

// FindActiveByIDNumber looks up an active member by university ID number.
// Returns ErrMemberNotFound when no active member matches.
func (r *MemberRepo) FindActiveByIDNumber(ctx context.Context, idNumber string) (*model.Member, error) {
	var out model.Member
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, memberFindActiveByIDNumberQuery, strings.TrimSpace(idNumber))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Member])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member by id number: %w", err)
	}
	return &out, nil
}

// GetByID retrieves a member by primary key.
func (r *MemberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var out model.Member
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Member])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member by ID: %w", err)
	}
	return &out, nil
}

// Create registers a new member.
func (r *MemberRepo) Create(ctx context.Context, req *model.CreateMemberRequest) (*model.Member, error) {
	if req == nil {
		return nil, errors.New("create member request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	createdAt := r.timeProvider.Now().UTC()
	var out model.Member
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO members (id_number, display_name, email, role, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'active', $5, $5)
			RETURNING `+memberColumns,
			strings.TrimSpace(req.IDNumber),
			strings.TrimSpace(req.DisplayName),
			strings.TrimSpace(req.Email),
			req.Role,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Member])
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrMemberNumberExists
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return &out, nil
}

// List retrieves members with optional filtering.
func (r *MemberRepo) List(ctx context.Context, opts model.MembersListOptions) ([]*model.Member, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	query := `SELECT ` + memberColumns + ` FROM members`
	args := make([]any, 0, 4)
	var conds []string
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		args = append(args, "%"+strings.TrimSpace(*opts.Q)+"%")
		conds = append(conds, fmt.Sprintf("(id_number ILIKE $%d OR display_name ILIKE $%d)", len(args), len(args)))
	}
	if opts.Role != nil {
		args = append(args, *opts.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY display_name LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rowsOut []model.Member
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Member])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	res := make([]*model.Member, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
