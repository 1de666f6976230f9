// Package devseed seeds a development database with accounts and sample
// catalog data. It must never run against production.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campuslib/campuslib/internal/adapters/staffauth"
	"github.com/campuslib/campuslib/internal/data"
	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// Run executes the full development seeding workflow against the provided DB.
// Seeding is idempotent: records that already exist are left alone.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	failures := 0
	failures += seedStaff(ctx, data.NewStaffRepo(db), logger)
	failures += seedMembers(ctx, data.NewMemberRepo(db), logger)
	failures += seedBooks(ctx, data.NewBookRepo(db), logger)

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

type staffSeed struct {
	Username    string
	Password    string
	DisplayName string
	Role        domainauth.Role
}

func seedStaff(ctx context.Context, repo *data.StaffRepo, logger *slog.Logger) int {
	seeds := []staffSeed{
		{Username: "admin", Password: "admin-dev-password", DisplayName: "Dev Admin", Role: domainauth.RoleAdmin},
		{Username: "librarian", Password: "librarian-dev-password", DisplayName: "Dev Librarian", Role: domainauth.RoleLibrarian},
	}

	failures := 0
	for _, s := range seeds {
		hash, err := staffauth.HashPassword(s.Password)
		if err != nil {
			logger.ErrorContext(ctx, "seed staff hash failed", "username", s.Username, "error", err)
			failures++
			continue
		}
		_, err = repo.Create(ctx, &model.CreateStaffUserRequest{
			Username:     s.Username,
			PasswordHash: hash,
			DisplayName:  s.DisplayName,
			Role:         s.Role,
		})
		switch {
		case err == nil:
			logger.InfoContext(ctx, "seeded staff account", "username", s.Username, "role", s.Role)
		case errors.Is(err, data.ErrUsernameExists):
			// Already seeded.
		default:
			logger.ErrorContext(ctx, "seed staff failed", "username", s.Username, "error", err)
			failures++
		}
	}
	return failures
}

func seedMembers(ctx context.Context, repo *data.MemberRepo, logger *slog.Logger) int {
	seeds := []*model.CreateMemberRequest{
		{IDNumber: "S-2024-001", DisplayName: "Sample Student", Email: "student@campus.example.edu", Role: domainauth.RoleStudent},
		{IDNumber: "E-2019-042", DisplayName: "Sample Staff Member", Email: "staff@campus.example.edu", Role: domainauth.RoleStaff},
	}

	failures := 0
	for _, s := range seeds {
		_, err := repo.Create(ctx, s)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "seeded member", "id_number", s.IDNumber, "role", s.Role)
		case errors.Is(err, data.ErrMemberNumberExists):
			// Already seeded.
		default:
			logger.ErrorContext(ctx, "seed member failed", "id_number", s.IDNumber, "error", err)
			failures++
		}
	}
	return failures
}

func seedBooks(ctx context.Context, repo *data.BookRepo, logger *slog.Logger) int {
	seeds := []*model.CreateBookRequest{
		{Title: "The Go Programming Language", Author: "Alan A. A. Donovan; Brian W. Kernighan", ISBN: "978-0134190440", Category: "Computing", TotalCopies: 3},
		{Title: "Structure and Interpretation of Computer Programs", Author: "Harold Abelson; Gerald Jay Sussman", ISBN: "978-0262510875", Category: "Computing", TotalCopies: 2},
		{Title: "A Brief History of Time", Author: "Stephen Hawking", ISBN: "978-0553380163", Category: "Science", TotalCopies: 4},
	}

	failures := 0
	for _, b := range seeds {
		_, err := repo.Create(ctx, b)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "seeded book", "isbn", b.ISBN)
		case errors.Is(err, data.ErrISBNExists):
			// Already seeded.
		default:
			logger.ErrorContext(ctx, "seed book failed", "isbn", b.ISBN, "error", err)
			failures++
		}
	}
	return failures
}
