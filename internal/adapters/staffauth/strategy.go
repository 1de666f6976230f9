package staffauth

// Package staffauth implements the first credential tier: admin and
// librarian accounts with bcrypt password hashes in the credential store.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/campuslib/campuslib/internal/data"
	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/domain/model"
	"github.com/campuslib/campuslib/internal/ports"
)

// StaffDirectory is the slice of the credential store this tier needs.
type StaffDirectory interface {
	FindActiveByUsername(ctx context.Context, username string) (*model.StaffUser, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// Strategy authenticates staff credentials against stored bcrypt hashes.
type Strategy struct {
	Directory    StaffDirectory
	TimeProvider data.TimeProvider
	Logger       *slog.Logger
}

var _ ports.AuthStrategy = (*Strategy)(nil)

// Name identifies the tier in operational logs.
func (s *Strategy) Name() string { return "staff" }

// Authenticate looks up an active staff account and verifies the password
// hash. A missing account or a hash mismatch returns (nil, nil) so the guard
// falls through to the member tier. On success the account's last_login is
// updated best-effort: a failed update is logged but never blocks the login.
func (s *Strategy) Authenticate(ctx context.Context, creds ports.Credentials) (*domainauth.Principal, error) {
	user, err := s.Directory.FindActiveByUsername(ctx, creds.Identifier)
	if err != nil {
		if errors.Is(err, data.ErrStaffUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("staff lookup: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Secret)) != nil {
		return nil, nil
	}

	now := s.now()
	if updateErr := s.Directory.UpdateLastLogin(ctx, user.ID, now); updateErr != nil {
		s.logger().WarnContext(ctx, "update staff last_login failed",
			"staff_id", user.ID, "error", updateErr)
	}

	principal := user.Principal()
	return &principal, nil
}

func (s *Strategy) now() time.Time {
	if s.TimeProvider != nil {
		return s.TimeProvider.Now()
	}
	return time.Now()
}

func (s *Strategy) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HashPassword produces a bcrypt hash for a new staff account password
// using the default work factor.
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, bcrypt.DefaultCost)
}

// HashPasswordCost produces a bcrypt hash with an explicit work factor.
// A cost outside bcrypt's supported range falls back to the default.
func HashPasswordCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
