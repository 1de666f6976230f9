package memberauth

// Package memberauth implements the second credential tier: library members
// (students and university staff) whose password is their ID number.

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/campuslib/campuslib/internal/data"
	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/domain/model"
	"github.com/campuslib/campuslib/internal/ports"
)

// MemberDirectory is the slice of the member store this tier needs.
type MemberDirectory interface {
	FindActiveByIDNumber(ctx context.Context, idNumber string) (*model.Member, error)
}

// Strategy authenticates members by ID number. The secret must equal the
// ID number; there is no separate member password.
type Strategy struct {
	Directory MemberDirectory
}

var _ ports.AuthStrategy = (*Strategy)(nil)

// Name identifies the tier in operational logs.
func (s *Strategy) Name() string { return "member" }

// Authenticate looks up an active member by ID number and verifies that the
// submitted secret matches it. A missing member or a mismatch returns
// (nil, nil); the guard treats that as a failed login since this is the last
// tier in the chain.
func (s *Strategy) Authenticate(ctx context.Context, creds ports.Credentials) (*domainauth.Principal, error) {
	member, err := s.Directory.FindActiveByIDNumber(ctx, creds.Identifier)
	if err != nil {
		if errors.Is(err, data.ErrMemberNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("member lookup: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(creds.Secret), []byte(member.IDNumber)) != 1 {
		return nil, nil
	}

	principal := member.Principal()
	return &principal, nil
}
