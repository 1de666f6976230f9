package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore.Get when no session exists
// for the given ID (never stored, expired, or deleted).
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves user sessions keyed by the
// transport-supplied session identifier.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	// Get returns ErrSessionNotFound when the ID resolves to nothing.
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// Credentials carries the raw login form input into a credential tier.
type Credentials struct {
	Identifier string
	Secret     string
}

// AuthStrategy is one credential tier. Strategies are tried in order by the
// session guard; the first one to return a principal wins.
//
// Authenticate returns (nil, nil) when the tier simply has no matching
// principal or the secret does not verify, letting the guard fall through to
// the next tier. A non-nil error means the credential store itself failed.
type AuthStrategy interface {
	// Name identifies the tier in operational logs.
	Name() string
	Authenticate(ctx context.Context, creds Credentials) (*domainauth.Principal, error)
}

// SecurityEventSink records authentication and authorization events.
// Implementations are append-only; the guard never reads events back.
type SecurityEventSink interface {
	Append(ctx context.Context, event domainauth.SecurityEvent) error
}
