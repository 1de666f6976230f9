package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campuslib/campuslib/internal/data"
	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/ports"
)

// Session lifecycle defaults. The session ID is rotated on activity after
// RotationInterval; a session idle longer than IdleTimeout is destroyed.
const (
	DefaultIdleTimeout      = 3600 * time.Second
	DefaultRotationInterval = 300 * time.Second
)

// ErrInvalidCredentials is the only failure login callers ever see.
// Unknown identifier, wrong secret, and credential-store faults all collapse
// into it so responses leak nothing about which part failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Route is a resolved post-login (or post-denial) destination.
// SignOut tells the HTTP layer to clear the session cookie before redirecting.
type Route struct {
	Destination string
	SignOut     bool
}

// SessionGuardOptions groups dependencies for SessionGuard.
type SessionGuardOptions struct {
	Sessions     ports.SessionStore
	Strategies   []ports.AuthStrategy
	Events       ports.SecurityEventSink
	TimeProvider data.TimeProvider
	Logger       *slog.Logger

	// Zero values select the defaults above.
	IdleTimeout      time.Duration
	RotationInterval time.Duration
}

// SessionGuard owns the session lifecycle and every access decision:
// credential verification across the ordered tiers, session creation,
// idle expiry, session ID rotation, CSRF tokens, and role checks.
type SessionGuard struct {
	sessions     ports.SessionStore
	strategies   []ports.AuthStrategy
	events       ports.SecurityEventSink
	timeProvider data.TimeProvider
	logger       *slog.Logger
	idleTimeout  time.Duration
	rotation     time.Duration
}

// NewSessionGuard constructs a SessionGuard.
func NewSessionGuard(opts SessionGuardOptions) *SessionGuard {
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	rotation := opts.RotationInterval
	if rotation <= 0 {
		rotation = DefaultRotationInterval
	}
	return &SessionGuard{
		sessions:     opts.Sessions,
		strategies:   opts.Strategies,
		events:       opts.Events,
		timeProvider: tp,
		logger:       logger,
		idleTimeout:  idle,
		rotation:     rotation,
	}
}

// EnsureActive loads the session for the given ID and applies the lifecycle
// rules: an idle session is destroyed, a session carrying an unrecognized
// role is destroyed, and a session past the rotation interval gets a new ID
// with its content (including the CSRF token) carried over. LastActivity is
// stamped on every call. The returned session's ID is the one the transport
// must present from now on; (nil, nil) means no live session exists.
//
// Every other session-scoped operation goes through EnsureActive first.
func (g *SessionGuard) EnsureActive(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	now := g.timeProvider.Now()

	if now.Sub(sess.LastActivity) > g.idleTimeout {
		if deleteErr := g.sessions.Delete(ctx, sessionID); deleteErr != nil {
			g.logger.WarnContext(ctx, "delete expired session failed",
				"session_id", sessionID, "error", deleteErr)
		}
		return nil, nil
	}

	if sess.Authenticated() && !sess.Role.Valid() {
		g.logger.WarnContext(ctx, "destroying session with unrecognized role",
			"principal_id", sess.PrincipalID, "role", string(sess.Role))
		if deleteErr := g.sessions.Delete(ctx, sessionID); deleteErr != nil {
			g.logger.WarnContext(ctx, "delete corrupt session failed",
				"session_id", sessionID, "error", deleteErr)
		}
		return nil, nil
	}

	rotated := false
	if now.Sub(sess.LastRegeneration) > g.rotation {
		oldID := sess.ID
		sess.ID = uuid.New().String()
		sess.LastRegeneration = now
		rotated = true
		if deleteErr := g.sessions.Delete(ctx, oldID); deleteErr != nil {
			g.logger.WarnContext(ctx, "delete rotated session failed",
				"session_id", oldID, "error", deleteErr)
		}
	}

	sess.LastActivity = now
	if saveErr := g.sessions.Save(ctx, sess); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	if rotated {
		g.logger.DebugContext(ctx, "session id rotated", "principal_id", sess.PrincipalID)
	}
	return &sess, nil
}

// LoginInput carries the raw login form submission.
type LoginInput struct {
	Identifier string
	Secret     string
	ClientIP   string
}

// Authenticate runs the ordered credential tiers and returns the principal
// of the first tier that verifies the credentials. Staff accounts (admin,
// librarian) are tried before members. All failure modes, including
// credential-store faults, surface as ErrInvalidCredentials.
func (g *SessionGuard) Authenticate(ctx context.Context, input LoginInput) (*domainauth.Principal, error) {
	if input.Identifier == "" || input.Secret == "" {
		g.recordEvent(ctx, domainauth.SecurityEvent{
			Description: fmt.Sprintf("Failed login attempt for username: %s", input.Identifier),
			IPAddress:   input.ClientIP,
		})
		return nil, ErrInvalidCredentials
	}

	creds := ports.Credentials{Identifier: input.Identifier, Secret: input.Secret}
	for _, strategy := range g.strategies {
		principal, err := strategy.Authenticate(ctx, creds)
		if err != nil {
			g.logger.ErrorContext(ctx, "credential tier failed",
				"tier", strategy.Name(), "error", err)
			return nil, ErrInvalidCredentials
		}
		if principal == nil {
			continue
		}
		g.recordEvent(ctx, domainauth.SecurityEvent{
			Description: loginEventDescription(strategy.Name()),
			PrincipalID: &principal.ID,
			IPAddress:   input.ClientIP,
		})
		return principal, nil
	}

	g.recordEvent(ctx, domainauth.SecurityEvent{
		Description: fmt.Sprintf("Failed login attempt for username: %s", input.Identifier),
		IPAddress:   input.ClientIP,
	})
	return nil, ErrInvalidCredentials
}

func loginEventDescription(tier string) string {
	switch tier {
	case "staff":
		return "Successful admin/librarian login"
	case "member":
		return "Successful student/staff login"
	default:
		return fmt.Sprintf("Successful %s login", tier)
	}
}

// CreateSession persists a fresh session for an authenticated principal and
// returns it. The session gets a new random ID, a CSRF token for its whole
// lifetime, and login/activity/rotation stamps set to now. Any session that
// happened to exist under the new ID is overwritten.
func (g *SessionGuard) CreateSession(ctx context.Context, principal domainauth.Principal, clientIP string) (*domainauth.Session, error) {
	token, err := newCSRFToken()
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}

	now := g.timeProvider.Now()
	sess := domainauth.Session{
		ID:               uuid.New().String(),
		PrincipalID:      principal.ID,
		Username:         principal.Username,
		DisplayName:      principal.DisplayName,
		Role:             principal.Role,
		CSRFToken:        token,
		LoginTime:        now,
		LastActivity:     now,
		LastRegeneration: now,
	}
	if saveErr := g.sessions.Save(ctx, sess); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	g.recordEvent(ctx, domainauth.SecurityEvent{
		Description: "Session created",
		PrincipalID: &principal.ID,
		IPAddress:   clientIP,
	})
	return &sess, nil
}

// IsAuthenticated reports whether the session ID resolves to a live
// authenticated session. Store faults count as unauthenticated.
func (g *SessionGuard) IsAuthenticated(ctx context.Context, sessionID string) bool {
	sess, err := g.EnsureActive(ctx, sessionID)
	if err != nil {
		g.logger.ErrorContext(ctx, "session check failed", "error", err)
		return false
	}
	return sess != nil && sess.Authenticated()
}

// HasRole reports whether the session's principal satisfies the required
// role. Admin satisfies every check.
func (g *SessionGuard) HasRole(ctx context.Context, sessionID string, required domainauth.Role) bool {
	sess, err := g.EnsureActive(ctx, sessionID)
	if err != nil {
		g.logger.ErrorContext(ctx, "role check failed", "error", err)
		return false
	}
	if sess == nil || !sess.Authenticated() {
		return false
	}
	return sess.Role.Grants(required)
}

// CurrentPrincipal returns the safe projection of the session's principal,
// or nil when no live authenticated session exists.
func (g *SessionGuard) CurrentPrincipal(ctx context.Context, sessionID string) (*domainauth.View, error) {
	sess, err := g.EnsureActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.Authenticated() {
		return nil, nil
	}
	view := sess.View()
	return &view, nil
}

// Logout runs the lifecycle check and then destroys the session. A session
// that EnsureActive already killed, idle-expired or corrupt, signs out
// silently; only a live authenticated session records a logout event. The
// operation is idempotent.
func (g *SessionGuard) Logout(ctx context.Context, sessionID, clientIP string) error {
	sess, err := g.EnsureActive(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	if deleteErr := g.sessions.Delete(ctx, sess.ID); deleteErr != nil {
		return fmt.Errorf("delete session: %w", deleteErr)
	}

	if sess.Authenticated() {
		g.recordEvent(ctx, domainauth.SecurityEvent{
			Description: "User logout",
			PrincipalID: &sess.PrincipalID,
			IPAddress:   clientIP,
		})
	}
	return nil
}

// IssueCSRFToken returns the session's CSRF token, generating one only if
// the session somehow lacks it. The token is stable for the session's whole
// lifetime and survives ID rotation.
func (g *SessionGuard) IssueCSRFToken(ctx context.Context, sessionID string) (string, error) {
	sess, err := g.EnsureActive(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", ports.ErrSessionNotFound
	}

	if sess.CSRFToken == "" {
		token, tokenErr := newCSRFToken()
		if tokenErr != nil {
			return "", fmt.Errorf("generate csrf token: %w", tokenErr)
		}
		sess.CSRFToken = token
		if saveErr := g.sessions.Save(ctx, *sess); saveErr != nil {
			return "", fmt.Errorf("save session: %w", saveErr)
		}
	}
	return sess.CSRFToken, nil
}

// VerifyCSRFToken checks a submitted token against the session's token in
// constant time. A missing session, missing stored token, or empty submission
// all fail.
func (g *SessionGuard) VerifyCSRFToken(ctx context.Context, sessionID, token string) bool {
	sess, err := g.EnsureActive(ctx, sessionID)
	if err != nil {
		g.logger.ErrorContext(ctx, "csrf check failed", "error", err)
		return false
	}
	if sess == nil || sess.CSRFToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(token)) == 1
}

// ResolveLandingRoute maps a role to its area of the application. An
// unrecognized role resolves to the public entry with a forced sign-out so
// the transport clears the broken session cookie.
func (g *SessionGuard) ResolveLandingRoute(role domainauth.Role) Route {
	switch role {
	case domainauth.RoleAdmin:
		return Route{Destination: "/admin"}
	case domainauth.RoleLibrarian:
		return Route{Destination: "/librarian"}
	case domainauth.RoleStudent, domainauth.RoleStaff:
		return Route{Destination: "/member"}
	default:
		return Route{Destination: "/login", SignOut: true}
	}
}

// recordEvent appends a security event. Sink failures are logged and
// suppressed; an unreachable audit table must never block authentication.
func (g *SessionGuard) recordEvent(ctx context.Context, event domainauth.SecurityEvent) {
	if g.events == nil {
		return
	}
	event.Timestamp = g.timeProvider.Now()
	if err := g.events.Append(ctx, event); err != nil {
		g.logger.ErrorContext(ctx, "record security event failed",
			"description", event.Description, "error", err)
	}
}

// newCSRFToken returns 256 bits of randomness hex-encoded.
func newCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
