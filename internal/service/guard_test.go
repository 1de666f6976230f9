package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslib/campuslib/internal/data"
	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	mockauth "github.com/campuslib/campuslib/internal/mocks/auth"
	"github.com/campuslib/campuslib/internal/ports"
)

type guardFixture struct {
	guard    *SessionGuard
	store    *mockauth.MemorySessionStore
	events   *mockauth.MemoryEventSink
	clock    *data.FixedTimeProvider
	staff    *mockauth.StubStrategy
	member   *mockauth.StubStrategy
	baseTime time.Time
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := mockauth.NewMemorySessionStore()
	events := &mockauth.MemoryEventSink{}
	clock := data.NewFixedTimeProvider(base)
	staff := &mockauth.StubStrategy{
		TierName:   "staff",
		Identifier: "pat",
		Secret:     "s3cret",
		Principal: &domainauth.Principal{
			ID: "staff-1", Username: "pat", DisplayName: "Pat Librarian",
			Role: domainauth.RoleLibrarian,
		},
	}
	member := &mockauth.StubStrategy{
		TierName:   "member",
		Identifier: "S-2024-001",
		Secret:     "S-2024-001",
		Principal: &domainauth.Principal{
			ID: "member-1", Username: "S-2024-001", DisplayName: "Alex Student",
			Role: domainauth.RoleStudent,
		},
	}
	guard := NewSessionGuard(SessionGuardOptions{
		Sessions:     store,
		Strategies:   []ports.AuthStrategy{staff, member},
		Events:       events,
		TimeProvider: clock,
	})
	return &guardFixture{
		guard: guard, store: store, events: events, clock: clock,
		staff: staff, member: member, baseTime: base,
	}
}

func (f *guardFixture) login(t *testing.T, identifier, secret string) *domainauth.Session {
	t.Helper()
	ctx := context.Background()
	principal, err := f.guard.Authenticate(ctx, LoginInput{
		Identifier: identifier, Secret: secret, ClientIP: "10.0.0.5",
	})
	require.NoError(t, err)
	sess, err := f.guard.CreateSession(ctx, *principal, "10.0.0.5")
	require.NoError(t, err)
	return sess
}

func TestAuthenticateStaffTierWins(t *testing.T) {
	f := newGuardFixture(t)

	principal, err := f.guard.Authenticate(context.Background(), LoginInput{
		Identifier: "pat", Secret: "s3cret", ClientIP: "10.0.0.5",
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleLibrarian, principal.Role)
	assert.Equal(t, 0, f.member.Calls, "member tier must not run after a staff match")
	assert.Equal(t, []string{"Successful admin/librarian login"}, f.events.Descriptions())
}

func TestAuthenticateFallsThroughToMemberTier(t *testing.T) {
	f := newGuardFixture(t)

	principal, err := f.guard.Authenticate(context.Background(), LoginInput{
		Identifier: "S-2024-001", Secret: "S-2024-001", ClientIP: "10.0.0.5",
	})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleStudent, principal.Role)
	assert.Equal(t, 1, f.staff.Calls)
	assert.Equal(t, []string{"Successful student/staff login"}, f.events.Descriptions())
}

func TestAuthenticateNoMatchIsGenericFailure(t *testing.T) {
	f := newGuardFixture(t)

	principal, err := f.guard.Authenticate(context.Background(), LoginInput{
		Identifier: "ghost", Secret: "nope", ClientIP: "10.0.0.5",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, principal)
	assert.Equal(t, []string{"Failed login attempt for username: ghost"}, f.events.Descriptions())
	require.Len(t, f.events.Events, 1)
	assert.Nil(t, f.events.Events[0].PrincipalID)
	assert.Equal(t, "10.0.0.5", f.events.Events[0].IPAddress)
}

func TestAuthenticateStoreFaultCollapsesToGenericFailure(t *testing.T) {
	f := newGuardFixture(t)
	f.staff.Err = errors.New("connection refused")

	principal, err := f.guard.Authenticate(context.Background(), LoginInput{
		Identifier: "pat", Secret: "s3cret", ClientIP: "10.0.0.5",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, principal)
}

func TestAuthenticateEmptyCredentialsRejected(t *testing.T) {
	f := newGuardFixture(t)

	_, err := f.guard.Authenticate(context.Background(), LoginInput{ClientIP: "10.0.0.5"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 0, f.staff.Calls)
}

func TestCreateSessionInitializesLifecycle(t *testing.T) {
	f := newGuardFixture(t)

	sess := f.login(t, "pat", "s3cret")

	assert.NotEmpty(t, sess.ID)
	assert.Len(t, sess.CSRFToken, 64, "csrf token is 256 bits hex-encoded")
	assert.Equal(t, f.baseTime, sess.LoginTime)
	assert.Equal(t, f.baseTime, sess.LastActivity)
	assert.Equal(t, f.baseTime, sess.LastRegeneration)
	assert.True(t, f.store.Has(sess.ID))
	assert.Contains(t, f.events.Descriptions(), "Session created")
}

func TestEnsureActiveStampsActivityWithinWindow(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")

	f.clock.AddTime(100 * time.Second)
	live, err := f.guard.EnsureActive(context.Background(), sess.ID)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, sess.ID, live.ID, "no rotation inside the interval")
	assert.Equal(t, f.clock.Now(), live.LastActivity)
}

func TestEnsureActiveRotatesAfterInterval(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")

	f.clock.AddTime(DefaultRotationInterval + time.Second)
	live, err := f.guard.EnsureActive(context.Background(), sess.ID)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.NotEqual(t, sess.ID, live.ID)
	assert.Equal(t, sess.CSRFToken, live.CSRFToken, "rotation preserves the csrf token")
	assert.Equal(t, sess.PrincipalID, live.PrincipalID)
	assert.Equal(t, f.clock.Now(), live.LastRegeneration)
	assert.False(t, f.store.Has(sess.ID), "old ID is dead after rotation")
	assert.True(t, f.store.Has(live.ID))
}

func TestEnsureActiveDestroysIdleSession(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")

	f.clock.AddTime(DefaultIdleTimeout + time.Second)
	live, err := f.guard.EnsureActive(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Nil(t, live)
	assert.False(t, f.store.Has(sess.ID))
}

func TestEnsureActiveActivityDefersExpiry(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")
	id := sess.ID

	// Touch the session every 45 minutes for three hours. Each touch resets
	// the idle clock so the session outlives the absolute timeout.
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		f.clock.AddTime(45 * time.Minute)
		live, err := f.guard.EnsureActive(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, live)
		id = live.ID
	}
	assert.True(t, f.guard.IsAuthenticated(ctx, id))
}

func TestEnsureActiveDestroysSessionWithCorruptRole(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")

	stored, err := f.store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	stored.Role = "superuser"
	require.NoError(t, f.store.Save(context.Background(), stored))

	live, err := f.guard.EnsureActive(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Nil(t, live)
	assert.False(t, f.store.Has(sess.ID))
}

func TestEnsureActiveUnknownSessionIsAnonymous(t *testing.T) {
	f := newGuardFixture(t)

	live, err := f.guard.EnsureActive(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, live)

	live, err = f.guard.EnsureActive(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, live)
}

func TestHasRoleAdminGrantsEverything(t *testing.T) {
	f := newGuardFixture(t)
	f.staff.Principal.Role = domainauth.RoleAdmin
	sess := f.login(t, "pat", "s3cret")
	ctx := context.Background()

	for _, required := range []domainauth.Role{
		domainauth.RoleAdmin, domainauth.RoleLibrarian,
		domainauth.RoleStudent, domainauth.RoleStaff,
	} {
		assert.True(t, f.guard.HasRole(ctx, sess.ID, required), "admin must satisfy %s", required)
	}
}

func TestHasRoleExactMatchForOthers(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret") // librarian
	ctx := context.Background()

	assert.True(t, f.guard.HasRole(ctx, sess.ID, domainauth.RoleLibrarian))
	assert.False(t, f.guard.HasRole(ctx, sess.ID, domainauth.RoleAdmin))
	assert.False(t, f.guard.HasRole(ctx, sess.ID, domainauth.RoleStudent))
}

func TestCurrentPrincipalProjectsSafeFields(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")

	view, err := f.guard.CurrentPrincipal(context.Background(), sess.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "staff-1", view.PrincipalID)
	assert.Equal(t, "pat", view.Username)
	assert.Equal(t, "Pat Librarian", view.DisplayName)
	assert.Equal(t, domainauth.RoleLibrarian, view.Role)
}

func TestCurrentPrincipalAnonymous(t *testing.T) {
	f := newGuardFixture(t)

	view, err := f.guard.CurrentPrincipal(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestLogoutDestroysSessionAndRecordsEvent(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")
	ctx := context.Background()

	require.NoError(t, f.guard.Logout(ctx, sess.ID, "10.0.0.5"))
	assert.False(t, f.store.Has(sess.ID))
	assert.Contains(t, f.events.Descriptions(), "User logout")

	// Repeated logout is a no-op and records nothing further.
	before := len(f.events.Events)
	require.NoError(t, f.guard.Logout(ctx, sess.ID, "10.0.0.5"))
	require.NoError(t, f.guard.Logout(ctx, "", "10.0.0.5"))
	assert.Len(t, f.events.Events, before)
}

func TestLogoutAfterIdleExpiryIsSilent(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")
	before := len(f.events.Events)

	f.clock.AddTime(DefaultIdleTimeout + time.Second)
	require.NoError(t, f.guard.Logout(context.Background(), sess.ID, "10.0.0.5"))
	assert.False(t, f.store.Has(sess.ID))
	assert.Len(t, f.events.Events, before, "an idle-expired session signs out without an event")
	assert.NotContains(t, f.events.Descriptions(), "User logout")
}

func TestIssueCSRFTokenStablePerSession(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")
	ctx := context.Background()

	first, err := f.guard.IssueCSRFToken(ctx, sess.ID)
	require.NoError(t, err)
	second, err := f.guard.IssueCSRFToken(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, sess.CSRFToken, first)
}

func TestVerifyCSRFToken(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")
	ctx := context.Background()

	assert.True(t, f.guard.VerifyCSRFToken(ctx, sess.ID, sess.CSRFToken))
	assert.False(t, f.guard.VerifyCSRFToken(ctx, sess.ID, "forged"))
	assert.False(t, f.guard.VerifyCSRFToken(ctx, sess.ID, ""))
	assert.False(t, f.guard.VerifyCSRFToken(ctx, "missing", sess.CSRFToken))
}

func TestVerifyCSRFTokenSurvivesRotation(t *testing.T) {
	f := newGuardFixture(t)
	sess := f.login(t, "pat", "s3cret")
	ctx := context.Background()

	f.clock.AddTime(DefaultRotationInterval + time.Second)
	live, err := f.guard.EnsureActive(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.True(t, f.guard.VerifyCSRFToken(ctx, live.ID, sess.CSRFToken))
}

func TestResolveLandingRoute(t *testing.T) {
	f := newGuardFixture(t)

	assert.Equal(t, Route{Destination: "/admin"}, f.guard.ResolveLandingRoute(domainauth.RoleAdmin))
	assert.Equal(t, Route{Destination: "/librarian"}, f.guard.ResolveLandingRoute(domainauth.RoleLibrarian))
	assert.Equal(t, Route{Destination: "/member"}, f.guard.ResolveLandingRoute(domainauth.RoleStudent))
	assert.Equal(t, Route{Destination: "/member"}, f.guard.ResolveLandingRoute(domainauth.RoleStaff))
	assert.Equal(t, Route{Destination: "/login", SignOut: true}, f.guard.ResolveLandingRoute("superuser"))
	assert.Equal(t, Route{Destination: "/login", SignOut: true}, f.guard.ResolveLandingRoute(""))
}

func TestEventSinkFailureIsSuppressed(t *testing.T) {
	f := newGuardFixture(t)
	f.events.FailAppend = errors.New("audit table unreachable")

	principal, err := f.guard.Authenticate(context.Background(), LoginInput{
		Identifier: "pat", Secret: "s3cret", ClientIP: "10.0.0.5",
	})
	require.NoError(t, err, "audit failures must never block login")
	require.NotNil(t, principal)

	_, err = f.guard.CreateSession(context.Background(), *principal, "10.0.0.5")
	require.NoError(t, err)
}

func TestEventsCarryGuardClockTimestamps(t *testing.T) {
	f := newGuardFixture(t)
	f.login(t, "pat", "s3cret")

	require.NotEmpty(t, f.events.Events)
	for _, e := range f.events.Events {
		assert.Equal(t, f.baseTime, e.Timestamp)
	}
}
