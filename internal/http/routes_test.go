package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
)

func newTestRouter(guard GuardInterface) http.Handler {
	return NewRouter(RouterServices{Guard: guard})
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(&stubGuard{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestRouter_AuthStatusIsPublic(t *testing.T) {
	router := newTestRouter(&stubGuard{})

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestRouter_APIRequiresAuth(t *testing.T) {
	router := newTestRouter(&stubGuard{})

	for _, path := range []string{
		"/api/books",
		"/api/borrowings",
		"/api/fines",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "path %s should require auth", path)
	}
}

func TestRouter_StudentCannotManageCatalog(t *testing.T) {
	guard := &stubGuard{
		ensureActiveFunc: func(ctx context.Context, sessionID string) (*domainauth.Session, error) {
			return testSession(sessionID, domainauth.RoleStudent), nil
		},
	}
	router := newTestRouter(guard)

	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "student-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_AdminOnlyEndpoints(t *testing.T) {
	guard := &stubGuard{
		ensureActiveFunc: func(ctx context.Context, sessionID string) (*domainauth.Session, error) {
			return testSession(sessionID, domainauth.RoleLibrarian), nil
		},
	}
	router := newTestRouter(guard)

	for _, path := range []string{"/api/staff", "/api/security-events"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "librarian-session"})
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, "path %s should be admin only", path)
	}
}

func TestRouter_StateChangeRequiresCSRF(t *testing.T) {
	guard := &stubGuard{
		ensureActiveFunc: func(ctx context.Context, sessionID string) (*domainauth.Session, error) {
			return testSession(sessionID, domainauth.RoleLibrarian), nil
		},
		verifyCSRFTokenFunc: func(ctx context.Context, sessionID, token string) bool {
			return token == "valid-token"
		},
	}
	router := newTestRouter(guard)

	// Without a token the request is rejected before reaching the handler.
	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "librarian-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "CSRF")
}

func TestRouter_LogoutRequiresCSRF(t *testing.T) {
	logoutCalls := 0
	guard := &stubGuard{
		ensureActiveFunc: func(ctx context.Context, sessionID string) (*domainauth.Session, error) {
			return testSession(sessionID, domainauth.RoleLibrarian), nil
		},
		verifyCSRFTokenFunc: func(ctx context.Context, sessionID, token string) bool {
			return token == "valid-token"
		},
		logoutFunc: func(ctx context.Context, sessionID, clientIP string) error {
			logoutCalls++
			return nil
		},
	}
	router := newTestRouter(guard)

	// A cross-site form post carries the cookie but no token; the session
	// must survive.
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "live-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, logoutCalls, "a forged logout must not destroy the session")

	// The real logout form includes the session-bound token.
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "live-session"})
	req.Header.Set(CSRFHeaderName, "valid-token")
	w = httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, 1, logoutCalls)
}

func TestRouter_IndexRedirectsAnonymousToLogin(t *testing.T) {
	router := newTestRouter(&stubGuard{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRouter_IndexRoutesByRole(t *testing.T) {
	tests := []struct {
		role     domainauth.Role
		expected string
	}{
		{domainauth.RoleAdmin, "/admin"},
		{domainauth.RoleLibrarian, "/librarian"},
		{domainauth.RoleStudent, "/member"},
		{domainauth.RoleStaff, "/member"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			guard := &stubGuard{
				ensureActiveFunc: func(ctx context.Context, sessionID string) (*domainauth.Session, error) {
					return testSession(sessionID, tt.role), nil
				},
			}
			router := newTestRouter(guard)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "live-session"})
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.expected, w.Header().Get("Location"))
		})
	}
}

func TestRouter_IndexSignsOutCorruptRole(t *testing.T) {
	guard := &stubGuard{
		ensureActiveFunc: func(ctx context.Context, sessionID string) (*domainauth.Session, error) {
			return testSession(sessionID, domainauth.Role("superuser")), nil
		},
	}
	router := newTestRouter(guard)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "corrupt-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "expected session cookie to be cleared on forced sign-out")
}
