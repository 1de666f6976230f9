package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/service"
)

func testRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	fsys := fstest.MapFS{
		"login.tmpl": &fstest.MapFile{
			Data: []byte(`{{define "login"}}<form method="post">{{.Error}}</form>{{end}}`),
		},
	}
	renderer, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fsys, Logger: slog.Default()})
	require.NoError(t, err)
	return renderer
}

func loginForm(t *testing.T, values url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLogin_Success_API(t *testing.T) {
	guard := &stubGuard{
		authenticateFunc: func(ctx context.Context, input service.LoginInput) (*domainauth.Principal, error) {
			assert.Equal(t, "librarian1", input.Identifier)
			assert.Equal(t, "correct-password", input.Secret)
			return &domainauth.Principal{
				ID:          "staff-1",
				Username:    "librarian1",
				DisplayName: "Librarian One",
				Role:        domainauth.RoleLibrarian,
			}, nil
		},
	}
	h := &AuthHandlers{Guard: guard}

	req := loginForm(t, url.Values{"username": {"librarian1"}, "password": {"correct-password"}})
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Authenticated bool            `json:"authenticated"`
		User          domainauth.View `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	assert.Equal(t, "librarian1", body.User.Username)
	assert.Equal(t, domainauth.RoleLibrarian, body.User.Role)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			sessionCookie = c
		}
	}
	if assert.NotNil(t, sessionCookie, "expected session cookie") {
		assert.NotEmpty(t, sessionCookie.Value)
		assert.True(t, sessionCookie.HttpOnly)
	}
}

func TestLogin_Success_BrowserRedirectsToLandingRoute(t *testing.T) {
	guard := &stubGuard{
		authenticateFunc: func(ctx context.Context, input service.LoginInput) (*domainauth.Principal, error) {
			return &domainauth.Principal{ID: "staff-1", Username: "admin", Role: domainauth.RoleAdmin}, nil
		},
	}
	h := &AuthHandlers{Guard: guard}

	req := loginForm(t, url.Values{"username": {"admin"}, "password": {"pw"}})
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
}

func TestLogin_Success_BrowserHonorsRedirectURI(t *testing.T) {
	guard := &stubGuard{
		authenticateFunc: func(ctx context.Context, input service.LoginInput) (*domainauth.Principal, error) {
			return &domainauth.Principal{ID: "m-1", Username: "S-2024-001", Role: domainauth.RoleStudent}, nil
		},
	}
	h := &AuthHandlers{Guard: guard}

	req := loginForm(t, url.Values{
		"username":     {"S-2024-001"},
		"password":     {"S-2024-001"},
		"redirect_uri": {"/member"},
	})
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/member", w.Header().Get("Location"))
}

func TestLogin_Success_BrowserRejectsUnsafeRedirectURI(t *testing.T) {
	guard := &stubGuard{
		authenticateFunc: func(ctx context.Context, input service.LoginInput) (*domainauth.Principal, error) {
			return &domainauth.Principal{ID: "staff-1", Username: "admin", Role: domainauth.RoleAdmin}, nil
		},
	}
	h := &AuthHandlers{Guard: guard}

	req := loginForm(t, url.Values{
		"username":     {"admin"},
		"password":     {"pw"},
		"redirect_uri": {"https://evil.example/phish"},
	})
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
}

func TestLogin_Failure_API(t *testing.T) {
	guard := &stubGuard{} // default Authenticate rejects everything
	h := &AuthHandlers{Guard: guard}

	req := loginForm(t, url.Values{"username": {"whoever"}, "password": {"wrong"}})
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_credentials")
}

func TestLogin_Failure_BrowserRendersGenericError(t *testing.T) {
	guard := &stubGuard{}
	h := &AuthHandlers{Guard: guard, Renderer: testRenderer(t)}

	req := loginForm(t, url.Values{"username": {"whoever"}, "password": {"wrong"}})
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// Same message for unknown users and wrong passwords.
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}

func TestLoginPage_RedirectsWhenAlreadySignedIn(t *testing.T) {
	guard := &stubGuard{
		ensureActiveFunc: func(ctx context.Context, sessionID string) (*domainauth.Session, error) {
			return testSession(sessionID, domainauth.RoleLibrarian), nil
		},
	}
	h := &AuthHandlers{Guard: guard, Renderer: testRenderer(t)}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "live-session"})
	w := httptest.NewRecorder()

	h.LoginPage(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/librarian", w.Header().Get("Location"))
}

func TestLoginPage_RendersFormWhenSignedOut(t *testing.T) {
	guard := &stubGuard{}
	h := &AuthHandlers{Guard: guard, Renderer: testRenderer(t)}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()

	h.LoginPage(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<form")
}

func TestLogout_API(t *testing.T) {
	var loggedOut string
	guard := &stubGuard{
		logoutFunc: func(ctx context.Context, sessionID, clientIP string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h := &AuthHandlers{Guard: guard}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session-to-end"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session-to-end", loggedOut)
	assert.Contains(t, w.Body.String(), "signed_out")

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "expected session cookie to be cleared")
}

func TestLogout_Browser(t *testing.T) {
	guard := &stubGuard{}
	h := &AuthHandlers{Guard: guard}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()

	h.Logout(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestStatus_NoCookie(t *testing.T) {
	guard := &stubGuard{}
	h := &AuthHandlers{Guard: guard}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	w := httptest.NewRecorder()

	h.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestStatus_LiveSession(t *testing.T) {
	guard := &stubGuard{}
	h := &AuthHandlers{Guard: guard}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "test-session-id"})
	w := httptest.NewRecorder()

	h.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Authenticated bool            `json:"authenticated"`
		User          domainauth.View `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	assert.Equal(t, "testuser", body.User.Username)
}

func TestCSRFTokenHandler(t *testing.T) {
	guard := &stubGuard{}
	h := &AuthHandlers{Guard: guard}

	session := testSession("csrf-session", domainauth.RoleStudent)
	req := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	req = req.WithContext(SetSessionInContext(req.Context(), session))
	w := httptest.NewRecorder()

	h.CSRFToken(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test-csrf-token")
}

func TestCSRFTokenHandler_NoSession(t *testing.T) {
	guard := &stubGuard{}
	h := &AuthHandlers{Guard: guard}

	req := httptest.NewRequest(http.MethodGet, "/auth/csrf", nil)
	w := httptest.NewRecorder()

	h.CSRFToken(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
