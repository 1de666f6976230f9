package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
)

func csrfTestHandler(t *testing.T, guard GuardInterface, session *domainauth.Session) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CSRFProtection(guard)(inner)
	if session == nil {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), session)))
	})
}

func TestCSRFProtection_SafeMethodsExempt(t *testing.T) {
	guard := &stubGuard{
		verifyCSRFTokenFunc: func(ctx context.Context, sessionID, token string) bool {
			t.Error("VerifyCSRFToken should not be called for safe methods")
			return false
		},
	}
	handler := csrfTestHandler(t, guard, nil)

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "/api/books", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "method %s should bypass CSRF validation", method)
	}
}

func TestCSRFProtection_NoSession(t *testing.T) {
	guard := &stubGuard{}
	handler := csrfTestHandler(t, guard, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFProtection_ValidHeaderToken(t *testing.T) {
	session := testSession("csrf-session", domainauth.RoleLibrarian)
	guard := &stubGuard{
		verifyCSRFTokenFunc: func(ctx context.Context, sessionID, token string) bool {
			assert.Equal(t, "csrf-session", sessionID)
			return token == "valid-token"
		},
	}
	handler := csrfTestHandler(t, guard, session)

	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	req.Header.Set(CSRFHeaderName, "valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFProtection_ValidFormToken(t *testing.T) {
	session := testSession("csrf-session", domainauth.RoleLibrarian)
	guard := &stubGuard{
		verifyCSRFTokenFunc: func(ctx context.Context, sessionID, token string) bool {
			return token == "valid-token"
		},
	}
	handler := csrfTestHandler(t, guard, session)

	form := url.Values{CSRFFormFieldName: {"valid-token"}}
	req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFProtection_InvalidToken(t *testing.T) {
	session := testSession("csrf-session", domainauth.RoleLibrarian)
	guard := &stubGuard{
		verifyCSRFTokenFunc: func(ctx context.Context, sessionID, token string) bool {
			return false
		},
	}
	handler := csrfTestHandler(t, guard, session)

	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	req.Header.Set(CSRFHeaderName, "wrong-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFProtection_MissingToken(t *testing.T) {
	session := testSession("csrf-session", domainauth.RoleLibrarian)
	guard := &stubGuard{
		verifyCSRFTokenFunc: func(ctx context.Context, sessionID, token string) bool {
			return token != ""
		},
	}
	handler := csrfTestHandler(t, guard, session)

	req := httptest.NewRequest(http.MethodDelete, "/api/books/abc", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFProtection_HeaderWinsOverForm(t *testing.T) {
	session := testSession("csrf-session", domainauth.RoleLibrarian)
	var seen string
	guard := &stubGuard{
		verifyCSRFTokenFunc: func(ctx context.Context, sessionID, token string) bool {
			seen = token
			return true
		},
	}
	handler := csrfTestHandler(t, guard, session)

	form := url.Values{CSRFFormFieldName: {"form-token"}}
	req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(CSRFHeaderName, "header-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "header-token", seen)
}
