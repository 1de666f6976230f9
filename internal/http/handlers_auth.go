package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/service"
)

// GuardInterface defines the session guard operations used by the HTTP layer.
type GuardInterface interface {
	EnsureActive(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Authenticate(ctx context.Context, input service.LoginInput) (*domainauth.Principal, error)
	CreateSession(ctx context.Context, principal domainauth.Principal, clientIP string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID, clientIP string) error
	IssueCSRFToken(ctx context.Context, sessionID string) (string, error)
	VerifyCSRFToken(ctx context.Context, sessionID, token string) bool
	ResolveLandingRoute(role domainauth.Role) service.Route
}

// AuthHandlers provides HTTP handlers for login, logout, and session status.
type AuthHandlers struct {
	Guard        GuardInterface
	Renderer     *TemplateRenderer
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginPageData carries the template data for the login form.
type loginPageData struct {
	Error       string
	RedirectURI string
}

// LoginPage renders the login form.
// GET /login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already signed in? Go straight to the landing page for the role.
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if session, ensureErr := h.Guard.EnsureActive(r.Context(), cookie.Value); ensureErr == nil && session != nil && session.Authenticated() {
			route := h.Guard.ResolveLandingRoute(session.Role)
			if !route.SignOut {
				http.Redirect(w, r, route.Destination, http.StatusSeeOther)
				return
			}
		}
	}

	h.renderLogin(w, r, loginPageData{
		RedirectURI: safeRedirectPath(r.URL.Query().Get("redirect_uri")),
	})
}

// Login verifies credentials and creates a session.
// POST /login with form fields "username" and "password".
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
		return
	}

	ip := clientIP(r)
	principal, err := h.Guard.Authenticate(r.Context(), service.LoginInput{
		Identifier: r.PostFormValue("username"),
		Secret:     r.PostFormValue("password"),
		ClientIP:   ip,
	})
	if err != nil {
		// Every failure renders the same message; the reason is in the audit log.
		h.respondLoginFailure(w, r)
		return
	}

	session, err := h.Guard.CreateSession(r.Context(), *principal, ip)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "session creation failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "session_creation_failed",
			Err:     errors.New("unable to create session"),
		})
		return
	}

	setSessionCookie(w, r, h.CookieDomain, session.ID)

	if !isBrowserRequest(r) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"user":          session.View(),
		})
		return
	}

	http.Redirect(w, r, h.postLoginDestination(r, session.Role), http.StatusSeeOther)
}

// postLoginDestination picks the redirect target after a successful login:
// a validated redirect_uri from the form if present, otherwise the landing
// route for the principal's role.
func (h *AuthHandlers) postLoginDestination(r *http.Request, role domainauth.Role) string {
	if candidate := r.PostFormValue("redirect_uri"); candidate != "" {
		if safe := safeRedirectPath(candidate); safe != "/" {
			return safe
		}
	}

	route := h.Guard.ResolveLandingRoute(role)
	return route.Destination
}

func (h *AuthHandlers) respondLoginFailure(w http.ResponseWriter, r *http.Request) {
	if !isBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "invalid_credentials",
			Err:     service.ErrInvalidCredentials,
		})
		return
	}

	w.WriteHeader(http.StatusUnauthorized)
	h.renderLogin(w, r, loginPageData{
		Error:       "Invalid username or password",
		RedirectURI: safeRedirectPath(r.PostFormValue("redirect_uri")),
	})
}

func (h *AuthHandlers) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData) {
	if h.Renderer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := h.Renderer.Render(w, "login", data); err != nil {
		h.logger().ErrorContext(r.Context(), "login page render failed", "error", err)
	}
}

// Logout destroys the session and clears the cookie.
// POST /logout. The context session wins over the cookie: auth middleware may
// have rotated the session ID after the cookie header was sent.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if session, ok := GetUserSessionFromContext(r.Context()); ok {
		sessionID = session.ID
	} else if cookie, err := r.Cookie(SessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	if sessionID != "" {
		if logoutErr := h.Guard.Logout(r.Context(), sessionID, clientIP(r)); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	clearSessionCookie(w, r, h.CookieDomain)

	if !isBrowserRequest(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Guard.EnsureActive(r.Context(), cookie.Value)
	if err != nil || session == nil || !session.Authenticated() {
		clearSessionCookie(w, r, h.CookieDomain)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	if session.ID != cookie.Value {
		setSessionCookie(w, r, h.CookieDomain, session.ID)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          session.View(),
	})
}

// CSRFToken returns the session's CSRF token for AJAX callers.
// GET /auth/csrf. Requires a live session (registered behind RequireAuth).
func (h *AuthHandlers) CSRFToken(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	token, err := h.Guard.IssueCSRFToken(r.Context(), session.ID)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "csrf_token_failed",
			Err:     errors.New("unable to issue CSRF token"),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}
