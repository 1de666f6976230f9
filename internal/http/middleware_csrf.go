package httpx

import (
	"net/http"
	"strings"
)

const (
	// CSRFHeaderName is the name of the CSRF header (canonical form).
	CSRFHeaderName = "X-Csrf-Token"
	// CSRFFormFieldName is the name of the CSRF form field.
	CSRFFormFieldName = "csrf_token"
)

// CSRFProtection returns a middleware that validates the session-bound CSRF
// token on state-changing requests (POST, PUT, DELETE, PATCH). The token is
// issued by the session guard and lives inside the server-side session, so
// this middleware must run after RequireAuth/RequireRole has attached the
// session to the request context.
//
// The token can be submitted via the X-Csrf-Token header (AJAX requests) or
// the csrf_token form field (standard form submissions). GET, HEAD, OPTIONS,
// and TRACE requests are exempt.
func CSRFProtection(guard GuardInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresCSRFValidation(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			session, ok := GetUserSessionFromContext(r.Context())
			if !ok {
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			token := submittedCSRFToken(r)
			if !guard.VerifyCSRFToken(r.Context(), session.ID, token) {
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requiresCSRFValidation returns true if the HTTP method requires CSRF validation.
// Safe methods (GET, HEAD, OPTIONS, TRACE) are exempt.
func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

// submittedCSRFToken extracts the CSRF token from the header or form field.
// The header wins when both are present.
func submittedCSRFToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeaderName); token != "" {
		return token
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return r.FormValue(CSRFFormFieldName)
	}

	return ""
}
