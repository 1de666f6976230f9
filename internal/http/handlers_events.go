package httpx

import (
	"net/http"

	"github.com/campuslib/campuslib/internal/core"
)

// SecurityEventHandlers provides HTTP handlers for the security audit log.
// All routes are admin-only; the log itself is append-only and written by
// the session guard.
type SecurityEventHandlers struct {
	Repo core.SecurityEventRepository
}

// Recent handles HTTP requests for the most recent security events.
func (h *SecurityEventHandlers) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := ParseLimitOffset(r, 100, 500)

	events, err := h.Repo.Recent(r.Context(), limit)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, events)
}
