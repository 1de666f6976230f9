package httpx

import (
	"errors"
	"net/http"

	"github.com/campuslib/campuslib/internal/data"
	"github.com/campuslib/campuslib/internal/domain/model"
	"github.com/campuslib/campuslib/internal/service"
)

// BorrowingHandlers provides HTTP handlers for circulation operations.
type BorrowingHandlers struct {
	Svc *service.BorrowingService
}

// Borrow handles HTTP requests to issue a book to a member.
// The issuing librarian is the authenticated principal.
func (h *BorrowingHandlers) Borrow(w http.ResponseWriter, r *http.Request) {
	var req model.BorrowRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	// The issuer comes from the session, never from the payload.
	if session, ok := GetUserSessionFromContext(r.Context()); ok {
		req.IssuedBy = session.PrincipalID
	}

	borrowing, err := h.Svc.Borrow(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBorrowingNotAllowed):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "lending_policy", Err: err})
		case errors.Is(err, data.ErrNoCopiesAvailable):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "no_copies_available", Err: err})
		case errors.Is(err, data.ErrBookNotFound), errors.Is(err, data.ErrMemberNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "borrow_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusCreated, borrowing)
}

// Return handles HTTP requests to process a book return.
func (h *BorrowingHandlers) Return(w http.ResponseWriter, r *http.Request) {
	borrowing, err := h.Svc.Return(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrBorrowingNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
		case errors.Is(err, data.ErrAlreadyReturned):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "already_returned", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "return_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusOK, borrowing)
}

// GetByID handles HTTP requests for a single borrowing.
func (h *BorrowingHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	borrowing, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, data.ErrBorrowingNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, borrowing)
}

// List handles HTTP requests to list borrowings.
// Supports member_id, book_id, status, limit, and offset query params.
func (h *BorrowingHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, 200)
	opts := model.BorrowingsListOptions{
		Limit:    limit,
		Offset:   offset,
		MemberID: optionalQuery(r, "member_id"),
		BookID:   optionalQuery(r, "book_id"),
	}
	if raw := optionalQuery(r, "status"); raw != nil {
		status := model.BorrowingStatus(*raw)
		if !status.Valid() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_status",
				Err:     errors.New("status must be one of: active, overdue, returned"),
			})
			return
		}
		opts.Status = &status
	}

	borrowings, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, borrowings)
}
