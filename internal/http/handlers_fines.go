package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/campuslib/campuslib/internal/data"
	"github.com/campuslib/campuslib/internal/domain/model"
	"github.com/campuslib/campuslib/internal/service"
)

// FineHandlers provides HTTP handlers for fine operations.
type FineHandlers struct {
	Svc *service.FineService
}

// List handles HTTP requests to list fines.
// Supports member_id, status, limit, and offset query params.
func (h *FineHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, 200)
	opts := model.FinesListOptions{
		Limit:    limit,
		Offset:   offset,
		MemberID: optionalQuery(r, "member_id"),
	}
	if raw := optionalQuery(r, "status"); raw != nil {
		status := model.FineStatus(*raw)
		if !status.Valid() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_status",
				Err:     errors.New("status must be one of: outstanding, paid, waived"),
			})
			return
		}
		opts.Status = &status
	}

	fines, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, fines)
}

// GetByID handles HTTP requests for a single fine.
func (h *FineHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	fine, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, data.ErrFineNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, fine)
}

// Pay handles HTTP requests to record a fine payment.
func (h *FineHandlers) Pay(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.Svc.Pay)
}

// Waive handles HTTP requests to waive a fine.
func (h *FineHandlers) Waive(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.Svc.Waive)
}

func (h *FineHandlers) settle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) (*model.Fine, error)) {
	fine, err := op(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, data.ErrFineNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
		case errors.Is(err, data.ErrFineAlreadySettled):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "already_settled", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "settle_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusOK, fine)
}
