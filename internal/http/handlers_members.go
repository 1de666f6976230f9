package httpx

import (
	"errors"
	"net/http"

	"github.com/campuslib/campuslib/internal/core"
	"github.com/campuslib/campuslib/internal/data"
	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// MemberHandlers provides HTTP handlers for member registry operations.
type MemberHandlers struct {
	Repo core.MemberRepository
}

// Create handles HTTP requests to register a member.
func (h *MemberHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateMemberRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	member, err := h.Repo.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, data.ErrMemberNumberExists) {
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "id_number_conflict", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "create_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusCreated, member)
}

// GetByID handles HTTP requests for a single member.
func (h *MemberHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	member, err := h.Repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, data.ErrMemberNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, member)
}

// List handles HTTP requests to list members.
// Supports q, role, limit, and offset query params.
func (h *MemberHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, 200)
	opts := model.MembersListOptions{
		Limit:  limit,
		Offset: offset,
		Q:      optionalQuery(r, "q"),
	}
	if raw := optionalQuery(r, "role"); raw != nil {
		role := domainauth.Role(*raw)
		if role != domainauth.RoleStudent && role != domainauth.RoleStaff {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_role",
				Err:     errors.New("role must be student or staff"),
			})
			return
		}
		opts.Role = &role
	}

	members, err := h.Repo.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, members)
}
