package httpx

import (
	"errors"
	"net/http"

	"github.com/campuslib/campuslib/internal/adapters/staffauth"
	"github.com/campuslib/campuslib/internal/core"
	"github.com/campuslib/campuslib/internal/data"
	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// StaffHandlers provides HTTP handlers for staff account administration.
// All routes are admin-only.
type StaffHandlers struct {
	Repo core.StaffRepository

	// BcryptCost is the work factor for new passwords; zero selects the default.
	BcryptCost int
}

// createStaffUserPayload is the wire form of a staff account creation.
// The plaintext password is hashed here; the data layer only ever sees the hash.
type createStaffUserPayload struct {
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	DisplayName string          `json:"display_name"`
	Role        domainauth.Role `json:"role"`
}

// Create handles HTTP requests to create a staff account.
func (h *StaffHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var payload createStaffUserPayload
	if !DecodeJSON(w, r, &payload) {
		return
	}
	if payload.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation_failed",
			Err:     errors.New("password is required"),
		})
		return
	}

	hash, err := staffauth.HashPasswordCost(payload.Password, h.BcryptCost)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "hash_failed", Err: err})
		return
	}

	req := &model.CreateStaffUserRequest{
		Username:     payload.Username,
		PasswordHash: hash,
		DisplayName:  payload.DisplayName,
		Role:         payload.Role,
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	user, err := h.Repo.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, data.ErrUsernameExists) {
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "username_conflict", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "create_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusCreated, user)
}

// List handles HTTP requests to list staff accounts.
func (h *StaffHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, 200)

	users, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, users)
}
