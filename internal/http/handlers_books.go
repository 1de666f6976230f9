// Package httpx provides HTTP handlers and utilities for the campuslib API and UI.
package httpx

import (
	"errors"
	"net/http"

	"github.com/campuslib/campuslib/internal/data"
	"github.com/campuslib/campuslib/internal/domain/model"
	"github.com/campuslib/campuslib/internal/service"
)

// BookHandlers provides HTTP handlers for catalog operations.
type BookHandlers struct {
	Svc *service.CatalogService
}

// Create handles HTTP requests to add a book to the catalog.
func (h *BookHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req *model.CreateBookRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	book, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrISBNExists):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "isbn_conflict", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "create_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusCreated, book)
}

// List handles HTTP requests to search the catalog.
// Supports q, category, available, limit, and offset query params.
func (h *BookHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 50, 200)
	opts := model.BooksListOptions{
		Limit:         limit,
		Offset:        offset,
		Q:             optionalQuery(r, "q"),
		Category:      optionalQuery(r, "category"),
		AvailableOnly: r.URL.Query().Get("available") == "true",
	}

	books, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, books)
}

// GetByID handles HTTP requests for a single book.
func (h *BookHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	book, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, data.ErrBookNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, book)
}

// Update handles HTTP requests to update catalog details.
func (h *BookHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateBookRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	book, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrBookNotFound):
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
		case isValidationError(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "update_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusOK, book)
}

// Delete handles HTTP requests to remove a book from the catalog.
func (h *BookHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Svc.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "delete_failed", Err: err})
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: data.ErrBookNotFound})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
