package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/campuslib/campuslib/internal/service"
)

// ReportHandlers provides HTTP handlers for operational reports.
type ReportHandlers struct {
	Svc *service.ReportService
}

// Overdue handles HTTP requests for the overdue books report.
func (h *ReportHandlers) Overdue(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.OverdueBooks(r.Context(), parseIntQuery(r, "limit", 0))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "report_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

// Popular handles HTTP requests for the popular books report.
func (h *ReportHandlers) Popular(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.PopularBooks(r.Context(), parseIntQuery(r, "limit", 0))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "report_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

// Daily handles HTTP requests for the daily circulation summary.
// The date query param is YYYY-MM-DD; it defaults to today.
func (h *ReportHandlers) Daily(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_date",
				Err:     errors.New("date must be formatted as YYYY-MM-DD"),
			})
			return
		}
		date = parsed
	}

	summary, err := h.Svc.DailySummary(r.Context(), date)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "report_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// Current handles HTTP requests for the current borrowings report.
func (h *ReportHandlers) Current(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.CurrentBorrowings(r.Context(), parseIntQuery(r, "limit", 0))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "report_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}
