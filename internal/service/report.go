package service

import (
	"context"
	"fmt"
	"time"

	"github.com/campuslib/campuslib/internal/core"
	"github.com/campuslib/campuslib/internal/domain/model"
)

const defaultReportLimit = 100

// ReportServiceOptions groups dependencies for ReportService.
type ReportServiceOptions struct {
	Reports core.ReportRepository
}

// ReportService exposes the library's operational reports.
type ReportService struct {
	reports core.ReportRepository
}

// NewReportService constructs a new ReportService.
func NewReportService(opts ReportServiceOptions) *ReportService {
	return &ReportService{reports: opts.Reports}
}

// OverdueBooks lists loans past their due date with the member on the hook.
func (s *ReportService) OverdueBooks(ctx context.Context, limit int) ([]model.OverdueBookRow, error) {
	return s.reports.OverdueBooks(ctx, clampReportLimit(limit))
}

// PopularBooks lists titles ranked by all-time borrow count.
func (s *ReportService) PopularBooks(ctx context.Context, limit int) ([]model.PopularBookRow, error) {
	return s.reports.PopularBooks(ctx, clampReportLimit(limit))
}

// DailySummary aggregates loans issued, returns, and fines collected for one
// calendar day.
func (s *ReportService) DailySummary(ctx context.Context, date time.Time) (*model.DailySummary, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("report date is required")
	}
	return s.reports.DailySummary(ctx, date)
}

// CurrentBorrowings lists every copy currently out on loan.
func (s *ReportService) CurrentBorrowings(ctx context.Context, limit int) ([]model.CurrentBorrowingRow, error) {
	return s.reports.CurrentBorrowings(ctx, clampReportLimit(limit))
}

func clampReportLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultReportLimit
	}
	return limit
}
