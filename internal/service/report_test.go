package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campuslib/campuslib/internal/domain/model"
	"github.com/campuslib/campuslib/internal/mocks"
)

func newReportService(t *testing.T) (*mocks.MockReportRepository, *ReportService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	reports := mocks.NewMockReportRepository(ctrl)
	return reports, NewReportService(ReportServiceOptions{Reports: reports})
}

func TestReportService_OverdueBooks_ClampsLimit(t *testing.T) {
	t.Parallel()
	reports, svc := newReportService(t)
	ctx := context.Background()

	reports.EXPECT().OverdueBooks(ctx, defaultReportLimit).Return([]model.OverdueBookRow{}, nil)
	_, err := svc.OverdueBooks(ctx, 0)
	require.NoError(t, err)

	reports.EXPECT().OverdueBooks(ctx, defaultReportLimit).Return([]model.OverdueBookRow{}, nil)
	_, err = svc.OverdueBooks(ctx, 10_000)
	require.NoError(t, err)

	reports.EXPECT().OverdueBooks(ctx, 25).Return([]model.OverdueBookRow{}, nil)
	_, err = svc.OverdueBooks(ctx, 25)
	require.NoError(t, err)
}

func TestReportService_DailySummary(t *testing.T) {
	t.Parallel()
	reports, svc := newReportService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	reports.EXPECT().
		DailySummary(ctx, day).
		Return(&model.DailySummary{LoansIssued: 4, ReturnsProcessed: 2}, nil)

	summary, err := svc.DailySummary(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.LoansIssued)
}

func TestReportService_DailySummary_ZeroDate(t *testing.T) {
	t.Parallel()
	_, svc := newReportService(t)

	_, err := svc.DailySummary(context.Background(), time.Time{})
	require.Error(t, err)
}
