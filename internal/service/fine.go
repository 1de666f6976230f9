package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuslib/campuslib/internal/core"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// FineServiceOptions groups dependencies for FineService.
type FineServiceOptions struct {
	Fines core.FineRepository
}

// FineService orchestrates fine listing and settlement.
type FineService struct {
	fines core.FineRepository
}

// NewFineService constructs a new FineService.
func NewFineService(opts FineServiceOptions) *FineService {
	return &FineService{fines: opts.Fines}
}

// GetByID retrieves a fine by ID.
func (s *FineService) GetByID(ctx context.Context, id string) (*model.Fine, error) {
	return s.fines.GetByID(ctx, id)
}

// List returns a page of fines matching the options.
func (s *FineService) List(ctx context.Context, opts model.FinesListOptions) ([]*model.Fine, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.fines.List(ctx, opts)
}

// OutstandingTotalCents sums a member's unpaid fines.
func (s *FineService) OutstandingTotalCents(ctx context.Context, memberID string) (int64, error) {
	return s.fines.OutstandingTotalCents(ctx, memberID)
}

// Pay settles a fine as paid.
func (s *FineService) Pay(ctx context.Context, id string) (*model.Fine, error) {
	return s.settle(ctx, id, model.FinePaid)
}

// Waive settles a fine as waived.
func (s *FineService) Waive(ctx context.Context, id string) (*model.Fine, error) {
	return s.settle(ctx, id, model.FineWaived)
}

func (s *FineService) settle(ctx context.Context, id string, status model.FineStatus) (*model.Fine, error) {
	if id == "" {
		return nil, errors.New("fine ID is required")
	}
	fine, err := s.fines.Settle(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("settle fine: %w", err)
	}
	return fine, nil
}
