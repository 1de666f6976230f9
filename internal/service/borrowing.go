package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuslib/campuslib/internal/core"
	"github.com/campuslib/campuslib/internal/data"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// Lending policy defaults, overridable through configuration.
const (
	DefaultLoanPeriod        = 14 * 24 * time.Hour
	DefaultFineDailyCents    = int64(50)
	DefaultMaxActiveLoans    = 5
	outstandingFineLoanBlock = int64(1000)
)

// ErrBorrowingNotAllowed is returned when lending policy blocks a new loan.
var ErrBorrowingNotAllowed = errors.New("borrowing not allowed")

// BorrowingServiceOptions groups dependencies for BorrowingService.
type BorrowingServiceOptions struct {
	Borrowings   core.BorrowingRepository
	Members      core.MemberRepository
	Fines        core.FineRepository
	TimeProvider data.TimeProvider

	// Zero values select the defaults above.
	LoanPeriod     time.Duration
	FineDailyCents int64
	MaxActiveLoans int
}

// BorrowingService orchestrates issuing and returning books, applying the
// lending policy and assessing fines for late returns.
type BorrowingService struct {
	borrowings     core.BorrowingRepository
	members        core.MemberRepository
	fines          core.FineRepository
	timeProvider   data.TimeProvider
	loanPeriod     time.Duration
	fineDailyCents int64
	maxActiveLoans int
}

// NewBorrowingService constructs a new BorrowingService.
func NewBorrowingService(opts BorrowingServiceOptions) *BorrowingService {
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	loanPeriod := opts.LoanPeriod
	if loanPeriod <= 0 {
		loanPeriod = DefaultLoanPeriod
	}
	fineDaily := opts.FineDailyCents
	if fineDaily <= 0 {
		fineDaily = DefaultFineDailyCents
	}
	maxLoans := opts.MaxActiveLoans
	if maxLoans <= 0 {
		maxLoans = DefaultMaxActiveLoans
	}
	return &BorrowingService{
		borrowings:     opts.Borrowings,
		members:        opts.Members,
		fines:          opts.Fines,
		timeProvider:   tp,
		loanPeriod:     loanPeriod,
		fineDailyCents: fineDaily,
		maxActiveLoans: maxLoans,
	}
}

// Borrow issues one copy of a book to a member. The due date is now plus the
// loan period. Lending is blocked for members at the active-loan limit or
// carrying too much outstanding fine debt.
func (s *BorrowingService) Borrow(ctx context.Context, req model.BorrowRequest) (*model.Borrowing, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate borrow request: %w", err)
	}

	member, err := s.members.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}

	if policyErr := s.checkLendingPolicy(ctx, member.ID); policyErr != nil {
		return nil, policyErr
	}

	now := s.timeProvider.Now()
	return s.borrowings.Create(ctx, core.BorrowBookParams{
		BookID:   req.BookID,
		MemberID: member.ID,
		IssuedBy: req.IssuedBy,
		DueAt:    now.Add(s.loanPeriod),
	})
}

// Return records a book return. A return past the due date assesses a fine
// of the daily rate per late day, partial days rounded up.
func (s *BorrowingService) Return(ctx context.Context, borrowingID string) (*model.Borrowing, error) {
	now := s.timeProvider.Now()
	borrowing, err := s.borrowings.MarkReturned(ctx, borrowingID, now)
	if err != nil {
		return nil, err
	}

	if daysLate := borrowing.DaysLate(now); daysLate > 0 {
		_, fineErr := s.fines.Assess(ctx, core.AssessFineParams{
			BorrowingID: borrowing.ID,
			MemberID:    borrowing.MemberID,
			AmountCents: int64(daysLate) * s.fineDailyCents,
			Reason:      fmt.Sprintf("Returned %d day(s) late", daysLate),
		})
		if fineErr != nil {
			return nil, fmt.Errorf("assess late fine: %w", fineErr)
		}
	}
	return borrowing, nil
}

// GetByID retrieves a borrowing by ID.
func (s *BorrowingService) GetByID(ctx context.Context, id string) (*model.Borrowing, error) {
	return s.borrowings.GetByID(ctx, id)
}

// List returns a page of borrowings matching the options.
func (s *BorrowingService) List(ctx context.Context, opts model.BorrowingsListOptions) ([]*model.Borrowing, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.borrowings.List(ctx, opts)
}

func (s *BorrowingService) checkLendingPolicy(ctx context.Context, memberID string) error {
	// Overdue loans are still out, so they count toward the limit too.
	loans, err := s.borrowings.List(ctx, model.BorrowingsListOptions{
		Limit:      s.maxActiveLoans + 1,
		MemberID:   &memberID,
		Unreturned: true,
	})
	if err != nil {
		return fmt.Errorf("count open loans: %w", err)
	}
	if len(loans) >= s.maxActiveLoans {
		return fmt.Errorf("%w: member has %d loans out", ErrBorrowingNotAllowed, len(loans))
	}

	owed, err := s.fines.OutstandingTotalCents(ctx, memberID)
	if err != nil {
		return fmt.Errorf("sum outstanding fines: %w", err)
	}
	if owed >= outstandingFineLoanBlock {
		return fmt.Errorf("%w: outstanding fines of %d cents", ErrBorrowingNotAllowed, owed)
	}
	return nil
}
