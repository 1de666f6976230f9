package core

import (
	"context"
	"time"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
	"github.com/campuslib/campuslib/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// StaffRepository defines the interface for staff account data operations.
type StaffRepository interface {
	FindActiveByUsername(ctx context.Context, username string) (*model.StaffUser, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Create(ctx context.Context, req *model.CreateStaffUserRequest) (*model.StaffUser, error)
	List(ctx context.Context, limit, offset int) ([]*model.StaffUser, error)
}

// MemberRepository defines the interface for library member data operations.
type MemberRepository interface {
	FindActiveByIDNumber(ctx context.Context, idNumber string) (*model.Member, error)
	GetByID(ctx context.Context, id string) (*model.Member, error)
	Create(ctx context.Context, req *model.CreateMemberRequest) (*model.Member, error)
	List(ctx context.Context, opts model.MembersListOptions) ([]*model.Member, error)
}

// BookRepository defines the interface for catalog data operations.
type BookRepository interface {
	Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error)
	GetByID(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context, opts model.BooksListOptions) ([]*model.Book, error)
	Update(ctx context.Context, id string, req model.UpdateBookRequest) (*model.Book, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// BorrowBookParams groups inputs for issuing one copy of a book to a member.
type BorrowBookParams struct {
	BookID   string
	MemberID string
	IssuedBy string
	DueAt    time.Time
}

// BorrowingRepository defines the interface for loan data operations.
type BorrowingRepository interface {
	Create(ctx context.Context, p BorrowBookParams) (*model.Borrowing, error)
	GetByID(ctx context.Context, id string) (*model.Borrowing, error)
	MarkReturned(ctx context.Context, id string, at time.Time) (*model.Borrowing, error)
	List(ctx context.Context, opts model.BorrowingsListOptions) ([]*model.Borrowing, error)
	ListUnreturnedPastDue(ctx context.Context, asOf time.Time) ([]*model.Borrowing, error)
	MarkOverdue(ctx context.Context, asOf time.Time) ([]*model.Borrowing, error)
}

// AssessFineParams groups inputs for assessing a fine against a borrowing.
type AssessFineParams struct {
	BorrowingID string
	MemberID    string
	AmountCents int64
	Reason      string
}

// FineRepository defines the interface for fine data operations.
type FineRepository interface {
	Assess(ctx context.Context, p AssessFineParams) (*model.Fine, error)
	GetByID(ctx context.Context, id string) (*model.Fine, error)
	Settle(ctx context.Context, id string, status model.FineStatus) (*model.Fine, error)
	List(ctx context.Context, opts model.FinesListOptions) ([]*model.Fine, error)
	OutstandingTotalCents(ctx context.Context, memberID string) (int64, error)
}

// ReportRepository defines the interface for reporting queries.
type ReportRepository interface {
	OverdueBooks(ctx context.Context, limit int) ([]model.OverdueBookRow, error)
	PopularBooks(ctx context.Context, limit int) ([]model.PopularBookRow, error)
	DailySummary(ctx context.Context, date time.Time) (*model.DailySummary, error)
	CurrentBorrowings(ctx context.Context, limit int) ([]model.CurrentBorrowingRow, error)
}

// SecurityEventRepository defines the interface for the append-only audit log.
type SecurityEventRepository interface {
	Append(ctx context.Context, event domainauth.SecurityEvent) error
	Recent(ctx context.Context, limit int) ([]domainauth.SecurityEvent, error)
}
