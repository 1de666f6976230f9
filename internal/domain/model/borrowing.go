package model

import (
	"errors"
	"strings"
	"time"
)

// BorrowingStatus tracks the lifecycle of a loan.
type BorrowingStatus string

const (
	BorrowingActive   BorrowingStatus = "active"
	BorrowingOverdue  BorrowingStatus = "overdue"
	BorrowingReturned BorrowingStatus = "returned"
)

// Valid reports whether the borrowing status is supported.
func (s BorrowingStatus) Valid() bool {
	switch s {
	case BorrowingActive, BorrowingOverdue, BorrowingReturned:
		return true
	default:
		return false
	}
}

// Borrowing represents a single copy of a book on loan to a member.
type Borrowing struct {
	ID         string          `json:"id"                    db:"id"`
	BookID     string          `json:"book_id"               db:"book_id"`
	MemberID   string          `json:"member_id"             db:"member_id"`
	IssuedBy   string          `json:"issued_by"             db:"issued_by"`
	BorrowedAt time.Time       `json:"borrowed_at"           db:"borrowed_at"`
	DueAt      time.Time       `json:"due_at"                db:"due_at"`
	ReturnedAt *time.Time      `json:"returned_at,omitempty" db:"returned_at"`
	Status     BorrowingStatus `json:"status"                db:"status"`
}

// OverdueAs reports whether the loan is past due at the given instant.
// Returned loans are never overdue.
func (b Borrowing) OverdueAs(now time.Time) bool {
	return b.ReturnedAt == nil && now.After(b.DueAt)
}

// DaysLate returns the number of whole days past the due date at the given
// instant, rounding up so that any portion of a late day is billable.
func (b Borrowing) DaysLate(now time.Time) int {
	if !now.After(b.DueAt) {
		return 0
	}
	late := now.Sub(b.DueAt)
	days := int(late / (24 * time.Hour))
	if late%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// BorrowRequest represents parameters to issue a book to a member.
// IssuedBy is the principal ID of the librarian handling the loan.
type BorrowRequest struct {
	BookID   string `json:"book_id"`
	MemberID string `json:"member_id"`
	IssuedBy string `json:"issued_by"`
}

// Validate checks the borrow request fields.
func (r BorrowRequest) Validate() error {
	if strings.TrimSpace(r.BookID) == "" {
		return errors.New("book_id is required")
	}
	if strings.TrimSpace(r.MemberID) == "" {
		return errors.New("member_id is required")
	}
	if strings.TrimSpace(r.IssuedBy) == "" {
		return errors.New("issued_by is required")
	}
	return nil
}

// BorrowingsListOptions controls paging and filtering for loan listings.
// Unreturned selects loans still out regardless of status, so it covers both
// active and overdue loans.
type BorrowingsListOptions struct {
	Limit      int
	Offset     int
	MemberID   *string
	BookID     *string
	Status     *BorrowingStatus
	Unreturned bool
}
