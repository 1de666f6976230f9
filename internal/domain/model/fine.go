package model

import "time"

// FineStatus tracks whether a fine has been settled.
type FineStatus string

const (
	FineOutstanding FineStatus = "outstanding"
	FinePaid        FineStatus = "paid"
	FineWaived      FineStatus = "waived"
)

// Valid reports whether the fine status is supported.
func (s FineStatus) Valid() bool {
	switch s {
	case FineOutstanding, FinePaid, FineWaived:
		return true
	default:
		return false
	}
}

// Fine is a monetary penalty attached to a borrowing. AmountCents avoids
// floating point money arithmetic.
type Fine struct {
	ID          string     `json:"id"                   db:"id"`
	BorrowingID string     `json:"borrowing_id"         db:"borrowing_id"`
	MemberID    string     `json:"member_id"            db:"member_id"`
	AmountCents int64      `json:"amount_cents"         db:"amount_cents"`
	Reason      string     `json:"reason"               db:"reason"`
	Status      FineStatus `json:"status"               db:"status"`
	AssessedAt  time.Time  `json:"assessed_at"          db:"assessed_at"`
	SettledAt   *time.Time `json:"settled_at,omitempty" db:"settled_at"`
}

// FinesListOptions controls paging and filtering for fine listings.
type FinesListOptions struct {
	Limit    int
	Offset   int
	MemberID *string
	Status   *FineStatus
}
