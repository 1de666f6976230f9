package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBorrowingOverdueAs(t *testing.T) {
	due := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	b := Borrowing{DueAt: due}

	assert.False(t, b.OverdueAs(due.Add(-time.Hour)))
	assert.False(t, b.OverdueAs(due))
	assert.True(t, b.OverdueAs(due.Add(time.Minute)))

	returned := due.Add(time.Hour)
	b.ReturnedAt = &returned
	assert.False(t, b.OverdueAs(due.Add(48*time.Hour)), "returned loans are never overdue")
}

func TestBorrowingDaysLate(t *testing.T) {
	due := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	b := Borrowing{DueAt: due}

	assert.Equal(t, 0, b.DaysLate(due))
	assert.Equal(t, 1, b.DaysLate(due.Add(time.Minute)), "partial late days round up")
	assert.Equal(t, 1, b.DaysLate(due.Add(24*time.Hour)))
	assert.Equal(t, 2, b.DaysLate(due.Add(25*time.Hour)))
	assert.Equal(t, 7, b.DaysLate(due.Add(7*24*time.Hour)))
}

func TestBorrowRequestValidate(t *testing.T) {
	assert.NoError(t, BorrowRequest{BookID: "b1", MemberID: "m1", IssuedBy: "lib1"}.Validate())
	assert.Error(t, BorrowRequest{MemberID: "m1", IssuedBy: "lib1"}.Validate())
	assert.Error(t, BorrowRequest{BookID: "b1", IssuedBy: "lib1"}.Validate())
	assert.Error(t, BorrowRequest{BookID: "b1", MemberID: "m1"}.Validate())
	assert.Error(t, BorrowRequest{BookID: "  ", MemberID: "m1", IssuedBy: "lib1"}.Validate())
}
