package model

import "time"

// OverdueBookRow is one line of the overdue books report.
type OverdueBookRow struct {
	BorrowingID string    `json:"borrowing_id" db:"borrowing_id"`
	Title       string    `json:"title"        db:"title"`
	Author      string    `json:"author"       db:"author"`
	MemberName  string    `json:"member_name"  db:"member_name"`
	IDNumber    string    `json:"id_number"    db:"id_number"`
	DueAt       time.Time `json:"due_at"       db:"due_at"`
	DaysLate    int       `json:"days_late"    db:"days_late"`
}

// PopularBookRow is one line of the popular books report.
type PopularBookRow struct {
	BookID      string `json:"book_id"      db:"book_id"`
	Title       string `json:"title"        db:"title"`
	Author      string `json:"author"       db:"author"`
	BorrowCount int64  `json:"borrow_count" db:"borrow_count"`
}

// DailySummary aggregates a single day's circulation activity.
type DailySummary struct {
	Date                time.Time `json:"date"`
	LoansIssued         int64     `json:"loans_issued"          db:"loans_issued"`
	ReturnsProcessed    int64     `json:"returns_processed"     db:"returns_processed"`
	FinesAssessedCents  int64     `json:"fines_assessed_cents"  db:"fines_assessed_cents"`
	FinesCollectedCents int64     `json:"fines_collected_cents" db:"fines_collected_cents"`
}

// CurrentBorrowingRow is one line of the current borrowings report.
type CurrentBorrowingRow struct {
	BorrowingID string    `json:"borrowing_id" db:"borrowing_id"`
	Title       string    `json:"title"        db:"title"`
	Author      string    `json:"author"       db:"author"`
	MemberName  string    `json:"member_name"  db:"member_name"`
	IDNumber    string    `json:"id_number"    db:"id_number"`
	BorrowedAt  time.Time `json:"borrowed_at"  db:"borrowed_at"`
	DueAt       time.Time `json:"due_at"       db:"due_at"`
}
