package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxBookTitleLen  = 255
	maxBookAuthorLen = 255
	maxBookISBNLen   = 20
)

// Book represents a catalog entry. TotalCopies counts the physical copies
// the library owns; AvailableCopies counts the ones not currently on loan.
type Book struct {
	ID              string    `json:"id"               db:"id"`
	Title           string    `json:"title"            db:"title"`
	Author          string    `json:"author"           db:"author"`
	ISBN            string    `json:"isbn"             db:"isbn"`
	Category        string    `json:"category"         db:"category"`
	TotalCopies     int       `json:"total_copies"     db:"total_copies"`
	AvailableCopies int       `json:"available_copies" db:"available_copies"`
	CreatedAt       time.Time `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"       db:"updated_at"`
}

// Available reports whether at least one copy can be borrowed.
func (b Book) Available() bool { return b.AvailableCopies > 0 }

// CreateBookRequest represents parameters to create a Book.
type CreateBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	TotalCopies int    `json:"total_copies"`
}

// Validate checks the create request fields.
func (r CreateBookRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(title) > maxBookTitleLen {
		return errors.New("title exceeds maximum length")
	}
	if strings.TrimSpace(r.Author) == "" {
		return errors.New("author is required")
	}
	if utf8.RuneCountInString(r.Author) > maxBookAuthorLen {
		return errors.New("author exceeds maximum length")
	}
	if strings.TrimSpace(r.ISBN) == "" {
		return errors.New("isbn is required")
	}
	if utf8.RuneCountInString(r.ISBN) > maxBookISBNLen {
		return errors.New("isbn exceeds maximum length")
	}
	if r.TotalCopies < 1 {
		return errors.New("total_copies must be at least 1")
	}
	return nil
}

// UpdateBookRequest represents partial updates to a Book.
// Nil fields are left unchanged.
type UpdateBookRequest struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Category    *string `json:"category,omitempty"`
	TotalCopies *int    `json:"total_copies,omitempty"`
}

// Validate checks the update request fields.
func (r UpdateBookRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return errors.New("title cannot be empty")
	}
	if r.Author != nil && strings.TrimSpace(*r.Author) == "" {
		return errors.New("author cannot be empty")
	}
	if r.TotalCopies != nil && *r.TotalCopies < 1 {
		return errors.New("total_copies must be at least 1")
	}
	return nil
}

// BooksListOptions controls paging and filtering for catalog listings.
// Q matches title, author, and ISBN via ILIKE substring.
type BooksListOptions struct {
	Limit         int
	Offset        int
	Q             *string
	Category      *string
	AvailableOnly bool
}
