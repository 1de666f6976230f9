package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validCreateBook() CreateBookRequest {
	return CreateBookRequest{
		Title:       "The Go Programming Language",
		Author:      "Donovan & Kernighan",
		ISBN:        "978-0134190440",
		Category:    "computing",
		TotalCopies: 3,
	}
}

func TestCreateBookRequestValidate(t *testing.T) {
	assert.NoError(t, validCreateBook().Validate())

	r := validCreateBook()
	r.Title = "   "
	assert.Error(t, r.Validate())

	r = validCreateBook()
	r.Title = strings.Repeat("x", 256)
	assert.Error(t, r.Validate())

	r = validCreateBook()
	r.Author = ""
	assert.Error(t, r.Validate())

	r = validCreateBook()
	r.ISBN = ""
	assert.Error(t, r.Validate())

	r = validCreateBook()
	r.TotalCopies = 0
	assert.Error(t, r.Validate())
}

func TestUpdateBookRequestValidate(t *testing.T) {
	assert.NoError(t, UpdateBookRequest{}.Validate(), "empty update is a no-op")

	empty := ""
	assert.Error(t, UpdateBookRequest{Title: &empty}.Validate())

	zero := 0
	assert.Error(t, UpdateBookRequest{TotalCopies: &zero}.Validate())

	title := "New Title"
	copies := 5
	assert.NoError(t, UpdateBookRequest{Title: &title, TotalCopies: &copies}.Validate())
}

func TestBookAvailable(t *testing.T) {
	assert.True(t, Book{AvailableCopies: 1}.Available())
	assert.False(t, Book{AvailableCopies: 0}.Available())
}
