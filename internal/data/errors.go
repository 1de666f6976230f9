package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Credential store sentinels.
	ErrStaffUserNotFound  = errors.New("staff user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrMemberNotFound     = errors.New("member not found")
	ErrMemberNumberExists = errors.New("member id number already exists")

	// Catalog sentinels.
	ErrBookNotFound = errors.New("book not found")
	ErrISBNExists   = errors.New("isbn already exists")

	// Circulation sentinels.
	ErrBorrowingNotFound = errors.New("borrowing not found")
	ErrNoCopiesAvailable = errors.New("no copies available")
	ErrAlreadyReturned   = errors.New("borrowing already returned")
	ErrFineNotFound      = errors.New("fine not found")
	ErrFineAlreadySettled = errors.New("fine already settled")
)
