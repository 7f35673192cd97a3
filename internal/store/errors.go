package store

import (
	"errors"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel errors for store operations. The sqlite uniqueness constraints
// are the authoritative guard; callers that pre-check must still handle
// these on insert.
var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrDuplicateTitle indicates the user has already saved this title.
	ErrDuplicateTitle = errors.New("movie already saved")

	// ErrMovieNotFound indicates no saved movie matches the user and title.
	ErrMovieNotFound = errors.New("saved movie not found")

	// ErrInvalidRating indicates a rating outside the 0-10 range.
	ErrInvalidRating = errors.New("rating must be between 0 and 10")
)

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
