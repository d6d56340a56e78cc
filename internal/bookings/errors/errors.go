package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDuplicate is a storage-level uniqueness violation on insert.
	ErrDuplicate = errors.New("booking already exists")

	ErrLockHeld = errors.New("booking lock held by another request")

	ErrLockNotOwned = errors.New("booking lock not owned by caller")
)
