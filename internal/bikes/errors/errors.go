package errors

import "errors"

var (
	ErrNotFound = errors.New("bike not found")

	ErrInvalidID = errors.New("invalid bike ID format")
)
