package bookingrepo

import "errors"

var (
	// ErrMemberNotFound indicates the booking references a member that does not exist.
	ErrMemberNotFound = errors.New("booking member not found")

	// ErrAlreadyExists indicates a booking already exists with the provided ID.
	ErrAlreadyExists = errors.New("booking already exists")
)
