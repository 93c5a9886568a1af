package memberrepo

import "errors"

var (
	// ErrNotFound indicates the requested member does not exist.
	ErrNotFound = errors.New("member not found")

	// ErrUsernameTaken indicates another member already uses the username.
	ErrUsernameTaken = errors.New("member username already taken")

	// ErrEmailTaken indicates another member already uses the email address.
	ErrEmailTaken = errors.New("member email already taken")

	// ErrAlreadyExists indicates a uniqueness violation the store could not attribute
	// to a specific column (ID, username or email).
	ErrAlreadyExists = errors.New("member already exists")
)
