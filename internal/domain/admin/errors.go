package admin

import "errors"

var (
	// ErrNotFound is returned when the user is not in the admin set
	ErrNotFound = errors.New("admin not found")
	// ErrAlreadyAdmin is returned when the user is already in the admin set
	ErrAlreadyAdmin = errors.New("user is already an admin")
)
