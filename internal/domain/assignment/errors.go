package assignment

import "errors"

var (
	ErrNotFound          = errors.New("assignment not found")
	ErrAlreadyActive     = errors.New("an active assignment already exists for this task")
	ErrNotOwner          = errors.New("assignment belongs to another user")
	ErrNotAllowed        = errors.New("only the task creator or an admin can review")
	ErrNotSubscribed     = errors.New("channel membership not confirmed")
	ErrProofRequired     = errors.New("this task type requires proof via submit")
	ErrProofMissing      = errors.New("proof not found in storage")
	ErrInvalidTransition = errors.New("operation not allowed in the current status")
	ErrAlreadyPaid       = errors.New("assignment reward already paid")
)
