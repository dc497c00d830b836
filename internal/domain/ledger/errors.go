package ledger

import "errors"

var (
	// ErrUserNotFound means the delta targeted a user the store has
	// never seen. Callers ensure users before crediting them.
	ErrUserNotFound = errors.New("ledger: user not found")

	// ErrDuplicateReference is the raw unique violation on reference_id.
	ErrDuplicateReference = errors.New("ledger: duplicate reference")

	// ErrReferenceConflict means an entry already exists under this
	// reference with a different amount, so the call is not a retry of the
	// original operation.
	ErrReferenceConflict = errors.New("ledger: reference conflict")
)
