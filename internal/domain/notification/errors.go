package notification

import "errors"

// ErrNotFound is returned when the notification does not exist or belongs
// to a different user
var ErrNotFound = errors.New("notification not found")
