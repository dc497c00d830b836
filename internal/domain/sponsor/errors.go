package sponsor

import "errors"

var ErrNotFound = errors.New("sponsor channel not found")
