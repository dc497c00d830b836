package watch

import "errors"

var ErrNotFound = errors.New("watch not found")
