package withdraw

import "errors"

var (
	ErrNotFound            = errors.New("withdrawal not found")
	ErrInsufficientBalance = errors.New("balance is below the requested amount")
	ErrDailyLimit          = errors.New("daily withdrawal limit reached")
	ErrAlreadyProcessed    = errors.New("withdrawal already processed")
)
