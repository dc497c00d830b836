package promo

import "errors"

var (
	ErrNotFound    = errors.New("promo code not found")
	ErrExpired     = errors.New("promo code expired")
	ErrExhausted   = errors.New("promo code has no uses left")
	ErrAlreadyUsed = errors.New("promo code already used by this user")
	ErrCodeExists  = errors.New("promo code already exists")
)
