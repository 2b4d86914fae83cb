package domain

import "errors"

var (
	ErrEmptyCart       = errors.New("empty_cart")
	ErrPaymentDeclined = errors.New("payment_declined")
	ErrInvalidShipping = errors.New("invalid_shipping")
	ErrTooManyAttempts = errors.New("too_many_checkout_attempts")
	ErrOrderNotFound   = errors.New("order_not_found")
)
