package domain

import "errors"

var (
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrProductNotFound = errors.New("product_not_found")
	ErrSessionClosed   = errors.New("session_closed")
	ErrInvalidSession  = errors.New("invalid_session")
)
