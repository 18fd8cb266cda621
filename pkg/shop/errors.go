package shop

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrDuplicateUser      = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)
