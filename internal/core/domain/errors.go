package domain

import "errors"

var (
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidKind        = errors.New("invalid user type, allowed types are Admin, Advertiser, Publisher, or BodyShop")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrForbidden          = errors.New("access forbidden")
	ErrStorage            = errors.New("storage failure")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)
