package services

import "errors"

var (
	// ErrUnauthorized means no valid session was presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the session user may not touch the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned for every failed sign-in so the
	// caller cannot tell which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidPhone means the number is not a Myanmar mobile number.
	ErrInvalidPhone = errors.New("invalid phone number")
	// ErrPhoneTaken is returned when a mobile registration collides with
	// an existing account.
	ErrPhoneTaken = errors.New("phone number is already registered")
	// ErrUnsupportedCurrency is returned for currencies without a rate.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)
