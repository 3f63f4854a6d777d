package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrUnauthenticated    = errors.New("auth: unauthenticated")
	ErrForbidden          = errors.New("auth: forbidden")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrInvalidKey         = errors.New("auth: invalid reset key")
	ErrExpiredKey         = errors.New("auth: reset key expired")
)
