package users

import "errors"

var (
	// ErrInvalidCredentials is returned by Authenticate for any login failure
	ErrInvalidCredentials = errors.New("invalid username/email or password")
)
