package auth

import "errors"

var (
	// ErrDuplicateUser is returned when registering a taken username.
	ErrDuplicateUser = errors.New("username already exists")

	// ErrWeakPassword is returned when a password fails the password policy.
	ErrWeakPassword = errors.New("password does not meet policy")

	// ErrInvalidUsername is returned for empty or malformed usernames.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotAuthenticated is returned when no valid session exists.
	ErrNotAuthenticated = errors.New("not logged in")
)
