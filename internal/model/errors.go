package model

import "errors"

var (
	// ErrNotFound is returned by stores when nothing matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned by user stores when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)
