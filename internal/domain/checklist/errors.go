package checklist

import "errors"

var (
	ErrNotFound   = errors.New("checklist not found")
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyExists enforces the one-checklist-per-request rule.
	ErrAlreadyExists = errors.New("checklist already exists for request")
)
