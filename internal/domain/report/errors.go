package report

import "errors"

var (
	ErrNotFound   = errors.New("report not found")
	ErrValidation = errors.New("validation failed")
)
