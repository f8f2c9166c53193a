package catalog

import "errors"

var (
	ErrNotFound      = errors.New("resource not found")
	ErrValidation    = errors.New("invalid resource")
	ErrResourceInUse = errors.New("resource is referenced by a booked slot")
)
