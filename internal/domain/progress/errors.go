package progress

import "errors"

var ErrValidation = errors.New("validation failed")
