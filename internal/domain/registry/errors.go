package registry

import "errors"

// Failure taxonomy for the mapping registry, mapped to status codes at
// the HTTP layer only.
var (
	ErrMappingNotFound = errors.New("manufacturer mapping not found")
	ErrValidation      = errors.New("validation failed")
)
