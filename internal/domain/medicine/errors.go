package medicine

import "errors"

// Failure taxonomy surfaced to the gateway. Operations wrap these with
// a message naming the violated rule; the HTTP layer maps them to
// status codes and the core never sees transport concerns.
var (
	ErrNotFound          = errors.New("medicine not found")
	ErrAlreadyExists     = errors.New("medicine already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid state transition")
)
