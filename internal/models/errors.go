package models

import "errors"

// Error classes shared by all components. Handlers map them to HTTP statuses with errors.Is.
var (
	// ErrValidation marks a user-correctable problem with the request (400).
	ErrValidation = errors.New("validation error")
	// ErrGeocode marks an address that could not be resolved to coordinates (400).
	ErrGeocode = errors.New("geocode error")
	// ErrUpstream marks an unreachable or misbehaving tracking service (502).
	ErrUpstream = errors.New("upstream error")
)
