package domain

import "errors"

var (
	// ErrValidation marks a malformed or incomplete client request (HTTP 400).
	ErrValidation = errors.New("invalid request")
	// ErrDeviceNotFound marks a lookup of a device that has no config row (HTTP 404).
	ErrDeviceNotFound = errors.New("device not found")
)
