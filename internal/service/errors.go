package service

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("service: not found")
	// ErrInvalidTransition indicates a status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("service: invalid status transition")
	// ErrUpstream indicates the storefront API could not be reached.
	ErrUpstream = errors.New("service: storefront unavailable")
)
