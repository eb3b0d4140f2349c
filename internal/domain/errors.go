package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// store or SDK details.
var (
	ErrBadRequest = errors.New("bad request")
	ErrMismatch   = errors.New("mismatch")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrExpired    = errors.New("expired")
	ErrForbidden  = errors.New("forbidden")
	ErrUpstream   = errors.New("upstream failure")
)
