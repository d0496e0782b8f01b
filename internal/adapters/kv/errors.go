package kv

import "errors"

// Sentinel kinds for backend errors.
var (
	ErrUnavailable = errors.New("kv backend unavailable")
)
