package store

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrEmptyPostID  = errors.New("empty submission post id")
)
