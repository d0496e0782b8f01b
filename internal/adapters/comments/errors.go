package comments

import "errors"

// Sentinel kinds for comment source errors.
var (
	ErrFetch  = errors.New("comment fetch failed")
	ErrDecode = errors.New("comment response decode failed")
)
