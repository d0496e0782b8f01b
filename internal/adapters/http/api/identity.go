// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// Identity headers set by the fronting host. The service trusts them;
// authenticating the caller is the host's job.
const (
	userHeader      = "X-Dungeond-User"
	moderatorHeader = "X-Dungeond-Moderator"
)

// anonymousUser substitutes for requests carrying no identity header.
const anonymousUser = "Anonymous"

// requestUser returns the caller's username, or anonymousUser.
func requestUser(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(userHeader)); u != "" {
		return u
	}
	return anonymousUser
}

// isModerator reports whether the host vouched for moderator privileges.
func isModerator(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(r.Header.Get(moderatorHeader))) {
	case "true", "1", "yes":
		return true
	}
	return false
}
