// Package loadtest exercises a running dungeond instance end to end:
// it submits randomized scores and ghosts, then verifies the
// leaderboard the service hands back.
package loadtest

import (
	"time"
)

// Config holds the load test parameters.
type Config struct {
	// BaseURL of the running service, e.g. http://localhost:9080.
	BaseURL string

	// NumPlayers is how many distinct players submit a score.
	NumPlayers int

	// Workers is the number of concurrent submitters.
	Workers int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// TopN is how many leaderboard entries to fetch for verification.
	TopN int

	// GhostRate is the fraction of players that die and leave a ghost,
	// in [0, 1].
	GhostRate float64

	// Verbose enables per-request logging.
	Verbose bool
}

// Stats collects timing and outcome counters for one run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Submitted int64
	Failed    int64
}
