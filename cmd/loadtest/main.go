package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/crypticsea/dungeond/internal/loadtest"
	"github.com/crypticsea/dungeond/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumPlayers = 1000
	defaultTopN       = 50
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultGhostRate  = 0.3
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numPlayers = flag.Int("players", defaultNumPlayers, "Number of players to simulate")
		topN       = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		ghostRate  = flag.Float64("ghost-rate", defaultGhostRate, "Fraction of players that die and leave a ghost")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &loadtest.Config{
		BaseURL:    *baseURL,
		NumPlayers: *numPlayers,
		Workers:    *workers,
		Timeout:    *timeout,
		TopN:       *topN,
		GhostRate:  *ghostRate,
		Verbose:    *verbose,
	}

	if err := loadtest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("load test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
