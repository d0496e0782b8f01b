package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/crypticsea/dungeond/pkg/logger"
)

const (
	maxScore     = 1000
	gridSize     = 10
	healthzDelay = 500 * time.Millisecond
)

// Run executes the complete load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	log := logger.Get().Named("loadtest")
	log.Info(ctx, "starting dungeond load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.NumPlayers),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
	)

	client := &http.Client{Timeout: config.Timeout}

	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	if err := fetchDungeon(ctx, client, config, log); err != nil {
		return fmt.Errorf("daily dungeon fetch failed: %w", err)
	}

	if err := submitScores(ctx, client, config, stats, log); err != nil {
		return fmt.Errorf("score submission failed: %w", err)
	}

	// Give the service a beat before reading back
	time.Sleep(healthzDelay)

	if err := verifyLeaderboard(ctx, client, config, stats, log); err != nil {
		return fmt.Errorf("leaderboard verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "load test completed",
		logger.Any("submitted", atomic.LoadInt64(&stats.Submitted)),
		logger.Any("failed", atomic.LoadInt64(&stats.Failed)),
		logger.String("duration", stats.Duration.String()),
	)
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *http.Client, config *Config) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Any 200 counts as healthy; the body is Prometheus metrics
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// fetchDungeon reads today's dungeon so the run logs what it played.
func fetchDungeon(ctx context.Context, client *http.Client, config *Config, log logger.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+"/api/daily-dungeon", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var dungeon struct {
		Monster  string `json:"monster"`
		Modifier string `json:"modifier"`
		Date     string `json:"date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&dungeon); err != nil {
		return err
	}

	log.Info(ctx, "playing today's dungeon",
		logger.String("date", dungeon.Date),
		logger.String("monster", dungeon.Monster),
		logger.String("modifier", dungeon.Modifier),
	)
	return nil
}

// submitScores fires NumPlayers score submissions across Workers
// goroutines, each under a unique player name.
func submitScores(ctx context.Context, client *http.Client, config *Config, stats *Stats, log logger.Logger) error {
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			for range jobs {
				if err := submitOne(ctx, client, config, rng); err != nil {
					atomic.AddInt64(&stats.Failed, 1)
					if config.Verbose {
						log.Warn(ctx, "submission failed", logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&stats.Submitted, 1)
			}
		}()
	}

	for i := 0; i < config.NumPlayers; i++ {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if failed := atomic.LoadInt64(&stats.Failed); failed > 0 {
		log.Warn(ctx, "some submissions failed", logger.Any("failed", failed))
	}
	return nil
}

func submitOne(ctx context.Context, client *http.Client, config *Config, rng *rand.Rand) error {
	body := map[string]interface{}{
		"score":    rng.Intn(maxScore),
		"survived": rng.Float64() >= config.GhostRate,
	}
	if survived, _ := body["survived"].(bool); !survived {
		body["deathPosition"] = map[string]int{
			"x": rng.Intn(gridSize),
			"y": rng.Intn(gridSize),
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.BaseURL+"/api/submit-score", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Dungeond-User", "loadtest-"+uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// verifyLeaderboard fetches the top entries and checks ranking order.
func verifyLeaderboard(ctx context.Context, client *http.Client, config *Config, stats *Stats, log logger.Logger) error {
	url := fmt.Sprintf("%s/api/leaderboard?limit=%d", config.BaseURL, config.TopN)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var board struct {
		Entries []struct {
			Rank     int    `json:"rank"`
			Username string `json:"username"`
			Score    int    `json:"score"`
		} `json:"entries"`
		TotalPlayers int `json:"totalPlayers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return err
	}

	for i, e := range board.Entries {
		if e.Rank != i+1 {
			return fmt.Errorf("rank gap at position %d: got rank %d", i, e.Rank)
		}
		if i > 0 && e.Score > board.Entries[i-1].Score {
			return fmt.Errorf("scores not descending at rank %d", e.Rank)
		}
	}

	submitted := atomic.LoadInt64(&stats.Submitted)
	if int64(board.TotalPlayers) < submitted {
		return fmt.Errorf("totalPlayers %d below submitted count %d", board.TotalPlayers, submitted)
	}

	log.Info(ctx, "leaderboard verified",
		logger.Int("entries", len(board.Entries)),
		logger.Int("totalPlayers", board.TotalPlayers),
	)
	return nil
}
