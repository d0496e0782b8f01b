// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/crypticsea/dungeond/internal/adapters/comments"
	"github.com/crypticsea/dungeond/internal/adapters/kv"
	"github.com/crypticsea/dungeond/internal/adapters/store"
	"github.com/crypticsea/dungeond/internal/domain/extract"
	"github.com/crypticsea/dungeond/internal/domain/model"
	"github.com/crypticsea/dungeond/internal/domain/rank"
	"github.com/crypticsea/dungeond/internal/rotation"
	"github.com/crypticsea/dungeond/pkg/logger"
	"github.com/crypticsea/dungeond/pkg/metrics"
)

// noopSource is used when no comment source is configured. Rotation
// then always reports "no submissions".
type noopSource struct{}

func (noopSource) Fetch(context.Context, string, int) ([]model.Comment, error) {
	return nil, nil
}

// Service implements the API dependencies for the dungeon game.
type Service struct {
	mu sync.RWMutex

	// Core components
	backend kv.Store
	days    *store.DayStore
	ranker  *rank.Ranker
	rotator *rotation.Controller
	source  comments.Source

	// Configuration
	clock           func() time.Time
	retention       time.Duration
	fetchLimit      int
	defaultMonster  string
	defaultModifier string
	rotationHour    int
	rotationEnabled bool
	defaultLimit    int
	maxLimit        int

	// State
	started      bool
	stopRotation context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithKV sets the key-value backend holding all day-scoped state.
func WithKV(backend kv.Store) Option {
	return func(s *Service) {
		if backend != nil {
			s.backend = backend
		}
	}
}

// WithCommentsSource sets the source rotation reads submissions from.
func WithCommentsSource(source comments.Source) Option {
	return func(s *Service) {
		if source != nil {
			s.source = source
		}
	}
}

// WithClock sets the time source used for day scoping.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithRetention sets the expiry window on day-scoped keys.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithFetchLimit bounds how many comments one rotation pass inspects.
func WithFetchLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.fetchLimit = limit
		}
	}
}

// WithDefaultMonster sets the monster substituted for omitted fields.
func WithDefaultMonster(monster string) Option {
	return func(s *Service) {
		if monster != "" {
			s.defaultMonster = monster
		}
	}
}

// WithDefaultModifier sets the modifier substituted for omitted fields.
func WithDefaultModifier(modifier string) Option {
	return func(s *Service) {
		if modifier != "" {
			s.defaultModifier = modifier
		}
	}
}

// WithRotationHour sets the UTC hour the daily rotation fires at.
func WithRotationHour(hour int) Option {
	return func(s *Service) {
		if hour >= 0 && hour <= 23 {
			s.rotationHour = hour
		}
	}
}

// WithRotationEnabled toggles the background rotation scheduler.
func WithRotationEnabled(enabled bool) Option {
	return func(s *Service) {
		s.rotationEnabled = enabled
	}
}

// WithLeaderboardLimits sets the default and maximum ?limit values.
func WithLeaderboardLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 && max >= def {
			s.defaultLimit = def
			s.maxLimit = max
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		source:          noopSource{},
		clock:           time.Now,
		retention:       7 * 24 * time.Hour,
		fetchLimit:      100,
		defaultMonster:  model.DefaultMonster,
		defaultModifier: model.DefaultModifier,
		rotationHour:    0,
		rotationEnabled: true,
		defaultLimit:    10,
		maxLimit:        100,
		logger:          nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting dungeon service...")

	if s.backend == nil {
		s.backend = kv.NewMemoryStore()
		s.logger.Info(ctx, "no kv backend configured, using in-memory store")
	}

	s.days = store.New(s.backend, store.WithRetention(s.retention))

	extractor := extract.New(
		extract.WithDefaultMonster(s.defaultMonster),
		extract.WithDefaultModifier(s.defaultModifier),
	)
	s.ranker = rank.New(s.source, extractor, rank.WithFetchLimit(s.fetchLimit))
	s.rotator = rotation.New(s.ranker, s.days, rotation.WithClock(s.clock))

	if s.rotationEnabled {
		rotCtx, cancel := context.WithCancel(context.Background())
		s.stopRotation = cancel
		go s.rotator.RunDaily(rotCtx, s.rotationHour)
	}

	s.started = true
	s.logger.Info(ctx, "dungeon service started",
		logger.Bool("rotationEnabled", s.rotationEnabled),
		logger.Int("rotationHourUTC", s.rotationHour),
		logger.Int("maxLeaderboardLimit", s.maxLimit),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping dungeon service...")

	if s.stopRotation != nil {
		s.stopRotation()
		s.stopRotation = nil
	}

	if closer, ok := s.backend.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "dungeon service stopped")
}

// DailyDungeon returns today's dungeon and its day key.
func (s *Service) DailyDungeon(ctx context.Context) (model.DungeonConfig, string) {
	now := s.clock()
	return s.days.Dungeon(ctx, now), model.DayKey(now)
}

// SubmitScore appends a score event for today and returns its rank at
// insertion time. A non-nil ghost records the death location under the
// caller's username.
func (s *Service) SubmitScore(ctx context.Context, username string, score int, survived bool, ghost *model.GhostMarker) (int, error) {
	now := s.clock()
	rankAt, err := s.days.SubmitScore(ctx, now, username, score, now.UnixMilli(), survived)
	if err != nil {
		return 0, err
	}

	if ghost != nil {
		g := *ghost
		g.Username = username
		if err := s.days.AddGhost(ctx, now, g); err != nil {
			// The score is already recorded; report the ghost failure
			// without discarding the rank.
			s.logger.Warn(ctx, "ghost registration failed",
				logger.String("username", username),
				logger.Error(err),
			)
		}
	}

	return rankAt, nil
}

// Leaderboard returns today's ranked entries, best first.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	return s.days.Leaderboard(ctx, s.clock(), limit)
}

// UserRank returns the user's best rank today, or false when the user
// has no entries.
func (s *Service) UserRank(ctx context.Context, username string) (int, bool, error) {
	return s.days.UserRank(ctx, s.clock(), username)
}

// TotalPlayers returns the number of score events recorded today.
func (s *Service) TotalPlayers(ctx context.Context) (int, error) {
	return s.days.TotalPlayers(ctx, s.clock())
}

// Ghosts returns today's death markers.
func (s *Service) Ghosts(ctx context.Context) ([]model.GhostMarker, error) {
	return s.days.Ghosts(ctx, s.clock())
}

// TriggerRotation runs one rotation pass immediately.
func (s *Service) TriggerRotation(ctx context.Context) (rotation.Outcome, error) {
	return s.rotator.Rotate(ctx)
}

// SubmissionPost returns the configured submission post id.
func (s *Service) SubmissionPost(ctx context.Context) (string, bool, error) {
	return s.days.SubmissionPost(ctx)
}

// SetSubmissionPost points rotation at a new submission post.
func (s *Service) SetSubmissionPost(ctx context.Context, postID string) error {
	return s.days.SetSubmissionPost(ctx, postID)
}

// ClearToday wipes today's dungeon, leaderboard and ghosts.
func (s *Service) ClearToday(ctx context.Context) error {
	return s.days.ClearDay(ctx, s.clock())
}

// DefaultLeaderboardLimit returns the limit applied when ?limit is omitted.
func (s *Service) DefaultLeaderboardLimit() int {
	return s.defaultLimit
}

// MaxLeaderboardLimit returns the upper bound on ?limit.
func (s *Service) MaxLeaderboardLimit() int {
	return s.maxLimit
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"rotationEnabled": s.rotationEnabled,
		"rotationHourUTC": s.rotationHour,
	}

	if s.started {
		now := s.clock()
		stats["date"] = model.DayKey(now)

		if total, err := s.days.TotalPlayers(ctx, now); err == nil {
			stats["totalPlayers"] = total
			metrics.UpdateLeaderboardEntries(total)
		}
		if ghosts, err := s.days.Ghosts(ctx, now); err == nil {
			stats["ghosts"] = len(ghosts)
		}
	}

	return stats
}
