// Package store implements the day-scoped game state on top of the
// key-value backend.
//
// Every operation derives its key from an explicitly-passed wall-clock
// time (UTC calendar day), so a new day naturally begins a fresh
// leaderboard and ghost set while the dungeon config falls back to the
// built-in default until written.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crypticsea/dungeond/internal/adapters/kv"
	"github.com/crypticsea/dungeond/internal/domain/model"
	"github.com/crypticsea/dungeond/pkg/logger"
	"github.com/crypticsea/dungeond/pkg/metrics"
)

// Key layout on the backend.
const (
	dungeonKeyPrefix     = "dungeon:"
	leaderboardKeyPrefix = "leaderboard:"
	ghostsKeyPrefix      = "ghosts:"
	submissionPostKey    = "config:submission_post_id"
)

// defaultRetention is how long day-scoped records are kept.
const defaultRetention = 7 * 24 * time.Hour

const millisPerDay = 24 * 60 * 60 * 1000

// scoreSlot spaces adjacent scores in the sorted set far enough apart
// that the within-day timestamp offset (< millisPerDay) never crosses a
// score boundary.
const scoreSlot = 1e8

// DayStore is the day-scoped store plus the unscoped configuration
// holder. All mutating day-scoped writes refresh the retention window.
type DayStore struct {
	kv        kv.Store
	retention time.Duration
	log       logger.Logger
}

// Option applies a configuration option to the DayStore.
type Option func(*DayStore)

// WithRetention sets the day-scoped record retention window.
func WithRetention(retention time.Duration) Option {
	return func(s *DayStore) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *DayStore) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a DayStore over the given backend.
func New(backend kv.Store, opts ...Option) *DayStore {
	s := &DayStore{
		kv:        backend,
		retention: defaultRetention,
		log:       logger.Get().Named("store"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func dungeonKey(now time.Time) string     { return dungeonKeyPrefix + model.DayKey(now) }
func leaderboardKey(now time.Time) string { return leaderboardKeyPrefix + model.DayKey(now) }
func ghostsKey(now time.Time) string      { return ghostsKeyPrefix + model.DayKey(now) }

// Dungeon returns the day's persisted config, or the deterministic
// built-in default when none has been written. Backend faults also
// degrade to the default: the daily dungeon always resolves to
// something playable.
func (s *DayStore) Dungeon(ctx context.Context, now time.Time) model.DungeonConfig {
	raw, ok, err := s.kv.Get(ctx, dungeonKey(now))
	if err != nil {
		s.log.Error(ctx, "dungeon read failed; serving default",
			logger.String("day", model.DayKey(now)),
			logger.Error(err),
		)
		return model.DefaultDungeon(now)
	}
	if !ok {
		return model.DefaultDungeon(now)
	}

	var cfg model.DungeonConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.log.Error(ctx, "corrupt dungeon record; serving default",
			logger.String("day", model.DayKey(now)),
			logger.Error(err),
		)
		return model.DefaultDungeon(now)
	}
	return cfg
}

// SetDungeon overwrites the day's config and refreshes its retention
// window.
func (s *DayStore) SetDungeon(ctx context.Context, now time.Time, cfg model.DungeonConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal dungeon: %w", err)
	}
	return s.kv.Set(ctx, dungeonKey(now), string(raw), s.retention)
}

// entryZScore maps (score, timestamp) onto a single sorted-set score so
// the backend ranks ascending: higher game score first, then earlier
// timestamp first. Both submissions of a day share the same day key, so
// the timestamp folds to its within-day offset.
func entryZScore(score int, timestamp int64) float64 {
	msIntoDay := timestamp % millisPerDay
	if msIntoDay < 0 {
		msIntoDay += millisPerDay
	}
	return -float64(score)*scoreSlot + float64(msIntoDay)
}

// SubmitScore appends a leaderboard entry and returns its 1-based rank
// among all of today's entries. Entries are never deduplicated: each
// call ranks independently. The rank reflects a consistent backend
// snapshot that includes the just-inserted entry.
func (s *DayStore) SubmitScore(ctx context.Context, now time.Time, username string, score int, timestamp int64, survived bool) (int, error) {
	entry := model.PlayerScoreEntry{
		EntryID:   uuid.NewString(),
		Username:  username,
		Score:     score,
		Timestamp: timestamp,
		Survived:  survived,
	}
	member, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("marshal score entry: %w", err)
	}

	key := leaderboardKey(now)
	if err := s.kv.ZAdd(ctx, key, entryZScore(score, timestamp), string(member)); err != nil {
		return 0, err
	}
	if err := s.kv.Expire(ctx, key, s.retention); err != nil {
		return 0, err
	}

	rank, ok, err := s.kv.ZRank(ctx, key, string(member))
	if err != nil {
		return 0, err
	}
	if !ok {
		// The member was just inserted; absence means the backend lost it.
		return 0, fmt.Errorf("%w: inserted entry has no rank", kv.ErrUnavailable)
	}

	metrics.RecordScoreSubmission()
	if card, err := s.kv.ZCard(ctx, key); err == nil {
		metrics.UpdateLeaderboardEntries(int(card))
	}

	return int(rank) + 1, nil
}

// Leaderboard returns the top limit entries with 1-based ranks.
func (s *DayStore) Leaderboard(ctx context.Context, now time.Time, limit int) ([]model.LeaderboardEntry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	members, err := s.kv.ZRange(ctx, leaderboardKey(now), 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		var e model.PlayerScoreEntry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			s.log.Warn(ctx, "skipping corrupt leaderboard member", logger.Error(err))
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			Rank:      len(entries) + 1,
			Username:  e.Username,
			Score:     e.Score,
			Timestamp: e.Timestamp,
		})
	}
	return entries, nil
}

// UserRank returns the best rank across all of the user's entries
// today, or false when the user has none.
func (s *DayStore) UserRank(ctx context.Context, now time.Time, username string) (int, bool, error) {
	members, err := s.kv.ZRange(ctx, leaderboardKey(now), 0, -1)
	if err != nil {
		return 0, false, err
	}

	for i, m := range members {
		var e model.PlayerScoreEntry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			continue
		}
		if e.Username == username {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}

// TotalPlayers returns the number of leaderboard entries today. This
// counts submission events, not distinct usernames: a user submitting
// three times counts three times, mirroring the backend cardinality.
func (s *DayStore) TotalPlayers(ctx context.Context, now time.Time) (int, error) {
	card, err := s.kv.ZCard(ctx, leaderboardKey(now))
	if err != nil {
		return 0, err
	}
	return int(card), nil
}

// AddGhost upserts a death marker keyed by (x, y, username).
func (s *DayStore) AddGhost(ctx context.Context, now time.Time, ghost model.GhostMarker) error {
	raw, err := json.Marshal(ghost)
	if err != nil {
		return fmt.Errorf("marshal ghost: %w", err)
	}

	key := ghostsKey(now)
	field := fmt.Sprintf("%d,%d,%s", ghost.X, ghost.Y, ghost.Username)
	if err := s.kv.HSet(ctx, key, field, string(raw)); err != nil {
		return err
	}
	if err := s.kv.Expire(ctx, key, s.retention); err != nil {
		return err
	}

	metrics.RecordGhostUpsert()
	return nil
}

// Ghosts returns all of today's death markers, unordered.
func (s *DayStore) Ghosts(ctx context.Context, now time.Time) ([]model.GhostMarker, error) {
	fields, err := s.kv.HGetAll(ctx, ghostsKey(now))
	if err != nil {
		return nil, err
	}

	ghosts := make([]model.GhostMarker, 0, len(fields))
	for _, raw := range fields {
		var g model.GhostMarker
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			s.log.Warn(ctx, "skipping corrupt ghost record", logger.Error(err))
			continue
		}
		ghosts = append(ghosts, g)
	}
	return ghosts, nil
}

// ClearDay removes today's dungeon, leaderboard and ghost records.
func (s *DayStore) ClearDay(ctx context.Context, now time.Time) error {
	return s.kv.Del(ctx, dungeonKey(now), leaderboardKey(now), ghostsKey(now))
}

// SubmissionPost returns the configured submission post id.
// "Unconfigured" is a first-class result, not an error.
func (s *DayStore) SubmissionPost(ctx context.Context) (string, bool, error) {
	postID, ok, err := s.kv.Get(ctx, submissionPostKey)
	if err != nil {
		return "", false, err
	}
	if !ok || postID == "" {
		return "", false, nil
	}
	return postID, true, nil
}

// SetSubmissionPost stores the submission post id. The binding is not
// day-scoped and does not expire.
func (s *DayStore) SetSubmissionPost(ctx context.Context, postID string) error {
	if postID == "" {
		return ErrEmptyPostID
	}
	return s.kv.Set(ctx, submissionPostKey, postID, 0)
}
