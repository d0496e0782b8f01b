// Package rotation orchestrates the daily dungeon rotation: read the
// configured submission post, pick the top-voted submission, persist it
// as today's dungeon.
package rotation

import (
	"context"
	"time"

	"github.com/crypticsea/dungeond/internal/domain/model"
	"github.com/crypticsea/dungeond/pkg/logger"
	"github.com/crypticsea/dungeond/pkg/metrics"
)

// Status classifies the outcome of one rotation pass. All three are
// normal outcomes, not faults.
type Status string

const (
	StatusNotConfigured Status = "not_configured"
	StatusNoSubmissions Status = "no_submissions"
	StatusRotated       Status = "rotated"
)

// Outcome reports what a rotation pass did.
type Outcome struct {
	Status   Status
	Monster  string
	Modifier string
	Author   string
}

// TopSource yields the highest-voted submission for a post.
type TopSource interface {
	Top(ctx context.Context, postID string) (model.CommentSubmission, bool)
}

// Store is the slice of the day store the controller needs.
type Store interface {
	SubmissionPost(ctx context.Context) (string, bool, error)
	SetDungeon(ctx context.Context, now time.Time, cfg model.DungeonConfig) error
}

// Controller runs rotation passes, on a schedule and on demand.
type Controller struct {
	source TopSource
	store  Store
	clock  func() time.Time
	log    logger.Logger
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithClock sets the time source. Tests use this to pin the day key.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// New constructs a Controller.
func New(source TopSource, store Store, opts ...Option) *Controller {
	c := &Controller{
		source: source,
		store:  store,
		clock:  time.Now,
		log:    logger.Get().Named("rotation"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Rotate runs one rotation pass. It is idempotent: re-running before
// the day boundary re-selects and re-writes the current top submission.
// The error is non-nil only for backend write faults; "not configured"
// and "no submissions" are reported through the Outcome.
func (c *Controller) Rotate(ctx context.Context) (Outcome, error) {
	postID, configured, err := c.store.SubmissionPost(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !configured {
		c.log.Info(ctx, "no submission post configured; keeping current dungeon")
		metrics.RecordRotationRun(string(StatusNotConfigured))
		return Outcome{Status: StatusNotConfigured}, nil
	}

	top, ok := c.source.Top(ctx, postID)
	if !ok {
		c.log.Info(ctx, "no valid submissions; keeping current dungeon",
			logger.String("postId", postID),
		)
		metrics.RecordRotationRun(string(StatusNoSubmissions))
		return Outcome{Status: StatusNoSubmissions}, nil
	}

	now := c.clock()
	cfg := model.DungeonConfig{
		Layout:      top.Layout,
		Monster:     top.Monster,
		Modifier:    top.Modifier,
		CreatedAt:   now.UnixMilli(),
		SubmittedBy: top.Author,
	}
	if err := c.store.SetDungeon(ctx, now, cfg); err != nil {
		return Outcome{}, err
	}

	c.log.Info(ctx, "rotated daily dungeon",
		logger.String("monster", cfg.Monster),
		logger.String("modifier", cfg.Modifier),
		logger.String("author", cfg.SubmittedBy),
		logger.Int("upvotes", top.Upvotes),
	)
	metrics.RecordRotationRun(string(StatusRotated))

	return Outcome{
		Status:   StatusRotated,
		Monster:  cfg.Monster,
		Modifier: cfg.Modifier,
		Author:   cfg.SubmittedBy,
	}, nil
}

// RunDaily blocks until ctx is done, firing one rotation pass at the
// given UTC hour each day. Callers run it in a goroutine.
func (c *Controller) RunDaily(ctx context.Context, hourUTC int) {
	for {
		wait := untilNextHour(c.clock(), hourUTC)
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if _, err := c.Rotate(ctx); err != nil {
				c.log.Error(ctx, "scheduled rotation failed", logger.Error(err))
			}
		}
	}
}

// untilNextHour returns the duration from now to the next occurrence of
// hourUTC.
func untilNextHour(now time.Time, hourUTC int) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
