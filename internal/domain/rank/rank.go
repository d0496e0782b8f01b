// Package rank orders extracted dungeon submissions by community
// approval.
package rank

import (
	"context"
	"sort"

	"github.com/crypticsea/dungeond/internal/adapters/comments"
	"github.com/crypticsea/dungeond/internal/domain/extract"
	"github.com/crypticsea/dungeond/internal/domain/model"
	"github.com/crypticsea/dungeond/pkg/logger"
)

// defaultFetchLimit bounds how many comments one rotation pass inspects.
const defaultFetchLimit = 100

// Ranker collects submissions from a post's comments and sorts them by
// upvotes, descending. Ties keep the source's fetch order.
type Ranker struct {
	source     comments.Source
	extractor  *extract.Extractor
	fetchLimit int
	log        logger.Logger
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithFetchLimit bounds the number of comments inspected per pass.
func WithFetchLimit(limit int) Option {
	return func(r *Ranker) {
		if limit > 0 {
			r.fetchLimit = limit
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Ranker) {
		if log != nil {
			r.log = log
		}
	}
}

// New constructs a Ranker over the given comment source and extractor.
func New(source comments.Source, extractor *extract.Extractor, opts ...Option) *Ranker {
	r := &Ranker{
		source:     source,
		extractor:  extractor,
		fetchLimit: defaultFetchLimit,
		log:        logger.Get().Named("rank"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Submissions returns the post's valid submissions, best first.
//
// Malformed comments are dropped silently; a failed fetch yields an
// empty list. Callers see both cases identically: no submission to act
// on.
func (r *Ranker) Submissions(ctx context.Context, postID string) []model.CommentSubmission {
	raw, err := r.source.Fetch(ctx, postID, r.fetchLimit)
	if err != nil {
		r.log.Warn(ctx, "comment fetch failed; treating as no submissions",
			logger.String("postId", postID),
			logger.Error(err),
		)
		return nil
	}

	subs := make([]model.CommentSubmission, 0, len(raw))
	for _, c := range raw {
		if sub, ok := r.extractor.Parse(c); ok {
			subs = append(subs, sub)
		}
	}

	// Stable keeps fetch order for equal upvote counts.
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Upvotes > subs[j].Upvotes
	})

	return subs
}

// Top returns the highest-voted submission, or false when the post has
// none.
func (r *Ranker) Top(ctx context.Context, postID string) (model.CommentSubmission, bool) {
	subs := r.Submissions(ctx, postID)
	if len(subs) == 0 {
		return model.CommentSubmission{}, false
	}
	return subs[0], true
}
