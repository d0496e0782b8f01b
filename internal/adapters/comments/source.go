// Package comments provides access to the submission post's comment
// thread.
//
// The service consumes comments as a single materialized sequence of up
// to the configured limit; paging is the source's concern.
package comments

import (
	"context"

	"github.com/crypticsea/dungeond/internal/domain/model"
)

// Source fetches the comments of a post, in the upstream's own order.
type Source interface {
	// Fetch returns up to limit comments for postID.
	Fetch(ctx context.Context, postID string, limit int) ([]model.Comment, error)
}
