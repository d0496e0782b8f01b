package comments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crypticsea/dungeond/internal/domain/model"
	"github.com/crypticsea/dungeond/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout  = 8 * time.Second
	defaultPageSize = 100
)

// Client fetches comments from an HTTP JSON comment API.
//
// Expected endpoint shape:
//
//	GET {base}/posts/{postId}/comments?limit=N
//	-> [{"id": "...", "body": "...", "author": "...", "score": 12}, ...]
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithPageSize sets the page size requested from the source.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// NewClient creates a comment source client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch implements Source. A single attempt is made; failures propagate
// to the caller, which treats them as an empty result.
func (c *Client) Fetch(ctx context.Context, postID string, limit int) ([]model.Comment, error) {
	start := time.Now()
	defer func() {
		metrics.RecordCommentFetchLatency(float64(time.Since(start).Milliseconds()))
	}()

	if limit <= 0 || limit > c.pageSize {
		limit = c.pageSize
	}

	var out []model.Comment
	path := "/posts/" + url.PathEscape(postID) + "/comments?limit=" + strconv.Itoa(limit)
	if err := c.apiGet(ctx, path, &out); err != nil {
		metrics.RecordCommentFetchError()
		return nil, err
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Client) apiGet(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
