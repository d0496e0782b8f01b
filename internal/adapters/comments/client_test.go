package comments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/t3_abc/comments" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("unexpected limit %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"c1","body":"first","author":"alice","score":5},
			{"id":"c2","body":"second","author":"bob","score":-3}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Fetch(context.Background(), "t3_abc", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(got))
	}
	if got[0].ID != "c1" || got[0].Author != "alice" || got[0].Score != 5 {
		t.Errorf("unexpected first comment: %+v", got[0])
	}
	if got[1].Score != -3 {
		t.Errorf("negative scores must survive decoding, got %d", got[1].Score)
	}
}

func TestClientFetchClampsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("expected limit clamped to 100, got %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Fetch(context.Background(), "t3_abc", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Fetch(context.Background(), "t3_abc", 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientFetchErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Fetch(context.Background(), "t3_abc", 10)
		if !errors.Is(err, ErrFetch) {
			t.Errorf("expected ErrFetch, got %v", err)
		}
	})

	t.Run("bad payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"a list"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Fetch(context.Background(), "t3_abc", 10)
		if !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := NewClient("http://127.0.0.1:1").Fetch(context.Background(), "t3_abc", 10)
		if !errors.Is(err, ErrFetch) {
			t.Errorf("expected ErrFetch, got %v", err)
		}
	})
}
