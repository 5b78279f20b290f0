package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

const redditPayload = `{
	"data": {
		"children": [
			{"data": {"id": "p1", "title": "Bitcoin to the moon", "selftext": "", "created_utc": 1714564800, "permalink": "/r/cc/p1"}},
			{"data": {"id": "p2", "title": "Cat pictures", "selftext": "just cats", "created_utc": 1714564801, "permalink": "/r/cats/p2"}},
			{"data": {"id": "p3", "title": "Markets", "selftext": "thinking about ethereum", "created_utc": 1714564802, "permalink": "/r/cc/p3"}}
		]
	}
}`

func TestRedditFetchFiltersAndDedupes(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/r/all/new.json" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "100" {
			t.Fatalf("expected limit 100, got %s", r.URL.Query().Get("limit"))
		}
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(redditPayload))
	}))
	defer server.Close()

	feed := NewReddit(server.URL, "test-agent", []string{"bitcoin", "ethereum"}, zerolog.Nop())

	posts, err := feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if gotUA != "test-agent" {
		t.Fatalf("expected custom user agent, got %q", gotUA)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 keyword matches, got %d", len(posts))
	}
	if posts[0].ID != "p1" || posts[1].ID != "p3" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
	if posts[0].Source != "reddit" {
		t.Fatalf("expected source reddit, got %s", posts[0].Source)
	}

	// Same listing again: everything already seen.
	posts, err = feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch returned error: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected no posts on repeat fetch, got %d", len(posts))
	}
}

func TestRedditFetchNoKeywordsMatchesAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(redditPayload))
	}))
	defer server.Close()

	feed := NewReddit(server.URL, "", nil, zerolog.Nop())
	posts, err := feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected all posts without keywords, got %d", len(posts))
	}
}

func TestRedditSeenSetBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(redditPayload))
	}))
	defer server.Close()

	feed := NewReddit(server.URL, "", nil, zerolog.Nop())
	feed.maxSeen = 2

	posts, err := feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts on first fetch, got %d", len(posts))
	}
	if len(feed.seen) != 2 || len(feed.order) != 2 {
		t.Fatalf("expected seen set capped at 2, got seen=%d order=%d", len(feed.seen), len(feed.order))
	}

	// The evicted oldest ID is re-emitted; the retained two are not.
	posts, err = feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch returned error: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "p1" {
		t.Fatalf("expected only evicted p1 re-emitted, got %+v", posts)
	}
}

func TestRedditFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	feed := NewReddit(server.URL, "", nil, zerolog.Nop())
	if _, err := feed.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}
