package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewsAPIFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/everything" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "bitcoin" {
			t.Fatalf("expected query bitcoin, got %s", q.Get("q"))
		}
		if q.Get("apiKey") != "secret" {
			t.Fatalf("expected api key in query, got %s", q.Get("apiKey"))
		}
		if q.Get("sortBy") != "publishedAt" || q.Get("pageSize") != "10" || q.Get("language") != "en" {
			t.Fatalf("unexpected query params: %v", q)
		}
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"source": {"name": "CoinDesk"},
					"title": "Bitcoin rallies",
					"description": "Up only",
					"url": "https://example.com/a",
					"publishedAt": "2024-05-01T12:00:00Z"
				}
			]
		}`))
	}))
	defer server.Close()

	api := NewNewsAPI(server.URL, "secret", "bitcoin", zerolog.Nop())
	items, err := api.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 article, got %d", len(items))
	}
	if items[0].Source != "CoinDesk" || items[0].Title != "Bitcoin rallies" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
	if items[0].PublishedAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("expected publishedAt preserved, got %s", items[0].PublishedAt)
	}
}

func TestNewsAPIFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	api := NewNewsAPI(server.URL, "bad", "bitcoin", zerolog.Nop())
	if _, err := api.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestNewsAPIFetchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","articles":[]}`))
	}))
	defer server.Close()

	api := NewNewsAPI(server.URL, "k", "bitcoin", zerolog.Nop())
	if _, err := api.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for api status error")
	}
}
