package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradepipe/internal/message"
)

const defaultRedditBaseURL = "https://www.reddit.com"

// Each poll returns at most 100 posts, so remembering a few thousand IDs
// covers the dedupe window with room to spare.
const defaultMaxSeen = 4096

// Reddit polls the public new-submissions listing and keeps only posts
// mentioning one of the configured keywords. Seen IDs are remembered so a
// post is not emitted twice; the set is capped and the oldest entries are
// pruned first, keeping memory flat on long runs.
type Reddit struct {
	baseURL   string
	userAgent string
	keywords  []string
	http      *http.Client
	log       zerolog.Logger

	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	maxSeen int
}

// NewReddit builds a poller filtering on the given keywords.
func NewReddit(baseURL, userAgent string, keywords []string, log zerolog.Logger) *Reddit {
	if baseURL == "" {
		baseURL = defaultRedditBaseURL
	}
	if userAgent == "" {
		userAgent = "tradepipe/1.0"
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Reddit{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		keywords:  lowered,
		http:      &http.Client{Timeout: 10 * time.Second},
		log:       log,
		seen:      make(map[string]struct{}),
		maxSeen:   defaultMaxSeen,
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
}

// Fetch pulls the newest submissions and returns the unseen keyword matches.
func (r *Reddit) Fetch(ctx context.Context) ([]message.SocialPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/r/all/new.json?limit=100", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var posts []message.SocialPost
	for _, child := range listing.Data.Children {
		post := child.Data
		if _, dup := r.seen[post.ID]; dup {
			continue
		}
		if !r.matches(post) {
			continue
		}
		r.remember(post.ID)
		posts = append(posts, message.SocialPost{
			Source:     "reddit",
			ID:         post.ID,
			Title:      post.Title,
			Text:       post.SelfText,
			CreatedUTC: post.CreatedUTC,
			URL:        r.baseURL + post.Permalink,
		})
	}
	if len(posts) > 0 {
		r.log.Debug().Int("posts", len(posts)).Msg("matched social posts")
	}
	return posts, nil
}

// remember records an emitted ID, evicting the oldest once the cap is hit.
// Callers hold r.mu.
func (r *Reddit) remember(id string) {
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
	for len(r.order) > r.maxSeen {
		delete(r.seen, r.order[0])
		r.order = r.order[1:]
	}
}

func (r *Reddit) matches(post redditPost) bool {
	if len(r.keywords) == 0 {
		return true
	}
	text := strings.ToLower(post.Title + " " + post.SelfText)
	for _, kw := range r.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
