package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tradepipe/internal/message"
)

const defaultNewsBaseURL = "https://newsapi.org"

// NewsAPI polls the everything endpoint for recent articles.
type NewsAPI struct {
	baseURL string
	apiKey  string
	query   string
	http    *http.Client
	log     zerolog.Logger
}

// NewNewsAPI builds a poller for the given search query.
func NewNewsAPI(baseURL, apiKey, query string, log zerolog.Logger) *NewsAPI {
	if baseURL == "" {
		baseURL = defaultNewsBaseURL
	}
	return &NewsAPI{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		query:   query,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

type newsResponse struct {
	Status   string        `json:"status"`
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// Fetch pulls the latest page of articles matching the query.
func (n *NewsAPI) Fetch(ctx context.Context) ([]message.NewsItem, error) {
	q := url.Values{}
	q.Set("q", n.query)
	q.Set("apiKey", n.apiKey)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/v2/everything?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := n.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api status %d", resp.StatusCode)
	}

	var out newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Status != "ok" {
		return nil, fmt.Errorf("news api status %q", out.Status)
	}

	items := make([]message.NewsItem, 0, len(out.Articles))
	for _, a := range out.Articles {
		items = append(items, message.NewsItem{
			Source:      a.Source.Name,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	n.log.Debug().Int("articles", len(items)).Msg("fetched news page")
	return items, nil
}
