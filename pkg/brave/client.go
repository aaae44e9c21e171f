// Package brave queries the Brave web search API for recent news results.
package brave

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL   = "https://api.search.brave.com/res/v1"
	defaultTimeout   = 20 * time.Second
	defaultLanguage  = "en"
	defaultFreshness = "pw" // past week

	envAPIKey = "BRAVE_API_KEY"
)

// Result is a single web search hit.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Published   string `json:"published"`
}

// Searcher is the behaviour the news collector depends on.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]Result, error)
}

// Config holds search API settings; the subscription token may come from the
// environment.
type Config struct {
	APIKey    string `json:",optional,env=BRAVE_API_KEY"`
	BaseURL   string `json:",optional"`
	Language  string `json:",default=en"`
	Freshness string `json:",default=pw"`
}

// ResolveAPIKey returns the configured subscription token, falling back to
// the environment.
func (c *Config) ResolveAPIKey() string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(envAPIKey))
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.ResolveAPIKey() == "" {
		return errors.New("brave config: api key is required (set BRAVE_API_KEY)")
	}
	return nil
}

// Client wraps the Brave search REST API.
type Client struct {
	http      *resty.Client
	language  string
	freshness string
}

var _ Searcher = (*Client)(nil)

// NewClient constructs a search client from config, filling defaults for
// unset fields.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	apiKey := cfg.ResolveAPIKey()
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}
	freshness := cfg.Freshness
	if freshness == "" {
		freshness = defaultFreshness
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("Accept-Encoding", "gzip").
		SetHeader("X-Subscription-Token", apiKey)

	return &Client{
		http:      httpClient,
		language:  language,
		freshness: freshness,
	}, nil
}

type webSearchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			Profile     struct {
				Name string `json:"name"`
			} `json:"profile"`
			Age string `json:"age"`
		} `json:"results"`
	} `json:"web"`
}

// Search runs a web search restricted to the configured language and
// freshness window. Non-2xx statuses are errors; callers decide whether to
// degrade to an empty result set.
func (c *Client) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("brave: query cannot be empty")
	}
	if count <= 0 {
		count = 5
	}

	var payload webSearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           query,
			"count":       strconv.Itoa(count),
			"search_lang": c.language,
			"freshness":   c.freshness,
		}).
		SetResult(&payload).
		Get("/web/search")
	if err != nil {
		return nil, fmt.Errorf("brave: search %q: %w", query, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("brave: unexpected status %d for %q", resp.StatusCode(), query)
	}

	results := make([]Result, 0, len(payload.Web.Results))
	for _, item := range payload.Web.Results {
		results = append(results, Result{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			Source:      item.Profile.Name,
			Published:   item.Age,
		})
	}
	return results, nil
}
