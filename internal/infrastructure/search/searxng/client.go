// Package searxng implements the nutrition source search over a SearxNG
// metasearch instance. Results are restricted to the trusted domain
// allow-list both in the query and by post-filtering returned URLs.
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/foodlens/meal-vision/internal/core/domain"
	"github.com/foodlens/meal-vision/internal/infrastructure/resilience"
)

type Client struct {
	baseURL        string
	allowedDomains []string
	httpClient     *http.Client
	limiter        *rate.Limiter
	executor       *resilience.Executor
}

type Option func(*Client)

// WithRateLimit bounds outbound search calls per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithResilienceExecutor(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

func New(baseURL string, allowedDomains []string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		allowedDomains: allowedDomains,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Results []struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("search rate limit wait: %w", err)
		}
	}

	var decoded searchResponse
	call := func(callCtx context.Context) error {
		return c.doSearch(callCtx, query, &decoded)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "search.query", call, classifySearchError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded(err)
	}

	hits := make([]domain.SearchHit, 0, limit)
	for _, result := range decoded.Results {
		if !c.allowed(result.URL) {
			continue
		}
		hits = append(hits, domain.SearchHit{
			URL:     result.URL,
			Title:   result.Title,
			Content: result.Content,
		})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

func (c *Client) doSearch(ctx context.Context, query string, out *searchResponse) error {
	params := url.Values{}
	params.Set("q", c.scopedQuery(query))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode search response: %w", err)
	}
	return nil
}

// scopedQuery appends site: operators for the allow-list. The engine may
// ignore them, so allowed() still filters the returned URLs.
func (c *Client) scopedQuery(query string) string {
	if len(c.allowedDomains) == 0 {
		return query
	}
	sites := make([]string, len(c.allowedDomains))
	for i, d := range c.allowedDomains {
		sites[i] = "site:" + d
	}
	return query + " " + strings.Join(sites, " OR ")
}

func (c *Client) allowed(rawURL string) bool {
	if len(c.allowedDomains) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	for _, d := range c.allowedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
