package searxng

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foodlens/meal-vision/internal/core/domain"
	"github.com/foodlens/meal-vision/internal/infrastructure/resilience"
)

func newSearchServer(t *testing.T, results []map[string]string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		if capture != nil {
			*capture = r.URL.Query().Get("q")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
}

func TestSearchScopesQueryAndFiltersHosts(t *testing.T) {
	var query string
	server := newSearchServer(t, []map[string]string{
		{"url": "https://fdc.nal.usda.gov/food/rice", "title": "Rice", "content": "Calories: 130"},
		{"url": "https://evil.example.com/rice", "title": "Rice?", "content": "spam"},
		{"url": "https://www.nutritionix.com/food/rice", "title": "Rice", "content": "Calories: 131"},
	}, &query)
	defer server.Close()

	client := New(server.URL, []string{"usda.gov", "nutritionix.com"})
	hits, err := client.Search(context.Background(), "rice nutrition facts per 100g", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if !strings.Contains(query, "site:usda.gov") || !strings.Contains(query, "site:nutritionix.com") {
		t.Errorf("query = %q, want site: operators for the allow-list", query)
	}

	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2 after filtering", len(hits))
	}
	if hits[0].URL != "https://fdc.nal.usda.gov/food/rice" {
		t.Errorf("first hit = %s", hits[0].URL)
	}
	if hits[1].URL != "https://www.nutritionix.com/food/rice" {
		t.Errorf("second hit = %s", hits[1].URL)
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	results := make([]map[string]string, 0, 4)
	for i := 0; i < 4; i++ {
		results = append(results, map[string]string{
			"url":     "https://fdc.nal.usda.gov/food/" + string(rune('a'+i)),
			"content": "Calories: 100",
		})
	}
	server := newSearchServer(t, results, nil)
	defer server.Close()

	client := New(server.URL, []string{"usda.gov"})
	hits, err := client.Search(context.Background(), "rice", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
}

func TestSearchEmptyAllowListPassesEverything(t *testing.T) {
	server := newSearchServer(t, []map[string]string{
		{"url": "https://anything.example.com/x", "content": "Calories: 1"},
	}, nil)
	defer server.Close()

	client := New(server.URL, nil)
	hits, err := client.Search(context.Background(), "rice", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
}

func TestSearchNonOKStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(server.URL, []string{"usda.gov"})
	if _, err := client.Search(context.Background(), "rice", 5); err == nil {
		t.Fatal("expected an error")
	}
}

func fastExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	})
}

func TestSearchRetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "engine busy", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{
			{"url": "https://fdc.nal.usda.gov/food/rice", "content": "Calories: 130"},
		}})
	}))
	defer server.Close()

	client := New(server.URL, []string{"usda.gov"}, WithResilienceExecutor(fastExecutor()))
	hits, err := client.Search(context.Background(), "rice", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
}

func TestSearchServerErrorIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "engine down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, []string{"usda.gov"})
	_, err := client.Search(context.Background(), "rice", 5)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("error %v, want ErrTemporary kind", err)
	}
}

func TestSearchClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad query", http.StatusForbidden)
	}))
	defer server.Close()

	client := New(server.URL, []string{"usda.gov"}, WithResilienceExecutor(fastExecutor()))
	_, err := client.Search(context.Background(), "rice", 5)
	if err == nil {
		t.Fatal("expected an error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("error %v must not be classified as temporary", err)
	}
}

func TestSearchRateLimiterHonorsContext(t *testing.T) {
	server := newSearchServer(t, nil, nil)
	defer server.Close()

	client := New(server.URL, nil, WithRateLimit(0.001))
	ctx, cancel := context.WithCancel(context.Background())

	// First call consumes the single burst token.
	if _, err := client.Search(ctx, "rice", 1); err != nil {
		t.Fatalf("first search: %v", err)
	}

	cancel()
	if _, err := client.Search(ctx, "rice", 1); err == nil {
		t.Fatal("expected rate limit wait to fail on cancelled context")
	}
}
