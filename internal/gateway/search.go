package gateway

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/polymath-ai/polymath/config"
	"github.com/polymath-ai/polymath/internal/telemetry"
)

// SearchResult is one ranked result from the web-search backend. Content
// holds extracted page text when extraction succeeded; it is best effort and
// frequently empty.
type SearchResult struct {
	Title          string
	URL            string
	Snippet        string
	Content        string
	RelevanceScore float64
}

// Searcher is the search interface the orchestration core programs against.
type Searcher interface {
	// Search returns ranked results for the enriched query. It never
	// returns an error: search is an optimization, and any failure
	// degrades to an empty result list.
	Search(ctx context.Context, query, domain string, keywords []string, maxResults int) []SearchResult
	// Available reports whether a search backend is configured and
	// reachable. Probed once and cached for the process lifetime.
	Available() bool
}

// searchProvider is a raw results backend (Brave, Serper).
type searchProvider interface {
	search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
	name() string
}

// SearchClient fans a query to the first configured provider and enriches
// the top results with extracted page content.
type SearchClient struct {
	cfg       config.SearchConfig
	provider  searchProvider
	extractor *contentExtractor
	logger    *log.Logger
	telemetry *telemetry.Telemetry

	probeOnce sync.Once
	available bool
}

// NewSearchClient builds a search gateway from configuration. With no
// provider key configured the client is permanently unavailable and every
// Search call returns an empty list.
func NewSearchClient(cfg config.SearchConfig, tele *telemetry.Telemetry) *SearchClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	httpc := &http.Client{Timeout: timeout}

	c := &SearchClient{
		cfg:       cfg,
		extractor: newContentExtractor(httpc),
		logger:    log.New(log.Writer(), "[SEARCH] ", log.LstdFlags),
		telemetry: tele,
	}
	switch {
	case cfg.BraveAPIKey != "":
		c.provider = &braveProvider{apiKey: cfg.BraveAPIKey, client: httpc}
	case cfg.SerperAPIKey != "":
		c.provider = &serperProvider{apiKey: cfg.SerperAPIKey, client: httpc}
	}
	return c
}

// Available reports whether search can be used. The underlying capability
// probe runs once on first use and its verdict is cached.
func (c *SearchClient) Available() bool {
	c.probeOnce.Do(func() {
		if c.provider == nil {
			c.available = false
			return
		}
		// A configured key is the capability; a connectivity probe per
		// call would defeat the cache and the backends rate limit
		// aggressively.
		c.available = true
		c.logger.Printf("search provider %s available", c.provider.name())
	})
	return c.available
}

// Search runs the provider query and extracts content for the top results.
// maxResults caps the returned list; zero means the configured default.
func (c *SearchClient) Search(ctx context.Context, query, domain string, keywords []string, maxResults int) []SearchResult {
	if !c.Available() {
		return nil
	}
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	enriched := buildSearchQuery(query, domain, keywords)
	results, err := c.provider.search(ctx, enriched, maxResults)
	if err != nil {
		c.logger.Printf("search failed for %q: %v", enriched, err)
		c.telemetry.RecordSearch(false)
		return nil
	}
	c.telemetry.RecordSearch(true)

	// Best-effort content extraction for the top results. A failed
	// extraction keeps the bare result.
	const maxExtractions = 3
	for i := range results {
		if i >= maxExtractions {
			break
		}
		text, err := c.extractor.extract(ctx, results[i].URL)
		if err != nil {
			c.logger.Printf("content extraction failed for %s: %v", results[i].URL, err)
			continue
		}
		results[i].Content = text
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// buildSearchQuery concatenates the raw query with a human-readable domain
// hint and up to two keyword hints.
func buildSearchQuery(query, domain string, keywords []string) string {
	parts := []string{strings.TrimSpace(query)}
	if domain != "" {
		parts = append(parts, strings.ReplaceAll(domain, "-", " "))
	}
	for i, kw := range keywords {
		if i >= 2 {
			break
		}
		parts = append(parts, kw)
	}
	return strings.Join(parts, " ")
}
