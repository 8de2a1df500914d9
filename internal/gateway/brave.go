package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// braveProvider queries the Brave Search API.
// https://api.search.brave.com/app/documentation/web-search
type braveProvider struct {
	apiKey string
	client *http.Client
}

func (p *braveProvider) name() string { return "brave" }

func (p *braveProvider) search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("https://api.search.brave.com/res/v1/web/search?q=%s&count=%d",
		url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave http %d", resp.StatusCode)
	}

	var raw struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []SearchResult
	for i, r := range raw.Web.Results {
		if i >= maxResults {
			break
		}
		out = append(out, SearchResult{
			Title:          r.Title,
			URL:            r.URL,
			Snippet:        r.Description,
			RelevanceScore: 0.9,
		})
	}
	return out, nil
}
