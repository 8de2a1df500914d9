package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// serperProvider queries the Serper API. https://serper.dev/
type serperProvider struct {
	apiKey string
	client *http.Client
}

func (p *serperProvider) name() string { return "serper" }

func (p *serperProvider) search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	body, err := json.Marshal(map[string]any{"q": query, "num": maxResults})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://google.serper.dev/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper http %d", resp.StatusCode)
	}

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []SearchResult
	for i, r := range raw.Organic {
		if i >= maxResults {
			break
		}
		out = append(out, SearchResult{
			Title:          r.Title,
			URL:            r.Link,
			Snippet:        r.Snippet,
			RelevanceScore: 0.9,
		})
	}
	return out, nil
}
