package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polymath-ai/polymath/config"
)

type stubProvider struct {
	results []SearchResult
	err     error
	lastQ   string
}

func (p *stubProvider) name() string { return "stub" }

func (p *stubProvider) search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	p.lastQ = query
	if p.err != nil {
		return nil, p.err
	}
	if len(p.results) > maxResults {
		return p.results[:maxResults], nil
	}
	return p.results, nil
}

func TestSearchUnavailableWithoutKey(t *testing.T) {
	c := NewSearchClient(config.SearchConfig{}, nil)
	require.False(t, c.Available())
	require.Nil(t, c.Search(context.Background(), "anything", "", nil, 5))
}

func TestSearchEnrichesQueryAndExtractsContent(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>t</title></head><body><article><p>Compound interest grows exponentially over time.</p></article></body></html>`))
	}))
	defer page.Close()

	c := NewSearchClient(config.SearchConfig{BraveAPIKey: "k", Timeout: 2 * time.Second}, nil)
	stub := &stubProvider{results: []SearchResult{
		{Title: "Interest", URL: page.URL, Snippet: "snippet", RelevanceScore: 0.9},
	}}
	c.provider = stub

	got := c.Search(context.Background(), "how does interest work", "finance", []string{"compound", "apr", "extra"}, 5)
	require.Len(t, got, 1)
	require.Contains(t, got[0].Content, "Compound interest")

	require.Contains(t, stub.lastQ, "how does interest work")
	require.Contains(t, stub.lastQ, "finance")
	require.Contains(t, stub.lastQ, "compound")
	require.Contains(t, stub.lastQ, "apr")
	require.NotContains(t, stub.lastQ, "extra")
}

func TestSearchExtractionFailureKeepsBareResult(t *testing.T) {
	c := NewSearchClient(config.SearchConfig{BraveAPIKey: "k", Timeout: time.Second}, nil)
	c.provider = &stubProvider{results: []SearchResult{
		{Title: "Gone", URL: "http://127.0.0.1:1/nope", Snippet: "still useful"},
	}}

	got := c.Search(context.Background(), "q", "", nil, 5)
	require.Len(t, got, 1)
	require.Empty(t, got[0].Content)
	require.Equal(t, "still useful", got[0].Snippet)
}

func TestSearchProviderErrorDegradesToEmpty(t *testing.T) {
	c := NewSearchClient(config.SearchConfig{BraveAPIKey: "k"}, nil)
	c.provider = &stubProvider{err: errors.New("backend down")}
	require.Nil(t, c.Search(context.Background(), "q", "", nil, 5))
}

func TestFormatSearchContextHeaders(t *testing.T) {
	results := []SearchResult{{Title: "A", URL: "https://a.example", Snippet: "sa"}}

	fresh := FormatSearchContext(results, "latest rates", "fresh_data")
	require.Contains(t, fresh, "latest rates")
	require.NotEqual(t, fresh, FormatSearchContext(results, "latest rates", "deep_expertise"))
	require.NotEqual(t, fresh, FormatSearchContext(results, "latest rates", "comprehensive"))
}

func TestFormatSearchContextTopThreeAndCeiling(t *testing.T) {
	big := strings.Repeat("x", maxContextChars)
	results := []SearchResult{
		{Title: "One", URL: "u1", Snippet: "s1", Content: big},
		{Title: "Two", URL: "u2", Snippet: "s2"},
		{Title: "Three", URL: "u3", Snippet: "s3"},
		{Title: "Four", URL: "u4", Snippet: "s4"},
	}

	out := FormatSearchContext(results, "q", "comprehensive")
	require.Contains(t, out, "One")
	require.NotContains(t, out, "Four")
	require.LessOrEqual(t, len(out), maxContextChars)
}

func TestFormatSearchContextEmpty(t *testing.T) {
	require.Empty(t, FormatSearchContext(nil, "q", "comprehensive"))
}

func TestStripHTML(t *testing.T) {
	in := `<html><head><script>var x=1;</script><style>.a{}</style></head>` +
		`<body><h1>Title</h1><p>Hello &amp; welcome&nbsp;here</p></body></html>`
	out := stripHTML(in)
	require.NotContains(t, out, "var x")
	require.NotContains(t, out, ".a{}")
	require.Contains(t, out, "Title")
	require.Contains(t, out, "Hello & welcome here")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 10))
	got := truncate(strings.Repeat("a", 50), 10)
	require.True(t, strings.HasSuffix(got, "..."))
	require.LessOrEqual(t, len(got), 13)
}
