package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

const (
	maxExtractBytes = 2 << 20 // page download cap
	maxExtractChars = 4000    // text handed back to prompts
)

// contentExtractor fetches a page and reduces it to plain text suitable for
// splicing into a prompt.
type contentExtractor struct {
	client *http.Client
}

func newContentExtractor(client *http.Client) *contentExtractor {
	return &contentExtractor{client: client}
}

// extract downloads the URL and returns cleaned article text, truncated to
// maxExtractChars. Readability extraction is tried first; a tag-stripping
// pass covers pages readability cannot parse.
func (e *contentExtractor) extract(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; polymath/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: http %d", link, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxExtractBytes))
	if err != nil {
		return "", err
	}
	html := string(raw)

	if u, perr := url.Parse(link); perr == nil {
		if article, rerr := readability.FromReader(strings.NewReader(html), u); rerr == nil {
			if text := strings.TrimSpace(article.TextContent); text != "" {
				return truncate(collapseWhitespace(text), maxExtractChars), nil
			}
		}
	}

	return truncate(stripHTML(html), maxExtractChars), nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// stripHTML removes script/style blocks and markup, decodes the common
// entities, and collapses whitespace.
func stripHTML(html string) string {
	text := scriptRe.ReplaceAllString(html, "")
	text = styleRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, " ")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	text = replacer.Replace(text)
	return collapseWhitespace(text)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
