package sources

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/polymath-ai/polymath/internal/telemetry"
)

const (
	probeTimeout = 5 * time.Second
	cacheSize    = 2048
)

// Validator probes candidate source URLs for existence. Only a conclusive
// 404 marks a URL invalid; every other status, including the last hop of a
// redirect chain, counts as existing. Redirect-heavy institutional and
// publisher URLs are the norm, not the exception.
type Validator struct {
	client    *http.Client
	cache     *lru.Cache[string, bool]
	logger    *log.Logger
	telemetry *telemetry.Telemetry
}

// NewValidator builds a URL validator with a process-lifetime validity
// cache.
func NewValidator(timeout time.Duration, tele *telemetry.Telemetry) (*Validator, error) {
	if timeout == 0 {
		timeout = probeTimeout
	}
	cache, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating url validity cache: %w", err)
	}
	return &Validator{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// After a few hops the last response decides; a loop is
				// evidence the URL exists, not that it is broken.
				if len(via) >= 3 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		cache:     cache,
		logger:    log.New(log.Writer(), "[SOURCES] ", log.LstdFlags),
		telemetry: tele,
	}, nil
}

// Valid reports whether the URL points at something that exists. Results
// are cached per URL for the process lifetime.
func (v *Validator) Valid(ctx context.Context, raw string) bool {
	raw = normalizeURL(raw)
	if raw == "" {
		return false
	}
	if cached, ok := v.cache.Get(raw); ok {
		return cached
	}

	valid := v.probe(ctx, raw)
	v.cache.Add(raw, valid)
	v.telemetry.RecordSourceProbe(valid)
	return valid
}

func (v *Validator) probe(ctx context.Context, raw string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "polymath-source-validator/1.0")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Printf("probe failed for %s: %v", raw, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode != http.StatusNotFound
}

// normalizeURL prepends https where the scheme is missing and rejects
// strings that do not parse to a hostname.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return raw
}
