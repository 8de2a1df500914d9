package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(2*time.Second, nil)
	require.NoError(t, err)
	return v
}

func TestValidOnlyNotFoundIsInvalid(t *testing.T) {
	statuses := map[int]bool{
		http.StatusOK:                  true,
		http.StatusForbidden:           true,
		http.StatusInternalServerError: true,
		http.StatusTooManyRequests:     true,
		http.StatusNotFound:            false,
	}
	for status, want := range statuses {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		v := newTestValidator(t)
		require.Equal(t, want, v.Valid(context.Background(), srv.URL), "status %d", status)
		srv.Close()
	}
}

func TestValidAcceptsRedirectLoops(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/loop", http.StatusFound)
	}))
	defer srv.Close()

	v := newTestValidator(t)
	require.True(t, v.Valid(context.Background(), srv.URL))
}

func TestValidCachesProbes(t *testing.T) {
	var probes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
	}))
	defer srv.Close()

	v := newTestValidator(t)
	require.True(t, v.Valid(context.Background(), srv.URL))
	require.True(t, v.Valid(context.Background(), srv.URL))
	require.True(t, v.Valid(context.Background(), srv.URL))
	require.Equal(t, int32(1), probes.Load())
}

func TestValidRejectsUnreachableAndGarbage(t *testing.T) {
	v := newTestValidator(t)
	require.False(t, v.Valid(context.Background(), ""))
	require.False(t, v.Valid(context.Background(), "http://"))
	require.False(t, v.Valid(context.Background(), "http://127.0.0.1:1/nope"))
}

func TestNormalizeURLPrependsScheme(t *testing.T) {
	require.Equal(t, "https://example.org/a", normalizeURL("example.org/a"))
	require.Equal(t, "http://example.org", normalizeURL("http://example.org"))
	require.Empty(t, normalizeURL("   "))
}
