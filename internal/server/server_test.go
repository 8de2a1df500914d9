package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polymath-ai/polymath/config"
	"github.com/polymath-ai/polymath/internal/gateway"
	"github.com/polymath-ai/polymath/internal/orchestrator"
	"github.com/polymath-ai/polymath/internal/profile"
)

type stubLLM struct {
	handle func(system, user string) (string, error)
}

func (s *stubLLM) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (gateway.Completion, error) {
	text, err := s.handle(system, user)
	if err != nil {
		return gateway.Completion{}, err
	}
	return gateway.Completion{Text: text}, nil
}

func testServer(t *testing.T, handle func(system, user string) (string, error)) *Server {
	t.Helper()
	cfg := &config.Config{
		Experts: config.ExpertsConfig{MaxActive: 5, RouterConfidence: 0.85},
		Sources: config.SourcesConfig{MaxPerAnswer: 6},
	}
	if handle == nil {
		handle = func(system, user string) (string, error) {
			return "", errors.New("backend unavailable")
		}
	}
	orch := orchestrator.New(cfg, &stubLLM{handle: handle}, nil, nil, nil, nil, nil)
	return New(cfg, orch, profile.NewMemoryStore(), nil)
}

func doJSON(t *testing.T, e http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echoContentType, "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const echoContentType = "Content-Type"

func TestChatArithmeticEndToEnd(t *testing.T) {
	e := testServer(t, nil).Echo()
	rec := doJSON(t, e, http.MethodPost, "/api/chat", `{"message":"What is 2+2?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Response string        `json:"response"`
		Agents   []interface{} `json:"agents"`
		Sources  []string      `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "2+2 = 4", resp.Response)
	require.NotNil(t, resp.Agents)
	require.Empty(t, resp.Agents)
	require.NotNil(t, resp.Sources)
	require.Empty(t, resp.Sources)
}

func TestChatComplexQueryAgentCount(t *testing.T) {
	e := testServer(t, func(system, user string) (string, error) {
		switch {
		case strings.Contains(system, "query classifier"):
			return `{"isSimple":false,"needsSearch":false,"directAnswer":""}`, nil
		case strings.Contains(system, "query analyzer"):
			return `{"complexity":0.8,"suggestedAgents":["physics","mathematics"],"reasoning":"r"}`, nil
		case strings.Contains(system, "physics expert"):
			return "Physics contribution with enough text to matter.", nil
		case strings.Contains(system, "statistics expert"):
			return "Mathematics contribution with enough text to matter.", nil
		case strings.Contains(system, "merge expert contributions"):
			return "Merged final answer.", nil
		}
		return "", errors.New("unexpected: " + system)
	}).Echo()

	rec := doJSON(t, e, http.MethodPost, "/api/chat",
		`{"message":"Analyze the relationship between quantum tunneling and the mathematics behind it"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Response string `json:"response"`
		Agents   []struct {
			Domain     string `json:"domain"`
			Confidence int    `json:"confidence"`
		} `json:"agents"`
		Metadata struct {
			QueryComplexity  float64  `json:"queryComplexity"`
			ActiveAgentCount int      `json:"activeAgentCount"`
			RelevantDomains  []string `json:"relevantDomains"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Merged final answer.", resp.Response)
	require.Equal(t, 2, resp.Metadata.ActiveAgentCount)
	require.Len(t, resp.Agents, 2)
	require.ElementsMatch(t, []string{"physics", "mathematics"}, resp.Metadata.RelevantDomains)
	require.Equal(t, 0.8, resp.Metadata.QueryComplexity)
}

func TestChatRejectsBadMessage(t *testing.T) {
	e := testServer(t, nil).Echo()

	for name, body := range map[string]string{
		"missing":    `{}`,
		"non-string": `{"message":42}`,
		"blank":      `{"message":"   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/api/chat", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), "message is required")
		})
	}
}

func TestChatInternalFailureIsGeneric(t *testing.T) {
	// Non-arithmetic query with a dead backend follows the fallback
	// classifiers to an apologetic-but-valid 200. The transport layer never
	// sees internal error text.
	e := testServer(t, nil).Echo()
	rec := doJSON(t, e, http.MethodPost, "/api/chat", `{"message":"why is the sky blue"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "backend unavailable")
}

func TestListAgents(t *testing.T) {
	e := testServer(t, nil).Echo()
	rec := doJSON(t, e, http.MethodGet, "/api/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Agents []struct {
			Key    string `json:"key"`
			Title  string `json:"title"`
			Active bool   `json:"active"`
		} `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Agents, 10)
	for _, a := range resp.Agents {
		require.NotEmpty(t, a.Key)
		require.NotEmpty(t, a.Title)
		require.True(t, a.Active)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	e := testServer(t, nil).Echo()

	rec := doJSON(t, e, http.MethodGet, "/api/user/u1/profile", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodPut, "/api/user/u1/profile",
		`{"activeAgents":["physics","mathematics"],"preferredStyle":"concise"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/user/u1/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p profile.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, []string{"physics", "mathematics"}, p.ActiveAgents)
}

func TestProfileRejectsUnknownDomain(t *testing.T) {
	e := testServer(t, nil).Echo()
	rec := doJSON(t, e, http.MethodPut, "/api/user/u1/profile", `{"activeAgents":["alchemy"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatStreamArithmetic(t *testing.T) {
	e := testServer(t, nil).Echo()
	rec := doJSON(t, e, http.MethodPost, "/api/chat/stream", `{"message":"2+2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, `data: {"text":"2+2 = 4"}`)
	require.True(t, strings.HasSuffix(strings.TrimSpace(body), "data: [DONE]"))
}

func TestHealthz(t *testing.T) {
	e := testServer(t, nil).Echo()
	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
