package expert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polymath-ai/polymath/internal/gateway"
	"github.com/polymath-ai/polymath/internal/sources"
)

type staticFinder struct {
	srcs  []sources.Source
	calls int
}

func (f *staticFinder) Synthesize(ctx context.Context, answerText, domain string, maxSources int) []sources.Source {
	f.calls++
	return f.srcs
}

type noSearch struct{}

func (noSearch) Search(ctx context.Context, query, domain string, keywords []string, maxResults int) []gateway.SearchResult {
	return nil
}
func (noSearch) Available() bool { return false }

func TestGenerateResponseRequiresQuery(t *testing.T) {
	u := NewUnit("physics", Deps{LLM: &scriptedLLM{}})
	_, err := u.GenerateResponse(context.Background(), false)
	require.ErrorIs(t, err, ErrNoQuery)
}

func TestGenerateResponseSuccess(t *testing.T) {
	answer := strings.Repeat("Energy is conserved in closed systems. ", 3)
	llm := &scriptedLLM{reply: func(system, user string, _ float64, _ int) (gateway.Completion, error) {
		require.Contains(t, system, "physics expert")
		return gateway.Completion{Text: answer, TokensUsed: 123}, nil
	}}
	finder := &staticFinder{srcs: []sources.Source{{Title: "Nature", URL: "https://www.nature.com"}}}

	u := NewUnit("physics", Deps{LLM: llm, Search: noSearch{}, Finder: finder})
	u.SetQuery("explain conservation of energy in detail")
	u.SetConfidence(0.85)

	got, err := u.GenerateResponse(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, strings.TrimSpace(answer), got.Contribution)
	require.Equal(t, 85, got.Confidence)
	require.Equal(t, "physics", got.Domain)
	require.Equal(t, []string{"https://www.nature.com"}, got.Sources)
	require.Equal(t, 123, got.TokensUsed)
	require.Equal(t, 1, finder.calls)
}

func TestGenerateResponseNeverThrows(t *testing.T) {
	llm := &scriptedLLM{reply: func(_, _ string, _ float64, _ int) (gateway.Completion, error) {
		return gateway.Completion{}, errors.New("backend exploded")
	}}
	u := NewUnit("finance", Deps{LLM: llm})
	u.SetQuery("how do I diversify my portfolio")
	u.SetConfidence(0.85)

	got, err := u.GenerateResponse(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, fallbackAnswer, got.Contribution)
	require.Equal(t, 10, got.Confidence)
	require.Empty(t, got.Sources)
}

func TestGenerateResponseSkipsSourcesForShortAnswers(t *testing.T) {
	llm := &scriptedLLM{reply: func(_, _ string, _ float64, _ int) (gateway.Completion, error) {
		return gateway.Completion{Text: "42."}, nil
	}}
	finder := &staticFinder{srcs: []sources.Source{{URL: "https://example.org"}}}
	u := NewUnit("mathematics", Deps{LLM: llm, Finder: finder})
	u.SetQuery("what is six times seven")

	got, err := u.GenerateResponse(context.Background(), false)
	require.NoError(t, err)
	require.Empty(t, got.Sources)
	require.Zero(t, finder.calls)
}

func TestGenerateResponseSimpleQueryBudget(t *testing.T) {
	var gotTemp float64
	var gotTokens int
	llm := &scriptedLLM{reply: func(_, _ string, temperature float64, maxTokens int) (gateway.Completion, error) {
		gotTemp, gotTokens = temperature, maxTokens
		return gateway.Completion{Text: "Photosynthesis converts light into chemical energy in plants."}, nil
	}}
	u := NewUnit("life-sciences", Deps{LLM: llm})

	u.SetQuery("What is photosynthesis?")
	_, err := u.GenerateResponse(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, simpleTemperature, gotTemp)
	require.Equal(t, simpleMaxTokens, gotTokens)

	u.SetQuery("Analyze the evolutionary trade-offs between C3 and C4 photosynthesis pathways under rising global temperatures")
	_, err = u.GenerateResponse(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, complexTemperature, gotTemp)
	require.Equal(t, complexMaxTokens, gotTokens)
}

func TestSetConfidenceClamps(t *testing.T) {
	u := NewUnit("design", Deps{})
	u.SetConfidence(1.7)
	require.Equal(t, 1.0, u.Confidence())
	u.SetConfidence(-0.4)
	require.Equal(t, 0.0, u.Confidence())
}

func TestUnknownDomainGetsGenericPersona(t *testing.T) {
	u := NewUnit("numerology", Deps{})
	require.Equal(t, "numerology", u.Domain())
	require.Contains(t, SystemPrompt("numerology"), "numerology")
}
