package expert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polymath-ai/polymath/internal/gateway"
)

type scriptedLLM struct {
	reply func(system, user string, temperature float64, maxTokens int) (gateway.Completion, error)
	calls int
}

func (s *scriptedLLM) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (gateway.Completion, error) {
	s.calls++
	return s.reply(system, user, temperature, maxTokens)
}

func TestKeywordRelevanceBounds(t *testing.T) {
	queries := []string{
		"",
		"hi",
		"why do markets crash and how should I analyze and compare and evaluate inflation",
		"explain the quantum mechanics of particle wave duality and electromagnetic fields",
		"completely unrelated gibberish zzz qqq",
	}
	for _, d := range All() {
		for _, q := range queries {
			score := KeywordRelevance(q, d)
			require.GreaterOrEqual(t, score, 0.0, "query %q domain %s", q, d.Key)
			require.LessOrEqual(t, score, 1.0, "query %q domain %s", q, d.Key)
		}
	}
}

func TestKeywordRelevanceIdempotent(t *testing.T) {
	desc, ok := Lookup("physics")
	require.True(t, ok)
	q := "explain how quantum energy fields interact with matter"
	first := KeywordRelevance(q, desc)
	second := KeywordRelevance(q, desc)
	require.Equal(t, first, second)
	require.Greater(t, first, 0.0)
}

func TestAssessUnknownDomainReturnsDefault(t *testing.T) {
	a := NewRelevanceAssessor(nil, nil)
	require.Equal(t, defaultRelevance, a.Assess(context.Background(), "anything at all", "alchemy"))
}

func TestAssessOracleScoreWins(t *testing.T) {
	llm := &scriptedLLM{reply: func(_, _ string, _ float64, _ int) (gateway.Completion, error) {
		return gateway.Completion{Text: "0.75"}, nil
	}}
	a := NewRelevanceAssessor(llm, nil)
	require.Equal(t, 0.75, a.Assess(context.Background(), "markets", "economy"))
	require.Equal(t, 1, llm.calls)
}

func TestAssessFallsBackOnBadOracleOutput(t *testing.T) {
	cases := map[string]func(string, string, float64, int) (gateway.Completion, error){
		"transport error": func(_, _ string, _ float64, _ int) (gateway.Completion, error) {
			return gateway.Completion{}, errors.New("backend down")
		},
		"unparseable": func(_, _ string, _ float64, _ int) (gateway.Completion, error) {
			return gateway.Completion{Text: "very relevant"}, nil
		},
		"out of range": func(_, _ string, _ float64, _ int) (gateway.Completion, error) {
			return gateway.Completion{Text: "1.5"}, nil
		},
		"zero defers": func(_, _ string, _ float64, _ int) (gateway.Completion, error) {
			return gateway.Completion{Text: "0"}, nil
		},
	}

	desc, _ := Lookup("finance")
	query := "how should I evaluate my investment portfolio risk"
	want := KeywordRelevance(query, desc)

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			a := NewRelevanceAssessor(&scriptedLLM{reply: reply}, nil)
			require.Equal(t, want, a.Assess(context.Background(), query, "finance"))
		})
	}
}

func TestDescriptorTableCoversAllDomains(t *testing.T) {
	for _, key := range []string{
		"psychology", "economy", "finance", "architecture", "engineering",
		"design", "life-sciences", "mathematics", "physics", "philosophy",
	} {
		d, ok := Lookup(key)
		require.True(t, ok, key)
		require.NotEmpty(t, d.Title, key)
		require.NotEmpty(t, d.Keywords, key)
		require.NotEmpty(t, d.Description, key)
	}
	require.Len(t, Keys(), 10)
}
