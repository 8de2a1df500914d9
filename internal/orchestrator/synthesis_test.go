package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polymath-ai/polymath/internal/expert"
)

func contribution(domain, text string, confidence int, srcs ...string) expert.Contribution {
	return expert.Contribution{
		Name:         domain + " Expert",
		Domain:       domain,
		Expertise:    domain + " Expert",
		Contribution: text,
		Confidence:   confidence,
		Sources:      srcs,
	}
}

func TestSynthesizeZeroContributionsApology(t *testing.T) {
	llm := &routedLLM{handle: func(system, user string) (string, error) {
		return "", errors.New("must not be called")
	}}
	o := newTestOrchestrator(llm)

	got := o.synthesize(context.Background(), "q", false, nil)
	require.Equal(t, apologyAnswer, got)
	require.Zero(t, llm.callCount())
}

func TestSynthesizeSingleContributionVerbatim(t *testing.T) {
	llm := &routedLLM{handle: func(system, user string) (string, error) {
		return "", errors.New("must not be called")
	}}
	o := newTestOrchestrator(llm)

	only := contribution("physics", "The exact answer text.", 85)
	got := o.synthesize(context.Background(), "q", false, []expert.Contribution{only})
	require.Equal(t, "The exact answer text.", got)
	require.Zero(t, llm.callCount())
}

func TestSynthesizeSimplePairConcatenatesWithoutBackend(t *testing.T) {
	llm := &routedLLM{handle: func(system, user string) (string, error) {
		return "", errors.New("must not be called")
	}}
	o := newTestOrchestrator(llm)

	contribs := []expert.Contribution{
		contribution("physics", "Primary high-confidence answer.", 90),
		contribution("mathematics", strings.Repeat("x", 400), 70),
	}
	got := o.synthesize(context.Background(), "short query", true, contribs)
	require.Zero(t, llm.callCount())
	require.True(t, strings.HasPrefix(got, "Primary high-confidence answer."))
	require.Contains(t, got, "mathematics Expert")
	require.Contains(t, got, strings.Repeat("x", excerptLen)+"...")
	require.NotContains(t, got, strings.Repeat("x", excerptLen+1))
}

func TestSynthesizeStructuredMerge(t *testing.T) {
	llm := &routedLLM{handle: func(system, user string) (string, error) {
		require.Contains(t, system, "merge expert contributions")
		require.Contains(t, user, "Physics text.")
		require.Contains(t, user, "https://a.example")
		return "Structured merged answer.", nil
	}}
	o := newTestOrchestrator(llm)

	contribs := []expert.Contribution{
		contribution("physics", "Physics text.", 85, "https://a.example"),
		contribution("mathematics", "Math text.", 85),
		contribution("philosophy", "Philosophy text.", 70),
	}
	got := o.synthesize(context.Background(), "deep question", false, contribs)
	require.Equal(t, "Structured merged answer.", got)
	require.Equal(t, 1, llm.callCount())
}

func TestSynthesizeMergeFailureFallsBackToBands(t *testing.T) {
	llm := &routedLLM{handle: func(system, user string) (string, error) {
		return "", errors.New("backend down")
	}}
	o := newTestOrchestrator(llm)

	contribs := []expert.Contribution{
		contribution("physics", "High confidence physics.", 90),
		contribution("mathematics", "High confidence math.", 85),
		contribution("philosophy", "Medium confidence philosophy.", 65),
	}
	got := o.synthesize(context.Background(), "deep question", false, contribs)
	require.Contains(t, got, "High confidence physics.")
	require.Contains(t, got, "High confidence math.")
	require.Contains(t, got, "Supplementary insights")
	require.Contains(t, got, "Medium confidence philosophy.")
}

func TestDedupeSources(t *testing.T) {
	contribs := []expert.Contribution{
		contribution("physics", "a", 85, "https://a.example", "https://b.example"),
		contribution("mathematics", "b", 85, "https://a.example", "https://c.example"),
	}
	got := dedupeSources(contribs)
	require.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, got)
}

func TestPrimaryContribution(t *testing.T) {
	contribs := []expert.Contribution{
		contribution("philosophy", "medium", 70),
		contribution("physics", "high", 85),
	}
	require.Equal(t, "high", primaryContribution(contribs).Contribution)

	allMedium := []expert.Contribution{
		contribution("philosophy", "first", 70),
		contribution("physics", "second", 75),
	}
	require.Equal(t, "first", primaryContribution(allMedium).Contribution)
}
