package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/polymath-ai/polymath/internal/expert"
)

// apologyAnswer is the fixed response when no expert produced anything.
const apologyAnswer = "I apologize, but I don't have sufficient expertise to answer that question adequately."

const (
	highConfidenceBand   = 80
	mediumConfidenceBand = 60
	excerptLen           = 300
)

// synthesize merges expert contributions into one answer. Zero
// contributions yield the apology, exactly one is returned verbatim, a
// simple query with at most two is concatenated directly, and everything
// else goes through a structured backend merge.
func (o *Orchestrator) synthesize(ctx context.Context, query string, simple bool, contributions []expert.Contribution) string {
	switch len(contributions) {
	case 0:
		return apologyAnswer
	case 1:
		return contributions[0].Contribution
	}

	primary := primaryContribution(contributions)
	if simple && len(contributions) <= 2 {
		return concatenate(primary, contributions)
	}

	merged, err := o.structuredMerge(ctx, query, contributions)
	if err != nil {
		o.logger.Printf("structured merge failed, concatenating contributions: %v", err)
		return bandedConcatenation(contributions)
	}
	return merged
}

// primaryContribution is the first high-confidence contribution, or the
// first available when none reach that band.
func primaryContribution(contributions []expert.Contribution) expert.Contribution {
	for _, c := range contributions {
		if c.Confidence >= highConfidenceBand {
			return c
		}
	}
	return contributions[0]
}

// concatenate joins the primary contribution with a truncated excerpt of
// one more, skipping the merge call entirely.
func concatenate(primary expert.Contribution, contributions []expert.Contribution) string {
	var b strings.Builder
	b.WriteString(primary.Contribution)
	for _, c := range contributions {
		if c.Domain == primary.Domain {
			continue
		}
		fmt.Fprintf(&b, "\n\nFrom %s: %s", c.Expertise, excerpt(c.Contribution, excerptLen))
		break
	}
	return b.String()
}

// structuredMerge asks the backend for a summary, key points, and detail
// paragraphs with numbered citations over the deduplicated source list.
func (o *Orchestrator) structuredMerge(ctx context.Context, query string, contributions []expert.Contribution) (string, error) {
	sources := dedupeSources(contributions)

	var b strings.Builder
	fmt.Fprintf(&b, "QUERY: %q\n\nEXPERT CONTRIBUTIONS:\n\n", query)
	for i, c := range contributions {
		fmt.Fprintf(&b, "[%d] %s (%s, confidence %d%%):\n%s\n\n", i+1, c.Name, c.Domain, c.Confidence, c.Contribution)
	}
	if len(sources) > 0 {
		b.WriteString("SOURCES:\n")
		for i, s := range sources {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, s)
		}
	}

	system := `You merge expert contributions into one coherent answer. Produce:
1. A one-sentence summary.
2. 3-5 bullet key points.
3. 2-3 short paragraphs of detail.
Attribute insights to their contributing domains in natural language rather than repeating each contribution verbatim. Where a claim is supported by a listed source, add an inline numbered citation marker like [1].`

	completion, err := o.llm.Complete(ctx, system, b.String(), 0.5, 1500)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return "", fmt.Errorf("empty merge result")
	}
	return text, nil
}

// bandedConcatenation is the deterministic merge used when the backend
// cannot. High-confidence contributions lead, medium ones supplement.
func bandedConcatenation(contributions []expert.Contribution) string {
	var high, medium []expert.Contribution
	for _, c := range contributions {
		switch {
		case c.Confidence >= highConfidenceBand:
			high = append(high, c)
		case c.Confidence >= mediumConfidenceBand:
			medium = append(medium, c)
		}
	}

	var b strings.Builder
	b.WriteString("Based on analysis from multiple expert agents:\n\n")

	if len(high) > 0 {
		b.WriteString(high[0].Contribution)
		if len(high) > 1 {
			b.WriteString("\n\nAdditional expert perspectives:\n")
			for i := 1; i < len(high) && i < 3; i++ {
				fmt.Fprintf(&b, "\n• From %s: %s", high[i].Expertise, high[i].Contribution)
			}
		}
	} else {
		b.WriteString(contributions[0].Contribution)
	}

	if len(medium) > 0 {
		b.WriteString("\n\nSupplementary insights:\n")
		for i, c := range medium {
			if i >= 2 {
				break
			}
			fmt.Fprintf(&b, "\n• %s perspective: %s", c.Expertise, c.Contribution)
		}
	}
	return b.String()
}

// dedupeSources flattens contribution sources into one order-preserving
// list with set semantics on the literal source string.
func dedupeSources(contributions []expert.Contribution) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range contributions {
		for _, s := range c.Sources {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
