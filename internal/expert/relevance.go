package expert

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/polymath-ai/polymath/internal/gateway"
)

// defaultRelevance is returned for domains with no Descriptor. Unknown
// domains are not automatically irrelevant.
const defaultRelevance = 0.3

// complexityTerms signal a query that rewards expert treatment; their
// presence raises the keyword-fallback score.
var complexityTerms = []string{"how", "why", "explain", "analyze", "compare", "evaluate"}

// RelevanceAssessor scores how well a query matches a domain. The
// completion backend scores first; keyword overlap covers backend failure.
type RelevanceAssessor struct {
	llm    gateway.Completer
	logger *log.Logger
}

func NewRelevanceAssessor(llm gateway.Completer, logger *log.Logger) *RelevanceAssessor {
	if logger == nil {
		logger = log.New(log.Writer(), "[RELEVANCE] ", log.LstdFlags)
	}
	return &RelevanceAssessor{llm: llm, logger: logger}
}

// Assess returns a relevance score in [0,1] for the query against the
// domain key. Backend scoring wins when it produces a parseable in-range
// non-zero float; otherwise the keyword path decides.
func (a *RelevanceAssessor) Assess(ctx context.Context, query, domainKey string) float64 {
	desc, ok := Lookup(domainKey)
	if !ok {
		return defaultRelevance
	}

	if a.llm != nil {
		if score, err := a.oracleScore(ctx, query, desc); err == nil {
			return score
		} else {
			a.logger.Printf("semantic scoring failed for %s, using keyword fallback: %v", domainKey, err)
		}
	}
	return KeywordRelevance(query, desc)
}

func (a *RelevanceAssessor) oracleScore(ctx context.Context, query string, desc Descriptor) (float64, error) {
	prompt := fmt.Sprintf(`Rate how relevant the following query is to this expert domain on a scale of 0.0 to 1.0.

DOMAIN: %s
EXPERTISE: %s
SPECIALIZATIONS: %s
DESCRIPTION: %s

QUERY: %q

Respond with a single number between 0.0 and 1.0 and nothing else.`,
		desc.Title,
		strings.Join(desc.Expertise, ", "),
		strings.Join(desc.Specializations, ", "),
		desc.Description,
		query)

	completion, err := a.llm.Complete(ctx, "You are a relevance scorer. Respond with a single decimal number only.", prompt, 0.1, 10)
	if err != nil {
		return 0, err
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(completion.Text), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable relevance score %q: %w", completion.Text, err)
	}
	if score < 0 || score > 1 {
		return 0, fmt.Errorf("relevance score %v out of range", score)
	}
	if score == 0 {
		// An exact zero means the scorer deferred; let keywords decide.
		return 0, fmt.Errorf("scorer deferred with zero")
	}
	return score, nil
}

// KeywordRelevance is the deterministic fallback scorer. Exact keyword
// substring matches count full weight and partial word overlap counts half,
// normalized over the keyword list, scaled to 0.8, plus a complexity bonus
// of up to 0.2. The result always lies in [0,1].
func KeywordRelevance(query string, desc Descriptor) float64 {
	if len(desc.Keywords) == 0 {
		return defaultRelevance
	}

	lowerQuery := strings.ToLower(query)
	queryWords := strings.Fields(lowerQuery)

	var weight float64
	for _, keyword := range desc.Keywords {
		kw := strings.ToLower(keyword)
		if strings.Contains(lowerQuery, kw) {
			weight++
			continue
		}
		for _, word := range queryWords {
			if len(word) > 3 && len(kw) > 3 && (strings.Contains(word, kw) || strings.Contains(kw, word)) {
				weight += 0.5
				break
			}
		}
	}

	base := weight / float64(len(desc.Keywords)) * 0.8
	if base > 0.8 {
		base = 0.8
	}

	score := base + queryComplexity(lowerQuery)*0.2
	if score > 1 {
		score = 1
	}
	return score
}

// queryComplexity returns the fraction of complexity-signal terms present
// in the lowercased query.
func queryComplexity(lowerQuery string) float64 {
	var matches int
	for _, term := range complexityTerms {
		if strings.Contains(lowerQuery, term) {
			matches++
		}
	}
	return float64(matches) / float64(len(complexityTerms))
}
