package expert

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/polymath-ai/polymath/internal/gateway"
	"github.com/polymath-ai/polymath/internal/llmjson"
)

// Search types a Decision may carry.
const (
	SearchDeepExpertise = "deep_expertise"
	SearchFreshData     = "fresh_data"
	SearchComprehensive = "comprehensive"
	SearchNone          = "none"
)

// Decision is the structured verdict on whether a query benefits from web
// search. Reached per expert, not cached across them: domains disagree on
// what counts as fresh.
type Decision struct {
	ShouldSearch bool    `json:"shouldSearch"`
	Confidence   float64 `json:"confidence"`
	SearchType   string  `json:"searchType"`
	Reasoning    string  `json:"reasoning"`
}

var freshDataTriggers = []string{
	"latest", "recent", "current", "today", "now",
	"standings", "score", "price", "stock", "weather", "news", "update",
	"status", "live", "real-time", "this year", "this month",
}

var deepExpertiseTriggers = []string{"advanced", "cutting-edge", "state-of-the-art", "research"}

// SearchNeedAssessor decides whether a query needs web augmentation,
// backend-first with a deterministic keyword fallback.
type SearchNeedAssessor struct {
	llm    gateway.Completer
	logger *log.Logger
}

func NewSearchNeedAssessor(llm gateway.Completer, logger *log.Logger) *SearchNeedAssessor {
	if logger == nil {
		logger = log.New(log.Writer(), "[SEARCH-NEED] ", log.LstdFlags)
	}
	return &SearchNeedAssessor{llm: llm, logger: logger}
}

// Decide returns a full Decision for the query in the context of one
// expert. Backend failure or malformed output falls back to keywords.
func (a *SearchNeedAssessor) Decide(ctx context.Context, query, expertiseArea, requester string) Decision {
	if a.llm == nil {
		return FallbackDecision(query)
	}

	prompt := fmt.Sprintf(`Analyze whether this expert should use web search to enhance their response.

QUERY: %q
AGENT: %s
EXPERTISE: %s

Search scenarios:
1. DEEP_EXPERTISE: needs current research, methodologies, or advanced techniques in the field
2. FRESH_DATA: requires recent events, current statistics, or real-time information
3. COMPREHENSIVE: complex query needing broad current context beyond training data
4. NONE: existing knowledge is sufficient

Respond in this exact JSON format:
{
  "shouldSearch": boolean,
  "reasoning": "Brief explanation of decision",
  "confidence": number (0.0-1.0),
  "searchType": "deep_expertise" | "fresh_data" | "comprehensive" | "none"
}`, query, requester, expertiseArea)

	completion, err := a.llm.Complete(ctx, "You are a search decision analyzer. Respond only with valid JSON as specified.", prompt, 0.3, 200)
	if err != nil {
		a.logger.Printf("search decision failed for %s, using keyword fallback: %v", requester, err)
		return FallbackDecision(query)
	}

	var decision Decision
	if err := llmjson.Decode(completion.Text, &decision); err != nil {
		a.logger.Printf("search decision unparseable for %s, using keyword fallback: %v", requester, err)
		return FallbackDecision(query)
	}
	if !validSearchType(decision.SearchType) || decision.Reasoning == "" {
		a.logger.Printf("search decision malformed for %s (type %q), using keyword fallback", requester, decision.SearchType)
		return FallbackDecision(query)
	}
	return decision
}

// NeedsSearch is the cheap boolean-only variant for hot paths: a yes/no
// question with a short token budget, keyword fallback on failure.
func (a *SearchNeedAssessor) NeedsSearch(ctx context.Context, query, requester, expertiseArea string) bool {
	if a.llm == nil {
		return fallbackNeedsSearch(query)
	}

	prompt := fmt.Sprintf(`Query: %q
Agent: %s (%s)

Does this agent need current web data to answer accurately?

Consider recent events, current prices, scores, standings, real-time information, and recent research in the agent's field.

Answer: YES or NO`, query, requester, expertiseArea)

	completion, err := a.llm.Complete(ctx, fmt.Sprintf("You are a search decision assistant for %s. Answer only YES or NO.", requester), prompt, 0.1, 10)
	if err != nil {
		a.logger.Printf("boolean search assessment failed for %s, using keyword fallback: %v", requester, err)
		return fallbackNeedsSearch(query)
	}
	return strings.ToUpper(strings.TrimSpace(completion.Text)) == "YES"
}

// FallbackDecision is the deterministic keyword heuristic. Freshness
// triggers win over depth triggers; no trigger means no search, and a
// no-search verdict always carries SearchNone.
func FallbackDecision(query string) Decision {
	lowerQuery := strings.ToLower(query)

	if matchesAny(lowerQuery, currentFreshTriggers()) {
		return Decision{
			ShouldSearch: true,
			Reasoning:    "Query contains time-sensitive keywords including sports data, prices, or current information",
			Confidence:   0.8,
			SearchType:   SearchFreshData,
		}
	}
	if matchesAny(lowerQuery, deepExpertiseTriggers) {
		return Decision{
			ShouldSearch: true,
			Reasoning:    "Query requests advanced expertise",
			Confidence:   0.7,
			SearchType:   SearchDeepExpertise,
		}
	}
	return Decision{
		ShouldSearch: false,
		Reasoning:    "Existing knowledge should be sufficient",
		Confidence:   0.8,
		SearchType:   SearchNone,
	}
}

func fallbackNeedsSearch(query string) bool {
	return matchesAny(strings.ToLower(query), currentFreshTriggers())
}

// currentFreshTriggers appends the wall-clock year so that year-mention
// queries stay fresh without hard-coded year literals going stale.
func currentFreshTriggers() []string {
	return append([]string{strconv.Itoa(time.Now().Year())}, freshDataTriggers...)
}

func matchesAny(lowerQuery string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(lowerQuery, t) {
			return true
		}
	}
	return false
}

func validSearchType(t string) bool {
	switch t {
	case SearchDeepExpertise, SearchFreshData, SearchComprehensive, SearchNone:
		return true
	}
	return false
}
