package expert

import (
	"context"
	"errors"
	"log"
	"math"
	"regexp"
	"strings"

	"github.com/polymath-ai/polymath/internal/gateway"
	"github.com/polymath-ai/polymath/internal/sources"
	"github.com/polymath-ai/polymath/internal/telemetry"
)

// ErrNoQuery is returned by GenerateResponse when the unit was never given
// a query. It is the only error the method can return.
var ErrNoQuery = errors.New("expert: no query set")

// fallbackAnswer is the apologetic text an expert returns when its pipeline
// fails. The unit contract guarantees a usable contribution.
const fallbackAnswer = "I apologize, but I'm having trouble generating a complete response right now. Please try rephrasing your question or try again in a moment."

const (
	fallbackConfidence = 0.1

	simpleTemperature  = 0.3
	simpleMaxTokens    = 600
	complexTemperature = 0.7
	complexMaxTokens   = 1200

	// Source synthesis is skipped below these lengths; short answers do
	// not justify the extra oracle round trip.
	minAnswerLenForSources = 50
	minQueryLenForSources  = 10
)

// simpleQueryRe matches short definitional or wh-question phrasings that
// get a lower temperature and smaller token budget.
var simpleQueryRe = regexp.MustCompile(`(?i)^\s*(what is|what are|who is|who was|when did|when was|where is|define|definition of|meaning of)\b`)

// Contribution is one expert's finished answer for a single request.
type Contribution struct {
	Name         string   `json:"name"`
	Domain       string   `json:"domain"`
	Expertise    string   `json:"expertise"`
	Contribution string   `json:"contribution"`
	Confidence   int      `json:"confidence"`
	Sources      []string `json:"sources,omitempty"`
	TokensUsed   int      `json:"tokensUsed,omitempty"`
}

// SourceFinder attaches validated citations to an answer text.
type SourceFinder interface {
	Synthesize(ctx context.Context, answerText, domain string, maxSources int) []sources.Source
}

// Deps carries the collaborators an expert Unit needs. One Deps value is
// shared by all units; the units themselves are per-request.
type Deps struct {
	LLM        gateway.Completer
	Search     gateway.Searcher
	Finder     SourceFinder
	SearchNeed *SearchNeedAssessor
	Telemetry  *telemetry.Telemetry
	Logger     *log.Logger
	MaxSources int
}

// Unit is one expert persona bound to a single request. Query and
// confidence are instance state; a Unit must never be shared across
// concurrent requests.
type Unit struct {
	desc         Descriptor
	systemPrompt string
	deps         Deps

	query      string
	confidence float64
}

// NewUnit builds a per-request expert for the domain key. Unknown keys
// still produce a working unit with a generic persona and a minimal
// descriptor; lookups never error.
func NewUnit(domainKey string, deps Deps) *Unit {
	desc, ok := Lookup(domainKey)
	if !ok {
		desc = Descriptor{Key: domainKey, Title: domainKey + " Expert"}
	}
	if deps.Logger == nil {
		deps.Logger = log.New(log.Writer(), "[EXPERT] ", log.LstdFlags)
	}
	if deps.MaxSources <= 0 {
		deps.MaxSources = 6
	}
	return &Unit{
		desc:         desc,
		systemPrompt: SystemPrompt(domainKey),
		deps:         deps,
	}
}

func (u *Unit) Name() string        { return u.desc.Title }
func (u *Unit) Domain() string      { return u.desc.Key }
func (u *Unit) Expertise() string   { return u.desc.Title }
func (u *Unit) Confidence() float64 { return u.confidence }

// SetQuery stores the request query without touching confidence.
func (u *Unit) SetQuery(query string) { u.query = query }

// SetConfidence records an externally assigned confidence, used when the
// router selects units centrally instead of via AssessRelevance.
func (u *Unit) SetConfidence(c float64) {
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	u.confidence = c
}

// AssessRelevance scores the query against this unit's domain and stores
// both the query and the score.
func (u *Unit) AssessRelevance(ctx context.Context, assessor *RelevanceAssessor, query string) float64 {
	u.query = query
	u.confidence = assessor.Assess(ctx, query, u.desc.Key)
	return u.confidence
}

// GenerateResponse runs the full answer pipeline: optional search
// augmentation, completion, optional source synthesis. Internal failures
// degrade to an apologetic low-confidence contribution; the only returned
// error is the missing-query precondition.
func (u *Unit) GenerateResponse(ctx context.Context, useSearch bool) (Contribution, error) {
	if strings.TrimSpace(u.query) == "" {
		return Contribution{}, ErrNoQuery
	}

	instructions := u.systemPrompt
	if useSearch && u.deps.Search != nil && u.deps.Search.Available() {
		if searchContext := u.gatherSearchContext(ctx); searchContext != "" {
			instructions += "\n\n" + searchContext
		}
	}

	temperature, maxTokens := complexTemperature, complexMaxTokens
	if isSimpleQuery(u.query) {
		temperature, maxTokens = simpleTemperature, simpleMaxTokens
	}

	completion, err := u.deps.LLM.Complete(ctx, instructions, u.query, temperature, maxTokens)
	if err != nil {
		u.deps.Logger.Printf("expert %s failed to generate response: %v", u.desc.Key, err)
		u.deps.Telemetry.RecordExpertRun(u.desc.Key, false)
		return u.fallbackContribution(), nil
	}

	answer := strings.TrimSpace(completion.Text)
	var sourceURLs []string
	if u.deps.Finder != nil && len(answer) >= minAnswerLenForSources && len(u.query) >= minQueryLenForSources {
		for _, src := range u.deps.Finder.Synthesize(ctx, answer, u.desc.Key, u.deps.MaxSources) {
			sourceURLs = append(sourceURLs, src.URL)
		}
	}

	u.deps.Telemetry.RecordExpertRun(u.desc.Key, true)
	return Contribution{
		Name:         u.desc.Title,
		Domain:       u.desc.Key,
		Expertise:    u.desc.Title,
		Contribution: answer,
		Confidence:   int(math.Round(u.confidence * 100)),
		Sources:      sourceURLs,
		TokensUsed:   completion.TokensUsed,
	}, nil
}

// gatherSearchContext runs the search-need decision and, when positive, the
// search itself, returning the formatted context block or empty.
func (u *Unit) gatherSearchContext(ctx context.Context) string {
	decision := u.deps.SearchNeed.Decide(ctx, u.query, u.desc.Title, u.desc.Key)
	if !decision.ShouldSearch {
		return ""
	}
	results := u.deps.Search.Search(ctx, u.query, u.desc.Key, u.desc.Keywords, 5)
	if len(results) == 0 {
		return ""
	}
	u.deps.Logger.Printf("expert %s augmenting with %d search results (%s)", u.desc.Key, len(results), decision.SearchType)
	return gateway.FormatSearchContext(results, u.query, decision.SearchType)
}

func (u *Unit) fallbackContribution() Contribution {
	return Contribution{
		Name:         u.desc.Title,
		Domain:       u.desc.Key,
		Expertise:    u.desc.Title,
		Contribution: fallbackAnswer,
		Confidence:   int(math.Round(fallbackConfidence * 100)),
	}
}

// isSimpleQuery is the cheap classifier that picks the lower temperature
// and smaller token budget for short definitional questions.
func isSimpleQuery(query string) bool {
	return len(query) <= 80 && simpleQueryRe.MatchString(query)
}
