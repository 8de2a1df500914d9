package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/polymath-ai/polymath/config"
	"github.com/polymath-ai/polymath/internal/expert"
	"github.com/polymath-ai/polymath/internal/gateway"
	"github.com/polymath-ai/polymath/internal/llmjson"
	"github.com/polymath-ai/polymath/internal/profile"
	"github.com/polymath-ai/polymath/internal/telemetry"
)

// generalistPrompt backs the direct-answer paths that bypass expert
// fan-out.
const generalistPrompt = "You are an interdisciplinary scholar capable of integrating knowledge across all major disciplines. Provide a clear, accurate, well-structured answer, drawing on whichever fields are relevant."

// directAnswerFailure is returned when even the direct-answer path cannot
// reach the completion backend. The caller always gets well-formed text.
const directAnswerFailure = "I apologize, but I'm unable to process your question right now. Please try again in a moment."

const lowComplexity = 0.1

var tracer trace.Tracer = telemetry.Tracer("polymath/internal/orchestrator")

// Answer is the final merged result for one request.
type Answer struct {
	Content       string
	Contributions []expert.Contribution
	Sources       []string
	Complexity    float64
	ActiveDomains []string
}

// Orchestrator classifies queries, selects the active expert set, fans out,
// and synthesizes one answer. It holds no per-request state; expert Units
// are constructed fresh for every request.
type Orchestrator struct {
	cfg        *config.Config
	llm        gateway.Completer
	streamer   gateway.Streamer
	search     gateway.Searcher
	finder     expert.SourceFinder
	relevance  *expert.RelevanceAssessor
	searchNeed *expert.SearchNeedAssessor
	logger     *log.Logger
	telemetry  *telemetry.Telemetry
}

// New wires an Orchestrator. streamer and finder may be nil; streaming and
// source attachment are then disabled.
func New(cfg *config.Config, llm gateway.Completer, streamer gateway.Streamer, search gateway.Searcher, finder expert.SourceFinder, tele *telemetry.Telemetry, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{
		cfg:        cfg,
		llm:        llm,
		streamer:   streamer,
		search:     search,
		finder:     finder,
		relevance:  expert.NewRelevanceAssessor(llm, logger),
		searchNeed: expert.NewSearchNeedAssessor(llm, logger),
		logger:     logger,
		telemetry:  tele,
	}
}

// Process answers one query end to end.
func (o *Orchestrator) Process(ctx context.Context, query string, prof *profile.Profile) (Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Answer{}, fmt.Errorf("empty query")
	}

	ctx, span := tracer.Start(ctx, "orchestrator.process")
	defer span.End()

	if answer, ok := arithmeticAnswer(query); ok {
		span.SetAttributes(attribute.String("path", "arithmetic"))
		return Answer{Content: answer, Complexity: lowComplexity}, nil
	}

	verdict := o.classifySimple(ctx, query)
	if verdict.IsSimple {
		span.SetAttributes(attribute.String("path", "simple"))
		return o.answerSimple(ctx, query, verdict), nil
	}

	span.SetAttributes(attribute.String("path", "complex"))
	return o.answerComplex(ctx, query, verdict, prof)
}

// answerSimple handles queries that skip expert routing: a precomputed
// direct answer, a single search-augmented completion, or a bare one.
func (o *Orchestrator) answerSimple(ctx context.Context, query string, verdict simpleVerdict) Answer {
	if !verdict.NeedsSearch && strings.TrimSpace(verdict.DirectAnswer) != "" {
		return Answer{Content: strings.TrimSpace(verdict.DirectAnswer), Complexity: lowComplexity}
	}

	system := generalistPrompt
	maxTokens := 800
	if verdict.NeedsSearch && o.search != nil && o.search.Available() {
		results := o.search.Search(ctx, query, "", nil, 5)
		if block := gateway.FormatSearchContext(results, query, expert.SearchFreshData); block != "" {
			system += "\n\n" + block
			// Budget tracks context size so long contexts still leave
			// headroom for the answer.
			maxTokens = len(block)/4 + 500
		}
	}

	completion, err := o.llm.Complete(ctx, system, query, 0.5, maxTokens)
	if err != nil {
		o.logger.Printf("direct answer failed: %v", err)
		return Answer{Content: directAnswerFailure, Complexity: lowComplexity}
	}
	return Answer{Content: strings.TrimSpace(completion.Text), Complexity: lowComplexity}
}

// queryAnalysis is the routing verdict for the complex path.
type queryAnalysis struct {
	Complexity      float64  `json:"complexity"`
	SuggestedAgents []string `json:"suggestedAgents"`
	Reasoning       string   `json:"reasoning"`
}

// answerComplex routes the query to experts and synthesizes their outputs.
func (o *Orchestrator) answerComplex(ctx context.Context, query string, verdict simpleVerdict, prof *profile.Profile) (Answer, error) {
	analysis := o.analyzeQuery(ctx, query)

	units := o.selectUnits(ctx, query, analysis.SuggestedAgents, prof)
	domains := make([]string, 0, len(units))
	for _, u := range units {
		domains = append(domains, u.Domain())
	}

	if len(units) == 0 {
		// No routable domain. One consistent policy: answer directly as a
		// generalist rather than failing or guessing a domain.
		o.logger.Printf("no experts selected for query, answering as generalist")
		completion, err := o.llm.Complete(ctx, generalistPrompt, query, 0.7, 1200)
		if err != nil {
			o.logger.Printf("generalist answer failed: %v", err)
			return Answer{Content: directAnswerFailure, Complexity: analysis.Complexity}, nil
		}
		return Answer{Content: strings.TrimSpace(completion.Text), Complexity: analysis.Complexity}, nil
	}

	contributions := o.fanOut(ctx, units)
	// A query can be routed to experts while still reading as simple; the
	// pattern check lets synthesis skip the merge call for those.
	content := o.synthesize(ctx, query, verdict.IsSimple || patternSimple(query), contributions)

	return Answer{
		Content:       content,
		Contributions: contributions,
		Sources:       dedupeSources(contributions),
		Complexity:    analysis.Complexity,
		ActiveDomains: domains,
	}, nil
}

// analyzeQuery asks the backend to rate complexity and suggest 2-5 domains
// given the full descriptor text for every known domain. Keyword routing
// covers backend failure.
func (o *Orchestrator) analyzeQuery(ctx context.Context, query string) queryAnalysis {
	var catalog strings.Builder
	for _, d := range expert.All() {
		fmt.Fprintf(&catalog, "- %s: %s. Expertise: %s. Specializations: %s. %s\n",
			d.Key, d.Title,
			strings.Join(d.Expertise, ", "),
			strings.Join(d.Specializations, ", "),
			d.Description)
	}

	prompt := fmt.Sprintf(`You are an intelligent query analyzer for an expert routing platform. Rate the query's complexity and pick the 2-5 most relevant expert domains.

Available expert domains:
%s
Analyze this query and respond in JSON format:
{
  "complexity": <0.0-1.0>,
  "suggestedAgents": ["domain-key", ...],
  "reasoning": "<explanation of your analysis>"
}

QUERY: %q`, catalog.String(), query)

	completion, err := o.llm.Complete(ctx, "You are a query analyzer. Respond only with valid JSON as specified.", prompt, 0.3, 500)
	if err != nil {
		o.logger.Printf("query analysis failed, using keyword routing: %v", err)
		return fallbackAnalysis(query)
	}

	var analysis queryAnalysis
	if err := llmjson.Decode(completion.Text, &analysis); err != nil {
		o.logger.Printf("query analysis unparseable, using keyword routing: %v", err)
		return fallbackAnalysis(query)
	}

	if analysis.Complexity < 0 {
		analysis.Complexity = 0
	}
	if analysis.Complexity > 1 {
		analysis.Complexity = 1
	}
	return analysis
}

// fallbackAnalysis routes by descriptor keyword match and scores
// complexity from indicator density.
func fallbackAnalysis(query string) queryAnalysis {
	lower := strings.ToLower(query)

	var suggested []string
	for _, d := range expert.All() {
		for _, kw := range d.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				suggested = append(suggested, d.Key)
				break
			}
		}
	}

	var matches int
	for _, indicator := range complexityIndicators {
		if strings.Contains(lower, indicator) {
			matches++
		}
	}
	complexity := float64(matches) / float64(len(complexityIndicators))
	if complexity > 1 {
		complexity = 1
	}

	return queryAnalysis{
		Complexity:      complexity,
		SuggestedAgents: suggested,
		Reasoning:       "keyword-based routing",
	}
}

// selectUnits validates suggested domains, applies the profile filter,
// builds per-request units with the router confidence, and caps the active
// set.
func (o *Orchestrator) selectUnits(ctx context.Context, query string, suggested []string, prof *profile.Profile) []*expert.Unit {
	deps := expert.Deps{
		LLM:        o.llm,
		Search:     o.search,
		Finder:     o.finder,
		SearchNeed: o.searchNeed,
		Telemetry:  o.telemetry,
		Logger:     o.logger,
		MaxSources: o.cfg.Sources.MaxPerAnswer,
	}

	seen := map[string]bool{}
	var units []*expert.Unit
	for _, key := range suggested {
		if !expert.Known(key) {
			o.logger.Printf("discarding unknown suggested domain %q", key)
			continue
		}
		if seen[key] || !prof.Allows(key) {
			continue
		}
		seen[key] = true

		unit := expert.NewUnit(key, deps)
		unit.SetQuery(query)
		// Routing already happened centrally; the router's pick carries a
		// fixed confidence instead of a second relevance pass.
		unit.SetConfidence(o.cfg.Experts.RouterConfidence)
		units = append(units, unit)
	}

	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Confidence() > units[j].Confidence()
	})

	maxActive := o.cfg.Experts.MaxActive
	if maxActive <= 0 {
		maxActive = 5
	}
	if len(units) > maxActive {
		units = units[:maxActive]
	}
	return units
}

// fanOut runs every active unit concurrently. A single unit's failure or
// empty answer is logged and skipped, never propagated.
func (o *Orchestrator) fanOut(ctx context.Context, units []*expert.Unit) []expert.Contribution {
	ctx, span := tracer.Start(ctx, "orchestrator.fanout",
		trace.WithAttributes(attribute.Int("experts", len(units))))
	defer span.End()

	results := make([]*expert.Contribution, len(units))
	g, gctx := errgroup.WithContext(ctx)
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			contribution, err := unit.GenerateResponse(gctx, true)
			if err != nil {
				o.logger.Printf("expert %s failed: %v", unit.Domain(), err)
				return nil
			}
			if strings.TrimSpace(contribution.Contribution) == "" {
				return nil
			}
			results[i] = &contribution
			return nil
		})
	}
	_ = g.Wait()

	contributions := make([]expert.Contribution, 0, len(units))
	for _, r := range results {
		if r != nil {
			contributions = append(contributions, *r)
		}
	}
	return contributions
}

// StreamDirect streams a generalist answer for queries that skip expert
// routing. The second return is false when the query needs the full
// pipeline (or streaming is not configured) and the caller should fall back
// to Process.
func (o *Orchestrator) StreamDirect(ctx context.Context, query string) (<-chan gateway.StreamChunk, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, fmt.Errorf("empty query")
	}

	if answer, ok := arithmeticAnswer(query); ok {
		ch := make(chan gateway.StreamChunk, 1)
		ch <- gateway.StreamChunk{Text: answer}
		close(ch)
		return ch, true, nil
	}

	if o.streamer == nil {
		return nil, false, nil
	}
	verdict := o.classifySimple(ctx, query)
	if !verdict.IsSimple {
		return nil, false, nil
	}

	ch, err := o.streamer.CompleteStream(ctx, generalistPrompt, query, 0.5, 800)
	if err != nil {
		return nil, false, fmt.Errorf("starting answer stream: %w", err)
	}
	return ch, true, nil
}
