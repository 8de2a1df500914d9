package sources

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/polymath-ai/polymath/internal/gateway"
	"github.com/polymath-ai/polymath/internal/llmjson"
)

// Source is a validated supporting citation attached to an answer.
type Source struct {
	Title          string
	URL            string
	RelevanceScore float64
	Domain         string
	Description    string
}

const (
	maxTopics            = 10
	maxSuggestedSources  = 10
	baseSourceRelevance  = 0.7
	topicOverlapWeight   = 0.2
	contentOverlapWeight = 0.1
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "can": {}, "may": {},
	"might": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

var topicWordRe = regexp.MustCompile(`\b[a-z][a-z0-9-]+\b`)
var plainWordRe = regexp.MustCompile(`\b\w+\b`)

// Synthesizer asks the completion backend for supporting citations behind
// an answer and keeps only the ones whose URLs actually resolve.
type Synthesizer struct {
	llm       gateway.Completer
	validator *Validator
	logger    *log.Logger
}

func NewSynthesizer(llm gateway.Completer, validator *Validator, logger *log.Logger) *Synthesizer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SOURCES] ", log.LstdFlags)
	}
	return &Synthesizer{llm: llm, validator: validator, logger: logger}
}

// Synthesize proposes, validates, and ranks supporting sources for the
// answer text. Any backend or parsing failure returns an empty list; source
// attachment is never a hard dependency of an answer.
func (s *Synthesizer) Synthesize(ctx context.Context, answerText, domain string, maxSources int) []Source {
	if s.llm == nil || strings.TrimSpace(answerText) == "" {
		return nil
	}
	if maxSources <= 0 {
		maxSources = 6
	}

	topics := ExtractTopics(answerText)
	candidates, err := s.suggest(ctx, answerText, domain, topics)
	if err != nil {
		s.logger.Printf("source suggestion failed for %s: %v", domain, err)
		return nil
	}

	var validated []Source
	for _, c := range candidates {
		if c.Title == "" || c.URL == "" {
			continue
		}
		if !s.validator.Valid(ctx, c.URL) {
			s.logger.Printf("dropping unreachable suggested source %s", c.URL)
			continue
		}
		validated = append(validated, Source{
			Title:          c.Title,
			URL:            c.URL,
			RelevanceScore: scoreSource(c.Description, topics, answerText),
			Domain:         domain,
			Description:    c.Description,
		})
	}

	sort.SliceStable(validated, func(i, j int) bool {
		return validated[i].RelevanceScore > validated[j].RelevanceScore
	})
	if len(validated) > maxSources {
		validated = validated[:maxSources]
	}
	return validated
}

type suggestedSource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (s *Synthesizer) suggest(ctx context.Context, answerText, domain string, topics []string) ([]suggestedSource, error) {
	topTopics := topics
	if len(topTopics) > 5 {
		topTopics = topTopics[:5]
	}

	prompt := fmt.Sprintf(`Analyze this expert response and suggest 6-10 relevant, authoritative sources that would support the specific information, concepts, and claims made in it.

EXPERT RESPONSE:
%q

DOMAIN: %s
KEY TOPICS: %s

Focus on academic journals, professional organizations, government databases, reputable publications, and established reference works. Only suggest sources with real URLs that actually exist.

Respond in this exact JSON format:
{
  "sources": [
    {
      "title": "Exact source name",
      "url": "https://working-url.com",
      "description": "How this source supports information in the response"
    }
  ]
}`, answerText, domain, strings.Join(topTopics, ", "))

	completion, err := s.llm.Complete(ctx,
		"You are a research librarian expert at identifying authoritative, relevant sources. Only suggest sources with real, working URLs.",
		prompt, 0.3, 800)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Sources []suggestedSource `json:"sources"`
	}
	if err := llmjson.Decode(completion.Text, &parsed); err != nil {
		return nil, fmt.Errorf("decoding suggested sources: %w", err)
	}
	if len(parsed.Sources) > maxSuggestedSources {
		parsed.Sources = parsed.Sources[:maxSuggestedSources]
	}
	return parsed.Sources, nil
}

// ExtractTopics tokenizes the answer, drops stop words, and returns the top
// topic words ranked by frequency then length. Used only to bias relevance
// scoring, never to constrain suggestions.
func ExtractTopics(text string) []string {
	counts := map[string]int{}
	for _, word := range topicWordRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[word]; stop || len(word) <= 2 {
			continue
		}
		counts[word]++
	}

	topics := make([]string, 0, len(counts))
	for word := range counts {
		topics = append(topics, word)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		if len(topics[i]) != len(topics[j]) {
			return len(topics[i]) > len(topics[j])
		}
		return topics[i] < topics[j]
	})
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}

// scoreSource blends a base constant with topic overlap from the
// description and word-overlap against the answer text, capped at 1.0.
func scoreSource(description string, topics []string, answerText string) float64 {
	relevance := baseSourceRelevance
	lowerDesc := strings.ToLower(description)

	if len(topics) > 0 {
		var matches int
		for _, topic := range topics {
			if strings.Contains(lowerDesc, topic) {
				matches++
			}
		}
		relevance += float64(matches) / float64(len(topics)) * topicOverlapWeight
	}

	answerWords := wordSet(answerText)
	descWords := wordSet(description)
	if len(answerWords) > 0 && len(descWords) > 0 {
		var overlap int
		union := len(answerWords)
		for w := range descWords {
			if _, ok := answerWords[w]; ok {
				overlap++
			} else {
				union++
			}
		}
		relevance += float64(overlap) / float64(union) * contentOverlapWeight
	}

	if relevance > 1 {
		relevance = 1
	}
	return relevance
}

func wordSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range plainWordRe.FindAllString(strings.ToLower(text), -1) {
		set[w] = struct{}{}
	}
	return set
}
