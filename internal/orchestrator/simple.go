package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/polymath-ai/polymath/internal/expert"
	"github.com/polymath-ai/polymath/internal/llmjson"
)

// simpleVerdict is the combined classification the backend returns for the
// simple path: whether the query skips expert routing, whether it needs
// search, and the direct answer when both are settled.
type simpleVerdict struct {
	IsSimple     bool   `json:"isSimple"`
	NeedsSearch  bool   `json:"needsSearch"`
	DirectAnswer string `json:"directAnswer"`
}

const (
	simpleMaxLen   = 120
	simpleMaxWords = 12
)

// complexityIndicators disqualify a query from the pattern-based simple
// classifier.
var complexityIndicators = []string{
	"analyze", "compare", "evaluate", "synthesize", "complex", "multiple",
	"relationship", "interaction", "comprehensive", "detailed",
}

// arithmeticRe accepts exactly two numeric operands around one operator.
// Anything longer, including chained expressions, is rejected.
var arithmeticRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*([+\-*/])\s*(-?\d+(?:\.\d+)?)$`)

var arithmeticPrefixes = []string{
	"what is", "what's", "whats", "how much is", "calculate", "compute", "solve",
}

// arithmeticAnswer evaluates literal two-operand arithmetic. It returns the
// formatted answer and true only when the cleaned query is exactly
// `number operator number`; division by zero is left for the backend.
func arithmeticAnswer(query string) (string, bool) {
	expr := strings.ToLower(strings.TrimSpace(query))
	expr = strings.TrimSuffix(expr, "?")
	for _, prefix := range arithmeticPrefixes {
		if strings.HasPrefix(expr, prefix) {
			expr = strings.TrimSpace(expr[len(prefix):])
			break
		}
	}

	m := arithmeticRe.FindStringSubmatch(expr)
	if m == nil {
		return "", false
	}

	a, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", false
	}
	b, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return "", false
	}

	var result float64
	switch m[2] {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*":
		result = a * b
	case "/":
		if b == 0 {
			return "", false
		}
		result = a / b
	}

	return fmt.Sprintf("%s = %s", expr, strconv.FormatFloat(result, 'f', -1, 64)), true
}

// classifySimple asks the backend the combined simple-path question, with a
// deterministic pattern classifier covering backend failure.
func (o *Orchestrator) classifySimple(ctx context.Context, query string) simpleVerdict {
	prompt := fmt.Sprintf(`Classify this query for an expert routing system.

QUERY: %q

Decide:
1. Is the query simple enough that it does not need routing to specialist experts?
2. Does answering it require fresh web data?
3. If it is simple and needs no search, answer it directly.

Respond in this exact JSON format:
{
  "isSimple": boolean,
  "needsSearch": boolean,
  "directAnswer": "the answer, or empty string if not applicable"
}`, query)

	completion, err := o.llm.Complete(ctx, "You are a query classifier. Respond only with valid JSON as specified.", prompt, 0.2, 400)
	if err != nil {
		o.logger.Printf("simple-path classification failed, using pattern fallback: %v", err)
		return fallbackVerdict(query)
	}

	var verdict simpleVerdict
	if err := llmjson.Decode(completion.Text, &verdict); err != nil {
		o.logger.Printf("simple-path classification unparseable, using pattern fallback: %v", err)
		return fallbackVerdict(query)
	}
	return verdict
}

// fallbackVerdict is the pattern-based classifier: short queries without
// complexity-signal words are simple; freshness keywords set needsSearch.
// It never produces a direct answer.
func fallbackVerdict(query string) simpleVerdict {
	return simpleVerdict{
		IsSimple:    patternSimple(query),
		NeedsSearch: expert.FallbackDecision(query).SearchType == expert.SearchFreshData,
	}
}

func patternSimple(query string) bool {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) > simpleMaxLen || len(strings.Fields(trimmed)) > simpleMaxWords {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, indicator := range complexityIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}
	return true
}
