package classify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/model"
)

// ErrNoMatch is returned when a classifier cannot map the message to any of
// the available intents. The router treats it as a recoverable condition and
// falls back to its configured fallback intent.
var ErrNoMatch = errors.New("no matching intent")

// Classification is a classifier's best guess for one message.
type Classification struct {
	// Intent is the chosen intent tag.
	Intent string `json:"intent"`
	// Confidence is an optional score in [0,1]; 0 means "not reported".
	Confidence float64 `json:"confidence,omitempty"`
}

// Classifier maps a free-text message onto one of the currently available
// intents. Implementations are best-effort collaborators: the router never
// trusts them blindly and validates the returned intent against the registry.
type Classifier interface {
	Classify(ctx context.Context, message string, available []core.IntentAgents) (Classification, error)
}

// ModelClassifier asks a generation model to pick the intent. The prompt is
// built dynamically from the available intents so newly registered agents
// become routable without any classifier change.
type ModelClassifier struct {
	llm model.Model
}

// NewModelClassifier creates a classifier backed by the given model. Wrap the
// model in a model.BreakerModel when the provider is flaky; classification
// errors only cost a fallback, not the request.
func NewModelClassifier(llm model.Model) *ModelClassifier {
	return &ModelClassifier{llm: llm}
}

const classifierInstructions = `You classify user messages for a routing system.
Pick exactly one intent from the provided list. Respond in exactly this format:

intent: <intent_name>
confidence: <number between 0.0 and 1.0>

Do not add any other text.`

// Classify implements Classifier. It returns ErrNoMatch when no intents are
// available and a parse error when the model response has no intent line; the
// returned intent is NOT guaranteed to be in the available set; callers
// validate against the registry.
func (c *ModelClassifier) Classify(ctx context.Context, message string, available []core.IntentAgents) (Classification, error) {
	if len(available) == 0 {
		return Classification{}, ErrNoMatch
	}

	resp, err := c.llm.Generate(ctx, model.Request{
		Instructions: classifierInstructions,
		Prompt:       buildPrompt(message, available),
	})
	if err != nil {
		return Classification{}, fmt.Errorf("classify: %w", err)
	}
	return parseClassification(resp.Text)
}

// buildPrompt lists each available intent with its handling agents, mirroring
// the registry state at call time.
func buildPrompt(message string, available []core.IntentAgents) string {
	var sb strings.Builder
	sb.WriteString("Available intent categories (based on registered agents):\n")
	for _, ia := range available {
		fmt.Fprintf(&sb, "- %s: handled by %s\n", ia.Intent, strings.Join(ia.Agents, ", "))
	}
	fmt.Fprintf(&sb, "\nMessage: %q\n", message)
	return sb.String()
}

// parseClassification extracts the "intent:" and optional "confidence:" lines.
func parseClassification(text string) (Classification, error) {
	var cls Classification
	for _, line := range strings.Split(strings.ToLower(text), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "intent:"):
			cls.Intent = strings.TrimSpace(strings.TrimPrefix(line, "intent:"))
		case strings.HasPrefix(line, "confidence:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "confidence:"))
			if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 && f <= 1 {
				cls.Confidence = f
			}
		}
	}
	if cls.Intent == "" {
		return Classification{}, fmt.Errorf("classify: no intent line in model output %q", text)
	}
	return cls, nil
}

// KeywordRule maps an intent to the keywords that trigger it. Rules are
// evaluated in order, so put the most specific intents first.
type KeywordRule struct {
	Intent   string
	Keywords []string
}

// KeywordClassifier is a deterministic, dependency-free classifier driven by
// substring matching. Suitable for tests, demos and deployments that prefer
// predictable routing over model judgment.
type KeywordClassifier struct {
	rules []KeywordRule
}

// NewKeywordClassifier creates a classifier from ordered rules.
func NewKeywordClassifier(rules ...KeywordRule) *KeywordClassifier {
	return &KeywordClassifier{rules: rules}
}

// Classify implements Classifier. The first rule whose keyword appears in the
// message wins; rules naming intents with no registered handler are skipped.
// Returns ErrNoMatch when nothing matches.
func (c *KeywordClassifier) Classify(_ context.Context, message string, available []core.IntentAgents) (Classification, error) {
	known := make(map[string]struct{}, len(available))
	for _, ia := range available {
		known[ia.Intent] = struct{}{}
	}

	lower := strings.ToLower(message)
	for _, rule := range c.rules {
		if _, ok := known[rule.Intent]; !ok {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return Classification{Intent: rule.Intent, Confidence: 1.0}, nil
			}
		}
	}
	return Classification{}, ErrNoMatch
}

var (
	_ Classifier = (*ModelClassifier)(nil)
	_ Classifier = (*KeywordClassifier)(nil)
)
