package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/model"
)

// capturingModel records the request and returns a fixed completion.
type capturingModel struct {
	lastReq model.Request
	text    string
	err     error
}

func (m *capturingModel) Generate(_ context.Context, req model.Request) (*model.Response, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &model.Response{Text: m.text}, nil
}

func (m *capturingModel) Info() model.Info { return model.Info{Name: "capturing", Provider: "mock"} }

func available() []core.IntentAgents {
	return []core.IntentAgents{
		{Intent: "product_info", Agents: []string{"knowledge_agent"}},
		{Intent: "customer_support", Agents: []string{"support_agent"}},
	}
}

func TestModelClassifier_ParsesIntentAndConfidence(t *testing.T) {
	llm := &capturingModel{text: "intent: product_info\nconfidence: 0.92"}
	c := NewModelClassifier(llm)

	cls, err := c.Classify(context.Background(), "What are the main features?", available())
	require.NoError(t, err)
	assert.Equal(t, "product_info", cls.Intent)
	assert.InDelta(t, 0.92, cls.Confidence, 1e-9)
}

func TestModelClassifier_PromptListsRegistryIntents(t *testing.T) {
	llm := &capturingModel{text: "intent: product_info"}
	c := NewModelClassifier(llm)

	_, err := c.Classify(context.Background(), "hello", available())
	require.NoError(t, err)

	assert.Contains(t, llm.lastReq.Prompt, "product_info: handled by knowledge_agent")
	assert.Contains(t, llm.lastReq.Prompt, "customer_support: handled by support_agent")
	assert.Contains(t, llm.lastReq.Prompt, `"hello"`)
	assert.NotEmpty(t, llm.lastReq.Instructions)
}

func TestModelClassifier_ToleratesCaseAndExtraText(t *testing.T) {
	llm := &capturingModel{text: "Sure!\nIntent: Customer_Support\nConfidence: 0.5\nThanks."}
	c := NewModelClassifier(llm)

	cls, err := c.Classify(context.Background(), "my account is locked", available())
	require.NoError(t, err)
	assert.Equal(t, "customer_support", cls.Intent)
	assert.InDelta(t, 0.5, cls.Confidence, 1e-9)
}

func TestModelClassifier_NoIntentLineIsError(t *testing.T) {
	llm := &capturingModel{text: "I think this is about products."}
	c := NewModelClassifier(llm)

	_, err := c.Classify(context.Background(), "hi", available())
	assert.Error(t, err)
}

func TestModelClassifier_ModelErrorIsWrapped(t *testing.T) {
	sentinel := errors.New("provider down")
	llm := &capturingModel{err: sentinel}
	c := NewModelClassifier(llm)

	_, err := c.Classify(context.Background(), "hi", available())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestModelClassifier_NoAvailableIntents(t *testing.T) {
	c := NewModelClassifier(&capturingModel{text: "intent: x"})
	_, err := c.Classify(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestModelClassifier_IgnoresOutOfRangeConfidence(t *testing.T) {
	llm := &capturingModel{text: "intent: product_info\nconfidence: 7.5"}
	c := NewModelClassifier(llm)

	cls, err := c.Classify(context.Background(), "hi", available())
	require.NoError(t, err)
	assert.Zero(t, cls.Confidence)
}

func TestKeywordClassifier_FirstMatchingRuleWins(t *testing.T) {
	c := NewKeywordClassifier(
		KeywordRule{Intent: "customer_support", Keywords: []string{"account", "refund"}},
		KeywordRule{Intent: "product_info", Keywords: []string{"feature", "price"}},
	)

	cls, err := c.Classify(context.Background(), "My ACCOUNT shows the wrong price", available())
	require.NoError(t, err)
	assert.Equal(t, "customer_support", cls.Intent)
	assert.Equal(t, 1.0, cls.Confidence)
}

func TestKeywordClassifier_SkipsRulesWithoutRegisteredHandler(t *testing.T) {
	c := NewKeywordClassifier(
		KeywordRule{Intent: "weather", Keywords: []string{"price"}},
		KeywordRule{Intent: "product_info", Keywords: []string{"price"}},
	)

	cls, err := c.Classify(context.Background(), "what is the price?", available())
	require.NoError(t, err)
	assert.Equal(t, "product_info", cls.Intent)
}

func TestKeywordClassifier_NoMatch(t *testing.T) {
	c := NewKeywordClassifier(KeywordRule{Intent: "product_info", Keywords: []string{"feature"}})
	_, err := c.Classify(context.Background(), "completely unrelated", available())
	assert.ErrorIs(t, err, ErrNoMatch)
}
