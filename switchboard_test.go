package switchboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/switchboard-ai/switchboard/account"
	"github.com/switchboard-ai/switchboard/agents"
	"github.com/switchboard-ai/switchboard/classify"
	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/knowledge"
	"github.com/switchboard-ai/switchboard/model"
	"github.com/switchboard-ai/switchboard/router"
)

func newTestSwitchboard(t *testing.T) (*Switchboard, *model.MockModel) {
	t.Helper()

	llm := model.NewMockModel("test-model")

	ix := knowledge.NewIndex()
	ix.Add(knowledge.Document{
		ID:     "1",
		Text:   "The premium plan includes analytics and priority support.",
		Source: "docs/plans.md",
	})

	store := account.NewInMemoryStore()
	store.SeedAccount(account.Account{UserID: "user-1", Name: "Ada", Status: "active", Balance: 10})

	classifier := classify.NewKeywordClassifier(
		classify.KeywordRule{Intent: agents.IntentCustomerSupport, Keywords: []string{"account", "balance", "refund"}},
		classify.KeywordRule{Intent: agents.IntentProductInfo, Keywords: []string{"plan", "feature", "price"}},
	)

	sb := New(classifier)
	require.NoError(t, sb.RegisterAgent(agents.NewKnowledge(llm, ix)))
	require.NoError(t, sb.RegisterAgent(agents.NewSupport(llm, store)))
	require.NoError(t, sb.RegisterAgent(agents.NewGeneral(llm)))
	return sb, llm
}

func TestAsk_RoutesProductQuestionToKnowledgeAgent(t *testing.T) {
	sb, _ := newTestSwitchboard(t)

	res, err := sb.Ask(context.Background(), "What does the premium plan include?")
	require.NoError(t, err)
	assert.Equal(t, "knowledge_agent", res.Agent)
	assert.Equal(t, "product_info", res.Metadata["intent"])
	assert.Equal(t, []string{"docs/plans.md"}, res.Metadata["sources"])
}

func TestAsk_SupportQuestionRequiresIdentity(t *testing.T) {
	sb, _ := newTestSwitchboard(t)

	// Anonymous: the support agent is skipped and the canned fallback returns.
	res, err := sb.Ask(context.Background(), "What is my account balance?")
	require.NoError(t, err)
	assert.Equal(t, router.DefaultFallbackResponse, res.Response)
	skipped, ok := res.Metadata["skipped_agents"].(map[string]string)
	require.True(t, ok)
	assert.Contains(t, skipped, "support_agent")

	// Identified: the support agent answers.
	res, err = sb.Ask(context.Background(), "What is my account balance?", WithUserID("user-1"))
	require.NoError(t, err)
	assert.Equal(t, "support_agent", res.Agent)
	assert.Equal(t, "active", res.Metadata["account_status"])
}

func TestAsk_UnmatchedMessageFallsBackToGeneralIntent(t *testing.T) {
	sb, _ := newTestSwitchboard(t)

	res, err := sb.Ask(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "general_question", res.Metadata["intent"])
	assert.NotEmpty(t, res.Metadata["classifier_fallback"])
	// The knowledge agent outranks the general agent for this intent.
	assert.Equal(t, "knowledge_agent", res.Agent)
}

func TestAsk_WithValueReachesAgents(t *testing.T) {
	classifier := classify.NewKeywordClassifier(
		classify.KeywordRule{Intent: "echo", Keywords: []string{"echo"}},
	)
	sb := New(classifier)

	var seen any
	require.NoError(t, sb.RegisterAgent(&valueProbe{onProcess: func(reqCtx *core.RequestContext) {
		seen, _ = reqCtx.Value("channel")
	}}))

	_, err := sb.Ask(context.Background(), "echo this", WithValue("channel", "web"))
	require.NoError(t, err)
	assert.Equal(t, "web", seen)
}

// valueProbe is a minimal agent that records what it observes.
type valueProbe struct {
	onProcess func(reqCtx *core.RequestContext)
}

func (p *valueProbe) Metadata() core.Metadata {
	return core.Metadata{Name: "probe", Description: "probe", Intents: []string{"echo"}}
}

func (p *valueProbe) Process(reqCtx *core.RequestContext) (*core.Result, error) {
	p.onProcess(reqCtx)
	return core.NewResult("probe", "ok"), nil
}

func TestRegistryAccessor(t *testing.T) {
	sb, _ := newTestSwitchboard(t)
	reg := sb.Registry()
	require.NotNil(t, reg)
	assert.Equal(t, 3, reg.Len())
	assert.True(t, reg.HasIntent("customer_support"))
}
