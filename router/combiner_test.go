package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/model"
)

func combineInput() []*core.Result {
	a := core.NewResult("knowledge_agent", "The product supports X.")
	a.SetMeta("confidence", 0.9)
	a.SetMeta("chunks_retrieved", 3)
	a.SetMeta("sources", []string{"docs/features.md"})

	b := core.NewResult("support_agent", "Your account is in good standing.")
	b.SetMeta("confidence", 0.85)
	b.SetMeta("chunks_retrieved", 2)

	return []*core.Result{a, b}
}

func TestConcatCombiner_JoinsInInputOrder(t *testing.T) {
	c := &ConcatCombiner{}
	reqCtx := core.NewRequestContext(context.Background(), "q")

	res, err := c.Combine(reqCtx, combineInput())
	require.NoError(t, err)
	assert.Equal(t, "The product supports X.\n\nYour account is in good standing.", res.Response)
	assert.Equal(t, []string{"knowledge_agent", "support_agent"}, res.Metadata["contributors"])
}

func TestConcatCombiner_CustomSeparator(t *testing.T) {
	c := &ConcatCombiner{Separator: " | "}
	res, err := c.Combine(nil, combineInput())
	require.NoError(t, err)
	assert.Equal(t, "The product supports X. | Your account is in good standing.", res.Response)
}

func TestConcatCombiner_MetadataAggregation(t *testing.T) {
	c := &ConcatCombiner{}
	res, err := c.Combine(nil, combineInput())
	require.NoError(t, err)

	// Max confidence, summed chunk counts, per-agent bags preserved and tagged.
	assert.InDelta(t, 0.9, res.Metadata["confidence"].(float64), 1e-9)
	assert.Equal(t, 5, res.Metadata["chunks_retrieved"])

	perAgent, ok := res.Metadata["agents"].(map[string]map[string]any)
	require.True(t, ok)
	require.Contains(t, perAgent, "knowledge_agent")
	require.Contains(t, perAgent, "support_agent")
	assert.Equal(t, []string{"docs/features.md"}, perAgent["knowledge_agent"]["sources"])
}

func TestConcatCombiner_EmptyInputIsError(t *testing.T) {
	c := &ConcatCombiner{}
	_, err := c.Combine(nil, nil)
	assert.Error(t, err)
}

func TestConcatCombiner_Deterministic(t *testing.T) {
	c := &ConcatCombiner{}
	first, err := c.Combine(nil, combineInput())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := c.Combine(nil, combineInput())
		require.NoError(t, err)
		assert.Equal(t, first.Response, again.Response)
		assert.Equal(t, first.Metadata["contributors"], again.Metadata["contributors"])
	}
}

// fixedModel returns a fixed completion or error; used to drive ModelCombiner.
type fixedModel struct {
	text string
	err  error
}

func (m *fixedModel) Generate(context.Context, model.Request) (*model.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &model.Response{Text: m.text}, nil
}

func (m *fixedModel) Info() model.Info { return model.Info{Name: "fixed", Provider: "mock"} }

func TestModelCombiner_UsesModelOutput(t *testing.T) {
	c := NewModelCombiner(&fixedModel{text: "A unified answer."})
	reqCtx := core.NewRequestContext(context.Background(), "tell me everything")

	res, err := c.Combine(reqCtx, combineInput())
	require.NoError(t, err)
	assert.Equal(t, "A unified answer.", res.Response)
	assert.Equal(t, "fixed", res.Metadata["combined_by"])
	assert.Equal(t, []string{"knowledge_agent", "support_agent"}, res.Metadata["contributors"])
}

func TestModelCombiner_FallsBackToConcatOnModelError(t *testing.T) {
	c := NewModelCombiner(&fixedModel{err: errors.New("provider down")})
	reqCtx := core.NewRequestContext(context.Background(), "tell me everything")

	res, err := c.Combine(reqCtx, combineInput())
	require.NoError(t, err, "a combiner model outage must degrade, not fail the request")
	assert.Equal(t, "The product supports X.\n\nYour account is in good standing.", res.Response)
}
