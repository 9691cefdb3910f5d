package router

import (
	"fmt"
	"strings"

	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/model"
)

const combinerInstructions = `You merge partial answers from several specialist assistants
into a single coherent reply. Keep every distinct fact, avoid repetition, and
respond in the language used by the user.`

// ModelCombiner asks a generation model to merge the responses into one
// coherent reply. Model output is not deterministic, so on any model failure
// it degrades to the deterministic ConcatCombiner join rather than failing
// the request. Metadata aggregation always follows the shared deterministic
// rules regardless of which path produced the text.
type ModelCombiner struct {
	llm      model.Model
	fallback ConcatCombiner
}

// NewModelCombiner creates a model-backed combiner.
func NewModelCombiner(llm model.Model) *ModelCombiner {
	return &ModelCombiner{llm: llm}
}

// Combine implements Combiner.
func (c *ModelCombiner) Combine(reqCtx *core.RequestContext, results []*core.Result) (*core.Result, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("combine: no results")
	}

	var sb strings.Builder
	sb.WriteString("Assistant answers to merge:\n\n")
	for _, res := range results {
		fmt.Fprintf(&sb, "[%s]\n%s\n\n", res.Agent, res.Response)
	}
	fmt.Fprintf(&sb, "User question: %q\n", reqCtx.Message)

	resp, err := c.llm.Generate(reqCtx.Context, model.Request{
		Instructions: combinerInstructions,
		Prompt:       sb.String(),
	})
	if err != nil {
		reqCtx.Logger.Warn("model combiner failed, using deterministic join",
			"request_id", reqCtx.RequestID, "error", err)
		return c.fallback.Combine(reqCtx, results)
	}

	out := core.NewResult("", resp.Text)
	mergeMetadata(out, results)
	out.SetMeta("combined_by", c.llm.Info().Name)
	return out, nil
}

var _ Combiner = (*ModelCombiner)(nil)
