package agents

import (
	"fmt"
	"time"

	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/model"
)

// GeneralOptions configures a General agent.
type GeneralOptions struct {
	Name     string
	Priority int
}

// General answers greetings and questions no specialist covers with a direct
// model response. Registered under the router's default fallback intent, it
// doubles as the fallback agent when classification fails or yields an intent
// nobody handles.
type General struct {
	Base
	llm model.Model
}

// NewGeneral creates the general conversational agent.
func NewGeneral(llm model.Model, optFns ...func(o *GeneralOptions)) *General {
	opts := GeneralOptions{Name: "general_agent", Priority: 1}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &General{
		Base: NewBase(core.Metadata{
			Name:         opts.Name,
			Description:  "Handles greetings and general questions",
			Intents:      []string{IntentGeneralQuestion},
			Capabilities: []string{"conversation"},
			Priority:     opts.Priority,
		}),
		llm: llm,
	}
}

const generalInstructions = `You are a friendly customer service assistant.
Respond naturally and concisely, in the language used by the user.`

// Process implements core.Agent.
func (g *General) Process(reqCtx *core.RequestContext) (*core.Result, error) {
	start := time.Now()
	resp, err := g.llm.Generate(reqCtx.Context, model.Request{
		Instructions: generalInstructions,
		Prompt:       reqCtx.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("general generation: %w", err)
	}

	res := core.NewResult(g.Name(), resp.Text)
	res.SetMeta("confidence", 0.6)
	res.SetMeta("direct_response", true)
	res.SetMeta("elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

var _ core.Agent = (*General)(nil)
