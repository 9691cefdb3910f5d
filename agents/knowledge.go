package agents

import (
	"fmt"
	"strings"
	"time"

	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/knowledge"
	"github.com/switchboard-ai/switchboard/model"
)

// Intent tags handled by the bundled agents.
const (
	IntentProductInfo     = "product_info"
	IntentCustomerSupport = "customer_support"
	IntentGeneralQuestion = "general_question"
)

// KnowledgeOptions configures a Knowledge agent.
type KnowledgeOptions struct {
	// Name overrides the default agent name.
	Name string
	// Priority orders the agent against other product_info handlers.
	Priority int
	// TopK bounds how many chunks are retrieved per question.
	TopK int
}

// Knowledge answers product questions by retrieving indexed documentation
// chunks and asking the model to answer strictly from them, citing sources.
type Knowledge struct {
	Base
	llm      model.Model
	searcher knowledge.Searcher
	topK     int
}

// NewKnowledge creates the knowledge agent over a retrieval backend.
func NewKnowledge(llm model.Model, searcher knowledge.Searcher, optFns ...func(o *KnowledgeOptions)) *Knowledge {
	opts := KnowledgeOptions{Name: "knowledge_agent", Priority: 3, TopK: 5}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Knowledge{
		Base: NewBase(core.Metadata{
			Name:         opts.Name,
			Description:  "Answers product and documentation questions using retrieval",
			Intents:      []string{IntentProductInfo, IntentGeneralQuestion},
			Capabilities: []string{"rag_retrieval", "product_info"},
			Priority:     opts.Priority,
		}),
		llm:      llm,
		searcher: searcher,
		topK:     opts.TopK,
	}
}

const knowledgeInstructions = `You are an expert assistant that answers questions using provided documentation.
Answer ONLY using the provided context. If the context doesn't contain enough
information, say so clearly. Cite your sources by mentioning their URLs.
Respond in the language used by the user.`

// Process implements core.Agent.
func (k *Knowledge) Process(reqCtx *core.RequestContext) (*core.Result, error) {
	start := time.Now()

	hits := k.searcher.Search(reqCtx.Message, k.topK)
	if len(hits) == 0 {
		reqCtx.Logger.Info("no relevant documentation found",
			"agent", k.Name(), "request_id", reqCtx.RequestID)
		res := core.NewResult(k.Name(), "I don't have specific information about that in our documentation. Could you rephrase your question?")
		res.SetMeta("sources", []string{})
		res.SetMeta("chunks_retrieved", 0)
		res.SetMeta("confidence", 0.0)
		res.SetMeta("elapsed_ms", time.Since(start).Milliseconds())
		return res, nil
	}

	prompt, sources := buildContextPrompt(hits, reqCtx.Message)
	resp, err := k.llm.Generate(reqCtx.Context, model.Request{
		Instructions: knowledgeInstructions,
		Prompt:       prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge generation: %w", err)
	}

	reqCtx.Logger.Info("knowledge answer produced",
		"agent", k.Name(),
		"request_id", reqCtx.RequestID,
		"chunks", len(hits),
		"sources", len(sources),
	)

	res := core.NewResult(k.Name(), resp.Text)
	res.SetMeta("sources", sources)
	res.SetMeta("chunks_retrieved", len(hits))
	res.SetMeta("confidence", 0.9)
	res.SetMeta("elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

// buildContextPrompt renders the retrieved chunks plus the question and
// collects the distinct source URLs in retrieval order.
func buildContextPrompt(hits []knowledge.Hit, query string) (string, []string) {
	var sb strings.Builder
	sb.WriteString("Context from documentation:\n\n")

	seen := map[string]struct{}{}
	var sources []string
	for i, hit := range hits {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		source := hit.Document.Source
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&sb, "Source: %s\n%s\n", source, hit.Document.Text)
		if hit.Document.Source != "" {
			if _, ok := seen[hit.Document.Source]; !ok {
				seen[hit.Document.Source] = struct{}{}
				sources = append(sources, hit.Document.Source)
			}
		}
	}
	fmt.Fprintf(&sb, "\nUser question: %q\n", query)
	return sb.String(), sources
}

var _ core.Agent = (*Knowledge)(nil)
