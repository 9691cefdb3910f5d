// Package model defines the minimal text-generation abstraction Switchboard
// depends on. The router treats classification and generation as black-box
// capabilities; this package pins the contract and ships a deterministic
// MockModel for tests plus a circuit-breaker decorator for flaky providers.
// Concrete adapters for the official Anthropic and OpenAI SDKs live in the
// anthropic and openai subpackages.
package model

import (
	"context"
	"fmt"
)

// Request captures one normalized generation call.
type Request struct {
	// Instructions is the system-level steering text.
	Instructions string `json:"instructions"`
	// Prompt is the user-level input.
	Prompt string `json:"prompt"`
}

// TokenUsage captures token accounting for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed output of one generation call.
type Response struct {
	Text  string      `json:"text"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the interface required by the classifier, the model-backed
// combiner and the concrete agents to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Responses are keyed by exact prompt; unknown prompts get a canned echo.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: map[string]string{},
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailWith makes every subsequent Generate call return err (nil restores
// normal behavior).
func (m *MockModel) FailWith(err error) { m.err = err }

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	text, ok := m.responses[req.Prompt]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}
	return &Response{Text: text}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
