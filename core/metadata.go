package core

// Metadata is the immutable description of one agent used for discovery and
// selection. It is created once at agent construction; the registry stores
// and hands out defensive copies so callers cannot mutate registered state.
//
// Invariants enforced at registration time:
//   - Name is unique across the registry
//   - Intents is non-empty
type Metadata struct {
	// Name uniquely identifies the agent within a registry.
	Name string `json:"name"`

	// Description is a human-readable summary. It is surfaced to the
	// classifier prompt, so it should say what the agent answers.
	Description string `json:"description"`

	// Intents lists the intent tags this agent can handle.
	Intents []string `json:"intents"`

	// Capabilities are free-form tags for capability-based lookup,
	// independent of intent (e.g. "rag_retrieval", "support_tickets").
	Capabilities []string `json:"capabilities"`

	// Priority orders agents that tie on intent; higher is preferred.
	// Ties are broken by registration order.
	Priority int `json:"priority"`

	// RequiresUserID marks agents that must not be invoked without a user
	// identity on the request context.
	RequiresUserID bool `json:"requires_user_id"`
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	c := m
	c.Intents = append([]string(nil), m.Intents...)
	c.Capabilities = append([]string(nil), m.Capabilities...)
	return c
}

// HandlesIntent reports whether the metadata declares the given intent.
func (m Metadata) HandlesIntent(intent string) bool {
	for _, it := range m.Intents {
		if it == intent {
			return true
		}
	}
	return false
}

// HasCapability reports whether the metadata declares the given capability.
func (m Metadata) HasCapability(capability string) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// IntentAgents pairs one intent with the names of the agents that handle it,
// in registration order. The registry produces these so the classifier prompt
// can be built dynamically instead of hardcoding intent lists.
type IntentAgents struct {
	Intent string   `json:"intent"`
	Agents []string `json:"agents"`
}
