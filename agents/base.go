package agents

import "github.com/switchboard-ai/switchboard/core"

// Base bundles the metadata bookkeeping shared by the bundled agents. Embed
// it and implement Process to satisfy core.Agent.
type Base struct {
	md core.Metadata
}

// NewBase constructs a Base from metadata.
func NewBase(md core.Metadata) Base {
	return Base{md: md}
}

// Metadata implements core.Agent.
func (b *Base) Metadata() core.Metadata { return b.md.Clone() }

// Name returns the agent name.
func (b *Base) Name() string { return b.md.Name }
