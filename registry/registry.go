package registry

import (
	"fmt"
	"sync"

	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/logging"
)

// entry pairs a registered agent with the metadata snapshot taken at
// registration time. The snapshot is what every lookup returns; later
// mutations of the agent's own copy are invisible to the registry.
type entry struct {
	agent core.Agent
	md    core.Metadata
}

// Registry is the process-wide catalog mapping agent names to metadata, with
// derived indexes by intent and by capability. It is an explicit instance
// passed to the router and to agent constructors; there is no hidden global.
//
// All registrations normally happen during startup before request traffic
// begins, but the registry is nonetheless guarded by an RWMutex so that a
// deployment registering concurrently with lookups sees consistent snapshots
// (reads never block other reads).
//
// Invariant: the intent and capability indexes are always consistent with the
// primary mapping. Registered metadata is reachable through every index it
// declares membership in, and through none it doesn't.
type Registry struct {
	mu           sync.RWMutex
	entries      map[string]entry
	order        []string            // names in registration order
	byIntent     map[string][]string // intent -> names, registration order
	byCapability map[string][]string // capability -> names, registration order
	logger       logging.Logger
}

// Options configures a Registry.
type Options struct {
	// Logger receives registration log output. Defaults to no-op.
	Logger logging.Logger
}

// New creates an empty registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		entries:      map[string]entry{},
		byIntent:     map[string][]string{},
		byCapability: map[string][]string{},
		logger:       opts.Logger,
	}
}

// Register adds an agent to the catalog under its metadata name and updates
// the intent and capability indexes. A name collision is rejected with
// *core.DuplicateAgentError and leaves the registry completely unchanged;
// duplicate registration is a startup wiring bug, never silently overwritten.
func (r *Registry) Register(a core.Agent) error {
	if a == nil {
		return fmt.Errorf("register: agent must not be nil")
	}
	md := a.Metadata().Clone()
	if md.Name == "" {
		return fmt.Errorf("register: agent name must not be empty")
	}
	if len(md.Intents) == 0 {
		return fmt.Errorf("register: agent %q declares no intents", md.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[md.Name]; exists {
		return &core.DuplicateAgentError{Name: md.Name}
	}

	r.entries[md.Name] = entry{agent: a, md: md}
	r.order = append(r.order, md.Name)
	for _, intent := range dedupe(md.Intents) {
		r.byIntent[intent] = append(r.byIntent[intent], md.Name)
	}
	for _, capability := range dedupe(md.Capabilities) {
		r.byCapability[capability] = append(r.byCapability[capability], md.Name)
	}

	r.logger.Info("agent registered",
		"agent", md.Name,
		"intents", md.Intents,
		"priority", md.Priority,
	)
	return nil
}

// Get returns the registered agent instance by name.
func (r *Registry) Get(name string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.agent, true
}

// All returns the metadata of every registered agent in registration order.
func (r *Registry) All() []core.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Metadata, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].md.Clone())
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// FindByIntent returns the metadata of every agent declaring the intent, in
// registration order. An empty result means no match; it is not an error.
func (r *Registry) FindByIntent(intent string) []core.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.byIntent[intent])
}

// FindByCapability returns the metadata of every agent declaring the
// capability, in registration order.
func (r *Registry) FindByCapability(capability string) []core.Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.byCapability[capability])
}

// AvailableIntents returns the distinct intents across all registered agents,
// each paired with the handler names in registration order. Intents appear in
// first-registration order so classifier prompts are stable across calls for
// identical registry state.
func (r *Registry) AvailableIntents() []core.IntentAgents {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]int{}
	var out []core.IntentAgents
	for _, name := range r.order {
		for _, intent := range dedupe(r.entries[name].md.Intents) {
			idx, ok := seen[intent]
			if !ok {
				idx = len(out)
				seen[intent] = idx
				out = append(out, core.IntentAgents{Intent: intent})
			}
			out[idx].Agents = append(out[idx].Agents, name)
		}
	}
	return out
}

// HasIntent reports whether at least one registered agent handles the intent.
func (r *Registry) HasIntent(intent string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIntent[intent]) > 0
}

// SelectBest returns the single agent with the highest priority among those
// handling the intent. Ties are broken by earliest registration, so repeated
// calls over identical registry state are deterministic. The second return is
// false when no agent handles the intent; callers must treat that as a
// fallback case, not a fault.
func (r *Registry) SelectBest(intent string) (core.Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.byIntent[intent]
	if len(names) == 0 {
		return core.Metadata{}, false
	}
	best := r.entries[names[0]].md
	for _, name := range names[1:] {
		if md := r.entries[name].md; md.Priority > best.Priority {
			best = md
		}
	}
	return best.Clone(), true
}

// collect resolves names to metadata clones preserving order. Callers must
// hold at least a read lock.
func (r *Registry) collect(names []string) []core.Metadata {
	if len(names) == 0 {
		return nil
	}
	out := make([]core.Metadata, 0, len(names))
	for _, name := range names {
		out = append(out, r.entries[name].md.Clone())
	}
	return out
}

// dedupe removes repeated tags while preserving first-seen order, keeping the
// indexes consistent even when metadata declares a tag twice.
func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
