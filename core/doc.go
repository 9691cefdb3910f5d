// Package core provides the foundational domain types and interfaces used by
// Switchboard. It defines the core abstractions for:
//
//   - Agents (handlers that produce a response for one or more intents)
//   - Metadata (immutable per-agent descriptors used for discovery)
//   - RequestContext (scoped, per-message execution state)
//   - Result (the structured output of one agent invocation)
//   - The routing error taxonomy (duplicate registration, per-agent
//     failure/timeout, total failure)
//
// The package intentionally keeps implementation concerns (registry storage,
// router orchestration, concrete agents, model adapters) out of scope,
// exposing small types so that higher packages compose without cycles.
package core
