package core

// Agent is the interface every handler in Switchboard must implement.
//
// Agents are the processing units behind the router: they receive an isolated
// RequestContext, do whatever domain work they encapsulate (retrieval, store
// lookups, model calls) and return a structured Result.
//
// Implementations must:
//   - Return stable Metadata for the lifetime of the process; the registry
//     snapshots it at registration time
//   - Respect cancellation of reqCtx.Context on every blocking call
//   - Treat the RequestContext as theirs alone; the router clones it per
//     invocation so no two agents share a mutable context
type Agent interface {
	// Metadata describes the agent for registration and selection.
	Metadata() Metadata

	// Process handles one request and returns a result, or an error when the
	// agent cannot produce a usable answer. Errors are captured per-agent by
	// the router; they never abort sibling invocations.
	Process(reqCtx *RequestContext) (*Result, error)
}
