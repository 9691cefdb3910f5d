package core

import (
	"fmt"
	"strings"
	"time"
)

// DuplicateAgentError reports an attempt to register a second agent under an
// already-taken name. Registration is rejected and the registry is left
// unchanged; silent overwrites would hide wiring mistakes at startup.
type DuplicateAgentError struct {
	Name string
}

func (e *DuplicateAgentError) Error() string {
	return fmt.Sprintf("agent %q is already registered", e.Name)
}

// AgentError wraps a failure returned by one agent invocation. The router
// records these per agent; they never abort sibling invocations.
type AgentError struct {
	Agent string
	Err   error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s failed: %v", e.Agent, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

// TimeoutError reports that an agent invocation exceeded its individual
// timeout. The router stops waiting and records the timeout; the underlying
// work is cancelled via context but may still be running if the agent does
// not honor cancellation.
type TimeoutError struct {
	Agent   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent %s timed out after %s", e.Agent, e.Timeout)
}

// AgentFailure pairs an agent name with the error that felled it, preserving
// selection order for deterministic reporting.
type AgentFailure struct {
	Agent string
	Err   error
}

// AllAgentsFailedError is surfaced to the caller when every selected agent
// failed and there is nothing to combine.
type AllAgentsFailedError struct {
	Failures []AgentFailure
}

func (e *AllAgentsFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Agent, f.Err))
	}
	return fmt.Sprintf("all %d selected agents failed: %s", len(e.Failures), strings.Join(parts, "; "))
}
