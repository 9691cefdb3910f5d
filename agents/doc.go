// Package agents contains the bundled agent implementations: Knowledge
// (retrieval-grounded documentation answers), Support (account lookups behind
// a required user identity) and General (direct conversational fallback).
// Each exposes its own core.Metadata for registration; deployments register
// any subset alongside their own core.Agent implementations.
package agents
