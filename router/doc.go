// Package router implements the orchestration engine: per-request intent
// classification, candidate selection, concurrent agent execution and
// response combination.
//
// One Route call processes one request. Selected agents execute concurrently
// but independently, each on its own cloned request context with its own
// timeout. The router joins on all of them before combining, so combiner
// input order is selection order, never completion order. Classification and
// empty candidate sets degrade to configured fallbacks; only total agent
// failure (or caller cancellation) surfaces as an error.
package router
