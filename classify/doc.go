// Package classify maps free-text messages onto the intents currently served
// by the registry. The classifier contract is deliberately best-effort: the
// router validates every returned intent and recovers from any classifier
// error by falling back to its configured fallback intent, so implementations
// may fail without failing the request.
package classify
