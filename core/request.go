package core

import (
	"context"

	"github.com/switchboard-ai/switchboard/logging"
)

// RequestContext carries the per-message execution state handed to agents.
// It is ephemeral: created when a message arrives, discarded after the
// response is returned. The router clones it before each agent invocation so
// concurrent agents never share a Values bag.
type RequestContext struct {
	// Context is the ambient cancellation context. The router narrows it
	// with a per-invocation timeout before handing the clone to an agent.
	Context context.Context

	// RequestID correlates log lines and results for one routed message.
	RequestID string

	// Message is the raw user text being routed.
	Message string

	// UserID is the optional caller identity. Agents whose metadata sets
	// RequiresUserID are skipped when it is empty.
	UserID string

	// Intent is filled in by the router after classification. Empty until
	// the Classifying phase completes.
	Intent string

	// Values is an opaque bag for agent-specific inputs.
	Values map[string]any

	// Logger receives structured per-request log output. Never nil.
	Logger logging.Logger
}

// NewRequestContext constructs a context for one incoming message. A request
// id is generated and the logger defaults to a no-op implementation.
func NewRequestContext(ctx context.Context, message string) *RequestContext {
	return &RequestContext{
		Context:   ctx,
		RequestID: NewID(),
		Message:   message,
		Values:    map[string]any{},
		Logger:    logging.NoOpLogger{},
	}
}

// Done mirrors context.Context's Done for convenience in select loops.
func (rc *RequestContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RequestContext) Err() error { return rc.Context.Err() }

// Value returns an entry from the opaque bag and whether it was present.
func (rc *RequestContext) Value(key string) (any, bool) {
	v, ok := rc.Values[key]
	return v, ok
}

// SetValue stores an entry in the opaque bag.
func (rc *RequestContext) SetValue(key string, value any) { rc.Values[key] = value }

// Clone returns a copy with a deep-copied Values bag. Identity fields and the
// ambient context are shared; mutations on the clone never leak back.
func (rc *RequestContext) Clone() *RequestContext {
	c := &RequestContext{
		Context:   rc.Context,
		RequestID: rc.RequestID,
		Message:   rc.Message,
		UserID:    rc.UserID,
		Intent:    rc.Intent,
		Values:    make(map[string]any, len(rc.Values)),
		Logger:    rc.Logger,
	}
	for k, v := range rc.Values {
		c.Values[k] = v
	}
	return c
}

// WithIntent clones the context and sets the classified intent.
func (rc *RequestContext) WithIntent(intent string) *RequestContext {
	c := rc.Clone()
	c.Intent = intent
	return c
}
