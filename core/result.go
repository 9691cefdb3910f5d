package core

// Result is the structured output of one agent invocation (or of the router
// after combining several). Failures never travel inside a Result; the router
// captures them as typed errors and records them in the final metadata.
type Result struct {
	// Response is the answer text.
	Response string `json:"response"`

	// Agent names the producing agent. For merged responses the router sets
	// its own name and lists contributors in Metadata.
	Agent string `json:"agent"`

	// Metadata is a free-form bag (sources, confidence, timings, failure
	// records) tagged onto the response for observability.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewResult constructs a result with an initialized metadata bag.
func NewResult(agent, response string) *Result {
	return &Result{Agent: agent, Response: response, Metadata: map[string]any{}}
}

// SetMeta stores a metadata entry, allocating the bag if needed.
func (r *Result) SetMeta(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	r.Metadata[key] = value
}

// Meta returns a metadata entry and whether it was present.
func (r *Result) Meta(key string) (any, bool) {
	v, ok := r.Metadata[key]
	return v, ok
}

// Confidence returns the float64 "confidence" metadata entry, if present.
func (r *Result) Confidence() (float64, bool) {
	v, ok := r.Metadata["confidence"]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// Clone returns a copy with a shallow-copied metadata bag.
func (r *Result) Clone() *Result {
	c := &Result{Response: r.Response, Agent: r.Agent, Metadata: make(map[string]any, len(r.Metadata))}
	for k, v := range r.Metadata {
		c.Metadata[k] = v
	}
	return c
}
