package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/switchboard-ai/switchboard/classify"
	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/logging"
	"github.com/switchboard-ai/switchboard/registry"
)

// SelectionPolicy determines which of several intent candidates run.
type SelectionPolicy int

const (
	// SelectSingleBest runs only the highest-priority candidate (earliest
	// registration wins ties). This is the default.
	SelectSingleBest SelectionPolicy = iota

	// SelectAllAboveThreshold runs every candidate whose priority is at
	// least Options.PriorityThreshold, enabling parallel multi-agent
	// answers. When no candidate clears the threshold the policy degrades
	// to SelectSingleBest so selection is never empty.
	SelectAllAboveThreshold
)

// String returns the string representation of the policy.
func (p SelectionPolicy) String() string {
	switch p {
	case SelectAllAboveThreshold:
		return "all_above_threshold"
	default:
		return "single_best"
	}
}

// ParsePolicy maps a config string to a SelectionPolicy.
func ParsePolicy(s string) (SelectionPolicy, error) {
	switch s {
	case "", "single_best":
		return SelectSingleBest, nil
	case "all_above_threshold":
		return SelectAllAboveThreshold, nil
	default:
		return SelectSingleBest, fmt.Errorf("unknown selection policy %q", s)
	}
}

// phase labels the per-request state machine for logging.
type phase string

const (
	phaseReceived    phase = "received"
	phaseClassifying phase = "classifying"
	phaseSelecting   phase = "selecting"
	phaseExecuting   phase = "executing"
	phaseCombining   phase = "combining"
	phaseDone        phase = "done"
	phaseErrored     phase = "errored"
)

// Default option values.
const (
	DefaultName                = "router"
	DefaultFallbackIntent      = "general_question"
	DefaultFallbackResponse    = "I'm sorry, I don't have an agent that can help with that yet."
	DefaultAgentTimeout        = 30 * time.Second
	DefaultClassifyTimeout     = 10 * time.Second
	DefaultMaxConcurrentAgents = 8
)

// Options configures a Router.
type Options struct {
	// Name tags merged responses and log lines.
	Name string

	// Policy selects among multiple intent candidates. The policy is
	// deterministic for identical registry state and intent.
	Policy SelectionPolicy

	// PriorityThreshold is the minimum priority an agent needs to run under
	// SelectAllAboveThreshold.
	PriorityThreshold int

	// AgentTimeout bounds each individual agent invocation. An agent that
	// exceeds it is treated as failed for merge purposes, not retried.
	AgentTimeout time.Duration

	// ClassifyTimeout bounds the classifier call.
	ClassifyTimeout time.Duration

	// MaxConcurrentAgents caps concurrently executing agent invocations
	// across the router. 0 means unlimited.
	MaxConcurrentAgents int64

	// FallbackIntent is routed to when classification fails or names an
	// intent with no registered agent.
	FallbackIntent string

	// FallbackResponse is the canned reply returned when even the fallback
	// intent has no registered agents, or every selected agent was skipped.
	FallbackResponse string

	// Combiner merges multiple successful results. Defaults to the
	// deterministic ConcatCombiner.
	Combiner Combiner

	// Logger receives structured routing output. Defaults to no-op.
	Logger logging.Logger
}

// Router orchestrates one request at a time: it consults the registry for
// available intents, invokes the classifier, selects candidate agents,
// executes them concurrently with per-invocation timeouts and merges the
// successful results.
//
// Each request walks the states received → classifying → selecting →
// executing → combining → done, with errored as the only terminal failure
// (total agent failure). Every other degradation (classifier errors, unknown
// intents, empty candidate sets, skipped agents, partial failures) resolves
// to a degraded answer, never to an error.
type Router struct {
	registry   *registry.Registry
	classifier classify.Classifier
	opts       Options
	sem        *semaphore.Weighted
}

// New creates a Router over the given registry and classifier.
func New(reg *registry.Registry, classifier classify.Classifier, optFns ...func(o *Options)) *Router {
	opts := Options{
		Name:                DefaultName,
		Policy:              SelectSingleBest,
		AgentTimeout:        DefaultAgentTimeout,
		ClassifyTimeout:     DefaultClassifyTimeout,
		MaxConcurrentAgents: DefaultMaxConcurrentAgents,
		FallbackIntent:      DefaultFallbackIntent,
		FallbackResponse:    DefaultFallbackResponse,
		Combiner:            &ConcatCombiner{},
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Combiner == nil {
		opts.Combiner = &ConcatCombiner{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	var sem *semaphore.Weighted
	if opts.MaxConcurrentAgents > 0 {
		sem = semaphore.NewWeighted(opts.MaxConcurrentAgents)
	}
	return &Router{registry: reg, classifier: classifier, opts: opts, sem: sem}
}

// invocation pairs selected metadata with the agent instance to run.
type invocation struct {
	md    core.Metadata
	agent core.Agent
}

// Route processes one message end to end and returns the combined result.
// The only error conditions surfaced to the caller are a cancelled request
// context and *core.AllAgentsFailedError; everything else degrades to a
// result with explanatory metadata.
func (r *Router) Route(reqCtx *core.RequestContext) (*core.Result, error) {
	start := time.Now()
	if reqCtx.RequestID == "" {
		reqCtx.RequestID = core.NewID()
	}
	if _, unset := reqCtx.Logger.(logging.NoOpLogger); unset || reqCtx.Logger == nil {
		reqCtx.Logger = r.opts.Logger
	}
	log := reqCtx.Logger
	r.transition(log, reqCtx.RequestID, phaseReceived)

	if err := reqCtx.Err(); err != nil {
		return nil, err
	}

	// Classifying. Available intents always come from the registry, never a
	// hardcoded list.
	r.transition(log, reqCtx.RequestID, phaseClassifying)
	available := r.registry.AvailableIntents()
	if len(available) == 0 {
		r.transition(log, reqCtx.RequestID, phaseDone)
		return r.fallbackResult(reqCtx, start, "", "no agents registered", nil), nil
	}
	intent, confidence, fallbackNote := r.classifyIntent(reqCtx)
	reqCtx = reqCtx.WithIntent(intent)

	// Selecting.
	r.transition(log, reqCtx.RequestID, phaseSelecting)
	candidates := r.registry.FindByIntent(intent)
	if len(candidates) == 0 {
		// The fallback intent itself has no handler: answer with the canned
		// response instead of failing (zero candidates is not a fault).
		r.transition(log, reqCtx.RequestID, phaseDone)
		return r.fallbackResult(reqCtx, start, intent, "no agent for intent", nil), nil
	}
	selected := r.applyPolicy(candidates)

	runnable, skipped := r.partitionByIdentity(reqCtx, selected)
	if len(runnable) == 0 {
		log.Warn("all selected agents skipped",
			"request_id", reqCtx.RequestID, "intent", intent, "skipped", skipped)
		r.transition(log, reqCtx.RequestID, phaseDone)
		return r.fallbackResult(reqCtx, start, intent, "all selected agents require a user identity", skipped), nil
	}

	// Executing: fan out, one goroutine per agent, join on all of them.
	r.transition(log, reqCtx.RequestID, phaseExecuting)
	successes, failures := r.execute(reqCtx, runnable)
	if len(successes) == 0 {
		r.transition(log, reqCtx.RequestID, phaseErrored)
		return nil, &core.AllAgentsFailedError{Failures: failures}
	}

	// Combining: selection order in, deterministic result out.
	r.transition(log, reqCtx.RequestID, phaseCombining)
	var (
		res *core.Result
		err error
	)
	if len(successes) == 1 {
		res = successes[0].Clone()
	} else {
		res, err = r.opts.Combiner.Combine(reqCtx, successes)
		if err != nil {
			r.transition(log, reqCtx.RequestID, phaseErrored)
			return nil, fmt.Errorf("combine results: %w", err)
		}
		res.Agent = r.opts.Name
	}

	r.annotate(res, reqCtx, start, runnable, skipped, failures, confidence, fallbackNote)
	r.transition(log, reqCtx.RequestID, phaseDone)
	log.Info("request routed",
		"request_id", reqCtx.RequestID,
		"intent", intent,
		"agents", agentNames(runnable),
		"failed", len(failures),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// classifyIntent invokes the classifier and validates its answer against the
// registry. Classification is best-effort: any error or unknown intent falls
// back to the configured fallback intent with a note for metadata.
func (r *Router) classifyIntent(reqCtx *core.RequestContext) (intent string, confidence float64, fallbackNote string) {
	cctx, cancel := context.WithTimeout(reqCtx.Context, r.opts.ClassifyTimeout)
	defer cancel()

	cls, err := r.classifier.Classify(cctx, reqCtx.Message, r.registry.AvailableIntents())
	if err != nil {
		reqCtx.Logger.Warn("classification failed, using fallback intent",
			"request_id", reqCtx.RequestID, "fallback_intent", r.opts.FallbackIntent, "error", err)
		return r.opts.FallbackIntent, 0, fmt.Sprintf("classifier error: %v", err)
	}
	if !r.registry.HasIntent(cls.Intent) {
		reqCtx.Logger.Warn("classified intent has no registered agent",
			"request_id", reqCtx.RequestID, "intent", cls.Intent, "fallback_intent", r.opts.FallbackIntent)
		return r.opts.FallbackIntent, cls.Confidence, fmt.Sprintf("intent %q has no registered agent", cls.Intent)
	}
	return cls.Intent, cls.Confidence, ""
}

// applyPolicy reduces intent candidates (already in registration order) to
// the selected set, deterministically for identical inputs.
func (r *Router) applyPolicy(candidates []core.Metadata) []core.Metadata {
	if len(candidates) == 1 {
		return candidates
	}
	if r.opts.Policy == SelectAllAboveThreshold {
		selected := make([]core.Metadata, 0, len(candidates))
		for _, md := range candidates {
			if md.Priority >= r.opts.PriorityThreshold {
				selected = append(selected, md)
			}
		}
		if len(selected) > 0 {
			return selected
		}
		// Nothing cleared the threshold; degrade to single best.
	}
	return []core.Metadata{singleBest(candidates)}
}

// singleBest picks the highest priority; earliest registration wins ties
// because only a strictly greater priority replaces the running best.
func singleBest(candidates []core.Metadata) core.Metadata {
	best := candidates[0]
	for _, md := range candidates[1:] {
		if md.Priority > best.Priority {
			best = md
		}
	}
	return best
}

// partitionByIdentity resolves selected metadata to agent instances and
// filters out agents that require a user identity the context doesn't carry.
// Skips are recorded, not silently dropped.
func (r *Router) partitionByIdentity(reqCtx *core.RequestContext, selected []core.Metadata) ([]invocation, map[string]string) {
	runnable := make([]invocation, 0, len(selected))
	skipped := map[string]string{}
	for _, md := range selected {
		if md.RequiresUserID && reqCtx.UserID == "" {
			skipped[md.Name] = "requires a user identity"
			continue
		}
		agent, ok := r.registry.Get(md.Name)
		if !ok {
			// Metadata without an instance would be an index inconsistency;
			// record it rather than crash.
			skipped[md.Name] = "agent instance missing from registry"
			continue
		}
		runnable = append(runnable, invocation{md: md, agent: agent})
	}
	if len(skipped) == 0 {
		return runnable, nil
	}
	return runnable, skipped
}

// execute runs all selected agents concurrently and waits for every one to
// complete or time out. Results keep selection order; failures are captured
// per agent and never abort siblings.
func (r *Router) execute(reqCtx *core.RequestContext, selected []invocation) ([]*core.Result, []core.AgentFailure) {
	results := make([]*core.Result, len(selected))
	errs := make([]error, len(selected))

	var wg sync.WaitGroup
	for i, inv := range selected {
		wg.Add(1)
		go func(i int, inv invocation) {
			defer wg.Done()
			results[i], errs[i] = r.invoke(reqCtx, inv)
		}(i, inv)
	}
	wg.Wait()

	successes := make([]*core.Result, 0, len(selected))
	var failures []core.AgentFailure
	for i, inv := range selected {
		if errs[i] != nil {
			reqCtx.Logger.Warn("agent invocation failed",
				"request_id", reqCtx.RequestID, "agent", inv.md.Name, "error", errs[i])
			failures = append(failures, core.AgentFailure{Agent: inv.md.Name, Err: errs[i]})
			continue
		}
		successes = append(successes, results[i])
	}
	return successes, failures
}

// invoke runs one agent with an isolated context clone and an individual
// timeout. On timeout the router stops waiting; the agent goroutine keeps the
// (cancelled) context and exits on its own schedule.
func (r *Router) invoke(reqCtx *core.RequestContext, inv invocation) (*core.Result, error) {
	if r.sem != nil {
		if err := r.sem.Acquire(reqCtx.Context, 1); err != nil {
			return nil, &core.AgentError{Agent: inv.md.Name, Err: err}
		}
		defer r.sem.Release(1)
	}

	child := reqCtx.Clone()
	cctx, cancel := context.WithTimeout(reqCtx.Context, r.opts.AgentTimeout)
	defer cancel()
	child.Context = cctx

	type outcome struct {
		res *core.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := inv.agent.Process(child)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, &core.AgentError{Agent: inv.md.Name, Err: out.err}
		}
		if out.res == nil {
			return nil, &core.AgentError{Agent: inv.md.Name, Err: errors.New("agent returned nil result")}
		}
		if out.res.Agent == "" {
			out.res.Agent = inv.md.Name
		}
		return out.res, nil
	case <-cctx.Done():
		if errors.Is(cctx.Err(), context.DeadlineExceeded) && reqCtx.Err() == nil {
			return nil, &core.TimeoutError{Agent: inv.md.Name, Timeout: r.opts.AgentTimeout}
		}
		return nil, &core.AgentError{Agent: inv.md.Name, Err: cctx.Err()}
	}
}

// fallbackResult builds the canned degraded answer.
func (r *Router) fallbackResult(reqCtx *core.RequestContext, start time.Time, intent, note string, skipped map[string]string) *core.Result {
	res := core.NewResult(r.opts.Name, r.opts.FallbackResponse)
	res.SetMeta("fallback", true)
	res.SetMeta("note", note)
	res.SetMeta("request_id", reqCtx.RequestID)
	if intent != "" {
		res.SetMeta("intent", intent)
	}
	if len(skipped) > 0 {
		res.SetMeta("skipped_agents", skipped)
	}
	res.SetMeta("elapsed_ms", time.Since(start).Milliseconds())
	return res
}

// annotate attaches routing observability metadata to the final result.
func (r *Router) annotate(res *core.Result, reqCtx *core.RequestContext, start time.Time, runnable []invocation, skipped map[string]string, failures []core.AgentFailure, confidence float64, fallbackNote string) {
	res.SetMeta("request_id", reqCtx.RequestID)
	res.SetMeta("intent", reqCtx.Intent)
	res.SetMeta("selected_agents", agentNames(runnable))
	res.SetMeta("elapsed_ms", time.Since(start).Milliseconds())
	if confidence > 0 {
		res.SetMeta("classifier_confidence", confidence)
	}
	if fallbackNote != "" {
		res.SetMeta("classifier_fallback", fallbackNote)
	}
	if len(skipped) > 0 {
		res.SetMeta("skipped_agents", skipped)
	}
	if len(failures) > 0 {
		failed := make(map[string]string, len(failures))
		for _, f := range failures {
			failed[f.Agent] = f.Err.Error()
		}
		res.SetMeta("failed_agents", failed)
	}
}

func agentNames(invs []invocation) []string {
	names := make([]string, 0, len(invs))
	for _, inv := range invs {
		names = append(names, inv.md.Name)
	}
	return names
}

// transition logs a state machine transition at debug level.
func (r *Router) transition(log logging.Logger, requestID string, p phase) {
	log.Debug("router transition", "request_id", requestID, "phase", string(p))
}
