// Package switchboard provides a high-level façade over the registry and
// router, enabling rapid construction of intent-routed multi-agent systems.
// Most applications interact with this package by:
//  1. Creating a Switchboard via New() with a classifier
//  2. Registering one or more agents (bundled or custom)
//  3. Routing messages with Ask
//
// The façade delegates orchestration to router.Router while keeping setup
// ergonomics concise. Defaults are safe for local development and testing;
// production deployments typically supply a model-backed classifier, real
// retrieval/account backends and a structured logger.
package switchboard

import (
	"context"

	"github.com/switchboard-ai/switchboard/classify"
	"github.com/switchboard-ai/switchboard/core"
	"github.com/switchboard-ai/switchboard/logging"
	"github.com/switchboard-ai/switchboard/registry"
	"github.com/switchboard-ai/switchboard/router"
)

// Options configures the Switchboard instance.
type Options struct {
	// RouterOptions are applied to the underlying router.
	RouterOptions []func(o *router.Options)

	// Logger is shared by the registry and router. Defaults to no-op.
	Logger logging.Logger
}

// Switchboard aggregates the registry and the router behind a small API.
type Switchboard struct {
	registry *registry.Registry
	router   *router.Router
	logger   logging.Logger
}

// New creates a Switchboard with an empty registry and a router over the
// given classifier. Register agents before routing traffic; the startup
// sequence is construct Switchboard → register agents → Ask.
func New(classifier classify.Classifier, optFns ...func(o *Options)) *Switchboard {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	reg := registry.New(func(o *registry.Options) { o.Logger = opts.Logger })
	routerOpts := append([]func(o *router.Options){func(o *router.Options) {
		o.Logger = opts.Logger
	}}, opts.RouterOptions...)

	return &Switchboard{
		registry: reg,
		router:   router.New(reg, classifier, routerOpts...),
		logger:   opts.Logger,
	}
}

// Registry exposes the underlying registry for listing endpoints and
// capability lookups.
func (s *Switchboard) Registry() *registry.Registry { return s.registry }

// RegisterAgent adds an agent to the registry. Duplicate names are rejected
// with *core.DuplicateAgentError; treat that as fatal at startup.
func (s *Switchboard) RegisterAgent(a core.Agent) error {
	return s.registry.Register(a)
}

// AskOption mutates the request context before routing.
type AskOption func(reqCtx *core.RequestContext)

// WithUserID attaches a caller identity to the request.
func WithUserID(userID string) AskOption {
	return func(reqCtx *core.RequestContext) { reqCtx.UserID = userID }
}

// WithValue stores an agent-specific input in the request's opaque bag.
func WithValue(key string, value any) AskOption {
	return func(reqCtx *core.RequestContext) { reqCtx.SetValue(key, value) }
}

// Ask routes one message and returns the combined result.
func (s *Switchboard) Ask(ctx context.Context, message string, optFns ...AskOption) (*core.Result, error) {
	reqCtx := core.NewRequestContext(ctx, message)
	reqCtx.Logger = s.logger
	for _, fn := range optFns {
		fn(reqCtx)
	}
	return s.router.Route(reqCtx)
}
