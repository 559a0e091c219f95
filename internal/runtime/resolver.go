package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/index"
	"github.com/aretw0/typomata/pkg/types"
)

// Handler is a registered handler together with its declared shapes.
type Handler struct {
	Name    string
	States  types.Descriptor
	Actions types.Descriptor
	Returns types.Descriptor
	Fn      domain.HandlerFunc
}

// Resolver dispatches live (state, action) pairs through a transition index.
// It holds only immutable references and is safe for concurrent use.
type Resolver struct {
	machine  string
	index    *index.Index
	handlers map[string]Handler
	logger   *slog.Logger
	hooks    domain.Hooks
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) ResolverOption {
	return func(r *Resolver) {
		r.hooks = hooks
	}
}

// WithMachineName sets the machine name reported in events.
func WithMachineName(name string) ResolverOption {
	return func(r *Resolver) {
		r.machine = name
	}
}

// NewResolver creates a resolver over idx. Every handler named by an edge of
// idx must be present in handlers.
func NewResolver(idx *index.Index, handlers []Handler, opts ...ResolverOption) (*Resolver, error) {
	r := &Resolver{
		index:    idx,
		handlers: make(map[string]Handler, len(handlers)),
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, h := range handlers {
		if h.Fn == nil {
			return nil, fmt.Errorf("%w: handler %q has no function", domain.ErrInvalidDeclaration, h.Name)
		}
		r.handlers[h.Name] = h
	}
	for _, e := range idx.Edges() {
		if _, ok := r.handlers[e.Handler]; !ok {
			return nil, fmt.Errorf("%w: edge (%s, %s) names unregistered handler %q",
				domain.ErrInvalidDeclaration, types.Name(e.State), types.Name(e.Action), e.Handler)
		}
	}

	return r, nil
}

// Resolve selects the unique handler for the runtime types of state and action,
// invokes it and checks the returned state against the edge's result set.
// It returns the next state and the name of the handler that produced it.
func (r *Resolver) Resolve(ctx context.Context, state domain.State, action domain.Action) (domain.State, string, error) {
	if state == nil || action == nil {
		return nil, "", r.fail(ctx, "", state, action, domain.ErrNilValue)
	}

	st, at := reflect.TypeOf(state), reflect.TypeOf(action)
	edge, ok := r.index.Lookup(st, at)
	if !ok {
		err := &domain.NoTransitionError{
			State:    types.Name(st),
			Action:   types.Name(at),
			Expected: types.Names(r.index.StatesFor(at)),
		}
		return nil, "", r.fail(ctx, "", state, action, err)
	}

	next, err := r.invoke(ctx, r.handlers[edge.Handler], edge, state, action, false)
	return next, edge.Handler, err
}

// Invoke calls the named handler directly, bypassing dispatch.
// Values outside the handler's declared types fail with *domain.TypeMismatchError
// before the handler body runs. The return contract is checked as in Resolve.
func (r *Resolver) Invoke(ctx context.Context, name string, state domain.State, action domain.Action) (domain.State, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, r.fail(ctx, name, state, action, fmt.Errorf("%w: %s", domain.ErrUnknownHandler, name))
	}
	if state == nil || action == nil {
		return nil, r.fail(ctx, name, state, action, domain.ErrNilValue)
	}

	st, at := reflect.TypeOf(state), reflect.TypeOf(action)
	if !h.States.Contains(st) {
		return nil, r.fail(ctx, name, state, action, &domain.TypeMismatchError{
			Handler: name, Param: domain.PositionState, Got: types.Name(st), Expected: h.States.Names(),
		})
	}
	if !h.Actions.Contains(at) {
		return nil, r.fail(ctx, name, state, action, &domain.TypeMismatchError{
			Handler: name, Param: domain.PositionAction, Got: types.Name(at), Expected: h.Actions.Names(),
		})
	}

	edge, _ := r.index.Lookup(st, at)
	return r.invoke(ctx, h, edge, state, action, true)
}

func (r *Resolver) invoke(ctx context.Context, h Handler, edge index.Edge, state domain.State, action domain.Action, direct bool) (domain.State, error) {
	start := time.Now()
	next, err := h.Fn(ctx, state, action)
	elapsed := time.Since(start)

	if err != nil {
		return nil, r.fail(ctx, h.Name, state, action, fmt.Errorf("handler %s: %w", h.Name, err))
	}

	nt := reflect.TypeOf(next)
	if !containsType(edge.Results, nt) {
		err := &domain.ReturnContractViolationError{
			Handler:  h.Name,
			Got:      types.Name(nt),
			Expected: types.Names(edge.Results),
		}
		r.logger.Warn("Return contract violated", "handler", h.Name, "got", err.Got, "expected", err.Expected)
		return nil, r.fail(ctx, h.Name, state, action, err)
	}

	r.logger.Debug("Transition",
		"handler", h.Name,
		"from", types.Name(edge.State),
		"action", types.Name(edge.Action),
		"to", types.Name(nt),
		"direct", direct,
	)

	if r.hooks.OnTransition != nil {
		r.hooks.OnTransition(ctx, &domain.TransitionEvent{
			Timestamp: start,
			Machine:   r.machine,
			Handler:   h.Name,
			From:      types.Name(edge.State),
			Action:    types.Name(edge.Action),
			To:        types.Name(nt),
			Direct:    direct,
			Duration:  elapsed,
		})
	}
	return next, nil
}

func (r *Resolver) fail(ctx context.Context, handler string, state domain.State, action domain.Action, err error) error {
	kind := domain.Kind(err)
	r.logger.Debug("Resolution failed", "handler", handler, "kind", kind, "error", err)

	if r.hooks.OnError != nil {
		r.hooks.OnError(ctx, &domain.ErrorEvent{
			Timestamp: time.Now(),
			Machine:   r.machine,
			Handler:   handler,
			State:     types.Name(reflect.TypeOf(state)),
			Action:    types.Name(reflect.TypeOf(action)),
			Kind:      kind,
			Err:       err,
		})
	}
	return err
}

func containsType(ts []reflect.Type, t reflect.Type) bool {
	if t == nil {
		return false
	}
	for _, c := range ts {
		if c == t {
			return true
		}
	}
	return false
}
