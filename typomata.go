package typomata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/aretw0/typomata/internal/runtime"
	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/index"
	"github.com/aretw0/typomata/pkg/types"
)

// Builder collects handler declarations and compiles them into a Machine.
// A Builder is not safe for concurrent use.
type Builder struct {
	name        string
	logger      *slog.Logger
	hooks       domain.Hooks
	transitions []transition
	states      []types.Descriptor
	errs        []error
}

type transition struct {
	handler runtime.Handler
	label   string
}

// Option defines a functional option for configuring the Builder.
type Option func(*Builder)

// WithLogger sets a custom structured logger for the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithHooks registers observability hooks fired after every resolution.
func WithHooks(hooks domain.Hooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// TransitionOption configures a single declared transition.
type TransitionOption func(*transition)

// WithLabel attaches metadata to every edge of the transition.
// Renderers show it next to the action.
func WithLabel(label string) TransitionOption {
	return func(t *transition) {
		t.label = label
	}
}

// New starts the declaration of a machine.
func New(name string, opts ...Option) *Builder {
	b := &Builder{name: name}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if b.name != "" {
		b.logger = b.logger.With("machine", b.name)
	}
	return b
}

// Transition declares a handler from any state in state, on any action in
// action, to one of the states in ret.
func (b *Builder) Transition(name string, state, action, ret types.Descriptor, fn domain.HandlerFunc, opts ...TransitionOption) *Builder {
	t := transition{
		handler: runtime.Handler{
			Name:    name,
			States:  state,
			Actions: action,
			Returns: ret,
			Fn:      fn,
		},
	}
	for _, opt := range opts {
		opt(&t)
	}
	b.transitions = append(b.transitions, t)
	return b
}

// States declares state types that should appear in the graph even when no
// edge reaches them.
func (b *Builder) States(ds ...types.Descriptor) *Builder {
	b.states = append(b.states, ds...)
	return b
}

// On declares a single-edge handler whose shapes are its type parameters.
func On[S, A, R any](b *Builder, name string, fn func(context.Context, S, A) (R, error), opts ...TransitionOption) *Builder {
	return b.Transition(name, types.Of[S](), types.Of[A](), types.Of[R](), func(ctx context.Context, s domain.State, a domain.Action) (domain.State, error) {
		r, err := fn(ctx, s.(S), a.(A))
		if err != nil {
			return nil, err
		}
		return r, nil
	}, opts...)
}

// Typed adapts a function over concrete state and action types into a
// HandlerFunc. Use domain.State as S for handlers declared over a union of states.
func Typed[S, A any](fn func(context.Context, S, A) (domain.State, error)) domain.HandlerFunc {
	return func(ctx context.Context, s domain.State, a domain.Action) (domain.State, error) {
		return fn(ctx, s.(S), a.(A))
	}
}

// Build validates every declaration, builds the transition index and
// returns the resulting Machine. All declaration errors are reported together.
func (b *Builder) Build() (*Machine, error) {
	errs := append([]error(nil), b.errs...)

	decls := make([]index.Declaration, 0, len(b.transitions))
	handlers := make([]runtime.Handler, 0, len(b.transitions))
	names := make([]string, 0, len(b.transitions))
	for _, t := range b.transitions {
		decls = append(decls, index.Declaration{
			Name:   t.handler.Name,
			State:  t.handler.States,
			Action: t.handler.Actions,
			Return: t.handler.Returns,
			Label:  t.label,
		})
		handlers = append(handlers, t.handler)
		names = append(names, t.handler.Name)
	}

	var extra []reflect.Type
	for _, d := range b.states {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		extra = append(extra, d.Expand()...)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	idx, err := index.Build(decls)
	if err != nil {
		return nil, err
	}

	resolver, err := runtime.NewResolver(idx, handlers,
		runtime.WithLogger(b.logger),
		runtime.WithHooks(b.hooks),
		runtime.WithMachineName(b.name),
	)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("Machine built", "handlers", len(handlers), "edges", idx.Len())

	return &Machine{
		name:     b.name,
		index:    idx,
		resolver: resolver,
		handlers: names,
		extra:    extra,
	}, nil
}

// MustBuild is like Build but panics on error.
// It is intended for package-level machine definitions.
func (b *Builder) MustBuild() *Machine {
	m, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("typomata: building %s: %v", b.name, err))
	}
	return m
}
