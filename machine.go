package typomata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"

	"github.com/aretw0/typomata/internal/runtime"
	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/graph"
	"github.com/aretw0/typomata/pkg/index"
)

// Machine is a compiled state machine.
// It is immutable and safe for concurrent use.
type Machine struct {
	name     string
	index    *index.Index
	resolver *runtime.Resolver
	handlers []string
	extra    []reflect.Type
}

// Name returns the name given to New.
func (m *Machine) Name() string {
	return m.name
}

// Run dispatches action against state and returns the next state.
func (m *Machine) Run(ctx context.Context, state domain.State, action domain.Action) (domain.State, error) {
	next, _, err := m.resolver.Resolve(ctx, state, action)
	return next, err
}

// Resolve is like Run but also returns the name of the handler that ran.
func (m *Machine) Resolve(ctx context.Context, state domain.State, action domain.Action) (domain.State, string, error) {
	return m.resolver.Resolve(ctx, state, action)
}

// Call invokes the named handler directly. Values outside its declared types
// fail with *domain.TypeMismatchError before the handler runs.
func (m *Machine) Call(ctx context.Context, name string, state domain.State, action domain.Action) (domain.State, error) {
	return m.resolver.Invoke(ctx, name, state, action)
}

// TransitionMap returns a read-only projection of the transition index.
func (m *Machine) TransitionMap() []index.Entry {
	return m.index.Entries()
}

// Graph exports the machine as a generic node/edge description.
func (m *Machine) Graph() graph.Description {
	return graph.Export(m.name, m.index, m.extra...)
}

// Handlers returns the declared handler names in declaration order.
func (m *Machine) Handlers() []string {
	return slices.Clone(m.handlers)
}

// StateTypes returns every state type the machine knows of, including
// declared states with no edges.
func (m *Machine) StateTypes() []reflect.Type {
	out := m.index.StateTypes()
	for _, t := range m.extra {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// Types returns every state and action type of the machine, states first.
func (m *Machine) Types() []reflect.Type {
	out := m.StateTypes()
	for _, t := range m.index.ActionTypes() {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// GenerateDiagram exports the graph of m and hands it to r.
func GenerateDiagram(m *Machine, r graph.Renderer, w io.Writer) error {
	if m == nil || r == nil {
		return errors.New("machine and renderer are required")
	}
	if err := r.Render(w, m.Graph()); err != nil {
		return fmt.Errorf("failed to render %s: %w", m.name, err)
	}
	return nil
}
