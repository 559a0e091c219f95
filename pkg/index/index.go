package index

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/types"
)

// Declaration is one handler as harvested from its declared shapes.
type Declaration struct {
	Name   string
	State  types.Descriptor
	Action types.Descriptor
	Return types.Descriptor
	Label  string // Optional edge metadata for diagrams
}

// Key identifies an edge by the concrete types of a live (state, action) pair.
type Key struct {
	State  reflect.Type
	Action reflect.Type
}

// Edge is one concrete (state, action) pair of a handler and the state types it may return.
type Edge struct {
	Handler string
	State   reflect.Type
	Action  reflect.Type
	Results []reflect.Type
	Label   string
}

// Entry is a printable row of the transition map.
type Entry struct {
	State   string   `json:"state" yaml:"state"`
	Action  string   `json:"action" yaml:"action"`
	Handler string   `json:"handler" yaml:"handler"`
	Results []string `json:"results" yaml:"results"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// Index maps concrete (state, action) pairs to their unique edge.
// It is immutable once built and safe for concurrent reads.
type Index struct {
	edges    map[Key]*Edge
	order    []Key
	byAction map[reflect.Type][]reflect.Type
}

// Build validates every declaration and expands it into concrete edges.
//
// A pair claimed by two different handlers is a *domain.DefinitionAmbiguityError.
// A pair repeated by the same handler extends that edge's result set.
func Build(decls []Declaration) (*Index, error) {
	idx := &Index{
		edges:    make(map[Key]*Edge),
		byAction: make(map[reflect.Type][]reflect.Type),
	}

	seen := make(map[string]bool, len(decls))
	for _, d := range decls {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: handler name must not be empty", domain.ErrInvalidDeclaration)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: handler %q declared twice", domain.ErrInvalidDeclaration, d.Name)
		}
		seen[d.Name] = true

		if err := validate(d); err != nil {
			return nil, err
		}

		results := d.Return.Expand()
		for _, s := range d.State.Expand() {
			for _, a := range d.Action.Expand() {
				if err := idx.add(d, Key{State: s, Action: a}, results); err != nil {
					return nil, err
				}
			}
		}
	}

	return idx, nil
}

func validate(d Declaration) error {
	positions := []struct {
		name string
		desc types.Descriptor
	}{
		{domain.PositionState, d.State},
		{domain.PositionAction, d.Action},
		{domain.PositionReturn, d.Return},
	}

	for _, p := range positions {
		err := p.desc.Validate()
		if err == nil {
			continue
		}
		var ua *domain.UnsupportedAnnotationError
		if errors.As(err, &ua) {
			ua.Handler = d.Name
			ua.Position = p.name
		}
		return err
	}
	return nil
}

func (idx *Index) add(d Declaration, key Key, results []reflect.Type) error {
	if existing, ok := idx.edges[key]; ok {
		if existing.Handler != d.Name {
			return &domain.DefinitionAmbiguityError{
				State:       types.Name(key.State),
				Action:      types.Name(key.Action),
				Existing:    existing.Handler,
				Conflicting: d.Name,
			}
		}
		for _, r := range results {
			if !slices.Contains(existing.Results, r) {
				existing.Results = append(existing.Results, r)
			}
		}
		return nil
	}

	idx.edges[key] = &Edge{
		Handler: d.Name,
		State:   key.State,
		Action:  key.Action,
		Results: slices.Clone(results),
		Label:   d.Label,
	}
	idx.order = append(idx.order, key)
	idx.byAction[key.Action] = append(idx.byAction[key.Action], key.State)
	return nil
}

// Lookup returns a copy of the edge registered for the pair.
func (idx *Index) Lookup(state, action reflect.Type) (Edge, bool) {
	e, ok := idx.edges[Key{State: state, Action: action}]
	if !ok {
		return Edge{}, false
	}
	return e.clone(), true
}

// StatesFor returns the state types with an edge for the action type, in declaration order.
func (idx *Index) StatesFor(action reflect.Type) []reflect.Type {
	return slices.Clone(idx.byAction[action])
}

// Edges returns every edge in declaration order.
func (idx *Index) Edges() []Edge {
	out := make([]Edge, 0, len(idx.order))
	for _, k := range idx.order {
		out = append(out, idx.edges[k].clone())
	}
	return out
}

// Entries returns the transition map as printable rows, in declaration order.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, 0, len(idx.order))
	for _, k := range idx.order {
		e := idx.edges[k]
		out = append(out, Entry{
			State:   types.Name(e.State),
			Action:  types.Name(e.Action),
			Handler: e.Handler,
			Results: types.Names(e.Results),
			Label:   e.Label,
		})
	}
	return out
}

// Len returns the number of concrete edges.
func (idx *Index) Len() int {
	return len(idx.order)
}

// StateTypes returns the distinct state types mentioned by any edge,
// as a source or a result, in first-seen order.
func (idx *Index) StateTypes() []reflect.Type {
	var out []reflect.Type
	add := func(t reflect.Type) {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	for _, k := range idx.order {
		e := idx.edges[k]
		add(e.State)
		for _, r := range e.Results {
			add(r)
		}
	}
	return out
}

// ActionTypes returns the distinct action types in first-seen order.
func (idx *Index) ActionTypes() []reflect.Type {
	var out []reflect.Type
	for _, k := range idx.order {
		if !slices.Contains(out, k.Action) {
			out = append(out, k.Action)
		}
	}
	return out
}

func (e *Edge) clone() Edge {
	c := *e
	c.Results = slices.Clone(e.Results)
	return c
}
