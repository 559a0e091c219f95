package types

import (
	"reflect"
	"slices"
	"strings"

	"github.com/aretw0/typomata/pkg/domain"
)

// Descriptor is the normalized form of a declared type: a single concrete Go
// type or a flat union of concrete Go types.
// Descriptors are immutable; the zero value is an empty, invalid descriptor.
type Descriptor struct {
	members []reflect.Type
	union   bool

	// Recorded at construction, reported by Validate.
	problem     string
	problemType string
}

// Of returns the descriptor of the Go type T.
func Of[T any]() Descriptor {
	return TypeOf(reflect.TypeFor[T]())
}

// TypeOf returns the descriptor of an already reflected type.
func TypeOf(t reflect.Type) Descriptor {
	if reason, ok := concrete(t); !ok {
		return Descriptor{problem: reason, problemType: Name(t)}
	}
	return Descriptor{members: []reflect.Type{t}}
}

// Union returns a descriptor covering every member. Members must be single
// concrete descriptors; repeated members are kept once, in first-seen order.
func Union(members ...Descriptor) Descriptor {
	u := Descriptor{union: true}
	if len(members) == 0 {
		u.problem = "empty union"
		u.problemType = "Union[]"
		return u
	}

	for _, m := range members {
		switch {
		case m.problem != "":
			u.problem, u.problemType = m.problem, m.problemType
			return u
		case m.union:
			u.problem = "unions must not nest"
			u.problemType = m.String()
			return u
		case len(m.members) == 0:
			u.problem = "empty descriptor"
			u.problemType = "<empty>"
			return u
		}
		for _, t := range m.members {
			if !slices.Contains(u.members, t) {
				u.members = append(u.members, t)
			}
		}
	}
	return u
}

// Validate reports whether the descriptor is a concrete type or a flat union
// of concrete types. Each call returns a fresh *domain.UnsupportedAnnotationError
// so callers may fill in Handler and Position.
func (d Descriptor) Validate() error {
	if d.problem != "" {
		return &domain.UnsupportedAnnotationError{Type: d.problemType, Reason: d.problem}
	}
	if len(d.members) == 0 {
		return &domain.UnsupportedAnnotationError{Type: "<empty>", Reason: "empty descriptor"}
	}
	return nil
}

// Expand returns the ordered concrete member types.
// A non-union descriptor expands to a single element.
func (d Descriptor) Expand() []reflect.Type {
	return slices.Clone(d.members)
}

// Contains reports whether t is exactly one of the member types.
func (d Descriptor) Contains(t reflect.Type) bool {
	return t != nil && slices.Contains(d.members, t)
}

// Matches reports whether the runtime type of v is a member.
// Only exact type identity counts; there is no subtype reasoning.
func (d Descriptor) Matches(v any) bool {
	return d.Contains(reflect.TypeOf(v))
}

// IsUnion reports whether the descriptor was declared as a union.
func (d Descriptor) IsUnion() bool {
	return d.union
}

// Names returns the human-readable names of the members.
func (d Descriptor) Names() []string {
	return Names(d.members)
}

// String renders the descriptor as "A" or "A|B".
func (d Descriptor) String() string {
	if d.problem != "" && len(d.members) == 0 {
		return d.problemType
	}
	return strings.Join(d.Names(), "|")
}

// Name returns the short name of t: "Idle" for a named type, "*Idle" for a
// pointer to one. Unnamed types fall back to their Go syntax.
func Name(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		return "*" + Name(t.Elem())
	}
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}

// Names maps Name over ts.
func Names(ts []reflect.Type) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = Name(t)
	}
	return names
}

// concrete reports whether t can identify a state or action variant.
func concrete(t reflect.Type) (string, bool) {
	if t == nil {
		return "nil type", false
	}

	switch t.Kind() {
	case reflect.Interface:
		return "interface types are not concrete", false
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return "container types are not supported", false
	case reflect.Func, reflect.UnsafePointer, reflect.Invalid:
		return "function and pointer-like types are not supported", false
	case reflect.Pointer:
		elem := t.Elem()
		if elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface || elem.Name() == "" {
			return "pointers must target a named concrete type", false
		}
		return concrete(elem)
	}

	if t.Name() == "" {
		return "unnamed types are not supported", false
	}
	return "", true
}
