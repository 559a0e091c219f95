// Package textcase is a small machine that counts, then shouts.
package textcase

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/typomata"
	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/types"
)

// Name is the registered machine name.
const Name = "textcase"

// StateA holds a counter.
type StateA struct {
	Data int `json:"data"`
}

// StateB holds text.
type StateB struct {
	Data string `json:"data"`
}

// Increment bumps the counter.
type Increment struct{}

// ToUpper converts to upper-case text.
type ToUpper struct{}

// Reset brings the machine back to StateA{0}.
type Reset struct{}

// New builds the textcase machine.
func New(opts ...typomata.Option) (*typomata.Machine, error) {
	b := typomata.New(Name, opts...)

	b.Transition("increment_or_reset",
		types.Of[StateA](),
		types.Union(types.Of[Increment](), types.Of[Reset]()),
		types.Of[StateA](),
		typomata.Typed(IncrementOrReset),
	)

	b.Transition("to_upper",
		types.Union(types.Of[StateA](), types.Of[StateB]()),
		types.Of[ToUpper](),
		types.Of[StateB](),
		typomata.Typed(Upper),
	)

	b.Func("reset_from_b", ResetFromB)

	return b.Build()
}

// IncrementOrReset counts up on Increment and goes back to zero on Reset.
func IncrementOrReset(_ context.Context, s StateA, a domain.Action) (domain.State, error) {
	switch a.(type) {
	case Increment:
		return StateA{Data: s.Data + 1}, nil
	case Reset:
		return StateA{Data: 0}, nil
	default:
		return nil, fmt.Errorf("invalid action %T for state %T", a, s)
	}
}

// Upper repeats "A" once per count, or upper-cases existing text.
func Upper(_ context.Context, s domain.State, _ ToUpper) (domain.State, error) {
	switch v := s.(type) {
	case StateA:
		return StateB{Data: strings.Repeat("A", max(v.Data, 0))}, nil
	case StateB:
		return StateB{Data: strings.ToUpper(v.Data)}, nil
	default:
		return nil, fmt.Errorf("invalid state %T for action ToUpper", s)
	}
}

// ResetFromB leaves the text state.
func ResetFromB(StateB, Reset) StateA {
	return StateA{Data: 0}
}
