package domain

import "context"

// State is a value representing one point in a machine's state space.
// The core never inspects it beyond its concrete Go type.
type State = any

// Action is a value representing an external event driving a transition.
type Action = any

// HandlerFunc maps a (state, action) pair to the next state.
// The context is passed through untouched; any side effects belong to the handler.
type HandlerFunc func(ctx context.Context, state State, action Action) (State, error)
