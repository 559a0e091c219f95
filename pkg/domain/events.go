package domain

import (
	"context"
	"time"
)

// TransitionEvent describes one successful handler invocation.
type TransitionEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Machine   string        `json:"machine"`
	Handler   string        `json:"handler"`
	From      string        `json:"from"`
	Action    string        `json:"action"`
	To        string        `json:"to"`
	Direct    bool          `json:"direct,omitempty"` // Invoked by name instead of dispatch
	Duration  time.Duration `json:"duration"`
}

// ErrorEvent describes a failed resolution or invocation.
type ErrorEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Machine   string    `json:"machine"`
	Handler   string    `json:"handler,omitempty"` // Empty when no handler was selected
	State     string    `json:"state"`
	Action    string    `json:"action"`
	Kind      string    `json:"kind"`
	Err       error     `json:"-"`
}

// Hooks defines callbacks for machine observability.
// Nil callbacks are skipped.
type Hooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnError      func(context.Context, *ErrorEvent)
}
