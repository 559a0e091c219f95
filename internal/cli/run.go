package cli

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/typomata"
	"github.com/aretw0/typomata/pkg/codec"
	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/types"
)

// Step is one applied action of a script.
type Step struct {
	Index   int          `json:"index" yaml:"index"`
	From    string       `json:"from" yaml:"from"`
	Action  string       `json:"action" yaml:"action"`
	Handler string       `json:"handler,omitempty" yaml:"handler,omitempty"`
	To      string       `json:"to,omitempty" yaml:"to,omitempty"`
	State   domain.State `json:"-" yaml:"-"`
	Err     error        `json:"-" yaml:"-"`
}

// RunScript decodes the script against the machine's types and applies every
// action in order. It stops at the first failing step, which is reported to
// onStep before the error is returned.
func RunScript(ctx context.Context, m *typomata.Machine, s *Script, onStep func(Step)) (domain.State, error) {
	reg, err := codec.NewRegistry(m.Types()...)
	if err != nil {
		return nil, err
	}

	state, err := reg.Decode(s.Initial)
	if err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}

	for i, env := range s.Actions {
		step := Step{Index: i + 1, From: typeName(state), Action: env.Type}

		action, err := reg.Decode(env)
		if err != nil {
			step.Err = fmt.Errorf("action %d: %w", step.Index, err)
			notify(onStep, step)
			return state, step.Err
		}

		next, handler, err := m.Resolve(ctx, state, action)
		if err != nil {
			step.Err = fmt.Errorf("step %d: %w", step.Index, err)
			notify(onStep, step)
			return state, step.Err
		}

		step.Handler = handler
		step.To = typeName(next)
		step.State = next
		notify(onStep, step)
		state = next
	}

	return state, nil
}

func notify(fn func(Step), s Step) {
	if fn != nil {
		fn(s)
	}
}

func typeName(v any) string {
	return types.Name(reflect.TypeOf(v))
}
