package typomata

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/types"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Func declares a handler from the signature of a plain Go function.
//
// Accepted shapes are func([ctx,] S, A) R and func([ctx,] S, A) (R, error).
// The declared state, action and return types are the parameter and result
// types; interface types are reported as unsupported annotations by Build.
func (b *Builder) Func(name string, fn any, opts ...TransitionOption) *Builder {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		b.errs = append(b.errs, fmt.Errorf("%w: handler %q is not a function", domain.ErrInvalidDeclaration, name))
		return b
	}

	ft := v.Type()
	shift := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		shift = 1
	}
	if ft.IsVariadic() || ft.NumIn()-shift != 2 {
		b.errs = append(b.errs, fmt.Errorf("%w: handler %q must accept ([ctx,] state, action), got %s",
			domain.ErrInvalidDeclaration, name, ft))
		return b
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		b.errs = append(b.errs, fmt.Errorf("%w: handler %q must return state or (state, error), got %s",
			domain.ErrInvalidDeclaration, name, ft))
		return b
	}

	call := func(ctx context.Context, s domain.State, a domain.Action) (domain.State, error) {
		args := make([]reflect.Value, 0, 3)
		if shift == 1 {
			if ctx == nil {
				ctx = context.Background()
			}
			args = append(args, reflect.ValueOf(ctx))
		}
		args = append(args, reflect.ValueOf(s), reflect.ValueOf(a))

		out := v.Call(args)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}

	return b.Transition(name,
		types.TypeOf(ft.In(shift)),
		types.TypeOf(ft.In(shift+1)),
		types.TypeOf(ft.Out(0)),
		call, opts...)
}
