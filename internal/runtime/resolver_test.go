package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/index"
	"github.com/aretw0/typomata/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Idle struct{ Stock int }
type Brewing struct{ Stock int }
type OutOfCoffee struct{}

type InsertCoin struct{}
type BrewCoffee struct{}
type Refill struct{ Amount int }

var errGrinder = errors.New("grinder jammed")

func coffeeHandlers() []Handler {
	return []Handler{
		{
			Name:    "start_brewing",
			States:  types.Of[Idle](),
			Actions: types.Of[InsertCoin](),
			Returns: types.Of[Brewing](),
			Fn: func(_ context.Context, s domain.State, _ domain.Action) (domain.State, error) {
				return Brewing{Stock: s.(Idle).Stock}, nil
			},
		},
		{
			Name:    "finish_brewing",
			States:  types.Of[Brewing](),
			Actions: types.Of[BrewCoffee](),
			Returns: types.Union(types.Of[Idle](), types.Of[OutOfCoffee]()),
			Fn: func(_ context.Context, s domain.State, _ domain.Action) (domain.State, error) {
				if left := s.(Brewing).Stock - 1; left > 0 {
					return Idle{Stock: left}, nil
				}
				return OutOfCoffee{}, nil
			},
		},
		{
			Name:    "refill",
			States:  types.Union(types.Of[Idle](), types.Of[OutOfCoffee]()),
			Actions: types.Of[Refill](),
			Returns: types.Of[Idle](),
			Fn: func(_ context.Context, s domain.State, a domain.Action) (domain.State, error) {
				amount := a.(Refill).Amount
				if idle, ok := s.(Idle); ok {
					return Idle{Stock: idle.Stock + amount}, nil
				}
				return Idle{Stock: amount}, nil
			},
		},
	}
}

func newResolver(t *testing.T, handlers []Handler, opts ...ResolverOption) *Resolver {
	t.Helper()

	decls := make([]index.Declaration, len(handlers))
	for i, h := range handlers {
		decls[i] = index.Declaration{Name: h.Name, State: h.States, Action: h.Actions, Return: h.Returns}
	}
	idx, err := index.Build(decls)
	require.NoError(t, err)

	r, err := NewResolver(idx, handlers, opts...)
	require.NoError(t, err)
	return r
}

func TestResolve_Coffee(t *testing.T) {
	r := newResolver(t, coffeeHandlers())
	ctx := context.Background()

	next, handler, err := r.Resolve(ctx, Idle{Stock: 1}, InsertCoin{})
	require.NoError(t, err)
	assert.Equal(t, "start_brewing", handler)
	assert.Equal(t, Brewing{Stock: 1}, next)

	next, handler, err = r.Resolve(ctx, next, BrewCoffee{})
	require.NoError(t, err)
	assert.Equal(t, "finish_brewing", handler)
	assert.Equal(t, OutOfCoffee{}, next)

	next, _, err = r.Resolve(ctx, next, Refill{Amount: 3})
	require.NoError(t, err)
	assert.Equal(t, Idle{Stock: 3}, next)

	next, _, err = r.Resolve(ctx, next, Refill{Amount: 2})
	require.NoError(t, err)
	assert.Equal(t, Idle{Stock: 5}, next)
}

func TestResolve_NoTransition(t *testing.T) {
	r := newResolver(t, coffeeHandlers())

	_, handler, err := r.Resolve(context.Background(), OutOfCoffee{}, InsertCoin{})
	assert.Empty(t, handler)

	var nt *domain.NoTransitionError
	require.ErrorAs(t, err, &nt)
	assert.Equal(t, "OutOfCoffee", nt.State)
	assert.Equal(t, "InsertCoin", nt.Action)
	assert.Equal(t, []string{"Idle"}, nt.Expected)
}

func TestResolve_UnknownActionListsNothing(t *testing.T) {
	r := newResolver(t, coffeeHandlers())

	_, _, err := r.Resolve(context.Background(), Idle{}, struct{}{})

	var nt *domain.NoTransitionError
	require.ErrorAs(t, err, &nt)
	assert.Empty(t, nt.Expected)
}

func TestResolve_PointerIsDistinctType(t *testing.T) {
	r := newResolver(t, coffeeHandlers())

	_, _, err := r.Resolve(context.Background(), &Idle{Stock: 1}, InsertCoin{})
	assert.True(t, domain.IsNoTransition(err))
}

func TestResolve_NilValues(t *testing.T) {
	r := newResolver(t, coffeeHandlers())

	_, _, err := r.Resolve(context.Background(), nil, InsertCoin{})
	assert.ErrorIs(t, err, domain.ErrNilValue)

	_, _, err = r.Resolve(context.Background(), Idle{}, nil)
	assert.ErrorIs(t, err, domain.ErrNilValue)
}

func TestResolve_HandlerError(t *testing.T) {
	handlers := coffeeHandlers()
	handlers[0].Fn = func(context.Context, domain.State, domain.Action) (domain.State, error) {
		return nil, errGrinder
	}
	r := newResolver(t, handlers)

	_, _, err := r.Resolve(context.Background(), Idle{Stock: 1}, InsertCoin{})
	require.ErrorIs(t, err, errGrinder)
	assert.Contains(t, err.Error(), "handler start_brewing")
	assert.Equal(t, domain.KindHandler, domain.Kind(err))
}

func TestResolve_ReturnContractViolation(t *testing.T) {
	calls := 0
	handlers := coffeeHandlers()
	handlers[1].Fn = func(context.Context, domain.State, domain.Action) (domain.State, error) {
		calls++
		return Brewing{}, nil
	}
	r := newResolver(t, handlers)

	_, _, err := r.Resolve(context.Background(), Brewing{Stock: 2}, BrewCoffee{})

	var rc *domain.ReturnContractViolationError
	require.ErrorAs(t, err, &rc)
	assert.Equal(t, "finish_brewing", rc.Handler)
	assert.Equal(t, "Brewing", rc.Got)
	assert.Equal(t, []string{"Idle", "OutOfCoffee"}, rc.Expected)
	assert.Equal(t, 1, calls, "side effects are not rolled back")
}

func TestResolve_NilReturnViolatesContract(t *testing.T) {
	handlers := coffeeHandlers()
	handlers[0].Fn = func(context.Context, domain.State, domain.Action) (domain.State, error) {
		return nil, nil
	}
	r := newResolver(t, handlers)

	_, _, err := r.Resolve(context.Background(), Idle{}, InsertCoin{})
	assert.True(t, domain.IsReturnContractViolation(err))
}

func TestResolve_Idempotent(t *testing.T) {
	r := newResolver(t, coffeeHandlers())
	ctx := context.Background()

	first, h1, err1 := r.Resolve(ctx, Brewing{Stock: 4}, BrewCoffee{})
	second, h2, err2 := r.Resolve(ctx, Brewing{Stock: 4}, BrewCoffee{})

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.Equal(t, h1, h2)
}

func TestResolve_Concurrent(t *testing.T) {
	r := newResolver(t, coffeeHandlers())

	var wg sync.WaitGroup
	for i := 1; i <= 32; i++ {
		wg.Add(1)
		go func(stock int) {
			defer wg.Done()
			next, _, err := r.Resolve(context.Background(), Idle{Stock: stock}, InsertCoin{})
			assert.NoError(t, err)
			assert.Equal(t, Brewing{Stock: stock}, next)
		}(i)
	}
	wg.Wait()
}

func TestInvoke_TypeMismatch(t *testing.T) {
	ran := false
	handlers := coffeeHandlers()
	inner := handlers[0].Fn
	handlers[0].Fn = func(ctx context.Context, s domain.State, a domain.Action) (domain.State, error) {
		ran = true
		return inner(ctx, s, a)
	}
	r := newResolver(t, handlers)

	_, err := r.Invoke(context.Background(), "start_brewing", OutOfCoffee{}, InsertCoin{})

	var tm *domain.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "start_brewing", tm.Handler)
	assert.Equal(t, "state", tm.Param)
	assert.Equal(t, "OutOfCoffee", tm.Got)
	assert.Equal(t, []string{"Idle"}, tm.Expected)
	assert.Equal(t, "invalid state OutOfCoffee for start_brewing, expected one of [Idle]", err.Error())
	assert.False(t, ran, "handler body must not run")
}

func TestInvoke_ActionMismatch(t *testing.T) {
	r := newResolver(t, coffeeHandlers())

	_, err := r.Invoke(context.Background(), "refill", Idle{}, InsertCoin{})

	var tm *domain.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "action", tm.Param)
	assert.Equal(t, []string{"Refill"}, tm.Expected)
}

func TestInvoke_Success(t *testing.T) {
	r := newResolver(t, coffeeHandlers())

	next, err := r.Invoke(context.Background(), "refill", OutOfCoffee{}, Refill{Amount: 7})
	require.NoError(t, err)
	assert.Equal(t, Idle{Stock: 7}, next)
}

func TestInvoke_UnknownHandler(t *testing.T) {
	r := newResolver(t, coffeeHandlers())

	_, err := r.Invoke(context.Background(), "descale", Idle{}, Refill{})
	assert.ErrorIs(t, err, domain.ErrUnknownHandler)
}

func TestInvoke_ChecksReturnContract(t *testing.T) {
	handlers := coffeeHandlers()
	handlers[2].Fn = func(context.Context, domain.State, domain.Action) (domain.State, error) {
		return OutOfCoffee{}, nil
	}
	r := newResolver(t, handlers)

	_, err := r.Invoke(context.Background(), "refill", Idle{}, Refill{Amount: 1})
	assert.True(t, domain.IsReturnContractViolation(err))
}

func TestHooks(t *testing.T) {
	var transitions []*domain.TransitionEvent
	var failures []*domain.ErrorEvent

	r := newResolver(t, coffeeHandlers(),
		WithMachineName("coffee"),
		WithHooks(domain.Hooks{
			OnTransition: func(_ context.Context, e *domain.TransitionEvent) { transitions = append(transitions, e) },
			OnError:      func(_ context.Context, e *domain.ErrorEvent) { failures = append(failures, e) },
		}),
	)
	ctx := context.Background()

	_, _, err := r.Resolve(ctx, Idle{Stock: 2}, InsertCoin{})
	require.NoError(t, err)
	_, err = r.Invoke(ctx, "finish_brewing", Brewing{Stock: 2}, BrewCoffee{})
	require.NoError(t, err)
	_, _, err = r.Resolve(ctx, OutOfCoffee{}, InsertCoin{})
	require.Error(t, err)

	require.Len(t, transitions, 2)
	assert.Equal(t, "coffee", transitions[0].Machine)
	assert.Equal(t, "Idle", transitions[0].From)
	assert.Equal(t, "Brewing", transitions[0].To)
	assert.False(t, transitions[0].Direct)
	assert.True(t, transitions[1].Direct)
	assert.Equal(t, "Idle", transitions[1].To)

	require.Len(t, failures, 1)
	assert.Equal(t, domain.KindNoTransition, failures[0].Kind)
	assert.Equal(t, "OutOfCoffee", failures[0].State)
	assert.Empty(t, failures[0].Handler)
}

func TestNewResolver_MissingHandler(t *testing.T) {
	handlers := coffeeHandlers()
	idx, err := index.Build([]index.Declaration{
		{Name: "start_brewing", State: handlers[0].States, Action: handlers[0].Actions, Return: handlers[0].Returns},
	})
	require.NoError(t, err)

	_, err = NewResolver(idx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDeclaration)

	handlers[0].Fn = nil
	_, err = NewResolver(idx, handlers[:1])
	assert.ErrorIs(t, err, domain.ErrInvalidDeclaration)
}
