// Package coffee is the coffee machine used by the CLI, servers and tests.
package coffee

import (
	"context"

	"github.com/aretw0/typomata"
	"github.com/aretw0/typomata/pkg/domain"
	"github.com/aretw0/typomata/pkg/types"
)

// Name is the registered machine name.
const Name = "coffee"

// Idle waits for a coin.
type Idle struct {
	Stock int `json:"stock"`
}

// Brewing is making one cup.
type Brewing struct {
	Stock int `json:"stock"`
}

// OutOfCoffee needs a refill before it can brew again.
type OutOfCoffee struct{}

// InsertCoin starts a brew.
type InsertCoin struct{}

// BrewCoffee finishes the current brew.
type BrewCoffee struct{}

// Refill adds stock.
type Refill struct {
	Amount int `json:"amount"`
}

// New builds the coffee machine.
func New(opts ...typomata.Option) (*typomata.Machine, error) {
	b := typomata.New(Name, opts...)

	typomata.On(b, "start_brewing", StartBrewing)

	b.Transition("finish_brewing",
		types.Of[Brewing](),
		types.Of[BrewCoffee](),
		types.Union(types.Of[Idle](), types.Of[OutOfCoffee]()),
		typomata.Typed(FinishBrewing),
	)

	b.Transition("refill",
		types.Union(types.Of[Idle](), types.Of[OutOfCoffee]()),
		types.Of[Refill](),
		types.Of[Idle](),
		typomata.Typed(Restock),
		typomata.WithLabel("amount added to stock"),
	)

	return b.Build()
}

// StartBrewing keeps the stock unchanged.
func StartBrewing(_ context.Context, s Idle, _ InsertCoin) (Brewing, error) {
	return Brewing{Stock: s.Stock}, nil
}

// FinishBrewing consumes one unit of stock.
func FinishBrewing(_ context.Context, s Brewing, _ BrewCoffee) (domain.State, error) {
	if left := s.Stock - 1; left > 0 {
		return Idle{Stock: left}, nil
	}
	return OutOfCoffee{}, nil
}

// Restock adds amount to the stock of an idle machine, or resets an empty one.
func Restock(_ context.Context, s domain.State, a Refill) (domain.State, error) {
	if idle, ok := s.(Idle); ok {
		return Idle{Stock: idle.Stock + a.Amount}, nil
	}
	return Idle{Stock: a.Amount}, nil
}
