/*
Package typomata builds finite-state machines from the declared types of their handlers.

A handler declared over a state type, an action type and a result type is an
edge of the machine. Unions of types expand into one edge per concrete
(state, action) pair. The transition table is never written by hand: it is
harvested once when the machine is built, checked for ambiguity, and then
used to dispatch live values by their concrete Go type.

# Concept

States and actions are ordinary Go values. Their identity is their concrete
type, so Idle{Stock: 1} and &Idle{Stock: 1} are different variants. The
builder rejects anything that cannot identify a variant: interfaces,
containers, functions and unnamed types.

# Key Features

  - Declaration by shape: the (state, action) -> result table is derived from the handlers.
  - Ambiguity detection: two handlers claiming the same concrete pair fail the build.
  - Return contracts: a handler returning an undeclared state type is reported.
  - Graph export: any renderer (Mermaid, Graphviz) can draw the resolved machine.

# Usage

	type Idle struct{ Stock int }
	type Brewing struct{ Stock int }
	type InsertCoin struct{}

	m, err := typomata.On(typomata.New("coffee"), "start_brewing",
		func(_ context.Context, s Idle, _ InsertCoin) (Brewing, error) {
			return Brewing{Stock: s.Stock}, nil
		}).Build()
	if err != nil {
		log.Fatal(err)
	}

	next, err := m.Run(ctx, Idle{Stock: 1}, InsertCoin{})

Handlers over unions are declared with Transition and the descriptors from
package types:

	b.Transition("refill",
		types.Union(types.Of[Idle](), types.Of[OutOfCoffee]()),
		types.Of[Refill](),
		types.Of[Idle](),
		typomata.Typed(refill))

# Diagrams

GenerateDiagram exports the graph and hands it to a renderer:

	err := typomata.GenerateDiagram(m, mermaid.Renderer{}, os.Stdout)
*/
package typomata
