/*
Package types turns declared Go types into descriptors the transition index can expand.

A descriptor is either one concrete type or a flat union of concrete types:

	types.Of[Idle]()
	types.Union(types.Of[Idle](), types.Of[OutOfCoffee]())

Interfaces (including any), containers, unnamed types and nested unions are
rejected by Validate with a *domain.UnsupportedAnnotationError.
*/
package types
