/*
Package domain contains the core vocabulary shared by every typomata package.

It defines what a state, an action and a handler are, the lifecycle hooks the
resolver reports to, and the error kinds raised while building or running a
machine. This package is kept pure and free of I/O, rendering or persistence
concerns.

# Key Entities

  - State / Action: opaque Go values; the concrete Go type is the identity.
  - HandlerFunc: maps a (state, action) pair to the next state.
  - Hooks: observability callbacks fired after each resolution.
  - Errors: DefinitionAmbiguityError, UnsupportedAnnotationError,
    NoTransitionError, TypeMismatchError and ReturnContractViolationError.
*/
package domain
