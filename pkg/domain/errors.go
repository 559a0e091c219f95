package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownHandler is returned when a handler is invoked by a name the machine does not declare.
var ErrUnknownHandler = errors.New("unknown handler")

// ErrNilValue is returned when a nil state or action is dispatched.
var ErrNilValue = errors.New("state and action must not be nil")

// ErrInvalidDeclaration is returned for structurally broken declarations (empty or repeated names, missing functions).
var ErrInvalidDeclaration = errors.New("invalid declaration")

// ErrUnknownType is returned when a type name cannot be mapped to a registered Go type.
var ErrUnknownType = errors.New("unknown type")

// Declaration positions reported by UnsupportedAnnotationError.
const (
	PositionState  = "state"
	PositionAction = "action"
	PositionReturn = "return"
)

// Error kinds, used for metrics labels and wire responses.
const (
	KindAmbiguity      = "ambiguity"
	KindUnsupported    = "unsupported_annotation"
	KindNoTransition   = "no_transition"
	KindTypeMismatch   = "type_mismatch"
	KindReturnContract = "return_contract"
	KindUnknownHandler = "unknown_handler"
	KindNilValue       = "nil_value"
	KindInvalid        = "invalid_declaration"
	KindHandler        = "handler"
)

// DefinitionAmbiguityError reports two handlers claiming the same concrete (state, action) pair.
type DefinitionAmbiguityError struct {
	State       string
	Action      string
	Existing    string
	Conflicting string
}

func (e *DefinitionAmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous transition (%s, %s): claimed by both %s and %s",
		e.State, e.Action, e.Existing, e.Conflicting)
}

// UnsupportedAnnotationError reports a declared type that is neither a concrete
// type nor a flat union of concrete types.
type UnsupportedAnnotationError struct {
	Handler  string // Empty for standalone state declarations
	Position string // One of PositionState, PositionAction, PositionReturn
	Type     string
	Reason   string
}

func (e *UnsupportedAnnotationError) Error() string {
	var sb strings.Builder
	sb.WriteString("unsupported annotation")
	if e.Handler != "" {
		fmt.Fprintf(&sb, " for %s", e.Handler)
	}
	if e.Position != "" {
		fmt.Fprintf(&sb, " (%s)", e.Position)
	}
	fmt.Fprintf(&sb, ": %s: %s", e.Type, e.Reason)
	return sb.String()
}

// NoTransitionError reports a (state, action) pair with no registered edge.
// Expected lists the state types that do have an edge for the action.
type NoTransitionError struct {
	State    string
	Action   string
	Expected []string
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("invalid state %s for action %s, expected one of %s",
		e.State, e.Action, formatList(e.Expected))
}

// TypeMismatchError reports a direct handler call with a value outside the
// handler's declared types. Param is "state" or "action".
type TypeMismatchError struct {
	Handler  string
	Param    string
	Got      string
	Expected []string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("invalid %s %s for %s, expected one of %s",
		e.Param, e.Got, e.Handler, formatList(e.Expected))
}

// ReturnContractViolationError reports a handler returning a type outside its declared result set.
// Any side effects of the handler have already happened.
type ReturnContractViolationError struct {
	Handler  string
	Got      string
	Expected []string
}

func (e *ReturnContractViolationError) Error() string {
	return fmt.Sprintf("handler %s returned %s, declared one of %s",
		e.Handler, e.Got, formatList(e.Expected))
}

func formatList(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}

// IsAmbiguity reports whether err is a DefinitionAmbiguityError.
func IsAmbiguity(err error) bool {
	var e *DefinitionAmbiguityError
	return errors.As(err, &e)
}

// IsUnsupportedAnnotation reports whether err is an UnsupportedAnnotationError.
func IsUnsupportedAnnotation(err error) bool {
	var e *UnsupportedAnnotationError
	return errors.As(err, &e)
}

// IsNoTransition reports whether err is a NoTransitionError.
func IsNoTransition(err error) bool {
	var e *NoTransitionError
	return errors.As(err, &e)
}

// IsTypeMismatch reports whether err is a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	var e *TypeMismatchError
	return errors.As(err, &e)
}

// IsReturnContractViolation reports whether err is a ReturnContractViolationError.
func IsReturnContractViolation(err error) bool {
	var e *ReturnContractViolationError
	return errors.As(err, &e)
}

// Kind classifies err into one of the Kind* constants.
// Errors returned by handler bodies are classified as KindHandler.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsAmbiguity(err):
		return KindAmbiguity
	case IsUnsupportedAnnotation(err):
		return KindUnsupported
	case IsNoTransition(err):
		return KindNoTransition
	case IsTypeMismatch(err):
		return KindTypeMismatch
	case IsReturnContractViolation(err):
		return KindReturnContract
	case errors.Is(err, ErrUnknownHandler):
		return KindUnknownHandler
	case errors.Is(err, ErrNilValue):
		return KindNilValue
	case errors.Is(err, ErrInvalidDeclaration):
		return KindInvalid
	default:
		return KindHandler
	}
}
