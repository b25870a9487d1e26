package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrTargetRequired  = sterrors.New("stateflow: target is required")
	ErrWatcherRequired = sterrors.New("stateflow: watcher function is required")
	ErrPathRequired    = sterrors.New("stateflow: property path is required")
	ErrBinderRequired  = sterrors.New("stateflow: binder is required")
)

// Kind identifies a binding failure class. Kinds are stable strings so callers
// can match on them across versions.
type Kind string

const (
	KindUnsupportedTarget        Kind = "unsupported_target"
	KindNonReactiveState         Kind = "non_reactive_state"
	KindInvalidObjectPath        Kind = "invalid_object_path"
	KindDuplicateBinding         Kind = "duplicate_binding"
	KindInvalidElementIdentifier Kind = "invalid_element_identifier"
	KindBadRegistry              Kind = "bad_registry"
)

// Error is the kinded failure type returned by bind, unbind, watch and write
// operations. Path, Identifier and TargetType are populated depending on the
// kind; Err carries the underlying cause when one exists.
type Error struct {
	Kind       Kind
	Path       string
	Identifier string
	TargetType string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupportedTarget:
		return fmt.Sprintf("stateflow: unsupported target type %s", e.TargetType)
	case KindNonReactiveState:
		if e.Path != "" {
			return fmt.Sprintf("stateflow: state at %q is not reactive", e.Path)
		}
		return "stateflow: state is not reactive"
	case KindInvalidObjectPath:
		return fmt.Sprintf("stateflow: invalid object path %q", e.Path)
	case KindDuplicateBinding:
		return fmt.Sprintf("stateflow: target %s is already bound", e.TargetType)
	case KindInvalidElementIdentifier:
		if e.Err != nil {
			return fmt.Sprintf("stateflow: cannot resolve identifier %q: %v", e.Identifier, e.Err)
		}
		return fmt.Sprintf("stateflow: cannot resolve identifier %q", e.Identifier)
	case KindBadRegistry:
		return "stateflow: state has no property registry (not built by MakeReactive)"
	default:
		if e.Err != nil {
			return fmt.Sprintf("stateflow: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("stateflow: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so that errors.Is(err, &Error{Kind: k}) works for
// callers that prefer sentinel-style checks.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// IsKind reports whether err (or anything it wraps) is a stateflow Error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return sterrors.As(err, &se) && se.Kind == kind
}

// KindOf returns the kind carried by err, or the empty string when err is not
// a stateflow Error.
func KindOf(err error) Kind {
	var se *Error
	if sterrors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func NewUnsupportedTarget(typeName string) *Error {
	return &Error{Kind: KindUnsupportedTarget, TargetType: typeName}
}

func NewNonReactiveState(path string) *Error {
	return &Error{Kind: KindNonReactiveState, Path: path}
}

// NewInvalidObjectPath reports a failed path walk. The path is always the
// original full path string supplied by the caller, not the failing segment.
func NewInvalidObjectPath(path string) *Error {
	return &Error{Kind: KindInvalidObjectPath, Path: path}
}

func NewDuplicateBinding(typeName string) *Error {
	return &Error{Kind: KindDuplicateBinding, TargetType: typeName}
}

func NewInvalidElementIdentifier(identifier string, cause error) *Error {
	return &Error{Kind: KindInvalidElementIdentifier, Identifier: identifier, Err: cause}
}

func NewBadRegistry() *Error {
	return &Error{Kind: KindBadRegistry}
}
