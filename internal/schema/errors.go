package schema

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is. Every typed error below unwraps to one of them.
var (
	ErrMissingField    = errors.New("missing field")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrInvalidEnum     = errors.New("invalid enum value")
	ErrUnexpectedField = errors.New("unexpected field")
	ErrConstraint      = errors.New("constraint violation")
)

// MissingFieldError reports a required field absent from the wire tree.
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing field", e.Path)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// TypeMismatchError reports a wire value whose shape does not match the field.
type TypeMismatchError struct {
	Path     string
	Expected string
	Got      any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: type mismatch: expected %s, got %s", e.Path, e.Expected, describe(e.Got))
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// InvalidEnumError reports an enum or union discriminator value outside its closed set.
type InvalidEnumError struct {
	Path  string
	Enum  string
	Value any
}

func (e *InvalidEnumError) Error() string {
	if e.Enum == "ActionType" {
		return fmt.Sprintf("%s: no matching action variant for type %v", e.Path, e.Value)
	}
	return fmt.Sprintf("%s: invalid %s value %v", e.Path, e.Enum, e.Value)
}

func (e *InvalidEnumError) Unwrap() error { return ErrInvalidEnum }

// UnexpectedFieldError reports a key that the selected action variant does not declare.
type UnexpectedFieldError struct {
	Path string
}

func (e *UnexpectedFieldError) Error() string {
	return fmt.Sprintf("%s: unexpected field", e.Path)
}

func (e *UnexpectedFieldError) Unwrap() error { return ErrUnexpectedField }

// ConstraintError reports a strict-mode count violation.
type ConstraintError struct {
	Path   string
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ConstraintError) Unwrap() error { return ErrConstraint }

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return fmt.Sprintf("boolean %v", v)
	case string:
		return fmt.Sprintf("string %q", v)
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T %v", v, v)
	}
}
