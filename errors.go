package shape

import (
	"errors"
	"fmt"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// Errors
///////////////////////////////////////////////////////////////////////////////

// Deserialization failure kinds. A *DeserializeError always matches exactly
// one of these with errors.Is.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrTypeCoercion         = errors.New("type coercion failure")
	ErrStructuralMismatch   = errors.New("structural mismatch")
)

// Declaration and input errors.
var (
	ErrInvalidSchema           = errors.New("invalid schema")
	ErrRecursiveSchema         = errors.New("schema references itself")
	ErrInvalidDocument         = errors.New("invalid document")
	ErrSchemaNotFound          = errors.New("no schema registered with this name")
	ErrSchemaAlreadyRegistered = errors.New("a schema with this name is already registered")
)

// DeserializeError is returned by every parse operation that fails.
//
// Kind is one of ErrMissingRequiredField, ErrTypeCoercion or
// ErrStructuralMismatch. TypeName is the record type whose schema was being
// applied when the failure was discovered; for nested records this is the
// innermost type, the error is propagated unchanged through enclosing parses.
type DeserializeError struct {
	Kind     error
	TypeName string
	Field    string   // Target field, empty for missing-field errors
	Path     Path     // Source path of Field
	Missing  []string // Target fields that were absent, for missing-field errors
	Err      error    // Underlying cause, if any
}

func (e *DeserializeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())

	switch {
	case errors.Is(e.Kind, ErrMissingRequiredField):
		fmt.Fprintf(&b,
			": at least one field of %q was absent or null without a default",
			e.TypeName,
		)
		if len(e.Missing) > 0 {
			fmt.Fprintf(&b, " (missing: %s)", strings.Join(e.Missing, ", "))
		}
	default:
		fmt.Fprintf(&b, ": %s.%s", e.TypeName, e.Field)
		if len(e.Path) > 0 {
			fmt.Fprintf(&b, " at %s", e.Path)
		}
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is reports whether target is this error's Kind.
func (e *DeserializeError) Is(target error) bool {
	return target == e.Kind
}

func (e *DeserializeError) Unwrap() error {
	return e.Err
}

func missingFieldError(typeName string, missing []string) *DeserializeError {
	return &DeserializeError{
		Kind:     ErrMissingRequiredField,
		TypeName: typeName,
		Missing:  missing,
	}
}

func coercionError(typeName string, spec *FieldSpec, cause error) *DeserializeError {
	return &DeserializeError{
		Kind:     ErrTypeCoercion,
		TypeName: typeName,
		Field:    spec.Target,
		Path:     spec.Path,
		Err:      cause,
	}
}

func structuralError(typeName string, spec *FieldSpec, cause error) *DeserializeError {
	return &DeserializeError{
		Kind:     ErrStructuralMismatch,
		TypeName: typeName,
		Field:    spec.Target,
		Path:     spec.Path,
		Err:      cause,
	}
}

// errorOutcome maps an error to the metric outcome label.
func errorOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrMissingRequiredField):
		return outcomeMissing
	case errors.Is(err, ErrTypeCoercion):
		return outcomeCoercion
	default:
		return outcomeStructural
	}
}
