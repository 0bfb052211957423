package goarg

import (
	"errors"
	"fmt"
	"reflect"
)

// Error sentinels. Use errors.Is to classify errors returned by this package.
var (
	// ErrResolution marks a type that cannot be introspected into a Schema.
	ErrResolution = errors.New("goarg: schema resolution failed")
	// ErrInvalidInput marks input that cannot be bound to a field.
	ErrInvalidInput = errors.New("goarg: invalid input")
	// ErrSharedSchema is returned when mutating a cached (shared) Schema.
	// Obtain a private copy through Base.WritableSchema or Schema.Clone.
	ErrSharedSchema = errors.New("goarg: schema is shared and read-only")
	// ErrNoValidator is returned by Validate when no Validator is configured.
	ErrNoValidator = errors.New("goarg: no validator configured; import github.com/reoring/goarg/rules or call SetValidator")
	// ErrAlreadyScanned is returned by Definition.Register when the type's
	// Schema has already been published to the cache.
	ErrAlreadyScanned = errors.New("goarg: schema already scanned")
	// ErrUnknownField is returned by Schema mutators for a field name that
	// matches neither an internal nor an external name.
	ErrUnknownField = errors.New("goarg: unknown field")
	// ErrValidation marks a *ValidationError built from a non-empty MessageBag.
	ErrValidation = errors.New("goarg: validation failed")
	// ErrServiceUnavailable is returned by RequireService.
	ErrServiceUnavailable = errors.New("goarg: service not provided")
)

// ResolutionError reports why a type could not be turned into a Schema. It is
// a configuration error and is surfaced on first use, never retried.
type ResolutionError struct {
	Type  reflect.Type
	Cause error
}

func (e *ResolutionError) Error() string {
	name := "<nil>"
	if e.Type != nil {
		name = e.Type.String()
	}
	if e.Cause == nil {
		return fmt.Sprintf("goarg: cannot resolve schema for %s", name)
	}
	return fmt.Sprintf("goarg: cannot resolve schema for %s: %v", name, e.Cause)
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrResolution) hold for every ResolutionError.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

func resolutionErrorf(t reflect.Type, format string, a ...any) *ResolutionError {
	return &ResolutionError{Type: t, Cause: fmt.Errorf(format, a...)}
}

// InvalidInputError reports a supplied value that could not be assigned.
// Field is the external name, dotted for nested fields ("message.type").
type InvalidInputError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *InvalidInputError) Error() string {
	msg := "goarg: invalid input"
	if e.Field != "" {
		msg += fmt.Sprintf(" for %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *InvalidInputError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrInvalidInput) hold for every InvalidInputError.
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func invalidInput(field, reason string, cause error) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason, Cause: cause}
}

// AsInvalidInput extracts an InvalidInputError using errors.As.
func AsInvalidInput(err error) (*InvalidInputError, bool) {
	var ie *InvalidInputError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// prefixField qualifies the field path of an InvalidInputError bubbling up
// from a nested bind; other errors are returned unchanged.
func prefixField(err error, parent string) error {
	var ie *InvalidInputError
	if !errors.As(err, &ie) {
		return err
	}
	out := *ie
	if out.Field == "" {
		out.Field = parent
	} else {
		out.Field = parent + "." + out.Field
	}
	return &out
}
