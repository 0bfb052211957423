package goarg

import (
	"context"
	"fmt"
	"reflect"
)

// serviceKey is a unique key per type parameter T for context storage.
type serviceKey[T any] struct{}

// WithService stores a typed service instance in the context for use by
// validators, setters and InitArg hooks.
func WithService[T any](ctx context.Context, svc T) context.Context {
	return context.WithValue(ctx, serviceKey[T]{}, any(svc))
}

// Service retrieves a typed service instance from context.
func Service[T any](ctx context.Context) (T, bool) {
	var zero T
	v := ctx.Value(serviceKey[T]{})
	if v == nil {
		return zero, false
	}
	if tv, ok := v.(T); ok {
		return tv, true
	}
	return zero, false
}

// RequireService returns the service or an error wrapping ErrServiceUnavailable.
func RequireService[T any](ctx context.Context) (T, error) {
	if v, ok := Service[T](ctx); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %s", ErrServiceUnavailable, reflect.TypeOf((*T)(nil)).Elem())
}

// WithValidator overrides the process-wide validator for Validate calls made
// with the returned context.
func WithValidator(ctx context.Context, v Validator) context.Context {
	return WithService[Validator](ctx, v)
}
