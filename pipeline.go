package goarg

import "context"

// AfterValidator is an optional hook run by Validate once every field rule
// and every nested arg has passed. Messages it adds to bag are returned to
// the caller; a returned error aborts validation.
type AfterValidator interface {
	AfterValidate(ctx context.Context, bag *MessageBag) error
}

// Validated binds input into a new T and validates it. A bind failure is
// returned as the error; a validation failure as a non-empty bag.
func Validated[T any, PT interface {
	*T
	Arg
}](ctx context.Context, input map[string]any, opts ...BindOpt) (*T, *MessageBag, error) {
	t, err := New[T, PT](ctx, input, opts...)
	if err != nil {
		return nil, nil, err
	}
	bag, err := Validate(ctx, PT(t))
	if err != nil {
		return nil, nil, err
	}
	return t, bag, nil
}
