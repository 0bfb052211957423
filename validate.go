package goarg

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

// Validator checks data against rules. Rules and data are keyed by external
// field name; messages are keyed "<field>.<rule>". Failures are reported in
// the bag; the error is reserved for configuration problems such as an
// unknown rule.
type Validator interface {
	Validate(ctx context.Context, data map[string]any, rules map[string][]Rule, messages map[string]string) (*MessageBag, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, data map[string]any, rules map[string][]Rule, messages map[string]string) (*MessageBag, error)

func (f ValidatorFunc) Validate(ctx context.Context, data map[string]any, rules map[string][]Rule, messages map[string]string) (*MessageBag, error) {
	return f(ctx, data, rules, messages)
}

var (
	validatorMu      sync.RWMutex
	currentValidator Validator
)

// SetValidator installs the process-wide validator. Importing the rules
// package installs its engine.
func SetValidator(v Validator) {
	validatorMu.Lock()
	currentValidator = v
	validatorMu.Unlock()
}

// CurrentValidator returns the process-wide validator, or nil.
func CurrentValidator() Validator {
	validatorMu.RLock()
	defer validatorMu.RUnlock()
	return currentValidator
}

func validatorFor(ctx context.Context) Validator {
	if v, ok := Service[Validator](ctx); ok && v != nil {
		return v
	}
	return CurrentValidator()
}

// Validate checks target against the rules of its schema (the writable copy
// when the instance has one).
//
// Own fields are validated first. Only when they all pass are nested fields
// validated, in declaration order: nullable nested fields only when they were
// supplied and hold a value. Nested messages are merged under
// "<field>.<nested field>" and validation stops at the first nested field
// that fails.
func Validate(ctx context.Context, target Arg) (*MessageBag, error) {
	v := validatorFor(ctx)
	if v == nil {
		return nil, ErrNoValidator
	}
	if target == nil || reflect.ValueOf(target).IsNil() {
		return nil, invalidInput("", "nil target", nil)
	}
	bag, err := validate(ctx, v, target)
	if err != nil {
		logger().Warn("goarg: validator failed", "type", reflect.TypeOf(target).Elem().String(), "error", err)
		return nil, err
	}
	return bag, nil
}

func validate(ctx context.Context, v Validator, a Arg) (*MessageBag, error) {
	s, err := instanceSchema(a)
	if err != nil {
		return nil, err
	}
	b := a.argBase()
	rv := reflect.ValueOf(a).Elem()

	data := make(map[string]any, s.Len())
	var nested []*Field
	for _, f := range s.fields {
		if f.IsNested() {
			nested = append(nested, f)
			if len(f.rules) == 0 {
				continue
			}
		}
		val, err := fieldData(ctx, f, rv)
		if err != nil {
			return nil, err
		}
		data[f.Name] = val
	}

	bag, err := v.Validate(ctx, data, s.Rules(), s.Messages())
	if err != nil {
		return nil, err
	}
	if bag == nil {
		bag = NewMessageBag()
	}
	if !bag.IsEmpty() {
		return bag, nil
	}

	for _, f := range nested {
		if f.Nullable() && !b.presence.Seen(pointerOf(f.Name)) {
			continue
		}
		if err := validateNested(ctx, v, f, rv.FieldByIndex(f.Index), bag); err != nil {
			return nil, err
		}
		if !bag.IsEmpty() {
			break
		}
	}
	if bag.IsEmpty() {
		if av, ok := a.(AfterValidator); ok {
			if err := av.AfterValidate(ctx, bag); err != nil {
				return nil, fmt.Errorf("goarg: after validate %s: %w", rv.Type(), err)
			}
		}
	}
	return bag, nil
}

// fieldData is the value the validator sees for f. Nested values are passed
// in serialized form.
func fieldData(ctx context.Context, f *Field, rv reflect.Value) (any, error) {
	fv := rv.FieldByIndex(f.Index)
	if !f.IsNested() {
		return fv.Interface(), nil
	}
	var v any = fv.Interface()
	if fv.Kind() == reflect.Struct {
		v = fv.Addr().Interface()
	}
	out, err := export(ctx, v, SerializeOpt{})
	if err != nil {
		return nil, err
	}
	if m, ok := out.(*OrderedMap); ok {
		return m.Map(), nil
	}
	return plain(out), nil
}

func validateNested(ctx context.Context, v Validator, f *Field, fv reflect.Value, bag *MessageBag) error {
	switch fv.Kind() {
	case reflect.Struct:
		sub, err := validate(ctx, v, fv.Addr().Interface().(Arg))
		if err != nil {
			return err
		}
		bag.MergePrefixed(f.Name, sub)
	case reflect.Slice:
		for i := 0; i < fv.Len(); i++ {
			a, ok := asArg(fv.Index(i))
			if !ok {
				continue
			}
			sub, err := validate(ctx, v, a)
			if err != nil {
				return err
			}
			bag.MergePrefixed(f.Name+"."+strconv.Itoa(i), sub)
			if !bag.IsEmpty() {
				return nil
			}
		}
	default:
		a, ok := asArg(fv)
		if !ok {
			return nil
		}
		sub, err := validate(ctx, v, a)
		if err != nil {
			return err
		}
		bag.MergePrefixed(f.Name, sub)
	}
	return nil
}

// asArg returns the non-nil Arg held by v (a *T, an interface holding one,
// or an addressable T).
func asArg(v reflect.Value) (Arg, bool) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct && v.CanAddr() {
		v = v.Addr()
	}
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, false
	}
	a, ok := v.Interface().(Arg)
	return a, ok
}
