package goarg

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Bind populates target from input using the cached Schema of its type.
//
// Fields are visited in declaration order. Supplied keys are routed through
// the field's setter when one exists and assigned directly otherwise; absent
// keys receive the field default. Nested schema-bound fields are constructed
// recursively. The presence of every field is recorded on the target's Base.
//
// Assignment failures are returned as *InvalidInputError; a type that cannot
// be introspected yields *ResolutionError. When the target implements
// Initializer, InitArg runs after every field is bound.
//
// Binding an instance again starts over from the cached Schema: a private
// copy made through WritableSchema by an earlier bind is dropped.
func Bind(ctx context.Context, target Arg, input map[string]any, opts ...BindOpt) error {
	if target == nil || reflect.ValueOf(target).IsNil() {
		return invalidInput("", "nil target", nil)
	}
	o := resolveBindOpt(opts)
	if err := bind(ctx, target, input, o, 0); err != nil {
		logger().Debug("goarg: bind failed", "type", reflect.TypeOf(target).Elem().String(), "error", err)
		return err
	}
	return nil
}

// New allocates a T and binds input into it.
//
//	arg, err := goarg.New[SendGroupMessageArg](ctx, input)
func New[T any, PT interface {
	*T
	Arg
}](ctx context.Context, input map[string]any, opts ...BindOpt) (*T, error) {
	p := PT(new(T))
	if err := Bind(ctx, p, input, opts...); err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

func bind(ctx context.Context, a Arg, input map[string]any, o BindOpt, depth int) error {
	if depth > o.MaxDepth {
		return invalidInput("", fmt.Sprintf("nesting deeper than %d", o.MaxDepth), nil)
	}
	ctx = withBindState(ctx, o, depth)
	s, err := resetSchema(a)
	if err != nil {
		return err
	}
	b := a.argBase()
	b.presence = make(PresenceMap, s.Len())
	b.extra = nil
	if err := applyUnknown(b, s, input, o.Unknown); err != nil {
		return err
	}

	rv := reflect.ValueOf(a).Elem()
	for _, f := range s.fields {
		raw, present := input[f.Name]
		if f.SkipInit {
			if present {
				b.mark(f.Name, PresenceSeen)
			}
			continue
		}
		fv := rv.FieldByIndex(f.Index)
		var p Presence
		if f.IsNested() {
			p, err = bindNested(ctx, f, rv, fv, raw, present, o, depth)
		} else {
			p, err = bindOrdinary(ctx, f, rv, fv, raw, present, o)
		}
		if err != nil {
			return err
		}
		b.mark(f.Name, p)
	}

	if in, ok := a.(Initializer); ok {
		if input == nil {
			input = map[string]any{}
		}
		if err := in.InitArg(ctx, input); err != nil {
			return fmt.Errorf("goarg: init %s: %w", rv.Type(), err)
		}
	}
	return nil
}

func applyUnknown(b *Base, s *Schema, input map[string]any, policy UnknownPolicy) error {
	if policy == UnknownStrip {
		return nil
	}
	var unknown []string
	for k := range input {
		if _, ok := s.byName[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	if policy == UnknownStrict {
		return invalidInput(unknown[0], "unknown field", ErrUnknownField)
	}
	b.extra = make(map[string]any, len(unknown))
	for _, k := range unknown {
		b.extra[k] = input[k]
	}
	return nil
}

func bindOrdinary(ctx context.Context, f *Field, owner, fv reflect.Value, raw any, present bool, o BindOpt) (Presence, error) {
	if !present {
		if !fv.IsZero() {
			return 0, nil
		}
		if v := f.defaultValue(); v.IsValid() {
			fv.Set(v)
		}
		return PresenceDefaultApplied, nil
	}

	p := PresenceSeen
	if raw == nil {
		p |= PresenceWasNull
	}
	if f.Setter != nil {
		if err := f.Setter(ctx, owner, raw); err != nil {
			return 0, fieldError(f.Name, err)
		}
		return p, nil
	}
	if raw == nil && !nillable(fv.Kind()) {
		return 0, invalidInput(f.Name, "null is not allowed", nil)
	}
	v, err := coerceField(ctx, f, raw, coerceOptions{weak: o.WeakTypes, sanitize: f.Sanitize})
	if err != nil {
		return 0, fieldError(f.Name, err)
	}
	fv.Set(v)
	return p, nil
}

// coerceField converts raw into the field type; union fields try their
// primitive branches in declaration order.
func coerceField(ctx context.Context, f *Field, raw any, co coerceOptions) (reflect.Value, error) {
	if len(f.Union) == 0 {
		return coerce(ctx, f.Type, raw, co)
	}
	out := reflect.New(f.Type).Elem()
	if raw == nil {
		for _, br := range f.Union {
			if br.Null || br.Type == nil {
				return out, nil
			}
		}
		return reflect.Value{}, fmt.Errorf("null matches no branch of %s", unionString(f.Union))
	}
	for _, br := range f.Union {
		if br.Null || br.Type == nil || schemaElem(br.Type) != nil {
			continue
		}
		v, err := coerce(ctx, br.Type, raw, co)
		if err != nil {
			continue
		}
		out.Set(v)
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("%T matches no branch of %s", raw, unionString(f.Union))
}

func unionString(branches []UnionBranch) string {
	parts := make([]string, len(branches))
	for i, b := range branches {
		parts[i] = b.String()
	}
	return strings.Join(parts, "|")
}

func bindNested(ctx context.Context, f *Field, owner, fv reflect.Value, raw any, present bool, o BindOpt, depth int) (Presence, error) {
	if !present {
		// Absent nullable values stay nil rather than going through the setter.
		if f.Setter != nil && f.DefaultKind != DefaultNull {
			if err := f.Setter(ctx, owner, map[string]any{}); err != nil {
				return 0, fieldError(f.Name, err)
			}
			return PresenceDefaultApplied, nil
		}
		switch {
		case f.NestedMany, f.DefaultKind == DefaultLiteral:
			if fv.IsZero() {
				fv.Set(f.defaultValue())
			}
		case f.DefaultKind == DefaultNull:
			if !fv.IsZero() {
				return 0, nil
			}
		default:
			if fv.Kind() != reflect.Struct && !fv.IsNil() {
				return 0, nil
			}
			if err := constructNested(ctx, f, fv, map[string]any{}, o, depth); err != nil {
				return 0, err
			}
		}
		return PresenceDefaultApplied, nil
	}

	if raw == nil {
		if f.DefaultKind != DefaultNull {
			return 0, invalidInput(f.Name, "null is not allowed", nil)
		}
		if f.Setter != nil {
			if err := f.Setter(ctx, owner, nil); err != nil {
				return 0, fieldError(f.Name, err)
			}
		} else {
			fv.Set(reflect.Zero(fv.Type()))
		}
		return PresenceSeen | PresenceWasNull, nil
	}

	if s, ok := raw.(string); ok {
		var decoded any
		if err := decodeJSONString(s, &decoded); err == nil {
			switch decoded.(type) {
			case map[string]any, []any:
				raw = decoded
			}
		}
	}

	if f.NestedMany {
		list, ok := raw.([]any)
		if !ok {
			return 0, invalidInput(f.Name, "must be an array", nil)
		}
		if f.Setter != nil {
			if err := f.Setter(ctx, owner, list); err != nil {
				return 0, fieldError(f.Name, err)
			}
			return PresenceSeen, nil
		}
		out := reflect.MakeSlice(fv.Type(), len(list), len(list))
		for i, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return 0, invalidInput(f.Name+"."+strconv.Itoa(i), "must be an object", nil)
			}
			ev, err := bindFresh(ctx, fv.Type().Elem(), m, o, depth+1)
			if err != nil {
				return 0, prefixField(err, f.Name+"."+strconv.Itoa(i))
			}
			out.Index(i).Set(ev)
		}
		fv.Set(out)
		return PresenceSeen, nil
	}

	m, ok := raw.(map[string]any)
	if !ok {
		if f.Setter == nil && hasPrimitiveBranch(f.Union) {
			v, err := coerceField(ctx, f, raw, coerceOptions{weak: o.WeakTypes})
			if err != nil {
				return 0, fieldError(f.Name, err)
			}
			fv.Set(v)
			return PresenceSeen, nil
		}
		return 0, invalidInput(f.Name, "must be an object", nil)
	}
	if f.Setter != nil {
		if err := f.Setter(ctx, owner, m); err != nil {
			return 0, fieldError(f.Name, err)
		}
		return PresenceSeen, nil
	}
	if err := constructNested(ctx, f, fv, m, o, depth); err != nil {
		return 0, err
	}
	return PresenceSeen, nil
}

func hasPrimitiveBranch(branches []UnionBranch) bool {
	for _, b := range branches {
		if !b.Null && b.Type != nil && schemaElem(b.Type) == nil {
			return true
		}
	}
	return false
}

// constructNested binds m into the nested value held by fv: in place for
// struct values, into a fresh *Nested for pointers and unions.
func constructNested(ctx context.Context, f *Field, fv reflect.Value, m map[string]any, o BindOpt, depth int) error {
	if fv.Kind() == reflect.Struct {
		if err := bind(ctx, fv.Addr().Interface().(Arg), m, o, depth+1); err != nil {
			return prefixField(err, f.Name)
		}
		return nil
	}
	p := reflect.New(f.Nested)
	if err := bind(ctx, p.Interface().(Arg), m, o, depth+1); err != nil {
		return prefixField(err, f.Name)
	}
	fv.Set(p)
	return nil
}

// bindFresh returns a newly bound value of t, which is a schema-bound struct
// or a pointer to one.
func bindFresh(ctx context.Context, t reflect.Type, m map[string]any, o BindOpt, depth int) (reflect.Value, error) {
	et := t
	if t.Kind() == reflect.Pointer {
		et = t.Elem()
	}
	p := reflect.New(et)
	if err := bind(ctx, p.Interface().(Arg), m, o, depth); err != nil {
		return reflect.Value{}, err
	}
	if t.Kind() == reflect.Pointer {
		return p, nil
	}
	return p.Elem(), nil
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

// fieldError wraps err as an InvalidInputError for field, prefixing the path
// of one raised by a nested bind.
func fieldError(field string, err error) error {
	if _, ok := AsInvalidInput(err); ok {
		return prefixField(err, field)
	}
	return invalidInput(field, "", err)
}
