package goarg

import (
	"context"
	"fmt"
	"reflect"
)

// Serialize converts target into an OrderedMap keyed by external names, in
// declaration order. Fields tagged skip_serialize are left out; getters take
// precedence over the field value; nested args serialize recursively.
func Serialize(target Arg, opts ...SerializeOpt) (*OrderedMap, error) {
	return SerializeContext(context.Background(), target, opts...)
}

// SerializeContext is Serialize with a context passed to field codecs.
func SerializeContext(ctx context.Context, target Arg, opts ...SerializeOpt) (*OrderedMap, error) {
	if target == nil || reflect.ValueOf(target).IsNil() {
		return nil, nil
	}
	return serialize(ctx, target, resolveSerializeOpt(opts))
}

func serialize(ctx context.Context, a Arg, o SerializeOpt) (*OrderedMap, error) {
	s, err := instanceSchema(a)
	if err != nil {
		return nil, err
	}
	b := a.argBase()
	rv := reflect.ValueOf(a).Elem()
	out := NewOrderedMap()
	for _, f := range s.fields {
		if f.SkipSerialize {
			continue
		}
		// fields materialized only by a default stay missing
		if o.OmitDefaulted && b.presence.DefaultOnly(pointerOf(f.Name)) {
			continue
		}
		var v any
		if f.Getter != nil {
			if v, err = f.Getter(rv); err != nil {
				return nil, fmt.Errorf("goarg: get %s.%s: %w", rv.Type(), f.GoName, err)
			}
		} else {
			fv := rv.FieldByIndex(f.Index)
			if fv.Kind() == reflect.Struct && isSchemaBound(fv.Type()) {
				v = fv.Addr().Interface()
			} else {
				v = fv.Interface()
			}
		}
		ev, err := export(ctx, v, o)
		if err != nil {
			return nil, fmt.Errorf("goarg: serialize %s: %w", f.Name, err)
		}
		out.Set(f.Name, ev)
	}
	return out, nil
}

// export converts a field value into its serialized form.
func export(ctx context.Context, v any, o SerializeOpt) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if c, ok := codecFor(rv.Type()); ok {
		return c.encode(ctx, v)
	}
	if a, ok := v.(Arg); ok {
		if rv.IsNil() {
			return nil, nil
		}
		return serialize(ctx, a, o)
	}
	if !needsExport(rv.Type()) {
		if rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice {
			return copyValue(rv).Interface(), nil
		}
		return v, nil
	}
	switch rv.Kind() {
	case reflect.Struct:
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		return export(ctx, p.Interface(), o)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return export(ctx, rv.Elem().Interface(), o)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			ev, err := export(ctx, rv.Index(i).Interface(), o)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ev, err := export(ctx, iter.Value().Interface(), o)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(iter.Key().Interface())] = ev
		}
		return out, nil
	}
	return v, nil
}

// needsExport reports whether values of t may hold args or codec types.
func needsExport(t reflect.Type) bool {
	if _, ok := codecFor(t); ok {
		return true
	}
	switch t.Kind() {
	case reflect.Struct:
		return isSchemaBound(t)
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
		return needsExport(t.Elem())
	case reflect.Interface:
		return true
	}
	return false
}
