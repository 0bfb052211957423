package goarg

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
)

type coerceOptions struct {
	weak     bool // string/number/bool conversions
	sanitize bool // strip markup from strings
}

// bindState is the options and nesting depth of the running Bind. Setters
// receive it through their context so that the values they construct bind
// under the same rules as directly nested fields.
type bindState struct {
	opt   BindOpt
	depth int
}

type bindStateKey struct{}

func withBindState(ctx context.Context, o BindOpt, depth int) context.Context {
	return context.WithValue(ctx, bindStateKey{}, bindState{opt: o, depth: depth})
}

// currentBindState returns the state of the Bind call behind ctx, or the
// default options at depth 0 outside of one.
func currentBindState(ctx context.Context) bindState {
	if st, ok := ctx.Value(bindStateKey{}).(bindState); ok {
		return st
	}
	return bindState{opt: resolveBindOpt(nil)}
}

func (st bindState) coerceOptions() coerceOptions {
	return coerceOptions{weak: st.opt.WeakTypes}
}

var sanitizer = bluemonday.StrictPolicy()

// coerce converts a decoded input value into a value of type t. It accepts
// what JSON decoding produces (float64, json.Number, string, bool, []any,
// map[string]any) plus any value already assignable to t.
func coerce(ctx context.Context, t reflect.Type, raw any, o coerceOptions) (reflect.Value, error) {
	if c, ok := codecFor(t); ok && raw != nil {
		return decodeWithCodec(ctx, c, t, raw, o)
	}
	if et := schemaElem(t); et != nil {
		if m, ok := raw.(map[string]any); ok {
			st := currentBindState(ctx)
			return bindFresh(ctx, t, m, st.opt, st.depth+1)
		}
	}
	if raw == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("null is not a valid %s", t)
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) && t.Kind() != reflect.Interface {
		out := reflect.New(t).Elem()
		out.Set(copyValue(rv))
		return postString(out, o), nil
	}

	switch t.Kind() {
	case reflect.Interface:
		if !rv.Type().Implements(t) {
			return reflect.Value{}, fmt.Errorf("%T does not implement %s", raw, t)
		}
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	case reflect.Pointer:
		ev, err := coerce(ctx, t.Elem(), raw, o)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(ev)
		return p, nil
	case reflect.String:
		s, err := toString(raw, o.weak)
		if err != nil {
			return reflect.Value{}, err
		}
		return postString(reflect.ValueOf(s).Convert(t), o), nil
	case reflect.Bool:
		b, err := toBool(raw, o.weak)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(raw, o.weak)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t).Elem()
		if out.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", n, t)
		}
		out.SetInt(n)
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := toInt(raw, o.weak)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t).Elem()
		if n < 0 || out.OverflowUint(uint64(n)) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", n, t)
		}
		out.SetUint(uint64(n))
		return out, nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(raw, o.weak)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t).Elem()
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("%g overflows %s", f, t)
		}
		out.SetFloat(f)
		return out, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			if s, ok := raw.(string); ok {
				return reflect.ValueOf([]byte(s)).Convert(t), nil
			}
		}
		return coerceList(ctx, t, rv, o)
	case reflect.Array:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return reflect.Value{}, fmt.Errorf("expected array, got %T", raw)
		}
		if rv.Len() != t.Len() {
			return reflect.Value{}, fmt.Errorf("expected %d elements, got %d", t.Len(), rv.Len())
		}
		out := reflect.New(t).Elem()
		for i := 0; i < rv.Len(); i++ {
			ev, err := coerce(ctx, t.Elem(), rv.Index(i).Interface(), o)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case reflect.Map:
		if rv.Kind() != reflect.Map {
			return reflect.Value{}, fmt.Errorf("expected object, got %T", raw)
		}
		out := reflect.MakeMapWithSize(t, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			kv, err := coerce(ctx, t.Key(), mapKey(iter.Key()), coerceOptions{weak: true})
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %v: %w", iter.Key().Interface(), err)
			}
			ev, err := coerce(ctx, t.Elem(), iter.Value().Interface(), o)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%v: %w", iter.Key().Interface(), err)
			}
			out.SetMapIndex(kv, ev)
		}
		return out, nil
	case reflect.Struct:
		// plain structs (time.Time, value objects) decode through JSON
		b, err := json.Marshal(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t)
		if err := json.Unmarshal(b, p.Interface()); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", raw, t)
}

func coerceList(ctx context.Context, t reflect.Type, rv reflect.Value, o coerceOptions) (reflect.Value, error) {
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		if !o.weak {
			return reflect.Value{}, fmt.Errorf("expected array, got %s", rv.Type())
		}
		// a scalar becomes a one-element list
		ev, err := coerce(ctx, t.Elem(), rv.Interface(), o)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeSlice(t, 1, 1)
		out.Index(0).Set(ev)
		return out, nil
	}
	out := reflect.MakeSlice(t, rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev, err := coerce(ctx, t.Elem(), rv.Index(i).Interface(), o)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

func mapKey(k reflect.Value) any {
	if k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	return k.Interface()
}

func postString(v reflect.Value, o coerceOptions) reflect.Value {
	if o.sanitize && v.Kind() == reflect.String {
		return reflect.ValueOf(sanitizer.Sanitize(v.String())).Convert(v.Type())
	}
	return v
}

func toString(raw any, weak bool) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	}
	if weak {
		switch v := raw.(type) {
		case bool:
			if v {
				return "1", nil
			}
			return "", nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case float32:
			return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
		}
		rv := reflect.ValueOf(raw)
		switch {
		case rv.CanInt():
			return strconv.FormatInt(rv.Int(), 10), nil
		case rv.CanUint():
			return strconv.FormatUint(rv.Uint(), 10), nil
		}
	}
	return "", fmt.Errorf("expected string, got %T", raw)
}

func toBool(raw any, weak bool) (bool, error) {
	if b, ok := raw.(bool); ok {
		return b, nil
	}
	if weak {
		if s, ok := raw.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "1", "true", "on", "yes":
				return true, nil
			case "0", "false", "off", "no", "":
				return false, nil
			}
			return false, fmt.Errorf("%q is not a boolean", s)
		}
		if f, err := toFloat(raw, false); err == nil {
			return f != 0, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T", raw)
}

func toInt(raw any, weak bool) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return integral(f)
	case float64:
		return integral(v)
	case float32:
		return integral(float64(v))
	case string:
		if weak {
			s := strings.TrimSpace(v)
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, fmt.Errorf("%q is not an integer", v)
			}
			return integral(f)
		}
	case bool:
		if weak {
			if v {
				return 1, nil
			}
			return 0, nil
		}
	}
	rv := reflect.ValueOf(raw)
	switch {
	case rv.CanInt():
		return rv.Int(), nil
	case rv.CanUint():
		if rv.Uint() > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", rv.Uint())
		}
		return int64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", raw)
}

func integral(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%g is not an integer", f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%g overflows int64", f)
	}
	return int64(f), nil
}

func toFloat(raw any, weak bool) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		if weak {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0, fmt.Errorf("%q is not a number", v)
			}
			return f, nil
		}
	case bool:
		if weak {
			if v {
				return 1, nil
			}
			return 0, nil
		}
	}
	rv := reflect.ValueOf(raw)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("expected number, got %T", raw)
}

// decodeJSONString decodes s into out, keeping numbers as json.Number.
func decodeJSONString(s string, out any) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	return dec.Decode(out)
}
