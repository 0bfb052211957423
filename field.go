package goarg

import (
	"context"
	"reflect"

	"github.com/reoring/goarg/internal/tagx"
)

// DefaultKind says how a field is initialized when the input omits it.
type DefaultKind uint8

const (
	DefaultZero          DefaultKind = iota // Zero value of the declared type ("", 0, 0.0, false).
	DefaultEmptySequence                    // Fresh empty, non-nil slice.
	DefaultEmptyObject                      // Fresh empty map (generic object).
	DefaultNull                             // nil (pointers, interfaces, nullable unions).
	DefaultNested                           // Instantiate the nested schema type with empty input.
	DefaultLiteral                          // Literal from the default:"..." tag.
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultZero:
		return "zero"
	case DefaultEmptySequence:
		return "empty_sequence"
	case DefaultEmptyObject:
		return "empty_object"
	case DefaultNull:
		return "null"
	case DefaultNested:
		return "nested"
	case DefaultLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Rule is a validation rule: a string token ("required", "min:3") or an
// opaque value understood by the configured Validator. Opaque rules may
// implement interface{ RuleName() string } to key their messages.
type Rule = any

// RuleName returns the message key of a rule: the token name for strings
// ("min:3" -> "min"), RuleName() for named rule values, "" otherwise.
func RuleName(r Rule) string {
	switch v := r.(type) {
	case string:
		return tagx.RuleName(v)
	case interface{ RuleName() string }:
		return v.RuleName()
	}
	return ""
}

// SetterFunc routes a raw input value into the owning instance. target is the
// addressable struct value of the instance.
type SetterFunc func(ctx context.Context, target reflect.Value, raw any) error

// GetterFunc reads the serialized value of a field from the owning instance.
type GetterFunc func(target reflect.Value) (any, error)

// Field describes one declared field of a schema-bound struct.
type Field struct {
	// Name is the external name used in input and output maps.
	Name string
	// GoName is the Go identifier of the field on the owning struct.
	GoName string
	// Index is the reflect index path from the owning struct.
	Index []int
	// Type is the declared Go type.
	Type reflect.Type

	DefaultKind DefaultKind
	// Nested is the schema-bound struct type held by the field (directly,
	// through a pointer, as the winning union branch or as slice element).
	Nested reflect.Type
	// NestedMany is set when the field is a slice of schema-bound values.
	NestedMany bool
	// Union lists the registered branches of an interface-typed field.
	Union []UnionBranch

	Setter SetterFunc
	Getter GetterFunc

	SkipInit      bool
	SkipSerialize bool
	Sanitize      bool

	defType  reflect.Type  // type the default is built from (branch type for unions)
	literal  reflect.Value // DefaultLiteral payload, parsed at scan time
	litSrc   string        // default tag text, re-parsed for mutable kinds
	rules    []Rule
	messages map[string]string // rule name -> message
}

// Rules returns a copy of the field's validation rules.
func (f *Field) Rules() []Rule { return append([]Rule(nil), f.rules...) }

// Messages returns a copy of the field's messages keyed by rule name.
func (f *Field) Messages() map[string]string {
	out := make(map[string]string, len(f.messages))
	for k, v := range f.messages {
		out[k] = v
	}
	return out
}

// Nullable reports whether the field defaults to nil.
func (f *Field) Nullable() bool { return f.DefaultKind == DefaultNull }

// IsNested reports whether the field holds schema-bound values.
func (f *Field) IsNested() bool { return f.Nested != nil }

// Default returns the value assigned when the input omits the field. Maps,
// slices and pointers are fresh on every call, down to their elements. For DefaultNested it returns the nested
// reflect.Type as a marker; binding instantiates it with empty input.
func (f *Field) Default() any {
	switch f.DefaultKind {
	case DefaultNull:
		return nil
	case DefaultNested:
		return f.Nested
	}
	v := f.defaultValue()
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

// defaultValue builds the default as a reflect.Value of defType. It returns
// the invalid Value for DefaultNull and DefaultNested.
func (f *Field) defaultValue() reflect.Value {
	t := f.defType
	if t == nil {
		t = f.Type
	}
	switch f.DefaultKind {
	case DefaultZero:
		return reflect.Zero(t)
	case DefaultEmptySequence:
		return reflect.MakeSlice(t, 0, 0)
	case DefaultEmptyObject:
		return reflect.MakeMap(t)
	case DefaultLiteral:
		if scalarKind(f.literal.Kind()) {
			return f.literal
		}
		// The literal parsed once at scan time; parsing again cannot fail.
		v, err := parseLiteral(t, f.litSrc)
		if err != nil {
			logger().Warn("goarg: default literal", "field", f.Name, "error", err)
			return reflect.Zero(t)
		}
		return v
	}
	return reflect.Value{}
}

// scalarKind reports kinds whose values share no memory once copied.
func scalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (f *Field) addRules(rules ...Rule) {
	for _, r := range rules {
		if s, ok := r.(string); ok {
			for _, tok := range tagx.SplitRules(s) {
				f.rules = append(f.rules, tok)
			}
			continue
		}
		if r != nil {
			f.rules = append(f.rules, r)
		}
	}
}

func (f *Field) setMessage(rule, msg string) {
	if f.messages == nil {
		f.messages = make(map[string]string)
	}
	f.messages[tagx.RuleName(rule)] = msg
}

// clone copies the mutable parts (rules, messages). Types, index paths and
// accessors are shared.
func (f *Field) clone() *Field {
	out := *f
	out.rules = append([]Rule(nil), f.rules...)
	if f.messages != nil {
		out.messages = make(map[string]string, len(f.messages))
		for k, v := range f.messages {
			out.messages[k] = v
		}
	}
	return &out
}

// copyValue returns a shallow copy of maps and slices so that a bound field
// never aliases the top level of the caller's input.
func copyValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(out, v)
		return out
	}
	return v
}
