package jsonschema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/goarg"
	"github.com/reoring/goarg/internal/tagx"
)

// For returns the JSON Schema of the schema-bound struct T.
func For[T any]() (*Schema, error) {
	s, err := goarg.SchemaFor(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return From(s)
}

// From projects a goarg schema: field types give the JSON types, string rules
// give constraints (required, min/max, in, regex, email, uuid, url).
// Recursive references are cut with a bare object schema.
func From(s *goarg.Schema) (*Schema, error) {
	return object(s, map[reflect.Type]bool{})
}

func object(s *goarg.Schema, visiting map[reflect.Type]bool) (*Schema, error) {
	visiting[s.Type()] = true
	defer delete(visiting, s.Type())

	out := &Schema{Type: "object", Properties: make(map[string]*Schema, s.Len())}
	for _, f := range s.Fields() {
		if f.SkipInit {
			continue
		}
		fs, required, err := field(f, visiting)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out.Properties[f.Name] = fs
		if required {
			out.Required = append(out.Required, f.Name)
		}
	}
	return out, nil
}

func nested(t reflect.Type, visiting map[reflect.Type]bool) (*Schema, error) {
	if visiting[t] {
		return &Schema{Type: "object"}, nil
	}
	s, err := goarg.SchemaFor(t)
	if err != nil {
		return nil, err
	}
	return object(s, visiting)
}

func field(f *goarg.Field, visiting map[reflect.Type]bool) (*Schema, bool, error) {
	var (
		base     *Schema
		err      error
		nullable = f.Nullable()
	)
	switch {
	case len(f.Union) > 0:
		base = &Schema{}
		for _, br := range f.Union {
			if br.Null || br.Type == nil {
				continue
			}
			var bs *Schema
			if t := schemaElem(br.Type); t != nil {
				bs, err = nested(t, visiting)
			} else {
				bs = typeSchema(br.Type)
			}
			if err != nil {
				return nil, false, err
			}
			base.OneOf = append(base.OneOf, bs)
		}
		if len(base.OneOf) == 1 {
			base = base.OneOf[0]
		}
	case f.NestedMany:
		items, err := nested(f.Nested, visiting)
		if err != nil {
			return nil, false, err
		}
		base = &Schema{Type: "array", Items: items}
	case f.Nested != nil:
		if base, err = nested(f.Nested, visiting); err != nil {
			return nil, false, err
		}
	default:
		base = typeSchema(f.Type)
	}

	required := false
	for _, r := range f.Rules() {
		tok, ok := r.(string)
		if !ok {
			continue
		}
		switch apply(base, tagx.RuleName(tok), tagx.RuleParams(tok)) {
		case markRequired:
			required = true
		case markNullable:
			nullable = true
		}
	}
	if f.DefaultKind == goarg.DefaultLiteral {
		base.Default = f.Default()
	}
	if nullable && base.Type != "null" {
		return &Schema{OneOf: []*Schema{base, {Type: "null"}}}, required, nil
	}
	return base, required, nil
}

func schemaElem(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(reflect.TypeOf((*goarg.Arg)(nil)).Elem()) {
		return t
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// typeSchema maps a Go type onto a JSON type.
func typeSchema(t reflect.Type) *Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return &Schema{Type: "string", Format: "date-time"}
	}
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", Format: "byte"}
		}
		return &Schema{Type: "array", Items: typeSchema(t.Elem())}
	case reflect.Map:
		s := &Schema{Type: "object"}
		if t.Elem().Kind() != reflect.Interface {
			s.AdditionalProperties = typeSchema(t.Elem())
		}
		return s
	case reflect.Struct:
		return &Schema{Type: "object"}
	}
	return &Schema{}
}

type mark int

const (
	markNone mark = iota
	markRequired
	markNullable
)

// apply folds one rule into s.
func apply(s *Schema, name string, params []string) mark {
	p := func(i int) (float64, bool) {
		if i >= len(params) {
			return 0, false
		}
		f, err := strconv.ParseFloat(params[i], 64)
		return f, err == nil
	}
	switch name {
	case "required", "present", "filled", "accepted":
		return markRequired
	case "nullable":
		return markNullable
	case "string":
		setType(s, "string")
	case "integer":
		s.Type = "integer"
	case "numeric":
		setType(s, "number")
	case "boolean":
		setType(s, "boolean")
	case "array":
		setType(s, "array")
	case "email":
		s.Format = "email"
	case "uuid":
		s.Format = "uuid"
	case "url":
		s.Format = "uri"
	case "date":
		s.Format = "date-time"
	case "json":
		s.Format = "json"
	case "regex":
		if len(params) > 0 {
			s.Pattern = stripDelimiters(params[0])
		}
	case "in":
		s.Enum = s.Enum[:0]
		for _, v := range params {
			s.Enum = append(s.Enum, enumValue(s.Type, v))
		}
	case "min":
		if n, ok := p(0); ok {
			setBound(s, n, true)
		}
	case "max":
		if n, ok := p(0); ok {
			setBound(s, n, false)
		}
	case "size":
		if n, ok := p(0); ok {
			setBound(s, n, true)
			setBound(s, n, false)
		}
	case "between":
		if lo, ok := p(0); ok {
			setBound(s, lo, true)
		}
		if hi, ok := p(1); ok {
			setBound(s, hi, false)
		}
	}
	return markNone
}

func setType(s *Schema, t string) {
	if s.Type == "" {
		s.Type = t
	}
}

func setBound(s *Schema, n float64, lower bool) {
	i := int(math.Round(n))
	switch s.Type {
	case "string":
		if lower {
			s.MinLength = &i
		} else {
			s.MaxLength = &i
		}
	case "array":
		if lower {
			s.MinItems = &i
		} else {
			s.MaxItems = &i
		}
	default:
		if lower {
			s.Minimum = &n
		} else {
			s.Maximum = &n
		}
	}
}

func enumValue(typ, v string) any {
	switch typ {
	case "integer":
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case "number":
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return v
}

// stripDelimiters turns "/^[a-z]+$/i" into "^[a-z]+$". Flags are dropped.
func stripDelimiters(p string) string {
	if len(p) >= 2 && strings.IndexByte("/#~!@%", p[0]) >= 0 {
		if end := strings.LastIndexByte(p, p[0]); end > 0 {
			return p[1:end]
		}
	}
	return p
}
