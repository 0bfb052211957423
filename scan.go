package goarg

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/hengadev/errsx"
)

var (
	errNilType = errors.New("nil type")
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// Scan introspects a schema-bound struct type into a fresh, owned Schema.
// Most callers want SchemaFor, which memoizes the result.
//
// Every problem found in t is collected and reported in a single
// *ResolutionError.
func Scan(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, &ResolutionError{Cause: errNilType}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, resolutionErrorf(t, "kind %s is not a struct", t.Kind())
	}
	if !isSchemaBound(t) {
		return nil, resolutionErrorf(t, "type does not embed goarg.Base")
	}

	sc := &scanner{
		typ:    t,
		ptr:    reflect.PointerTo(t),
		reg:    registrationFor(t),
		schema: newSchema(t),
		errs:   make(errsx.Map),
	}
	var cands []candidate
	sc.collect(t, nil, &cands)
	for _, c := range sc.promote(cands) {
		f, err := sc.field(c)
		if errors.Is(err, errIgnored) {
			continue
		}
		if err != nil {
			sc.errs.Set(c.sf.Name, err)
			continue
		}
		if err := sc.schema.add(f); err != nil {
			sc.errs.Set(c.sf.Name, err)
		}
	}
	sc.checkRegistration()

	if !sc.errs.IsEmpty() {
		return nil, &ResolutionError{Type: t, Cause: sc.errs.AsError()}
	}
	logger().Debug("goarg: schema scanned", "type", t.String(), "fields", sc.schema.Len())
	return sc.schema, nil
}

type scanner struct {
	typ    reflect.Type
	ptr    reflect.Type
	reg    *registration
	schema *Schema
	errs   errsx.Map
}

// candidate is a struct field reachable from the scanned type, with its
// depth in the embedding tree.
type candidate struct {
	sf    reflect.StructField
	index []int
	depth int
}

// collect walks t in declaration order, flattening anonymous struct fields
// that carry no explicit name.
func (sc *scanner) collect(t reflect.Type, index []int, out *[]candidate) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		idx := append(append([]int(nil), index...), i)
		if sf.Anonymous && sf.Type == baseType {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && !explicitlyNamed(sf) {
			if sf.Tag.Get(TagArg) == "-" {
				continue
			}
			sc.collect(sf.Type, idx, out)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		*out = append(*out, candidate{sf: sf, index: idx, depth: len(index)})
	}
}

// promote applies Go's field promotion rules: the shallowest field of a name
// wins; two fields of the same name at the same depth are ambiguous and both
// dropped. Declaration order of the winners is kept.
func (sc *scanner) promote(cands []candidate) []candidate {
	best := make(map[string]int, len(cands))
	count := make(map[string]int, len(cands))
	for _, c := range cands {
		d, ok := best[c.sf.Name]
		switch {
		case !ok || c.depth < d:
			best[c.sf.Name] = c.depth
			count[c.sf.Name] = 1
		case c.depth == d:
			count[c.sf.Name]++
		}
	}
	out := cands[:0:0]
	for _, c := range cands {
		if best[c.sf.Name] == c.depth && count[c.sf.Name] == 1 {
			out = append(out, c)
		}
	}
	return out
}

func (sc *scanner) field(c candidate) (*Field, error) {
	sf := c.sf
	tag, err := parseFieldTag(sf)
	if err != nil {
		return nil, err
	}
	if tag.ignore {
		return nil, errIgnored
	}
	f := &Field{
		Name:          tag.name,
		GoName:        sf.Name,
		Index:         c.index,
		Type:          sf.Type,
		SkipInit:      tag.skipInit,
		SkipSerialize: tag.skipSerialize,
		Sanitize:      tag.sanitize,
		defType:       sf.Type,
	}

	if sc.reg != nil && len(sc.reg.unions[sf.Name]) > 0 {
		if err := resolveUnion(f, sc.reg.unions[sf.Name]); err != nil {
			return nil, err
		}
	} else if err := resolveType(f); err != nil {
		return nil, err
	}

	if tag.hasDef {
		if f.IsNested() && !f.NestedMany {
			return nil, fmt.Errorf("default literal not allowed on nested field")
		}
		lit, err := parseLiteral(f.defType, tag.def)
		if err != nil {
			return nil, fmt.Errorf("default literal %q: %w", tag.def, err)
		}
		f.DefaultKind = DefaultLiteral
		f.literal = lit
		f.litSrc = tag.def
	}
	if f.Sanitize && !isStringish(f.Type) {
		return nil, fmt.Errorf("sanitize requires a string field, got %s", f.Type)
	}

	for _, r := range tag.rules {
		f.addRules(r)
	}
	for _, p := range tag.messages {
		f.setMessage(strings.TrimPrefix(p.Key, TagMessage), p.Value)
	}
	if sc.reg != nil {
		f.addRules(sc.reg.rules[sf.Name]...)
		for rule, msg := range sc.reg.messages[sf.Name] {
			f.setMessage(rule, msg)
		}
	}

	if err := sc.accessors(f); err != nil {
		return nil, err
	}
	return f, nil
}

// errIgnored marks a field excluded by its tag; Scan skips it silently.
var errIgnored = errors.New("field ignored")

func isStringish(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.String
}

// resolveType derives the default kind and nested type from a declared type.
func resolveType(f *Field) error {
	t := f.defType
	switch t.Kind() {
	case reflect.Struct:
		if isSchemaBound(t) {
			f.Nested = t
			f.DefaultKind = DefaultNested
			return nil
		}
		f.DefaultKind = DefaultZero
	case reflect.Pointer:
		if isSchemaBound(t.Elem()) {
			f.Nested = t.Elem()
		}
		f.DefaultKind = DefaultNull
	case reflect.Interface:
		f.DefaultKind = DefaultNull
	case reflect.Slice:
		if et := schemaElem(t.Elem()); et != nil {
			f.Nested = et
			f.NestedMany = true
		}
		f.DefaultKind = DefaultEmptySequence
	case reflect.Map:
		f.DefaultKind = DefaultEmptyObject
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return fmt.Errorf("unsupported field kind %s", t.Kind())
	default:
		f.DefaultKind = DefaultZero
	}
	return nil
}

// schemaElem returns the schema-bound struct behind T or *T.
func schemaElem(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if isSchemaBound(t) {
		return t
	}
	return nil
}

// resolveUnion applies the union tie-break: a null branch makes the default
// null; otherwise the first schema-bound branch is instantiated; otherwise
// the first primitive branch provides the default.
func resolveUnion(f *Field, branches []UnionBranch) error {
	if f.Type.Kind() != reflect.Interface {
		return fmt.Errorf("union declared on non-interface field of type %s", f.Type)
	}
	var (
		hasNull   bool
		nested    reflect.Type
		primitive reflect.Type
	)
	for _, b := range branches {
		if b.Null || b.Type == nil {
			hasNull = true
			continue
		}
		if et := schemaElem(b.Type); et != nil {
			if !reflect.PointerTo(et).AssignableTo(f.Type) {
				return fmt.Errorf("union branch *%s is not assignable to %s", et, f.Type)
			}
			if nested == nil {
				nested = et
			}
			continue
		}
		if !b.Type.AssignableTo(f.Type) {
			return fmt.Errorf("union branch %s is not assignable to %s", b.Type, f.Type)
		}
		if primitive == nil {
			primitive = b.Type
		}
	}
	f.Union = append([]UnionBranch(nil), branches...)
	f.Nested = nested
	switch {
	case hasNull:
		f.DefaultKind = DefaultNull
	case nested != nil:
		f.DefaultKind = DefaultNested
		f.defType = nested
	case primitive != nil:
		f.defType = primitive
		if err := resolveType(f); err != nil {
			return err
		}
		// a primitive branch never nests, even if the kind is a pointer
		f.Nested = nil
		f.NestedMany = false
	}
	return nil
}

// parseLiteral converts a default tag literal into a value of type t.
func parseLiteral(t reflect.Type, lit string) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Struct:
		var raw any
		if err := decodeJSONString(lit, &raw); err != nil {
			return reflect.Value{}, err
		}
		return coerce(context.Background(), t, raw, coerceOptions{weak: true})
	}
	return coerce(context.Background(), t, lit, coerceOptions{weak: true})
}

// accessors resolves the setter and getter of f: explicit registrations
// first, then Set<GoName>/Get<GoName> methods on the pointer type.
func (sc *scanner) accessors(f *Field) error {
	if sc.reg != nil {
		f.Setter = sc.reg.setters[f.GoName]
		f.Getter = sc.reg.getters[f.GoName]
	}
	if f.Setter == nil {
		s, err := conventionSetter(sc.ptr, f.GoName)
		if err != nil {
			return err
		}
		f.Setter = s
	}
	if f.Getter == nil {
		g, err := conventionGetter(sc.ptr, f.GoName)
		if err != nil {
			return err
		}
		f.Getter = g
	}
	return nil
}

func conventionSetter(ptr reflect.Type, goName string) (SetterFunc, error) {
	name := "Set" + goName
	m, ok := ptr.MethodByName(name)
	if !ok {
		return nil, nil
	}
	mt := m.Type
	if mt.NumIn() != 2 || mt.NumOut() > 1 || (mt.NumOut() == 1 && mt.Out(0) != errorType) {
		return nil, fmt.Errorf("method %s must have signature func(T) or func(T) error", name)
	}
	param := mt.In(1)
	idx := m.Index
	return func(ctx context.Context, target reflect.Value, raw any) error {
		var arg reflect.Value
		if raw == nil {
			arg = reflect.Zero(param)
		} else {
			v, err := coerce(ctx, param, raw, currentBindState(ctx).coerceOptions())
			if err != nil {
				return err
			}
			arg = v
		}
		out := target.Addr().Method(idx).Call([]reflect.Value{arg})
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}, nil
}

func conventionGetter(ptr reflect.Type, goName string) (GetterFunc, error) {
	name := "Get" + goName
	m, ok := ptr.MethodByName(name)
	if !ok {
		return nil, nil
	}
	mt := m.Type
	okOut := mt.NumOut() == 1 || (mt.NumOut() == 2 && mt.Out(1) == errorType)
	if mt.NumIn() != 1 || !okOut {
		return nil, fmt.Errorf("method %s must have signature func() V or func() (V, error)", name)
	}
	idx := m.Index
	return func(target reflect.Value) (any, error) {
		out := target.Addr().Method(idx).Call(nil)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}, nil
}

// checkRegistration reports Define declarations naming unknown fields.
func (sc *scanner) checkRegistration() {
	if sc.reg == nil {
		return
	}
	check := func(kind, name string) {
		if _, ok := sc.schema.byGo[name]; !ok {
			sc.errs.Set(name, fmt.Errorf("%s registered for unknown field %s", kind, name))
		}
	}
	for name := range sc.reg.setters {
		check("setter", name)
	}
	for name := range sc.reg.getters {
		check("getter", name)
	}
	for name := range sc.reg.unions {
		check("union", name)
	}
	for name := range sc.reg.rules {
		check("rules", name)
	}
	for name := range sc.reg.messages {
		check("messages", name)
	}
}
