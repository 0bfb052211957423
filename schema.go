package goarg

import (
	"fmt"
	"reflect"
)

// Schema is the ordered, name-keyed set of Field descriptors of one
// schema-bound struct type. Field order is declaration order.
//
// Schemas published by the cache are shared: their mutators return
// ErrSharedSchema. Clone (or Base.WritableSchema) yields an owned copy whose
// rules and messages may be changed. Field values returned by Fields and
// Field must be treated as read-only.
type Schema struct {
	typ    reflect.Type
	fields []*Field
	byGo   map[string]int
	byName map[string]int
	shared bool
}

func newSchema(t reflect.Type) *Schema {
	return &Schema{
		typ:    t,
		byGo:   make(map[string]int),
		byName: make(map[string]int),
	}
}

func (s *Schema) add(f *Field) error {
	if _, dup := s.byGo[f.GoName]; dup {
		return fmt.Errorf("field %s declared more than once", f.GoName)
	}
	if i, dup := s.byName[f.Name]; dup {
		return fmt.Errorf("fields %s and %s share the external name %q", s.fields[i].GoName, f.GoName, f.Name)
	}
	s.byGo[f.GoName] = len(s.fields)
	s.byName[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)
	return nil
}

// Type returns the struct type the schema describes.
func (s *Schema) Type() reflect.Type { return s.typ }

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Shared reports whether the schema is the cached, read-only instance.
func (s *Schema) Shared() bool { return s.shared }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []*Field { return append([]*Field(nil), s.fields...) }

// Field looks a field up by Go name first, then by external name.
func (s *Schema) Field(name string) (*Field, bool) {
	if i, ok := s.byGo[name]; ok {
		return s.fields[i], true
	}
	if i, ok := s.byName[name]; ok {
		return s.fields[i], true
	}
	return nil, false
}

// Clone returns an owned deep copy. Rules and messages are copied; types,
// index paths and accessors are shared.
func (s *Schema) Clone() *Schema {
	out := &Schema{
		typ:    s.typ,
		fields: make([]*Field, len(s.fields)),
		byGo:   make(map[string]int, len(s.byGo)),
		byName: make(map[string]int, len(s.byName)),
	}
	for i, f := range s.fields {
		out.fields[i] = f.clone()
	}
	for k, v := range s.byGo {
		out.byGo[k] = v
	}
	for k, v := range s.byName {
		out.byName[k] = v
	}
	return out
}

// AddRule appends rules to a field. String rules are split on '|', so
// AddRule("Text", "min:3|max:10") adds two rules.
func (s *Schema) AddRule(field string, rules ...Rule) error {
	if s.shared {
		return ErrSharedSchema
	}
	f, ok := s.Field(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	f.addRules(rules...)
	return nil
}

// SetMessage sets the failure message of one rule of a field. rule may be a
// bare name ("min") or a full token ("min:3").
func (s *Schema) SetMessage(field, rule, msg string) error {
	if s.shared {
		return ErrSharedSchema
	}
	f, ok := s.Field(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	f.setMessage(rule, msg)
	return nil
}

// Rules aggregates the rules of every field that has any, keyed by external
// name.
func (s *Schema) Rules() map[string][]Rule {
	out := make(map[string][]Rule)
	for _, f := range s.fields {
		if len(f.rules) > 0 {
			out[f.Name] = f.Rules()
		}
	}
	return out
}

// Messages aggregates the field messages keyed "<external>.<rule>".
func (s *Schema) Messages() map[string]string {
	out := make(map[string]string)
	for _, f := range s.fields {
		for rule, msg := range f.messages {
			out[f.Name+"."+rule] = msg
		}
	}
	return out
}
