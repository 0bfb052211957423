package goarg

import (
	"context"
	"reflect"
)

// Arg is implemented by pointers to schema-bound structs, that is structs
// embedding Base by value:
//
//	type TextArg struct {
//		goarg.Base
//		Text string `arg:"text" validate:"required|string"`
//	}
type Arg interface {
	argBase() *Base
}

// Initializer is an optional hook run at the end of Bind. It plays the role
// of a constructor: add runtime rules through WritableSchema, or fill fields
// tagged skip_init from the raw input.
type Initializer interface {
	InitArg(ctx context.Context, input map[string]any) error
}

// Base carries the per-instance binding state. Embed it by value.
type Base struct {
	schema   *Schema
	owner    *Base // set when schema is a private clone owned by this Base
	presence PresenceMap
	extra    map[string]any
}

func (b *Base) argBase() *Base { return b }

// Schema returns the descriptor the instance binds with. Until the first
// call to WritableSchema this is the shared, cached Schema. It is nil before
// the instance has been bound.
func (b *Base) Schema() *Schema { return b.schema }

// WritableSchema returns a Schema private to this instance, cloning the
// shared one on first use. Rule and message changes made through it never
// reach the cache or other instances. It returns nil before binding.
func (b *Base) WritableSchema() *Schema {
	if b.schema == nil {
		return nil
	}
	if b.owner != b {
		b.schema = b.schema.Clone()
		b.owner = b
	}
	return b.schema
}

// Presence returns a copy of the presence flags recorded by the last bind,
// keyed by JSON Pointer of the external name ("/first_name").
func (b *Base) Presence() PresenceMap { return b.presence.Clone() }

// Supplied reports whether the named field (Go or external name) was present
// in the input of the last bind.
func (b *Base) Supplied(name string) bool {
	if b.schema != nil {
		if f, ok := b.schema.Field(name); ok {
			name = f.Name
		}
	}
	return b.presence.Seen(pointerOf(name))
}

// Extra returns the unknown input keys kept under UnknownPassthrough.
func (b *Base) Extra() map[string]any {
	out := make(map[string]any, len(b.extra))
	for k, v := range b.extra {
		out[k] = v
	}
	return out
}

func (b *Base) mark(name string, p Presence) {
	if b.presence == nil {
		b.presence = make(PresenceMap)
	}
	b.presence[pointerOf(name)] = p
}

var (
	argType  = reflect.TypeOf((*Arg)(nil)).Elem()
	baseType = reflect.TypeOf(Base{})
)

// isSchemaBound reports whether t is a struct type whose pointer is an Arg.
func isSchemaBound(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(argType)
}

// resetSchema points the instance at the cached schema of its type,
// dropping any private copy left from an earlier bind.
func resetSchema(a Arg) (*Schema, error) {
	s, err := SchemaFor(reflect.TypeOf(a).Elem())
	if err != nil {
		return nil, err
	}
	b := a.argBase()
	b.schema, b.owner = s, nil
	return s, nil
}

// instanceSchema returns the schema an instance validates and serializes
// with: the one it already carries for its type (shared or owned), or the
// cached one.
func instanceSchema(a Arg) (*Schema, error) {
	b := a.argBase()
	t := reflect.TypeOf(a).Elem()
	if b.schema != nil && b.schema.typ == t {
		return b.schema, nil
	}
	s, err := SchemaFor(t)
	if err != nil {
		return nil, err
	}
	b.schema = s
	b.owner = nil
	return s, nil
}
