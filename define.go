package goarg

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// UnionBranch is one alternative of a union-typed (interface) field.
type UnionBranch struct {
	// Type is the branch type; nil for the null branch.
	Type reflect.Type
	// Null marks the absent/null alternative.
	Null bool
}

func (b UnionBranch) String() string {
	if b.Null || b.Type == nil {
		return "null"
	}
	return b.Type.String()
}

// Branch returns the union branch for type B. Schema-bound structs are
// instantiated as *B when the branch is selected.
func Branch[B any]() UnionBranch {
	return UnionBranch{Type: reflect.TypeOf((*B)(nil)).Elem()}
}

// NullBranch returns the null alternative of a union.
func NullBranch() UnionBranch { return UnionBranch{Null: true} }

// registration carries the explicit declarations collected by Define.
type registration struct {
	setters  map[string]SetterFunc
	getters  map[string]GetterFunc
	unions   map[string][]UnionBranch
	rules    map[string][]Rule
	messages map[string]map[string]string
}

var (
	registrationsMu sync.RWMutex
	registrations   = map[reflect.Type]*registration{}
)

func registrationFor(t reflect.Type) *registration {
	registrationsMu.RLock()
	defer registrationsMu.RUnlock()
	return registrations[t]
}

// Definition collects explicit schema declarations for T: accessor function
// references, union branches, and extra rules. Register publishes them; it
// must run before the first bind of T (typically from init).
//
//	goarg.Define[MessageArg]().
//		Union("Content", goarg.Branch[TextArg](), goarg.Branch[FaceArg]()).
//		Setter("Type", func(m *MessageArg, raw any) error { ... }).
//		MustRegister()
type Definition[T any] struct {
	t   reflect.Type
	reg *registration
}

// Define starts a Definition for the schema-bound struct T.
func Define[T any]() *Definition[T] {
	return &Definition[T]{
		t: reflect.TypeOf((*T)(nil)).Elem(),
		reg: &registration{
			setters:  map[string]SetterFunc{},
			getters:  map[string]GetterFunc{},
			unions:   map[string][]UnionBranch{},
			rules:    map[string][]Rule{},
			messages: map[string]map[string]string{},
		},
	}
}

// Setter routes binding of the Go field through fn. fn receives the raw
// input value (a map for nested fields) and owns the assignment.
func (d *Definition[T]) Setter(field string, fn func(a *T, raw any) error) *Definition[T] {
	d.reg.setters[field] = func(_ context.Context, target reflect.Value, raw any) error {
		return fn(target.Addr().Interface().(*T), raw)
	}
	return d
}

// Getter routes serialization of the Go field through fn.
func (d *Definition[T]) Getter(field string, fn func(a *T) (any, error)) *Definition[T] {
	d.reg.getters[field] = func(target reflect.Value) (any, error) {
		return fn(target.Addr().Interface().(*T))
	}
	return d
}

// Union declares the branches of an interface-typed field in order.
func (d *Definition[T]) Union(field string, branches ...UnionBranch) *Definition[T] {
	d.reg.unions[field] = append([]UnionBranch(nil), branches...)
	return d
}

// Rules appends rules to a field on top of its validate tag.
func (d *Definition[T]) Rules(field string, rules ...Rule) *Definition[T] {
	d.reg.rules[field] = append(d.reg.rules[field], rules...)
	return d
}

// Message sets the message of one rule of a field.
func (d *Definition[T]) Message(field, rule, msg string) *Definition[T] {
	m := d.reg.messages[field]
	if m == nil {
		m = map[string]string{}
		d.reg.messages[field] = m
	}
	m[rule] = msg
	return d
}

// Register publishes the definition. It fails with ErrAlreadyScanned when the
// Schema of T has already been cached, and with a ResolutionError when T is
// not schema-bound.
func (d *Definition[T]) Register() error {
	if !isSchemaBound(d.t) {
		return resolutionErrorf(d.t, "type does not embed goarg.Base")
	}
	if _, ok := schemaCache.Load(d.t); ok {
		return fmt.Errorf("%w: %s", ErrAlreadyScanned, d.t)
	}
	registrationsMu.Lock()
	registrations[d.t] = d.reg
	registrationsMu.Unlock()
	logger().Debug("goarg: definition registered", "type", d.t.String())
	return nil
}

// MustRegister is like Register but panics on error.
func (d *Definition[T]) MustRegister() {
	if err := d.Register(); err != nil {
		panic(err)
	}
}
