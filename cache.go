package goarg

import (
	"reflect"
	"sync"
)

// schemaCache maps reflect.Type -> *Schema. Entries are published once and
// never mutated afterwards.
var schemaCache sync.Map

// SchemaFor returns the cached Schema of a schema-bound struct type (or a
// pointer to one), scanning it on first request. Repeated calls return the
// same *Schema. Concurrent first requests may scan more than once; the first
// published result wins and is returned to every caller.
//
// Resolution errors are not cached: every call on a broken type fails.
func SchemaFor(t reflect.Type) (*Schema, error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, &ResolutionError{Cause: errNilType}
	}
	if s, ok := schemaCache.Load(t); ok {
		return s.(*Schema), nil
	}
	s, err := Scan(t)
	if err != nil {
		logger().Warn("goarg: schema resolution failed", "type", t.String(), "error", err)
		return nil, err
	}
	s.shared = true
	actual, loaded := schemaCache.LoadOrStore(t, s)
	if !loaded {
		logger().Debug("goarg: schema cached", "type", t.String(), "fields", s.Len())
	}
	return actual.(*Schema), nil
}

// SchemaOf returns the cached Schema of arg's dynamic type.
func SchemaOf(arg Arg) (*Schema, error) { return SchemaFor(reflect.TypeOf(arg)) }

// ResetSchemaCache drops every cached Schema. It exists for tests; production
// code never needs it.
func ResetSchemaCache() {
	schemaCache.Range(func(k, _ any) bool {
		schemaCache.Delete(k)
		return true
	})
}
