package goarg

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Codec converts between the wire form A and the field type B. Registered
// codecs take over binding and serialization of every field of type B.
type Codec[A, B any] interface {
	Decode(ctx context.Context, a A) (B, error)
	Encode(ctx context.Context, b B) (A, error)
}

type fieldCodec struct {
	wire   reflect.Type
	decode func(ctx context.Context, a reflect.Value) (any, error)
	encode func(ctx context.Context, b any) (any, error)
}

var (
	codecsMu sync.RWMutex
	codecs   = map[reflect.Type]fieldCodec{}
)

// RegisterCodec installs c for fields of type B, replacing any previous codec
// for that type.
func RegisterCodec[A, B any](c Codec[A, B]) {
	bt := reflect.TypeOf((*B)(nil)).Elem()
	fc := fieldCodec{
		wire: reflect.TypeOf((*A)(nil)).Elem(),
		decode: func(ctx context.Context, a reflect.Value) (any, error) {
			return c.Decode(ctx, a.Interface().(A))
		},
		encode: func(ctx context.Context, b any) (any, error) {
			return c.Encode(ctx, b.(B))
		},
	}
	codecsMu.Lock()
	codecs[bt] = fc
	codecsMu.Unlock()
	logger().Debug("goarg: codec registered", "type", bt.String(), "wire", fc.wire.String())
}

// UnregisterCodec removes the codec of type B, if any.
func UnregisterCodec[B any]() {
	bt := reflect.TypeOf((*B)(nil)).Elem()
	codecsMu.Lock()
	delete(codecs, bt)
	codecsMu.Unlock()
}

func codecFor(t reflect.Type) (fieldCodec, bool) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	c, ok := codecs[t]
	return c, ok
}

func decodeWithCodec(ctx context.Context, c fieldCodec, t reflect.Type, raw any, o coerceOptions) (reflect.Value, error) {
	a, err := coerce(ctx, c.wire, raw, o)
	if err != nil {
		return reflect.Value{}, err
	}
	b, err := c.decode(ctx, a)
	if err != nil {
		return reflect.Value{}, err
	}
	v := reflect.ValueOf(b)
	if !v.IsValid() || v.Type() != t {
		return reflect.Value{}, fmt.Errorf("codec for %s returned %T", t, b)
	}
	return v, nil
}
