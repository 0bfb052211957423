package goarg_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goarg"
)

func TestSchemaFor_Identity(t *testing.T) {
	s1, err := goarg.SchemaFor(reflect.TypeOf(TextArg{}))
	require.NoError(t, err)
	s2, err := goarg.SchemaFor(reflect.TypeOf(&TextArg{}))
	require.NoError(t, err)
	s3, err := goarg.SchemaOf(&TextArg{})
	require.NoError(t, err)

	if s1 != s2 || s2 != s3 {
		t.Fatalf("expected one cached schema, got %p %p %p", s1, s2, s3)
	}
	assert.True(t, s1.Shared())
	assert.Equal(t, reflect.TypeOf(TextArg{}), s1.Type())
}

func TestSchemaFor_ConcurrentFirstUse(t *testing.T) {
	type result struct {
		s   *goarg.Schema
		err error
	}
	const n = 16
	out := make([]result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := goarg.SchemaFor(reflect.TypeOf(VoteArg{}))
			out[i] = result{s, err}
		}(i)
	}
	wg.Wait()
	for i := range out {
		require.NoError(t, out[i].err)
		if out[i].s != out[0].s {
			t.Fatalf("caller %d observed a different schema", i)
		}
	}
}

func TestSchema_FieldsInDeclarationOrder(t *testing.T) {
	s, err := goarg.SchemaFor(reflect.TypeOf(PrimitiveArg{}))
	require.NoError(t, err)
	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "count", "ratio", "ok", "tags", "attrs"}, names)

	f, ok := s.Field("Count")
	require.True(t, ok)
	g, ok := s.Field("count")
	require.True(t, ok)
	assert.Same(t, f, g)
}

func TestSchema_SharedIsReadOnly(t *testing.T) {
	s, err := goarg.SchemaFor(reflect.TypeOf(TextArg{}))
	require.NoError(t, err)
	if err := s.AddRule("text", "max:3"); !errors.Is(err, goarg.ErrSharedSchema) {
		t.Fatalf("want ErrSharedSchema, got %v", err)
	}
	if err := s.SetMessage("text", "max", "x"); !errors.Is(err, goarg.ErrSharedSchema) {
		t.Fatalf("want ErrSharedSchema, got %v", err)
	}

	c := s.Clone()
	assert.False(t, c.Shared())
	require.NoError(t, c.AddRule("text", "min:1|max:3"))
	require.NoError(t, c.SetMessage("Text", "max:3", "too long"))
	f, _ := c.Field("text")
	assert.Equal(t, []goarg.Rule{"required", "string", "min:1", "max:3"}, f.Rules())
	assert.Equal(t, map[string]string{"text.max": "too long"}, c.Messages())

	orig, _ := s.Field("text")
	assert.Equal(t, []goarg.Rule{"required", "string"}, orig.Rules())
	assert.Empty(t, s.Messages())

	if err := c.AddRule("nope", "required"); !errors.Is(err, goarg.ErrUnknownField) {
		t.Fatalf("want ErrUnknownField, got %v", err)
	}
}

func TestWritableSchema_CopyOnWrite(t *testing.T) {
	ctx := t.Context()
	a, err := goarg.New[TextArg](ctx, map[string]any{"text": "a"})
	require.NoError(t, err)
	b, err := goarg.New[TextArg](ctx, map[string]any{"text": "b"})
	require.NoError(t, err)

	shared, _ := goarg.SchemaOf(a)
	assert.Same(t, shared, a.Schema())
	assert.Same(t, shared, b.Schema())

	w := a.WritableSchema()
	require.NotNil(t, w)
	assert.NotSame(t, shared, w)
	assert.Same(t, w, a.WritableSchema(), "second call reuses the private copy")
	require.NoError(t, w.AddRule("text", "max:3"))

	assert.Same(t, shared, b.Schema())
	f, _ := shared.Field("text")
	assert.Equal(t, []goarg.Rule{"required", "string"}, f.Rules())
	f, _ = a.Schema().Field("text")
	assert.Equal(t, []goarg.Rule{"required", "string", "max:3"}, f.Rules())

	var unbound TextArg
	assert.Nil(t, unbound.WritableSchema())
}

func TestScan_ResolutionErrors(t *testing.T) {
	_, err := goarg.SchemaFor(reflect.TypeOf(BrokenArg{}))
	require.Error(t, err)
	if !errors.Is(err, goarg.ErrResolution) {
		t.Fatalf("want ErrResolution, got %v", err)
	}
	var re *goarg.ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, reflect.TypeOf(BrokenArg{}), re.Type)

	// not cached: the same failure every time
	_, err2 := goarg.SchemaFor(reflect.TypeOf(BrokenArg{}))
	require.ErrorIs(t, err2, goarg.ErrResolution)

	_, err = goarg.SchemaFor(reflect.TypeOf(NotBound{}))
	require.ErrorIs(t, err, goarg.ErrResolution)
	_, err = goarg.SchemaFor(reflect.TypeOf(42))
	require.ErrorIs(t, err, goarg.ErrResolution)
	_, err = goarg.SchemaFor(nil)
	require.ErrorIs(t, err, goarg.ErrResolution)
}

func TestScan_IsFresh(t *testing.T) {
	s1, err := goarg.Scan(reflect.TypeOf(TextArg{}))
	require.NoError(t, err)
	s2, err := goarg.Scan(reflect.TypeOf(TextArg{}))
	require.NoError(t, err)
	assert.NotSame(t, s1, s2)
	assert.False(t, s1.Shared())
}

func TestScan_EmbeddedPromotion(t *testing.T) {
	s, err := goarg.SchemaFor(reflect.TypeOf(EmbeddingArg{}))
	require.NoError(t, err)
	var names []string
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"inner", "outer_shared"}, names)
}

func TestDefine_AfterScanFails(t *testing.T) {
	_, err := goarg.SchemaFor(reflect.TypeOf(FaceArg{}))
	require.NoError(t, err)
	err = goarg.Define[FaceArg]().Rules("FaceID", "min:1").Register()
	if !errors.Is(err, goarg.ErrAlreadyScanned) {
		t.Fatalf("want ErrAlreadyScanned, got %v", err)
	}
	err = goarg.Define[NotBound]().Register()
	require.ErrorIs(t, err, goarg.ErrResolution)
}

type typoArg struct {
	goarg.Base
	Name string `arg:"name"`
}

func TestDefine_UnknownFieldIsResolutionError(t *testing.T) {
	goarg.Define[typoArg]().Rules("Nmae", "required").MustRegister()
	_, err := goarg.SchemaFor(reflect.TypeOf(typoArg{}))
	require.ErrorIs(t, err, goarg.ErrResolution)
	assert.Contains(t, err.Error(), "Nmae")
}
