package goarg_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reoring/goarg"
)

func TestSerialize_SkipSerialize(t *testing.T) {
	arg, err := goarg.New[SecretArg](t.Context(), map[string]any{"user": "u", "password": "p", "token": "t"})
	require.NoError(t, err)
	out, err := goarg.Serialize(arg)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "token"}, out.Keys())
	_, ok := out.Get("password")
	assert.False(t, ok)
}

func TestSerialize_Nested(t *testing.T) {
	ctx := t.Context()
	arg, err := goarg.New[VoteArg](ctx, map[string]any{
		"subject": "lunch",
		"options": []any{map[string]any{"label": "ramen"}, map[string]any{"label": "soba"}},
	})
	require.NoError(t, err)
	out, err := goarg.Serialize(arg)
	require.NoError(t, err)
	want := map[string]any{
		"subject": "lunch",
		"options": []any{map[string]any{"label": "ramen"}, map[string]any{"label": "soba"}},
	}
	if diff := cmp.Diff(want, out.Map()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	u, err := goarg.New[UnionArg](ctx, map[string]any{"maybe": map[string]any{"text": "x"}})
	require.NoError(t, err)
	out, err = goarg.Serialize(u)
	require.NoError(t, err)
	want = map[string]any{
		"maybe":  map[string]any{"text": "x"},
		"either": map[string]any{"text": ""},
		"scalar": "",
	}
	if diff := cmp.Diff(want, out.Map()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestSerialize_OmitDefaulted(t *testing.T) {
	arg, err := goarg.New[PrimitiveArg](t.Context(), map[string]any{"name": "x", "attrs": nil})
	require.NoError(t, err)

	full, err := goarg.Serialize(arg)
	require.NoError(t, err)
	assert.Equal(t, 6, full.Len())

	sparse, err := goarg.Serialize(arg, goarg.SerializeOpt{OmitDefaulted: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "attrs"}, sparse.Keys(), "null input is kept")
}

func TestSerialize_Nil(t *testing.T) {
	var arg *TextArg
	out, err := goarg.Serialize(arg)
	require.NoError(t, err)
	assert.Nil(t, out)
}

type failingGetterArg struct {
	goarg.Base
	Name string `arg:"name"`
}

func (a *failingGetterArg) GetName() (string, error) { return "", errors.New("boom") }

func TestSerialize_GetterError(t *testing.T) {
	arg, err := goarg.New[failingGetterArg](t.Context(), map[string]any{"name": "x"})
	require.NoError(t, err)
	_, err = goarg.Serialize(arg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestOrderedMap_Operations(t *testing.T) {
	m := goarg.NewOrderedMap()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("c", 3)
	m.Set("b", 4)
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	v, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, 4, v)

	m.Delete("a")
	m.Delete("missing")
	assert.Equal(t, []string{"b", "c"}, m.Keys())
	assert.Equal(t, 2, m.Len())

	b, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":4,"c":3}`, string(b))
}

func TestOrderedMap_YAMLKeepsOrder(t *testing.T) {
	arg, err := goarg.New[OuterArg](t.Context(), map[string]any{
		"title": "t",
		"a":     map[string]any{"text": "x"},
		"b":     map[string]any{"text": "y"},
	})
	require.NoError(t, err)
	out, err := goarg.Serialize(arg)
	require.NoError(t, err)

	b, err := yaml.Marshal(out)
	require.NoError(t, err)
	doc := string(b)
	ti, ai, bi := strings.Index(doc, "title:"), strings.Index(doc, "a:"), strings.Index(doc, "b:")
	if !(ti >= 0 && ti < ai && ai < bi) {
		t.Fatalf("unexpected key order:\n%s", doc)
	}

	back, err := goarg.DecodeYAML(b)
	require.NoError(t, err)
	if diff := cmp.Diff(out.Map(), back); diff != "" {
		t.Fatalf("yaml round trip (-want +got):\n%s", diff)
	}
}
