package goarg_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goarg"
	"github.com/reoring/goarg/codec"
)

func TestBind_PrimitiveRoundTrip(t *testing.T) {
	input := map[string]any{
		"name":  "alice",
		"count": 3,
		"ratio": 0.5,
		"ok":    true,
		"tags":  []string{"a", "b"},
		"attrs": map[string]string{"k": "v"},
	}
	arg, err := goarg.New[PrimitiveArg](t.Context(), input)
	require.NoError(t, err)

	out, err := goarg.Serialize(arg)
	require.NoError(t, err)
	if diff := cmp.Diff(input, out.Map()); diff != "" {
		t.Fatalf("round trip mismatch (-in +out):\n%s\narg: %s", diff, spew.Sdump(arg))
	}
}

func TestBind_JSONRoundTripKeepsDeclarationOrder(t *testing.T) {
	doc := `{"attrs":{"k":"v"},"tags":["a","b"],"ok":true,"ratio":0.5,"count":3,"name":"alice"}`
	input, err := goarg.DecodeJSON([]byte(doc))
	require.NoError(t, err)
	arg, err := goarg.New[PrimitiveArg](t.Context(), input)
	require.NoError(t, err)
	assert.Equal(t, 3, arg.Count)
	assert.Equal(t, 0.5, arg.Ratio)

	out, err := goarg.Serialize(arg)
	require.NoError(t, err)
	b, err := out.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(b))
	assert.Equal(t, `{"name":"alice","count":3,"ratio":0.5,"ok":true,"tags":["a","b"],"attrs":{"k":"v"}}`, string(b))
}

func TestBind_DefaultsPerType(t *testing.T) {
	arg, err := goarg.New[DefaultsArg](t.Context(), map[string]any{})
	require.NoError(t, err)

	assert.Equal(t, "", arg.S)
	assert.Equal(t, 0, arg.I)
	assert.Equal(t, 0.0, arg.F)
	assert.False(t, arg.B)
	require.NotNil(t, arg.List)
	assert.Empty(t, arg.List)
	require.NotNil(t, arg.Object)
	assert.Empty(t, arg.Object)
	assert.Nil(t, arg.Ptr)
	assert.Nil(t, arg.Any)
	assert.NotNil(t, arg.Nested.Schema(), "nested arg is constructed with empty input")
	assert.Nil(t, arg.Maybe)
	require.NotNil(t, arg.Many)
	assert.Empty(t, arg.Many)

	assert.Equal(t, "blue", arg.Color)
	assert.Equal(t, []int{1, 2, 3}, arg.Sizes)
	assert.True(t, arg.Enabled)
	require.NotNil(t, arg.Limit)
	assert.Equal(t, 10, *arg.Limit)

	assert.Equal(t, goarg.PresenceDefaultApplied, arg.Presence()["/S"])
	assert.False(t, arg.Supplied("S"))
}

func TestBind_DefaultLiteralsAreNotShared(t *testing.T) {
	a, err := goarg.New[DefaultsArg](t.Context(), nil)
	require.NoError(t, err)
	b, err := goarg.New[DefaultsArg](t.Context(), nil)
	require.NoError(t, err)
	a.Sizes[0] = 99
	a.List = append(a.List, "x")
	a.Object["k"] = 1
	assert.Equal(t, []int{1, 2, 3}, b.Sizes)
	assert.Empty(t, b.List)
	assert.Empty(t, b.Object)
}

type ballotDefaultsArg struct {
	goarg.Base
	Opts []*VoteOptionArg     `arg:"opts" default:"[{\"label\":\"a\"}]"`
	Tags map[string][]string `arg:"tags" default:"{\"k\":[\"x\"]}"`
}

func TestBind_NestedDefaultLiteralsAreNotShared(t *testing.T) {
	ctx := t.Context()
	a, err := goarg.New[ballotDefaultsArg](ctx, nil)
	require.NoError(t, err)
	b, err := goarg.New[ballotDefaultsArg](ctx, nil)
	require.NoError(t, err)

	require.Len(t, a.Opts, 1)
	require.Len(t, b.Opts, 1)
	assert.NotSame(t, a.Opts[0], b.Opts[0])
	a.Opts[0].Label = "changed"
	a.Tags["k"][0] = "changed"

	assert.Equal(t, "a", b.Opts[0].Label)
	assert.Equal(t, []string{"x"}, b.Tags["k"])

	s, err := goarg.SchemaOf(b)
	require.NoError(t, err)
	f, ok := s.Field("opts")
	require.True(t, ok)
	opts, ok := f.Default().([]*VoteOptionArg)
	require.True(t, ok)
	require.Len(t, opts, 1)
	assert.Equal(t, "a", opts[0].Label)
	assert.NotSame(t, a.Opts[0], opts[0])

	f, ok = s.Field("tags")
	require.True(t, ok)
	assert.Equal(t, map[string][]string{"k": {"x"}}, f.Default())
}

func TestBind_DefaultsDoNotOverwritePresetValues(t *testing.T) {
	arg := &DefaultsArg{Color: "red"}
	require.NoError(t, goarg.Bind(t.Context(), arg, map[string]any{}))
	assert.Equal(t, "red", arg.Color)
}

func TestBind_NameOverride(t *testing.T) {
	input := map[string]any{
		"first_name": "Ada",
		"FirstName":  "ignored",
		"last_name":  "Lovelace",
		"Nick":       "ignored",
		"Internal":   "ignored",
		"Age":        36,
	}
	arg, err := goarg.New[RenamedArg](t.Context(), input)
	require.NoError(t, err)
	assert.Equal(t, "Ada", arg.FirstName)
	assert.Equal(t, "Lovelace", arg.LastName)
	assert.Empty(t, arg.Nick)
	assert.Empty(t, arg.Internal)
	assert.Equal(t, 36, arg.Age)

	out, err := goarg.Serialize(arg)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_name", "last_name", "Age"}, out.Keys())
	assert.True(t, arg.Supplied("first_name"))
	assert.True(t, arg.Supplied("FirstName"), "Go names resolve to the external name")
}

func TestBind_UnknownPolicies(t *testing.T) {
	ctx := t.Context()
	input := map[string]any{"text": "hi", "zeta": 1, "alpha": 2}

	arg := &TextArg{}
	require.NoError(t, goarg.Bind(ctx, arg, input))
	assert.Empty(t, arg.Extra())

	err := goarg.Bind(ctx, &TextArg{}, input, goarg.BindOpt{Unknown: goarg.UnknownStrict})
	require.ErrorIs(t, err, goarg.ErrInvalidInput)
	require.ErrorIs(t, err, goarg.ErrUnknownField)
	ie, ok := goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "alpha", ie.Field, "unknown keys are reported in sorted order")

	arg = &TextArg{}
	require.NoError(t, goarg.Bind(ctx, arg, input, goarg.BindOpt{Unknown: goarg.UnknownPassthrough}))
	assert.Equal(t, map[string]any{"zeta": 1, "alpha": 2}, arg.Extra())

	// the last option wins
	require.NoError(t, goarg.Bind(ctx, &TextArg{}, input,
		goarg.BindOpt{Unknown: goarg.UnknownStrict}, goarg.BindOpt{Unknown: goarg.UnknownStrip}))
}

func TestBind_DefaultBindOpt(t *testing.T) {
	t.Cleanup(func() { goarg.SetDefaultBindOpt(goarg.BindOpt{}) })
	goarg.SetDefaultBindOpt(goarg.BindOpt{Unknown: goarg.UnknownStrict})
	assert.Equal(t, goarg.DefaultMaxDepth, goarg.DefaultBindOpt().MaxDepth)

	err := goarg.Bind(t.Context(), &TextArg{}, map[string]any{"x": 1})
	require.ErrorIs(t, err, goarg.ErrUnknownField)
}

func TestBind_WeakTypes(t *testing.T) {
	input := map[string]any{"name": 12, "count": "42", "ratio": "1.5", "ok": "yes", "tags": "solo"}

	_, err := goarg.New[PrimitiveArg](t.Context(), input)
	require.Error(t, err)
	ie, ok := goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "name", ie.Field)

	arg, err := goarg.New[PrimitiveArg](t.Context(), input, goarg.BindOpt{WeakTypes: true})
	require.NoError(t, err)
	assert.Equal(t, "12", arg.Name)
	assert.Equal(t, 42, arg.Count)
	assert.Equal(t, 1.5, arg.Ratio)
	assert.True(t, arg.OK)
	assert.Equal(t, []string{"solo"}, arg.Tags)
}

func TestBind_NumberEdgeCases(t *testing.T) {
	ctx := t.Context()
	_, err := goarg.New[PrimitiveArg](ctx, map[string]any{"count": 1.5})
	require.ErrorIs(t, err, goarg.ErrInvalidInput)

	arg, err := goarg.New[PrimitiveArg](ctx, map[string]any{"count": 2.0})
	require.NoError(t, err)
	assert.Equal(t, 2, arg.Count)

	_, err = goarg.New[PrimitiveArg](ctx, map[string]any{"count": nil})
	ie, ok := goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "count", ie.Field)
	assert.Equal(t, "null is not allowed", ie.Reason)

	_, err = goarg.New[PrimitiveArg](ctx, map[string]any{"count": math.Pow(2, 63)})
	require.ErrorIs(t, err, goarg.ErrInvalidInput, "2^63 does not fit in an int64")

	arg, err = goarg.New[PrimitiveArg](ctx, map[string]any{"count": -math.Pow(2, 63)})
	require.NoError(t, err)
	assert.Equal(t, math.MinInt64, arg.Count)
}

func TestBind_NestedFromJSONString(t *testing.T) {
	arg, err := goarg.New[OuterArg](t.Context(), map[string]any{
		"title": "t",
		"a":     `{"text":"from string"}`,
		"b":     map[string]any{"text": "from map"},
	})
	require.NoError(t, err)
	assert.Equal(t, "from string", arg.A.Text)
	assert.Equal(t, "from map", arg.B.Text)
	assert.True(t, arg.A.Supplied("text"))
}

func TestBind_NestedErrorsCarryPath(t *testing.T) {
	ctx := t.Context()
	_, err := goarg.New[OuterArg](ctx, map[string]any{"a": 5})
	ie, ok := goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "a", ie.Field)

	_, err = goarg.New[OuterArg](ctx, map[string]any{"b": map[string]any{"text": 7}})
	ie, ok = goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "b.text", ie.Field)

	_, err = goarg.New[OuterArg](ctx, map[string]any{"a": nil})
	require.ErrorIs(t, err, goarg.ErrInvalidInput)
}

func TestBind_NestedSequence(t *testing.T) {
	ctx := t.Context()
	arg, err := goarg.New[VoteArg](ctx, map[string]any{
		"subject": "lunch",
		"options": []any{map[string]any{"label": "ramen"}, map[string]any{"label": "soba"}},
	})
	require.NoError(t, err)
	require.Len(t, arg.Options, 2)
	assert.Equal(t, "ramen", arg.Options[0].Label)
	assert.Equal(t, "soba", arg.Options[1].Label)
	assert.NotNil(t, arg.Options[1].Schema())

	_, err = goarg.New[VoteArg](ctx, map[string]any{"options": []any{map[string]any{"label": "x"}, "bad"}})
	ie, ok := goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "options.1", ie.Field)

	_, err = goarg.New[VoteArg](ctx, map[string]any{"options": []any{map[string]any{"label": true}}})
	ie, ok = goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "options.0.label", ie.Field)

	_, err = goarg.New[VoteArg](ctx, map[string]any{"options": "nope"})
	require.ErrorIs(t, err, goarg.ErrInvalidInput)
}

func TestBind_UnionTieBreak(t *testing.T) {
	arg, err := goarg.New[UnionArg](t.Context(), map[string]any{})
	require.NoError(t, err)

	assert.Nil(t, arg.Maybe, "TextArg|null defaults to null")
	either, ok := arg.Either.(*TextArg)
	require.Truef(t, ok, "TextArg|FaceArg defaults to *TextArg, got %T", arg.Either)
	assert.NotNil(t, either.Schema())
	assert.Equal(t, "", arg.Scalar, "string|int defaults to the first primitive branch")

	s, err := goarg.SchemaOf(arg)
	require.NoError(t, err)
	maybe, _ := s.Field("maybe")
	assert.Equal(t, goarg.DefaultNull, maybe.DefaultKind)
	assert.Equal(t, "TextArg", maybe.Nested.Name())
	e, _ := s.Field("either")
	assert.Equal(t, goarg.DefaultNested, e.DefaultKind)
	assert.Equal(t, "TextArg", e.Nested.Name())
}

func TestBind_UnionValues(t *testing.T) {
	arg, err := goarg.New[UnionArg](t.Context(), map[string]any{
		"maybe":  map[string]any{"text": "hello"},
		"either": nil,
		"scalar": 7,
	})
	require.Error(t, err, "either has no null branch")

	arg, err = goarg.New[UnionArg](t.Context(), map[string]any{
		"maybe":  map[string]any{"text": "hello"},
		"scalar": 7,
	})
	require.NoError(t, err)
	require.IsType(t, &TextArg{}, arg.Maybe)
	assert.Equal(t, "hello", arg.Maybe.(*TextArg).Text)
	assert.Equal(t, 7, arg.Scalar)

	arg, err = goarg.New[UnionArg](t.Context(), map[string]any{"maybe": nil, "scalar": "s"})
	require.NoError(t, err)
	assert.Nil(t, arg.Maybe)
	assert.Equal(t, goarg.PresenceSeen|goarg.PresenceWasNull, arg.Presence()["/maybe"])
	assert.Equal(t, "s", arg.Scalar)

	_, err = goarg.New[UnionArg](t.Context(), map[string]any{"scalar": true})
	require.ErrorIs(t, err, goarg.ErrInvalidInput)
}

func TestBind_AccessorPrecedence(t *testing.T) {
	arg, err := goarg.New[AccessorArg](t.Context(), map[string]any{"name": "bob", "code": "c1"})
	require.NoError(t, err)
	assert.Equal(t, "BOB", arg.Name, "convention setter instead of direct assignment")
	assert.Equal(t, "from-define:c1", arg.Code, "registered setter wins over the convention method")

	out, err := goarg.Serialize(arg)
	require.NoError(t, err)
	v, _ := out.Get("name")
	assert.Equal(t, "name:BOB", v)
}

type quantityArg struct {
	goarg.Base
	Qty int `arg:"qty"`
}

func (a *quantityArg) SetQty(n int) error {
	if n < 0 {
		return errors.New("negative quantity")
	}
	a.Qty = n
	return nil
}

func TestBind_ConventionSetterFollowsCallOptions(t *testing.T) {
	ctx := t.Context()
	arg, err := goarg.New[quantityArg](ctx, map[string]any{"qty": "7"}, goarg.BindOpt{WeakTypes: true})
	require.NoError(t, err)
	assert.Equal(t, 7, arg.Qty)

	_, err = goarg.New[quantityArg](ctx, map[string]any{"qty": "7"})
	require.ErrorIs(t, err, goarg.ErrInvalidInput)

	_, err = goarg.New[quantityArg](ctx, map[string]any{"qty": -1})
	var ie *goarg.InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "qty", ie.Field)
}

func TestBind_SkipInitAndInitializer(t *testing.T) {
	arg, err := goarg.New[SecretArg](t.Context(), map[string]any{"user": "u", "password": "p", "token": "t"})
	require.NoError(t, err)
	assert.Equal(t, "p", arg.Password)
	assert.Equal(t, "tok:t", arg.Token)
	assert.True(t, arg.Supplied("token"))
}

func TestBind_Sanitize(t *testing.T) {
	arg, err := goarg.New[SanitizedArg](t.Context(), map[string]any{"bio": `<b>hi</b> <script>alert(1)</script>there`})
	require.NoError(t, err)
	assert.Equal(t, "hi there", arg.Bio)
}

type nodeArg struct {
	goarg.Base
	Name  string   `arg:"name"`
	Child *nodeArg `arg:"child"`
}

func TestBind_MaxDepth(t *testing.T) {
	input := map[string]any{"child": map[string]any{"child": map[string]any{"child": map[string]any{}}}}
	arg, err := goarg.New[nodeArg](t.Context(), input)
	require.NoError(t, err)
	require.NotNil(t, arg.Child.Child.Child)
	assert.Nil(t, arg.Child.Child.Child.Child)

	_, err = goarg.New[nodeArg](t.Context(), input, goarg.BindOpt{MaxDepth: 2})
	ie, ok := goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "child.child.child", ie.Field)
}

type replyHolderArg struct {
	goarg.Base
	Reply *TextArg `arg:"reply"`
}

func (a *replyHolderArg) SetReply(r *TextArg) { a.Reply = r }

type threadArg struct {
	goarg.Base
	Reply *threadArg `arg:"reply"`
}

func (a *threadArg) SetReply(r *threadArg) { a.Reply = r }

func TestBind_SetterNestedFollowsCallOptions(t *testing.T) {
	ctx := t.Context()
	input := map[string]any{"reply": map[string]any{"text": "x", "bogus": 1}}

	arg, err := goarg.New[replyHolderArg](ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "x", arg.Reply.Text)

	_, err = goarg.New[replyHolderArg](ctx, input, goarg.BindOpt{Unknown: goarg.UnknownStrict})
	require.ErrorIs(t, err, goarg.ErrUnknownField)
	ie, ok := goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "reply.bogus", ie.Field)

	arg, err = goarg.New[replyHolderArg](ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, arg.Reply, "absent nullable values skip the setter")
}

func TestBind_SetterNestedCountsDepth(t *testing.T) {
	input := map[string]any{"reply": map[string]any{"reply": map[string]any{"reply": map[string]any{}}}}
	arg, err := goarg.New[threadArg](t.Context(), input)
	require.NoError(t, err)
	require.NotNil(t, arg.Reply.Reply.Reply)
	assert.Nil(t, arg.Reply.Reply.Reply.Reply)

	_, err = goarg.New[threadArg](t.Context(), input, goarg.BindOpt{MaxDepth: 2})
	ie, ok := goarg.AsInvalidInput(err)
	require.True(t, ok)
	assert.Equal(t, "reply.reply.reply", ie.Field)
}

func TestBind_RebindStartsFromCachedSchema(t *testing.T) {
	ctx := t.Context()
	arg := &TextMessageArg{}
	for range 3 {
		require.NoError(t, goarg.Bind(ctx, arg, map[string]any{"text": "hi"}))
	}
	f, ok := arg.Schema().Field("text")
	require.True(t, ok)
	assert.Equal(t, []goarg.Rule{"required", "string", "max:120"}, f.Rules())
}

func TestBind_NilTarget(t *testing.T) {
	var arg *TextArg
	err := goarg.Bind(t.Context(), arg, nil)
	require.ErrorIs(t, err, goarg.ErrInvalidInput)
}

type eventArg struct {
	goarg.Base
	At    time.Time     `arg:"at"`
	Every time.Duration `arg:"every"`
	Until *time.Time    `arg:"until"`
}

func TestBind_Codecs(t *testing.T) {
	codec.RegisterDefaults()
	t.Cleanup(func() {
		goarg.UnregisterCodec[time.Time]()
		goarg.UnregisterCodec[time.Duration]()
	})

	arg, err := goarg.New[eventArg](t.Context(), map[string]any{
		"at":    "2024-01-02T03:04:05+09:00",
		"every": "1m30s",
		"until": "2024-02-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.True(t, arg.At.Equal(time.Date(2024, 1, 1, 18, 4, 5, 0, time.UTC)))
	assert.Equal(t, 90*time.Second, arg.Every)
	require.NotNil(t, arg.Until)

	out, err := goarg.Serialize(arg)
	require.NoError(t, err)
	want := map[string]any{"at": "2024-01-01T18:04:05Z", "every": "1m30s", "until": "2024-02-01T00:00:00Z"}
	if diff := cmp.Diff(want, out.Map()); diff != "" {
		t.Fatalf("serialized codecs (-want +got):\n%s", diff)
	}

	_, err = goarg.New[eventArg](t.Context(), map[string]any{"every": "soon"})
	require.ErrorIs(t, err, goarg.ErrInvalidInput)
	if errors.Is(err, goarg.ErrResolution) {
		t.Fatalf("bad input must not be a resolution error")
	}
}
