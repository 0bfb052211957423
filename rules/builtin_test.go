package rules_test

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goarg"
	"github.com/reoring/goarg/rules"
)

// passes runs a single field through a fresh engine.
func passes(t *testing.T, value any, rs ...goarg.Rule) bool {
	t.Helper()
	bag, err := rules.New().Validate(t.Context(), map[string]any{"f": value}, map[string][]goarg.Rule{"f": rs}, nil)
	require.NoError(t, err)
	return bag.IsEmpty()
}

func TestBuiltinRules(t *testing.T) {
	str := func(s string) *string { return &s }
	cases := []struct {
		name  string
		value any
		rule  string
		want  bool
	}{
		{"required blank", "  ", "required", false},
		{"required zero", 0, "required", true},
		{"required nil pointer", (*string)(nil), "required", false},
		{"required pointer", str("x"), "required", true},
		{"required empty list", []any{}, "required", false},
		{"filled", "x", "filled", true},
		{"accepted yes", "yes", "accepted", true},
		{"accepted bool", true, "accepted", true},
		{"accepted no", "no", "accepted", false},
		{"declined", false, "declined", true},
		{"string", "x", "string", true},
		{"string number", 1, "string", false},
		{"integer", json.Number("12"), "integer", true},
		{"integer float", 1.5, "integer", false},
		{"integer whole float", 2.0, "integer", true},
		{"integer string", "42", "integer", true},
		{"numeric string", "1e3", "numeric", true},
		{"numeric bool", true, "numeric", false},
		{"boolean", "1", "boolean", true},
		{"boolean word", "yes", "boolean", false},
		{"array list", []any{1}, "array", true},
		{"array keys", map[string]any{"a": 1}, "array:a,b", true},
		{"array keys rejected", map[string]any{"c": 1}, "array:a,b", false},
		{"json", `{"a":[1]}`, "json", true},
		{"json broken", `{"a":`, "json", false},
		{"uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "uuid", true},
		{"uuid braces", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", "uuid", false},
		{"email", "user@example.com", "email", true},
		{"email display name", "User <user@example.com>", "email", false},
		{"email no tld", "user@localhost", "email", false},
		{"url", "https://example.com/a?b=c", "url", true},
		{"url relative", "/a/b", "url", false},
		{"alpha", "héllo", "alpha", true},
		{"alpha digits", "abc1", "alpha", false},
		{"alpha_num", "abc1", "alpha_num", true},
		{"alpha_dash", "a-b_c1", "alpha_dash", true},
		{"regex delimited", "ABC", "regex:/^[a-z]+$/i", true},
		{"regex bare", "abc", "regex:^[a-z]+$", true},
		{"regex number", 123, "regex:/^\\d+$/", true},
		{"not_regex", "abc", "not_regex:/\\d/", true},
		{"in", "b", "in:a,b", true},
		{"in list", []any{"a", "c"}, "in:a,b", false},
		{"not_in", "c", "not_in:a,b", true},
		{"min string", "ab", "min:3", false},
		{"min runes", "日本語", "min:3", true},
		{"max number", 11, "max:10", false},
		{"size list", []any{1, 2}, "size:2", true},
		{"between", 5, "between:1,10", true},
		{"digits", "0123", "digits:4", true},
		{"digits non digit", "01a3", "digits:4", false},
		{"digits_between", 12345, "digits_between:2,4", false},
		{"gt literal", 3, "gt:2", true},
		{"starts_with", "goarg", "starts_with:x,go", true},
		{"ends_with", "goarg", "ends_with:x", false},
		{"date", "2024-02-29", "date", true},
		{"date invalid", "2023-02-29", "date", false},
		{"date time value", time.Now(), "date", true},
		{"date_format php", "2024-01-02 03:04", "date_format:Y-m-d H:i", true},
		{"date_format go", "02/01/2024", "date_format:02/01/2006", true},
		{"date_format mismatch", "2024-1-2", "date_format:Y-m-d", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, passes(t, tc.value, tc.rule))
		})
	}
}

func TestBlankValuesSkipNonImplicitRules(t *testing.T) {
	assert.True(t, passes(t, "", "email", "min:3"))
	assert.False(t, passes(t, "", "required", "email"))
	assert.True(t, passes(t, nil, "nullable", "string"))
	assert.False(t, passes(t, nil, "string"))
}

func TestNumericFieldsCompareByValue(t *testing.T) {
	assert.False(t, passes(t, "9", "numeric", "min:10"), "numeric strings compare by value")
	assert.True(t, passes(t, "9", "min:1"), "plain strings compare by length")
}

func TestCrossFieldRules(t *testing.T) {
	e := rules.New()
	data := map[string]any{
		"enabled":  true,
		"host":     "",
		"min":      5,
		"max":      3,
		"password": "a",
		"confirm":  "b",
		"nested":   map[string]any{"kind": "tls"},
		"cert":     nil,
	}
	rs := map[string][]goarg.Rule{
		"host":    {"required_if:enabled,true"},
		"max":     {"gte:min"},
		"confirm": {"same:password"},
		"cert":    {"required_if:nested.kind,tls"},
		"missing": {"required_with:password"},
	}
	bag, err := e.Validate(t.Context(), data, rs, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cert", "confirm", "host", "max", "missing"}, bag.Keys(), "fields are checked in name order")
	assert.Equal(t, "The host field is required when enabled is true.", bag.First("host"))
	assert.Equal(t, "The max field must be greater than or equal to 5.", bag.First("max"))
	assert.Equal(t, "The confirm field must match password.", bag.First("confirm"))
}

func TestRuleParameterErrors(t *testing.T) {
	for _, rule := range []string{"min:abc", "regex:/[/", "regex:/a/x", "same", "gt:nofield"} {
		t.Run(rule, func(t *testing.T) {
			_, err := rules.New().Validate(t.Context(), map[string]any{"f": "v"}, map[string][]goarg.Rule{"f": {rule}}, nil)
			require.Error(t, err)
			assert.NotErrorIs(t, err, rules.ErrUnknownRule)
		})
	}
}
