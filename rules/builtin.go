package rules

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var builtins = map[string]definition{
	"required":            {fn: required, implicit: true},
	"present":             {fn: present, implicit: true},
	"filled":              {fn: filled, implicit: true},
	"accepted":            {fn: accepted, implicit: true},
	"accepted_if":         {fn: acceptedIf, implicit: true},
	"declined":            {fn: declined, implicit: true},
	"required_if":         {fn: requiredIf, implicit: true},
	"required_with":       {fn: requiredWith, implicit: true},
	"required_array_keys": {fn: requiredArrayKeys},
	"string":              {fn: isStringRule},
	"integer":             {fn: integer},
	"numeric":             {fn: numeric},
	"boolean":             {fn: boolean},
	"array":               {fn: array},
	"json":                {fn: jsonRule},
	"uuid":                {fn: uuidRule},
	"email":               {fn: email},
	"url":                 {fn: urlRule},
	"alpha":               {fn: charset(isAlpha)},
	"alpha_num":           {fn: charset(isAlphaNum)},
	"alpha_dash":          {fn: charset(isAlphaDash)},
	"regex":               {fn: regex(true)},
	"not_regex":           {fn: regex(false)},
	"in":                  {fn: in(true)},
	"not_in":              {fn: in(false)},
	"min":                 {fn: sizeCompare(func(n, p float64) bool { return n >= p })},
	"max":                 {fn: sizeCompare(func(n, p float64) bool { return n <= p })},
	"size":                {fn: sizeCompare(func(n, p float64) bool { return n == p })},
	"between":             {fn: between},
	"digits":              {fn: digits},
	"digits_between":      {fn: digitsBetween},
	"gt":                  {fn: fieldCompare(func(a, b float64) bool { return a > b })},
	"gte":                 {fn: fieldCompare(func(a, b float64) bool { return a >= b })},
	"lt":                  {fn: fieldCompare(func(a, b float64) bool { return a < b })},
	"lte":                 {fn: fieldCompare(func(a, b float64) bool { return a <= b })},
	"starts_with":         {fn: affix(strings.HasPrefix)},
	"ends_with":           {fn: affix(strings.HasSuffix)},
	"same":                {fn: same(true)},
	"different":           {fn: same(false)},
	"date":                {fn: date},
	"date_format":         {fn: dateFormat},
}

func param(c Check, i int) (string, error) {
	if i >= len(c.Params) {
		return "", fmt.Errorf("missing parameter %d", i+1)
	}
	return c.Params[i], nil
}

func numParam(c Check, i int) (float64, error) {
	s, err := param(c, i)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %q is not a number", s)
	}
	return f, nil
}

func required(_ context.Context, c Check) (bool, error) { return !isEmpty(c.Value), nil }

func present(_ context.Context, c Check) (bool, error) {
	_, ok := c.Data[c.Attribute]
	return ok, nil
}

func filled(_ context.Context, c Check) (bool, error) {
	if _, ok := c.Data[c.Attribute]; !ok {
		return true, nil
	}
	return !isEmpty(c.Value), nil
}

func accepted(_ context.Context, c Check) (bool, error) {
	switch looseString(c.Value) {
	case "yes", "on", "1", "true":
		return true, nil
	}
	return false, nil
}

func declined(_ context.Context, c Check) (bool, error) {
	switch looseString(c.Value) {
	case "no", "off", "0", "false":
		return c.Value != nil, nil
	}
	return false, nil
}

// otherMatches reports whether the field named by the first parameter equals
// one of the remaining parameters.
func otherMatches(c Check) (bool, error) {
	other, err := param(c, 0)
	if err != nil {
		return false, err
	}
	v, ok := valueAt(c.Data, other)
	if !ok {
		return false, nil
	}
	s := looseString(v)
	for _, want := range c.Params[1:] {
		if s == want || (want == "true" && s == "1") || (want == "false" && s == "0") {
			return true, nil
		}
	}
	return false, nil
}

func acceptedIf(ctx context.Context, c Check) (bool, error) {
	match, err := otherMatches(c)
	if err != nil || !match {
		return true, err
	}
	return accepted(ctx, c)
}

func requiredIf(_ context.Context, c Check) (bool, error) {
	match, err := otherMatches(c)
	if err != nil || !match {
		return true, err
	}
	return !isEmpty(c.Value), nil
}

func requiredWith(_ context.Context, c Check) (bool, error) {
	for _, other := range c.Params {
		if v, ok := valueAt(c.Data, other); ok && !isEmpty(v) {
			return !isEmpty(c.Value), nil
		}
	}
	return true, nil
}

func requiredArrayKeys(_ context.Context, c Check) (bool, error) {
	rv := reflect.ValueOf(c.Value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return false, nil
	}
	for _, k := range c.Params {
		if !rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).IsValid() {
			return false, nil
		}
	}
	return true, nil
}

func isStringRule(_ context.Context, c Check) (bool, error) {
	_, ok := asString(c.Value)
	return ok, nil
}

func integer(_ context.Context, c Check) (bool, error) { return isInteger(c.Value), nil }

func numeric(_ context.Context, c Check) (bool, error) {
	_, ok := toNumber(c.Value)
	return ok, nil
}

func boolean(_ context.Context, c Check) (bool, error) {
	if _, ok := c.Value.(bool); ok {
		return true, nil
	}
	switch looseString(c.Value) {
	case "0", "1":
		return true, nil
	}
	return false, nil
}

// array accepts lists and objects; parameters restrict the allowed keys.
func array(_ context.Context, c Check) (bool, error) {
	rv := reflect.ValueOf(c.Value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return len(c.Params) == 0, nil
	case reflect.Map:
		if len(c.Params) == 0 {
			return true, nil
		}
		allowed := make(map[string]bool, len(c.Params))
		for _, p := range c.Params {
			allowed[p] = true
		}
		iter := rv.MapRange()
		for iter.Next() {
			if !allowed[fmt.Sprint(iter.Key().Interface())] {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}

func jsonRule(_ context.Context, c Check) (bool, error) {
	s, ok := asString(c.Value)
	return ok && json.Valid([]byte(s)), nil
}

func uuidRule(_ context.Context, c Check) (bool, error) {
	s, ok := asString(c.Value)
	if !ok || len(s) != 36 {
		return false, nil
	}
	_, err := uuid.Parse(s)
	return err == nil, nil
}

func email(_ context.Context, c Check) (bool, error) {
	s, ok := asString(c.Value)
	if !ok {
		return false, nil
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], "."), nil
}

func urlRule(_ context.Context, c Check) (bool, error) {
	s, ok := asString(c.Value)
	if !ok {
		return false, nil
	}
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != "" && u.Host != "", nil
}

func isAlpha(r rune) bool    { return unicode.IsLetter(r) || unicode.IsMark(r) }
func isAlphaNum(r rune) bool { return isAlpha(r) || unicode.IsNumber(r) }
func isAlphaDash(r rune) bool {
	return isAlphaNum(r) || r == '-' || r == '_'
}

func charset(allowed func(rune) bool) Func {
	return func(_ context.Context, c Check) (bool, error) {
		s, ok := asString(c.Value)
		if !ok {
			if !isNumberType(c.Value) {
				return false, nil
			}
			s = looseString(c.Value)
		}
		for _, r := range s {
			if !allowed(r) {
				return false, nil
			}
		}
		return s != "", nil
	}
}

var regexCache sync.Map // pattern -> *regexp.Regexp

// compilePattern accepts "/body/flags" delimited patterns as well as bare
// Go regular expressions. The i, m, s and u flags are honored.
func compilePattern(p string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(p); ok {
		return re.(*regexp.Regexp), nil
	}
	expr := p
	if len(p) >= 2 && strings.IndexByte("/#~!@%", p[0]) >= 0 {
		delim := p[0]
		if end := strings.LastIndexByte(p, delim); end > 0 {
			expr = p[1:end]
			var flags strings.Builder
			for _, f := range p[end+1:] {
				switch f {
				case 'i', 'm', 's':
					flags.WriteRune(f)
				case 'u':
				default:
					return nil, fmt.Errorf("unsupported regex flag %q", f)
				}
			}
			if flags.Len() > 0 {
				expr = "(?" + flags.String() + ")" + expr
			}
		}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	regexCache.Store(p, re)
	return re, nil
}

func regex(want bool) Func {
	return func(_ context.Context, c Check) (bool, error) {
		p, err := param(c, 0)
		if err != nil {
			return false, err
		}
		re, err := compilePattern(p)
		if err != nil {
			return false, err
		}
		s, ok := asString(c.Value)
		if !ok {
			if !isNumberType(c.Value) {
				return false, nil
			}
			s = looseString(c.Value)
		}
		return re.MatchString(s) == want, nil
	}
}

func in(want bool) Func {
	return func(_ context.Context, c Check) (bool, error) {
		rv := reflect.ValueOf(c.Value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				if contains(c.Params, looseString(rv.Index(i).Interface())) != want {
					return false, nil
				}
			}
			return true, nil
		}
		return contains(c.Params, looseString(c.Value)) == want, nil
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sizeCompare(ok func(n, p float64) bool) Func {
	return func(_ context.Context, c Check) (bool, error) {
		p, err := numParam(c, 0)
		if err != nil {
			return false, err
		}
		n, _, valid := sizeOf(c.Value, c.Numeric)
		return valid && ok(n, p), nil
	}
}

func between(_ context.Context, c Check) (bool, error) {
	lo, err := numParam(c, 0)
	if err != nil {
		return false, err
	}
	hi, err := numParam(c, 1)
	if err != nil {
		return false, err
	}
	n, _, valid := sizeOf(c.Value, c.Numeric)
	return valid && n >= lo && n <= hi, nil
}

func digitString(v any) (string, bool) {
	s := looseString(v)
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}

func digits(_ context.Context, c Check) (bool, error) {
	n, err := numParam(c, 0)
	if err != nil {
		return false, err
	}
	s, ok := digitString(c.Value)
	return ok && float64(len(s)) == n, nil
}

func digitsBetween(_ context.Context, c Check) (bool, error) {
	lo, err := numParam(c, 0)
	if err != nil {
		return false, err
	}
	hi, err := numParam(c, 1)
	if err != nil {
		return false, err
	}
	s, ok := digitString(c.Value)
	return ok && float64(len(s)) >= lo && float64(len(s)) <= hi, nil
}

// fieldCompare compares the size of the value with another field, or with a
// number when no field of that name exists.
func fieldCompare(ok func(a, b float64) bool) Func {
	return func(_ context.Context, c Check) (bool, error) {
		p, err := param(c, 0)
		if err != nil {
			return false, err
		}
		n, kind, valid := sizeOf(c.Value, c.Numeric)
		if !valid {
			return false, nil
		}
		if other, found := valueAt(c.Data, p); found {
			m, okind, valid := sizeOf(other, c.Numeric)
			if !valid || okind != kind {
				return false, nil
			}
			return ok(n, m), nil
		}
		m, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return false, fmt.Errorf("%q is neither a field nor a number", p)
		}
		return ok(n, m), nil
	}
}

func affix(match func(s, affix string) bool) Func {
	return func(_ context.Context, c Check) (bool, error) {
		s, ok := asString(c.Value)
		if !ok {
			return false, nil
		}
		for _, p := range c.Params {
			if match(s, p) {
				return true, nil
			}
		}
		return false, nil
	}
}

func same(want bool) Func {
	return func(_ context.Context, c Check) (bool, error) {
		p, err := param(c, 0)
		if err != nil {
			return false, err
		}
		other, _ := valueAt(c.Data, p)
		return reflect.DeepEqual(c.Value, other) == want, nil
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
}

func date(_ context.Context, c Check) (bool, error) {
	if _, ok := c.Value.(time.Time); ok {
		return true, nil
	}
	s, ok := asString(c.Value)
	if !ok {
		return false, nil
	}
	for _, l := range dateLayouts {
		if _, err := time.Parse(l, s); err == nil {
			return true, nil
		}
	}
	return false, nil
}

// phpLayout translates the common date() format characters into a Go
// layout. Strings already written as Go layouts pass through unchanged.
var phpLayout = strings.NewReplacer(
	"Y", "2006", "y", "06", "m", "01", "n", "1", "d", "02", "j", "2",
	"H", "15", "G", "15", "i", "04", "s", "05", "A", "PM", "a", "pm",
	"D", "Mon", "l", "Monday", "M", "Jan", "F", "January", "P", "-07:00", "O", "-0700", "T", "MST",
)

func dateFormat(_ context.Context, c Check) (bool, error) {
	layout, err := param(c, 0)
	if err != nil {
		return false, err
	}
	s, ok := asString(c.Value)
	if !ok {
		return false, nil
	}
	if !strings.Contains(layout, "2006") {
		layout = phpLayout.Replace(layout)
	}
	t, err := time.Parse(layout, s)
	return err == nil && t.Format(layout) == s, nil
}
