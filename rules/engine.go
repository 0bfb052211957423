// Package rules is the built-in rule engine. Importing it installs Default
// as the validator used by goarg.Validate.
//
// Rules are Laravel-style tokens: "required", "min:3", "in:a,b",
// "regex:/^[a-z]+$/i". Unknown rule names are configuration errors.
package rules

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/reoring/goarg"
	"github.com/reoring/goarg/i18n"
	"github.com/reoring/goarg/internal/tagx"
)

// ErrUnknownRule is returned for a rule name no engine function handles.
var ErrUnknownRule = errors.New("rules: unknown rule")

// Check is the input of a rule function.
type Check struct {
	Attribute string         // external field name
	Value     any            // dereferenced field value
	Params    []string       // parameters of the token ("min:3" -> ["3"])
	Data      map[string]any // every field of the arg being validated
	Numeric   bool           // the field declares numeric or integer
}

// Func reports whether c passes. An error aborts validation.
type Func func(ctx context.Context, c Check) (bool, error)

// Rule is an opaque rule value usable in Define().Rules and AddRule.
type Rule interface {
	RuleName() string
	Check(ctx context.Context, c Check) (bool, error)
}

type funcRule struct {
	name string
	fn   Func
}

func (r funcRule) RuleName() string                                 { return r.name }
func (r funcRule) Check(ctx context.Context, c Check) (bool, error) { return r.fn(ctx, c) }

// Custom wraps fn as a Rule named name. Its message is looked up under
// "<field>.<name>" first, then under name in the translator.
func Custom(name string, fn Func) Rule { return funcRule{name: name, fn: fn} }

type definition struct {
	fn       Func
	implicit bool // runs on empty values
}

// Engine evaluates rule tokens. The zero value is not usable; use New.
type Engine struct {
	mu    sync.RWMutex
	funcs map[string]definition

	// Translator renders default messages. nil selects the built-in
	// dictionary of goarg.Language().
	Translator i18n.Translator
}

// New returns an Engine with every built-in rule registered.
func New() *Engine {
	e := &Engine{funcs: make(map[string]definition, len(builtins))}
	for name, d := range builtins {
		e.funcs[name] = d
	}
	return e
}

// Register adds or replaces a named rule. Implicit rules run even when the
// value is empty, as required does.
func (e *Engine) Register(name string, fn Func, implicit bool) {
	e.mu.Lock()
	e.funcs[name] = definition{fn: fn, implicit: implicit}
	e.mu.Unlock()
}

func (e *Engine) lookup(name string) (definition, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.funcs[name]
	return d, ok
}

// markers shape evaluation and never fail by themselves.
var markers = map[string]bool{"nullable": true, "bail": true, "sometimes": true}

// sizeRules have per-type message variants ("min.string").
var sizeRules = map[string]bool{
	"min": true, "max": true, "between": true, "size": true,
	"gt": true, "gte": true, "lt": true, "lte": true,
}

// Validate implements goarg.Validator. Fields are checked in name order;
// every failing rule of a field adds one message unless the field declares
// bail.
func (e *Engine) Validate(ctx context.Context, data map[string]any, rules map[string][]goarg.Rule, messages map[string]string) (*goarg.MessageBag, error) {
	bag := goarg.NewMessageBag()
	fields := make([]string, 0, len(rules))
	for f := range rules {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	tr := e.translator()

	for _, field := range fields {
		list := rules[field]
		raw, present := data[field]
		value := deref(raw)

		names := make(map[string]bool, len(list))
		for _, r := range list {
			names[goarg.RuleName(r)] = true
		}
		if names["sometimes"] && !present {
			continue
		}
		numeric := names["numeric"] || names["integer"]

		for _, r := range list {
			name := goarg.RuleName(r)
			if markers[name] {
				continue
			}
			var (
				params   []string
				check    func(context.Context, Check) (bool, error)
				implicit bool
			)
			switch rv := r.(type) {
			case string:
				d, ok := e.lookup(name)
				if !ok {
					return nil, fmt.Errorf("%w %q on %s", ErrUnknownRule, name, field)
				}
				params, check, implicit = tagx.RuleParams(rv), d.fn, d.implicit
			case Rule:
				check = rv.Check
				if ir, ok := rv.(interface{ Implicit() bool }); ok {
					implicit = ir.Implicit()
				}
			default:
				return nil, fmt.Errorf("%w: %T on %s", ErrUnknownRule, r, field)
			}
			if !implicit && (isBlankString(value) || (value == nil && names["nullable"])) {
				continue
			}
			c := Check{Attribute: field, Value: value, Params: params, Data: data, Numeric: numeric}
			ok, err := check(ctx, c)
			if err != nil {
				return nil, fmt.Errorf("rules: %s on %s: %w", name, field, err)
			}
			if ok {
				continue
			}
			bag.Add(field, e.message(tr, messages, c, name))
			if names["bail"] {
				break
			}
		}
	}
	return bag, nil
}

func (e *Engine) translator() i18n.Translator {
	if e.Translator != nil {
		return e.Translator
	}
	return i18n.Dictionary(goarg.Language())
}

func (e *Engine) message(tr i18n.Translator, messages map[string]string, c Check, name string) string {
	data := placeholders(c, name)
	if msg, ok := messages[c.Attribute+"."+name]; ok {
		return i18n.Format(msg, data)
	}
	code := name
	if sizeRules[name] {
		_, kind, _ := sizeOf(c.Value, c.Numeric)
		if kind == "" {
			kind = sizeNumeric
		}
		code = name + "." + string(kind)
	}
	return tr.Message(code, data)
}

func placeholders(c Check, name string) map[string]string {
	data := map[string]string{"attribute": strings.ReplaceAll(c.Attribute, "_", " ")}
	p := c.Params
	at := func(i int) string {
		if i < len(p) {
			return p[i]
		}
		return ""
	}
	switch name {
	case "min":
		data["min"] = at(0)
	case "max":
		data["max"] = at(0)
	case "size":
		data["size"] = at(0)
	case "between", "digits_between":
		data["min"], data["max"] = at(0), at(1)
	case "digits":
		data["digits"] = at(0)
	case "gt", "gte", "lt", "lte":
		v := at(0)
		if other, ok := valueAt(c.Data, v); ok {
			if n, _, ok := sizeOf(other, c.Numeric); ok {
				v = formatNumber(n)
			}
		}
		data["value"] = v
	case "same", "different":
		data["other"] = strings.ReplaceAll(at(0), "_", " ")
	case "required_if", "accepted_if":
		data["other"] = strings.ReplaceAll(at(0), "_", " ")
		if len(p) > 1 {
			data["value"] = strings.Join(p[1:], ", ")
		}
	case "date_format":
		data["format"] = at(0)
	default:
		data["values"] = strings.Join(p, ", ")
	}
	return data
}

// Default is the engine installed by this package.
var Default = New()

func init() { goarg.SetValidator(Default) }
