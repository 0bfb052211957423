// Package tagx lexes struct tags and rule strings for the scanner.
package tagx

import (
	"strconv"
	"strings"
)

// Pair is one key:"value" entry of a struct tag.
type Pair struct {
	Key   string
	Value string
}

// Pairs splits a struct tag into its key:"value" entries in declaration order.
// It follows the conventional format understood by reflect.StructTag, but
// unlike StructTag.Lookup it returns every entry so that prefixed keys such
// as msg.required can be enumerated. Malformed trailing input is ignored.
func Pairs(tag string) []Pair {
	var out []Pair
	for tag != "" {
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}

		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			break
		}
		key := tag[:i]
		tag = tag[i+1:]

		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		qvalue := tag[:i+1]
		tag = tag[i+1:]

		value, err := strconv.Unquote(qvalue)
		if err != nil {
			break
		}
		out = append(out, Pair{Key: key, Value: value})
	}
	return out
}

// WithPrefix returns the entries whose key starts with prefix, with the prefix
// removed from the key. Entries with an empty remainder are dropped.
func WithPrefix(tag, prefix string) []Pair {
	var out []Pair
	for _, p := range Pairs(tag) {
		if !strings.HasPrefix(p.Key, prefix) {
			continue
		}
		k := strings.TrimPrefix(p.Key, prefix)
		if k == "" {
			continue
		}
		out = append(out, Pair{Key: k, Value: p.Value})
	}
	return out
}

// SplitOptions splits an option list such as "first_name,skip_init" into the
// leading name and the remaining options. Whitespace around items is trimmed.
func SplitOptions(s string) (name string, opts []string) {
	parts := strings.Split(s, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p != "" {
			opts = append(opts, p)
		}
	}
	return name, opts
}

// SplitRules expands a pipe-delimited rule string ("min:3|max:10") into its
// tokens. Empty tokens are dropped.
func SplitRules(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RuleName returns the name part of a rule token: "min:3" -> "min".
func RuleName(token string) string {
	if i := strings.IndexByte(token, ':'); i >= 0 {
		return token[:i]
	}
	return token
}

// RuleParams returns the comma separated parameters of a rule token:
// "in:1,2" -> ["1", "2"]. The regex rules keep their parameter intact.
func RuleParams(token string) []string {
	i := strings.IndexByte(token, ':')
	if i < 0 {
		return nil
	}
	name, rest := token[:i], token[i+1:]
	switch name {
	case "regex", "not_regex", "date_format":
		return []string{rest}
	}
	return strings.Split(rest, ",")
}
