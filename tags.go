package goarg

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/goarg/internal/tagx"
)

// Struct tag keys recognized by the scanner.
const (
	TagArg      = "arg"      // arg:"name,skip_init,skip_serialize,sanitize" or arg:"-"
	TagValidate = "validate" // validate:"required|min:3"
	TagMessage  = "msg."     // msg.required:"please enter a name"
	TagDefault  = "default"  // default:"blue"
	optSkipInit = "skip_init"
	optSkipSer  = "skip_serialize"
	optSanitize = "sanitize"
)

// ResolveStructKey resolves the external name of a struct field.
// Priority: arg:"name" > json:"name" > Go field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if at, ok := sf.Tag.Lookup(TagArg); ok {
		if at == "-" {
			return "-"
		}
		if name, _ := tagx.SplitOptions(at); name != "" {
			return name
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if name, _ := tagx.SplitOptions(jt); name != "" {
			return name
		}
	}
	return sf.Name
}

// explicitlyNamed reports whether an arg or json tag gives the field a name.
func explicitlyNamed(sf reflect.StructField) bool {
	for _, key := range []string{TagArg, "json"} {
		if v := sf.Tag.Get(key); v != "" {
			if name, _ := tagx.SplitOptions(v); name != "" {
				return true
			}
		}
	}
	return false
}

type fieldTag struct {
	name          string
	ignore        bool
	skipInit      bool
	skipSerialize bool
	sanitize      bool
	rules         []string
	messages      []tagx.Pair
	def           string
	hasDef        bool
}

func parseFieldTag(sf reflect.StructField) (fieldTag, error) {
	ft := fieldTag{name: ResolveStructKey(sf)}
	if ft.name == "-" {
		ft.ignore = true
		return ft, nil
	}
	if at := sf.Tag.Get(TagArg); at != "" {
		_, opts := tagx.SplitOptions(at)
		for _, o := range opts {
			switch o {
			case optSkipInit:
				ft.skipInit = true
			case optSkipSer:
				ft.skipSerialize = true
			case optSanitize:
				ft.sanitize = true
			default:
				return ft, fmt.Errorf("unknown %s tag option %q", TagArg, o)
			}
		}
	}
	ft.rules = tagx.SplitRules(sf.Tag.Get(TagValidate))
	ft.messages = tagx.WithPrefix(string(sf.Tag), TagMessage)
	ft.def, ft.hasDef = sf.Tag.Lookup(TagDefault)
	if strings.ContainsAny(ft.name, " \t") {
		return ft, fmt.Errorf("external name %q contains whitespace", ft.name)
	}
	return ft, nil
}
