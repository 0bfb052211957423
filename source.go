package goarg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// JSONDecoder turns a JSON document into the input map consumed by Bind.
// The default implementation is based on goccy/go-json and may be swapped
// with SetJSONDecoder.
type JSONDecoder interface {
	Decode(r io.Reader) (map[string]any, error)
	Name() string
}

var (
	jsonDecoderMu      sync.RWMutex
	currentJSONDecoder JSONDecoder = goccyDecoder{}
)

// SetJSONDecoder replaces the global JSON decoder; nil values are ignored.
func SetJSONDecoder(d JSONDecoder) {
	if d == nil {
		return
	}
	jsonDecoderMu.Lock()
	currentJSONDecoder = d
	jsonDecoderMu.Unlock()
}

// UseDefaultJSONDecoder restores the goccy/go-json decoder.
func UseDefaultJSONDecoder() {
	jsonDecoderMu.Lock()
	currentJSONDecoder = goccyDecoder{}
	jsonDecoderMu.Unlock()
}

func getJSONDecoder() JSONDecoder {
	jsonDecoderMu.RLock()
	d := currentJSONDecoder
	jsonDecoderMu.RUnlock()
	return d
}

// goccyDecoder keeps numbers as json.Number so integers survive intact.
type goccyDecoder struct{}

func (goccyDecoder) Decode(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level value")
	}
	return asObject(v)
}

func (goccyDecoder) Name() string { return "goccy/go-json" }

// DecodeJSON decodes a JSON object into a Bind input map.
func DecodeJSON(b []byte) (map[string]any, error) {
	return DecodeJSONReader(bytes.NewReader(b))
}

// DecodeJSONReader decodes a JSON object read from r.
func DecodeJSONReader(r io.Reader) (map[string]any, error) {
	m, err := getJSONDecoder().Decode(r)
	if err != nil {
		return nil, invalidInput("", "malformed JSON", err)
	}
	return m, nil
}

// DecodeYAML decodes a YAML mapping into a Bind input map. Non-string keys
// are dropped.
func DecodeYAML(b []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, invalidInput("", "malformed YAML", err)
	}
	m, err := asObject(yamlNormalizeValue(v))
	if err != nil {
		return nil, invalidInput("", "", err)
	}
	return m, nil
}

func asObject(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case nil:
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("top-level value must be an object, got %T", v)
}

// yamlAnyToStringMap converts YAML-decoded values (which may contain
// map[any]any) into JSON-like map[string]any recursively. Non-map roots
// return nil.
func yamlAnyToStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = yamlNormalizeValue(vv)
		}
		return out
	default:
		return nil
	}
}

func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return yamlAnyToStringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
