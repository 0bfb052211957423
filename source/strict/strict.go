// Package strict provides a goarg.JSONDecoder that rejects duplicate object
// keys instead of keeping the last one. It walks the document token by token
// with goccy/go-json.
//
//	goarg.SetJSONDecoder(strict.Decoder())
package strict

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/reoring/goarg"
)

// ErrDuplicateKey is wrapped by errors reporting a repeated object key.
var ErrDuplicateKey = errors.New("duplicate object key")

// Decoder returns the duplicate-rejecting decoder.
func Decoder() goarg.JSONDecoder { return decoder{} }

// Use installs Decoder as the global JSON decoder.
func Use() { goarg.SetJSONDecoder(decoder{}) }

type decoder struct{}

func (decoder) Name() string { return "strict" }

func (decoder) Decode(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("goarg: input must be a JSON object, got %s", describe(tok))
	}
	m, err := readObject(dec, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("goarg: trailing data after JSON object")
	}
	return m, nil
}

// readObject reads members up to the closing brace; the opening brace has
// been consumed. path is the JSON Pointer of the object.
func readObject(dec *json.Decoder, path string) (map[string]any, error) {
	out := map[string]any{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return out, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("goarg: %s: expected object key, got %s", pointer(path), describe(tok))
		}
		at := path + "/" + key
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("goarg: %s: %w", at, ErrDuplicateKey)
		}
		v, err := readValue(dec, at)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
}

func readValue(dec *json.Decoder, path string) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		return readObject(dec, path)
	case '[':
		list := []any{}
		for i := 0; ; i++ {
			if !dec.More() {
				if _, err := dec.Token(); err != nil {
					return nil, err
				}
				return list, nil
			}
			v, err := readValue(dec, fmt.Sprintf("%s/%d", path, i))
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
	}
	return nil, fmt.Errorf("goarg: %s: unexpected %s", pointer(path), describe(tok))
}

func pointer(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func describe(tok any) string {
	switch v := tok.(type) {
	case json.Delim:
		return fmt.Sprintf("%q", v.String())
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
