package goarg

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// MessageBag collects validation messages per field, keeping the order in
// which fields first failed. A nil *MessageBag is empty.
type MessageBag struct {
	keys     []string
	messages map[string][]string
}

// NewMessageBag returns an empty bag.
func NewMessageBag() *MessageBag {
	return &MessageBag{messages: make(map[string][]string)}
}

// Add appends msg to the messages of field.
func (b *MessageBag) Add(field, msg string) {
	if b.messages == nil {
		b.messages = make(map[string][]string)
	}
	if _, ok := b.messages[field]; !ok {
		b.keys = append(b.keys, field)
	}
	b.messages[field] = append(b.messages[field], msg)
}

// IsEmpty reports whether the bag holds no message.
func (b *MessageBag) IsEmpty() bool { return b.Len() == 0 }

// Len returns the total number of messages.
func (b *MessageBag) Len() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, msgs := range b.messages {
		n += len(msgs)
	}
	return n
}

// Keys returns the failed fields in order.
func (b *MessageBag) Keys() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.keys...)
}

// Has reports whether field has at least one message.
func (b *MessageBag) Has(field string) bool {
	return b != nil && len(b.messages[field]) > 0
}

// Get returns the messages of field.
func (b *MessageBag) Get(field string) []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.messages[field]...)
}

// First returns the first message of field, or the first message of the bag
// when field is omitted. It returns "" when there is none.
func (b *MessageBag) First(field ...string) string {
	if b == nil {
		return ""
	}
	keys := b.keys
	if len(field) > 0 {
		keys = field[:1]
	}
	for _, k := range keys {
		if msgs := b.messages[k]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// All returns every message in field order.
func (b *MessageBag) All() []string {
	if b == nil {
		return nil
	}
	var out []string
	for _, k := range b.keys {
		out = append(out, b.messages[k]...)
	}
	return out
}

// Map returns a copy of the messages keyed by field.
func (b *MessageBag) Map() map[string][]string {
	out := make(map[string][]string)
	if b == nil {
		return out
	}
	for _, k := range b.keys {
		out[k] = append([]string(nil), b.messages[k]...)
	}
	return out
}

// Merge appends every message of other.
func (b *MessageBag) Merge(other *MessageBag) { b.MergePrefixed("", other) }

// MergePrefixed appends every message of other under "<prefix>.<field>".
func (b *MessageBag) MergePrefixed(prefix string, other *MessageBag) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		for _, msg := range other.messages[k] {
			b.Add(key, msg)
		}
	}
}

// Err returns nil for an empty bag and a *ValidationError otherwise.
func (b *MessageBag) Err() error {
	if b.IsEmpty() {
		return nil
	}
	return &ValidationError{Bag: b}
}

// MarshalJSON renders {"field": ["msg", ...]} in field order.
func (b *MessageBag) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(b.messages[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *MessageBag) String() string {
	if b.IsEmpty() {
		return "no messages"
	}
	var sb strings.Builder
	for i, k := range b.keys {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%s: %s", k, strings.Join(b.messages[k], ", "))
	}
	return sb.String()
}

// ValidationError wraps a non-empty MessageBag for callers that prefer an
// error value. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Bag *MessageBag
}

func (e *ValidationError) Error() string {
	n := e.Bag.Len()
	if n <= 1 {
		return "goarg: validation failed: " + e.Bag.First()
	}
	return fmt.Sprintf("goarg: validation failed: %s (and %d more)", e.Bag.First(), n-1)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
