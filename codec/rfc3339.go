// Package codec provides field codecs for goarg.RegisterCodec.
package codec

import (
	"context"
	"fmt"
	"time"

	"github.com/reoring/goarg"
)

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and time.Time.
func TimeRFC3339() goarg.Codec[string, time.Time] { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) Decode(_ context.Context, a string) (time.Time, error) {
	t, err := parseRFC3339(a)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid RFC3339 time %q: %w", a, err)
	}
	return t, nil
}

func (rfc3339Codec) Encode(_ context.Context, b time.Time) (string, error) {
	return formatRFC3339Canonical(b), nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}

// Duration returns a Codec that converts between time.ParseDuration strings
// ("1h30m") and time.Duration.
func Duration() goarg.Codec[string, time.Duration] { return durationCodec{} }

type durationCodec struct{}

func (durationCodec) Decode(_ context.Context, a string) (time.Duration, error) {
	d, err := time.ParseDuration(a)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", a, err)
	}
	return d, nil
}

func (durationCodec) Encode(_ context.Context, b time.Duration) (string, error) {
	return b.String(), nil
}

// Func builds a Codec from a pair of functions.
func Func[A, B any](decode func(context.Context, A) (B, error), encode func(context.Context, B) (A, error)) goarg.Codec[A, B] {
	return funcCodec[A, B]{decode: decode, encode: encode}
}

type funcCodec[A, B any] struct {
	decode func(context.Context, A) (B, error)
	encode func(context.Context, B) (A, error)
}

func (c funcCodec[A, B]) Decode(ctx context.Context, a A) (B, error) { return c.decode(ctx, a) }
func (c funcCodec[A, B]) Encode(ctx context.Context, b B) (A, error) { return c.encode(ctx, b) }

// RegisterDefaults registers TimeRFC3339 for time.Time fields and Duration
// for time.Duration fields.
func RegisterDefaults() {
	goarg.RegisterCodec(TimeRFC3339())
	goarg.RegisterCodec(Duration())
}
