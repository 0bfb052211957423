// Package middleware adapts goarg to HTTP handlers: decode the JSON body,
// bind it into an argument struct, validate it, and either reject the
// request or hand the bound argument to the next handler.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reoring/goarg"
)

// ctxKeyArg is a typed context key for storing a bound *T.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyArg[T any] struct{}

// ContextWithArg attaches a bound argument to the context.
func ContextWithArg[T any](ctx context.Context, arg *T) context.Context {
	return context.WithValue(ctx, ctxKeyArg[T]{}, arg)
}

// ArgFromContext retrieves the bound argument stored by BindJSON.
func ArgFromContext[T any](ctx context.Context) (*T, bool) {
	v, ok := ctx.Value(ctxKeyArg[T]{}).(*T)
	return v, ok
}

// DefaultBindOpt returns a recommended default for HTTP JSON boundaries:
// unknown keys are dropped and no weak type conversion happens.
func DefaultBindOpt() goarg.BindOpt {
	return goarg.BindOpt{Unknown: goarg.UnknownStrip, MaxDepth: goarg.DefaultMaxDepth}
}

// ErrorPayload shapes a failed MessageBag for JSON responses.
func ErrorPayload(bag *goarg.MessageBag) map[string]any {
	return map[string]any{"message": bag.First(), "errors": bag}
}

// InputErrorPayload shapes a decode or bind error for JSON responses.
func InputErrorPayload(err error) map[string]any {
	out := map[string]any{"message": err.Error()}
	if ie, ok := goarg.AsInvalidInput(err); ok && ie.Field != "" {
		out["field"] = ie.Field
	}
	return out
}

// Result is the outcome of Process. Arg is set only when Status is 200.
type Result[T any] struct {
	Arg     *T
	Status  int
	Payload map[string]any
}

// Process decodes r's JSON body into a new T and validates it. Malformed
// bodies and bind failures yield 400, validation failures 422, validator
// configuration problems 500.
func Process[T any, PT interface {
	*T
	goarg.Arg
}](r *http.Request, opt goarg.BindOpt) Result[T] {
	ctx := r.Context()
	input, err := goarg.DecodeJSONReader(r.Body)
	if err != nil {
		return Result[T]{Status: http.StatusBadRequest, Payload: InputErrorPayload(err)}
	}
	arg, err := goarg.New[T, PT](ctx, input, opt)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, goarg.ErrResolution) {
			status = http.StatusInternalServerError
		}
		return Result[T]{Status: status, Payload: InputErrorPayload(err)}
	}
	bag, err := goarg.Validate(ctx, PT(arg))
	if err != nil {
		goarg.Logger().Error("middleware: validation misconfigured", "path", r.URL.Path, "error", err)
		return Result[T]{Status: http.StatusInternalServerError, Payload: map[string]any{"message": "internal error"}}
	}
	if !bag.IsEmpty() {
		return Result[T]{Status: http.StatusUnprocessableEntity, Payload: ErrorPayload(bag)}
	}
	return Result[T]{Arg: arg, Status: http.StatusOK}
}

// BindJSON wraps next: the request body is bound into a new T and
// validated, and the argument is stored in the request context
// (ArgFromContext). Failures are answered with a JSON error payload.
func BindJSON[T any, PT interface {
	*T
	goarg.Arg
}](next http.Handler, opts ...goarg.BindOpt) http.Handler {
	opt := DefaultBindOpt()
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := Process[T, PT](r, opt)
		if res.Status != http.StatusOK {
			WriteJSON(w, res.Status, res.Payload)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithArg(r.Context(), res.Arg)))
	})
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
