// Package goarg binds untyped input maps into typed argument structs,
// validates them through a pluggable rule engine and serializes them back in
// declaration order.
//
// An argument struct embeds Base by value. Its fields describe the expected
// input; struct tags add external names, rules and messages:
//
//	type TextArg struct {
//		goarg.Base
//		Text string `arg:"text" validate:"required|string|max:120" msg.required:"text is required"`
//	}
//
//	type SendGroupMessageArg struct {
//		goarg.Base
//		GroupID string  `arg:"group_id" validate:"required|uuid"`
//		Content TextArg `arg:"content"`
//		ReplyTo *TextArg `arg:"reply_to"`
//	}
//
// Field descriptions are computed once per type and cached (SchemaFor).
// Cached schemas are read-only; an instance that needs runtime rules obtains a
// private copy through Base.WritableSchema.
//
// Typical usage:
//
//	input, err := goarg.DecodeJSON(body)
//	arg, err := goarg.New[SendGroupMessageArg](ctx, input)
//	bag, err := goarg.Validate(ctx, arg)
//	out, err := goarg.Serialize(arg)
//
// Design policy:
//   - Keep only public APIs in the root package; put helpers under internal/.
//   - Rule engines live outside the root (rules/) and plug in through Validator.
//   - Validation failures are data (*MessageBag); errors are reserved for bad
//     input shapes and configuration problems.
package goarg
