// Package jserrors provides the ES5 native error catalog (TypeError,
// RangeError, ReferenceError, SyntaxError, EvalError, URIError) and the
// completion-record sum type internal/interp uses to thread normal,
// return, break, continue, and throw completions through statement
// evaluation (ES5 §8.9), generalized from the teacher's runtime error
// catalog in internal/interp/runtime/errors.go.
package jserrors

import "fmt"

// Kind names one of the six ES5 native error constructors (ES5 §15.11.6).
type Kind string

const (
	KindError     Kind = "Error"
	KindTypeError Kind = "TypeError"
	KindRangeError Kind = "RangeError"
	KindReferenceError Kind = "ReferenceError"
	KindSyntaxError    Kind = "SyntaxError"
	KindEvalError      Kind = "EvalError"
	KindURIError       Kind = "URIError"
)

// NativeError is a Go error carrying the ES5 error kind and message needed
// to construct the corresponding thrown error object. internal/interp
// converts these into real Error instances (via internal/builtins) at the
// point a Go error crosses back into evaluated code; code below
// internal/interp (lexer, parser, object) only ever needs to describe what
// went wrong, not which heap-allocated object represents it.
type NativeError struct {
	Kind    Kind
	Message string
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func New(kind Kind, format string, args ...interface{}) *NativeError {
	return &NativeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewTypeError(format string, args ...interface{}) *NativeError {
	return New(KindTypeError, format, args...)
}

func NewRangeError(format string, args ...interface{}) *NativeError {
	return New(KindRangeError, format, args...)
}

func NewReferenceError(format string, args ...interface{}) *NativeError {
	return New(KindReferenceError, format, args...)
}

func NewSyntaxError(format string, args ...interface{}) *NativeError {
	return New(KindSyntaxError, format, args...)
}

func NewEvalError(format string, args ...interface{}) *NativeError {
	return New(KindEvalError, format, args...)
}

func NewURIError(format string, args ...interface{}) *NativeError {
	return New(KindURIError, format, args...)
}

// CompletionType tags which alternative of the ES5 §8.9 Completion
// Specification Type a Completion carries.
type CompletionType int

const (
	Normal CompletionType = iota
	Break
	Continue
	Return
	Throw
)

// Completion is the sum type statement evaluation threads upward: every
// statement-level Eval in internal/interp returns one of these instead of
// a bare (Value, error) pair, so that break/continue/return can unwind
// through nested statements without unwinding through Go's own call stack
// via panic/recover.
type Completion struct {
	Type  CompletionType
	Value interface{} // the value.Value payload for Return/Throw; nil otherwise
	Target string      // label name for labelled break/continue; "" if unlabelled
}

func NormalCompletion() Completion { return Completion{Type: Normal} }

func BreakCompletion(label string) Completion {
	return Completion{Type: Break, Target: label}
}

func ContinueCompletion(label string) Completion {
	return Completion{Type: Continue, Target: label}
}

func ReturnCompletion(v interface{}) Completion {
	return Completion{Type: Return, Value: v}
}

func ThrowCompletion(v interface{}) Completion {
	return Completion{Type: Throw, Value: v}
}

// IsAbrupt reports whether c is anything other than a Normal completion
// (ES5 §8.9's "abrupt completion").
func (c Completion) IsAbrupt() bool { return c.Type != Normal }
