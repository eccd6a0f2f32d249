// Package es5 is the public, consumer-facing surface of the interpreter:
// the five operations spec.md §6 lists (create a heap, parse source into a
// program, create an interpreter bound to a heap, evaluate a program,
// render a value as its ES5 ToString form) plus heap introspection. It
// mirrors the shape of the teacher repo's pkg/dwscript package (a thin
// façade over the internal/ packages), adapted to this project's five-
// operation contract.
package es5

import (
	"github.com/mras0/mjs-sub001/internal/ast"
	"github.com/mras0/mjs-sub001/internal/builtins"
	"github.com/mras0/mjs-sub001/internal/heap"
	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/parser"
	"github.com/mras0/mjs-sub001/internal/value"
)

// Version tags the ECMAScript edition a Parse/Interpreter pair targets.
// Only Es5 exists today; spec.md §1 excludes "any non-ES5 version gating",
// but the original engine's Parse/Interpreter both take an explicit
// version tag (see SPEC_FULL.md), so this project keeps the parameter for
// forward compatibility rather than hard-coding the tag away.
type Version int

const (
	Es5 Version = iota
)

// Heap wraps internal/heap.Heap, the fixed-capacity arena every value in
// an Interpreter is allocated from.
type Heap struct {
	h *heap.Heap
}

// NewHeap creates a heap whose capacity is a count of live object entries
// (slots), passed straight to internal/heap; it is not a byte budget. A
// capacity of 0 selects internal/heap's default.
func NewHeap(capacity int) *Heap {
	return &Heap{h: heap.New(capacity)}
}

// UsePercentage reports how full the heap is, 0..100.
func (h *Heap) UsePercentage() int { return h.h.UsePercentage() }

// GarbageCollect runs a collection cycle now. Safe to call at any point
// between evaluations; never required for correctness, only to reclaim
// space (spec.md §4.A).
func (h *Heap) GarbageCollect() { h.h.GarbageCollect() }

// Program is a parsed, not-yet-evaluated ES5 program.
type Program struct {
	prog *ast.Program
}

// ParseError reports every syntax error a Parse call accumulated.
type ParseError struct {
	Errors []error
}

func (e *ParseError) Error() string {
	if len(e.Errors) == 0 {
		return "parse error"
	}
	return e.Errors[0].Error()
}

// Parse compiles source text (name is used only for diagnostics) into a
// Program under the given version tag. Parse errors are early errors per
// spec.md §4.F/§7: they are returned here and never reach evaluation.
func Parse(name, source string, version Version) (*Program, error) {
	p := parser.New(source)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		wrapped := make([]error, len(errs))
		for i, e := range errs {
			wrapped[i] = e
		}
		return nil, &ParseError{Errors: wrapped}
	}
	return &Program{prog: prog}, nil
}

// Interpreter is a bound (heap, prototype graph, global object) runtime
// instance. Each Interpreter owns an independent heap and prototype graph
// (spec.md §5's "a second interpreter instance uses a fully independent
// heap"); nothing is shared across instances.
type Interpreter struct {
	it *interp.Interpreter
}

// NewInterpreter builds an Interpreter bound to h, bootstrapping the full
// ES5 standard library (internal/builtins.Install) before returning. version
// currently only selects Es5.
func NewInterpreter(h *Heap, version Version) *Interpreter {
	it := interp.NewWithHeap(h.h)
	builtins.Install(it)
	return &Interpreter{it: it}
}

// Eval runs prog against this Interpreter's global environment and returns
// its completion value. A thrown, uncaught exception surfaces as a non-nil
// error (possibly a *ThrownValue, for callers that want the thrown value
// itself rather than just its message).
func (in *Interpreter) Eval(prog *Program) (Value, error) {
	v, err := in.it.Run(prog.prog)
	if err != nil {
		return Value{}, wrapThrown(in.it, err)
	}
	return Value{it: in.it, v: v}, nil
}

// ThrownValue wraps an uncaught ES5 exception so callers that care which
// value was thrown (not just its message) can retrieve it via Value().
type ThrownValue struct {
	it  *interp.Interpreter
	val value.Value
	msg string
}

func (e *ThrownValue) Error() string { return e.msg }

// Value returns the thrown ES5 value itself, scoped to the Interpreter
// that threw it.
func (e *ThrownValue) Value() Value { return Value{it: e.it, v: e.val} }

type valueGetter interface{ Value() value.Value }

func wrapThrown(it *interp.Interpreter, err error) error {
	vg, ok := err.(valueGetter)
	if !ok {
		return err
	}
	return &ThrownValue{it: it, val: vg.Value(), msg: err.Error()}
}

// ToString converts an arbitrary value to its ES5 ToString form
// (spec.md §6 item 4).
func (in *Interpreter) ToString(v Value) (string, error) {
	s, err := in.it.ToStringValue(v.v)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

// Value is an opaque handle to an ES5 runtime value, scoped to the
// Interpreter that produced it.
type Value struct {
	it *interp.Interpreter
	v  value.Value
}

// IsBoolean and BooleanValue let callers (notably internal/conformance)
// check the suite's "expects a boolean true result" contract without
// reaching into internal/value directly.
func (v Value) IsBoolean() bool    { return v.v.IsBoolean() }
func (v Value) BooleanValue() bool { return v.v.BoolValue() }

// ErrorKind re-exports internal/jserrors.Kind values for callers that need
// to classify a thrown error (e.g. the conformance driver reporting
// "expected TypeError, got RangeError").
type ErrorKind = jserrors.Kind

const (
	KindError          = jserrors.KindError
	KindTypeError      = jserrors.KindTypeError
	KindRangeError     = jserrors.KindRangeError
	KindReferenceError = jserrors.KindReferenceError
	KindSyntaxError    = jserrors.KindSyntaxError
	KindEvalError      = jserrors.KindEvalError
	KindURIError       = jserrors.KindURIError
)
