package interp

import (
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/parser"
	"github.com/mras0/mjs-sub001/internal/value"
)

// This file is the surface internal/builtins (and any other package that
// needs to drive the evaluator from the outside, e.g. internal/conformance)
// is meant to use. Everything below wraps an otherwise-unexported piece of
// machinery so builtins never has to reach past this package's boundary.

// NewObject creates an ordinary object and registers it with the managed
// heap, exactly like every object the evaluator itself creates.
func (it *Interpreter) NewObject(class string, proto *object.Object) *object.Object {
	return it.newObject(class, proto)
}

// NewArray creates an Array exotic object of the given length.
func (it *Interpreter) NewArray(length uint32) *object.Object {
	return it.newArray(length)
}

// SetArrayLength adjusts an Array's length property through the exotic
// [[DefineOwnProperty]] behavior (truncating indexed properties as needed).
func (it *Interpreter) SetArrayLength(arr *object.Object, n uint32) {
	it.setArrayLength(arr, n)
}

// NewRegExp compiles a /pattern/flags pair into a RegExp value, shared by
// the `RegExp` constructor and RegExp.prototype.compile.
func (it *Interpreter) NewRegExp(pattern, flags string) (value.Value, *value.Value) {
	return it.newRegExp(pattern, flags)
}

// Call performs ES5 [[Call]] on fn, enforcing the same recursion guard the
// evaluator applies to ordinary call expressions.
func (it *Interpreter) Call(fn *object.Object, this value.Value, args []value.Value) (value.Value, error) {
	return it.callFunction(fn, this, args)
}

// Construct performs ES5 [[Construct]] on fn.
func (it *Interpreter) Construct(fn *object.Object, args []value.Value) (value.Value, error) {
	if fn == nil || fn.Construct == nil {
		return value.Undefined, jserrors.NewTypeError("value is not a constructor")
	}
	it.callDepth++
	if it.callDepth > maxCallDepth {
		it.callDepth--
		return value.Undefined, jserrors.NewRangeError("maximum call stack size exceeded")
	}
	defer func() { it.callDepth-- }()
	return fn.Construct(args)
}

// Get performs ES5 [[Get]] on o, invoking accessor getters through this
// interpreter's call machinery.
func (it *Interpreter) Get(o *object.Object, name string, this value.Value) (value.Value, error) {
	return o.Get(name, this, it.invokeGetter)
}

// Put performs ES5 [[Put]] on o, invoking accessor setters through this
// interpreter's call machinery.
func (it *Interpreter) Put(o *object.Object, name string, v value.Value, throw bool) error {
	return o.Put(name, v, throw, it.invokeSetter)
}

// DefaultValue runs ES5 [[DefaultValue]] (the valueOf/toString dance) on o.
func (it *Interpreter) DefaultValue(o *object.Object, hint string) (value.Value, error) {
	return it.defaultValue(o, hint)
}

// EvalGlobal parses src as a Program and runs it against the global
// environment, the same evaluation path Run uses. The Function constructor
// uses this to turn its assembled "(function (...) {...})" source into a
// live function value.
func (it *Interpreter) EvalGlobal(src string) (value.Value, error) {
	p := parser.New(src)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return value.Undefined, jserrors.NewSyntaxError(errs[0].Error())
	}
	return it.Run(prog)
}

// SetGlobalEval records fn as the function object that the identifier
// `eval`, resolved unshadowed through the global environment, must compare
// equal to in order for a call to be direct eval (ES5 §15.1.2.1.1).
func (it *Interpreter) SetGlobalEval(fn *object.Object) {
	it.GlobalEval = fn
}
