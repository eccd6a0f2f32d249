// Package builtins installs the ES5 standard library onto an
// *interp.Interpreter's prototype skeleton: Object, Function, Array,
// String, Boolean, Number, Math, Date, RegExp, the Error family, JSON, and
// the global functions (eval, parseInt, parseFloat, isNaN, isFinite, the
// URI functions). Install is the single entry point; it must run after
// interp.New and before any script is evaluated, since the skeleton it
// builds on only links empty prototypes together.
package builtins

import (
	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// arg returns args[i] or undefined if the call didn't supply that many
// arguments, matching ES5's "missing argument reads as undefined" rule
// every built-in relies on.
func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined
}

// thisObject coerces this to an object via ToObject, producing the
// TypeError ES5 mandates for every Object/Array/String-ish prototype
// method invoked on undefined/null.
func thisObject(it *interp.Interpreter, this value.Value) (*object.Object, error) {
	return it.ToObject(this)
}

// nativeFunc wraps a Go closure as a callable function object (never
// constructible unless the caller also sets Construct) carrying the given
// `length` and `name`; defineMethod is what installs it as a writable,
// non-enumerable, configurable data property per spec.md §4.J.
func nativeFunc(it *interp.Interpreter, name string, length int, fn object.CallFunc) *object.Object {
	f := it.NewObject("Function", it.FunctionPrototype)
	f.Call = fn
	f.DefineDataProperty("length", value.Number(float64(length)), false, false, true)
	f.DefineDataProperty("name", value.StrFromGo(name), false, false, true)
	return f
}

// defineMethod installs a native function as a non-enumerable method on o.
func defineMethod(it *interp.Interpreter, o *object.Object, name string, length int, fn object.CallFunc) {
	o.DefineDataProperty(name, value.Object(nativeFunc(it, name, length, fn)), true, false, true)
}

// defineConstant installs a non-writable, non-enumerable, non-configurable
// data property, the shape spec.md §3 invariant 4 requires for things like
// Math.PI and Number.MAX_VALUE.
func defineConstant(o *object.Object, name string, v value.Value) {
	o.DefineDataProperty(name, v, false, false, false)
}

// newTypeError/newRangeError build the Go errors that cross back through
// internal/interp's errorToThrown/ThrowValue conversion into a thrown ES5
// Error object of the right kind.
func newTypeError(format string, args ...interface{}) error {
	return jserrors.NewTypeError(format, args...)
}

func newRangeError(format string, args ...interface{}) error {
	return jserrors.NewRangeError(format, args...)
}

func newURIError(format string, args ...interface{}) error {
	return jserrors.NewURIError(format, args...)
}

func newSyntaxError(format string, args ...interface{}) error {
	return jserrors.NewSyntaxError(format, args...)
}

// toInt clamps a float64 into a platform int, saturating like the
// evaluator's array index math does.
func toInt(n float64) int {
	const maxInt = int(^uint(0) >> 1)
	const minInt = -maxInt - 1
	if n != n { // NaN
		return 0
	}
	if n > float64(maxInt) {
		return maxInt
	}
	if n < float64(minInt) {
		return minInt
	}
	return int(n)
}

func indexKey(i int) string {
	if i == 0 {
		return "0"
	}
	digits := make([]byte, 0, 12)
	for i > 0 {
		digits = append(digits, byte('0'+i%10))
		i /= 10
	}
	for l, r := 0, len(digits)-1; l < r; l, r = l+1, r-1 {
		digits[l], digits[r] = digits[r], digits[l]
	}
	return string(digits)
}

func isCallableValue(v value.Value) (*object.Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	o, ok := v.ObjectRef().(*object.Object)
	return o, ok && o.IsCallable()
}

func objectRef(v value.Value) (*object.Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	o, ok := v.ObjectRef().(*object.Object)
	return o, ok
}
