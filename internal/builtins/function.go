package builtins

import (
	"strings"

	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// nameOf reads a string-valued own property, used for the "name" property
// every function object carries, without round-tripping through ToString.
func nameOf(o *object.Object, prop string) string {
	d := o.GetOwnProperty(prop)
	if d == nil || !d.Value.IsString() {
		return ""
	}
	return d.Value.StringValue().String()
}

// installFunction builds the Function constructor (ES5 §15.3) and
// Function.prototype (§15.3.4: call/apply/bind/toString), which every
// callable object in the system chains to.
func installFunction(it *interp.Interpreter) *object.Object {
	proto := it.FunctionPrototype
	proto.DefineDataProperty("length", value.Number(0), false, false, true)

	ctor := nativeFunc(it, "Function", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return constructFunctionFromSource(it, args)
	})
	ctor.Construct = func(args []value.Value) (value.Value, error) {
		return constructFunctionFromSource(it, args)
	}
	ctor.DefineDataProperty("prototype", value.Object(proto), false, false, false)
	proto.DefineDataProperty("constructor", value.Object(ctor), true, false, true)

	defineMethod(it, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(this)
		if !ok || !o.IsCallable() {
			return value.Undefined, newTypeError("Function.prototype.toString called on non-function")
		}
		return value.StrFromGo("function " + nameOf(o, "name") + "() { [native code] }"), nil
	})

	defineMethod(it, proto, "call", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		fn, ok := objectRef(this)
		if !ok || !fn.IsCallable() {
			return value.Undefined, newTypeError("Function.prototype.call called on non-function")
		}
		callThis := arg(args, 0)
		var rest []value.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return it.Call(fn, callThis, rest)
	})

	defineMethod(it, proto, "apply", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		fn, ok := objectRef(this)
		if !ok || !fn.IsCallable() {
			return value.Undefined, newTypeError("Function.prototype.apply called on non-function")
		}
		callThis := arg(args, 0)
		argArray := arg(args, 1)
		if argArray.IsNullOrUndefined() {
			return it.Call(fn, callThis, nil)
		}
		argsObj, ok := objectRef(argArray)
		if !ok {
			return value.Undefined, newTypeError("arguments list has wrong type")
		}
		n, err := it.ToUint32(mustGet(it, argsObj, "length"))
		if err != nil {
			return value.Undefined, err
		}
		rest := make([]value.Value, n)
		for i := uint32(0); i < n; i++ {
			v, err := it.Get(argsObj, indexKey(int(i)), argArray)
			if err != nil {
				return value.Undefined, err
			}
			rest[i] = v
		}
		return it.Call(fn, callThis, rest)
	})

	defineMethod(it, proto, "bind", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		target, ok := objectRef(this)
		if !ok || !target.IsCallable() {
			return value.Undefined, newTypeError("Function.prototype.bind called on non-function")
		}
		boundThis := arg(args, 0)
		var boundArgs []value.Value
		if len(args) > 1 {
			boundArgs = append(boundArgs, args[1:]...)
		}
		return value.Object(bindFunction(it, target, boundThis, boundArgs)), nil
	})

	return ctor
}

// bindFunction implements Function.prototype.bind (ES5 §15.3.4.5): the
// returned function is callable (prepending boundArgs, ignoring the this
// supplied at call time) and, if target is constructible, constructible
// (boundThis is then ignored in favor of the newly created instance).
// Its length is max(0, target.length - boundArgs.length), and it carries no
// own "prototype" property.
func bindFunction(it *interp.Interpreter, target *object.Object, boundThis value.Value, boundArgs []value.Value) *object.Object {
	bound := it.NewObject("Function", it.FunctionPrototype)
	bound.Call = func(this value.Value, callArgs []value.Value) (value.Value, error) {
		all := append(append([]value.Value{}, boundArgs...), callArgs...)
		return it.Call(target, boundThis, all)
	}
	if target.Construct != nil {
		bound.Construct = func(callArgs []value.Value) (value.Value, error) {
			all := append(append([]value.Value{}, boundArgs...), callArgs...)
			return it.Construct(target, all)
		}
	}

	length := 0.0
	if lv := target.GetOwnProperty("length"); lv != nil && lv.Value.IsNumber() {
		length = lv.Value.NumberValue()
	}
	length -= float64(len(boundArgs))
	if length < 0 {
		length = 0
	}
	bound.DefineDataProperty("length", value.Number(length), false, false, true)

	name := "bound " + nameOf(target, "name")
	bound.DefineDataProperty("name", value.StrFromGo(name), false, false, true)

	thrower := nativeFunc(it, "", 0, func(value.Value, []value.Value) (value.Value, error) {
		return value.Undefined, newTypeError("'caller' and 'arguments' are restricted on bound functions")
	})
	bound.DefineAccessorProperty("caller", thrower, thrower, false, false)
	bound.DefineAccessorProperty("arguments", thrower, thrower, false, false)

	return bound
}

// constructFunctionFromSource implements the Function constructor (ES5
// §15.3.2.1): the last argument is the body source, every prior argument is
// joined with commas to form the parameter list, and the whole thing is
// parsed and evaluated as `function (params) { body }` in the global scope.
func constructFunctionFromSource(it *interp.Interpreter, args []value.Value) (value.Value, error) {
	var params []string
	var body string
	if len(args) > 0 {
		for _, a := range args[:len(args)-1] {
			s, err := it.ToStringValue(a)
			if err != nil {
				return value.Undefined, err
			}
			params = append(params, s.String())
		}
		s, err := it.ToStringValue(args[len(args)-1])
		if err != nil {
			return value.Undefined, err
		}
		body = s.String()
	}
	src := "(function (" + strings.Join(params, ",") + ") {\n" + body + "\n})"
	return it.EvalGlobal(src)
}

func mustGet(it *interp.Interpreter, o *object.Object, name string) value.Value {
	v, err := it.Get(o, name, value.Object(o))
	if err != nil {
		return value.Undefined
	}
	return v
}
