package builtins

import (
	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// errorKinds lists every native error constructor ES5 §15.11.6 requires
// besides the base Error: each gets its own prototype chained to
// Error.prototype and its own constructor function chained to Error.
var errorKinds = []string{
	string(jserrors.KindEvalError),
	string(jserrors.KindRangeError),
	string(jserrors.KindReferenceError),
	string(jserrors.KindSyntaxError),
	string(jserrors.KindTypeError),
	string(jserrors.KindURIError),
}

// installErrors builds Error and its six derived constructors (ES5 §15.11),
// registering each prototype/constructor pair in
// it.ErrorPrototypes/it.ErrorConstructors so NewError and instanceof checks
// elsewhere in the evaluator can find them.
func installErrors(it *interp.Interpreter) *object.Object {
	proto := it.ErrorPrototype
	proto.DefineDataProperty("name", value.StrFromGo("Error"), true, false, true)
	proto.DefineDataProperty("message", value.StrFromGo(""), true, false, true)

	ctor := buildErrorConstructor(it, "Error", proto, it.FunctionPrototype)
	it.ErrorPrototypes["Error"] = proto
	it.ErrorConstructors["Error"] = ctor

	defineMethod(it, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		name := "Error"
		if nv, err := it.Get(o, "name", this); err == nil && !nv.IsUndefined() {
			s, err := it.ToStringValue(nv)
			if err != nil {
				return value.Undefined, err
			}
			name = s.String()
		}
		msg := ""
		if mv, err := it.Get(o, "message", this); err == nil && !mv.IsUndefined() {
			s, err := it.ToStringValue(mv)
			if err != nil {
				return value.Undefined, err
			}
			msg = s.String()
		}
		if msg == "" {
			return value.StrFromGo(name), nil
		}
		if name == "" {
			return value.StrFromGo(msg), nil
		}
		return value.StrFromGo(name + ": " + msg), nil
	})

	for _, kind := range errorKinds {
		kindProto := it.NewObject("Error", proto)
		kindProto.DefineDataProperty("name", value.StrFromGo(kind), true, false, true)
		kindProto.DefineDataProperty("message", value.StrFromGo(""), true, false, true)
		kindCtor := buildErrorConstructor(it, kind, kindProto, ctor)
		it.ErrorPrototypes[kind] = kindProto
		it.ErrorConstructors[kind] = kindCtor
	}

	return ctor
}

// buildErrorConstructor wires up one Error-family constructor: callable and
// constructible identically (ES5 §15.11.1/§15.11.2 — calling Error the same
// as `new Error` both build a fresh instance), and its constructor function
// object chained under superCtor so e.g. TypeError instanceof Function and
// TypeError.__proto__ === Error hold.
func buildErrorConstructor(it *interp.Interpreter, name string, proto *object.Object, superCtor *object.Object) *object.Object {
	ctor := nativeFunc(it, name, 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return constructError(it, proto, args)
	})
	ctor.Construct = func(args []value.Value) (value.Value, error) {
		return constructError(it, proto, args)
	}
	ctor.SetPrototype(superCtor)
	ctor.DefineDataProperty("prototype", value.Object(proto), false, false, false)
	proto.DefineDataProperty("constructor", value.Object(ctor), true, false, true)
	return ctor
}

func constructError(it *interp.Interpreter, proto *object.Object, args []value.Value) (value.Value, error) {
	o := it.NewObject("Error", proto)
	if a := arg(args, 0); !a.IsUndefined() {
		s, err := it.ToStringValue(a)
		if err != nil {
			return value.Undefined, err
		}
		o.DefineDataProperty("message", value.Str(s), true, false, true)
	}
	return value.Object(o), nil
}
