package builtins

import (
	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installBoolean builds the Boolean constructor and Boolean.prototype (ES5
// §15.6): a minimal wrapper object whose only interesting behavior is the
// ToBoolean coercion at construction time and unwrapping at toString/valueOf.
func installBoolean(it *interp.Interpreter) *object.Object {
	proto := it.BooleanPrototype
	proto.PrimitiveValue, proto.HasPrimitive = value.Bool(false), true

	ctor := nativeFunc(it, "Boolean", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(value.ToBoolean(arg(args, 0))), nil
	})
	ctor.Construct = func(args []value.Value) (value.Value, error) {
		o := it.NewObject("Boolean", proto)
		o.PrimitiveValue, o.HasPrimitive = value.Bool(value.ToBoolean(arg(args, 0))), true
		return value.Object(o), nil
	}
	ctor.DefineDataProperty("prototype", value.Object(proto), false, false, false)
	proto.DefineDataProperty("constructor", value.Object(ctor), true, false, true)

	defineMethod(it, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		b, err := thisBooleanValue(this)
		if err != nil {
			return value.Undefined, err
		}
		if b {
			return value.StrFromGo("true"), nil
		}
		return value.StrFromGo("false"), nil
	})
	defineMethod(it, proto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		b, err := thisBooleanValue(this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Bool(b), nil
	})

	return ctor
}

func thisBooleanValue(this value.Value) (bool, error) {
	if this.IsBoolean() {
		return this.BoolValue(), nil
	}
	if o, ok := objectRef(this); ok && o.ClassName() == "Boolean" && o.HasPrimitive {
		return o.PrimitiveValue.BoolValue(), nil
	}
	return false, newTypeError("Boolean.prototype method called on incompatible receiver")
}
