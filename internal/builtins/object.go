package builtins

import (
	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installObject builds the Object constructor (ES5 §15.2) and
// Object.prototype (§15.2.4), and returns the constructor so Install can
// hang it off the global object.
func installObject(it *interp.Interpreter) *object.Object {
	proto := it.ObjectPrototype

	ctor := nativeFunc(it, "Object", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a := arg(args, 0)
		if a.IsNullOrUndefined() {
			return value.Object(it.NewObject("Object", proto)), nil
		}
		o, err := it.ToObject(a)
		if err != nil {
			return value.Undefined, err
		}
		return value.Object(o), nil
	})
	ctor.Construct = func(args []value.Value) (value.Value, error) {
		a := arg(args, 0)
		if a.IsNullOrUndefined() {
			return value.Object(it.NewObject("Object", proto)), nil
		}
		o, err := it.ToObject(a)
		if err != nil {
			return value.Undefined, err
		}
		return value.Object(o), nil
	}
	ctor.DefineDataProperty("prototype", value.Object(proto), false, false, false)
	proto.DefineDataProperty("constructor", value.Object(ctor), true, false, true)

	defineMethod(it, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.StrFromGo(objectToStringTag(this)), nil
	})
	defineMethod(it, proto, "toLocaleString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		fn, err := it.Get(o, "toString", this)
		if err != nil {
			return value.Undefined, err
		}
		f, ok := isCallableValue(fn)
		if !ok {
			return value.Undefined, newTypeError("toString is not a function")
		}
		return it.Call(f, this, nil)
	})
	defineMethod(it, proto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Object(o), nil
	})
	defineMethod(it, proto, "hasOwnProperty", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		name, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.Bool(o.GetOwnProperty(name.String()) != nil), nil
	})
	defineMethod(it, proto, "isPrototypeOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		other, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Bool(false), nil
		}
		for cur := other.Prototype(); cur != nil; cur = cur.Prototype() {
			if cur == o {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})
	defineMethod(it, proto, "propertyIsEnumerable", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		name, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		d := o.GetOwnProperty(name.String())
		return value.Bool(d != nil && d.Enumerable), nil
	})

	installObjectStatics(it, ctor, proto)
	return ctor
}

// objectToStringTag implements Object.prototype.toString (ES5 §15.2.4.2):
// "[object " + [[Class]] + "]", with the undefined/null special cases.
func objectToStringTag(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "[object Undefined]"
	case v.IsNull():
		return "[object Null]"
	}
	o, ok := objectRef(v)
	if !ok {
		return "[object Object]"
	}
	return "[object " + o.ClassName() + "]"
}

func installObjectStatics(it *interp.Interpreter, ctor, proto *object.Object) {
	defineMethod(it, ctor, "getPrototypeOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.getPrototypeOf called on non-object")
		}
		if p := o.Prototype(); p != nil {
			return value.Object(p), nil
		}
		return value.Null, nil
	})

	defineMethod(it, ctor, "getOwnPropertyDescriptor", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.getOwnPropertyDescriptor called on non-object")
		}
		name, err := it.ToStringValue(arg(args, 1))
		if err != nil {
			return value.Undefined, err
		}
		d := o.GetOwnProperty(name.String())
		if d == nil {
			return value.Undefined, nil
		}
		return value.Object(fromPropertyDescriptor(it, d)), nil
	})

	defineMethod(it, ctor, "getOwnPropertyNames", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.getOwnPropertyNames called on non-object")
		}
		keys := o.Keys()
		arr := it.NewArray(uint32(len(keys)))
		for i, k := range keys {
			arr.DefineDataProperty(indexKey(i), value.StrFromGo(k), true, true, true)
		}
		return value.Object(arr), nil
	})

	defineMethod(it, ctor, "create", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		p := arg(args, 0)
		var proto *object.Object
		if p.IsObject() {
			proto, _ = objectRef(p)
		} else if !p.IsNull() {
			return value.Undefined, newTypeError("Object prototype may only be an Object or null")
		}
		o := it.NewObject("Object", proto)
		if len(args) > 1 && !arg(args, 1).IsUndefined() {
			props, ok := objectRef(args[1])
			if !ok {
				return value.Undefined, newTypeError("properties argument must be an object")
			}
			if err := definePropertiesFrom(it, o, props); err != nil {
				return value.Undefined, err
			}
		}
		return value.Object(o), nil
	})

	defineMethod(it, ctor, "defineProperty", 3, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.defineProperty called on non-object")
		}
		name, err := it.ToStringValue(arg(args, 1))
		if err != nil {
			return value.Undefined, err
		}
		descObj, ok := objectRef(arg(args, 2))
		if !ok {
			return value.Undefined, newTypeError("property description must be an object")
		}
		desc, err := toPropertyDescriptor(it, descObj)
		if err != nil {
			return value.Undefined, err
		}
		if _, err := o.DefineOwnProperty(name.String(), desc, true); err != nil {
			return value.Undefined, wrapDefineError(err)
		}
		return value.Object(o), nil
	})

	defineMethod(it, ctor, "defineProperties", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.defineProperties called on non-object")
		}
		props, ok := objectRef(arg(args, 1))
		if !ok {
			return value.Undefined, newTypeError("properties argument must be an object")
		}
		if err := definePropertiesFrom(it, o, props); err != nil {
			return value.Undefined, err
		}
		return value.Object(o), nil
	})

	defineMethod(it, ctor, "keys", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.keys called on non-object")
		}
		var out []string
		for _, k := range o.Keys() {
			if d := o.GetOwnProperty(k); d != nil && d.Enumerable {
				out = append(out, k)
			}
		}
		arr := it.NewArray(uint32(len(out)))
		for i, k := range out {
			arr.DefineDataProperty(indexKey(i), value.StrFromGo(k), true, true, true)
		}
		return value.Object(arr), nil
	})

	defineMethod(it, ctor, "seal", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.seal called on non-object")
		}
		for _, k := range o.Keys() {
			d := o.GetOwnProperty(k)
			if d.Configurable {
				o.DefineOwnProperty(k, &object.PropertyDescriptor{Configurable: false, HasConfigurable: true}, false)
			}
		}
		o.SetExtensible(false)
		return value.Object(o), nil
	})

	defineMethod(it, ctor, "freeze", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.freeze called on non-object")
		}
		for _, k := range o.Keys() {
			d := o.GetOwnProperty(k)
			desc := &object.PropertyDescriptor{Configurable: false, HasConfigurable: true}
			if !d.IsAccessor() {
				desc.Writable = false
				desc.HasWritable = true
			}
			o.DefineOwnProperty(k, desc, false)
		}
		o.SetExtensible(false)
		return value.Object(o), nil
	})

	defineMethod(it, ctor, "preventExtensions", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.preventExtensions called on non-object")
		}
		o.SetExtensible(false)
		return value.Object(o), nil
	})

	defineMethod(it, ctor, "isSealed", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.isSealed called on non-object")
		}
		if o.Extensible() {
			return value.Bool(false), nil
		}
		for _, k := range o.Keys() {
			if o.GetOwnProperty(k).Configurable {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})

	defineMethod(it, ctor, "isFrozen", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.isFrozen called on non-object")
		}
		if o.Extensible() {
			return value.Bool(false), nil
		}
		for _, k := range o.Keys() {
			d := o.GetOwnProperty(k)
			if d.Configurable {
				return value.Bool(false), nil
			}
			if !d.IsAccessor() && d.Writable {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})

	defineMethod(it, ctor, "isExtensible", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		if !ok {
			return value.Undefined, newTypeError("Object.isExtensible called on non-object")
		}
		return value.Bool(o.Extensible()), nil
	})
}

func definePropertiesFrom(it *interp.Interpreter, o, props *object.Object) error {
	for _, k := range props.Keys() {
		d := props.GetOwnProperty(k)
		if d == nil || !d.Enumerable {
			continue
		}
		descObj, ok := objectRef(d.Value)
		if !ok {
			return newTypeError("property description must be an object")
		}
		desc, err := toPropertyDescriptor(it, descObj)
		if err != nil {
			return err
		}
		if _, err := o.DefineOwnProperty(k, desc, true); err != nil {
			return wrapDefineError(err)
		}
	}
	return nil
}

// toPropertyDescriptor implements ES5 §8.10.5: read value/writable/get/set/
// enumerable/configurable off descObj, rejecting a descriptor that mixes
// value/writable with get/set.
func toPropertyDescriptor(it *interp.Interpreter, descObj *object.Object) (*object.PropertyDescriptor, error) {
	d := &object.PropertyDescriptor{}
	if descObj.HasProperty("enumerable") {
		v, err := it.Get(descObj, "enumerable", value.Object(descObj))
		if err != nil {
			return nil, err
		}
		d.Enumerable, d.HasEnumerable = value.ToBoolean(v), true
	}
	if descObj.HasProperty("configurable") {
		v, err := it.Get(descObj, "configurable", value.Object(descObj))
		if err != nil {
			return nil, err
		}
		d.Configurable, d.HasConfigurable = value.ToBoolean(v), true
	}
	if descObj.HasProperty("value") {
		v, err := it.Get(descObj, "value", value.Object(descObj))
		if err != nil {
			return nil, err
		}
		d.Value, d.HasValue = v, true
	}
	if descObj.HasProperty("writable") {
		v, err := it.Get(descObj, "writable", value.Object(descObj))
		if err != nil {
			return nil, err
		}
		d.Writable, d.HasWritable = value.ToBoolean(v), true
	}
	if descObj.HasProperty("get") {
		v, err := it.Get(descObj, "get", value.Object(descObj))
		if err != nil {
			return nil, err
		}
		if !v.IsUndefined() {
			fn, ok := isCallableValue(v)
			if !ok {
				return nil, newTypeError("getter must be a function")
			}
			d.Get = fn
		}
		d.HasGet = true
	}
	if descObj.HasProperty("set") {
		v, err := it.Get(descObj, "set", value.Object(descObj))
		if err != nil {
			return nil, err
		}
		if !v.IsUndefined() {
			fn, ok := isCallableValue(v)
			if !ok {
				return nil, newTypeError("setter must be a function")
			}
			d.Set = fn
		}
		d.HasSet = true
	}
	if (d.HasGet || d.HasSet) && (d.HasValue || d.HasWritable) {
		return nil, newTypeError("property descriptor cannot have both accessor and data components")
	}
	return d, nil
}

// fromPropertyDescriptor implements ES5 §8.10.4: render a descriptor back
// into a plain object with own value/writable/get/set/enumerable/
// configurable properties, all writable+enumerable+configurable.
func fromPropertyDescriptor(it *interp.Interpreter, d *object.PropertyDescriptor) *object.Object {
	o := it.NewObject("Object", it.ObjectPrototype)
	if d.IsAccessor() {
		getV := value.Undefined
		if d.Get != nil {
			getV = value.Object(d.Get)
		}
		setV := value.Undefined
		if d.Set != nil {
			setV = value.Object(d.Set)
		}
		o.DefineDataProperty("get", getV, true, true, true)
		o.DefineDataProperty("set", setV, true, true, true)
	} else {
		o.DefineDataProperty("value", d.Value, true, true, true)
		o.DefineDataProperty("writable", value.Bool(d.Writable), true, true, true)
	}
	o.DefineDataProperty("enumerable", value.Bool(d.Enumerable), true, true, true)
	o.DefineDataProperty("configurable", value.Bool(d.Configurable), true, true, true)
	return o
}

// wrapDefineError converts an *object.DefinePropertyError bubbling out of
// DefineOwnProperty into the TypeError ES5 §8.12.9 throws on rejection.
func wrapDefineError(err error) error {
	if _, ok := err.(*object.DefinePropertyError); ok {
		return jserrors.NewTypeError("%s", err.Error())
	}
	return err
}
