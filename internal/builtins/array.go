package builtins

import (
	"sort"
	"strings"

	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installArray builds the Array constructor (ES5 §15.4) and
// Array.prototype, including the higher-order iteration methods whose
// exact coercion/skipping/live-view contracts come straight from §15.4.4.
func installArray(it *interp.Interpreter) *object.Object {
	proto := it.ArrayPrototype

	ctor := nativeFunc(it, "Array", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return constructArray(it, args)
	})
	ctor.Construct = func(args []value.Value) (value.Value, error) {
		return constructArray(it, args)
	}
	ctor.DefineDataProperty("prototype", value.Object(proto), false, false, false)
	proto.DefineDataProperty("constructor", value.Object(ctor), true, false, true)

	defineMethod(it, ctor, "isArray", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(arg(args, 0))
		return value.Bool(ok && o.ClassName() == "Array"), nil
	})

	defineMethod(it, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		joinFn, err := it.Get(o, "join", this)
		if err != nil {
			return value.Undefined, err
		}
		if f, ok := isCallableValue(joinFn); ok {
			return it.Call(f, value.Object(o), nil)
		}
		return value.StrFromGo(objectToStringTag(this)), nil
	})
	defineMethod(it, proto, "toLocaleString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		parts := make([]string, n)
		for i := uint32(0); i < n; i++ {
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			if v.IsNullOrUndefined() {
				continue
			}
			eo, err := it.ToObject(v)
			if err != nil {
				return value.Undefined, err
			}
			m, err := it.Get(eo, "toLocaleString", value.Object(eo))
			if err != nil {
				return value.Undefined, err
			}
			f, ok := isCallableValue(m)
			if !ok {
				return value.Undefined, newTypeError("toLocaleString is not a function")
			}
			s, err := it.Call(f, value.Object(eo), nil)
			if err != nil {
				return value.Undefined, err
			}
			sv, err := it.ToStringValue(s)
			if err != nil {
				return value.Undefined, err
			}
			parts[i] = sv.String()
		}
		return value.StrFromGo(strings.Join(parts, ",")), nil
	})

	defineMethod(it, proto, "join", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		sep := ","
		if a := arg(args, 0); !a.IsUndefined() {
			s, err := it.ToStringValue(a)
			if err != nil {
				return value.Undefined, err
			}
			sep = s.String()
		}
		parts := make([]string, n)
		for i := uint32(0); i < n; i++ {
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			if v.IsNullOrUndefined() {
				continue
			}
			s, err := it.ToStringValue(v)
			if err != nil {
				return value.Undefined, err
			}
			parts[i] = s.String()
		}
		return value.StrFromGo(strings.Join(parts, sep)), nil
	})

	defineMethod(it, proto, "push", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		for _, a := range args {
			if err := it.Put(o, indexKey(int(n)), a, true); err != nil {
				return value.Undefined, err
			}
			n++
		}
		if err := it.Put(o, "length", value.Number(float64(n)), true); err != nil {
			return value.Undefined, err
		}
		return value.Number(float64(n)), nil
	})

	defineMethod(it, proto, "pop", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		if n == 0 {
			return value.Undefined, it.Put(o, "length", value.Number(0), true)
		}
		last := n - 1
		v, err := it.Get(o, indexKey(int(last)), this)
		if err != nil {
			return value.Undefined, err
		}
		if _, err := o.Delete(indexKey(int(last)), true); err != nil {
			return value.Undefined, err
		}
		if err := it.Put(o, "length", value.Number(float64(last)), true); err != nil {
			return value.Undefined, err
		}
		return v, nil
	})

	defineMethod(it, proto, "shift", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		if n == 0 {
			return value.Undefined, it.Put(o, "length", value.Number(0), true)
		}
		first, err := it.Get(o, "0", this)
		if err != nil {
			return value.Undefined, err
		}
		for i := uint32(1); i < n; i++ {
			has := o.HasProperty(indexKey(int(i)))
			if has {
				v, err := it.Get(o, indexKey(int(i)), this)
				if err != nil {
					return value.Undefined, err
				}
				if err := it.Put(o, indexKey(int(i-1)), v, true); err != nil {
					return value.Undefined, err
				}
			} else if _, err := o.Delete(indexKey(int(i-1)), true); err != nil {
				return value.Undefined, err
			}
		}
		if _, err := o.Delete(indexKey(int(n-1)), true); err != nil {
			return value.Undefined, err
		}
		if err := it.Put(o, "length", value.Number(float64(n-1)), true); err != nil {
			return value.Undefined, err
		}
		return first, nil
	})

	defineMethod(it, proto, "unshift", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		argc := uint32(len(args))
		for i := n; i > 0; i-- {
			from, to := i-1, i-1+argc
			if o.HasProperty(indexKey(int(from))) {
				v, err := it.Get(o, indexKey(int(from)), this)
				if err != nil {
					return value.Undefined, err
				}
				if err := it.Put(o, indexKey(int(to)), v, true); err != nil {
					return value.Undefined, err
				}
			} else if _, err := o.Delete(indexKey(int(to)), true); err != nil {
				return value.Undefined, err
			}
		}
		for i, a := range args {
			if err := it.Put(o, indexKey(i), a, true); err != nil {
				return value.Undefined, err
			}
		}
		if err := it.Put(o, "length", value.Number(float64(n+argc)), true); err != nil {
			return value.Undefined, err
		}
		return value.Number(float64(n + argc)), nil
	})

	defineMethod(it, proto, "concat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		result := it.NewArray(0)
		idx := uint32(0)
		items := append([]value.Value{value.Object(o)}, args...)
		for _, item := range items {
			io, ok := objectRef(item)
			if ok && io.ClassName() == "Array" {
				n, err := arrayLength(it, io)
				if err != nil {
					return value.Undefined, err
				}
				for i := uint32(0); i < n; i++ {
					if io.HasProperty(indexKey(int(i))) {
						v, err := it.Get(io, indexKey(int(i)), item)
						if err != nil {
							return value.Undefined, err
						}
						result.DefineDataProperty(indexKey(int(idx)), v, true, true, true)
					}
					idx++
				}
			} else {
				result.DefineDataProperty(indexKey(int(idx)), item, true, true, true)
				idx++
			}
		}
		it.SetArrayLength(result, idx)
		return value.Object(result), nil
	})

	defineMethod(it, proto, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		start, err := relativeIndex(it, arg(args, 0), n, 0)
		if err != nil {
			return value.Undefined, err
		}
		end := n
		if a := arg(args, 1); !a.IsUndefined() {
			end, err = relativeIndex(it, a, n, n)
			if err != nil {
				return value.Undefined, err
			}
		}
		result := it.NewArray(0)
		idx := uint32(0)
		for i := start; i < end; i++ {
			if o.HasProperty(indexKey(int(i))) {
				v, err := it.Get(o, indexKey(int(i)), this)
				if err != nil {
					return value.Undefined, err
				}
				result.DefineDataProperty(indexKey(int(idx)), v, true, true, true)
			}
			idx++
		}
		it.SetArrayLength(result, idx)
		return value.Object(result), nil
	})

	defineMethod(it, proto, "splice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return spliceArray(it, this, args)
	})

	defineMethod(it, proto, "reverse", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		for lo := uint32(0); lo < n/2; lo++ {
			upper := n - lo - 1
			hasLo := o.HasProperty(indexKey(int(lo)))
			hasUp := o.HasProperty(indexKey(int(upper)))
			var loVal, upVal value.Value
			if hasLo {
				if loVal, err = it.Get(o, indexKey(int(lo)), this); err != nil {
					return value.Undefined, err
				}
			}
			if hasUp {
				if upVal, err = it.Get(o, indexKey(int(upper)), this); err != nil {
					return value.Undefined, err
				}
			}
			switch {
			case hasLo && hasUp:
				if err := it.Put(o, indexKey(int(lo)), upVal, true); err != nil {
					return value.Undefined, err
				}
				if err := it.Put(o, indexKey(int(upper)), loVal, true); err != nil {
					return value.Undefined, err
				}
			case hasUp:
				if err := it.Put(o, indexKey(int(lo)), upVal, true); err != nil {
					return value.Undefined, err
				}
				if _, err := o.Delete(indexKey(int(upper)), true); err != nil {
					return value.Undefined, err
				}
			case hasLo:
				if err := it.Put(o, indexKey(int(upper)), loVal, true); err != nil {
					return value.Undefined, err
				}
				if _, err := o.Delete(indexKey(int(lo)), true); err != nil {
					return value.Undefined, err
				}
			}
		}
		return value.Object(o), nil
	})

	defineMethod(it, proto, "sort", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return sortArray(it, this, arg(args, 0))
	})

	defineMethod(it, proto, "indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		if n == 0 {
			return value.Number(-1), nil
		}
		target := arg(args, 0)
		start := uint32(0)
		if len(args) > 1 {
			fromIdx, err := it.ToInteger(args[1])
			if err != nil {
				return value.Undefined, err
			}
			if fromIdx >= float64(n) {
				return value.Number(-1), nil
			}
			if fromIdx < 0 {
				fromIdx += float64(n)
			}
			if fromIdx < 0 {
				fromIdx = 0
			}
			start = uint32(fromIdx)
		}
		for i := start; i < n; i++ {
			if !o.HasProperty(indexKey(int(i))) {
				continue
			}
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			if value.StrictEquals(v, target) {
				return value.Number(float64(i)), nil
			}
		}
		return value.Number(-1), nil
	})

	defineMethod(it, proto, "lastIndexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return value.Undefined, err
		}
		if n == 0 {
			return value.Number(-1), nil
		}
		target := arg(args, 0)
		start := int64(n) - 1
		if len(args) > 1 {
			fromIdx, err := it.ToInteger(args[1])
			if err != nil {
				return value.Undefined, err
			}
			if fromIdx >= 0 {
				start = int64(fromIdx)
				if start > int64(n)-1 {
					start = int64(n) - 1
				}
			} else {
				start = int64(n) + int64(fromIdx)
			}
		}
		for i := start; i >= 0; i-- {
			if !o.HasProperty(indexKey(int(i))) {
				continue
			}
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			if value.StrictEquals(v, target) {
				return value.Number(float64(i)), nil
			}
		}
		return value.Number(-1), nil
	})

	installArrayIteration(it, proto)

	return ctor
}

// installArrayIteration installs every/some/forEach/map/filter/reduce/
// reduceRight, all of which share the ES5 §15.4.4.16-.22 contract: ToObject
// the receiver, read length via ToUint32, require callbackfn to be
// callable, skip indices absent via the `in` test, and coerce thisArg
// through ToObject only in non-strict callbacks (left to the callback's own
// [[Call]], which already applies that rule for user functions).
func installArrayIteration(it *interp.Interpreter, proto *object.Object) {
	iterate := func(this value.Value, args []value.Value) (*object.Object, object.CallFunc, value.Value, uint32, error) {
		o, err := thisObject(it, this)
		if err != nil {
			return nil, nil, value.Undefined, 0, err
		}
		n, err := arrayLength(it, o)
		if err != nil {
			return nil, nil, value.Undefined, 0, err
		}
		cb, ok := isCallableValue(arg(args, 0))
		if !ok {
			return nil, nil, value.Undefined, 0, newTypeError("callback is not a function")
		}
		thisArg := arg(args, 1)
		return o, func(this value.Value, callArgs []value.Value) (value.Value, error) {
			return it.Call(cb, this, callArgs)
		}, thisArg, n, nil
	}

	defineMethod(it, proto, "forEach", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, call, thisArg, n, err := iterate(this, args)
		if err != nil {
			return value.Undefined, err
		}
		for i := uint32(0); i < n; i++ {
			if !o.HasProperty(indexKey(int(i))) {
				continue
			}
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			if _, err := call(thisArg, []value.Value{v, value.Number(float64(i)), value.Object(o)}); err != nil {
				return value.Undefined, err
			}
		}
		return value.Undefined, nil
	})

	defineMethod(it, proto, "map", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, call, thisArg, n, err := iterate(this, args)
		if err != nil {
			return value.Undefined, err
		}
		result := it.NewArray(n)
		for i := uint32(0); i < n; i++ {
			if !o.HasProperty(indexKey(int(i))) {
				continue
			}
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			mapped, err := call(thisArg, []value.Value{v, value.Number(float64(i)), value.Object(o)})
			if err != nil {
				return value.Undefined, err
			}
			result.DefineDataProperty(indexKey(int(i)), mapped, true, true, true)
		}
		return value.Object(result), nil
	})

	defineMethod(it, proto, "filter", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, call, thisArg, n, err := iterate(this, args)
		if err != nil {
			return value.Undefined, err
		}
		result := it.NewArray(0)
		out := uint32(0)
		for i := uint32(0); i < n; i++ {
			if !o.HasProperty(indexKey(int(i))) {
				continue
			}
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			keep, err := call(thisArg, []value.Value{v, value.Number(float64(i)), value.Object(o)})
			if err != nil {
				return value.Undefined, err
			}
			if value.ToBoolean(keep) {
				result.DefineDataProperty(indexKey(int(out)), v, true, true, true)
				out++
			}
		}
		it.SetArrayLength(result, out)
		return value.Object(result), nil
	})

	defineMethod(it, proto, "every", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, call, thisArg, n, err := iterate(this, args)
		if err != nil {
			return value.Undefined, err
		}
		for i := uint32(0); i < n; i++ {
			if !o.HasProperty(indexKey(int(i))) {
				continue
			}
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			ok, err := call(thisArg, []value.Value{v, value.Number(float64(i)), value.Object(o)})
			if err != nil {
				return value.Undefined, err
			}
			if !value.ToBoolean(ok) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})

	defineMethod(it, proto, "some", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, call, thisArg, n, err := iterate(this, args)
		if err != nil {
			return value.Undefined, err
		}
		for i := uint32(0); i < n; i++ {
			if !o.HasProperty(indexKey(int(i))) {
				continue
			}
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			ok, err := call(thisArg, []value.Value{v, value.Number(float64(i)), value.Object(o)})
			if err != nil {
				return value.Undefined, err
			}
			if value.ToBoolean(ok) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})

	defineMethod(it, proto, "reduce", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return reduceArray(it, this, args, false)
	})
	defineMethod(it, proto, "reduceRight", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return reduceArray(it, this, args, true)
	})
}

// reduceArray implements Array.prototype.reduce/reduceRight (ES5
// §15.4.4.21/.22): a TypeError if length is 0 and no initial value was
// supplied, otherwise the initial value (or, absent one, the first present
// element encountered in iteration order) seeds the accumulator.
func reduceArray(it *interp.Interpreter, this value.Value, args []value.Value, right bool) (value.Value, error) {
	o, err := thisObject(it, this)
	if err != nil {
		return value.Undefined, err
	}
	n, err := arrayLength(it, o)
	if err != nil {
		return value.Undefined, err
	}
	cb, ok := isCallableValue(arg(args, 0))
	if !ok {
		return value.Undefined, newTypeError("callback is not a function")
	}

	order := make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		if right {
			order[i] = n - 1 - i
		} else {
			order[i] = i
		}
	}

	var acc value.Value
	haveAcc := false
	if len(args) > 1 {
		acc, haveAcc = args[1], true
	}

	pos := 0
	if !haveAcc {
		for pos < len(order) {
			idx := order[pos]
			pos++
			if o.HasProperty(indexKey(int(idx))) {
				v, err := it.Get(o, indexKey(int(idx)), this)
				if err != nil {
					return value.Undefined, err
				}
				acc, haveAcc = v, true
				break
			}
		}
		if !haveAcc {
			return value.Undefined, newTypeError("reduce of empty array with no initial value")
		}
	}

	for ; pos < len(order); pos++ {
		idx := order[pos]
		if !o.HasProperty(indexKey(int(idx))) {
			continue
		}
		v, err := it.Get(o, indexKey(int(idx)), this)
		if err != nil {
			return value.Undefined, err
		}
		acc, err = it.Call(cb, value.Undefined, []value.Value{acc, v, value.Number(float64(idx)), value.Object(o)})
		if err != nil {
			return value.Undefined, err
		}
	}
	return acc, nil
}

func arrayLength(it *interp.Interpreter, o *object.Object) (uint32, error) {
	v, err := it.Get(o, "length", value.Object(o))
	if err != nil {
		return 0, err
	}
	return it.ToUint32(v)
}

// relativeIndex implements the "clamp a possibly-negative relative index"
// rule shared by slice/splice (ES5 §15.4.4.10/.12): negative values
// count back from length, and the result is clamped to [0, length].
func relativeIndex(it *interp.Interpreter, v value.Value, length uint32, deflt uint32) (uint32, error) {
	if v.IsUndefined() {
		return deflt, nil
	}
	n, err := it.ToInteger(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n += float64(length)
	}
	if n < 0 {
		n = 0
	}
	if n > float64(length) {
		n = float64(length)
	}
	return uint32(n), nil
}

func spliceArray(it *interp.Interpreter, this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(it, this)
	if err != nil {
		return value.Undefined, err
	}
	n, err := arrayLength(it, o)
	if err != nil {
		return value.Undefined, err
	}
	start, err := relativeIndex(it, arg(args, 0), n, 0)
	if err != nil {
		return value.Undefined, err
	}
	deleteCount := n - start
	if len(args) > 1 {
		dc, err := it.ToInteger(args[1])
		if err != nil {
			return value.Undefined, err
		}
		if dc < 0 {
			dc = 0
		}
		if dc > float64(n-start) {
			dc = float64(n - start)
		}
		deleteCount = uint32(dc)
	}

	removed := it.NewArray(0)
	for i := uint32(0); i < deleteCount; i++ {
		if o.HasProperty(indexKey(int(start + i))) {
			v, err := it.Get(o, indexKey(int(start+i)), this)
			if err != nil {
				return value.Undefined, err
			}
			removed.DefineDataProperty(indexKey(int(i)), v, true, true, true)
		}
	}
	it.SetArrayLength(removed, deleteCount)

	var items []value.Value
	if len(args) > 2 {
		items = args[2:]
	}

	shift := int64(len(items)) - int64(deleteCount)
	if shift < 0 {
		for i := start + deleteCount; i < n; i++ {
			if o.HasProperty(indexKey(int(i))) {
				v, err := it.Get(o, indexKey(int(i)), this)
				if err != nil {
					return value.Undefined, err
				}
				if err := it.Put(o, indexKey(int(int64(i)+shift)), v, true); err != nil {
					return value.Undefined, err
				}
			} else if _, err := o.Delete(indexKey(int(int64(i)+shift)), true); err != nil {
				return value.Undefined, err
			}
		}
		for i := n - 1; int64(i) >= int64(n)+shift; i-- {
			if _, err := o.Delete(indexKey(int(i)), true); err != nil {
				return value.Undefined, err
			}
			if i == 0 {
				break
			}
		}
	} else if shift > 0 {
		for i := n; i > start+deleteCount; i-- {
			from := i - 1
			to := uint32(int64(from) + shift)
			if o.HasProperty(indexKey(int(from))) {
				v, err := it.Get(o, indexKey(int(from)), this)
				if err != nil {
					return value.Undefined, err
				}
				if err := it.Put(o, indexKey(int(to)), v, true); err != nil {
					return value.Undefined, err
				}
			} else if _, err := o.Delete(indexKey(int(to)), true); err != nil {
				return value.Undefined, err
			}
		}
	}

	for i, item := range items {
		if err := it.Put(o, indexKey(int(start)+i), item, true); err != nil {
			return value.Undefined, err
		}
	}

	if err := it.Put(o, "length", value.Number(float64(int64(n)+shift)), true); err != nil {
		return value.Undefined, err
	}
	return value.Object(removed), nil
}

// sortArray implements Array.prototype.sort (ES5 §15.4.4.11): undefined
// elements sort after every other present element, absent elements sort
// after those (to the end), everything else compares via the supplied
// comparator or default string comparison.
func sortArray(it *interp.Interpreter, this value.Value, cmpArg value.Value) (value.Value, error) {
	o, err := thisObject(it, this)
	if err != nil {
		return value.Undefined, err
	}
	n, err := arrayLength(it, o)
	if err != nil {
		return value.Undefined, err
	}
	var cmp *object.Object
	if !cmpArg.IsUndefined() {
		f, ok := isCallableValue(cmpArg)
		if !ok {
			return value.Undefined, newTypeError("comparison function must be a function")
		}
		cmp = f
	}

	type slot struct {
		v       value.Value
		present bool
	}
	slots := make([]slot, n)
	for i := uint32(0); i < n; i++ {
		if o.HasProperty(indexKey(int(i))) {
			v, err := it.Get(o, indexKey(int(i)), this)
			if err != nil {
				return value.Undefined, err
			}
			slots[i] = slot{v: v, present: true}
		}
	}

	var sortErr error
	sort.SliceStable(slots, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		sa, sb := slots[a], slots[b]
		if !sa.present {
			return false
		}
		if !sb.present {
			return true
		}
		if sa.v.IsUndefined() {
			return false
		}
		if sb.v.IsUndefined() {
			return true
		}
		if cmp != nil {
			res, err := it.Call(cmp, value.Undefined, []value.Value{sa.v, sb.v})
			if err != nil {
				sortErr = err
				return false
			}
			n, err := it.ToNumber(res)
			if err != nil {
				sortErr = err
				return false
			}
			return n < 0
		}
		as, err := it.ToStringValue(sa.v)
		if err != nil {
			sortErr = err
			return false
		}
		bs, err := it.ToStringValue(sb.v)
		if err != nil {
			sortErr = err
			return false
		}
		return as.Compare(bs) < 0
	})
	if sortErr != nil {
		return value.Undefined, sortErr
	}

	for i, s := range slots {
		if s.present {
			if err := it.Put(o, indexKey(i), s.v, true); err != nil {
				return value.Undefined, err
			}
		} else if _, err := o.Delete(indexKey(i), true); err != nil {
			return value.Undefined, err
		}
	}
	return value.Object(o), nil
}

// constructArray implements the Array constructor (ES5 §15.4.2): a single
// numeric argument sets the length of an empty array; any other argument
// list becomes the initial elements.
func constructArray(it *interp.Interpreter, args []value.Value) (value.Value, error) {
	if len(args) == 1 && args[0].IsNumber() {
		n := args[0].NumberValue()
		u32 := uint32(n)
		if float64(u32) != n {
			return value.Undefined, newRangeError("invalid array length")
		}
		return value.Object(it.NewArray(u32)), nil
	}
	arr := it.NewArray(uint32(len(args)))
	for i, a := range args {
		arr.DefineDataProperty(indexKey(i), a, true, true, true)
	}
	return value.Object(arr), nil
}
