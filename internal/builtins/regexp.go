package builtins

import (
	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/jsregexp"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installRegExp builds the RegExp constructor (ES5 §15.10.3/.4) and
// RegExp.prototype (exec/test/toString, plus the Annex B `compile`), over
// internal/jsregexp's github.com/dlclark/regexp2 backend.
func installRegExp(it *interp.Interpreter) *object.Object {
	proto := it.RegExpPrototype
	emptyRe, _ := jsregexp.Compile("(?:)", "")
	proto.Internal = emptyRe
	proto.DefineDataProperty("source", value.StrFromGo("(?:)"), false, false, false)
	proto.DefineDataProperty("global", value.Bool(false), false, false, false)
	proto.DefineDataProperty("ignoreCase", value.Bool(false), false, false, false)
	proto.DefineDataProperty("multiline", value.Bool(false), false, false, false)
	proto.DefineDataProperty("lastIndex", value.Number(0), true, false, false)

	ctor := nativeFunc(it, "RegExp", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return constructRegExp(it, args)
	})
	ctor.Construct = func(args []value.Value) (value.Value, error) {
		return constructRegExp(it, args)
	}
	ctor.DefineDataProperty("prototype", value.Object(proto), false, false, false)
	proto.DefineDataProperty("constructor", value.Object(ctor), true, false, true)

	defineMethod(it, proto, "exec", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return regexpExec(it, this, arg(args, 0))
	})
	defineMethod(it, proto, "test", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		v, err := regexpExec(it, this, arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.Bool(!v.IsNull()), nil
	})
	defineMethod(it, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(this)
		if !ok {
			return value.Undefined, newTypeError("RegExp.prototype.toString called on non-RegExp")
		}
		re, ok := o.Internal.(*jsregexp.RegExp)
		if !ok {
			return value.Undefined, newTypeError("RegExp.prototype.toString called on non-RegExp")
		}
		return value.StrFromGo("/" + re.Source + "/" + re.Flags), nil
	})
	defineMethod(it, proto, "compile", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := objectRef(this)
		if !ok {
			return value.Undefined, newTypeError("RegExp.prototype.compile called on non-RegExp")
		}
		pattern := ""
		flags := ""
		if a := arg(args, 0); !a.IsUndefined() {
			if src, isRe, err := asRegExp(it, a); err == nil && isRe {
				pattern, flags = src.Source, src.Flags
			} else {
				s, err := it.ToStringValue(a)
				if err != nil {
					return value.Undefined, err
				}
				pattern = s.String()
			}
		}
		if a := arg(args, 1); !a.IsUndefined() {
			s, err := it.ToStringValue(a)
			if err != nil {
				return value.Undefined, err
			}
			flags = s.String()
		}
		v, thrown := it.NewRegExp(pattern, flags)
		if thrown != nil {
			return value.Undefined, &regexpThrow{*thrown}
		}
		re := v.ObjectRef().(*object.Object)
		o.Internal = re.Internal
		compiled := re.Internal.(*jsregexp.RegExp)
		o.DefineDataProperty("source", value.StrFromGo(compiled.Source), false, false, false)
		o.DefineDataProperty("global", value.Bool(compiled.Global), false, false, false)
		o.DefineDataProperty("ignoreCase", value.Bool(compiled.IgnoreCase), false, false, false)
		o.DefineDataProperty("multiline", value.Bool(compiled.Multiline), false, false, false)
		if err := it.Put(o, "lastIndex", value.Number(0), true); err != nil {
			return value.Undefined, err
		}
		return value.Object(o), nil
	})

	return ctor
}

// regexpThrow carries a value thrown by internal/interp's NewRegExp (a
// SyntaxError object) across the builtins/interp boundary as a Go error.
type regexpThrow struct{ v value.Value }

func (e *regexpThrow) Error() string { return "invalid regular expression" }
func (e *regexpThrow) Value() value.Value { return e.v }

func constructRegExp(it *interp.Interpreter, args []value.Value) (value.Value, error) {
	patternArg := arg(args, 0)
	if o, ok := objectRef(patternArg); ok {
		if re, ok := o.Internal.(*jsregexp.RegExp); ok {
			flags := re.Flags
			if a := arg(args, 1); !a.IsUndefined() {
				s, err := it.ToStringValue(a)
				if err != nil {
					return value.Undefined, err
				}
				flags = s.String()
			}
			v, thrown := it.NewRegExp(re.Source, flags)
			if thrown != nil {
				return value.Undefined, &regexpThrow{*thrown}
			}
			return v, nil
		}
	}
	pattern := ""
	if !patternArg.IsUndefined() {
		s, err := it.ToStringValue(patternArg)
		if err != nil {
			return value.Undefined, err
		}
		pattern = s.String()
	}
	flags := ""
	if a := arg(args, 1); !a.IsUndefined() {
		s, err := it.ToStringValue(a)
		if err != nil {
			return value.Undefined, err
		}
		flags = s.String()
	}
	v, thrown := it.NewRegExp(pattern, flags)
	if thrown != nil {
		return value.Undefined, &regexpThrow{*thrown}
	}
	return v, nil
}

// regexpExec implements RegExp.prototype.exec (ES5 §15.10.6.2): advances
// lastIndex for global matches, builds the match-result array with
// its index/input own properties, and resets lastIndex to 0 on failure.
func regexpExec(it *interp.Interpreter, this value.Value, arg0 value.Value) (value.Value, error) {
	o, ok := objectRef(this)
	if !ok {
		return value.Undefined, newTypeError("RegExp.prototype.exec called on non-RegExp")
	}
	re, ok := o.Internal.(*jsregexp.RegExp)
	if !ok {
		return value.Undefined, newTypeError("RegExp.prototype.exec called on non-RegExp")
	}
	s, err := it.ToStringValue(arg0)
	if err != nil {
		return value.Undefined, err
	}
	text := s.String()

	start := 0
	if re.Global {
		li, err := it.Get(o, "lastIndex", this)
		if err != nil {
			return value.Undefined, err
		}
		n, err := it.ToInteger(li)
		if err != nil {
			return value.Undefined, err
		}
		start = int(n)
		if start < 0 || start > len(text) {
			if err := it.Put(o, "lastIndex", value.Number(0), true); err != nil {
				return value.Undefined, err
			}
			return value.Null, nil
		}
	}

	m, err := re.FindFrom(text, start)
	if err != nil {
		return value.Undefined, err
	}
	if m == nil {
		if err := it.Put(o, "lastIndex", value.Number(0), true); err != nil {
			return value.Undefined, err
		}
		return value.Null, nil
	}
	if re.Global {
		if err := it.Put(o, "lastIndex", value.Number(float64(m.Index+m.Length)), true); err != nil {
			return value.Undefined, err
		}
	}
	return value.Object(matchResultArray(it, m, text)), nil
}
