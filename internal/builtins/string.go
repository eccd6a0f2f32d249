package builtins

import (
	"math"
	"strings"

	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/jsregexp"
	"github.com/mras0/mjs-sub001/internal/jsstring"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installString builds the String constructor (ES5 §15.5) and
// String.prototype, delegating case conversion to internal/jsstring (which
// in turn uses golang.org/x/text) and pattern methods to internal/jsregexp.
func installString(it *interp.Interpreter) *object.Object {
	proto := it.StringPrototype
	proto.PrimitiveValue, proto.HasPrimitive = value.StrFromGo(""), true
	proto.DefineDataProperty("length", value.Number(0), false, false, false)

	ctor := nativeFunc(it, "String", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.StrFromGo(""), nil
		}
		s, err := it.ToStringValue(args[0])
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(s), nil
	})
	ctor.Construct = func(args []value.Value) (value.Value, error) {
		s := jsstring.Empty
		if len(args) > 0 {
			sv, err := it.ToStringValue(args[0])
			if err != nil {
				return value.Undefined, err
			}
			s = sv
		}
		o := it.NewObject("String", proto)
		o.PrimitiveValue, o.HasPrimitive = value.Str(s), true
		o.DefineDataProperty("length", value.Number(float64(s.Length())), false, false, false)
		return value.Object(o), nil
	}
	ctor.DefineDataProperty("prototype", value.Object(proto), false, false, false)
	proto.DefineDataProperty("constructor", value.Object(ctor), true, false, true)

	defineMethod(it, ctor, "fromCharCode", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		units := make([]uint16, len(args))
		for i, a := range args {
			u, err := it.ToUint16(a)
			if err != nil {
				return value.Undefined, err
			}
			units[i] = u
		}
		return value.Str(jsstring.FromUnits(units)), nil
	})

	installStringPrototype(it, proto)
	return ctor
}

// thisStringValue implements ES5 §15.5's "CheckObjectCoercible then get the
// underlying [[PrimitiveValue]] if this is a String object, else ToString"
// rule shared by every String.prototype method.
func thisStringValue(it *interp.Interpreter, this value.Value) (jsstring.String, error) {
	if this.IsNullOrUndefined() {
		return jsstring.Empty, newTypeError("String.prototype method called on null or undefined")
	}
	if o, ok := objectRef(this); ok && o.ClassName() == "String" && o.HasPrimitive {
		return o.PrimitiveValue.StringValue(), nil
	}
	return it.ToStringValue(this)
}

func installStringPrototype(it *interp.Interpreter, proto *object.Object) {
	defineMethod(it, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(s), nil
	})
	defineMethod(it, proto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(s), nil
	})

	defineMethod(it, proto, "charAt", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		i, err := it.ToInteger(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(s.CharAt(int(i))), nil
	})

	defineMethod(it, proto, "charCodeAt", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		i, err := it.ToInteger(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		u, ok := s.CharCodeAt(int(i))
		if !ok {
			return value.Number(math.NaN()), nil
		}
		return value.Number(float64(u)), nil
	})

	defineMethod(it, proto, "indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		needle, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		from := 0
		if len(args) > 1 {
			f, err := it.ToInteger(args[1])
			if err != nil {
				return value.Undefined, err
			}
			from = int(f)
		}
		return value.Number(float64(s.Index(needle, from))), nil
	})

	defineMethod(it, proto, "lastIndexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		needle, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		from := s.Length()
		if len(args) > 1 {
			n, err := it.ToNumber(args[1])
			if err != nil {
				return value.Undefined, err
			}
			if n == n { // not NaN
				from = int(n)
			}
		}
		return value.Number(float64(s.LastIndex(needle, from))), nil
	})

	defineMethod(it, proto, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n := s.Length()
		start, err := relativeIndex(it, arg(args, 0), uint32(n), 0)
		if err != nil {
			return value.Undefined, err
		}
		end := uint32(n)
		if a := arg(args, 1); !a.IsUndefined() {
			end, err = relativeIndex(it, a, uint32(n), uint32(n))
			if err != nil {
				return value.Undefined, err
			}
		}
		return value.Str(s.Slice(int(start), int(end))), nil
	})

	defineMethod(it, proto, "substring", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n := s.Length()
		start, err := clampIndex(it, arg(args, 0), n, 0)
		if err != nil {
			return value.Undefined, err
		}
		end := n
		if a := arg(args, 1); !a.IsUndefined() {
			end, err = clampIndex(it, a, n, n)
			if err != nil {
				return value.Undefined, err
			}
		}
		if start > end {
			start, end = end, start
		}
		return value.Str(s.Slice(start, end)), nil
	})

	defineMethod(it, proto, "substr", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		n := s.Length()
		start, err := it.ToInteger(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		if start < 0 {
			start += float64(n)
			if start < 0 {
				start = 0
			}
		}
		length := float64(n) - start
		if a := arg(args, 1); !a.IsUndefined() {
			l, err := it.ToInteger(a)
			if err != nil {
				return value.Undefined, err
			}
			length = l
		}
		if length < 0 {
			length = 0
		}
		startI := int(start)
		endI := startI + int(length)
		return value.Str(s.Slice(startI, endI)), nil
	})

	defineMethod(it, proto, "concat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		for _, a := range args {
			other, err := it.ToStringValue(a)
			if err != nil {
				return value.Undefined, err
			}
			s = s.Concat(other)
		}
		return value.Str(s), nil
	})

	defineMethod(it, proto, "split", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return splitString(it, this, args)
	})

	defineMethod(it, proto, "trim", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(jsstring.TrimSpace(s)), nil
	})

	defineMethod(it, proto, "toUpperCase", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(jsstring.ToUpper(s)), nil
	})
	defineMethod(it, proto, "toLowerCase", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(jsstring.ToLower(s)), nil
	})
	defineMethod(it, proto, "toLocaleUpperCase", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(jsstring.ToLocaleUpper(s, "")), nil
	})
	defineMethod(it, proto, "toLocaleLowerCase", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(jsstring.ToLocaleLower(s, "")), nil
	})

	defineMethod(it, proto, "localeCompare", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := thisStringValue(it, this)
		if err != nil {
			return value.Undefined, err
		}
		other, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.Number(float64(s.Compare(other))), nil
	})

	defineMethod(it, proto, "match", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return matchString(it, this, arg(args, 0))
	})
	defineMethod(it, proto, "search", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return searchString(it, this, arg(args, 0))
	})
	defineMethod(it, proto, "replace", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return replaceString(it, this, arg(args, 0), arg(args, 1))
	})
}

// clampIndex implements the ToInteger-then-clamp-to-[0,len] rule
// String.prototype.substring uses for its two arguments (ES5 §15.5.4.15),
// as opposed to slice's negative-counts-from-the-end rule.
func clampIndex(it *interp.Interpreter, v value.Value, length int, deflt int) (int, error) {
	if v.IsUndefined() {
		return deflt, nil
	}
	n, err := it.ToInteger(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, nil
	}
	if n > float64(length) {
		return length, nil
	}
	return int(n), nil
}

// asRegExp returns v's compiled pattern if it is a RegExp object, else
// compiles ToString(v) as a literal (non-global, non-flagged) pattern, the
// coercion ES5 §15.5.4.9-.11 requires of match/search/replace's pattern
// argument.
func asRegExp(it *interp.Interpreter, v value.Value) (*jsregexp.RegExp, bool, error) {
	if o, ok := objectRef(v); ok && o.ClassName() == "RegExp" {
		if re, ok := o.Internal.(*jsregexp.RegExp); ok {
			return re, true, nil
		}
	}
	s, err := it.ToStringValue(v)
	if err != nil {
		return nil, false, err
	}
	re, err := jsregexp.Compile(regexpQuoteMeta(s.String()), "")
	if err != nil {
		return nil, false, err
	}
	return re, false, nil
}

func regexpQuoteMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '.', '+', '*', '?', '(', ')', '|', '[', ']', '{', '}', '^', '$':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitString(it *interp.Interpreter, this value.Value, args []value.Value) (value.Value, error) {
	s, err := thisStringValue(it, this)
	if err != nil {
		return value.Undefined, err
	}
	sepArg := arg(args, 0)
	limit := uint32(1<<32 - 1)
	if a := arg(args, 1); !a.IsUndefined() {
		l, err := it.ToUint32(a)
		if err != nil {
			return value.Undefined, err
		}
		limit = l
	}
	if sepArg.IsUndefined() {
		arr := it.NewArray(1)
		arr.DefineDataProperty("0", value.Str(s), true, true, true)
		return value.Object(arr), nil
	}
	if re, isRe, _ := asRegExp(it, sepArg); isRe {
		return splitByRegExp(it, s, re, limit)
	}
	sep, err := it.ToStringValue(sepArg)
	if err != nil {
		return value.Undefined, err
	}
	if sep.Length() == 0 && s.Length() == 0 {
		arr := it.NewArray(0)
		return value.Object(arr), nil
	}
	parts := jsstring.Split(s, sep)
	arr := it.NewArray(0)
	n := uint32(0)
	for _, p := range parts {
		if n >= limit {
			break
		}
		arr.DefineDataProperty(indexKey(int(n)), value.Str(p), true, true, true)
		n++
	}
	it.SetArrayLength(arr, n)
	return value.Object(arr), nil
}

func splitByRegExp(it *interp.Interpreter, s jsstring.String, re *jsregexp.RegExp, limit uint32) (value.Value, error) {
	text := s.String()
	arr := it.NewArray(0)
	n := uint32(0)
	last := 0
	pos := 0
	if text == "" {
		m, err := re.FindFrom(text, 0)
		if err != nil {
			return value.Undefined, err
		}
		if m == nil {
			arr.DefineDataProperty("0", value.StrFromGo(""), true, true, true)
			it.SetArrayLength(arr, 1)
		}
		return value.Object(arr), nil
	}
	for pos <= len(text) && n < limit {
		m, err := re.FindFrom(text, pos)
		if err != nil {
			return value.Undefined, err
		}
		if m == nil || m.Index >= len(text) {
			break
		}
		if m.Length == 0 && m.Index == last {
			pos = m.Index + 1
			continue
		}
		arr.DefineDataProperty(indexKey(int(n)), value.StrFromGo(text[last:m.Index]), true, true, true)
		n++
		for _, g := range m.Groups {
			if n >= limit {
				break
			}
			if g == nil {
				arr.DefineDataProperty(indexKey(int(n)), value.Undefined, true, true, true)
			} else {
				arr.DefineDataProperty(indexKey(int(n)), value.StrFromGo(*g), true, true, true)
			}
			n++
		}
		last = m.Index + m.Length
		pos = last
		if m.Length == 0 {
			pos++
		}
	}
	if n < limit {
		arr.DefineDataProperty(indexKey(int(n)), value.StrFromGo(text[last:]), true, true, true)
		n++
	}
	it.SetArrayLength(arr, n)
	return value.Object(arr), nil
}

func matchString(it *interp.Interpreter, this value.Value, pattern value.Value) (value.Value, error) {
	s, err := thisStringValue(it, this)
	if err != nil {
		return value.Undefined, err
	}
	re, _, err := asRegExp(it, pattern)
	if err != nil {
		return value.Undefined, err
	}
	text := s.String()
	if !re.Global {
		m, err := re.FindFrom(text, 0)
		if err != nil {
			return value.Undefined, err
		}
		if m == nil {
			return value.Null, nil
		}
		return value.Object(matchResultArray(it, m, text)), nil
	}
	arr := it.NewArray(0)
	n := uint32(0)
	pos := 0
	for {
		m, err := re.FindFrom(text, pos)
		if err != nil {
			return value.Undefined, err
		}
		if m == nil {
			break
		}
		arr.DefineDataProperty(indexKey(int(n)), value.StrFromGo(m.Text), true, true, true)
		n++
		pos = m.Index + m.Length
		if m.Length == 0 {
			pos++
		}
	}
	if n == 0 {
		return value.Null, nil
	}
	it.SetArrayLength(arr, n)
	return value.Object(arr), nil
}

func matchResultArray(it *interp.Interpreter, m *jsregexp.Match, input string) *object.Object {
	arr := it.NewArray(0)
	arr.DefineDataProperty("0", value.StrFromGo(m.Text), true, true, true)
	n := uint32(1)
	for _, g := range m.Groups {
		if g == nil {
			arr.DefineDataProperty(indexKey(int(n)), value.Undefined, true, true, true)
		} else {
			arr.DefineDataProperty(indexKey(int(n)), value.StrFromGo(*g), true, true, true)
		}
		n++
	}
	it.SetArrayLength(arr, n)
	arr.DefineDataProperty("index", value.Number(float64(m.Index)), true, true, true)
	arr.DefineDataProperty("input", value.StrFromGo(input), true, true, true)
	return arr
}

func searchString(it *interp.Interpreter, this value.Value, pattern value.Value) (value.Value, error) {
	s, err := thisStringValue(it, this)
	if err != nil {
		return value.Undefined, err
	}
	re, _, err := asRegExp(it, pattern)
	if err != nil {
		return value.Undefined, err
	}
	m, err := re.FindFrom(s.String(), 0)
	if err != nil {
		return value.Undefined, err
	}
	if m == nil {
		return value.Number(-1), nil
	}
	return value.Number(float64(m.Index)), nil
}

func replaceString(it *interp.Interpreter, this value.Value, pattern, replacement value.Value) (value.Value, error) {
	s, err := thisStringValue(it, this)
	if err != nil {
		return value.Undefined, err
	}
	text := s.String()
	re, isRe, err := asRegExp(it, pattern)
	if err != nil {
		return value.Undefined, err
	}
	replFn, isFn := isCallableValue(replacement)
	var replStr string
	if !isFn {
		rs, err := it.ToStringValue(replacement)
		if err != nil {
			return value.Undefined, err
		}
		replStr = rs.String()
	}

	var out strings.Builder
	pos := 0
	for {
		m, err := re.FindFrom(text, pos)
		if err != nil {
			return value.Undefined, err
		}
		if m == nil {
			break
		}
		out.WriteString(text[pos:m.Index])
		if isFn {
			callArgs := []value.Value{value.StrFromGo(m.Text)}
			for _, g := range m.Groups {
				if g == nil {
					callArgs = append(callArgs, value.Undefined)
				} else {
					callArgs = append(callArgs, value.StrFromGo(*g))
				}
			}
			callArgs = append(callArgs, value.Number(float64(m.Index)), value.StrFromGo(text))
			res, err := it.Call(replFn, value.Undefined, callArgs)
			if err != nil {
				return value.Undefined, err
			}
			rv, err := it.ToStringValue(res)
			if err != nil {
				return value.Undefined, err
			}
			out.WriteString(rv.String())
		} else {
			out.WriteString(expandReplacement(replStr, m))
		}
		next := m.Index + m.Length
		pos = next
		if m.Length == 0 {
			if pos < len(text) {
				out.WriteByte(text[pos])
			}
			pos++
		}
		if !re.Global {
			break
		}
		if pos > len(text) {
			break
		}
	}
	if pos <= len(text) {
		out.WriteString(text[pos:])
	}
	_ = isRe
	return value.StrFromGo(out.String()), nil
}

// expandReplacement implements the $$/$&/$`/$'/$n substitution patterns ES5
// §15.5.4.11 defines for a string replacement argument.
func expandReplacement(repl string, m *jsregexp.Match) string {
	var out strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c != '$' || i+1 >= len(repl) {
			out.WriteByte(c)
			continue
		}
		next := repl[i+1]
		switch {
		case next == '$':
			out.WriteByte('$')
			i++
		case next == '&':
			out.WriteString(m.Text)
			i++
		case next >= '1' && next <= '9':
			idx := int(next - '1')
			if idx < len(m.Groups) && m.Groups[idx] != nil {
				out.WriteString(*m.Groups[idx])
			}
			i++
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
