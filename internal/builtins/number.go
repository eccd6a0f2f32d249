package builtins

import (
	"math"
	"strconv"

	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installNumber builds the Number constructor, its static properties (ES5
// §15.7.3) and Number.prototype (§15.7.4), including the toFixed/
// toPrecision/toExponential formatting methods and radix toString.
func installNumber(it *interp.Interpreter) *object.Object {
	proto := it.NumberPrototype
	proto.PrimitiveValue, proto.HasPrimitive = value.Number(0), true

	ctor := nativeFunc(it, "Number", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(0), nil
		}
		n, err := it.ToNumber(args[0])
		if err != nil {
			return value.Undefined, err
		}
		return value.Number(n), nil
	})
	ctor.Construct = func(args []value.Value) (value.Value, error) {
		n := 0.0
		if len(args) > 0 {
			v, err := it.ToNumber(args[0])
			if err != nil {
				return value.Undefined, err
			}
			n = v
		}
		o := it.NewObject("Number", proto)
		o.PrimitiveValue, o.HasPrimitive = value.Number(n), true
		return value.Object(o), nil
	}
	ctor.DefineDataProperty("prototype", value.Object(proto), false, false, false)
	proto.DefineDataProperty("constructor", value.Object(ctor), true, false, true)

	defineConstant(ctor, "MAX_VALUE", value.Number(math.MaxFloat64))
	defineConstant(ctor, "MIN_VALUE", value.Number(5e-324))
	defineConstant(ctor, "NaN", value.Number(math.NaN()))
	defineConstant(ctor, "POSITIVE_INFINITY", value.Number(math.Inf(1)))
	defineConstant(ctor, "NEGATIVE_INFINITY", value.Number(math.Inf(-1)))

	defineMethod(it, proto, "toString", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberValue(this)
		if err != nil {
			return value.Undefined, err
		}
		radix := 10
		if a := arg(args, 0); !a.IsUndefined() {
			r, err := it.ToInteger(a)
			if err != nil {
				return value.Undefined, err
			}
			radix = int(r)
		}
		if radix == 10 {
			return value.StrFromGo(value.NumberToString(n)), nil
		}
		if radix < 2 || radix > 36 {
			return value.Undefined, newRangeError("toString radix must be between 2 and 36")
		}
		return value.StrFromGo(numberToStringRadix(n, radix)), nil
	})
	defineMethod(it, proto, "toLocaleString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberValue(this)
		if err != nil {
			return value.Undefined, err
		}
		return value.StrFromGo(value.NumberToString(n)), nil
	})
	defineMethod(it, proto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberValue(this)
		if err != nil {
			return value.Undefined, err
		}
		return value.Number(n), nil
	})

	defineMethod(it, proto, "toFixed", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberValue(this)
		if err != nil {
			return value.Undefined, err
		}
		digits := 0
		if a := arg(args, 0); !a.IsUndefined() {
			d, err := it.ToInteger(a)
			if err != nil {
				return value.Undefined, err
			}
			digits = int(d)
		}
		if digits < 0 || digits > 20 {
			return value.Undefined, newRangeError("toFixed() digits argument must be between 0 and 20")
		}
		if math.IsNaN(n) {
			return value.StrFromGo("NaN"), nil
		}
		if math.Abs(n) >= 1e21 {
			return value.StrFromGo(value.NumberToString(n)), nil
		}
		return value.StrFromGo(strconv.FormatFloat(n, 'f', digits, 64)), nil
	})

	defineMethod(it, proto, "toPrecision", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberValue(this)
		if err != nil {
			return value.Undefined, err
		}
		if arg(args, 0).IsUndefined() {
			return value.StrFromGo(value.NumberToString(n)), nil
		}
		p, err := it.ToInteger(args[0])
		if err != nil {
			return value.Undefined, err
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return value.StrFromGo(value.NumberToString(n)), nil
		}
		if p < 1 || p > 21 {
			return value.Undefined, newRangeError("toPrecision() argument must be between 1 and 21")
		}
		return value.StrFromGo(strconv.FormatFloat(n, 'g', int(p), 64)), nil
	})

	defineMethod(it, proto, "toExponential", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := thisNumberValue(this)
		if err != nil {
			return value.Undefined, err
		}
		digits := -1
		if a := arg(args, 0); !a.IsUndefined() {
			d, err := it.ToInteger(a)
			if err != nil {
				return value.Undefined, err
			}
			if d < 0 || d > 20 {
				return value.Undefined, newRangeError("toExponential() argument must be between 0 and 20")
			}
			digits = int(d)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return value.StrFromGo(value.NumberToString(n)), nil
		}
		s := strconv.FormatFloat(n, 'e', digits, 64)
		return value.StrFromGo(normalizeExponent(s)), nil
	})

	return ctor
}

func thisNumberValue(this value.Value) (float64, error) {
	if this.IsNumber() {
		return this.NumberValue(), nil
	}
	if o, ok := objectRef(this); ok && o.ClassName() == "Number" && o.HasPrimitive {
		return o.PrimitiveValue.NumberValue(), nil
	}
	return 0, newTypeError("Number.prototype method called on incompatible receiver")
}

// normalizeExponent rewrites Go's "e+05"/"e-05" exponent padding into ES5's
// unpadded "e+5"/"e-5" form (ES5 §9.8.1's ExponentialNotation).
func normalizeExponent(s string) string {
	idx := -1
	for i, c := range s {
		if c == 'e' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	mantissa, exp := s[:idx], s[idx+1:]
	sign := "+"
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		if exp[0] == '-' {
			sign = "-"
		}
		exp = exp[1:]
	}
	for len(exp) > 1 && exp[0] == '0' {
		exp = exp[1:]
	}
	return mantissa + "e" + sign + exp
}

// numberToStringRadix implements Number.prototype.toString's radix!=10 form
// (an Annex-B-adjacent feature every ES5 host actually provides), for
// integers and the fractional part with a fixed, generous digit budget.
func numberToStringRadix(n float64, radix int) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	intPart := math.Floor(n)
	frac := n - intPart

	digits := "0123456789abcdefghijklmnopqrstuvwxyz"
	var intDigits []byte
	if intPart == 0 {
		intDigits = []byte{'0'}
	}
	for intPart > 0 {
		d := int64(math.Mod(intPart, float64(radix)))
		intDigits = append([]byte{digits[d]}, intDigits...)
		intPart = math.Floor(intPart / float64(radix))
	}

	out := string(intDigits)
	if frac > 0 {
		out += "."
		for i := 0; i < 20 && frac > 0; i++ {
			frac *= float64(radix)
			d := int64(math.Floor(frac))
			out += string(digits[d])
			frac -= float64(d)
		}
	}
	if neg {
		out = "-" + out
	}
	return out
}
