// Package value implements the ECMAScript tagged value union and the
// primitive-level abstract operations (ToBoolean, ToNumber, ToString, and
// friends) from spec.md §1's data model. Conversions that may invoke user
// code (ToPrimitive on an object, which can call valueOf/toString) take a
// coercer callback supplied by internal/interp, keeping this package free
// of any dependency on the object model or the evaluator.
package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/mras0/mjs-sub001/internal/jsstring"
)

// Kind tags which alternative of the union a Value holds.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Ref is satisfied by internal/object.Object; declared here (rather than
// imported) so this package has no dependency on the object model, per
// Go's "accept interfaces" convention.
type Ref interface {
	// ClassName returns the internal [[Class]] string, e.g. "Array".
	ClassName() string
}

// Value is the ES5 tagged value: exactly one of undefined, null, a
// boolean, a number, a string, or an object reference.
type Value struct {
	kind Kind
	num  float64
	str  jsstring.String
	b    bool
	ref  Ref
}

var Undefined = Value{kind: KindUndefined}
var Null = Value{kind: KindNull}

func Bool(b bool) Value     { return Value{kind: KindBoolean, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func Str(s jsstring.String) Value { return Value{kind: KindString, str: s} }
func StrFromGo(s string) Value    { return Str(jsstring.FromGo(s)) }
func Object(ref Ref) Value        { return Value{kind: KindObject, ref: ref} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullOrUndefined() bool {
	return v.kind == KindUndefined || v.kind == KindNull
}
func (v Value) IsBoolean() bool { return v.kind == KindBoolean }
func (v Value) IsNumber() bool  { return v.kind == KindNumber }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsObject() bool  { return v.kind == KindObject }

// BoolValue, NumberValue, StringValue, and ObjectRef do not check Kind:
// on a Value of the wrong Kind they return the zero value of their result
// type. Callers are expected to check Kind first, the
// same contract the teacher's typed *XxxValue structs enforced implicitly
// through Go's type system.
func (v Value) BoolValue() bool            { return v.b }
func (v Value) NumberValue() float64       { return v.num }
func (v Value) StringValue() jsstring.String { return v.str }
func (v Value) ObjectRef() Ref             { return v.ref }

// TypeOf implements the `typeof` operator (ES5 §11.4.3). Function objects
// are handled by the caller, since "is this object callable" is an
// object-model question this package doesn't know about.
func (v Value) TypeOf(isCallable func(Ref) bool) string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "object"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		if isCallable != nil && isCallable(v.ref) {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

// ToBoolean implements ES5 §9.2 ToBoolean. Object values are always truthy
// regardless of value, so this never needs the object coercer.
func ToBoolean(v Value) bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindString:
		return v.str.Length() > 0
	case KindObject:
		return true
	}
	return false
}

// ObjectCoercer is supplied by internal/interp: it performs [[DefaultValue]]
// on an object reference, which may invoke user-defined valueOf/toString
// methods (ES5 §8.12.8).
type ObjectCoercer func(ref Ref, hint string) (Value, error)

// ToPrimitive implements ES5 §9.1. hint is "number", "string", or "" (the
// default hint, treated as "number" except for Date, which the coercer
// itself special-cases).
func ToPrimitive(v Value, hint string, coerce ObjectCoercer) (Value, error) {
	if v.kind != KindObject {
		return v, nil
	}
	return coerce(v.ref, hint)
}

// ToNumber implements ES5 §9.3.
func ToNumber(v Value, coerce ObjectCoercer) (float64, error) {
	switch v.kind {
	case KindUndefined:
		return math.NaN(), nil
	case KindNull:
		return 0, nil
	case KindBoolean:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindNumber:
		return v.num, nil
	case KindString:
		return StringToNumber(v.str), nil
	case KindObject:
		prim, err := ToPrimitive(v, "number", coerce)
		if err != nil {
			return 0, err
		}
		return ToNumber(prim, coerce)
	}
	return math.NaN(), nil
}

// StringToNumber implements ES5 §9.3.1's StringNumericLiteral grammar,
// covering the forms ToNumber must additionally accept beyond Go's
// strconv.ParseFloat: a bare sign, leading/trailing whitespace, "Infinity",
// and hex literals (0x.../0X...).
func StringToNumber(s jsstring.String) float64 {
	str := strings.TrimSpace(s.String())
	if str == "" {
		return 0
	}
	neg := false
	rest := str
	switch {
	case strings.HasPrefix(rest, "+"):
		rest = rest[1:]
	case strings.HasPrefix(rest, "-"):
		neg = true
		rest = rest[1:]
	}
	if rest == "Infinity" {
		if neg {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	if strings.HasPrefix(rest, "0x") || strings.HasPrefix(rest, "0X") {
		n, err := strconv.ParseUint(rest[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		if neg {
			return -float64(n)
		}
		return float64(n)
	}
	n, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return math.NaN()
	}
	if neg {
		return -n
	}
	return n
}

// ToInteger implements ES5 §9.4.
func ToInteger(v Value, coerce ObjectCoercer) (float64, error) {
	n, err := ToNumber(v, coerce)
	if err != nil {
		return 0, err
	}
	return integer(n), nil
}

func integer(n float64) float64 {
	if math.IsNaN(n) {
		return 0
	}
	if math.IsInf(n, 0) || n == 0 {
		return n
	}
	if n < 0 {
		return -math.Floor(-n)
	}
	return math.Floor(n)
}

// ToInt32 implements ES5 §9.5.
func ToInt32(v Value, coerce ObjectCoercer) (int32, error) {
	n, err := ToNumber(v, coerce)
	if err != nil {
		return 0, err
	}
	return NumberToInt32(n), nil
}

func NumberToInt32(n float64) int32 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	posInt := integer(n)
	const twoPow32 = 4294967296
	mod := math.Mod(posInt, twoPow32)
	if mod < 0 {
		mod += twoPow32
	}
	if mod >= twoPow32/2 {
		return int32(mod - twoPow32)
	}
	return int32(mod)
}

// ToUint32 implements ES5 §9.6.
func ToUint32(v Value, coerce ObjectCoercer) (uint32, error) {
	n, err := ToNumber(v, coerce)
	if err != nil {
		return 0, err
	}
	return NumberToUint32(n), nil
}

func NumberToUint32(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	posInt := integer(n)
	const twoPow32 = 4294967296
	mod := math.Mod(posInt, twoPow32)
	if mod < 0 {
		mod += twoPow32
	}
	return uint32(mod)
}

// ToUint16 implements ES5 §9.7, used by String.fromCharCode.
func ToUint16(v Value, coerce ObjectCoercer) (uint16, error) {
	n, err := ToNumber(v, coerce)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0, nil
	}
	posInt := integer(n)
	mod := math.Mod(posInt, 65536)
	if mod < 0 {
		mod += 65536
	}
	return uint16(mod), nil
}

// ToStringValue implements ES5 §9.8 ToString.
func ToStringValue(v Value, coerce ObjectCoercer) (jsstring.String, error) {
	switch v.kind {
	case KindUndefined:
		return jsstring.FromGo("undefined"), nil
	case KindNull:
		return jsstring.FromGo("null"), nil
	case KindBoolean:
		if v.b {
			return jsstring.FromGo("true"), nil
		}
		return jsstring.FromGo("false"), nil
	case KindNumber:
		return jsstring.FromGo(NumberToString(v.num)), nil
	case KindString:
		return v.str, nil
	case KindObject:
		prim, err := ToPrimitive(v, "string", coerce)
		if err != nil {
			return jsstring.Empty, err
		}
		return ToStringValue(prim, coerce)
	}
	return jsstring.Empty, nil
}

// NumberToString implements ES5 §9.8.1's Number::toString algorithm using
// Go's shortest round-trippable decimal formatting, which satisfies the
// same "shortest string that round-trips" requirement the spec mandates.
func NumberToString(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if n == 0 {
		if math.Signbit(n) {
			return "0"
		}
		return "0"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if abs := math.Abs(n); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	// Go pads the exponent to two digits ("1e-07"); ES5 does not.
	s := strconv.FormatFloat(n, 'e', -1, 64)
	i := strings.IndexByte(s, 'e')
	return s[:i+2] + strings.TrimLeft(s[i+2:], "0")
}

// SameValue implements the SameValue algorithm (ES5 §9.12): strict
// equality, except that NaN equals NaN and +0 and -0 differ.
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		if a.num == 0 && b.num == 0 {
			return math.Signbit(a.num) == math.Signbit(b.num)
		}
		return a.num == b.num
	case KindString:
		return a.str.Equal(b.str)
	case KindObject:
		return a.ref == b.ref
	}
	return false
}

// StrictEquals implements the === operator (ES5 §11.9.6).
func StrictEquals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str.Equal(b.str)
	case KindObject:
		return a.ref == b.ref
	}
	return false
}
