package interp

import (
	"math"

	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// binaryOp evaluates one non-logical binary operator (ES5 §11.5-§11.10); the
// short-circuiting && and || operators are handled directly in
// evalBinary since they must not evaluate their right operand eagerly.
func (it *Interpreter) binaryOp(op string, left, right value.Value) (value.Value, error) {
	switch op {
	case "+":
		return it.add(left, right)
	case "-":
		return it.numericOp(left, right, func(a, b float64) float64 { return a - b })
	case "*":
		return it.numericOp(left, right, func(a, b float64) float64 { return a * b })
	case "/":
		return it.numericOp(left, right, func(a, b float64) float64 { return a / b })
	case "%":
		return it.numericOp(left, right, math.Mod)
	case "<", ">", "<=", ">=":
		return it.relational(op, left, right)
	case "==":
		return it.abstractEquals(left, right)
	case "!=":
		v, err := it.abstractEquals(left, right)
		if err != nil {
			return value.Undefined, err
		}
		return value.Bool(!v.BoolValue()), nil
	case "===":
		return value.Bool(value.StrictEquals(left, right)), nil
	case "!==":
		return value.Bool(!value.StrictEquals(left, right)), nil
	case "&":
		return it.int32Op(left, right, func(a, b int32) int32 { return a & b })
	case "|":
		return it.int32Op(left, right, func(a, b int32) int32 { return a | b })
	case "^":
		return it.int32Op(left, right, func(a, b int32) int32 { return a ^ b })
	case "<<":
		return it.shiftOp(left, right, func(a int32, s uint32) int32 { return a << (s & 31) })
	case ">>":
		return it.shiftOp(left, right, func(a int32, s uint32) int32 { return a >> (s & 31) })
	case ">>>":
		l, err := it.ToUint32(left)
		if err != nil {
			return value.Undefined, err
		}
		r, err := it.ToUint32(right)
		if err != nil {
			return value.Undefined, err
		}
		return value.Number(float64(l >> (r & 31))), nil
	case "instanceof":
		return it.instanceOf(left, right)
	case "in":
		return it.inOperator(left, right)
	}
	return value.Undefined, jserrors.NewTypeError("unsupported operator %q", op)
}

// add implements ES5 §11.6.1 The Addition operator: string concatenation
// wins if either ToPrimitive result is a string.
func (it *Interpreter) add(left, right value.Value) (value.Value, error) {
	lp, err := it.ToPrimitive(left, "")
	if err != nil {
		return value.Undefined, err
	}
	rp, err := it.ToPrimitive(right, "")
	if err != nil {
		return value.Undefined, err
	}
	if lp.IsString() || rp.IsString() {
		ls, err := it.ToStringValue(lp)
		if err != nil {
			return value.Undefined, err
		}
		rs, err := it.ToStringValue(rp)
		if err != nil {
			return value.Undefined, err
		}
		return value.Str(ls.Concat(rs)), nil
	}
	ln, err := it.ToNumber(lp)
	if err != nil {
		return value.Undefined, err
	}
	rn, err := it.ToNumber(rp)
	if err != nil {
		return value.Undefined, err
	}
	return value.Number(ln + rn), nil
}

func (it *Interpreter) numericOp(left, right value.Value, f func(a, b float64) float64) (value.Value, error) {
	l, err := it.ToNumber(left)
	if err != nil {
		return value.Undefined, err
	}
	r, err := it.ToNumber(right)
	if err != nil {
		return value.Undefined, err
	}
	return value.Number(f(l, r)), nil
}

func (it *Interpreter) int32Op(left, right value.Value, f func(a, b int32) int32) (value.Value, error) {
	l, err := it.ToInt32(left)
	if err != nil {
		return value.Undefined, err
	}
	r, err := it.ToInt32(right)
	if err != nil {
		return value.Undefined, err
	}
	return value.Number(float64(f(l, r))), nil
}

func (it *Interpreter) shiftOp(left, right value.Value, f func(a int32, s uint32) int32) (value.Value, error) {
	l, err := it.ToInt32(left)
	if err != nil {
		return value.Undefined, err
	}
	r, err := it.ToUint32(right)
	if err != nil {
		return value.Undefined, err
	}
	return value.Number(float64(f(l, r))), nil
}

// relational implements ES5 §11.8's abstract relational comparison,
// including the NaN-always-false and string-vs-number dispatch rules.
func (it *Interpreter) relational(op string, left, right value.Value) (value.Value, error) {
	lp, err := it.ToPrimitive(left, "number")
	if err != nil {
		return value.Undefined, err
	}
	rp, err := it.ToPrimitive(right, "number")
	if err != nil {
		return value.Undefined, err
	}

	var result int
	undefined := false
	if lp.IsString() && rp.IsString() {
		result = lp.StringValue().Compare(rp.StringValue())
	} else {
		ln, err := it.ToNumber(lp)
		if err != nil {
			return value.Undefined, err
		}
		rn, err := it.ToNumber(rp)
		if err != nil {
			return value.Undefined, err
		}
		if math.IsNaN(ln) || math.IsNaN(rn) {
			undefined = true
		} else if ln < rn {
			result = -1
		} else if ln > rn {
			result = 1
		} else {
			result = 0
		}
	}

	if undefined {
		return value.Bool(false), nil
	}
	switch op {
	case "<":
		return value.Bool(result < 0), nil
	case ">":
		return value.Bool(result > 0), nil
	case "<=":
		return value.Bool(result <= 0), nil
	case ">=":
		return value.Bool(result >= 0), nil
	}
	return value.Bool(false), nil
}

// abstractEquals implements ES5 §11.9.3 The Abstract Equality Comparison
// Algorithm (==).
func (it *Interpreter) abstractEquals(a, b value.Value) (value.Value, error) {
	if a.Kind() == b.Kind() {
		return value.Bool(value.StrictEquals(a, b)), nil
	}
	if a.IsNullOrUndefined() && b.IsNullOrUndefined() {
		return value.Bool(true), nil
	}
	if a.IsNullOrUndefined() || b.IsNullOrUndefined() {
		return value.Bool(false), nil
	}
	if a.IsNumber() && b.IsString() {
		rn, err := it.ToNumber(b)
		if err != nil {
			return value.Undefined, err
		}
		return it.abstractEquals(a, value.Number(rn))
	}
	if a.IsString() && b.IsNumber() {
		ln, err := it.ToNumber(a)
		if err != nil {
			return value.Undefined, err
		}
		return it.abstractEquals(value.Number(ln), b)
	}
	if a.IsBoolean() {
		ln, err := it.ToNumber(a)
		if err != nil {
			return value.Undefined, err
		}
		return it.abstractEquals(value.Number(ln), b)
	}
	if b.IsBoolean() {
		rn, err := it.ToNumber(b)
		if err != nil {
			return value.Undefined, err
		}
		return it.abstractEquals(a, value.Number(rn))
	}
	if (a.IsNumber() || a.IsString()) && b.IsObject() {
		rp, err := it.ToPrimitive(b, "")
		if err != nil {
			return value.Undefined, err
		}
		return it.abstractEquals(a, rp)
	}
	if a.IsObject() && (b.IsNumber() || b.IsString()) {
		lp, err := it.ToPrimitive(a, "")
		if err != nil {
			return value.Undefined, err
		}
		return it.abstractEquals(lp, b)
	}
	return value.Bool(false), nil
}

// instanceOf implements ES5 §11.8.6.
func (it *Interpreter) instanceOf(left, right value.Value) (value.Value, error) {
	if !right.IsObject() {
		return value.Undefined, jserrors.NewTypeError("right-hand side of 'instanceof' is not an object")
	}
	ctor, ok := right.ObjectRef().(*object.Object)
	if !ok || !ctor.IsCallable() {
		return value.Undefined, jserrors.NewTypeError("right-hand side of 'instanceof' is not callable")
	}
	if !left.IsObject() {
		return value.Bool(false), nil
	}
	protoVal, err := ctor.Get("prototype", right, it.invokeGetter)
	if err != nil {
		return value.Undefined, err
	}
	proto, ok := protoVal.ObjectRef().(*object.Object)
	if !ok {
		return value.Undefined, jserrors.NewTypeError("function has non-object prototype")
	}
	o, _ := left.ObjectRef().(*object.Object)
	for cur := o.Prototype(); cur != nil; cur = cur.Prototype() {
		if cur == proto {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

// inOperator implements ES5 §11.8.7.
func (it *Interpreter) inOperator(left, right value.Value) (value.Value, error) {
	if !right.IsObject() {
		return value.Undefined, jserrors.NewTypeError("cannot use 'in' operator on a non-object")
	}
	o := right.ObjectRef().(*object.Object)
	name, err := it.ToStringValue(left)
	if err != nil {
		return value.Undefined, err
	}
	return value.Bool(o.HasProperty(name.String())), nil
}

// unaryMinus/unaryPlus/bitwiseNot/logicalNot implement ES5 §11.4.6/.7/.8/.9.
func (it *Interpreter) unaryMinus(v value.Value) (value.Value, error) {
	n, err := it.ToNumber(v)
	if err != nil {
		return value.Undefined, err
	}
	return value.Number(-n), nil
}

func (it *Interpreter) unaryPlus(v value.Value) (value.Value, error) {
	n, err := it.ToNumber(v)
	if err != nil {
		return value.Undefined, err
	}
	return value.Number(n), nil
}

func (it *Interpreter) bitwiseNot(v value.Value) (value.Value, error) {
	n, err := it.ToInt32(v)
	if err != nil {
		return value.Undefined, err
	}
	return value.Number(float64(^n)), nil
}

func logicalNot(v value.Value) value.Value {
	return value.Bool(!value.ToBoolean(v))
}
