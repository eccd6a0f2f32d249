package builtins

import (
	"math"
	"math/rand"

	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installMath builds the Math object (ES5 §15.8): a plain object, never
// called or constructed, carrying the numeric constants and single/
// double-argument functions.
func installMath(it *interp.Interpreter) *object.Object {
	m := it.NewObject("Math", it.ObjectPrototype)

	defineConstant(m, "E", value.Number(math.E))
	defineConstant(m, "LN10", value.Number(math.Ln10))
	defineConstant(m, "LN2", value.Number(math.Ln2))
	defineConstant(m, "LOG2E", value.Number(math.Log2E))
	defineConstant(m, "LOG10E", value.Number(math.Log10E))
	defineConstant(m, "PI", value.Number(math.Pi))
	defineConstant(m, "SQRT1_2", value.Number(math.Sqrt(0.5)))
	defineConstant(m, "SQRT2", value.Number(math.Sqrt2))

	unary := func(name string, f func(float64) float64) {
		defineMethod(it, m, name, 1, func(this value.Value, args []value.Value) (value.Value, error) {
			n, err := it.ToNumber(arg(args, 0))
			if err != nil {
				return value.Undefined, err
			}
			return value.Number(f(n)), nil
		})
	}

	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("sqrt", math.Sqrt)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("exp", math.Exp)
	unary("log", math.Log)
	unary("round", jsRound)

	defineMethod(it, m, "pow", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		x, err := it.ToNumber(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		y, err := it.ToNumber(arg(args, 1))
		if err != nil {
			return value.Undefined, err
		}
		return value.Number(math.Pow(x, y)), nil
	})

	defineMethod(it, m, "atan2", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		y, err := it.ToNumber(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		x, err := it.ToNumber(arg(args, 1))
		if err != nil {
			return value.Undefined, err
		}
		return value.Number(math.Atan2(y, x)), nil
	})

	defineMethod(it, m, "min", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return minMax(it, args, true)
	})
	defineMethod(it, m, "max", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return minMax(it, args, false)
	})

	defineMethod(it, m, "random", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Number(rand.Float64()), nil
	})

	return m
}

// jsRound implements Math.round's ES5 §15.8.2.15 half-up (toward positive
// infinity) rounding, which differs from Go's math.Round (half-away-from-zero)
// for negative halves: Math.round(-0.5) is -0, not -1.
func jsRound(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return n
	}
	f := math.Floor(n)
	if n-f >= 0.5 {
		if f == -1 {
			return math.Copysign(0, -1)
		}
		return f + 1
	}
	return f
}

func minMax(it *interp.Interpreter, args []value.Value, min bool) (value.Value, error) {
	if len(args) == 0 {
		if min {
			return value.Number(math.Inf(1)), nil
		}
		return value.Number(math.Inf(-1)), nil
	}
	best := math.Inf(1)
	if !min {
		best = math.Inf(-1)
	}
	sawNaN := false
	for _, a := range args {
		n, err := it.ToNumber(a)
		if err != nil {
			return value.Undefined, err
		}
		if math.IsNaN(n) {
			sawNaN = true
			continue
		}
		if min {
			if n < best {
				best = n
			}
		} else if n > best {
			best = n
		}
	}
	if sawNaN {
		return value.Number(math.NaN()), nil
	}
	return value.Number(best), nil
}
