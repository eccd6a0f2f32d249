package interp

import (
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// newArray creates an empty Array exotic object with a writable,
// non-enumerable, non-configurable "length" own property, per ES5 §15.4.
func (it *Interpreter) newArray(length uint32) *object.Object {
	arr := it.newObject("Array", it.ArrayPrototype)
	arr.DefineDataProperty("length", value.Number(float64(length)), true, false, false)
	return arr
}

func (it *Interpreter) setArrayLength(arr *object.Object, n uint32) {
	_, _ = arr.DefineOwnProperty("length", object.DataDescriptor(value.Number(float64(n)), true, false, false), false)
}

func indexKey(i int) string {
	if i == 0 {
		return "0"
	}
	digits := make([]byte, 0, 12)
	for i > 0 {
		digits = append(digits, byte('0'+i%10))
		i /= 10
	}
	for l, r := 0, len(digits)-1; l < r; l, r = l+1, r-1 {
		digits[l], digits[r] = digits[r], digits[l]
	}
	return string(digits)
}
