// Package interp is the tree-walking evaluator: it walks the
// internal/ast tree produced by internal/parser and drives the runtime
// types from internal/value, internal/object, and internal/env. It is the
// one package allowed to know about all three at once, since it is the
// thing that supplies the callback types (value.ObjectCoercer,
// object.Getter/Setter/DefaultValueFunc) those lower packages declare but
// cannot implement themselves without calling back into user code.
package interp

import (
	"math"

	"github.com/mras0/mjs-sub001/internal/env"
	"github.com/mras0/mjs-sub001/internal/heap"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/jsstring"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// Interpreter holds the shared runtime state for one program: the managed
// heap, the global object/environment, and the well-known prototypes that
// internal/builtins populates with standard methods. Construction here
// only wires the skeleton (empty prototypes linked into the chain the spec
// requires); internal/builtins is responsible for installing the actual
// methods and constructors onto it.
type Interpreter struct {
	Heap *heap.Heap

	Global    *object.Object
	GlobalEnv *env.Record

	ObjectPrototype   *object.Object
	FunctionPrototype *object.Object
	ArrayPrototype    *object.Object
	StringPrototype   *object.Object
	BooleanPrototype  *object.Object
	NumberPrototype   *object.Object
	DatePrototype     *object.Object
	RegExpPrototype   *object.Object
	ErrorPrototype    *object.Object

	// ErrorPrototypes maps each native error kind's name ("TypeError", ...)
	// to its dedicated prototype object, each of which chains to
	// ErrorPrototype per ES5 §15.11.
	ErrorPrototypes map[string]*object.Object

	// ErrorConstructors mirrors ErrorPrototypes for the matching
	// constructor function object, used to build thrown error values and
	// to check instanceof relationships cheaply.
	ErrorConstructors map[string]*object.Object

	// GlobalEval is the function object internal/builtins installs as the
	// global "eval" property; evalCall compares against it by identity to
	// decide whether a call to the identifier `eval` is direct (ES5
	// §15.1.2.1.1) or merely a call to whatever "eval" currently resolves
	// to. internal/builtins sets this once during bootstrap.
	GlobalEval *object.Object

	// callDepth bounds recursion so a runaway script gets a RangeError
	// instead of exhausting the Go stack.
	callDepth int
}

const maxCallDepth = 1 << 12

// New creates an Interpreter with an empty prototype skeleton and a fresh
// global environment, backed by a new heap of the given capacity (0
// selects heap.New's default).
func New(heapCapacity int) *Interpreter {
	return NewWithHeap(heap.New(heapCapacity))
}

// NewWithHeap is like New but allocates the prototype skeleton and global
// object into a caller-supplied heap instead of creating one of its own.
// Callers that need to hold the heap before the interpreter exists (e.g.
// to report capacity or drive a conformance run's GC polling) must use
// this rather than New, since New's heap can't be swapped out afterward:
// the bootstrap objects and GC roots below are already bound to it by the
// time New returns.
func NewWithHeap(h *heap.Heap) *Interpreter {
	it := &Interpreter{
		Heap:              h,
		ErrorPrototypes:   make(map[string]*object.Object),
		ErrorConstructors: make(map[string]*object.Object),
	}

	it.ObjectPrototype = it.newObject("Object", nil)
	it.FunctionPrototype = it.newObject("Function", it.ObjectPrototype)
	it.FunctionPrototype.Call = func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Undefined, nil
	}
	it.ArrayPrototype = it.newObject("Array", it.ObjectPrototype)
	it.StringPrototype = it.newObject("String", it.ObjectPrototype)
	it.BooleanPrototype = it.newObject("Boolean", it.ObjectPrototype)
	it.NumberPrototype = it.newObject("Number", it.ObjectPrototype)
	it.DatePrototype = it.newObject("Date", it.ObjectPrototype)
	it.RegExpPrototype = it.newObject("RegExp", it.ObjectPrototype)
	it.ErrorPrototype = it.newObject("Error", it.ObjectPrototype)

	it.Global = it.newObject("global", it.ObjectPrototype)
	it.GlobalEnv = env.NewObject(nil, it.Global, true)

	it.Heap.AddRoot(func() []heap.Collectable {
		return []heap.Collectable{it.Global, it.ObjectPrototype, it.FunctionPrototype,
			it.ArrayPrototype, it.StringPrototype, it.BooleanPrototype, it.NumberPrototype,
			it.DatePrototype, it.RegExpPrototype, it.ErrorPrototype}
	})

	it.Heap.AddRoot(func() []heap.Collectable {
		out := make([]heap.Collectable, 0, len(it.ErrorPrototypes)+len(it.ErrorConstructors))
		for _, p := range it.ErrorPrototypes {
			out = append(out, p)
		}
		for _, c := range it.ErrorConstructors {
			out = append(out, c)
		}
		return out
	})

	return it
}

// newObject creates an object and registers it with the managed heap, per
// spec.md's "every heap object is created by the evaluator via the managed
// heap" lifecycle rule. All object creation inside this package and its
// siblings routes through here (or through NewFunction/newArray, which call
// this) rather than calling object.New directly.
func (it *Interpreter) newObject(class string, proto *object.Object) *object.Object {
	o := object.New(class, proto)
	it.Heap.Allocate(o)
	return o
}

// Coerce implements value.ObjectCoercer: ES5 §8.12.8 [[DefaultValue]].
func (it *Interpreter) Coerce(ref value.Ref, hint string) (value.Value, error) {
	o, ok := ref.(*object.Object)
	if !ok {
		return value.Undefined, jserrors.NewTypeError("cannot convert to primitive value")
	}
	return it.defaultValue(o, hint)
}

func (it *Interpreter) defaultValue(o *object.Object, hint string) (value.Value, error) {
	order := []string{"valueOf", "toString"}
	if hint == "string" || (hint == "" && o.ClassName() == "Date") {
		order = []string{"toString", "valueOf"}
	}
	for _, name := range order {
		m, err := o.Get(name, value.Object(o), it.invokeGetter)
		if err != nil {
			return value.Undefined, err
		}
		if m.IsObject() {
			if fn, ok := m.ObjectRef().(*object.Object); ok && fn.IsCallable() {
				res, err := it.callFunction(fn, value.Object(o), nil)
				if err != nil {
					return value.Undefined, err
				}
				if !res.IsObject() {
					return res, nil
				}
			}
		}
	}
	return value.Undefined, jserrors.NewTypeError("cannot convert object to primitive value")
}

func (it *Interpreter) invokeGetter(fn *object.Object, this value.Value) (value.Value, error) {
	return it.callFunction(fn, this, nil)
}

func (it *Interpreter) invokeSetter(fn *object.Object, this value.Value, v value.Value) error {
	_, err := it.callFunction(fn, this, []value.Value{v})
	return err
}

// callFunction performs ES5 [[Call]] on fn, enforcing the recursion guard
// shared by ordinary calls, getter/setter invocation, and ToPrimitive.
func (it *Interpreter) callFunction(fn *object.Object, this value.Value, args []value.Value) (value.Value, error) {
	if fn == nil || fn.Call == nil {
		return value.Undefined, jserrors.NewTypeError("value is not a function")
	}
	it.callDepth++
	if it.callDepth > maxCallDepth {
		it.callDepth--
		return value.Undefined, jserrors.NewRangeError("maximum call stack size exceeded")
	}
	defer func() { it.callDepth-- }()
	return fn.Call(this, args)
}

// ToNumber/ToString/ToInteger/... convenience wrappers binding this
// interpreter's Coerce as the ObjectCoercer, so evaluator code never needs
// to repeat `, it.Coerce`.
func (it *Interpreter) ToNumber(v value.Value) (float64, error)  { return value.ToNumber(v, it.Coerce) }
func (it *Interpreter) ToInteger(v value.Value) (float64, error) { return value.ToInteger(v, it.Coerce) }
func (it *Interpreter) ToInt32(v value.Value) (int32, error)     { return value.ToInt32(v, it.Coerce) }
func (it *Interpreter) ToUint32(v value.Value) (uint32, error)   { return value.ToUint32(v, it.Coerce) }
func (it *Interpreter) ToUint16(v value.Value) (uint16, error)   { return value.ToUint16(v, it.Coerce) }
func (it *Interpreter) ToStringValue(v value.Value) (jsstring.String, error) {
	return value.ToStringValue(v, it.Coerce)
}
func (it *Interpreter) ToPrimitive(v value.Value, hint string) (value.Value, error) {
	return value.ToPrimitive(v, hint, it.Coerce)
}

// ToObject implements ES5 §9.9: wraps primitives in the corresponding
// wrapper object, throws for undefined/null, and passes objects through.
func (it *Interpreter) ToObject(v value.Value) (*object.Object, error) {
	switch v.Kind() {
	case value.KindUndefined, value.KindNull:
		return nil, jserrors.NewTypeError("cannot convert %s to object", v.Kind())
	case value.KindBoolean:
		o := it.newObject("Boolean", it.BooleanPrototype)
		o.PrimitiveValue, o.HasPrimitive = v, true
		return o, nil
	case value.KindNumber:
		o := it.newObject("Number", it.NumberPrototype)
		o.PrimitiveValue, o.HasPrimitive = v, true
		return o, nil
	case value.KindString:
		o := it.newObject("String", it.StringPrototype)
		o.PrimitiveValue, o.HasPrimitive = v, true
		o.DefineDataProperty("length", value.Number(float64(v.StringValue().Length())), false, false, false)
		return o, nil
	case value.KindObject:
		return v.ObjectRef().(*object.Object), nil
	}
	return nil, jserrors.NewTypeError("cannot convert to object")
}

// NewError constructs a thrown error object of the given native kind,
// chained to that kind's dedicated prototype, matching what
// internal/builtins wires up for `new TypeError(...)` etc.
func (it *Interpreter) NewError(kind jserrors.Kind, message string) *object.Object {
	proto := it.ErrorPrototypes[string(kind)]
	if proto == nil {
		proto = it.ErrorPrototype
	}
	o := it.newObject("Error", proto)
	o.DefineDataProperty("message", value.StrFromGo(message), true, false, true)
	o.DefineDataProperty("name", value.StrFromGo(string(kind)), true, false, true)
	return o
}

// ThrowValue wraps a Go error crossing up from internal/value,
// internal/object, or internal/jserrors into the Value that gets thrown:
// a *jserrors.NativeError becomes a real Error object, a *nativeThrow yields
// the value it carries, and any other error is wrapped as a generic Error
// with its Go message text.
func (it *Interpreter) ThrowValue(err error) value.Value {
	if ne, ok := err.(*jserrors.NativeError); ok {
		return value.Object(it.NewError(ne.Kind, ne.Message))
	}
	if nt, ok := err.(*nativeThrow); ok {
		return nt.v
	}
	return value.Object(it.NewError(jserrors.KindError, err.Error()))
}

// isCallable adapts object.Object.IsCallable to value.Value.TypeOf's
// callback signature.
func isCallable(ref value.Ref) bool {
	o, ok := ref.(*object.Object)
	return ok && o.IsCallable()
}

// toInt clamps a float64 (already an integer per ToInteger) into Go int,
// saturating at the int32 range.
func toInt(n float64) int {
	if math.IsNaN(n) {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int(n)
}
