// Package env implements ES5 lexical environments (ES5 §10.2): declarative
// environment records for var/function bindings and catch clauses, object
// environment records for `with` statement scoping, and the outer-reference
// chain that links them into the scope a statement or expression evaluates
// in. The nested-scope shape (store map plus an outer pointer, with
// Get/Set/Define/Has walking the chain) follows the teacher's
// internal/interp/runtime.Environment; ES5 bindings additionally track
// mutability (a named function expression's own name is immutable) and
// deletability, which plain variable storage doesn't need.
package env

import (
	"github.com/mras0/mjs-sub001/internal/heap"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// binding is one entry of a declarative environment record (ES5 §10.2.1.1).
type binding struct {
	value      value.Value
	mutable    bool
	deletable  bool
	initialized bool
}

// Record is a single environment record: either declarative (own map of
// bindings) or an object environment record wrapping a with-statement
// target. Exactly one of bindings/bindObject is used, matching the ES5
// distinction between declarative and object environment records.
type Record struct {
	outer *Record

	// declarative environment record fields.
	bindings map[string]*binding

	// object environment record fields (ES5 §10.2.1.2), used for `with`.
	bindObject  *object.Object
	provideThis bool
}

// NewDeclarative creates a declarative environment record (ES5 §10.2.1.1),
// used for function activation records, a named function expression's
// name scope, catch clauses, switch blocks, and strict direct eval. The
// global environment is an object environment record (NewObject).
func NewDeclarative(outer *Record) *Record {
	return &Record{outer: outer, bindings: make(map[string]*binding)}
}

// NewObject creates an object environment record wrapping target, used for
// `with` statement bodies (ES5 §10.2.1.2). provideThis is true only for
// the implicit global object environment record some hosts supply; `with`
// itself always creates one with provideThis false.
func NewObject(outer *Record, target *object.Object, provideThis bool) *Record {
	return &Record{outer: outer, bindObject: target, provideThis: provideThis}
}

func (r *Record) Outer() *Record { return r.outer }

// Trace implements heap.Collectable so a function's closure chain keeps
// every live binding's object values reachable across a collection, even
// though environment records themselves are never heap-allocated entries.
func (r *Record) Trace(visit func(heap.Collectable)) {
	if r == nil {
		return
	}
	if r.outer != nil {
		visit(r.outer)
	}
	if r.isObjectRecord() {
		visit(r.bindObject)
		return
	}
	for _, b := range r.bindings {
		if b.value.IsObject() {
			if c, ok := b.value.ObjectRef().(heap.Collectable); ok {
				visit(c)
			}
		}
	}
}

func (r *Record) isObjectRecord() bool { return r.bindObject != nil }

// HasBinding implements ES5 §10.2.1.1.2 / §10.2.1.2.2.
func (r *Record) HasBinding(name string) bool {
	if r.isObjectRecord() {
		return r.bindObject.HasProperty(name)
	}
	_, ok := r.bindings[name]
	return ok
}

// CreateMutableBinding implements §10.2.1.1.3 / §10.2.1.2.3 (used for `var`
// declarations, hoisted before execution with value undefined).
func (r *Record) CreateMutableBinding(name string, deletable bool) {
	if r.isObjectRecord() {
		r.bindObject.DefineDataProperty(name, value.Undefined, true, true, deletable)
		return
	}
	if _, ok := r.bindings[name]; ok {
		return
	}
	r.bindings[name] = &binding{value: value.Undefined, mutable: true, deletable: deletable, initialized: true}
}

// CreateImmutableBinding implements §10.2.1.1.1b, used for a named function
// expression's own name binding (ES5 §13); uninitialized until
// InitializeImmutableBinding runs.
func (r *Record) CreateImmutableBinding(name string) {
	if r.isObjectRecord() {
		return
	}
	r.bindings[name] = &binding{mutable: false, initialized: false}
}

func (r *Record) InitializeImmutableBinding(name string, v value.Value) {
	if b, ok := r.bindings[name]; ok {
		b.value = v
		b.initialized = true
	}
}

// SetMutableBinding implements §10.2.1.1.4 / §10.2.1.2.4.
func (r *Record) SetMutableBinding(name string, v value.Value, strict bool) error {
	if r.isObjectRecord() {
		return r.bindObject.Put(name, v, strict, nil)
	}
	b, ok := r.bindings[name]
	if !ok {
		if strict {
			return jserrors.NewReferenceError("%s is not defined", name)
		}
		r.bindings[name] = &binding{value: v, mutable: true, deletable: true, initialized: true}
		return nil
	}
	if !b.mutable {
		if strict {
			return jserrors.NewTypeError("assignment to constant %s", name)
		}
		return nil
	}
	b.value = v
	b.initialized = true
	return nil
}

// GetBindingValue implements §10.2.1.1.6 / §10.2.1.2.6.
func (r *Record) GetBindingValue(name string, strict bool) (value.Value, error) {
	if r.isObjectRecord() {
		if !r.bindObject.HasProperty(name) {
			if strict {
				return value.Undefined, jserrors.NewReferenceError("%s is not defined", name)
			}
			return value.Undefined, nil
		}
		return r.bindObject.Get(name, value.Object(r.bindObject), nil)
	}
	b, ok := r.bindings[name]
	if !ok || !b.initialized {
		if strict {
			return value.Undefined, jserrors.NewReferenceError("%s is not defined", name)
		}
		return value.Undefined, nil
	}
	return b.value, nil
}

// DeleteBinding implements §10.2.1.1.5 / §10.2.1.2.5.
func (r *Record) DeleteBinding(name string) bool {
	if r.isObjectRecord() {
		ok, _ := r.bindObject.Delete(name, false)
		return ok
	}
	b, ok := r.bindings[name]
	if !ok {
		return true
	}
	if !b.deletable {
		return false
	}
	delete(r.bindings, name)
	return true
}

// ImplicitThisValue implements §10.2.1.1.7 / §10.2.1.2.7: object
// environment records created for `with` never provide a this value (ES5
// §12.10 explicitly constructs them with provideThis false), so only the
// global object environment record (provideThis true) ever returns non-undefined here.
func (r *Record) ImplicitThisValue() (value.Value, bool) {
	if r.isObjectRecord() && r.provideThis {
		return value.Object(r.bindObject), true
	}
	return value.Undefined, false
}

// Reference is the result of identifier resolution (ES5 §10.2.2.1
// GetIdentifierReference): the environment record the binding actually
// lives in (nil if unresolved), plus the name itself.
type Reference struct {
	Base *Record
	Name string
}

// GetIdentifierReference walks the scope chain starting at r looking for
// name, implementing ES5 §10.2.2.1.
func GetIdentifierReference(r *Record, name string, strict bool) Reference {
	for cur := r; cur != nil; cur = cur.outer {
		if cur.HasBinding(name) {
			return Reference{Base: cur, Name: name}
		}
	}
	return Reference{Base: nil, Name: name}
}

// Arguments builds the arguments object for a function invocation (ES5
// §10.6). For non-strict functions with simple (non-duplicate) parameter
// names, argument i is aliased to the i'th formal parameter via
// object.ParameterMap/ParamEnv so that assigning through either view is
// visible in the other; strict-mode functions (and those with duplicate
// parameter names) get a disconnected copy instead.
func Arguments(params []string, args []value.Value, scope *Record, strict bool, prototype *object.Object, calleeObj *object.Object) *object.Object {
	argsObj := object.New("Arguments", prototype)
	for i, a := range args {
		argsObj.DefineDataProperty(indexName(i), a, true, true, true)
	}
	argsObj.DefineDataProperty("length", value.Number(float64(len(args))), true, false, true)
	if strict {
		thrower := strictArgumentsThrower()
		argsObj.DefineAccessorProperty("callee", thrower, thrower, false, false)
		argsObj.DefineAccessorProperty("caller", thrower, thrower, false, false)
		return argsObj
	}
	if calleeObj != nil {
		argsObj.DefineDataProperty("callee", value.Object(calleeObj), true, false, true)
	}

	if hasDuplicates(params) {
		return argsObj
	}

	mapped := map[int]string{}
	for i := range args {
		if i < len(params) {
			mapped[i] = params[i]
		}
	}
	argsObj.ParameterMap = mapped
	argsObj.ParamEnv = &recordParamBinder{record: scope, strict: strict}
	return argsObj
}

// poisonThrower is the shared accessor function installed as both getter
// and setter of a strict-mode arguments object's "callee"/"caller" (ES5
// §10.6): reading or writing either always throws TypeError, the same
// %ThrowTypeError%-style poison mechanism internal/builtins' bindFunction
// installs on a bound function's "caller"/"arguments" (internal/builtins/
// function.go). Built directly against internal/object here rather than
// through that helper since this package has no dependency on
// internal/interp — a bare Call closure is all
// [[Get]]/[[Put]] need to invoke it.
var poisonThrower = func() *object.Object {
	o := object.New("Function", nil)
	o.Call = func(value.Value, []value.Value) (value.Value, error) {
		return value.Undefined, jserrors.NewTypeError("'callee' and 'caller' are restricted on a strict mode arguments object")
	}
	return o
}()

func strictArgumentsThrower() *object.Object { return poisonThrower }

func hasDuplicates(names []string) bool {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return true
		}
		seen[n] = true
	}
	return false
}

func indexName(i int) string {
	// ES5 array indices are decimal ASCII; avoid importing strconv twice
	// across this small hot path by hand-rolling it the way index strings
	// get built elsewhere in this package's object layer.
	if i == 0 {
		return "0"
	}
	digits := make([]byte, 0, 8)
	for i > 0 {
		digits = append(digits, byte('0'+i%10))
		i /= 10
	}
	for l, r := 0, len(digits)-1; l < r; l, r = l+1, r-1 {
		digits[l], digits[r] = digits[r], digits[l]
	}
	return string(digits)
}

// recordParamBinder adapts a declarative environment Record to
// object.ParameterBinder, so the Arguments object's indexed properties can
// alias the function's named parameter bindings (ES5 §10.6's [[Get]]/[[Put]]
// override for mapped arguments).
type recordParamBinder struct {
	record *Record
	strict bool
}

func (p *recordParamBinder) GetBinding(name string) (value.Value, bool) {
	v, err := p.record.GetBindingValue(name, p.strict)
	if err != nil {
		return value.Undefined, false
	}
	return v, true
}

func (p *recordParamBinder) SetBinding(name string, v value.Value) {
	_ = p.record.SetMutableBinding(name, v, p.strict)
}
