// Package object implements the ES5 object model: ordered own properties,
// full data/accessor property descriptors, the prototype chain, and the
// [[...]] internal methods from spec.md's data model, including the
// ten-step [[DefineOwnProperty]] compatibility table (ES5 §8.12.9). This
// package has no dependency on internal/interp: function objects carry
// their callable behavior as a Go closure (Call/Construct) supplied by the
// evaluator when it creates them, so invoking a function never requires
// importing the evaluator.
package object

import (
	"fmt"

	"github.com/mras0/mjs-sub001/internal/heap"
	"github.com/mras0/mjs-sub001/internal/value"
)

// CallFunc is the behavior of a callable object: ES5 [[Call]].
type CallFunc func(this value.Value, args []value.Value) (value.Value, error)

// ConstructFunc is the behavior of a constructible object: ES5 [[Construct]].
type ConstructFunc func(args []value.Value) (value.Value, error)

// PropertyDescriptor is a single own-property slot. A data property has
// HasValue/HasWritable set and Get/Set nil; an accessor property has
// HasGet/HasSet set and Value is the zero Value. The Has* flags track
// which fields were explicitly specified by a partial descriptor passed to
// DefineOwnProperty (ES5 §8.10.5), so a caller providing only {get: f}
// doesn't implicitly zero out an existing setter.
type PropertyDescriptor struct {
	Value        value.Value
	Get          *Object
	Set          *Object
	Writable     bool
	Enumerable   bool
	Configurable bool

	HasValue        bool
	HasWritable     bool
	HasGet          bool
	HasSet          bool
	HasEnumerable   bool
	HasConfigurable bool
}

// IsAccessor reports whether this descriptor specifies get/set rather than
// a data value (ES5 §8.10.1).
func (d *PropertyDescriptor) IsAccessor() bool { return d.HasGet || d.HasSet }

// IsGeneric reports whether none of Value/Writable/Get/Set were specified,
// i.e. only Enumerable/Configurable (ES5 §8.10.3).
func (d *PropertyDescriptor) IsGeneric() bool {
	return !d.HasValue && !d.HasWritable && !d.HasGet && !d.HasSet
}

// DataDescriptor returns a fully-specified writable/enumerable/configurable
// data property descriptor, the common case for builtin property creation.
func DataDescriptor(v value.Value, writable, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable,
		HasValue: true, HasWritable: true, HasEnumerable: true, HasConfigurable: true,
	}
}

// Object is the runtime representation backing every ES5 object value.
// Builtins that need extra internal slots (RegExp source, Date time
// value, Array backing, primitive wrapper value, ...) attach them via
// Internal; this package only interprets Internal when it documents a
// concrete contract (currently only internalTracer, used by Trace — the
// array-length exotic behavior below depends only on Class and the
// "length" own property).
type Object struct {
	class      string
	prototype  *Object
	extensible bool

	props map[string]*PropertyDescriptor
	keys  []string // insertion order, for for-in / Object.keys enumeration

	// Call/Construct are non-nil only for function objects.
	Call      CallFunc
	Construct ConstructFunc

	// PrimitiveValue backs Boolean/Number/String/Date wrapper objects'
	// internal [[PrimitiveValue]] slot.
	PrimitiveValue value.Value
	HasPrimitive   bool

	// ParameterMap backs a non-strict Arguments object's index-to-name
	// aliasing (ES5 §10.6); nil for ordinary objects and strict Arguments.
	ParameterMap map[int]string
	ParamEnv     ParameterBinder

	// Internal is an open extension slot for builtin-specific backing data
	// (e.g. a compiled regexp, a Date time value) that this package does
	// not otherwise know how to interpret.
	Internal interface{}
}

// ParameterBinder lets an Arguments object's indexed properties alias a
// function's local variable environment, set by internal/interp when it
// constructs a non-strict Arguments object.
type ParameterBinder interface {
	GetBinding(name string) (value.Value, bool)
	SetBinding(name string, v value.Value)
}

// New creates an object with the given [[Class]] and prototype (nil for
// no prototype, i.e. Object.prototype itself).
func New(class string, prototype *Object) *Object {
	return &Object{
		class:      class,
		prototype:  prototype,
		extensible: true,
		props:      make(map[string]*PropertyDescriptor),
	}
}

func (o *Object) ClassName() string   { return o.class }
func (o *Object) Prototype() *Object  { return o.prototype }
func (o *Object) SetPrototype(p *Object) { o.prototype = p }
func (o *Object) Extensible() bool    { return o.extensible }
func (o *Object) SetExtensible(e bool) { o.extensible = e }
func (o *Object) IsCallable() bool    { return o.Call != nil }

// Trace implements heap.Collectable: an object keeps its prototype and
// every referenced value (data property values, accessor functions, the
// wrapped primitive of a Boolean/Number/String/Date object) alive.
func (o *Object) Trace(visit func(heap.Collectable)) {
	if o.prototype != nil {
		visit(o.prototype)
	}
	for _, d := range o.props {
		if d.HasValue {
			traceValue(d.Value, visit)
		}
		if d.Get != nil {
			visit(d.Get)
		}
		if d.Set != nil {
			visit(d.Set)
		}
	}
	if o.HasPrimitive {
		traceValue(o.PrimitiveValue, visit)
	}
	if t, ok := o.Internal.(internalTracer); ok {
		t.TraceInternal(visit)
	}
}

// internalTracer lets a builtin-specific Internal payload (e.g. a function's
// closure environment) participate in marking without this package needing
// to know its concrete type.
type internalTracer interface {
	TraceInternal(visit func(heap.Collectable))
}

func traceValue(v value.Value, visit func(heap.Collectable)) {
	if !v.IsObject() {
		return
	}
	if c, ok := v.ObjectRef().(heap.Collectable); ok {
		visit(c)
	}
}

// Keys returns own property names in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// GetOwnProperty implements ES5 §8.12.1 [[GetOwnProperty]] for ordinary
// objects. An Array's "length" is an ordinary own property here; its
// exotic behavior lives in DefineOwnProperty.
func (o *Object) GetOwnProperty(name string) *PropertyDescriptor {
	return o.props[name]
}

// defineRaw installs a descriptor directly, maintaining key order, without
// running the [[DefineOwnProperty]] validation algorithm. Used internally
// by builtins that construct well-known objects.
func (o *Object) defineRaw(name string, d *PropertyDescriptor) {
	if _, exists := o.props[name]; !exists {
		o.keys = append(o.keys, name)
	}
	o.props[name] = d
}

// DefineDataProperty is a convenience for builtin setup: define a fully
// specified data property without going through the validating
// DefineOwnProperty algorithm (matches what ES5 calls the object's
// [[DefineOwnProperty]] during initial builtin construction, where no
// conflict is possible).
func (o *Object) DefineDataProperty(name string, v value.Value, writable, enumerable, configurable bool) {
	o.defineRaw(name, DataDescriptor(v, writable, enumerable, configurable))
}

// DefineAccessorProperty installs a getter/setter pair directly.
func (o *Object) DefineAccessorProperty(name string, get, set *Object, enumerable, configurable bool) {
	o.defineRaw(name, &PropertyDescriptor{
		Get: get, Set: set, Enumerable: enumerable, Configurable: configurable,
		HasGet: true, HasSet: true, HasEnumerable: true, HasConfigurable: true,
	})
}

// deleteOwn removes an own property unconditionally; Delete calls it once
// it has already checked Configurable.
func (o *Object) deleteOwn(name string) {
	delete(o.props, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// GetProperty implements ES5 §8.12.2 [[GetProperty]]: walk the prototype
// chain for the first own property descriptor.
func (o *Object) GetProperty(name string) *PropertyDescriptor {
	for cur := o; cur != nil; cur = cur.prototype {
		if d := cur.GetOwnProperty(name); d != nil {
			return d
		}
	}
	return nil
}

// Getter is supplied by internal/interp to invoke accessor getters (which
// may run user code) and ordinary Get when an own property is an accessor.
type Getter func(fn *Object, this value.Value) (value.Value, error)

// Get implements ES5 §8.12.3 [[Get]].
func (o *Object) Get(name string, this value.Value, invokeGetter Getter) (value.Value, error) {
	d := o.GetProperty(name)
	if d == nil {
		return value.Undefined, nil
	}
	if d.IsAccessor() {
		if d.Get == nil {
			return value.Undefined, nil
		}
		return invokeGetter(d.Get, this)
	}
	return d.Value, nil
}

// CanPut implements ES5 §8.12.4 [[CanPut]].
func (o *Object) CanPut(name string) bool {
	d := o.GetOwnProperty(name)
	if d != nil {
		if d.IsAccessor() {
			return d.Set != nil
		}
		return d.Writable
	}
	if o.prototype == nil {
		return o.extensible
	}
	inherited := o.prototype.GetProperty(name)
	if inherited == nil {
		return o.extensible
	}
	if inherited.IsAccessor() {
		return inherited.Set != nil
	}
	if !o.extensible {
		return false
	}
	return inherited.Writable
}

// Setter is supplied by internal/interp to invoke accessor setters.
type Setter func(fn *Object, this value.Value, v value.Value) error

// Put implements ES5 §8.12.5 [[Put]].
func (o *Object) Put(name string, v value.Value, throw bool, invokeSetter Setter) error {
	if !o.CanPut(name) {
		if throw {
			return newTypeError("cannot assign to read-only property %q", name)
		}
		return nil
	}
	own := o.GetOwnProperty(name)
	if own != nil && !own.IsAccessor() {
		own.Value = v
		return nil
	}
	inherited := o.GetProperty(name)
	if inherited != nil && inherited.IsAccessor() {
		return invokeSetter(inherited.Set, value.Object(o), v)
	}
	o.defineRaw(name, DataDescriptor(v, true, true, true))
	return nil
}

// HasProperty implements ES5 §8.12.6 [[HasProperty]].
func (o *Object) HasProperty(name string) bool {
	return o.GetProperty(name) != nil
}

// Delete implements ES5 §8.12.7 [[Delete]].
func (o *Object) Delete(name string, throw bool) (bool, error) {
	d := o.GetOwnProperty(name)
	if d == nil {
		return true, nil
	}
	if !d.Configurable {
		if throw {
			return false, newTypeError("cannot delete non-configurable property %q", name)
		}
		return false, nil
	}
	o.deleteOwn(name)
	return true, nil
}

// DefaultValueFunc is supplied by internal/interp: it runs the actual
// ES5 §8.12.8 [[DefaultValue]] algorithm (calling toString/valueOf, which
// may invoke user code), since this package cannot invoke callables
// itself without importing the evaluator.
type DefaultValueFunc func(o *Object, hint string) (value.Value, error)

// DefineOwnProperty implements the ES5 §8.12.9 ten-step
// [[DefineOwnProperty]] compatibility table, with the Array "length"
// exotic behavior (ES5 §15.4.5.1) folded in ahead of the generic
// algorithm.
func (o *Object) DefineOwnProperty(name string, desc *PropertyDescriptor, throw bool) (bool, error) {
	if o.class == "Array" && name == "length" {
		return o.defineArrayLength(desc, throw)
	}
	current := o.GetOwnProperty(name)
	ok, err := validateDefineOwnProperty(current, desc, o.extensible, throw)
	if err != nil || !ok {
		return ok, err
	}
	o.applyDefine(name, current, desc)
	return true, nil
}

func (o *Object) applyDefine(name string, current, desc *PropertyDescriptor) {
	if current == nil {
		merged := &PropertyDescriptor{}
		mergeDescriptor(merged, desc)
		if !merged.HasEnumerable {
			merged.Enumerable = false
		}
		if !merged.HasConfigurable {
			merged.Configurable = false
		}
		if !merged.IsAccessor() && !merged.HasWritable {
			merged.Writable = false
		}
		o.defineRaw(name, merged)
		return
	}
	if current.IsAccessor() != desc.IsAccessor() && (desc.HasGet || desc.HasSet || desc.HasValue || desc.HasWritable) {
		replacement := &PropertyDescriptor{
			Enumerable: current.Enumerable, Configurable: current.Configurable,
			HasEnumerable: true, HasConfigurable: true,
		}
		mergeDescriptor(replacement, desc)
		o.defineRaw(name, replacement)
		return
	}
	mergeDescriptor(current, desc)
}

func mergeDescriptor(dst, src *PropertyDescriptor) {
	if src.HasValue {
		dst.Value = src.Value
		dst.HasValue = true
		dst.Get, dst.Set = nil, nil
		dst.HasGet, dst.HasSet = false, false
	}
	if src.HasWritable {
		dst.Writable = src.Writable
		dst.HasWritable = true
	}
	if src.HasGet {
		dst.Get = src.Get
		dst.HasGet = true
		dst.HasValue = false
	}
	if src.HasSet {
		dst.Set = src.Set
		dst.HasSet = true
		dst.HasValue = false
	}
	if src.HasEnumerable {
		dst.Enumerable = src.Enumerable
		dst.HasEnumerable = true
	}
	if src.HasConfigurable {
		dst.Configurable = src.Configurable
		dst.HasConfigurable = true
	}
}

// validateDefineOwnProperty implements ES5 §8.12.9 steps 1-9 (the
// rejection conditions); step 10/11-12 (actually installing the merged
// result) is left to the caller since it needs the owning object to
// write back into.
func validateDefineOwnProperty(current, desc *PropertyDescriptor, extensible bool, throw bool) (bool, error) {
	reject := func(format string, args ...interface{}) (bool, error) {
		if throw {
			return false, newTypeError(format, args...)
		}
		return false, nil
	}
	if current == nil {
		if !extensible {
			return reject("object is not extensible")
		}
		return true, nil
	}
	if desc.IsGeneric() {
		return true, nil
	}
	if descriptorsEquivalent(current, desc) {
		return true, nil
	}
	if !current.Configurable {
		if desc.HasConfigurable && desc.Configurable {
			return reject("cannot redefine non-configurable property as configurable")
		}
		if desc.HasEnumerable && desc.Enumerable != current.Enumerable {
			return reject("cannot change enumerable attribute of non-configurable property")
		}
		if current.IsAccessor() != desc.IsAccessor() && (desc.HasGet || desc.HasSet || desc.HasValue || desc.HasWritable) {
			return reject("cannot redefine property between data and accessor kinds")
		}
		if current.IsAccessor() {
			if desc.HasGet && desc.Get != current.Get {
				return reject("cannot change getter of non-configurable accessor property")
			}
			if desc.HasSet && desc.Set != current.Set {
				return reject("cannot change setter of non-configurable accessor property")
			}
		} else if !current.Writable {
			if desc.HasWritable && desc.Writable {
				return reject("cannot redefine non-writable property as writable")
			}
			if desc.HasValue && !value.SameValue(desc.Value, current.Value) {
				return reject("cannot change value of non-writable, non-configurable property")
			}
		}
	}
	return true, nil
}

func descriptorsEquivalent(a, b *PropertyDescriptor) bool {
	if a.HasEnumerable != b.HasEnumerable || (b.HasEnumerable && a.Enumerable != b.Enumerable) {
		return false
	}
	if a.HasConfigurable != b.HasConfigurable || (b.HasConfigurable && a.Configurable != b.Configurable) {
		return false
	}
	if b.HasValue && (!a.HasValue || !value.SameValue(a.Value, b.Value)) {
		return false
	}
	if b.HasWritable && (!a.HasWritable || a.Writable != b.Writable) {
		return false
	}
	if b.HasGet && a.Get != b.Get {
		return false
	}
	if b.HasSet && a.Set != b.Set {
		return false
	}
	return true
}

func newTypeError(format string, args ...interface{}) error {
	return &DefinePropertyError{format: format, args: args}
}

// DefinePropertyError is raised by the object-level algorithms; internal/interp
// converts it into a thrown TypeError value via internal/jserrors.
type DefinePropertyError struct {
	format string
	args   []interface{}
}

func (e *DefinePropertyError) Error() string {
	return fmt.Sprintf(e.format, e.args...)
}

// defineArrayLength implements the "length" branch of ES5 §15.4.5.1's
// [[DefineOwnProperty]]: setting length to a smaller value deletes every
// own index property at or above the new length, stopping early (and
// reporting the property left un-deleted) if a deleted index turns out to
// be non-configurable.
func (o *Object) defineArrayLength(desc *PropertyDescriptor, throw bool) (bool, error) {
	current := o.GetOwnProperty("length")
	if current == nil {
		current = DataDescriptor(value.Number(0), true, false, false)
	}
	if !desc.HasValue {
		ok, err := validateDefineOwnProperty(current, desc, o.extensible, throw)
		if err != nil || !ok {
			return ok, err
		}
		o.applyDefine("length", current, desc)
		return true, nil
	}

	newLen, ok := toArrayLength(desc.Value)
	if !ok {
		if throw {
			return false, newTypeError("invalid array length")
		}
		return false, nil
	}
	oldLen := uint32(current.Value.NumberValue())

	withLen := &PropertyDescriptor{}
	mergeDescriptor(withLen, desc)
	withLen.Value = value.Number(float64(newLen))
	withLen.HasValue = true

	if newLen >= oldLen {
		valid, err := validateDefineOwnProperty(current, withLen, o.extensible, throw)
		if err != nil || !valid {
			return valid, err
		}
		o.applyDefine("length", current, withLen)
		return true, nil
	}

	if !current.Writable {
		if throw {
			return false, newTypeError("cannot assign to read-only property \"length\"")
		}
		return false, nil
	}

	newWritable := true
	if withLen.HasWritable && !withLen.Writable {
		newWritable = false
		withLen.Writable = true
	}
	valid, err := validateDefineOwnProperty(current, withLen, o.extensible, throw)
	if err != nil || !valid {
		return valid, err
	}
	o.applyDefine("length", current, withLen)

	for idx := oldLen; idx > newLen; idx-- {
		key := fmt.Sprintf("%d", idx-1)
		if o.GetOwnProperty(key) == nil {
			continue
		}
		deleted, _ := o.Delete(key, false)
		if !deleted {
			final := o.GetOwnProperty("length")
			final.Value = value.Number(float64(idx))
			if !newWritable {
				final.Writable = false
			}
			if throw {
				return false, newTypeError("cannot delete non-configurable array index %d", idx-1)
			}
			return false, nil
		}
	}
	if !newWritable {
		o.GetOwnProperty("length").Writable = false
	}
	return true, nil
}

// toArrayLength expects the interpreter to have already reduced the
// assigned value to a number (ES5 §15.4.5.1 step 3's ToUint32/ToNumber
// comparison happens before DefineOwnProperty is reached here).
func toArrayLength(v value.Value) (uint32, bool) {
	if v.Kind() != value.KindNumber {
		return 0, false
	}
	n := value.NumberToUint32(v.NumberValue())
	if float64(n) != v.NumberValue() {
		return 0, false
	}
	return n, true
}
