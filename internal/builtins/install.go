package builtins

import (
	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/value"
)

// Install populates it's empty prototype skeleton (built by interp.New) with
// the full ES5 standard library and must run exactly once, before any
// script is evaluated against it. Order matters only insofar as
// installObject must run first (every other prototype chains to
// ObjectPrototype) and installFunction second (every constructor built
// afterward is itself a Function instance); the rest has no ordering
// dependency since each installX only reads the interpreter's already-wired
// prototype fields, never another installX's constructor.
func Install(it *interp.Interpreter) {
	g := it.Global

	objectCtor := installObject(it)
	functionCtor := installFunction(it)
	arrayCtor := installArray(it)
	stringCtor := installString(it)
	booleanCtor := installBoolean(it)
	numberCtor := installNumber(it)
	dateCtor := installDate(it)
	regexpCtor := installRegExp(it)
	errorCtor := installErrors(it)
	mathObj := installMath(it)
	jsonObj := installJSON(it)

	bind := func(name string, v value.Value) {
		g.DefineDataProperty(name, v, true, false, true)
	}

	bind("Object", value.Object(objectCtor))
	bind("Function", value.Object(functionCtor))
	bind("Array", value.Object(arrayCtor))
	bind("String", value.Object(stringCtor))
	bind("Boolean", value.Object(booleanCtor))
	bind("Number", value.Object(numberCtor))
	bind("Date", value.Object(dateCtor))
	bind("RegExp", value.Object(regexpCtor))
	bind("Error", value.Object(errorCtor))
	bind("Math", value.Object(mathObj))
	bind("JSON", value.Object(jsonObj))

	for _, kind := range errorKinds {
		bind(kind, value.Object(it.ErrorConstructors[kind]))
	}

	installGlobal(it)
}
