package interp

import (
	"github.com/mras0/mjs-sub001/internal/ast"
	"github.com/mras0/mjs-sub001/internal/env"
	"github.com/mras0/mjs-sub001/internal/heap"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// userFunction is the Internal payload of a function object created from
// an *ast.FunctionLiteral: the AST node plus the lexical environment it
// closed over (ES5 §13.2). fnObjTracer wraps it to satisfy object's
// internalTracer contract so the closure's live bindings stay reachable.
type userFunction struct {
	node    *ast.FunctionLiteral
	closure *env.Record
	strict  bool
}

// NewFunction builds a callable and constructible function object for
// node, closing over scope. Named function expressions
// additionally bind their own name inside a dedicated environment per ES5
// §13's NFE scoping rule.
func (it *Interpreter) NewFunction(node *ast.FunctionLiteral, scope *env.Record) *object.Object {
	fnEnv := scope
	if node.Name != "" && !node.IsDeclaration {
		fnEnv = env.NewDeclarative(scope)
	}

	fn := it.newObject("Function", it.FunctionPrototype)
	uf := &userFunction{node: node, closure: fnEnv, strict: node.Strict}
	fn.Internal = fnObjTracer{uf}

	paramNames := make([]string, len(node.Params))
	for i, p := range node.Params {
		paramNames[i] = p.Name
	}

	fn.Call = func(this value.Value, args []value.Value) (value.Value, error) {
		return it.callUserFunction(fn, uf, paramNames, this, args)
	}
	fn.Construct = func(args []value.Value) (value.Value, error) {
		return it.constructUserFunction(fn, uf, paramNames, args)
	}

	fn.DefineDataProperty("length", value.Number(float64(len(node.Params))), false, false, false)
	proto := it.newObject("Object", it.ObjectPrototype)
	proto.DefineDataProperty("constructor", value.Object(fn), true, false, true)
	fn.DefineDataProperty("prototype", value.Object(proto), true, false, false)
	if node.Name != "" {
		fn.DefineDataProperty("name", value.StrFromGo(node.Name), false, false, false)
	}

	if node.Name != "" && !node.IsDeclaration {
		fnEnv.CreateImmutableBinding(node.Name)
		fnEnv.InitializeImmutableBinding(node.Name, value.Object(fn))
	}

	return fn
}

// fnObjTracer satisfies object.Object's unexported internalTracer
// interface structurally (same TraceInternal(func(heap.Collectable))
// shape), letting a function's closure chain participate in marking.
type fnObjTracer struct{ uf *userFunction }

func (t fnObjTracer) TraceInternal(visit func(heap.Collectable)) {
	visit(t.uf.closure)
}

func (it *Interpreter) callUserFunction(fn *object.Object, uf *userFunction, paramNames []string, this value.Value, args []value.Value) (value.Value, error) {
	activation := env.NewDeclarative(uf.closure)

	boundThis := this
	if !uf.strict {
		if this.IsNullOrUndefined() {
			boundThis = value.Object(it.Global)
		} else if this.Kind() != value.KindObject {
			o, err := it.ToObject(this)
			if err != nil {
				return value.Undefined, err
			}
			boundThis = value.Object(o)
		}
	}

	for i, name := range paramNames {
		var v value.Value = value.Undefined
		if i < len(args) {
			v = args[i]
		}
		activation.CreateMutableBinding(name, false)
		_ = activation.SetMutableBinding(name, v, false)
	}

	argsObj := env.Arguments(paramNames, args, activation, uf.strict, it.ObjectPrototype, fn)
	it.Heap.Allocate(argsObj)
	activation.CreateMutableBinding("arguments", false)
	_ = activation.SetMutableBinding("arguments", value.Object(argsObj), false)

	hoistDeclarations(uf.node.Body.Statements, activation, it, uf.strict)

	comp, err := it.execBlock(uf.node.Body.Statements, activation, boundThis, uf.strict)
	if err != nil {
		return value.Undefined, err
	}
	if comp.Type == jserrors.Throw {
		return value.Undefined, &thrownError{value: comp.Value.(value.Value)}
	}
	if comp.Type == jserrors.Return {
		return comp.Value.(value.Value), nil
	}
	return value.Undefined, nil
}

// constructUserFunction implements ES5 §13.2.2 [[Construct]]: a fresh
// object is created with its prototype taken from the function's
// "prototype" property (falling back to Object.prototype), bound as
// `this`, and returned unless the function itself explicitly returns an
// object.
func (it *Interpreter) constructUserFunction(fn *object.Object, uf *userFunction, paramNames []string, args []value.Value) (value.Value, error) {
	protoVal, err := fn.Get("prototype", value.Object(fn), it.invokeGetter)
	if err != nil {
		return value.Undefined, err
	}
	proto := it.ObjectPrototype
	if protoVal.IsObject() {
		if p, ok := protoVal.ObjectRef().(*object.Object); ok {
			proto = p
		}
	}
	instance := it.newObject("Object", proto)

	result, err := it.callUserFunction(fn, uf, paramNames, value.Object(instance), args)
	if err != nil {
		return value.Undefined, err
	}
	if result.IsObject() {
		return result, nil
	}
	return value.Object(instance), nil
}

// hoistDeclarations implements ES5 §10.5 variable instantiation for a
// function/program body: var-declared names (including for-in/for targets
// and catch-less var statements nested in any non-function substatement)
// and top-level function declarations are created in env before the body
// executes, function declarations eagerly bound to their function object.
func hoistDeclarations(stmts []ast.Statement, e *env.Record, it *Interpreter, strict bool) {
	for _, s := range stmts {
		hoistStatement(s, e)
	}
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunctionLiteral); ok && fd.IsDeclaration {
			fn := it.NewFunction(fd, e)
			e.CreateMutableBinding(fd.Name, false)
			_ = e.SetMutableBinding(fd.Name, value.Object(fn), strict)
		}
	}
}

func hoistStatement(s ast.Statement, e *env.Record) {
	switch n := s.(type) {
	case *ast.VarStatement:
		for _, d := range n.Declarators {
			e.CreateMutableBinding(d.Name.Name, false)
		}
	case *ast.BlockStatement:
		for _, st := range n.Statements {
			hoistStatement(st, e)
		}
	case *ast.IfStatement:
		hoistStatement(n.Consequent, e)
		if n.Alternate != nil {
			hoistStatement(n.Alternate, e)
		}
	case *ast.WhileStatement:
		hoistStatement(n.Body, e)
	case *ast.DoWhileStatement:
		hoistStatement(n.Body, e)
	case *ast.ForStatement:
		if vs, ok := n.Init.(*ast.VarStatement); ok {
			hoistStatement(vs, e)
		}
		hoistStatement(n.Body, e)
	case *ast.ForInStatement:
		if n.DeclaresVar {
			if id, ok := n.Left.(*ast.Identifier); ok {
				e.CreateMutableBinding(id.Name, false)
			}
		}
		hoistStatement(n.Body, e)
	case *ast.WithStatement:
		hoistStatement(n.Body, e)
	case *ast.TryStatement:
		for _, st := range n.Block.Statements {
			hoistStatement(st, e)
		}
		if n.Catch != nil {
			for _, st := range n.Catch.Body.Statements {
				hoistStatement(st, e)
			}
		}
		if n.Finally != nil {
			for _, st := range n.Finally.Statements {
				hoistStatement(st, e)
			}
		}
	case *ast.SwitchStatement:
		for _, c := range n.Cases {
			for _, st := range c.Consequent {
				hoistStatement(st, e)
			}
		}
	case *ast.LabelledStatement:
		hoistStatement(n.Body, e)
	}
}
