package interp

import (
	"github.com/mras0/mjs-sub001/internal/ast"
	"github.com/mras0/mjs-sub001/internal/env"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/jsregexp"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/parser"
	"github.com/mras0/mjs-sub001/internal/value"
)

// evalCall implements ES5 §11.2.3 function calls, including the direct-vs-
// indirect eval distinction §4.I requires: a call whose callee is the bare
// identifier `eval`, resolving through the scope chain to the original
// global eval function, evaluates its source directly in the caller's
// variable environment and strictness; every other call to whatever value
// "eval" resolves to (including a shadowed local, or eval reached via a
// property/computed expression) is an ordinary call into the eval function
// object, which itself always runs indirect (global environment,
// non-strict unless the source's own prologue says otherwise).
func (it *Interpreter) evalCall(node *ast.CallExpression, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	var calleeVal value.Value
	receiver := value.Undefined
	directEvalCall := false

	switch callee := node.Callee.(type) {
	case *ast.Identifier:
		ref := env.GetIdentifierReference(e, callee.Name, strict)
		if ref.Base == nil {
			return value.Undefined, thrown(it.ThrowValue(jserrors.NewReferenceError("%s is not defined", callee.Name))), nil
		}
		v, err := ref.Base.GetBindingValue(callee.Name, strict)
		if err != nil {
			return value.Undefined, thrown(it.ThrowValue(err)), nil
		}
		calleeVal = v
		if callee.Name == "eval" && it.isGlobalEval(v) {
			directEvalCall = true
		}
		if t, ok := ref.Base.ImplicitThisValue(); ok {
			receiver = t
		}

	case *ast.MemberExpression:
		objVal, th, err := it.evalExpr(callee.Object, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		name, th, err := it.memberName(callee, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		v, th, err := it.getMember(objVal, name)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		calleeVal = v
		receiver = objVal

	default:
		v, th, err := it.evalExpr(node.Callee, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		calleeVal = v
	}

	args := make([]value.Value, len(node.Arguments))
	for i, a := range node.Arguments {
		v, th, err := it.evalExpr(a, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		args[i] = v
	}

	if directEvalCall {
		res, err := it.directEval(args, e, this, strict)
		if err != nil {
			return value.Undefined, thrown(it.errorToThrown(err)), nil
		}
		return res, nil, nil
	}

	fn, ok := callableObject(calleeVal)
	if !ok {
		return value.Undefined, thrown(it.ThrowValue(jserrors.NewTypeError("%s is not a function", calleeDescription(node.Callee)))), nil
	}

	res, err := it.callFunction(fn, receiver, args)
	if err != nil {
		return value.Undefined, thrown(it.errorToThrown(err)), nil
	}
	return res, nil, nil
}

// evalNew implements ES5 §11.2.2 [[Construct]] dispatch.
func (it *Interpreter) evalNew(node *ast.NewExpression, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	calleeVal, th, err := it.evalExpr(node.Callee, e, this, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	args := make([]value.Value, len(node.Arguments))
	for i, a := range node.Arguments {
		v, th, err := it.evalExpr(a, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		args[i] = v
	}
	fn, ok := callableObject(calleeVal)
	if !ok || fn.Construct == nil {
		return value.Undefined, thrown(it.ThrowValue(jserrors.NewTypeError("%s is not a constructor", calleeDescription(node.Callee)))), nil
	}
	it.callDepth++
	if it.callDepth > maxCallDepth {
		it.callDepth--
		return value.Undefined, thrown(it.ThrowValue(jserrors.NewRangeError("maximum call stack size exceeded"))), nil
	}
	res, err := fn.Construct(args)
	it.callDepth--
	if err != nil {
		return value.Undefined, thrown(it.errorToThrown(err)), nil
	}
	return res, nil, nil
}

func callableObject(v value.Value) (*object.Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	fn, ok := v.ObjectRef().(*object.Object)
	if !ok || !fn.IsCallable() {
		return nil, false
	}
	return fn, true
}

// errorToThrown unwraps a Go error produced by a nested evaluation into the
// ES5 value that should populate a Throw completion: a *thrownError or
// *nativeThrow already carries the original thrown Value verbatim, while
// any other error (jserrors.NativeError, object.DefinePropertyError, ...)
// is converted the normal way.
func (it *Interpreter) errorToThrown(err error) value.Value {
	switch e := err.(type) {
	case *thrownError:
		return e.Value()
	case *nativeThrow:
		return e.v
	default:
		return it.ThrowValue(err)
	}
}

func calleeDescription(n ast.Expression) string {
	switch c := n.(type) {
	case *ast.Identifier:
		return c.Name
	case *ast.MemberExpression:
		if !c.Computed {
			if id, ok := c.Property.(*ast.Identifier); ok {
				return id.Name
			}
		}
	}
	return "value"
}

// isGlobalEval reports whether v is exactly the eval function object
// internal/builtins installed on the global object, the test ES5 §11.1.4/
// §15.1.2.1.1 uses to distinguish direct from indirect eval.
func (it *Interpreter) isGlobalEval(v value.Value) bool {
	if !v.IsObject() || it.GlobalEval == nil {
		return false
	}
	o, ok := v.ObjectRef().(*object.Object)
	return ok && o == it.GlobalEval
}

// directEval implements ES5 §10.4.2's direct-eval variable environment
// rule: non-strict direct eval hoists declarations straight into the
// caller's variable environment; strict-mode direct eval (the caller's
// strictness, or the eval source's own "use strict" prologue) gets a fresh
// declarative environment so its declarations don't leak.
func (it *Interpreter) directEval(args []value.Value, callerEnv *env.Record, this value.Value, callerStrict bool) (value.Value, error) {
	if len(args) == 0 || !args[0].IsString() {
		if len(args) == 0 {
			return value.Undefined, nil
		}
		return args[0], nil
	}
	src := args[0].StringValue().String()

	p := parser.New(src)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return value.Undefined, it.NewError(jserrors.KindSyntaxError, errs[0].Error())
	}

	evalStrict := prog.Strict || callerStrict
	evalEnv := callerEnv
	if evalStrict {
		evalEnv = env.NewDeclarative(callerEnv)
	}

	hoistDeclarations(prog.Statements, evalEnv, it, evalStrict)
	comp, err := it.execBlock(prog.Statements, evalEnv, this, evalStrict)
	if err != nil {
		return value.Undefined, err
	}
	if comp.Type == jserrors.Throw {
		return value.Undefined, &thrownError{value: comp.Value.(value.Value)}
	}
	if v, ok := comp.Value.(value.Value); ok {
		return v, nil
	}
	return value.Undefined, nil
}

// newRegExp constructs a RegExp value from a /pattern/flags literal (ES5
// §7.8.5), used both by the lexer-fed RegexLiteral AST node and by the
// `RegExp` constructor builtin. The second return is non-nil exactly when
// compilation failed, carrying the thrown SyntaxError value.
func (it *Interpreter) newRegExp(pattern, flags string) (value.Value, *value.Value) {
	re, err := jsregexp.Compile(pattern, flags)
	if err != nil {
		return value.Undefined, thrown(it.ThrowValue(err))
	}
	return value.Object(it.newRegExpObject(re)), nil
}

func (it *Interpreter) newRegExpObject(re *jsregexp.RegExp) *object.Object {
	o := it.newObject("RegExp", it.RegExpPrototype)
	o.Internal = re
	o.DefineDataProperty("source", value.StrFromGo(re.Source), false, false, false)
	o.DefineDataProperty("global", value.Bool(re.Global), false, false, false)
	o.DefineDataProperty("ignoreCase", value.Bool(re.IgnoreCase), false, false, false)
	o.DefineDataProperty("multiline", value.Bool(re.Multiline), false, false, false)
	o.DefineDataProperty("lastIndex", value.Number(0), true, false, false)
	return o
}
