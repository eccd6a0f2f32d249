package interp

import (
	"github.com/mras0/mjs-sub001/internal/ast"
	"github.com/mras0/mjs-sub001/internal/env"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// Run evaluates a whole program against the interpreter's global
// environment, performing variable/function hoisting (ES5 §10.5) before
// executing the statement list.
func (it *Interpreter) Run(prog *ast.Program) (value.Value, error) {
	hoistDeclarations(prog.Statements, it.GlobalEnv, it, prog.Strict)
	comp, err := it.execBlock(prog.Statements, it.GlobalEnv, value.Object(it.Global), prog.Strict)
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

// thrownError wraps a thrown Value (which may be any ES5 value, not just
// an Error object) so it can travel as a Go error out of a function call,
// a direct eval, or Run(); errorToThrown unwraps it back into the thrown
// value when it re-enters evaluated code, and it is what callers of Run()
// above internal/interp (e.g. eval, cmd/es5vm) see.
type thrownError struct{ value value.Value }

func (e *thrownError) Error() string {
	if e.value.IsObject() {
		if o, ok := e.value.ObjectRef().(*object.Object); ok {
			if m, err := o.Get("message", e.value, nil); err == nil && m.IsString() {
				return m.StringValue().String()
			}
		}
	}
	return "uncaught exception"
}

// Value returns the thrown ES5 value.
func (e *thrownError) Value() value.Value { return e.value }

// execBlock runs a statement list in order, short-circuiting on the first
// abrupt completion (ES5 §12.1's block completion algorithm generalized to
// a whole body).
func (it *Interpreter) execBlock(stmts []ast.Statement, e *env.Record, this value.Value, strict bool) (jserrors.Completion, error) {
	comp := jserrors.NormalCompletion()
	for _, s := range stmts {
		c, err := it.execStatement(s, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if c.Type == jserrors.Throw {
			return c, nil
		}
		if c.Type != jserrors.Normal {
			return c, nil
		}
		comp = c
	}
	return comp, nil
}

// execStatement evaluates one statement, returning its Completion (ES5
// §8.9). The error return is reserved for Go-level failures (e.g. a heap
// allocation failure); ES5 runtime errors are represented as Throw
// completions so try/catch can observe them without panic/recover.
func (it *Interpreter) execStatement(s ast.Statement, e *env.Record, this value.Value, strict bool) (jserrors.Completion, error) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		v, thrown, err := it.evalExpr(n.Expression, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if thrown != nil {
			return jserrors.ThrowCompletion(*thrown), nil
		}
		return jserrors.Completion{Type: jserrors.Normal, Value: v}, nil

	case *ast.EmptyStatement:
		return jserrors.NormalCompletion(), nil

	case *ast.VarStatement:
		for _, d := range n.Declarators {
			if d.Init == nil {
				continue
			}
			v, thrown, err := it.evalExpr(d.Init, e, this, strict)
			if err != nil {
				return jserrors.Completion{}, err
			}
			if thrown != nil {
				return jserrors.ThrowCompletion(*thrown), nil
			}
			if err := e.SetMutableBinding(d.Name.Name, v, strict); err != nil {
				return jserrors.ThrowCompletion(it.ThrowValue(err)), nil
			}
		}
		return jserrors.NormalCompletion(), nil

	case *ast.FunctionLiteral:
		// Declarations are hoisted before the body runs; re-executing the
		// statement in sequence is a no-op.
		return jserrors.NormalCompletion(), nil

	case *ast.BlockStatement:
		return it.execBlock(n.Statements, e, this, strict)

	case *ast.IfStatement:
		test, thrown, err := it.evalExpr(n.Test, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if thrown != nil {
			return jserrors.ThrowCompletion(*thrown), nil
		}
		if value.ToBoolean(test) {
			return it.execStatement(n.Consequent, e, this, strict)
		}
		if n.Alternate != nil {
			return it.execStatement(n.Alternate, e, this, strict)
		}
		return jserrors.NormalCompletion(), nil

	case *ast.WhileStatement:
		return it.execWhile(n, nil, e, this, strict)

	case *ast.DoWhileStatement:
		return it.execDoWhile(n, nil, e, this, strict)

	case *ast.ForStatement:
		return it.execFor(n, nil, e, this, strict)

	case *ast.ForInStatement:
		return it.execForIn(n, nil, e, this, strict)

	case *ast.ContinueStatement:
		return jserrors.ContinueCompletion(n.Label), nil

	case *ast.BreakStatement:
		return jserrors.BreakCompletion(n.Label), nil

	case *ast.ReturnStatement:
		if n.Argument == nil {
			return jserrors.ReturnCompletion(value.Undefined), nil
		}
		v, thrown, err := it.evalExpr(n.Argument, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if thrown != nil {
			return jserrors.ThrowCompletion(*thrown), nil
		}
		return jserrors.ReturnCompletion(v), nil

	case *ast.WithStatement:
		obj, thrown, err := it.evalExpr(n.Object, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if thrown != nil {
			return jserrors.ThrowCompletion(*thrown), nil
		}
		target, err := it.ToObject(obj)
		if err != nil {
			return jserrors.ThrowCompletion(it.ThrowValue(err)), nil
		}
		withEnv := env.NewObject(e, target, false)
		return it.execStatement(n.Body, withEnv, this, strict)

	case *ast.SwitchStatement:
		return it.execSwitch(n, e, this, strict)

	case *ast.LabelledStatement:
		return it.execLabelled(n, nil, e, this, strict)

	case *ast.ThrowStatement:
		v, thrown, err := it.evalExpr(n.Argument, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if thrown != nil {
			return jserrors.ThrowCompletion(*thrown), nil
		}
		return jserrors.ThrowCompletion(v), nil

	case *ast.TryStatement:
		return it.execTry(n, e, this, strict)

	case *ast.DebuggerStatement:
		return jserrors.NormalCompletion(), nil
	}
	return jserrors.NormalCompletion(), nil
}

// execLabelled unwraps a (possibly nested) label chain — e.g.
// `outer: inner: for (...) {}` — collecting every label that directly
// names the wrapped statement, so that when the innermost statement is
// an iteration statement it can recognize a `continue` targeting any of
// its own labels as "keep iterating" rather than an abrupt completion to
// propagate (ES5 §12.7/§12.12: continue only ever unwinds to an enclosing
// iteration statement, never past one). A `break` targeting one of the
// labels still propagates up to be consumed here, unchanged from before.
func (it *Interpreter) execLabelled(n *ast.LabelledStatement, labels []string, e *env.Record, this value.Value, strict bool) (jserrors.Completion, error) {
	labels = append(labels, n.Label)

	var c jserrors.Completion
	var err error
	switch body := n.Body.(type) {
	case *ast.LabelledStatement:
		c, err = it.execLabelled(body, labels, e, this, strict)
	case *ast.WhileStatement:
		c, err = it.execWhile(body, labels, e, this, strict)
	case *ast.DoWhileStatement:
		c, err = it.execDoWhile(body, labels, e, this, strict)
	case *ast.ForStatement:
		c, err = it.execFor(body, labels, e, this, strict)
	case *ast.ForInStatement:
		c, err = it.execForIn(body, labels, e, this, strict)
	default:
		c, err = it.execStatement(n.Body, e, this, strict)
	}
	if err != nil {
		return jserrors.Completion{}, err
	}
	if (c.Type == jserrors.Break || c.Type == jserrors.Continue) && hasLabel(labels, c.Target) {
		return jserrors.NormalCompletion(), nil
	}
	return c, nil
}

func hasLabel(labels []string, target string) bool {
	for _, l := range labels {
		if l == target {
			return true
		}
	}
	return false
}

func (it *Interpreter) execWhile(n *ast.WhileStatement, labels []string, e *env.Record, this value.Value, strict bool) (jserrors.Completion, error) {
	for {
		test, thrown, err := it.evalExpr(n.Test, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if thrown != nil {
			return jserrors.ThrowCompletion(*thrown), nil
		}
		if !value.ToBoolean(test) {
			return jserrors.NormalCompletion(), nil
		}
		c, err := it.execStatement(n.Body, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		switch c.Type {
		case jserrors.Break:
			if c.Target == "" {
				return jserrors.NormalCompletion(), nil
			}
			return c, nil
		case jserrors.Continue:
			if c.Target != "" && !hasLabel(labels, c.Target) {
				return c, nil
			}
		case jserrors.Return, jserrors.Throw:
			return c, nil
		}
	}
}

func (it *Interpreter) execDoWhile(n *ast.DoWhileStatement, labels []string, e *env.Record, this value.Value, strict bool) (jserrors.Completion, error) {
	for {
		c, err := it.execStatement(n.Body, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		switch c.Type {
		case jserrors.Break:
			if c.Target == "" {
				return jserrors.NormalCompletion(), nil
			}
			return c, nil
		case jserrors.Continue:
			if c.Target != "" && !hasLabel(labels, c.Target) {
				return c, nil
			}
		case jserrors.Return, jserrors.Throw:
			return c, nil
		}
		test, thrown, err := it.evalExpr(n.Test, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if thrown != nil {
			return jserrors.ThrowCompletion(*thrown), nil
		}
		if !value.ToBoolean(test) {
			return jserrors.NormalCompletion(), nil
		}
	}
}

func (it *Interpreter) execFor(n *ast.ForStatement, labels []string, e *env.Record, this value.Value, strict bool) (jserrors.Completion, error) {
	if n.Init != nil {
		switch init := n.Init.(type) {
		case *ast.VarStatement:
			if _, err := it.execStatement(init, e, this, strict); err != nil {
				return jserrors.Completion{}, err
			}
		case ast.Expression:
			if _, thrown, err := it.evalExpr(init, e, this, strict); err != nil {
				return jserrors.Completion{}, err
			} else if thrown != nil {
				return jserrors.ThrowCompletion(*thrown), nil
			}
		}
	}
	for {
		if n.Test != nil {
			test, thrown, err := it.evalExpr(n.Test, e, this, strict)
			if err != nil {
				return jserrors.Completion{}, err
			}
			if thrown != nil {
				return jserrors.ThrowCompletion(*thrown), nil
			}
			if !value.ToBoolean(test) {
				return jserrors.NormalCompletion(), nil
			}
		}
		c, err := it.execStatement(n.Body, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		switch c.Type {
		case jserrors.Break:
			if c.Target == "" {
				return jserrors.NormalCompletion(), nil
			}
			return c, nil
		case jserrors.Continue:
			if c.Target != "" && !hasLabel(labels, c.Target) {
				return c, nil
			}
		case jserrors.Return, jserrors.Throw:
			return c, nil
		}
		if n.Update != nil {
			if _, thrown, err := it.evalExpr(n.Update, e, this, strict); err != nil {
				return jserrors.Completion{}, err
			} else if thrown != nil {
				return jserrors.ThrowCompletion(*thrown), nil
			}
		}
	}
}

func (it *Interpreter) execForIn(n *ast.ForInStatement, labels []string, e *env.Record, this value.Value, strict bool) (jserrors.Completion, error) {
	rightV, thrown, err := it.evalExpr(n.Right, e, this, strict)
	if err != nil {
		return jserrors.Completion{}, err
	}
	if thrown != nil {
		return jserrors.ThrowCompletion(*thrown), nil
	}
	if rightV.IsNullOrUndefined() {
		return jserrors.NormalCompletion(), nil
	}
	obj, err := it.ToObject(rightV)
	if err != nil {
		return jserrors.ThrowCompletion(it.ThrowValue(err)), nil
	}

	seen := map[string]bool{}
	for cur := obj; cur != nil; cur = cur.Prototype() {
		for _, k := range cur.Keys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			d := cur.GetOwnProperty(k)
			if d == nil || !d.Enumerable {
				continue
			}

			if n.DeclaresVar {
				id := n.Left.(*ast.Identifier)
				if err := e.SetMutableBinding(id.Name, value.StrFromGo(k), strict); err != nil {
					return jserrors.ThrowCompletion(it.ThrowValue(err)), nil
				}
			} else {
				if err := it.assignTo(n.Left, value.StrFromGo(k), e, this, strict); err != nil {
					return jserrors.ThrowCompletion(it.ThrowValue(err)), nil
				}
			}

			c, err := it.execStatement(n.Body, e, this, strict)
			if err != nil {
				return jserrors.Completion{}, err
			}
			switch c.Type {
			case jserrors.Break:
				if c.Target == "" {
					return jserrors.NormalCompletion(), nil
				}
				return c, nil
			case jserrors.Continue:
				if c.Target != "" && !hasLabel(labels, c.Target) {
					return c, nil
				}
			case jserrors.Return, jserrors.Throw:
				return c, nil
			}
		}
	}
	return jserrors.NormalCompletion(), nil
}

func (it *Interpreter) execSwitch(n *ast.SwitchStatement, e *env.Record, this value.Value, strict bool) (jserrors.Completion, error) {
	disc, thrown, err := it.evalExpr(n.Discriminant, e, this, strict)
	if err != nil {
		return jserrors.Completion{}, err
	}
	if thrown != nil {
		return jserrors.ThrowCompletion(*thrown), nil
	}

	blockEnv := env.NewDeclarative(e)
	matched := -1
	defaultIdx := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		cv, thrown, err := it.evalExpr(c.Test, blockEnv, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if thrown != nil {
			return jserrors.ThrowCompletion(*thrown), nil
		}
		if value.StrictEquals(disc, cv) {
			matched = i
			break
		}
	}
	if matched == -1 {
		if defaultIdx == -1 {
			return jserrors.NormalCompletion(), nil
		}
		matched = defaultIdx
	}

	for i := matched; i < len(n.Cases); i++ {
		c, err := it.execBlock(n.Cases[i].Consequent, blockEnv, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if c.Type == jserrors.Break && c.Target == "" {
			return jserrors.NormalCompletion(), nil
		}
		if c.Type != jserrors.Normal {
			return c, nil
		}
	}
	return jserrors.NormalCompletion(), nil
}

func (it *Interpreter) execTry(n *ast.TryStatement, e *env.Record, this value.Value, strict bool) (jserrors.Completion, error) {
	comp, err := it.execBlock(n.Block.Statements, e, this, strict)
	if err != nil {
		return jserrors.Completion{}, err
	}

	if comp.Type == jserrors.Throw && n.Catch != nil {
		catchEnv := env.NewDeclarative(e)
		catchEnv.CreateMutableBinding(n.Catch.Param.Name, true)
		_ = catchEnv.SetMutableBinding(n.Catch.Param.Name, comp.Value.(value.Value), strict)
		comp, err = it.execBlock(n.Catch.Body.Statements, catchEnv, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
	}

	if n.Finally != nil {
		fc, err := it.execBlock(n.Finally.Statements, e, this, strict)
		if err != nil {
			return jserrors.Completion{}, err
		}
		if fc.Type != jserrors.Normal {
			return fc, nil
		}
	}

	return comp, nil
}
