package interp

import (
	"github.com/mras0/mjs-sub001/internal/ast"
	"github.com/mras0/mjs-sub001/internal/env"
	"github.com/mras0/mjs-sub001/internal/jserrors"
	"github.com/mras0/mjs-sub001/internal/jsstring"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// evalExpr evaluates an expression node. The middle return is non-nil only
// when evaluation completed by throwing an ES5 value (as opposed to err,
// which signals a Go-level failure such as heap exhaustion); callers
// convert a non-nil thrown value into a Throw completion.
func (it *Interpreter) evalExpr(n ast.Expression, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	switch node := n.(type) {
	case *ast.Identifier:
		ref := env.GetIdentifierReference(e, node.Name, strict)
		if ref.Base == nil {
			return value.Undefined, thrown(it.ThrowValue(jserrors.NewReferenceError("%s is not defined", node.Name))), nil
		}
		v, err := ref.Base.GetBindingValue(node.Name, strict)
		if err != nil {
			return value.Undefined, thrown(it.ThrowValue(err)), nil
		}
		return v, nil, nil

	case *ast.NumberLiteral:
		return value.Number(node.Value), nil, nil
	case *ast.StringLiteral:
		return value.StrFromGo(node.Value), nil, nil
	case *ast.BooleanLiteral:
		return value.Bool(node.Value), nil, nil
	case *ast.NullLiteral:
		return value.Null, nil, nil
	case *ast.ThisExpression:
		return this, nil, nil

	case *ast.RegexLiteral:
		v, th := it.newRegExp(node.Pattern, node.Flags)
		return v, th, nil

	case *ast.ArrayLiteral:
		return it.evalArrayLiteral(node, e, this, strict)

	case *ast.ObjectLiteral:
		return it.evalObjectLiteral(node, e, this, strict)

	case *ast.FunctionLiteral:
		return value.Object(it.NewFunction(node, e)), nil, nil

	case *ast.UnaryExpression:
		return it.evalUnary(node, e, this, strict)

	case *ast.PostfixExpression:
		return it.evalPostfix(node, e, this, strict)

	case *ast.BinaryExpression:
		return it.evalBinary(node, e, this, strict)

	case *ast.ConditionalExpression:
		test, th, err := it.evalExpr(node.Test, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		if value.ToBoolean(test) {
			return it.evalExpr(node.Consequent, e, this, strict)
		}
		return it.evalExpr(node.Alternate, e, this, strict)

	case *ast.AssignmentExpression:
		return it.evalAssignment(node, e, this, strict)

	case *ast.SequenceExpression:
		var v value.Value
		for _, expr := range node.Expressions {
			var th *value.Value
			var err error
			v, th, err = it.evalExpr(expr, e, this, strict)
			if err != nil || th != nil {
				return value.Undefined, th, err
			}
		}
		return v, nil, nil

	case *ast.MemberExpression:
		objVal, th, err := it.evalExpr(node.Object, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		name, th, err := it.memberName(node, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		return it.getMember(objVal, name)

	case *ast.CallExpression:
		return it.evalCall(node, e, this, strict)

	case *ast.NewExpression:
		return it.evalNew(node, e, this, strict)
	}
	return value.Undefined, nil, jserrors.NewTypeError("unsupported expression node")
}

func thrown(v value.Value) *value.Value { return &v }

func (it *Interpreter) getMember(objVal value.Value, name string) (value.Value, *value.Value, error) {
	if objVal.IsNullOrUndefined() {
		return value.Undefined, thrown(it.ThrowValue(jserrors.NewTypeError("cannot read property %q of %s", name, objVal.Kind()))), nil
	}
	if objVal.IsString() {
		s := objVal.StringValue()
		if name == "length" {
			return value.Number(float64(s.Length())), nil, nil
		}
		if idx, ok := arrayIndex(name); ok {
			if c, ok := s.CharCodeAt(idx); ok {
				return value.Str(jsstring.FromUnits([]uint16{c})), nil, nil
			}
			return value.Undefined, nil, nil
		}
		o, err := it.ToObject(objVal)
		if err != nil {
			return value.Undefined, thrown(it.ThrowValue(err)), nil
		}
		v, err := o.Get(name, objVal, it.invokeGetter)
		if err != nil {
			return value.Undefined, thrown(it.ThrowValue(err)), nil
		}
		return v, nil, nil
	}
	o, err := it.ToObject(objVal)
	if err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	if mapped, ok := mappedArgIndex(o, name); ok {
		if v, ok := o.ParamEnv.GetBinding(mapped); ok {
			return v, nil, nil
		}
	}
	v, err := o.Get(name, value.Object(o), it.invokeGetter)
	if err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	return v, nil, nil
}

// mappedArgIndex reports the aliased parameter name for a non-strict
// Arguments object's numeric own-property access (ES5 §10.6's [[Get]]
// override for mapped arguments).
func mappedArgIndex(o *object.Object, name string) (string, bool) {
	if o.ClassName() != "Arguments" || o.ParameterMap == nil {
		return "", false
	}
	idx, ok := arrayIndex(name)
	if !ok {
		return "", false
	}
	n, ok := o.ParameterMap[idx]
	return n, ok
}

func arrayIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	n := 0
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (it *Interpreter) memberName(node *ast.MemberExpression, e *env.Record, this value.Value, strict bool) (string, *value.Value, error) {
	if !node.Computed {
		return node.Property.(*ast.Identifier).Name, nil, nil
	}
	v, th, err := it.evalExpr(node.Property, e, this, strict)
	if err != nil || th != nil {
		return "", th, err
	}
	s, err := it.ToStringValue(v)
	if err != nil {
		return "", thrown(it.ThrowValue(err)), nil
	}
	return s.String(), nil, nil
}

func (it *Interpreter) evalArrayLiteral(node *ast.ArrayLiteral, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	arr := it.newArray(0)
	for i, elem := range node.Elements {
		if elem == nil {
			continue
		}
		v, th, err := it.evalExpr(elem, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		arr.DefineDataProperty(indexKey(i), v, true, true, true)
	}
	it.setArrayLength(arr, uint32(len(node.Elements)))
	return value.Object(arr), nil, nil
}

func (it *Interpreter) evalObjectLiteral(node *ast.ObjectLiteral, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	o := it.newObject("Object", it.ObjectPrototype)
	for _, prop := range node.Properties {
		key := it.propertyKeyString(prop.Key)
		switch prop.Kind {
		case ast.PropertyData:
			v, th, err := it.evalExpr(prop.Value, e, this, strict)
			if err != nil || th != nil {
				return value.Undefined, th, err
			}
			o.DefineDataProperty(key, v, true, true, true)
		case ast.PropertyGet:
			fn := it.NewFunction(prop.Value.(*ast.FunctionLiteral), e)
			existing := o.GetOwnProperty(key)
			var setFn *object.Object
			if existing != nil && existing.IsAccessor() {
				setFn = existing.Set
			}
			o.DefineAccessorProperty(key, fn, setFn, true, true)
		case ast.PropertySet:
			fn := it.NewFunction(prop.Value.(*ast.FunctionLiteral), e)
			existing := o.GetOwnProperty(key)
			var getFn *object.Object
			if existing != nil && existing.IsAccessor() {
				getFn = existing.Get
			}
			o.DefineAccessorProperty(key, getFn, fn, true, true)
		}
	}
	return value.Object(o), nil, nil
}

func (it *Interpreter) propertyKeyString(key ast.Expression) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.StringLiteral:
		return k.Value
	case *ast.NumberLiteral:
		return value.NumberToString(k.Value)
	}
	return ""
}

func (it *Interpreter) evalUnary(node *ast.UnaryExpression, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	switch node.Operator {
	case "typeof":
		if id, ok := node.Operand.(*ast.Identifier); ok {
			ref := env.GetIdentifierReference(e, id.Name, strict)
			if ref.Base == nil {
				return value.StrFromGo("undefined"), nil, nil
			}
		}
		v, th, err := it.evalExpr(node.Operand, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		return value.StrFromGo(v.TypeOf(isCallable)), nil, nil

	case "delete":
		return it.evalDelete(node.Operand, e, this, strict)

	case "void":
		_, th, err := it.evalExpr(node.Operand, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		return value.Undefined, nil, nil

	case "++", "--":
		return it.evalPrefixIncDec(node, e, this, strict)
	}

	v, th, err := it.evalExpr(node.Operand, e, this, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	var result value.Value
	switch node.Operator {
	case "-":
		result, err = it.unaryMinus(v)
	case "+":
		result, err = it.unaryPlus(v)
	case "~":
		result, err = it.bitwiseNot(v)
	case "!":
		result = logicalNot(v)
	default:
		return value.Undefined, nil, jserrors.NewTypeError("unsupported unary operator %q", node.Operator)
	}
	if err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	return result, nil, nil
}

func (it *Interpreter) evalDelete(operand ast.Expression, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	switch target := operand.(type) {
	case *ast.Identifier:
		ref := env.GetIdentifierReference(e, target.Name, strict)
		if ref.Base == nil {
			return value.Bool(true), nil, nil
		}
		return value.Bool(ref.Base.DeleteBinding(target.Name)), nil, nil
	case *ast.MemberExpression:
		objVal, th, err := it.evalExpr(target.Object, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		name, th, err := it.memberName(target, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		o, err := it.ToObject(objVal)
		if err != nil {
			return value.Undefined, thrown(it.ThrowValue(err)), nil
		}
		ok, err := o.Delete(name, strict)
		if err != nil {
			return value.Undefined, thrown(it.ThrowValue(err)), nil
		}
		return value.Bool(ok), nil, nil
	}
	return value.Bool(true), nil, nil
}

func (it *Interpreter) evalPrefixIncDec(node *ast.UnaryExpression, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	ref, th, err := it.resolveReference(node.Operand, e, this, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	old, th, err := it.getReference(ref, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	n, err := it.ToNumber(old)
	if err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	var result float64
	if node.Operator == "++" {
		result = n + 1
	} else {
		result = n - 1
	}
	rv := value.Number(result)
	if err := it.putReference(ref, rv, strict); err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	return rv, nil, nil
}

func (it *Interpreter) evalPostfix(node *ast.PostfixExpression, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	ref, th, err := it.resolveReference(node.Operand, e, this, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	old, th, err := it.getReference(ref, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	n, err := it.ToNumber(old)
	if err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	var result float64
	if node.Operator == "++" {
		result = n + 1
	} else {
		result = n - 1
	}
	if err := it.putReference(ref, value.Number(result), strict); err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	return value.Number(n), nil, nil
}

func (it *Interpreter) evalBinary(node *ast.BinaryExpression, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	if node.Operator == "&&" || node.Operator == "||" {
		l, th, err := it.evalExpr(node.Left, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		lb := value.ToBoolean(l)
		if (node.Operator == "&&" && !lb) || (node.Operator == "||" && lb) {
			return l, nil, nil
		}
		return it.evalExpr(node.Right, e, this, strict)
	}

	l, th, err := it.evalExpr(node.Left, e, this, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	r, th, err := it.evalExpr(node.Right, e, this, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	result, err := it.binaryOp(node.Operator, l, r)
	if err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	return result, nil, nil
}

func (it *Interpreter) evalAssignment(node *ast.AssignmentExpression, e *env.Record, this value.Value, strict bool) (value.Value, *value.Value, error) {
	// Resolve the target reference (base object + key, for a member target)
	// once, before the RHS or old value is read (ES5 §11.13.1 Ordering):
	// otherwise `a().x = b()` would evaluate b() before a(), and `o.x += v`
	// would evaluate `o` twice.
	ref, th, err := it.resolveReference(node.Target, e, this, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}

	if node.Operator == "=" {
		v, th, err := it.evalExpr(node.Value, e, this, strict)
		if err != nil || th != nil {
			return value.Undefined, th, err
		}
		if err := it.putReference(ref, v, strict); err != nil {
			return value.Undefined, thrown(it.ThrowValue(err)), nil
		}
		return v, nil, nil
	}

	old, th, err := it.getReference(ref, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	rhs, th, err := it.evalExpr(node.Value, e, this, strict)
	if err != nil || th != nil {
		return value.Undefined, th, err
	}
	op := node.Operator[:len(node.Operator)-1] // "+=" -> "+"
	result, err := it.binaryOp(op, old, rhs)
	if err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	if err := it.putReference(ref, result, strict); err != nil {
		return value.Undefined, thrown(it.ThrowValue(err)), nil
	}
	return result, nil, nil
}

// reference is a resolved assignment target (ES5 §8.7): either an
// environment binding (Identifier) or an object property (MemberExpression),
// captured once so a read-modify-write (++, --, +=, ...) or a plain `=`
// evaluates the base object and property key exactly once.
type reference struct {
	envRef *env.Reference // set for an Identifier target

	obj    *object.Object // set for a MemberExpression target
	objVal value.Value
	name   string
}

// resolveReference evaluates target's base object (for a MemberExpression)
// and property key exactly once; the parser guarantees target is either an
// Identifier or a MemberExpression (checkSimpleAssignmentTarget).
func (it *Interpreter) resolveReference(target ast.Expression, e *env.Record, this value.Value, strict bool) (*reference, *value.Value, error) {
	switch t := target.(type) {
	case *ast.Identifier:
		ref := env.GetIdentifierReference(e, t.Name, strict)
		return &reference{envRef: &ref}, nil, nil

	case *ast.MemberExpression:
		objVal, th, err := it.evalExpr(t.Object, e, this, strict)
		if err != nil || th != nil {
			return nil, th, err
		}
		name, th, err := it.memberName(t, e, this, strict)
		if err != nil || th != nil {
			return nil, th, err
		}
		o, err := it.ToObject(objVal)
		if err != nil {
			return nil, thrown(it.ThrowValue(err)), nil
		}
		return &reference{obj: o, objVal: objVal, name: name}, nil, nil
	}
	return nil, nil, jserrors.NewReferenceError("invalid assignment target")
}

// getReference reads ref's current value (ES5 §8.7 GetValue), used by
// compound assignment and ++/-- to read the old value without re-evaluating
// the base object expression a second time.
func (it *Interpreter) getReference(ref *reference, strict bool) (value.Value, *value.Value, error) {
	if ref.envRef != nil {
		if ref.envRef.Base == nil {
			return value.Undefined, thrown(it.ThrowValue(jserrors.NewReferenceError("%s is not defined", ref.envRef.Name))), nil
		}
		v, err := ref.envRef.Base.GetBindingValue(ref.envRef.Name, strict)
		if err != nil {
			return value.Undefined, thrown(it.ThrowValue(err)), nil
		}
		return v, nil, nil
	}
	return it.getMember(ref.objVal, ref.name)
}

// putReference writes v through ref (ES5 §8.7 PutValue).
func (it *Interpreter) putReference(ref *reference, v value.Value, strict bool) error {
	if ref.envRef != nil {
		if ref.envRef.Base == nil {
			if strict {
				return jserrors.NewReferenceError("%s is not defined", ref.envRef.Name)
			}
			it.GlobalEnv.CreateMutableBinding(ref.envRef.Name, true)
			return it.GlobalEnv.SetMutableBinding(ref.envRef.Name, v, false)
		}
		return ref.envRef.Base.SetMutableBinding(ref.envRef.Name, v, strict)
	}
	if mapped, ok := mappedArgIndex(ref.obj, ref.name); ok {
		ref.obj.ParamEnv.SetBinding(mapped, v)
	}
	return ref.obj.Put(ref.name, v, strict, it.invokeSetter)
}

// assignTo writes v to the reference target refers to (an Identifier or a
// MemberExpression); the parser guarantees no other expression shape
// reaches here (checkSimpleAssignmentTarget).
func (it *Interpreter) assignTo(target ast.Expression, v value.Value, e *env.Record, this value.Value, strict bool) error {
	ref, th, err := it.resolveReference(target, e, this, strict)
	if err != nil {
		return err
	}
	if th != nil {
		return &nativeThrow{*th}
	}
	return it.putReference(ref, v, strict)
}

// nativeThrow adapts an already-computed thrown Value into the plain error
// channel assignTo returns when its target's sub-evaluation throws;
// ThrowValue and errorToThrown both unwrap it back to the carried value v.
type nativeThrow struct{ v value.Value }

func (n *nativeThrow) Error() string { return "uncaught exception" }
