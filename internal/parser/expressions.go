package parser

import (
	"strconv"
	"strings"

	"github.com/mras0/mjs-sub001/internal/ast"
	"github.com/mras0/mjs-sub001/internal/token"
)

func (p *Parser) registerExpressionParsers() {
	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:      p.parseIdentifier,
		token.NUMBER:     p.parseNumberLiteral,
		token.STRING:     p.parseStringLiteral,
		token.REGEXP:     p.parseRegexLiteral,
		token.TRUE:       p.parseBooleanLiteral,
		token.FALSE:      p.parseBooleanLiteral,
		token.NULL:       p.parseNullLiteral,
		token.THIS:       p.parseThisExpression,
		token.LPAREN:     p.parseGroupedExpression,
		token.LBRACKET:   p.parseArrayLiteral,
		token.LBRACE:     p.parseObjectLiteral,
		token.FUNCTION:   p.parseFunctionExpression,
		token.NEW:        p.parseNewExpression,
		token.NOT:        p.parseUnaryExpression,
		token.TILDE:      p.parseUnaryExpression,
		token.PLUS:       p.parseUnaryExpression,
		token.MINUS:      p.parseUnaryExpression,
		token.TYPEOF:     p.parseUnaryExpression,
		token.VOID:       p.parseUnaryExpression,
		token.DELETE:     p.parseUnaryExpression,
		token.PLUSPLUS:   p.parseUnaryExpression,
		token.MINUSMINUS: p.parseUnaryExpression,
	}
	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS: p.parseBinaryExpression, token.MINUS: p.parseBinaryExpression,
		token.STAR: p.parseBinaryExpression, token.SLASH: p.parseBinaryExpression,
		token.PERCENT: p.parseBinaryExpression,
		token.EQ: p.parseBinaryExpression, token.NEQ: p.parseBinaryExpression,
		token.STRICTEQ: p.parseBinaryExpression, token.STRICTNEQ: p.parseBinaryExpression,
		token.LT: p.parseBinaryExpression, token.GT: p.parseBinaryExpression,
		token.LE: p.parseBinaryExpression, token.GE: p.parseBinaryExpression,
		token.SHL: p.parseBinaryExpression, token.SHR: p.parseBinaryExpression, token.USHR: p.parseBinaryExpression,
		token.AND: p.parseBinaryExpression, token.OR: p.parseBinaryExpression, token.XOR: p.parseBinaryExpression,
		token.LOGAND: p.parseBinaryExpression, token.LOGOR: p.parseBinaryExpression,
		token.IN: p.parseBinaryExpression, token.INSTANCEOF: p.parseBinaryExpression,
		token.QUESTION: p.parseConditionalExpression,
		token.LPAREN:   p.parseCallExpression,
		token.LBRACKET: p.parseComputedMemberExpression,
		token.DOT:      p.parseMemberExpression,
		token.COMMA:    p.parseSequenceExpression,
		token.ASSIGN: p.parseAssignmentExpression, token.PLUSASSIGN: p.parseAssignmentExpression,
		token.MINUSASSIGN: p.parseAssignmentExpression, token.STARASSIGN: p.parseAssignmentExpression,
		token.SLASHASSIGN: p.parseAssignmentExpression, token.PERCENTASSIGN: p.parseAssignmentExpression,
		token.SHLASSIGN: p.parseAssignmentExpression, token.SHRASSIGN: p.parseAssignmentExpression,
		token.USHRASSIGN: p.parseAssignmentExpression, token.ANDASSIGN: p.parseAssignmentExpression,
		token.ORASSIGN: p.parseAssignmentExpression, token.XORASSIGN: p.parseAssignmentExpression,
	}
}

// parseExpression is the Pratt-parser core: parses a prefix expression then
// repeatedly folds infix/postfix operators with precedence >= minPrec.
// Postfix ++/-- are handled here rather than via the infix table since they
// additionally require "no line terminator before the operator" (ES5 §7.9.1).
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	prefix := p.prefixParseFns[p.cur.Type]
	if prefix == nil {
		p.addError("unexpected token %s in expression", p.cur.Type)
		return nil
	}
	left := prefix()

	for {
		if (p.peekIs(token.PLUSPLUS) || p.peekIs(token.MINUSMINUS)) && !p.peek.PrecededByNewline && minPrec <= precPostfix {
			p.nextToken()
			left = p.finishPostfix(left)
			continue
		}
		if minPrec > peekPrecedence(p) {
			break
		}
		infix := p.infixParseFns[p.peek.Type]
		if infix == nil {
			break
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) finishPostfix(operand ast.Expression) ast.Expression {
	p.checkSimpleAssignmentTarget(operand, p.cur.Pos)
	return &ast.PostfixExpression{Token: p.cur, Operator: p.cur.Literal, Operand: operand}
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.cur, Name: p.cur.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := p.cur.Literal
	var val float64
	switch {
	case strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X"):
		n, err := strconv.ParseUint(lit[2:], 16, 64)
		if err != nil {
			p.addError("invalid hex literal %q", lit)
		}
		val = float64(n)
	case len(lit) > 1 && lit[0] == '0' && isAllOctal(lit):
		n, err := strconv.ParseUint(lit, 8, 64)
		if err != nil {
			p.addError("invalid octal literal %q", lit)
		}
		val = float64(n)
	default:
		n, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			p.addError("invalid number literal %q", lit)
		}
		val = n
	}
	return &ast.NumberLiteral{Token: p.cur, Value: val}
}

func isAllOctal(s string) bool {
	for _, r := range s {
		if r < '0' || r > '7' {
			return false
		}
	}
	return true
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.cur, Value: p.cur.Literal, HasEscapes: strings.ContainsRune(p.cur.Literal, '\\')}
}

func (p *Parser) parseRegexLiteral() ast.Expression {
	lit := p.cur.Literal
	lastSlash := strings.LastIndexByte(lit, '/')
	return &ast.RegexLiteral{Token: p.cur, Pattern: lit[1:lastSlash], Flags: lit[lastSlash+1:]}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.cur, Value: p.cur.Type == token.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expression { return &ast.NullLiteral{Token: p.cur} }

func (p *Parser) parseThisExpression() ast.Expression { return &ast.ThisExpression{Token: p.cur} }

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(precComma)
	if !p.expect(token.RPAREN) {
		return exp
	}
	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	lit := &ast.ArrayLiteral{Token: p.cur}
	for !p.peekIs(token.RBRACKET) {
		if p.peekIs(token.COMMA) {
			lit.Elements = append(lit.Elements, nil)
			p.nextToken()
			continue
		}
		p.nextToken()
		lit.Elements = append(lit.Elements, p.parseExpression(precAssignment))
		if p.peekIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(token.RBRACKET)
	return lit
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	lit := &ast.ObjectLiteral{Token: p.cur}
	seenGet := map[string]bool{}
	seenSet := map[string]bool{}
	seenData := map[string]bool{}
	for !p.peekIs(token.RBRACE) {
		p.nextToken()
		prop := p.parseObjectProperty()
		key := propertyKeyString(prop.Key)
		switch prop.Kind {
		case ast.PropertyGet:
			if seenGet[key] || seenData[key] {
				p.addErrorAt(prop.Key.Pos(), "SyntaxError: duplicate property %q in object literal", key)
			}
			seenGet[key] = true
		case ast.PropertySet:
			if seenSet[key] || seenData[key] {
				p.addErrorAt(prop.Key.Pos(), "SyntaxError: duplicate property %q in object literal", key)
			}
			seenSet[key] = true
		default:
			if seenGet[key] || seenSet[key] {
				p.addErrorAt(prop.Key.Pos(), "SyntaxError: duplicate property %q in object literal", key)
			}
			seenData[key] = true
		}
		lit.Properties = append(lit.Properties, prop)
		if p.peekIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(token.RBRACE)
	return lit
}

func propertyKeyString(key ast.Expression) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.StringLiteral:
		return k.Value
	case *ast.NumberLiteral:
		return k.Token.Literal
	}
	return ""
}

// parseObjectProperty parses one `key: value`, `get key() {...}`, or
// `set key(v) {...}` entry.
func (p *Parser) parseObjectProperty() ast.Property {
	if (p.cur.Literal == "get" || p.cur.Literal == "set") && p.cur.Type == token.IDENT &&
		!p.peekIs(token.COLON) && !p.peekIs(token.COMMA) && !p.peekIs(token.RBRACE) {
		kind := ast.PropertyGet
		if p.cur.Literal == "set" {
			kind = ast.PropertySet
		}
		p.nextToken()
		key := p.parsePropertyKey()
		fn := p.parseFunctionLiteralFrom(key.Pos(), "")
		if kind == ast.PropertyGet && len(fn.Params) != 0 {
			p.addErrorAt(key.Pos(), "SyntaxError: getter function must have no parameters")
		}
		if kind == ast.PropertySet && len(fn.Params) != 1 {
			p.addErrorAt(key.Pos(), "SyntaxError: setter function must have exactly one parameter")
		}
		return ast.Property{Key: key, Value: fn, Kind: kind}
	}
	key := p.parsePropertyKey()
	p.expect(token.COLON)
	p.nextToken()
	val := p.parseExpression(precAssignment)
	return ast.Property{Key: key, Value: val, Kind: ast.PropertyData}
}

func (p *Parser) parsePropertyKey() ast.Expression {
	switch p.cur.Type {
	case token.STRING:
		return &ast.StringLiteral{Token: p.cur, Value: p.cur.Literal}
	case token.NUMBER:
		return p.parseNumberLiteral()
	default:
		// IDENT, or a reserved word used as a property name (ES5 allows
		// any IdentifierName, including keywords, as an object literal key).
		return &ast.Identifier{Token: p.cur, Name: p.cur.Literal}
	}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.cur
	op := p.cur.Literal
	p.nextToken()
	operand := p.parseExpression(precUnary)
	if tok.Type == token.DELETE {
		p.checkDeleteOperand(operand, tok.Pos)
	}
	if tok.Type == token.PLUSPLUS || tok.Type == token.MINUSMINUS {
		p.checkSimpleAssignmentTarget(operand, tok.Pos)
	}
	return &ast.UnaryExpression{Token: tok, Operator: op, Operand: operand, Prefix: true}
}

// checkDeleteOperand implements the strict-mode early error: `delete` of a
// bare identifier reference is a SyntaxError in strict mode (spec.md §4.I).
func (p *Parser) checkDeleteOperand(operand ast.Expression, pos token.Position) {
	if _, ok := operand.(*ast.Identifier); ok && p.curStrict() {
		p.addErrorAt(pos, "SyntaxError: delete of an unqualified identifier is not allowed in strict mode")
	}
}

// checkSimpleAssignmentTarget validates ++/--/= target shape and the
// strict-mode eval/arguments restriction.
func (p *Parser) checkSimpleAssignmentTarget(target ast.Expression, pos token.Position) {
	switch t := target.(type) {
	case *ast.Identifier:
		if p.curStrict() && (t.Name == "eval" || t.Name == "arguments") {
			p.addErrorAt(pos, "SyntaxError: assignment to %s is not allowed in strict mode", t.Name)
		}
	case *ast.MemberExpression:
		// always a valid reference
	default:
		p.addErrorAt(pos, "SyntaxError: invalid assignment target")
	}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	prec := curPrecedence(p)
	p.nextToken()
	right := p.parseExpression(prec + 1)
	return &ast.BinaryExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

func (p *Parser) parseConditionalExpression(test ast.Expression) ast.Expression {
	tok := p.cur
	p.nextToken()
	cons := p.parseExpression(precAssignment)
	if !p.expect(token.COLON) {
		return cons
	}
	p.nextToken()
	alt := p.parseExpression(precAssignment)
	return &ast.ConditionalExpression{Token: tok, Test: test, Consequent: cons, Alternate: alt}
}

func (p *Parser) parseSequenceExpression(first ast.Expression) ast.Expression {
	tok := p.cur
	exprs := []ast.Expression{first}
	for {
		p.nextToken()
		exprs = append(exprs, p.parseExpression(precAssignment))
		if !p.peekIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return &ast.SequenceExpression{Token: tok, Expressions: exprs}
}

func (p *Parser) parseAssignmentExpression(target ast.Expression) ast.Expression {
	tok := p.cur
	p.checkSimpleAssignmentTarget(target, tok.Pos)
	p.nextToken()
	val := p.parseExpression(precAssignment)
	return &ast.AssignmentExpression{Token: tok, Operator: tok.Literal, Target: target, Value: val}
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	tok := p.cur
	if !p.expect(token.IDENT) {
		return object
	}
	prop := &ast.Identifier{Token: p.cur, Name: p.cur.Literal}
	return &ast.MemberExpression{Token: tok, Object: object, Property: prop, Computed: false}
}

func (p *Parser) parseComputedMemberExpression(object ast.Expression) ast.Expression {
	tok := p.cur
	p.nextToken()
	prop := p.parseExpression(precComma)
	p.expect(token.RBRACKET)
	return &ast.MemberExpression{Token: tok, Object: object, Property: prop, Computed: true}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.cur
	args := p.parseArgumentList()
	return &ast.CallExpression{Token: tok, Callee: callee, Arguments: args}
}

func (p *Parser) parseArgumentList() []ast.Expression {
	var args []ast.Expression
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return args
	}
	p.nextToken()
	args = append(args, p.parseExpression(precAssignment))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(precAssignment))
	}
	p.expect(token.RPAREN)
	return args
}

// parseNewExpression parses `new Callee(args)` or `new Callee` (bare, no
// argument list — ES5 grammar permits this, treated as zero arguments).
func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.cur
	p.nextToken()
	callee := p.parseExpression(precMember)
	var args []ast.Expression
	if p.peekIs(token.LPAREN) {
		p.nextToken()
		args = p.parseArgumentList()
	}
	return &ast.NewExpression{Token: tok, Callee: callee, Arguments: args}
}

func (p *Parser) parseFunctionExpression() ast.Expression {
	fn := p.parseFunctionLiteral()
	fn.IsDeclaration = false
	return fn
}

// parseFunctionLiteral parses `function [name](params) { body }` starting
// with cur == FUNCTION.
func (p *Parser) parseFunctionLiteral() *ast.FunctionLiteral {
	tok := p.cur
	name := ""
	if p.peekIs(token.IDENT) {
		p.nextToken()
		name = p.cur.Literal
	}
	return p.parseFunctionLiteralFrom(tok.Pos, name, tok)
}

func (p *Parser) parseFunctionLiteralFrom(pos token.Position, name string, tok ...token.Token) *ast.FunctionLiteral {
	t := token.Token{Type: token.FUNCTION, Literal: "function", Pos: pos}
	if len(tok) > 0 {
		t = tok[0]
	}
	fn := &ast.FunctionLiteral{Token: t, Name: name}

	if !p.expect(token.LPAREN) {
		return fn
	}
	seen := map[string]bool{}
	dup := false
	for !p.peekIs(token.RPAREN) {
		p.nextToken()
		if !p.curIs(token.IDENT) {
			p.addError("expected parameter name, got %s", p.cur.Type)
			break
		}
		pname := p.cur.Literal
		if seen[pname] {
			dup = true
		}
		seen[pname] = true
		fn.Params = append(fn.Params, &ast.Identifier{Token: p.cur, Name: pname})
		if p.peekIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	if !p.expect(token.LBRACE) {
		return fn
	}

	p.pushStrict(false)
	p.inFunctionBody++
	savedLoop, savedSwitch := p.loopDepth, p.switchDepth
	p.loopDepth, p.switchDepth = 0, 0

	bodyTok := p.cur
	p.nextToken()
	stmts, strict := p.parseStatementListWithDirectives(token.RBRACE)
	fn.Body = &ast.BlockStatement{Token: bodyTok, Statements: stmts}
	fn.Strict = strict

	p.inFunctionBody--
	p.loopDepth, p.switchDepth = savedLoop, savedSwitch
	p.popStrict()

	if strict {
		if name == "eval" || name == "arguments" {
			p.addErrorAt(pos, "SyntaxError: function name may not be eval or arguments in strict mode")
		}
		for pname := range seen {
			if pname == "eval" || pname == "arguments" {
				p.addErrorAt(pos, "SyntaxError: parameter name may not be eval or arguments in strict mode")
			}
		}
		if dup {
			p.addErrorAt(pos, "SyntaxError: duplicate parameter name not allowed in strict mode")
		}
	}
	return fn
}
