package parser

import (
	"github.com/mras0/mjs-sub001/internal/ast"
	"github.com/mras0/mjs-sub001/internal/token"
)

// parseStatement dispatches on the current token to the appropriate
// statement parser. Leaves cur on the statement's last token.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.VAR:
		return p.parseVarStatement()
	case token.SEMICOLON:
		return &ast.EmptyStatement{Token: p.cur}
	case token.IF:
		return p.parseIfStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.WITH:
		return p.parseWithStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.DEBUGGER:
		return &ast.DebuggerStatement{Token: p.cur}
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.IDENT:
		if p.peekIs(token.COLON) {
			return p.parseLabelledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// consumeSemicolon implements automatic semicolon insertion (ES5 §7.9): a
// semicolon is inserted before a token that would otherwise be a parse
// error if that token is preceded by a line terminator, is `}`, or is EOF.
func (p *Parser) consumeSemicolon() {
	if p.peekIs(token.SEMICOLON) {
		p.nextToken()
		return
	}
	if p.peek.PrecededByNewline || p.peekIs(token.RBRACE) || p.peekIs(token.EOF) {
		return
	}
	p.addErrorAt(p.peek.Pos, "unexpected token %s, expected ; (automatic semicolon insertion)", p.peek.Type)
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.cur}
	p.nextToken()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if s := p.parseStatement(); s != nil {
			block.Statements = append(block.Statements, s)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseVarStatement() *ast.VarStatement {
	stmt := &ast.VarStatement{Token: p.cur}
	for {
		if !p.expect(token.IDENT) {
			return stmt
		}
		name := &ast.Identifier{Token: p.cur, Name: p.cur.Literal}
		p.checkBindingIdentifier(name.Name, name.Pos())
		decl := ast.VarDeclarator{Name: name}
		if p.peekIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			decl.Init = p.parseExpression(precAssignment)
		}
		stmt.Declarators = append(stmt.Declarators, decl)
		if !p.peekIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	p.consumeSemicolon()
	return stmt
}

// checkBindingIdentifier implements the strict-mode early errors for
// declaring/assigning eval or arguments (spec.md §4.F).
func (p *Parser) checkBindingIdentifier(name string, pos token.Position) {
	if p.curStrict() && (name == "eval" || name == "arguments") {
		p.addErrorAt(pos, "SyntaxError: assignment to %s is not allowed in strict mode", name)
	}
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.cur}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Test = p.parseExpression(precComma)
	if !p.expect(token.RPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Consequent = p.parseStatement()
	if p.peekIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternate = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	stmt := &ast.DoWhileStatement{Token: p.cur}
	p.nextToken()
	p.loopDepth++
	stmt.Body = p.parseStatement()
	p.loopDepth--
	if !p.expect(token.WHILE) {
		return stmt
	}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Test = p.parseExpression(precComma)
	p.expect(token.RPAREN)
	if p.peekIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.cur}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Test = p.parseExpression(precComma)
	if !p.expect(token.RPAREN) {
		return stmt
	}
	p.nextToken()
	p.loopDepth++
	stmt.Body = p.parseStatement()
	p.loopDepth--
	return stmt
}

// parseForStatement parses both the C-style for and for-in forms,
// disambiguating after parsing the init clause.
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.cur
	if !p.expect(token.LPAREN) {
		return &ast.ForStatement{Token: tok}
	}
	p.nextToken()

	if p.curIs(token.VAR) {
		varTok := p.cur
		p.nextToken()
		name := &ast.Identifier{Token: p.cur, Name: p.cur.Literal}
		p.checkBindingIdentifier(name.Name, name.Pos())
		if p.peekIs(token.IN) {
			p.nextToken() // to IN
			p.nextToken()
			right := p.parseExpression(precComma)
			if !p.expect(token.RPAREN) {
				return &ast.ForInStatement{Token: tok}
			}
			p.nextToken()
			p.loopDepth++
			body := p.parseStatement()
			p.loopDepth--
			return &ast.ForInStatement{Token: tok, Left: name, DeclaresVar: true, Right: right, Body: body}
		}
		// Full var-decl init clause, reusing parseVarStatement's declarator
		// loop by constructing it manually since we've already consumed
		// the first identifier.
		decl := ast.VarDeclarator{Name: name}
		if p.peekIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			decl.Init = p.parseExpression(precAssignment)
		}
		varStmt := &ast.VarStatement{Token: varTok, Declarators: []ast.VarDeclarator{decl}}
		for p.peekIs(token.COMMA) {
			p.nextToken()
			p.expect(token.IDENT)
			n2 := &ast.Identifier{Token: p.cur, Name: p.cur.Literal}
			d2 := ast.VarDeclarator{Name: n2}
			if p.peekIs(token.ASSIGN) {
				p.nextToken()
				p.nextToken()
				d2.Init = p.parseExpression(precAssignment)
			}
			varStmt.Declarators = append(varStmt.Declarators, d2)
		}
		return p.finishForStatement(tok, varStmt)
	}

	if p.curIs(token.SEMICOLON) {
		return p.finishForStatement(tok, nil)
	}

	init := p.parseExpression(precComma)
	if p.peekIs(token.IN) {
		p.nextToken()
		p.nextToken()
		right := p.parseExpression(precComma)
		if !p.expect(token.RPAREN) {
			return &ast.ForInStatement{Token: tok}
		}
		p.nextToken()
		p.loopDepth++
		body := p.parseStatement()
		p.loopDepth--
		return &ast.ForInStatement{Token: tok, Left: init, DeclaresVar: false, Right: right, Body: body}
	}
	return p.finishForStatement(tok, init)
}

func (p *Parser) finishForStatement(tok token.Token, init ast.Node) *ast.ForStatement {
	stmt := &ast.ForStatement{Token: tok, Init: init}
	if !p.expect(token.SEMICOLON) {
		return stmt
	}
	if !p.peekIs(token.SEMICOLON) {
		p.nextToken()
		stmt.Test = p.parseExpression(precComma)
	}
	if !p.expect(token.SEMICOLON) {
		return stmt
	}
	if !p.peekIs(token.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(precComma)
	}
	if !p.expect(token.RPAREN) {
		return stmt
	}
	p.nextToken()
	p.loopDepth++
	stmt.Body = p.parseStatement()
	p.loopDepth--
	return stmt
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	stmt := &ast.ContinueStatement{Token: p.cur}
	if p.peekIs(token.IDENT) && !p.peek.PrecededByNewline {
		p.nextToken()
		stmt.Label = p.cur.Literal
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	stmt := &ast.BreakStatement{Token: p.cur}
	if p.peekIs(token.IDENT) && !p.peek.PrecededByNewline {
		p.nextToken()
		stmt.Label = p.cur.Literal
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.cur}
	if p.inFunctionBody == 0 {
		p.addError("SyntaxError: return is only valid inside a function")
	}
	if !p.peekIs(token.SEMICOLON) && !p.peekIs(token.RBRACE) && !p.peekIs(token.EOF) && !p.peek.PrecededByNewline {
		p.nextToken()
		stmt.Argument = p.parseExpression(precComma)
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseWithStatement() *ast.WithStatement {
	stmt := &ast.WithStatement{Token: p.cur}
	if p.curStrict() {
		p.addError("SyntaxError: 'with' statements are not allowed in strict mode")
	}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Object = p.parseExpression(precComma)
	if !p.expect(token.RPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	stmt := &ast.SwitchStatement{Token: p.cur}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Discriminant = p.parseExpression(precComma)
	if !p.expect(token.RPAREN) {
		return stmt
	}
	if !p.expect(token.LBRACE) {
		return stmt
	}
	p.nextToken()
	p.switchDepth++
	seenDefault := false
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		var c ast.SwitchCase
		if p.curIs(token.CASE) {
			p.nextToken()
			c.Test = p.parseExpression(precComma)
			p.expect(token.COLON)
		} else if p.curIs(token.DEFAULT) {
			if seenDefault {
				p.addError("SyntaxError: more than one default clause in switch statement")
			}
			seenDefault = true
			p.expect(token.COLON)
		} else {
			p.addError("unexpected token %s in switch statement", p.cur.Type)
			break
		}
		p.nextToken()
		for !p.curIs(token.CASE) && !p.curIs(token.DEFAULT) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			if s := p.parseStatement(); s != nil {
				c.Consequent = append(c.Consequent, s)
			}
			p.nextToken()
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.switchDepth--
	return stmt
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	stmt := &ast.ThrowStatement{Token: p.cur}
	if p.peek.PrecededByNewline {
		p.addError("SyntaxError: illegal newline after throw")
	}
	p.nextToken()
	stmt.Argument = p.parseExpression(precComma)
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	stmt := &ast.TryStatement{Token: p.cur}
	if !p.expect(token.LBRACE) {
		return stmt
	}
	stmt.Block = p.parseBlockStatement()
	if p.peekIs(token.CATCH) {
		p.nextToken()
		if !p.expect(token.LPAREN) {
			return stmt
		}
		p.expect(token.IDENT)
		param := &ast.Identifier{Token: p.cur, Name: p.cur.Literal}
		if p.curStrict() && (param.Name == "eval" || param.Name == "arguments") {
			p.addError("SyntaxError: catch variable may not be eval or arguments in strict mode")
		}
		if !p.expect(token.RPAREN) {
			return stmt
		}
		if !p.expect(token.LBRACE) {
			return stmt
		}
		body := p.parseBlockStatement()
		stmt.Catch = &ast.CatchClause{Param: param, Body: body}
	}
	if p.peekIs(token.FINALLY) {
		p.nextToken()
		if !p.expect(token.LBRACE) {
			return stmt
		}
		stmt.Finally = p.parseBlockStatement()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.addError("SyntaxError: missing catch or finally after try")
	}
	return stmt
}

func (p *Parser) parseLabelledStatement() *ast.LabelledStatement {
	label := p.cur.Literal
	stmt := &ast.LabelledStatement{Token: p.cur, Label: label}
	p.nextToken() // consume ':'
	p.nextToken()
	p.labels[label] = true
	stmt.Body = p.parseStatement()
	delete(p.labels, label)
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.cur}
	stmt.Expression = p.parseExpression(precComma)
	p.consumeSemicolon()
	return stmt
}

// parseFunctionDeclaration parses `function name(params) { body }` as a
// Statement; function expressions are parsed via parseFunctionLiteral in
// expressions.go.
func (p *Parser) parseFunctionDeclaration() *ast.FunctionLiteral {
	fn := p.parseFunctionLiteral()
	fn.IsDeclaration = true
	if fn.Name == "" {
		p.addErrorAt(fn.Pos(), "SyntaxError: function declaration requires a name")
	}
	return fn
}
