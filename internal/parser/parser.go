// Package parser implements a recursive-descent, Pratt-style parser that
// turns a token stream from internal/lexer into an internal/ast tree.
package parser

import (
	"fmt"

	"github.com/mras0/mjs-sub001/internal/ast"
	"github.com/mras0/mjs-sub001/internal/lexer"
	"github.com/mras0/mjs-sub001/internal/token"
)

// SyntaxError is a parse-time error with source position, matching the
// kind of error spec.md §4.K says the parser raises before any evaluation.
type SyntaxError struct {
	Message string
	Pos     token.Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: %s at %s", e.Message, e.Pos)
}

// Operator precedence, low to high.
const (
	_ int = iota
	precComma
	precAssignment
	precConditional
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precCall
	precMember
)

var precedences = map[token.Type]int{
	token.COMMA:      precComma,
	token.ASSIGN:     precAssignment,
	token.PLUSASSIGN:  precAssignment,
	token.MINUSASSIGN: precAssignment,
	token.STARASSIGN:  precAssignment,
	token.SLASHASSIGN: precAssignment,
	token.PERCENTASSIGN: precAssignment,
	token.SHLASSIGN:   precAssignment,
	token.SHRASSIGN:   precAssignment,
	token.USHRASSIGN:  precAssignment,
	token.ANDASSIGN:   precAssignment,
	token.ORASSIGN:    precAssignment,
	token.XORASSIGN:   precAssignment,
	token.QUESTION:    precConditional,
	token.LOGOR:       precLogicalOr,
	token.LOGAND:      precLogicalAnd,
	token.OR:          precBitOr,
	token.XOR:         precBitXor,
	token.AND:         precBitAnd,
	token.EQ:          precEquality,
	token.NEQ:         precEquality,
	token.STRICTEQ:    precEquality,
	token.STRICTNEQ:   precEquality,
	token.LT:          precRelational,
	token.GT:          precRelational,
	token.LE:          precRelational,
	token.GE:          precRelational,
	token.IN:          precRelational,
	token.INSTANCEOF:  precRelational,
	token.SHL:         precShift,
	token.SHR:         precShift,
	token.USHR:        precShift,
	token.PLUS:        precAdditive,
	token.MINUS:       precAdditive,
	token.STAR:        precMultiplicative,
	token.SLASH:       precMultiplicative,
	token.PERCENT:     precMultiplicative,
	token.LPAREN:      precCall,
	token.LBRACKET:    precMember,
	token.DOT:         precMember,
}

var assignmentOps = map[token.Type]bool{
	token.ASSIGN: true, token.PLUSASSIGN: true, token.MINUSASSIGN: true,
	token.STARASSIGN: true, token.SLASHASSIGN: true, token.PERCENTASSIGN: true,
	token.SHLASSIGN: true, token.SHRASSIGN: true, token.USHRASSIGN: true,
	token.ANDASSIGN: true, token.ORASSIGN: true, token.XORASSIGN: true,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser is a recursive-descent ES5 parser. Construct with New and call
// ParseProgram once.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors []*SyntaxError

	strict []bool // stack of enclosing strict-mode flags (program/function)

	// inFunctionBody > 0 inside a function body, used to validate `return`.
	inFunctionBody int
	// loopDepth / switchDepth count the loops and switches enclosing the
	// current point of the current function body; break/continue placement
	// is not checked against them.
	loopDepth   int
	switchDepth int
	labels      map[string]bool

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a Parser over source text.
func New(source string) *Parser {
	p := &Parser{
		l:      lexer.New(source),
		strict: []bool{false},
		labels: map[string]bool{},
	}
	p.registerExpressionParsers()
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) curStrict() bool { return p.strict[len(p.strict)-1] }

func (p *Parser) pushStrict(strict bool) {
	p.strict = append(p.strict, strict || p.curStrict())
}

func (p *Parser) popStrict() { p.strict = p.strict[:len(p.strict)-1] }

func (p *Parser) nextToken() {
	p.cur = p.peek
	// Decide whether the *next* token after p.peek may start a regex
	// literal, based on the token we are about to make current (ES5's
	// regex-vs-division grammar position: a regex cannot follow an
	// identifier, literal, `)`, or `]`).
	p.l.SetRegexAllowed(regexAllowedAfter(p.cur.Type))
	p.peek = p.l.Next()
}

func regexAllowedAfter(t token.Type) bool {
	switch t {
	case token.IDENT, token.NUMBER, token.STRING, token.REGEXP,
		token.RPAREN, token.RBRACKET, token.THIS, token.TRUE, token.FALSE, token.NULL,
		token.PLUSPLUS, token.MINUSMINUS:
		return false
	}
	return true
}

func (p *Parser) addError(format string, args ...interface{}) {
	p.errors = append(p.errors, &SyntaxError{Message: fmt.Sprintf(format, args...), Pos: p.cur.Pos})
}

func (p *Parser) addErrorAt(pos token.Position, format string, args ...interface{}) {
	p.errors = append(p.errors, &SyntaxError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

// Errors returns all accumulated syntax errors (parser plus lexer).
func (p *Parser) Errors() []*SyntaxError {
	errs := append([]*SyntaxError{}, p.errors...)
	for _, le := range p.l.Errors() {
		errs = append(errs, &SyntaxError{Message: le.Message, Pos: le.Pos})
	}
	return errs
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expect(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.addErrorAt(p.peek.Pos, "unexpected token %s, expected %s", p.peek.Type, t)
	return false
}

func peekPrecedence(p *Parser) int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return 0
}

func curPrecedence(p *Parser) int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return 0
}

// ParseProgram parses the full token stream into a Program, detecting the
// directive prologue's "use strict" per spec.md §4.F.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	prog.Statements, prog.Strict = p.parseStatementListWithDirectives(token.EOF)
	p.checkLabelConsistency()
	return prog
}

// parseStatementListWithDirectives parses statements until `end`, applying
// the directive-prologue scan (a leading run of string-literal expression
// statements) to detect "use strict" and switch strict mode for the
// remainder of this statement list.
func (p *Parser) parseStatementListWithDirectives(end token.Type) ([]ast.Statement, bool) {
	var stmts []ast.Statement
	inPrologue := true
	top := len(p.strict) - 1
	p.l.SetStrict(p.strict[top])
	for !p.curIs(end) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			if inPrologue {
				if es, ok := stmt.(*ast.ExpressionStatement); ok {
					if sl, ok := es.Expression.(*ast.StringLiteral); ok {
						es.Directive = sl.Value
						if sl.Value == "use strict" && !sl.HasEscapes {
							p.strict[top] = true
							p.l.SetStrict(true)
						}
					} else {
						inPrologue = false
					}
				} else {
					inPrologue = false
				}
			}
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	return stmts, p.strict[top]
}

func (p *Parser) checkLabelConsistency() {}
