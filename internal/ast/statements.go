package ast

import (
	"bytes"
	"strings"

	"github.com/mras0/mjs-sub001/internal/token"
)

type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (b *BlockStatement) statementNode()      {}
func (b *BlockStatement) TokenLiteral() string { return b.Token.Literal }
func (b *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range b.Statements {
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}
func (b *BlockStatement) Pos() token.Position { return b.Token.Pos }

// VarDeclarator is one `name` or `name = init` clause of a VarStatement.
type VarDeclarator struct {
	Name *Identifier
	Init Expression // nil if uninitialized
}

type VarStatement struct {
	Token       token.Token
	Declarators []VarDeclarator
}

func (v *VarStatement) statementNode()      {}
func (v *VarStatement) TokenLiteral() string { return v.Token.Literal }
func (v *VarStatement) String() string {
	parts := make([]string, len(v.Declarators))
	for i, d := range v.Declarators {
		if d.Init != nil {
			parts[i] = d.Name.String() + " = " + d.Init.String()
		} else {
			parts[i] = d.Name.String()
		}
	}
	return "var " + strings.Join(parts, ", ") + ";"
}
func (v *VarStatement) Pos() token.Position { return v.Token.Pos }

type EmptyStatement struct {
	Token token.Token
}

func (e *EmptyStatement) statementNode()      {}
func (e *EmptyStatement) TokenLiteral() string { return e.Token.Literal }
func (e *EmptyStatement) String() string       { return ";" }
func (e *EmptyStatement) Pos() token.Position  { return e.Token.Pos }

// ExpressionStatement wraps an expression evaluated for effect. Directive
// is set when this statement is a directive-prologue string-literal
// expression statement (used by the parser to detect "use strict").
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
	Directive  string // non-empty if this is a directive prologue entry
}

func (e *ExpressionStatement) statementNode()      {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Token.Literal }
func (e *ExpressionStatement) String() string {
	if e.Expression != nil {
		return e.Expression.String() + ";"
	}
	return ";"
}
func (e *ExpressionStatement) Pos() token.Position { return e.Token.Pos }

type IfStatement struct {
	Token       token.Token
	Test        Expression
	Consequent  Statement
	Alternate   Statement // nil if no else-clause
}

func (i *IfStatement) statementNode()      {}
func (i *IfStatement) TokenLiteral() string { return i.Token.Literal }
func (i *IfStatement) String() string {
	s := "if (" + i.Test.String() + ") " + i.Consequent.String()
	if i.Alternate != nil {
		s += " else " + i.Alternate.String()
	}
	return s
}
func (i *IfStatement) Pos() token.Position { return i.Token.Pos }

type DoWhileStatement struct {
	Token token.Token
	Body  Statement
	Test  Expression
}

func (d *DoWhileStatement) statementNode()      {}
func (d *DoWhileStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DoWhileStatement) String() string {
	return "do " + d.Body.String() + " while (" + d.Test.String() + ");"
}
func (d *DoWhileStatement) Pos() token.Position { return d.Token.Pos }

type WhileStatement struct {
	Token token.Token
	Test  Expression
	Body  Statement
}

func (w *WhileStatement) statementNode()      {}
func (w *WhileStatement) TokenLiteral() string { return w.Token.Literal }
func (w *WhileStatement) String() string {
	return "while (" + w.Test.String() + ") " + w.Body.String()
}
func (w *WhileStatement) Pos() token.Position { return w.Token.Pos }

// ForStatement is the C-style `for (Init; Test; Update) Body`. Init may be
// a *VarStatement or an Expression (wrapped, never both); all three clauses
// may be nil.
type ForStatement struct {
	Token  token.Token
	Init   Node // *VarStatement or Expression or nil
	Test   Expression
	Update Expression
	Body   Statement
}

func (f *ForStatement) statementNode()      {}
func (f *ForStatement) TokenLiteral() string { return f.Token.Literal }
func (f *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if f.Init != nil {
		out.WriteString(f.Init.String())
	}
	out.WriteString("; ")
	if f.Test != nil {
		out.WriteString(f.Test.String())
	}
	out.WriteString("; ")
	if f.Update != nil {
		out.WriteString(f.Update.String())
	}
	out.WriteString(") ")
	out.WriteString(f.Body.String())
	return out.String()
}
func (f *ForStatement) Pos() token.Position { return f.Token.Pos }

// ForInStatement is `for (Left in Right) Body`; Left is either an
// Identifier (var x in ... or bare x in ...) with DeclaresVar indicating
// which, or a MemberExpression assignment target.
type ForInStatement struct {
	Token       token.Token
	Left        Expression
	DeclaresVar bool
	Right       Expression
	Body        Statement
}

func (f *ForInStatement) statementNode()      {}
func (f *ForInStatement) TokenLiteral() string { return f.Token.Literal }
func (f *ForInStatement) String() string {
	prefix := ""
	if f.DeclaresVar {
		prefix = "var "
	}
	return "for (" + prefix + f.Left.String() + " in " + f.Right.String() + ") " + f.Body.String()
}
func (f *ForInStatement) Pos() token.Position { return f.Token.Pos }

type ContinueStatement struct {
	Token token.Token
	Label string
}

func (c *ContinueStatement) statementNode()      {}
func (c *ContinueStatement) TokenLiteral() string { return c.Token.Literal }
func (c *ContinueStatement) String() string {
	if c.Label != "" {
		return "continue " + c.Label + ";"
	}
	return "continue;"
}
func (c *ContinueStatement) Pos() token.Position { return c.Token.Pos }

type BreakStatement struct {
	Token token.Token
	Label string
}

func (b *BreakStatement) statementNode()      {}
func (b *BreakStatement) TokenLiteral() string { return b.Token.Literal }
func (b *BreakStatement) String() string {
	if b.Label != "" {
		return "break " + b.Label + ";"
	}
	return "break;"
}
func (b *BreakStatement) Pos() token.Position { return b.Token.Pos }

type ReturnStatement struct {
	Token    token.Token
	Argument Expression // nil for bare `return;`
}

func (r *ReturnStatement) statementNode()      {}
func (r *ReturnStatement) TokenLiteral() string { return r.Token.Literal }
func (r *ReturnStatement) String() string {
	if r.Argument != nil {
		return "return " + r.Argument.String() + ";"
	}
	return "return;"
}
func (r *ReturnStatement) Pos() token.Position { return r.Token.Pos }

// WithStatement is always a SyntaxError under strict mode; the parser
// rejects it there. Non-strict, it wraps Body's scope with an object
// environment record over Object.
type WithStatement struct {
	Token  token.Token
	Object Expression
	Body   Statement
}

func (w *WithStatement) statementNode()      {}
func (w *WithStatement) TokenLiteral() string { return w.Token.Literal }
func (w *WithStatement) String() string {
	return "with (" + w.Object.String() + ") " + w.Body.String()
}
func (w *WithStatement) Pos() token.Position { return w.Token.Pos }

type SwitchCase struct {
	Test       Expression // nil for `default:`
	Consequent []Statement
}

type SwitchStatement struct {
	Token        token.Token
	Discriminant Expression
	Cases        []SwitchCase
}

func (s *SwitchStatement) statementNode()      {}
func (s *SwitchStatement) TokenLiteral() string { return s.Token.Literal }
func (s *SwitchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("switch (" + s.Discriminant.String() + ") { ")
	for _, c := range s.Cases {
		if c.Test != nil {
			out.WriteString("case " + c.Test.String() + ": ")
		} else {
			out.WriteString("default: ")
		}
		for _, st := range c.Consequent {
			out.WriteString(st.String())
		}
	}
	out.WriteString(" }")
	return out.String()
}
func (s *SwitchStatement) Pos() token.Position { return s.Token.Pos }

type LabelledStatement struct {
	Token token.Token
	Label string
	Body  Statement
}

func (l *LabelledStatement) statementNode()      {}
func (l *LabelledStatement) TokenLiteral() string { return l.Token.Literal }
func (l *LabelledStatement) String() string       { return l.Label + ": " + l.Body.String() }
func (l *LabelledStatement) Pos() token.Position   { return l.Token.Pos }

type ThrowStatement struct {
	Token    token.Token
	Argument Expression
}

func (t *ThrowStatement) statementNode()      {}
func (t *ThrowStatement) TokenLiteral() string { return t.Token.Literal }
func (t *ThrowStatement) String() string       { return "throw " + t.Argument.String() + ";" }
func (t *ThrowStatement) Pos() token.Position  { return t.Token.Pos }

// CatchClause binds Param (may be nil only if there is no catch, which the
// parser represents as TryStatement.Catch == nil instead) to the thrown
// value for the duration of Body.
type CatchClause struct {
	Param *Identifier
	Body  *BlockStatement
}

type TryStatement struct {
	Token   token.Token
	Block   *BlockStatement
	Catch   *CatchClause // nil if no catch clause
	Finally *BlockStatement // nil if no finally clause
}

func (t *TryStatement) statementNode()      {}
func (t *TryStatement) TokenLiteral() string { return t.Token.Literal }
func (t *TryStatement) String() string {
	s := "try " + t.Block.String()
	if t.Catch != nil {
		s += " catch (" + t.Catch.Param.String() + ") " + t.Catch.Body.String()
	}
	if t.Finally != nil {
		s += " finally " + t.Finally.String()
	}
	return s
}
func (t *TryStatement) Pos() token.Position { return t.Token.Pos }

type DebuggerStatement struct {
	Token token.Token
}

func (d *DebuggerStatement) statementNode()      {}
func (d *DebuggerStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DebuggerStatement) String() string       { return "debugger;" }
func (d *DebuggerStatement) Pos() token.Position  { return d.Token.Pos }
