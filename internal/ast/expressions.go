package ast

import (
	"strings"

	"github.com/mras0/mjs-sub001/internal/token"
)

// MemberExpression covers both a.b (Computed=false, Property is an
// Identifier) and a[b] (Computed=true, Property is an arbitrary Expression).
type MemberExpression struct {
	Token    token.Token
	Object   Expression
	Property Expression
	Computed bool
}

func (m *MemberExpression) expressionNode()      {}
func (m *MemberExpression) TokenLiteral() string { return m.Token.Literal }
func (m *MemberExpression) String() string {
	if m.Computed {
		return m.Object.String() + "[" + m.Property.String() + "]"
	}
	return m.Object.String() + "." + m.Property.String()
}
func (m *MemberExpression) Pos() token.Position { return m.Token.Pos }

// CallExpression is both a plain call (Callee evaluates, then is invoked)
// and, when Callee is itself a MemberExpression, a method call (the
// evaluator special-cases this to set up `this`).
type CallExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
}

func (c *CallExpression) expressionNode()      {}
func (c *CallExpression) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpression) String() string {
	parts := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		parts[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (c *CallExpression) Pos() token.Position { return c.Token.Pos }

// NewExpression is `new Callee(Arguments...)`.
type NewExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
}

func (n *NewExpression) expressionNode()      {}
func (n *NewExpression) TokenLiteral() string { return n.Token.Literal }
func (n *NewExpression) String() string {
	parts := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		parts[i] = a.String()
	}
	return "new " + n.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (n *NewExpression) Pos() token.Position { return n.Token.Pos }

// UnaryExpression covers prefix operators: +, -, !, ~, typeof, void, delete,
// and prefix ++/--.
type UnaryExpression struct {
	Token    token.Token
	Operator string
	Operand  Expression
	Prefix   bool // distinguishes prefix ++/-- from PostfixExpression (always true here)
}

func (u *UnaryExpression) expressionNode()      {}
func (u *UnaryExpression) TokenLiteral() string { return u.Token.Literal }
func (u *UnaryExpression) String() string       { return "(" + u.Operator + u.Operand.String() + ")" }
func (u *UnaryExpression) Pos() token.Position  { return u.Token.Pos }

// PostfixExpression covers operand++ and operand--.
type PostfixExpression struct {
	Token    token.Token
	Operator string
	Operand  Expression
}

func (p *PostfixExpression) expressionNode()      {}
func (p *PostfixExpression) TokenLiteral() string { return p.Token.Literal }
func (p *PostfixExpression) String() string       { return "(" + p.Operand.String() + p.Operator + ")" }
func (p *PostfixExpression) Pos() token.Position  { return p.Token.Pos }

// BinaryExpression covers arithmetic, relational, equality, bitwise,
// logical (&&, ||), `in`, and `instanceof` operators.
type BinaryExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryExpression) expressionNode()      {}
func (b *BinaryExpression) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}
func (b *BinaryExpression) Pos() token.Position { return b.Token.Pos }

// ConditionalExpression is the ternary `test ? consequent : alternate`.
type ConditionalExpression struct {
	Token       token.Token
	Test        Expression
	Consequent  Expression
	Alternate   Expression
}

func (c *ConditionalExpression) expressionNode()      {}
func (c *ConditionalExpression) TokenLiteral() string { return c.Token.Literal }
func (c *ConditionalExpression) String() string {
	return "(" + c.Test.String() + " ? " + c.Consequent.String() + " : " + c.Alternate.String() + ")"
}
func (c *ConditionalExpression) Pos() token.Position { return c.Token.Pos }

// AssignmentExpression covers `=` and the compound assignment operators
// (+=, -=, etc). Target must be a reference-producing expression
// (Identifier or MemberExpression); the parser enforces this.
type AssignmentExpression struct {
	Token    token.Token
	Operator string
	Target   Expression
	Value    Expression
}

func (a *AssignmentExpression) expressionNode()      {}
func (a *AssignmentExpression) TokenLiteral() string { return a.Token.Literal }
func (a *AssignmentExpression) String() string {
	return "(" + a.Target.String() + " " + a.Operator + " " + a.Value.String() + ")"
}
func (a *AssignmentExpression) Pos() token.Position { return a.Token.Pos }

// SequenceExpression is the comma operator: evaluates each in order,
// yielding the last.
type SequenceExpression struct {
	Token       token.Token
	Expressions []Expression
}

func (s *SequenceExpression) expressionNode()      {}
func (s *SequenceExpression) TokenLiteral() string { return s.Token.Literal }
func (s *SequenceExpression) String() string {
	parts := make([]string, len(s.Expressions))
	for i, e := range s.Expressions {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (s *SequenceExpression) Pos() token.Position { return s.Token.Pos }
