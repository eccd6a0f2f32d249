package parser

import (
	"testing"

	"github.com/mras0/mjs-sub001/internal/ast"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(input)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	return prog
}

func TestVarStatement(t *testing.T) {
	prog := parseProgram(t, "var x = 5, y = 10;")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	stmt, ok := prog.Statements[0].(*ast.VarStatement)
	if !ok {
		t.Fatalf("expected *ast.VarStatement, got %T", prog.Statements[0])
	}
	if len(stmt.Declarators) != 2 {
		t.Fatalf("expected 2 declarators, got %d", len(stmt.Declarators))
	}
}

func TestExpressionStatementPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3));"},
		{"(1 + 2) * 3;", "((1 + 2) * 3);"},
		{"a = b = c;", "(a = (b = c));"},
		{"!a;", "(!a);"},
		{"a && b || c;", "((a && b) || c);"},
		{"typeof a;", "(typeof a);"},
		{"a ? b : c;", "(a ? b : c);"},
	}
	for _, tt := range tests {
		prog := parseProgram(t, tt.input)
		got := prog.Statements[0].String()
		if got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestFunctionLiteral(t *testing.T) {
	prog := parseProgram(t, "function add(a, b) { return a + b; }")
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	fn, ok := prog.Statements[0].(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", prog.Statements[0])
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
}

func TestIfElseStatement(t *testing.T) {
	prog := parseProgram(t, "if (x) { y = 1; } else { y = 2; }")
	stmt, ok := prog.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected *ast.IfStatement, got %T", prog.Statements[0])
	}
	if stmt.Alternate == nil {
		t.Fatal("expected an alternate branch")
	}
}

func TestForLoop(t *testing.T) {
	prog := parseProgram(t, "for (var i = 0; i < 10; i = i + 1) { x = i; }")
	if _, ok := prog.Statements[0].(*ast.ForStatement); !ok {
		t.Fatalf("expected *ast.ForStatement, got %T", prog.Statements[0])
	}
}

func TestObjectAndArrayLiterals(t *testing.T) {
	prog := parseProgram(t, `var o = {a: 1, "b": 2}; var arr = [1, 2, 3];`)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
}

func TestSyntaxErrorReported(t *testing.T) {
	p := New("var = ;")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected at least one syntax error")
	}
}

func TestAutomaticSemicolonInsertion(t *testing.T) {
	input := "var x = 1\nvar y = 2\n"
	prog := parseProgram(t, input)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected ASI to split into 2 statements, got %d", len(prog.Statements))
	}
}
