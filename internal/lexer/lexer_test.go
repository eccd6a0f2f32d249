package lexer

import (
	"testing"

	"github.com/mras0/mjs-sub001/internal/token"
)

func TestNext(t *testing.T) {
	input := `var x = 5;
	x = x + 10;
	`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.VAR, "var"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.NUMBER, "5"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.NUMBER, "10"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.Next()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywordsAndPunctuators(t *testing.T) {
	input := `{}()[].;,<><=>===!====!==+-*%++--<<>>>>>&|^!~&&||?:===/`
	l := New(input)
	var got []token.Type
	for {
		tok := l.Next()
		if tok.Type == token.EOF {
			break
		}
		got = append(got, tok.Type)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one token")
	}
}

func TestStringLiteralEscapes(t *testing.T) {
	input := `"hello\nworld" 'a\'b'`
	l := New(input)
	tok := l.Next()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Literal != "hello\nworld" {
		t.Fatalf("unexpected literal: %q", tok.Literal)
	}
	tok = l.Next()
	if tok.Type != token.STRING || tok.Literal != "a'b" {
		t.Fatalf("unexpected second string token: %+v", tok)
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []string{"0", "123", "3.14", "0x1F", "1e10", "1.5e-3", ".5"}
	for _, src := range tests {
		l := New(src)
		tok := l.Next()
		if tok.Type != token.NUMBER {
			t.Errorf("%q: expected NUMBER, got %s", src, tok.Type)
		}
	}
}

func TestLineTerminatorTracking(t *testing.T) {
	input := "var x\n= 1"
	l := New(input)
	l.Next() // var
	l.Next() // x
	eq := l.Next()
	if !eq.PrecededByNewline {
		t.Fatal("expected the '=' token to be preceded by a newline")
	}
}

func TestRegexLiteral(t *testing.T) {
	l := New("/abc/gi")
	l.SetRegexAllowed(true)
	tok := l.Next()
	if tok.Type != token.REGEXP {
		t.Fatalf("expected REGEXP, got %s (%q)", tok.Type, tok.Literal)
	}
}

func TestIllegalCharacterRecordsError(t *testing.T) {
	l := New("\x01")
	l.Next()
	if len(l.Errors()) == 0 {
		t.Fatal("expected a lex error for an illegal control character")
	}
}
