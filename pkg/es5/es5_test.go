package es5

import (
	"strings"
	"testing"
)

func run(t *testing.T, src string) (Value, error) {
	t.Helper()
	prog, err := Parse("<test>", src, Es5)
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	h := NewHeap(0)
	it := NewInterpreter(h, Es5)
	return it.Eval(prog)
}

func TestEvalArithmetic(t *testing.T) {
	prog, err := Parse("<test>", "(1 + 2) * 3;", Es5)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	h := NewHeap(0)
	it := NewInterpreter(h, Es5)
	result, err := it.Eval(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := it.ToString(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "9" {
		t.Fatalf("expected 9, got %q", s)
	}
}

func TestEvalConformanceStyleBooleanResult(t *testing.T) {
	v, err := run(t, `(function(){ return 1 + 1 === 2; })();`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsBoolean() || !v.BooleanValue() {
		t.Fatalf("expected boolean true, got %+v", v)
	}
}

func TestEvalStringConcatenation(t *testing.T) {
	prog, err := Parse("<test>", `"foo" + "bar";`, Es5)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	h := NewHeap(0)
	it := NewInterpreter(h, Es5)
	result, err := it.Eval(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := it.ToString(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "foobar" {
		t.Fatalf("expected %q, got %q", "foobar", s)
	}
}

func TestUncaughtThrowSurfacesThrownValue(t *testing.T) {
	prog, err := Parse("<test>", `throw new TypeError("boom");`, Es5)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	h := NewHeap(0)
	it := NewInterpreter(h, Es5)
	_, err = it.Eval(prog)
	if err == nil {
		t.Fatal("expected the uncaught throw to surface as an error")
	}
	thrown, ok := err.(*ThrownValue)
	if !ok {
		t.Fatalf("expected *ThrownValue, got %T", err)
	}
	s, serr := it.ToString(thrown.Value())
	if serr != nil {
		t.Fatalf("unexpected error stringifying thrown value: %v", serr)
	}
	if !strings.Contains(s, "boom") {
		t.Fatalf("expected thrown message to mention boom, got %q", s)
	}
}

func TestParseErrorReturnsAllSyntaxErrors(t *testing.T) {
	_, err := Parse("<test>", "var = ;", Es5)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if len(perr.Errors) == 0 {
		t.Fatal("expected at least one underlying syntax error")
	}
}

func TestHeapUsePercentageAfterAllocations(t *testing.T) {
	h := NewHeap(0)
	it := NewInterpreter(h, Es5)
	prog, err := Parse("<test>", "var o = {}; var arr = [1,2,3];", Es5)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := it.Eval(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.UsePercentage() < 0 {
		t.Fatal("use percentage should never be negative")
	}
	h.GarbageCollect()
}

func TestIndependentInterpretersDoNotShareState(t *testing.T) {
	h1 := NewHeap(0)
	it1 := NewInterpreter(h1, Es5)
	prog1, _ := Parse("<test>", "globalValue = 1;", Es5)
	if _, err := it1.Eval(prog1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h2 := NewHeap(0)
	it2 := NewInterpreter(h2, Es5)
	prog2, _ := Parse("<test>", "typeof globalValue;", Es5)
	result, err := it2.Eval(prog2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, _ := it2.ToString(result)
	if s != "undefined" {
		t.Fatalf("expected a second interpreter's global scope to be independent, got %q", s)
	}
}
