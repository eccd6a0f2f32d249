package value

import (
	"math"
	"testing"

	"github.com/mras0/mjs-sub001/internal/jsstring"
)

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		v    Value
		kind Kind
	}{
		{Undefined, KindUndefined},
		{Null, KindNull},
		{Bool(true), KindBoolean},
		{Number(1), KindNumber},
		{StrFromGo("x"), KindString},
	}
	for _, tt := range tests {
		if tt.v.Kind() != tt.kind {
			t.Errorf("expected kind %v, got %v", tt.kind, tt.v.Kind())
		}
	}
}

func TestToBoolean(t *testing.T) {
	tests := []struct {
		v        Value
		expected bool
	}{
		{Undefined, false},
		{Null, false},
		{Bool(false), false},
		{Bool(true), true},
		{Number(0), false},
		{Number(math.NaN()), false},
		{Number(1), true},
		{StrFromGo(""), false},
		{StrFromGo("a"), true},
	}
	for _, tt := range tests {
		if got := ToBoolean(tt.v); got != tt.expected {
			t.Errorf("ToBoolean(%v) = %v, want %v", tt.v, got, tt.expected)
		}
	}
}

func TestStringToNumber(t *testing.T) {
	tests := []struct {
		s        string
		expected float64
	}{
		{"", 0},
		{"   ", 0},
		{"123", 123},
		{"  123  ", 123},
		{"0x1F", 31},
		{"3.14", 3.14},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"abc", math.NaN()},
	}
	for _, tt := range tests {
		got := StringToNumber(jsstring.FromGo(tt.s))
		if math.IsNaN(tt.expected) {
			if !math.IsNaN(got) {
				t.Errorf("StringToNumber(%q) = %v, want NaN", tt.s, got)
			}
			continue
		}
		if got != tt.expected {
			t.Errorf("StringToNumber(%q) = %v, want %v", tt.s, got, tt.expected)
		}
	}
}

func TestNumberToString(t *testing.T) {
	tests := []struct {
		n        float64
		expected string
	}{
		{0, "0"},
		{-0, "0"},
		{1, "1"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{1.5, "1.5"},
	}
	for _, tt := range tests {
		if got := NumberToString(tt.n); got != tt.expected {
			t.Errorf("NumberToString(%v) = %q, want %q", tt.n, got, tt.expected)
		}
	}
}

func TestNumberToInt32AndUint32(t *testing.T) {
	if got := NumberToInt32(4294967296); got != 0 {
		t.Errorf("NumberToInt32(2^32) = %d, want 0", got)
	}
	if got := NumberToInt32(4294967295); got != -1 {
		t.Errorf("NumberToInt32(2^32-1) = %d, want -1", got)
	}
	if got := NumberToUint32(-1); got != 4294967295 {
		t.Errorf("NumberToUint32(-1) = %d, want 4294967295", got)
	}
}

func TestStrictEquals(t *testing.T) {
	if !StrictEquals(Number(1), Number(1)) {
		t.Error("1 === 1 should be true")
	}
	if StrictEquals(Number(math.NaN()), Number(math.NaN())) {
		t.Error("NaN === NaN should be false")
	}
	if !StrictEquals(StrFromGo("a"), StrFromGo("a")) {
		t.Error(`"a" === "a" should be true`)
	}
	if StrictEquals(Undefined, Null) {
		t.Error("undefined === null should be false")
	}
}

func TestSameValue(t *testing.T) {
	if !SameValue(Number(math.NaN()), Number(math.NaN())) {
		t.Error("SameValue(NaN, NaN) should be true")
	}
	if SameValue(Number(0), Number(math.Copysign(0, -1))) {
		t.Error("SameValue(+0, -0) should be false")
	}
}
