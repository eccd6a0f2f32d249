package builtins_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mras0/mjs-sub001/pkg/es5"
)

func evalString(t *testing.T, src string) string {
	t.Helper()
	prog, err := es5.Parse("<test>", src, es5.Es5)
	require.NoError(t, err, "parse error for %q", src)
	h := es5.NewHeap(0)
	it := es5.NewInterpreter(h, es5.Es5)
	result, err := it.Eval(prog)
	require.NoError(t, err, "eval error for %q", src)
	s, err := it.ToString(result)
	require.NoError(t, err, "ToString error for %q", src)
	return s
}

func TestGlobalFunctions(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{`parseInt("42")`, "42"},
		{`parseInt("  0x1F")`, "31"},
		{`parseInt("10", 2)`, "2"},
		{`parseInt("abc")`, "NaN"},
		{`parseFloat("3.14abc")`, "3.14"},
		{`parseFloat("Infinity")`, "Infinity"},
		{`isNaN(NaN)`, "true"},
		{`isNaN(1)`, "false"},
		{`isFinite(1)`, "true"},
		{`isFinite(Infinity)`, "false"},
		{`typeof undefined`, "undefined"},
		{`typeof this`, "object"},
		{`encodeURIComponent("a b")`, "a%20b"},
		{`decodeURIComponent("a%20b")`, "a b"},
		{`escape("a b")`, "a%20b"},
		{`unescape("a%20b")`, "a b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evalString(t, tt.src+";"), tt.src)
	}
}

func TestEvalBuiltinEvaluatesSource(t *testing.T) {
	assert.Equal(t, "3", evalString(t, `eval("1 + 2");`))
}

func TestDateConstructionAndGetters(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{`new Date(2020, 0, 1).getFullYear()`, "2020"},
		{`new Date(2020, 0, 1).getMonth()`, "0"},
		{`new Date(2020, 0, 1).getDate()`, "1"},
		{`new Date(0).getTime()`, "0"},
		{`typeof Date.now()`, "number"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evalString(t, tt.src+";"), tt.src)
	}
}

func TestDateSettersMutateTimeValue(t *testing.T) {
	got := evalString(t, `
		(function() {
			var d = new Date(2020, 0, 1);
			d.setFullYear(2021);
			return d.getFullYear();
		})();
	`)
	assert.Equal(t, "2021", got, "expected setFullYear to update the year")
}

func TestArrayBuiltins(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{`[1, 2, 3].length`, "3"},
		{`[1, 2, 3].join("-")`, "1-2-3"},
		{`[1, 2, 3].reverse().join(",")`, "3,2,1"},
		{`[1, [2, 3]].length`, "2"},
		{`[3, 1, 2].sort().join(",")`, "1,2,3"},
		{`[1, 2, 3].indexOf(2)`, "1"},
		{`[1, 2, 3].some(function(x){ return x > 2; })`, "true"},
		{`[1, 2, 3].every(function(x){ return x > 0; })`, "true"},
		{`[1, 2, 3].map(function(x){ return x * 2; }).join(",")`, "2,4,6"},
		{`[1, 2, 3].filter(function(x){ return x % 2 === 0; }).join(",")`, "2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evalString(t, tt.src+";"), tt.src)
	}
}

func TestStringBuiltins(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{`"hello".toUpperCase()`, "HELLO"},
		{`"HELLO".toLowerCase()`, "hello"},
		{`"  hi  ".replace(/\s+/g, "")`, "hi"},
		{`"a,b,c".split(",").join("-")`, "a-b-c"},
		{`"hello".charAt(1)`, "e"},
		{`"hello".indexOf("l")`, "2"},
		{`"hello".substring(1, 3)`, "el"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evalString(t, tt.src+";"), tt.src)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	got := evalString(t, `JSON.stringify(JSON.parse('{"a":1,"b":[1,2,3]}'));`)
	assert.Equal(t, `{"a":1,"b":[1,2,3]}`, got)
}

func TestMathBuiltins(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{`Math.max(1, 2, 3)`, "3"},
		{`Math.min(1, 2, 3)`, "1"},
		{`Math.abs(-5)`, "5"},
		{`Math.floor(1.9)`, "1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evalString(t, tt.src+";"), tt.src)
	}
}

func TestThrownTypeErrorHasNameAndConstructor(t *testing.T) {
	got := evalString(t, `
		(function() {
			try {
				null.x;
			} catch (e) {
				return e.name + ": " + (e instanceof TypeError);
			}
		})();
	`)
	assert.Equal(t, "TypeError: true", got)
}

func TestRegExpExec(t *testing.T) {
	got := evalString(t, `/(\d+)-(\d+)/.exec("12-34")[1];`)
	assert.Equal(t, "12", got)
}
