package parser

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestProgramStringSnapshots pins the parser's AST-to-source rendering for a
// handful of representative ES5 programs, the way go-snaps is used over
// golden output in the teacher's fixture tests.
func TestProgramStringSnapshots(t *testing.T) {
	programs := map[string]string{
		"function_decl": "function add(a, b) { return a + b; }",
		"control_flow":  "for (var i = 0; i < 10; i = i + 1) { if (i % 2 === 0) { continue; } else { x = i; } }",
		"try_catch":     `try { throw new TypeError("bad"); } catch (e) { x = e.message; } finally { y = 1; }`,
		"object_array":  `var o = {a: 1, get b() { return 2; }}; var arr = [1, , 3];`,
		"with_and_this": "with (obj) { this.x = y; }",
	}

	for name, src := range programs {
		prog := parseProgram(t, src)
		snaps.MatchSnapshot(t, name, prog.String())
	}
}
