// Package jsregexp wraps github.com/dlclark/regexp2 for ECMAScript regular
// expression semantics. ES5 regex syntax and backreference/lookahead
// behavior diverge from Go's RE2-based regexp package, which is why
// production JS-in-Go engines (goja among them) reach for regexp2's
// ECMAScript compatibility mode instead of the standard library.
package jsregexp

import (
	"github.com/dlclark/regexp2"

	"github.com/mras0/mjs-sub001/internal/jserrors"
)

// RegExp is a compiled ES5 regular expression plus its source/flags, as
// stored in a RegExp object's Internal slot.
type RegExp struct {
	Source    string
	Flags     string
	Global    bool
	IgnoreCase bool
	Multiline bool
	re        *regexp2.Regexp
}

// Compile builds a RegExp from a /pattern/flags pair (ES5 §15.10.4.1).
func Compile(pattern, flags string) (*RegExp, error) {
	opts := regexp2.ECMAScript
	r := &RegExp{Source: pattern, Flags: flags}
	for _, f := range flags {
		switch f {
		case 'g':
			r.Global = true
		case 'i':
			r.IgnoreCase = true
			opts |= regexp2.IgnoreCase
		case 'm':
			r.Multiline = true
			opts |= regexp2.Multiline
		default:
			return nil, jserrors.NewSyntaxError("invalid regular expression flag %q", string(f))
		}
	}
	compiled, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, jserrors.NewSyntaxError("invalid regular expression: %s", err.Error())
	}
	r.re = compiled
	return r, nil
}

// Match is one successful match: the overall matched text, its start
// offset and length (in runes, the unit regexp2 indexes its input by),
// and the captured groups in order (a nil entry for a group that didn't
// participate, matching ES5's undefined-capture semantics).
type Match struct {
	Text   string
	Index  int
	Length int
	Groups []*string
	Names  map[string]*string
}

// FindFrom runs the regex against s starting the search at rune offset
// from, implementing the core of RegExp.prototype.exec/test (ES5
// §15.10.6.2).
func (r *RegExp) FindFrom(s string, from int) (*Match, error) {
	var m *regexp2.Match
	var err error
	if from <= 0 {
		m, err = r.re.FindStringMatch(s)
	} else {
		m, err = r.re.FindStringMatchStartingAt(s, from)
	}
	if err != nil {
		return nil, jserrors.NewSyntaxError("regular expression match failed: %s", err.Error())
	}
	if m == nil {
		return nil, nil
	}
	groups := m.Groups()
	result := &Match{
		Text:   m.String(),
		Index:  m.Index,
		Length: m.Length,
		Groups: make([]*string, 0, len(groups)-1),
		Names:  map[string]*string{},
	}
	for i := 1; i < len(groups); i++ {
		g := groups[i]
		if len(g.Captures) == 0 {
			result.Groups = append(result.Groups, nil)
			continue
		}
		text := g.String()
		result.Groups = append(result.Groups, &text)
		if g.Name != "" {
			result.Names[g.Name] = &text
		}
	}
	return result, nil
}
