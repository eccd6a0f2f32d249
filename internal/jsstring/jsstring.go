// Package jsstring implements the ECMAScript string type: a sequence of
// UTF-16 code units, not Go's UTF-8 bytes or runes. Lengths, indices, and
// charAt/charCodeAt all operate in code units per spec.md's string model,
// including unpaired surrogates that have no valid UTF-8 representation.
package jsstring

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// String is an immutable UTF-16 code unit sequence.
type String struct {
	units []uint16
}

// Empty is the zero-length string.
var Empty = String{}

// FromGo builds a String from a Go (UTF-8) string, encoding non-BMP runes
// as surrogate pairs.
func FromGo(s string) String {
	return String{units: utf16.Encode([]rune(s))}
}

// FromUnits wraps a raw UTF-16 code unit slice (e.g. decoded from a
// `\uXXXX` lexer escape) without re-encoding it.
func FromUnits(units []uint16) String {
	cp := make([]uint16, len(units))
	copy(cp, units)
	return String{units: cp}
}

// String renders back to Go UTF-8, replacing unpaired surrogates with the
// Unicode replacement character (utf16.Decode's documented behavior).
func (s String) String() string {
	return string(utf16.Decode(s.units))
}

// Length is the ES5 `.length`: the number of UTF-16 code units.
func (s String) Length() int { return len(s.units) }

// CharCodeAt returns the code unit at index i and whether i was in range.
func (s String) CharCodeAt(i int) (uint16, bool) {
	if i < 0 || i >= len(s.units) {
		return 0, false
	}
	return s.units[i], true
}

// CharAt returns the single-code-unit substring at index i, or Empty if
// out of range (ES5 §15.5.4.4 behavior, as opposed to charCodeAt's NaN).
func (s String) CharAt(i int) String {
	if i < 0 || i >= len(s.units) {
		return Empty
	}
	return String{units: s.units[i : i+1]}
}

// Slice returns the code units in [start, end), clamped to bounds.
func (s String) Slice(start, end int) String {
	if start < 0 {
		start = 0
	}
	if end > len(s.units) {
		end = len(s.units)
	}
	if start >= end {
		return Empty
	}
	return String{units: s.units[start:end]}
}

// Concat appends other's units after s's.
func (s String) Concat(other String) String {
	units := make([]uint16, 0, len(s.units)+len(other.units))
	units = append(units, s.units...)
	units = append(units, other.units...)
	return String{units: units}
}

// Equal compares by code unit, matching the ES5 SameValue string comparison.
func (s String) Equal(other String) bool {
	if len(s.units) != len(other.units) {
		return false
	}
	for i, u := range s.units {
		if other.units[i] != u {
			return false
		}
	}
	return true
}

// Compare implements ES5 §11.8.5's string relational comparison: a
// code-unit-by-code-unit ordering, not a locale collation.
func (s String) Compare(other String) int {
	n := len(s.units)
	if len(other.units) < n {
		n = len(other.units)
	}
	for i := 0; i < n; i++ {
		if s.units[i] != other.units[i] {
			if s.units[i] < other.units[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(s.units) < len(other.units):
		return -1
	case len(s.units) > len(other.units):
		return 1
	default:
		return 0
	}
}

// Index returns the code-unit index of the first occurrence of needle at
// or after fromIndex, or -1.
func (s String) Index(needle String, fromIndex int) int {
	if fromIndex < 0 {
		fromIndex = 0
	}
	if len(needle.units) == 0 {
		if fromIndex > len(s.units) {
			return len(s.units)
		}
		return fromIndex
	}
	for i := fromIndex; i+len(needle.units) <= len(s.units); i++ {
		if matchAt(s.units, needle.units, i) {
			return i
		}
	}
	return -1
}

// LastIndex returns the code-unit index of the last occurrence of needle
// at or before fromIndex, or -1.
func (s String) LastIndex(needle String, fromIndex int) int {
	if len(needle.units) == 0 {
		if fromIndex > len(s.units) {
			return len(s.units)
		}
		if fromIndex < 0 {
			return 0
		}
		return fromIndex
	}
	start := fromIndex
	if start > len(s.units)-len(needle.units) {
		start = len(s.units) - len(needle.units)
	}
	for i := start; i >= 0; i-- {
		if matchAt(s.units, needle.units, i) {
			return i
		}
	}
	return -1
}

func matchAt(haystack, needle []uint16, at int) bool {
	for j, u := range needle {
		if haystack[at+j] != u {
			return false
		}
	}
	return true
}

// IsWellFormed reports whether the code unit sequence has no unpaired
// surrogate, i.e. decodes without utf16.Decode substituting a replacement
// character.
func (s String) IsWellFormed() bool {
	for i := 0; i < len(s.units); i++ {
		switch u := s.units[i]; {
		case u >= 0xD800 && u < 0xDC00:
			if i+1 == len(s.units) || s.units[i+1] < 0xDC00 || s.units[i+1] > 0xDFFF {
				return false
			}
			i++
		case u >= 0xDC00 && u <= 0xDFFF:
			return false
		}
	}
	return true
}

var defaultCaser = language.Und

// ToUpper implements the default (locale-insensitive) case mapping used by
// String.prototype.toUpperCase, per ES5 §15.5.4.18.
func ToUpper(s String) String {
	return FromGo(cases.Upper(defaultCaser).String(s.String()))
}

// ToLower implements String.prototype.toLowerCase, ES5 §15.5.4.16.
func ToLower(s String) String {
	return FromGo(cases.Lower(defaultCaser).String(s.String()))
}

// ToLocaleUpper/ToLocaleLower apply a named BCP 47 locale tag; an empty or
// unparsable tag falls back to the default mapping.
func ToLocaleUpper(s String, locale string) String {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = defaultCaser
	}
	return FromGo(cases.Upper(tag).String(s.String()))
}

func ToLocaleLower(s String, locale string) String {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = defaultCaser
	}
	return FromGo(cases.Lower(tag).String(s.String()))
}

// TrimSpace removes ES5 WhiteSpace and LineTerminator code points from
// both ends, per String.prototype.trim (ES5 §15.5.4.20).
func TrimSpace(s String) String {
	trimmed := strings.TrimFunc(s.String(), isJSSpace)
	return FromGo(trimmed)
}

func isJSSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\v', '\f', '\u00A0', '\uFEFF', '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// Split divides s at every occurrence of sep; if sep is Empty, splits into
// individual code units, per the behavior String.prototype.split needs.
func Split(s String, sep String) []String {
	if sep.Length() == 0 {
		out := make([]String, len(s.units))
		for i, u := range s.units {
			out[i] = String{units: []uint16{u}}
		}
		return out
	}
	var out []String
	rest := s
	for {
		idx := rest.Index(sep, 0)
		if idx < 0 {
			out = append(out, rest)
			return out
		}
		out = append(out, rest.Slice(0, idx))
		rest = rest.Slice(idx+sep.Length(), rest.Length())
	}
}
