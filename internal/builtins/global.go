package builtins

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/jsstring"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installGlobal wires the ES5 §15.1.2/§15.1.3 global functions (eval,
// parseInt, parseFloat, isNaN, isFinite, the four URI functions) and the
// §15.1.1 value properties (NaN, Infinity, undefined) directly onto the
// global object. Unlike every other installX in this package, this one has
// no constructor/prototype pair to return — it mutates it.Global in place.
func installGlobal(it *interp.Interpreter) {
	g := it.Global

	g.DefineDataProperty("NaN", value.Number(math.NaN()), false, false, false)
	g.DefineDataProperty("Infinity", value.Number(math.Inf(1)), false, false, false)
	g.DefineDataProperty("undefined", value.Undefined, false, false, false)
	g.DefineDataProperty("global", value.Object(g), true, false, true)

	evalFn := nativeFunc(it, "eval", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a := arg(args, 0)
		if !a.IsString() {
			return a, nil
		}
		return it.EvalGlobal(a.StringValue().String())
	})
	g.DefineDataProperty("eval", value.Object(evalFn), true, false, true)
	it.SetGlobalEval(evalFn)

	defineMethod(it, g, "parseInt", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		radix := 0
		if a := arg(args, 1); !a.IsUndefined() {
			r, err := it.ToInt32(a)
			if err != nil {
				return value.Undefined, err
			}
			radix = int(r)
		}
		return value.Number(parseIntString(s.String(), radix)), nil
	})

	defineMethod(it, g, "parseFloat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.Number(parseFloatString(s.String())), nil
	})

	defineMethod(it, g, "isNaN", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := it.ToNumber(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.Bool(math.IsNaN(n)), nil
	})

	defineMethod(it, g, "isFinite", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, err := it.ToNumber(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.Bool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	})

	uriReserved := ";/?:@&=+$,#"
	uriUnescaped := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'()"

	defineMethod(it, g, "encodeURI", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		out, err := uriEncode(s.String(), uriUnescaped+uriReserved)
		if err != nil {
			return value.Undefined, err
		}
		return value.StrFromGo(out), nil
	})

	defineMethod(it, g, "encodeURIComponent", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		out, err := uriEncode(s.String(), uriUnescaped)
		if err != nil {
			return value.Undefined, err
		}
		return value.StrFromGo(out), nil
	})

	defineMethod(it, g, "decodeURI", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		out, err := uriDecode(s.String())
		if err != nil {
			return value.Undefined, err
		}
		return value.StrFromGo(out), nil
	})

	defineMethod(it, g, "decodeURIComponent", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		out, err := uriDecode(s.String())
		if err != nil {
			return value.Undefined, err
		}
		return value.StrFromGo(out), nil
	})

	// Annex B's escape/unescape, retained since the conformance suite's
	// helper prelude occasionally leans on them for string fixtures.
	defineMethod(it, g, "escape", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.StrFromGo(escapeString(s.String())), nil
	})
	defineMethod(it, g, "unescape", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return value.StrFromGo(unescapeString(s.String())), nil
	})
}

// parseIntString implements ES5 §15.1.2.2: skip whitespace, optional sign,
// an optional "0x"/"0X" prefix (forcing radix 16), then digits valid for
// the radix; returns NaN if no digits were consumed.
func parseIntString(s string, radix int) float64 {
	i, n := 0, len(s)
	for i < n && isJSWhitespaceByteAware(s, i) {
		i++
	}
	sign := 1.0
	if i < n && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	stripPrefix := radix == 0 || radix == 16
	if stripPrefix && i+1 < n && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		i += 2
		radix = 16
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	start := i
	for i < n {
		d := digitValue(s[i])
		if d < 0 || d >= radix {
			break
		}
		i++
	}
	if i == start {
		return math.NaN()
	}
	val, err := strconv.ParseUint(s[start:i], radix, 64)
	if err == nil {
		return sign * float64(val)
	}
	// overflow: fall back to accumulating as float64
	var f float64
	for _, c := range []byte(s[start:i]) {
		f = f*float64(radix) + float64(digitValue(c))
	}
	return sign * f
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return -1
	}
}

func isJSWhitespaceByteAware(s string, i int) bool {
	c := s[i]
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// parseFloatString implements ES5 §15.1.2.3: the longest prefix matching
// StrDecimalLiteral (including Infinity), or NaN.
func parseFloatString(s string) float64 {
	i, n := 0, len(s)
	for i < n && isJSWhitespaceByteAware(s, i) {
		i++
	}
	rest := s[i:]
	if strings.HasPrefix(rest, "Infinity") || strings.HasPrefix(rest, "+Infinity") {
		return math.Inf(1)
	}
	if strings.HasPrefix(rest, "-Infinity") {
		return math.Inf(-1)
	}
	j := 0
	if j < len(rest) && (rest[j] == '+' || rest[j] == '-') {
		j++
	}
	start := j
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	if j < len(rest) && rest[j] == '.' {
		j++
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
	}
	if j == start || (j == start+1 && rest[start] == '.') {
		if j == 0 || (j == 1 && (rest[0] == '+' || rest[0] == '-')) {
			return math.NaN()
		}
	}
	if j < len(rest) && (rest[j] == 'e' || rest[j] == 'E') {
		k := j + 1
		if k < len(rest) && (rest[k] == '+' || rest[k] == '-') {
			k++
		}
		expStart := k
		for k < len(rest) && rest[k] >= '0' && rest[k] <= '9' {
			k++
		}
		if k > expStart {
			j = k
		}
	}
	if j == 0 {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(rest[:j], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// uriEncode implements the shared percent-encoding loop behind encodeURI/
// encodeURIComponent (ES5 §15.1.3), differing only in which characters are
// left unescaped.
func uriEncode(s string, unreserved string) (string, error) {
	str := jsstring.FromGo(s)
	var b strings.Builder
	units := make([]uint16, 0, str.Length())
	for i := 0; i < str.Length(); i++ {
		c, _ := str.CharCodeAt(i)
		units = append(units, c)
	}
	for i := 0; i < len(units); i++ {
		c := units[i]
		if c < 128 && strings.ContainsRune(unreserved, rune(c)) {
			b.WriteByte(byte(c))
			continue
		}
		r := rune(c)
		if c >= 0xD800 && c <= 0xDBFF {
			if i+1 < len(units) && units[i+1] >= 0xDC00 && units[i+1] <= 0xDFFF {
				hi, lo := uint32(c), uint32(units[i+1])
				r = rune(((hi - 0xD800) << 10) + (lo - 0xDC00) + 0x10000)
				i++
			} else {
				return "", newURIError("malformed URI sequence")
			}
		} else if c >= 0xDC00 && c <= 0xDFFF {
			return "", newURIError("malformed URI sequence")
		}
		buf := make([]byte, 0, 4)
		buf = appendUTF8(buf, r)
		for _, by := range buf {
			b.WriteString("%")
			b.WriteString(strings.ToUpper(pad2(strconv.FormatInt(int64(by), 16))))
		}
	}
	return b.String(), nil
}

func appendUTF8(buf []byte, r rune) []byte {
	tmp := make([]byte, 4)
	n := encodeRuneUTF8(tmp, r)
	return append(buf, tmp[:n]...)
}

// encodeRuneUTF8 is a minimal UTF-8 encoder kept local so this file doesn't
// need to import unicode/utf8 just for percent-encoding bytes.
func encodeRuneUTF8(p []byte, r rune) int {
	switch {
	case r < 0x80:
		p[0] = byte(r)
		return 1
	case r < 0x800:
		p[0] = 0xC0 | byte(r>>6)
		p[1] = 0x80 | byte(r)&0x3F
		return 2
	case r < 0x10000:
		p[0] = 0xE0 | byte(r>>12)
		p[1] = 0x80 | byte(r>>6)&0x3F
		p[2] = 0x80 | byte(r)&0x3F
		return 3
	default:
		p[0] = 0xF0 | byte(r>>18)
		p[1] = 0x80 | byte(r>>12)&0x3F
		p[2] = 0x80 | byte(r>>6)&0x3F
		p[3] = 0x80 | byte(r)&0x3F
		return 4
	}
}

func uriDecode(s string) (string, error) {
	out, err := url.QueryUnescape(strings.ReplaceAll(s, "+", "%2B"))
	if err != nil {
		return "", newURIError("URI malformed")
	}
	return out, nil
}

// escapeString/unescapeString implement Annex B.2.1/.2.2 exactly (a fixed
// unreserved set distinct from encodeURI's).
const escapeUnreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789@*_+-./"

func escapeString(s string) string {
	str := jsstring.FromGo(s)
	var b strings.Builder
	for i := 0; i < str.Length(); i++ {
		c, _ := str.CharCodeAt(i)
		if c < 128 && strings.ContainsRune(escapeUnreserved, rune(c)) {
			b.WriteByte(byte(c))
			continue
		}
		if c <= 0xFF {
			b.WriteString("%")
			b.WriteString(strings.ToUpper(pad2(strconv.FormatInt(int64(c), 16))))
		} else {
			b.WriteString("%u")
			b.WriteString(strings.ToUpper(pad4(strconv.FormatInt(int64(c), 16))))
		}
	}
	return b.String()
}

func pad2(s string) string {
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}

func pad4(s string) string {
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func unescapeString(s string) string {
	var units []uint16
	i := 0
	for i < len(s) {
		if s[i] == '%' && i+1 < len(s) && s[i+1] == 'u' && i+6 <= len(s) {
			if v, err := strconv.ParseUint(s[i+2:i+6], 16, 32); err == nil {
				units = append(units, uint16(v))
				i += 6
				continue
			}
		}
		if s[i] == '%' && i+3 <= len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 32); err == nil {
				units = append(units, uint16(v))
				i += 3
				continue
			}
		}
		units = append(units, uint16(s[i]))
		i++
	}
	return jsstring.FromUnits(units).String()
}
