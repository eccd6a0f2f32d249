package builtins

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/mras0/mjs-sub001/internal/interp"
	"github.com/mras0/mjs-sub001/internal/object"
	"github.com/mras0/mjs-sub001/internal/value"
)

// installJSON builds the JSON object (ES5 §15.12): parse and stringify.
// Grounded on internal/lexer's byte-scanning style rather than any
// third-party JSON library, since JSON.parse must build live heap objects
// in source insertion order and JSON.stringify must walk them back out
// through the evaluator's own [[Get]]/toJSON machinery — neither
// encoding/json (which discards map order) nor the pack's gjson/sjson
// (read-only path queries, not a parse-to-object-graph API) fits.
func installJSON(it *interp.Interpreter) *object.Object {
	j := it.NewObject("JSON", it.ObjectPrototype)

	defineMethod(it, j, "parse", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s, err := it.ToStringValue(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		p := &jsonParser{src: s.String()}
		v, err := p.parseValue(it)
		if err != nil {
			return value.Undefined, newSyntaxError("%s", err.Error())
		}
		p.skipSpace()
		if p.pos != len(p.src) {
			return value.Undefined, newSyntaxError("unexpected trailing data in JSON")
		}
		if reviver, ok := isCallableValue(arg(args, 1)); ok {
			holder := it.NewObject("Object", it.ObjectPrototype)
			holder.DefineDataProperty("", v, true, true, true)
			return jsonWalk(it, holder, "", reviver)
		}
		return v, nil
	})

	defineMethod(it, j, "stringify", 3, func(this value.Value, args []value.Value) (value.Value, error) {
		var replacerFn *object.Object
		var allowList map[string]bool
		if r, ok := isCallableValue(arg(args, 1)); ok {
			replacerFn = r
		} else if ro, ok := objectRef(arg(args, 1)); ok && ro.ClassName() == "Array" {
			allowList = map[string]bool{}
			n, err := arrayLength(it, ro)
			if err != nil {
				return value.Undefined, err
			}
			for i := uint32(0); i < n; i++ {
				v, err := it.Get(ro, indexKey(int(i)), arg(args, 1))
				if err != nil {
					return value.Undefined, err
				}
				if v.IsString() {
					allowList[v.StringValue().String()] = true
				} else if v.IsNumber() {
					allowList[value.NumberToString(v.NumberValue())] = true
				}
			}
		}

		indent := ""
		if sp := arg(args, 2); !sp.IsUndefined() {
			if sp.IsNumber() {
				n := int(sp.NumberValue())
				if n > 10 {
					n = 10
				}
				if n > 0 {
					indent = strings.Repeat(" ", n)
				}
			} else if sp.IsString() {
				indent = sp.StringValue().String()
				if len(indent) > 10 {
					indent = indent[:10]
				}
			} else if o, ok := objectRef(sp); ok {
				if o.ClassName() == "Number" && o.HasPrimitive {
					n := int(o.PrimitiveValue.NumberValue())
					if n > 0 {
						indent = strings.Repeat(" ", n)
					}
				} else if o.ClassName() == "String" && o.HasPrimitive {
					indent = o.PrimitiveValue.StringValue().String()
				}
			}
		}

		ser := &jsonSerializer{it: it, replacer: replacerFn, allowList: allowList, indent: indent, seen: map[*object.Object]bool{}}
		holder := it.NewObject("Object", it.ObjectPrototype)
		holder.DefineDataProperty("", arg(args, 0), true, true, true)
		out, ok, err := ser.str(holder, "", "")
		if err != nil {
			return value.Undefined, err
		}
		if !ok {
			return value.Undefined, nil
		}
		return value.StrFromGo(out), nil
	})

	return j
}

type jsonParser struct {
	src string
	pos int
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) parseValue(it *interp.Interpreter) (value.Value, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return value.Undefined, fmt.Errorf("unexpected end of JSON input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject(it)
	case c == '[':
		return p.parseArray(it)
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return value.Undefined, err
		}
		return value.StrFromGo(s), nil
	case c == 't':
		return p.literal("true", value.Bool(true))
	case c == 'f':
		return p.literal("false", value.Bool(false))
	case c == 'n':
		return p.literal("null", value.Null)
	default:
		return p.parseNumber()
	}
}

func (p *jsonParser) literal(lit string, v value.Value) (value.Value, error) {
	if p.pos+len(lit) > len(p.src) || p.src[p.pos:p.pos+len(lit)] != lit {
		return value.Undefined, fmt.Errorf("unexpected token in JSON at position %d", p.pos)
	}
	p.pos += len(lit)
	return v, nil
}

func (p *jsonParser) parseNumber() (value.Value, error) {
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	if p.pos == start {
		return value.Undefined, fmt.Errorf("unexpected token in JSON at position %d", p.pos)
	}
	n, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return value.Undefined, fmt.Errorf("invalid number in JSON: %s", p.src[start:p.pos])
	}
	return value.Number(n), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (p *jsonParser) parseString() (string, error) {
	if p.src[p.pos] != '"' {
		return "", fmt.Errorf("expected string at position %d", p.pos)
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				break
			}
			switch p.src[p.pos] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				if p.pos+4 >= len(p.src) {
					return "", fmt.Errorf("invalid \\u escape in JSON string")
				}
				code, err := strconv.ParseUint(p.src[p.pos+1:p.pos+5], 16, 32)
				if err != nil {
					return "", fmt.Errorf("invalid \\u escape in JSON string")
				}
				b.WriteRune(rune(utf16.Decode([]uint16{uint16(code)})[0]))
				p.pos += 4
			default:
				return "", fmt.Errorf("invalid escape in JSON string")
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", fmt.Errorf("unterminated JSON string")
}

func (p *jsonParser) parseArray(it *interp.Interpreter) (value.Value, error) {
	p.pos++ // '['
	arr := it.NewArray(0)
	idx := uint32(0)
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return value.Object(arr), nil
	}
	for {
		v, err := p.parseValue(it)
		if err != nil {
			return value.Undefined, err
		}
		arr.DefineDataProperty(indexKey(int(idx)), v, true, true, true)
		idx++
		p.skipSpace()
		if p.pos >= len(p.src) {
			return value.Undefined, fmt.Errorf("unexpected end of JSON input")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ']' {
			p.pos++
			break
		}
		return value.Undefined, fmt.Errorf("unexpected token in JSON array at position %d", p.pos)
	}
	it.SetArrayLength(arr, idx)
	return value.Object(arr), nil
}

func (p *jsonParser) parseObject(it *interp.Interpreter) (value.Value, error) {
	p.pos++ // '{'
	o := it.NewObject("Object", it.ObjectPrototype)
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return value.Object(o), nil
	}
	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return value.Undefined, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return value.Undefined, fmt.Errorf("expected ':' in JSON object")
		}
		p.pos++
		v, err := p.parseValue(it)
		if err != nil {
			return value.Undefined, err
		}
		o.DefineDataProperty(key, v, true, true, true)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return value.Undefined, fmt.Errorf("unexpected end of JSON input")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '}' {
			p.pos++
			break
		}
		return value.Undefined, fmt.Errorf("unexpected token in JSON object at position %d", p.pos)
	}
	return value.Object(o), nil
}

// jsonWalk implements the JSON.parse reviver walk (ES5 §15.12.2): depth
// first, replacing each member with reviver.call(holder, key, value),
// deleting the member when the reviver returns undefined.
func jsonWalk(it *interp.Interpreter, holder *object.Object, key string, reviver *object.Object) (value.Value, error) {
	v, err := it.Get(holder, key, value.Object(holder))
	if err != nil {
		return value.Undefined, err
	}
	if o, ok := objectRef(v); ok {
		if o.ClassName() == "Array" {
			n, err := arrayLength(it, o)
			if err != nil {
				return value.Undefined, err
			}
			for i := uint32(0); i < n; i++ {
				nv, err := jsonWalk(it, o, indexKey(int(i)), reviver)
				if err != nil {
					return value.Undefined, err
				}
				if nv.IsUndefined() {
					o.Delete(indexKey(int(i)), false)
				} else {
					o.DefineDataProperty(indexKey(int(i)), nv, true, true, true)
				}
			}
		} else {
			for _, k := range append([]string{}, o.Keys()...) {
				nv, err := jsonWalk(it, o, k, reviver)
				if err != nil {
					return value.Undefined, err
				}
				if nv.IsUndefined() {
					o.Delete(k, false)
				} else {
					o.DefineDataProperty(k, nv, true, true, true)
				}
			}
		}
	}
	return it.Call(reviver, value.Object(holder), []value.Value{value.StrFromGo(key), v})
}

// jsonSerializer implements JSON.stringify's Str/JO/JA operations (ES5
// §15.12.3), including toJSON invocation, replacer function/allow-list
// filtering, indentation, and circular-structure detection.
type jsonSerializer struct {
	it        *interp.Interpreter
	replacer  *object.Object
	allowList map[string]bool
	indent    string
	seen      map[*object.Object]bool
}

func (s *jsonSerializer) str(holder *object.Object, key, curGap string) (string, bool, error) {
	v, err := s.it.Get(holder, key, value.Object(holder))
	if err != nil {
		return "", false, err
	}

	if o, ok := objectRef(v); ok {
		if tj, err := s.it.Get(o, "toJSON", v); err == nil {
			if fn, ok := isCallableValue(tj); ok {
				v, err = s.it.Call(fn, v, []value.Value{value.StrFromGo(key)})
				if err != nil {
					return "", false, err
				}
			}
		}
	}

	if s.replacer != nil {
		v, err = s.it.Call(s.replacer, value.Object(holder), []value.Value{value.StrFromGo(key), v})
		if err != nil {
			return "", false, err
		}
	}

	if o, ok := objectRef(v); ok {
		switch o.ClassName() {
		case "Number":
			if o.HasPrimitive {
				v = o.PrimitiveValue
			}
		case "String":
			if o.HasPrimitive {
				v = o.PrimitiveValue
			}
		case "Boolean":
			if o.HasPrimitive {
				v = o.PrimitiveValue
			}
		}
	}

	switch v.Kind() {
	case value.KindNull:
		return "null", true, nil
	case value.KindBoolean:
		if v.BoolValue() {
			return "true", true, nil
		}
		return "false", true, nil
	case value.KindString:
		return quoteJSON(v.StringValue().String()), true, nil
	case value.KindNumber:
		n := v.NumberValue()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "null", true, nil
		}
		return value.NumberToString(n), true, nil
	case value.KindObject:
		o := v.ObjectRef().(*object.Object)
		if !o.IsCallable() {
			if o.ClassName() == "Array" {
				return s.array(o, curGap)
			}
			return s.object(o, curGap)
		}
		return "", false, nil
	default:
		return "", false, nil
	}
}

func (s *jsonSerializer) array(o *object.Object, curGap string) (string, bool, error) {
	if s.seen[o] {
		return "", false, newTypeError("Converting circular structure to JSON")
	}
	s.seen[o] = true
	defer delete(s.seen, o)

	n, err := arrayLength(s.it, o)
	if err != nil {
		return "", false, err
	}
	nextGap := curGap + s.indent
	parts := make([]string, n)
	for i := uint32(0); i < n; i++ {
		elemStr, ok, err := s.str(o, indexKey(int(i)), nextGap)
		if err != nil {
			return "", false, err
		}
		if !ok {
			elemStr = "null"
		}
		parts[i] = elemStr
	}
	if len(parts) == 0 {
		return "[]", true, nil
	}
	if s.indent == "" {
		return "[" + strings.Join(parts, ",") + "]", true, nil
	}
	sep := ",\n" + nextGap
	return "[\n" + nextGap + strings.Join(parts, sep) + "\n" + curGap + "]", true, nil
}

func (s *jsonSerializer) object(o *object.Object, curGap string) (string, bool, error) {
	if s.seen[o] {
		return "", false, newTypeError("Converting circular structure to JSON")
	}
	s.seen[o] = true
	defer delete(s.seen, o)

	nextGap := curGap + s.indent
	var parts []string
	keys := o.Keys()
	for _, k := range keys {
		d := o.GetOwnProperty(k)
		if d == nil || !d.Enumerable {
			continue
		}
		if s.allowList != nil && !s.allowList[k] {
			continue
		}
		valStr, ok, err := s.str(o, k, nextGap)
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue
		}
		sep := ":"
		if s.indent != "" {
			sep = ": "
		}
		parts = append(parts, quoteJSON(k)+sep+valStr)
	}
	if len(parts) == 0 {
		return "{}", true, nil
	}
	if s.indent == "" {
		return "{" + strings.Join(parts, ",") + "}", true, nil
	}
	sep := ",\n" + nextGap
	return "{\n" + nextGap + strings.Join(parts, sep) + "\n" + curGap + "}", true, nil
}

func quoteJSON(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				b.WriteString(fmt.Sprintf(`\u%04x`, r))
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

