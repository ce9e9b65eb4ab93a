// Package toml decodes the TOML subset used by engine configuration files:
// tables, dotted keys, strings, integers, floats, booleans and arrays of those
package toml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseError reports the line a document stopped parsing at
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("toml: line %d: %s", e.Line, e.Msg)
}

// parser walks the document byte by byte; values never nest beyond arrays
type parser struct {
	src  []byte
	pos  int
	line int

	root    map[string]any
	current map[string]any
	tables  map[string]bool // explicitly declared [table] paths
}

// Parse decodes a document into nested maps
// Integers become int64, floats float64, arrays []any
func Parse(data []byte) (map[string]any, error) {
	p := &parser{
		src:    data,
		line:   1,
		root:   make(map[string]any),
		tables: make(map[string]bool),
	}
	p.current = p.root

	for {
		p.skipBlank()
		if p.eof() {
			return p.root, nil
		}
		var err error
		if p.peek() == '[' {
			err = p.parseTable()
		} else {
			err = p.parseKeyValue()
		}
		if err != nil {
			return nil, err
		}
		if err := p.endOfLine(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// skipSpace skips spaces and tabs on the current line
func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

// skipBlank skips whitespace, newlines and comments
func (p *parser) skipBlank() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\r':
			p.pos++
		case '\n':
			p.pos++
			p.line++
		case '#':
			p.skipComment()
		default:
			return
		}
	}
}

func (p *parser) skipComment() {
	for !p.eof() && p.src[p.pos] != '\n' {
		p.pos++
	}
}

// endOfLine requires the rest of the line to be blank or a comment
func (p *parser) endOfLine() error {
	p.skipSpace()
	if p.peek() == '#' {
		p.skipComment()
	}
	if p.peek() == '\r' {
		p.pos++
	}
	if p.eof() {
		return nil
	}
	if p.peek() != '\n' {
		return p.errorf("unexpected %q after value", p.peek())
	}
	p.pos++
	p.line++
	return nil
}

// parseTable handles "[a.b]" and makes it the current scope
func (p *parser) parseTable() error {
	p.pos++ // [
	if p.peek() == '[' {
		return p.errorf("arrays of tables are not supported")
	}
	keys, err := p.parseKey()
	if err != nil {
		return err
	}
	p.skipSpace()
	if p.peek() != ']' {
		return p.errorf("expected ']' to close table header")
	}
	p.pos++

	path := strings.Join(keys, ".")
	if p.tables[path] {
		return p.errorf("table [%s] defined twice", path)
	}
	p.tables[path] = true

	m := p.root
	for _, k := range keys {
		next, err := p.descend(m, k)
		if err != nil {
			return err
		}
		m = next
	}
	p.current = m
	return nil
}

// descend returns the child table k of m, creating it when absent
func (p *parser) descend(m map[string]any, k string) (map[string]any, error) {
	v, ok := m[k]
	if !ok {
		child := make(map[string]any)
		m[k] = child
		return child, nil
	}
	child, ok := v.(map[string]any)
	if !ok {
		return nil, p.errorf("key %q is a value, not a table", k)
	}
	return child, nil
}

func (p *parser) parseKeyValue() error {
	keys, err := p.parseKey()
	if err != nil {
		return err
	}
	p.skipSpace()
	if p.peek() != '=' {
		return p.errorf("expected '=' after key %q", strings.Join(keys, "."))
	}
	p.pos++
	p.skipSpace()

	val, err := p.parseValue()
	if err != nil {
		return err
	}

	m := p.current
	for _, k := range keys[:len(keys)-1] {
		if m, err = p.descend(m, k); err != nil {
			return err
		}
	}
	last := keys[len(keys)-1]
	if _, exists := m[last]; exists {
		return p.errorf("duplicate key %q", last)
	}
	m[last] = val
	return nil
}

// parseKey reads a dotted key of bare and quoted parts
func (p *parser) parseKey() ([]string, error) {
	var keys []string
	for {
		p.skipSpace()
		var k string
		switch c := p.peek(); {
		case c == '"':
			s, err := p.parseBasicString()
			if err != nil {
				return nil, err
			}
			k = s
		case c == '\'':
			s, err := p.parseLiteralString()
			if err != nil {
				return nil, err
			}
			k = s
		case isBareKeyChar(c):
			start := p.pos
			for !p.eof() && isBareKeyChar(p.peek()) {
				p.pos++
			}
			k = string(p.src[start:p.pos])
		default:
			return nil, p.errorf("expected key, got %q", c)
		}
		keys = append(keys, k)

		p.skipSpace()
		if p.peek() != '.' {
			return keys, nil
		}
		p.pos++
	}
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func (p *parser) parseValue() (any, error) {
	switch c := p.peek(); {
	case c == '"':
		return p.parseBasicString()
	case c == '\'':
		return p.parseLiteralString()
	case c == '[':
		return p.parseArray()
	case c == '{':
		return nil, p.errorf("inline tables are not supported")
	case c == 0 || c == '\n' || c == '#':
		return nil, p.errorf("missing value")
	}

	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == ',' || c == ']' || c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '#' {
			break
		}
		p.pos++
	}
	return p.scalar(string(p.src[start:p.pos]))
}

// scalar classifies a bare literal as bool, integer or float
func (p *parser) scalar(lit string) (any, error) {
	switch lit {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "inf", "+inf", "-inf", "nan", "+nan", "-nan":
		f, _ := strconv.ParseFloat(strings.TrimPrefix(lit, "+"), 64)
		return f, nil
	}

	clean := lit
	if strings.Contains(lit, "_") {
		clean = strings.ReplaceAll(lit, "_", "")
	}

	if i, err := strconv.ParseInt(clean, 0, 64); err == nil {
		// Go accepts a leading "0" as octal; TOML does not
		if len(clean) > 1 && clean[0] == '0' && clean[1] >= '0' && clean[1] <= '9' {
			return nil, p.errorf("leading zero in %q", lit)
		}
		return i, nil
	}
	if strings.ContainsAny(clean, ".eE") && !strings.ContainsAny(clean, "xX") {
		if f, err := strconv.ParseFloat(clean, 64); err == nil {
			return f, nil
		}
	}
	return nil, p.errorf("invalid value %q", lit)
}

// parseArray reads "[v, v, ...]"; elements may span lines and carry comments
func (p *parser) parseArray() ([]any, error) {
	p.pos++ // [
	arr := make([]any, 0)
	for {
		p.skipBlank()
		if p.eof() {
			return nil, p.errorf("unterminated array")
		}
		if p.peek() == ']' {
			p.pos++
			return arr, nil
		}

		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		p.skipBlank()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
		default:
			return nil, p.errorf("expected ',' or ']' in array")
		}
	}
}

func (p *parser) parseLiteralString() (string, error) {
	p.pos++ // '
	start := p.pos
	for !p.eof() {
		switch p.src[p.pos] {
		case '\'':
			s := string(p.src[start:p.pos])
			p.pos++
			return s, nil
		case '\n':
			return "", p.errorf("newline in string")
		}
		p.pos++
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) parseBasicString() (string, error) {
	p.pos++ // "
	var sb strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\n':
			return "", p.errorf("newline in string")
		case '\\':
			if err := p.parseEscape(&sb); err != nil {
				return "", err
			}
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}
	return "", p.errorf("unterminated string")
}

// parseEscape decodes one backslash escape at p.pos
func (p *parser) parseEscape(sb *strings.Builder) error {
	if p.pos+1 >= len(p.src) {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos+1]
	p.pos += 2
	switch c {
	case 'b':
		sb.WriteByte('\b')
	case 't':
		sb.WriteByte('\t')
	case 'n':
		sb.WriteByte('\n')
	case 'f':
		sb.WriteByte('\f')
	case 'r':
		sb.WriteByte('\r')
	case 'e':
		sb.WriteByte(0x1b)
	case '"':
		sb.WriteByte('"')
	case '\\':
		sb.WriteByte('\\')
	case 'u', 'U':
		n := 4
		if c == 'U' {
			n = 8
		}
		if p.pos+n > len(p.src) {
			return p.errorf("short unicode escape")
		}
		v, err := strconv.ParseUint(string(p.src[p.pos:p.pos+n]), 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return p.errorf("invalid unicode escape")
		}
		sb.WriteRune(rune(v))
		p.pos += n
	default:
		return p.errorf("invalid escape \\%c", c)
	}
	return nil
}
