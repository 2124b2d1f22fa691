package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a placeholder path: a key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

type Filter struct {
	Name string
	// Arg is the literal argument as written (number or quoted string), or "".
	Arg string
}

// Expression is a parsed placeholder body such as `roi.annual_net_cash_flows[1] | round(1)`.
type Expression struct {
	Path    []Segment
	Filters []Filter
}

// SyntaxError reports a malformed placeholder. Offset is a byte offset into
// the placeholder body.
type SyntaxError struct {
	Expr   string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d in %q", e.Msg, e.Offset, e.Expr)
}

// ParseExpression parses
//
//	expr   := path ( "|" filter )*
//	path   := key ( "." key | "[" int "]" )*
//	filter := ident [ "(" number | string ")" ]
//
// A key is an identifier that is not one of the template engine's reserved
// words.
func ParseExpression(s string) (Expression, error) {
	p := &exprParser{src: s}
	return p.parse()
}

// PathString renders the path back in dotted/bracket form.
func (e Expression) PathString() string {
	var b strings.Builder
	for i, seg := range e.Path {
		switch {
		case seg.IsIndex:
			fmt.Fprintf(&b, "[%d]", seg.Index)
		case i == 0:
			b.WriteString(seg.Key)
		default:
			b.WriteByte('.')
			b.WriteString(seg.Key)
		}
	}
	return b.String()
}

func (e Expression) String() string {
	var b strings.Builder
	b.WriteString(e.PathString())
	for _, f := range e.Filters {
		b.WriteString(" | ")
		b.WriteString(f.Name)
		if f.Arg != "" {
			b.WriteString("(" + f.Arg + ")")
		}
	}
	return b.String()
}

// Pongo translates the expression to pongo2 syntax: indexes become numeric
// attributes and filter arguments use the colon form.
func (e Expression) Pongo() string {
	var b strings.Builder
	for i, seg := range e.Path {
		if i > 0 {
			b.WriteByte('.')
		}
		if seg.IsIndex {
			b.WriteString(strconv.Itoa(seg.Index))
		} else {
			b.WriteString(seg.Key)
		}
	}
	for _, f := range e.Filters {
		b.WriteByte('|')
		b.WriteString(f.Name)
		if f.Arg != "" {
			b.WriteByte(':')
			b.WriteString(pongoLiteral(f.Arg))
		}
	}
	return b.String()
}

// pongo2 only accepts double-quoted strings.
func pongoLiteral(arg string) string {
	if strings.HasPrefix(arg, "'") {
		s := arg[1 : len(arg)-1]
		s = strings.ReplaceAll(s, `\'`, `'`)
		return strconv.Quote(s)
	}
	return arg
}

// reservedWords are parsed by pongo2 as keywords or literals, never as
// context lookups.
var reservedWords = map[string]bool{
	"in": true, "and": true, "or": true, "not": true, "as": true, "export": true,
	"true": true, "false": true, "True": true, "False": true,
	"nil": true, "none": true, "None": true,
}

// IsReserved reports whether name cannot be used as a placeholder key.
func IsReserved(name string) bool { return reservedWords[name] }

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) fail(msg string, args ...any) error {
	return &SyntaxError{Expr: p.src, Offset: p.pos, Msg: fmt.Sprintf(msg, args...)}
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) parse() (Expression, error) {
	var e Expression
	p.skipSpace()
	if p.pos == len(p.src) {
		return e, p.fail("empty expression")
	}

	key, err := p.key()
	if err != nil {
		return e, err
	}
	e.Path = append(e.Path, Segment{Key: key})

	for {
		switch p.peek() {
		case '.':
			p.pos++
			key, err := p.key()
			if err != nil {
				return e, err
			}
			e.Path = append(e.Path, Segment{Key: key})
			continue
		case '[':
			p.pos++
			p.skipSpace()
			start := p.pos
			for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
				p.pos++
			}
			if start == p.pos {
				return e, p.fail("expected list index")
			}
			idx, err := strconv.Atoi(p.src[start:p.pos])
			if err != nil {
				return e, p.fail("bad list index")
			}
			p.skipSpace()
			if p.peek() != ']' {
				return e, p.fail("expected ']'")
			}
			p.pos++
			e.Path = append(e.Path, Segment{Index: idx, IsIndex: true})
			continue
		}
		break
	}

	for {
		p.skipSpace()
		if p.pos == len(p.src) {
			return e, nil
		}
		if p.peek() != '|' {
			return e, p.fail("unexpected %q", p.peek())
		}
		p.pos++
		p.skipSpace()
		f, err := p.filter()
		if err != nil {
			return e, err
		}
		e.Filters = append(e.Filters, f)
	}
}

func (p *exprParser) filter() (Filter, error) {
	name, err := p.ident()
	if err != nil {
		return Filter{}, err
	}
	f := Filter{Name: name}
	p.skipSpace()
	if p.peek() != '(' {
		return f, nil
	}
	p.pos++
	p.skipSpace()
	arg, err := p.literal()
	if err != nil {
		return f, err
	}
	p.skipSpace()
	if p.peek() != ')' {
		return f, p.fail("expected ')'")
	}
	p.pos++
	f.Arg = arg
	return f, nil
}

func (p *exprParser) literal() (string, error) {
	start := p.pos
	switch c := p.peek(); {
	case c == '"' || c == '\'':
		p.pos++
		for p.pos < len(p.src) {
			switch p.src[p.pos] {
			case '\\':
				p.pos += 2
				continue
			case c:
				p.pos++
				return p.src[start:p.pos], nil
			}
			p.pos++
		}
		p.pos = start
		return "", p.fail("unterminated string")
	case c == '-' || isDigit(c):
		p.pos++
		for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}
		lit := p.src[start:p.pos]
		if _, err := strconv.ParseFloat(lit, 64); err != nil {
			p.pos = start
			return "", p.fail("bad number %q", lit)
		}
		return lit, nil
	default:
		return "", p.fail("expected number or string argument")
	}
}

func (p *exprParser) ident() (string, error) {
	start := p.pos
	if p.pos >= len(p.src) || !isIdentStart(p.src[p.pos]) {
		return "", p.fail("expected identifier")
	}
	p.pos++
	for p.pos < len(p.src) && (isIdentStart(p.src[p.pos]) || isDigit(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *exprParser) key() (string, error) {
	start := p.pos
	name, err := p.ident()
	if err != nil {
		return "", err
	}
	if reservedWords[name] {
		p.pos = start
		return "", p.fail("%q is a reserved word", name)
	}
	return name, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Lookup walks path through nested maps and lists.
func Lookup(ctx map[string]any, path []Segment) (any, error) {
	var cur any = ctx
	for i, seg := range path {
		where := Expression{Path: path[:i+1]}.PathString()
		if seg.IsIndex {
			list, ok := cur.([]any)
			if !ok {
				return nil, fmt.Errorf("%s: not a list", where)
			}
			if seg.Index >= len(list) {
				return nil, fmt.Errorf("%s: index out of range (len %d)", where, len(list))
			}
			cur = list[seg.Index]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: not a mapping", where)
		}
		v, ok := m[seg.Key]
		if !ok {
			return nil, fmt.Errorf("%s: no such key", where)
		}
		cur = v
	}
	return cur, nil
}
