package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokSymbol
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var keywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true,
	"offset": true, "limit": true, "value": true, "true": true, "false": true,
}

// Parse validates text against the dialect and returns the parsed query.
func Parse(text string) (Query, error) {
	toks, err := lex(text)
	if err != nil {
		return Query{}, err
	}
	p := &parser{toks: toks}
	return p.parse()
}

func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		r := rune(s[i])
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(s) && (s[i] == '_' || unicode.IsLetter(rune(s[i])) || unicode.IsDigit(rune(s[i]))) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: s[start:i], pos: start})
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(s) && unicode.IsDigit(rune(s[i+1]))):
			start := i
			i++
			for i < len(s) && (unicode.IsDigit(rune(s[i])) || s[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: s[start:i], pos: start})
		case r == '\'' || r == '"':
			start := i
			var b strings.Builder
			i++
			closed := false
			for i < len(s) {
				c := s[i]
				if c == '\\' && i+1 < len(s) {
					b.WriteByte(s[i+1])
					i += 2
					continue
				}
				if c == byte(r) {
					closed = true
					i++
					break
				}
				b.WriteByte(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("%w: unterminated string at %d", ErrInvalid, start)
			}
			toks = append(toks, token{kind: tokString, text: b.String(), pos: start})
		case strings.ContainsRune("*,=.", r):
			toks = append(toks, token{kind: tokSymbol, text: string(r), pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrInvalid, r, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.errorf("expected %s", strings.ToUpper(kw))
	}
	p.next()
	return nil
}

func (p *parser) expectSymbol(sym string) error {
	t := p.next()
	if t.kind != tokSymbol || t.text != sym {
		return fmt.Errorf("%w: expected %q at %d", ErrInvalid, sym, t.pos)
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at %d", ErrInvalid, fmt.Sprintf(format, args...), p.peek().pos)
}

func (p *parser) ident() (string, error) {
	t := p.next()
	if t.kind != tokIdent || keywords[strings.ToLower(t.text)] {
		return "", fmt.Errorf("%w: expected identifier at %d", ErrInvalid, t.pos)
	}
	return t.text, nil
}

// fieldRef parses alias.field and returns both halves.
func (p *parser) fieldRef() (string, string, error) {
	alias, err := p.ident()
	if err != nil {
		return "", "", err
	}
	if err := p.expectSymbol("."); err != nil {
		return "", "", err
	}
	field, err := p.ident()
	if err != nil {
		return "", "", err
	}
	return alias, field, nil
}

func (p *parser) parse() (Query, error) {
	var q Query
	if err := p.expectKeyword("select"); err != nil {
		return q, err
	}

	var refAliases []string
	if t := p.peek(); t.kind == tokSymbol && t.text == "*" {
		p.next()
	} else {
		for {
			alias, field, err := p.fieldRef()
			if err != nil {
				return q, err
			}
			refAliases = append(refAliases, alias)
			q.Fields = append(q.Fields, field)
			if t := p.peek(); t.kind != tokSymbol || t.text != "," {
				break
			}
			p.next()
		}
	}

	if err := p.expectKeyword("from"); err != nil {
		return q, err
	}
	alias, err := p.ident()
	if err != nil {
		return q, err
	}
	q.Alias = alias

	if p.isKeyword("where") {
		p.next()
		for {
			a, field, err := p.fieldRef()
			if err != nil {
				return q, err
			}
			refAliases = append(refAliases, a)
			if err := p.expectSymbol("="); err != nil {
				return q, err
			}
			v, err := p.literal()
			if err != nil {
				return q, err
			}
			q.Where = append(q.Where, Condition{Field: field, Value: v})
			if !p.isKeyword("and") {
				break
			}
			p.next()
		}
	}

	if p.isKeyword("offset") {
		p.next()
		off, err := p.count()
		if err != nil {
			return q, err
		}
		if err := p.expectKeyword("limit"); err != nil {
			return q, err
		}
		lim, err := p.count()
		if err != nil {
			return q, err
		}
		q = q.Page(off, lim)
	}

	if t := p.peek(); t.kind != tokEOF {
		return q, fmt.Errorf("%w: unexpected %q at %d", ErrInvalid, t.text, t.pos)
	}
	for _, a := range refAliases {
		if a != q.Alias {
			return q, fmt.Errorf("%w: unknown alias %q", ErrInvalid, a)
		}
	}
	return q, nil
}

func (p *parser) literal() (any, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return t.text, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q at %d", ErrInvalid, t.text, t.pos)
		}
		return f, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return nil, fmt.Errorf("%w: expected literal at %d", ErrInvalid, t.pos)
}

func (p *parser) count() (int, error) {
	t := p.next()
	if t.kind != tokNumber {
		return 0, fmt.Errorf("%w: expected number at %d", ErrInvalid, t.pos)
	}
	n, err := strconv.Atoi(t.text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: expected non-negative integer at %d", ErrInvalid, t.pos)
	}
	return n, nil
}
