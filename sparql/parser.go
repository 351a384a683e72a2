package sparql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/vocabulary"
)

// builtins are the supported filter functions, keyed by upper-case name,
// with their arity.
var builtins = map[string]int{
	"BOUND":     1,
	"ISIRI":     1,
	"ISURI":     1,
	"ISLITERAL": 1,
	"ISBLANK":   1,
	"STR":       1,
	"LANG":      1,
	"DATATYPE":  1,
	"LCASE":     1,
	"UCASE":     1,
	"STRLEN":    1,
	"CONTAINS":  2,
	"STRSTARTS": 2,
	"STRENDS":   2,
	"SAMETERM":  2,
	"REGEX":     -1,
}

// Parser parses a query.
type Parser struct {
	input    string
	pos      int
	length   int
	prefixes map[string]string
	base     string
	seen     map[string]struct{}
	vars     []string
}

// NewParser creates a parser for input. Prefixes in defaults are visible to
// the query unless it redeclares them.
func NewParser(input string, defaults map[string]string) *Parser {
	p := &Parser{
		input:    input,
		length:   len(input),
		prefixes: make(map[string]string, len(defaults)),
		seen:     make(map[string]struct{}),
	}
	for k, v := range defaults {
		p.prefixes[k] = v
	}
	return p
}

// Parse parses query with no predeclared prefixes.
func Parse(query string) (*Query, error) {
	return NewParser(query, nil).Parse()
}

// Parse parses the whole input.
func (p *Parser) Parse() (*Query, error) {
	if err := p.parsePrologue(); err != nil {
		return nil, err
	}

	q := &Query{Limit: -1}
	p.skipWhitespace()
	switch {
	case p.matchKeyword("SELECT"):
		q.Type = QueryTypeSelect
		if err := p.parseProjection(q); err != nil {
			return nil, err
		}
	case p.matchKeyword("ASK"):
		q.Type = QueryTypeAsk
	default:
		return nil, p.errorf("expected SELECT or ASK")
	}

	p.skipWhitespace()
	p.matchKeyword("WHERE")
	where, err := p.parseGroup()
	if err != nil {
		return nil, err
	}
	q.Where = where

	if err := p.parseModifiers(q); err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos < p.length {
		return nil, p.errorf("unexpected trailing input")
	}
	q.allVars = p.vars
	return q, nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *Parser) parsePrologue() error {
	for {
		p.skipWhitespace()
		switch {
		case p.matchKeyword("PREFIX"):
			p.skipWhitespace()
			start := p.pos
			for p.pos < p.length && p.input[p.pos] != ':' && isNameChar(p.input[p.pos]) {
				p.pos++
			}
			name := p.input[start:p.pos]
			if !p.match(":") {
				return p.errorf("expected ':' after prefix name")
			}
			p.skipWhitespace()
			iri, err := p.parseIRIRef()
			if err != nil {
				return err
			}
			p.prefixes[name] = iri
		case p.matchKeyword("BASE"):
			p.skipWhitespace()
			iri, err := p.parseIRIRef()
			if err != nil {
				return err
			}
			p.base = iri
		default:
			return nil
		}
	}
}

func (p *Parser) parseProjection(q *Query) error {
	p.skipWhitespace()
	if p.matchKeyword("DISTINCT") {
		q.Distinct = true
	} else if p.matchKeyword("REDUCED") {
		q.Distinct = true
	}
	p.skipWhitespace()
	if p.match("*") {
		return nil
	}
	for {
		p.skipWhitespace()
		if c := p.peek(); c != '?' && c != '$' {
			break
		}
		v, err := p.parseVariable()
		if err != nil {
			return err
		}
		q.Vars = append(q.Vars, v)
	}
	if len(q.Vars) == 0 {
		return p.errorf("expected variables or '*' after SELECT")
	}
	return nil
}

func (p *Parser) parseModifiers(q *Query) error {
	for {
		p.skipWhitespace()
		switch {
		case p.matchKeyword("LIMIT"):
			n, err := p.parseInteger()
			if err != nil {
				return err
			}
			q.Limit = n
		case p.matchKeyword("OFFSET"):
			n, err := p.parseInteger()
			if err != nil {
				return err
			}
			q.Offset = n
		default:
			return nil
		}
	}
}

func (p *Parser) parseInteger() (int, error) {
	p.skipWhitespace()
	digits := p.readWhile(func(c byte) bool { return c >= '0' && c <= '9' })
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, p.errorf("expected integer")
	}
	return n, nil
}

// parseGroup parses "{ ... }".
func (p *Parser) parseGroup() (*GroupPattern, error) {
	p.skipWhitespace()
	if !p.match("{") {
		return nil, p.errorf("expected '{'")
	}
	g := &GroupPattern{}

	for {
		p.skipWhitespace()
		if p.pos >= p.length {
			return nil, p.errorf("unclosed '{'")
		}

		switch {
		case p.match("}"):
			return g, nil
		case p.match("."):
			continue
		case p.peek() == '{':
			el, err := p.parseGroupOrUnion()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, el)
		case p.matchKeyword("OPTIONAL"):
			inner, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, &OptionalPattern{Group: inner})
		case p.matchKeyword("GRAPH"):
			p.skipWhitespace()
			name, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			inner, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, &GraphPattern{Name: name, Group: inner})
		case p.matchKeyword("FILTER"):
			e, err := p.parseConstraint()
			if err != nil {
				return nil, err
			}
			g.Filters = append(g.Filters, e)
		default:
			triples, err := p.parseTriplesSameSubject()
			if err != nil {
				return nil, err
			}
			for _, t := range triples {
				g.Elements = append(g.Elements, t)
			}
		}
	}
}

func (p *Parser) parseGroupOrUnion() (Element, error) {
	first, err := p.parseGroup()
	if err != nil {
		return nil, err
	}
	u := &UnionPattern{Alternatives: []*GroupPattern{first}}
	for {
		p.skipWhitespace()
		if !p.matchKeyword("UNION") {
			break
		}
		next, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		u.Alternatives = append(u.Alternatives, next)
	}
	if len(u.Alternatives) == 1 {
		return first, nil
	}
	return u, nil
}

func (p *Parser) parseTriplesSameSubject() ([]*TriplePattern, error) {
	subject, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if !subject.IsVar() && subject.Term.IsLiteral() {
		return nil, p.errorf("literal in subject position")
	}

	var out []*TriplePattern
	for {
		p.skipWhitespace()
		verb, err := p.parseVerb()
		if err != nil {
			return nil, err
		}
		for {
			p.skipWhitespace()
			object, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			out = append(out, &TriplePattern{Subject: subject, Predicate: verb, Object: object})
			p.skipWhitespace()
			if !p.match(",") {
				break
			}
		}
		p.skipWhitespace()
		if !p.match(";") {
			return out, nil
		}
		for p.match(";") {
			p.skipWhitespace()
		}
		p.skipWhitespace()
		if c := p.peek(); c == '.' || c == '}' {
			return out, nil
		}
	}
}

func (p *Parser) parseVerb() (Node, error) {
	if p.peek() == 'a' && (p.pos+1 >= p.length || !isNameChar(p.input[p.pos+1]) && p.input[p.pos+1] != ':') {
		p.pos++
		return Node{Term: rdf.IRI(vocabulary.RDFType)}, nil
	}
	n, err := p.parseNode()
	if err != nil {
		return Node{}, err
	}
	if !n.IsVar() && !n.Term.IsIRI() {
		return Node{}, p.errorf("predicate must be an IRI or variable")
	}
	return n, nil
}

// parseNode parses a variable, IRI, prefixed name, blank node label or
// literal. Blank node labels act as non-projected variables.
func (p *Parser) parseNode() (Node, error) {
	p.skipWhitespace()
	if p.pos >= p.length {
		return Node{}, p.errorf("unexpected end of query")
	}

	ch := p.input[p.pos]
	switch {
	case ch == '?' || ch == '$':
		v, err := p.parseVariable()
		return Node{Var: v}, err
	case ch == '<':
		iri, err := p.parseIRIRef()
		return Node{Term: rdf.IRI(iri)}, err
	case ch == '_' && p.pos+1 < p.length && p.input[p.pos+1] == ':':
		p.pos += 2
		label := p.readWhile(isNameChar)
		return Node{Var: "_:" + label}, nil
	case ch == '"' || ch == '\'':
		t, err := p.parseStringLiteral()
		return Node{Term: t}, err
	case (ch >= '0' && ch <= '9') || ch == '-' || ch == '+':
		t, err := p.parseNumericLiteral()
		return Node{Term: t}, err
	case ch == '[' || ch == '(':
		return Node{}, p.errorf("blank node property lists and collections are not supported")
	case p.matchKeyword("true"):
		return Node{Term: rdf.TypedLiteral("true", vocabulary.XSDBoolean)}, nil
	case p.matchKeyword("false"):
		return Node{Term: rdf.TypedLiteral("false", vocabulary.XSDBoolean)}, nil
	case isNameChar(ch) || ch == ':':
		iri, err := p.parsePrefixedName()
		return Node{Term: rdf.IRI(iri)}, err
	}
	return Node{}, p.errorf("unexpected character %q", ch)
}

func (p *Parser) parseVariable() (string, error) {
	p.pos++ // '?' or '$'
	name := p.readWhile(isNameChar)
	if name == "" {
		return "", p.errorf("empty variable name")
	}
	if _, ok := p.seen[name]; !ok {
		p.seen[name] = struct{}{}
		p.vars = append(p.vars, name)
	}
	return name, nil
}

func (p *Parser) parseIRIRef() (string, error) {
	if !p.match("<") {
		return "", p.errorf("expected '<'")
	}
	start := p.pos
	for p.pos < p.length && p.input[p.pos] != '>' {
		if c := p.input[p.pos]; c == ' ' || c == '\n' || c == '<' {
			return "", p.errorf("unclosed IRI")
		}
		p.pos++
	}
	if p.pos >= p.length {
		return "", p.errorf("unclosed IRI")
	}
	iri := p.input[start:p.pos]
	p.pos++
	if p.base != "" && !strings.Contains(iri, ":") {
		iri = p.base + iri
	}
	return iri, nil
}

func (p *Parser) parsePrefixedName() (string, error) {
	start := p.pos
	prefix := p.readWhile(func(c byte) bool { return isNameChar(c) || c == '.' })
	if !p.match(":") {
		return "", p.errorf("unknown keyword %q", p.input[start:p.pos])
	}
	local := p.readLocal()
	base, ok := p.prefixes[prefix]
	if !ok {
		return "", p.errorf("undefined prefix %q", prefix)
	}
	return base + local, nil
}

// readLocal reads a prefixed-name local part. A '.' is only part of the
// name when another name character follows.
func (p *Parser) readLocal() string {
	start := p.pos
	for p.pos < p.length {
		c := p.input[p.pos]
		if isNameChar(c) || c == ':' || c == '%' {
			p.pos++
			continue
		}
		if c == '.' && p.pos+1 < p.length && isNameChar(p.input[p.pos+1]) {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

func (p *Parser) parseStringLiteral() (rdf.Term, error) {
	quote := p.input[p.pos]
	p.pos++
	var value strings.Builder
	for {
		if p.pos >= p.length || p.input[p.pos] == '\n' {
			return rdf.Term{}, p.errorf("unclosed string literal")
		}
		c := p.input[p.pos]
		if c == quote {
			p.pos++
			break
		}
		if c == '\\' && p.pos+1 < p.length {
			p.pos++
			switch p.input[p.pos] {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			default:
				value.WriteByte(p.input[p.pos])
			}
			p.pos++
			continue
		}
		value.WriteByte(c)
		p.pos++
	}

	if p.match("@") {
		lang := p.readWhile(func(c byte) bool { return isNameChar(c) && c != '_' })
		return rdf.LangLiteral(value.String(), lang), nil
	}
	if p.match("^^") {
		dt, err := p.parseNode()
		if err != nil {
			return rdf.Term{}, err
		}
		if dt.IsVar() || !dt.Term.IsIRI() {
			return rdf.Term{}, p.errorf("datatype must be an IRI")
		}
		return rdf.TypedLiteral(value.String(), dt.Term.Value), nil
	}
	return rdf.Literal(value.String()), nil
}

func (p *Parser) parseNumericLiteral() (rdf.Term, error) {
	start := p.pos
	if c := p.peek(); c == '+' || c == '-' {
		p.pos++
	}
	intPart := p.readWhile(isDigit)
	datatype := vocabulary.XSDInteger
	if p.peek() == '.' && p.pos+1 < p.length && isDigit(p.input[p.pos+1]) {
		p.pos++
		p.readWhile(isDigit)
		datatype = vocabulary.XSDDecimal
	} else if intPart == "" {
		return rdf.Term{}, p.errorf("expected number")
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if p.readWhile(isDigit) == "" {
			return rdf.Term{}, p.errorf("expected exponent")
		}
		datatype = vocabulary.XSDDouble
	}
	return rdf.TypedLiteral(p.input[start:p.pos], datatype), nil
}

// parseConstraint parses what follows FILTER.
func (p *Parser) parseConstraint() (Expr, error) {
	p.skipWhitespace()
	if p.peek() == '(' {
		return p.parseBracketted()
	}
	return p.parsePrimary()
}

func (p *Parser) parseBracketted() (Expr, error) {
	if !p.match("(") {
		return nil, p.errorf("expected '('")
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if !p.match(")") {
		return nil, p.errorf("expected ')'")
	}
	return e, nil
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		if !p.match("||") {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "||", Left: left, Right: right}
	}
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		if !p.match("&&") {
			return left, nil
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "&&", Left: left, Right: right}
	}
}

func (p *Parser) parseRelational() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	for _, op := range []string{"!=", "<=", ">=", "=", "<", ">"} {
		if p.match(op) {
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &BinaryExpr{Op: op, Left: left, Right: right}, nil
		}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	p.skipWhitespace()
	if p.peek() == '!' && !strings.HasPrefix(p.input[p.pos:], "!=") {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	p.skipWhitespace()
	if p.peek() == '(' {
		return p.parseBracketted()
	}
	if p.matchKeyword("NOT") {
		p.skipWhitespace()
		if !p.matchKeyword("EXISTS") {
			return nil, p.errorf("expected EXISTS after NOT")
		}
		g, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		return &ExistsExpr{Not: true, Group: g}, nil
	}
	if p.matchKeyword("EXISTS") {
		g, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		return &ExistsExpr{Group: g}, nil
	}

	if name, ok := p.peekBuiltin(); ok {
		p.pos += len(name)
		return p.parseCall(strings.ToUpper(name))
	}

	n, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	return &TermExpr{Node: n}, nil
}

// peekBuiltin reports a builtin name followed by '(' at the cursor.
func (p *Parser) peekBuiltin() (string, bool) {
	end := p.pos
	for end < p.length && isNameChar(p.input[end]) {
		end++
	}
	name := p.input[p.pos:end]
	if _, ok := builtins[strings.ToUpper(name)]; !ok {
		return "", false
	}
	rest := strings.TrimLeft(p.input[end:], " \t\r\n")
	return name, strings.HasPrefix(rest, "(")
}

func (p *Parser) parseCall(name string) (Expr, error) {
	p.skipWhitespace()
	p.match("(")
	call := &CallExpr{Name: name}
	for {
		p.skipWhitespace()
		if p.match(")") {
			break
		}
		if len(call.Args) > 0 && !p.match(",") {
			return nil, p.errorf("expected ',' in %s arguments", name)
		}
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}

	want := builtins[name]
	switch {
	case want >= 0 && len(call.Args) != want:
		return nil, p.errorf("%s takes %d argument(s)", name, want)
	case name == "REGEX" && (len(call.Args) < 2 || len(call.Args) > 3):
		return nil, p.errorf("REGEX takes 2 or 3 arguments")
	case name == "BOUND":
		if t, ok := call.Args[0].(*TermExpr); !ok || !t.Node.IsVar() {
			return nil, p.errorf("BOUND takes a variable")
		}
	}
	return call, nil
}

func (p *Parser) peek() byte {
	if p.pos >= p.length {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) match(s string) bool {
	if strings.HasPrefix(p.input[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

// matchKeyword consumes a case-insensitive keyword not followed by a name
// character.
func (p *Parser) matchKeyword(keyword string) bool {
	end := p.pos + len(keyword)
	if end > p.length || !strings.EqualFold(p.input[p.pos:end], keyword) {
		return false
	}
	if end < p.length && (isNameChar(p.input[end]) || p.input[end] == ':') {
		return false
	}
	p.pos = end
	return true
}

func (p *Parser) readWhile(pred func(byte) bool) string {
	start := p.pos
	for p.pos < p.length && pred(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *Parser) skipWhitespace() {
	for p.pos < p.length {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		case '#':
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c == '_' || c == '-' || c >= 0x80
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
