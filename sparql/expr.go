package sparql

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/vocabulary"
)

// errType marks an expression error. A filter whose expression errors
// rejects the row; it does not fail the query.
var errType = errors.New("expression type error")

var numericTypes = map[string]bool{
	vocabulary.XSDInteger:                 true,
	vocabulary.XSDDecimal:                 true,
	vocabulary.XSDDouble:                  true,
	vocabulary.XSD + "float":              true,
	vocabulary.XSD + "int":                true,
	vocabulary.XSD + "long":               true,
	vocabulary.XSD + "short":              true,
	vocabulary.XSD + "nonNegativeInteger": true,
	vocabulary.XSD + "positiveInteger":    true,
}

var (
	trueTerm  = rdf.TypedLiteral("true", vocabulary.XSDBoolean)
	falseTerm = rdf.TypedLiteral("false", vocabulary.XSDBoolean)
)

func boolTerm(b bool) rdf.Term {
	if b {
		return trueTerm
	}
	return falseTerm
}

func (e *evaluator) test(x Expr, row Binding, graph *Node) (bool, error) {
	b, err := e.ebv(x, row, graph)
	if errors.Is(err, errType) {
		return false, nil
	}
	return b, err
}

// ebv evaluates x to its effective boolean value.
func (e *evaluator) ebv(x Expr, row Binding, graph *Node) (bool, error) {
	v, err := e.value(x, row, graph)
	if err != nil {
		return false, err
	}
	return effectiveBool(v)
}

func effectiveBool(t rdf.Term) (bool, error) {
	if !t.IsLiteral() {
		return false, errType
	}
	switch {
	case t.Datatype == vocabulary.XSDBoolean:
		return t.Value == "true" || t.Value == "1", nil
	case numericTypes[t.Datatype]:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return false, nil
		}
		return f != 0 && !math.IsNaN(f), nil
	case t.Datatype == "" || t.Datatype == vocabulary.XSDString:
		return t.Value != "", nil
	default:
		return false, errType
	}
}

func (e *evaluator) value(x Expr, row Binding, graph *Node) (rdf.Term, error) {
	switch v := x.(type) {
	case *TermExpr:
		if !v.Node.IsVar() {
			return v.Node.Term, nil
		}
		if t, ok := row[v.Node.Var]; ok {
			return t, nil
		}
		return rdf.Term{}, errType

	case *NotExpr:
		b, err := e.ebv(v.Operand, row, graph)
		if err != nil {
			return rdf.Term{}, err
		}
		return boolTerm(!b), nil

	case *ExistsExpr:
		rows, err := e.group(v.Group, []Binding{row}, graph)
		if err != nil {
			return rdf.Term{}, err
		}
		return boolTerm((len(rows) > 0) != v.Not), nil

	case *BinaryExpr:
		return e.binary(v, row, graph)

	case *CallExpr:
		return e.call(v, row, graph)
	}
	return rdf.Term{}, errType
}

func (e *evaluator) binary(b *BinaryExpr, row Binding, graph *Node) (rdf.Term, error) {
	if b.Op == "&&" || b.Op == "||" {
		left, lerr := e.ebv(b.Left, row, graph)
		right, rerr := e.ebv(b.Right, row, graph)
		for _, err := range []error{lerr, rerr} {
			if err != nil && !errors.Is(err, errType) {
				return rdf.Term{}, err
			}
		}
		if b.Op == "&&" {
			switch {
			case lerr == nil && !left, rerr == nil && !right:
				return falseTerm, nil
			case lerr == nil && rerr == nil:
				return trueTerm, nil
			}
			return rdf.Term{}, errType
		}
		switch {
		case lerr == nil && left, rerr == nil && right:
			return trueTerm, nil
		case lerr == nil && rerr == nil:
			return falseTerm, nil
		}
		return rdf.Term{}, errType
	}

	left, err := e.value(b.Left, row, graph)
	if err != nil {
		return rdf.Term{}, err
	}
	right, err := e.value(b.Right, row, graph)
	if err != nil {
		return rdf.Term{}, err
	}
	ok, err := compare(b.Op, left, right)
	if err != nil {
		return rdf.Term{}, err
	}
	return boolTerm(ok), nil
}

func compare(op string, a, b rdf.Term) (bool, error) {
	if x, ok := numeric(a); ok {
		if y, ok := numeric(b); ok {
			switch op {
			case "=":
				return x == y, nil
			case "!=":
				return x != y, nil
			case "<":
				return x < y, nil
			case ">":
				return x > y, nil
			case "<=":
				return x <= y, nil
			case ">=":
				return x >= y, nil
			}
		}
	}

	switch op {
	case "=":
		return sameValue(a, b), nil
	case "!=":
		return !sameValue(a, b), nil
	}

	if !isSimple(a) || !isSimple(b) {
		return false, errType
	}
	c := strings.Compare(a.Value, b.Value)
	switch op {
	case "<":
		return c < 0, nil
	case ">":
		return c > 0, nil
	case "<=":
		return c <= 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, errType
}

// sameValue is term equality treating plain literals and xsd:string as one.
func sameValue(a, b rdf.Term) bool {
	if isSimple(a) && isSimple(b) {
		return a.Value == b.Value
	}
	return a == b
}

func isSimple(t rdf.Term) bool {
	return t.IsLiteral() && t.Lang == "" && (t.Datatype == "" || t.Datatype == vocabulary.XSDString)
}

func numeric(t rdf.Term) (float64, bool) {
	if !t.IsLiteral() || !numericTypes[t.Datatype] {
		return 0, false
	}
	f, err := strconv.ParseFloat(t.Value, 64)
	return f, err == nil
}

func (e *evaluator) call(c *CallExpr, row Binding, graph *Node) (rdf.Term, error) {
	if c.Name == "BOUND" {
		_, ok := row[c.Args[0].(*TermExpr).Node.Var]
		return boolTerm(ok), nil
	}

	args := make([]rdf.Term, len(c.Args))
	for i, a := range c.Args {
		v, err := e.value(a, row, graph)
		if err != nil {
			return rdf.Term{}, err
		}
		args[i] = v
	}
	arg := args[0]

	switch c.Name {
	case "ISIRI", "ISURI":
		return boolTerm(arg.IsIRI()), nil
	case "ISLITERAL":
		return boolTerm(arg.IsLiteral()), nil
	case "ISBLANK":
		return boolTerm(arg.IsBlank()), nil
	case "SAMETERM":
		return boolTerm(arg == args[1]), nil
	case "STR":
		if arg.IsBlank() {
			return rdf.Term{}, errType
		}
		return rdf.Literal(arg.Value), nil
	case "LANG":
		if !arg.IsLiteral() {
			return rdf.Term{}, errType
		}
		return rdf.Literal(arg.Lang), nil
	case "DATATYPE":
		if !arg.IsLiteral() {
			return rdf.Term{}, errType
		}
		switch {
		case arg.Lang != "":
			return rdf.IRI(vocabulary.RDF + "langString"), nil
		case arg.Datatype == "":
			return rdf.IRI(vocabulary.XSDString), nil
		}
		return rdf.IRI(arg.Datatype), nil
	}

	// The remaining functions take string literals.
	for _, a := range args {
		if !a.IsLiteral() {
			return rdf.Term{}, errType
		}
	}
	switch c.Name {
	case "LCASE":
		arg.Value = strings.ToLower(arg.Value)
		return arg, nil
	case "UCASE":
		arg.Value = strings.ToUpper(arg.Value)
		return arg, nil
	case "STRLEN":
		return rdf.TypedLiteral(strconv.Itoa(utf8.RuneCountInString(arg.Value)), vocabulary.XSDInteger), nil
	case "CONTAINS":
		return boolTerm(strings.Contains(arg.Value, args[1].Value)), nil
	case "STRSTARTS":
		return boolTerm(strings.HasPrefix(arg.Value, args[1].Value)), nil
	case "STRENDS":
		return boolTerm(strings.HasSuffix(arg.Value, args[1].Value)), nil
	case "REGEX":
		pattern := args[1].Value
		if len(args) == 3 && args[2].Value != "" {
			flags := strings.Map(func(r rune) rune {
				if strings.ContainsRune("ism", r) {
					return r
				}
				return -1
			}, args[2].Value)
			if flags != "" {
				pattern = "(?" + flags + ")" + pattern
			}
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return rdf.Term{}, errType
		}
		return boolTerm(re.MatchString(arg.Value)), nil
	}
	return rdf.Term{}, errType
}
