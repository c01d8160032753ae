package grammar

import (
	"strings"
	"unicode"
)

// Expression is a parsed flat einsum string.
type Expression struct {
	Inputs [][]string // Label sequence of every input operand, in order
	Output []string   // Label sequence of the result
}

// ParseEinsum parses "operand(,operand)*->operand" where every letter or digit
// is one label. Operands may be empty (scalars).
func ParseEinsum(s string) (*Expression, error) {
	sc := newScanner(s)
	expr := &Expression{Inputs: [][]string{{}}}
	current := &expr.Inputs[0]
	arrow := false

	for !sc.done() {
		r := sc.peek()
		switch {
		case r == ',':
			if arrow {
				return nil, sc.errorf("output must be a single operand")
			}
			sc.next()
			expr.Inputs = append(expr.Inputs, []string{})
			current = &expr.Inputs[len(expr.Inputs)-1]
		case r == '-':
			if arrow {
				return nil, sc.errorf("expression contains more than one '->'")
			}
			sc.next()
			if err := sc.expect('>'); err != nil {
				return nil, err
			}
			arrow = true
			expr.Output = []string{}
			current = &expr.Output
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sc.next()
			*current = append(*current, string(r))
		default:
			return nil, sc.errorf("unexpected character")
		}
	}
	if !arrow {
		return nil, sc.errorf("expected '->'")
	}
	return expr, nil
}

// String formats the expression back to flat einsum notation.
func (e *Expression) String() string {
	var b strings.Builder
	for i, in := range e.Inputs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strings.Join(in, ""))
	}
	b.WriteString("->")
	b.WriteString(strings.Join(e.Output, ""))
	return b.String()
}
