package grammar

import "strings"

// Term is one node of a parsed bracket tree.
//
// A leaf has no children, a binary contraction has both, and a permutation
// has only Left.
type Term struct {
	Indices []string
	Left    *Term
	Right   *Term
}

// IsLeaf reports whether the term is an input tensor.
func (t *Term) IsLeaf() bool { return t.Left == nil && t.Right == nil }

// IsPermutation reports whether the term only reorders its single child.
func (t *Term) IsPermutation() bool { return t.Left != nil && t.Right == nil }

// ParseBracket parses bracket tree notation such as "[[a,b],[b,c]->[a,c]]".
func ParseBracket(s string) (*Term, error) {
	sc := newScanner(s)
	t, err := parseTree(sc)
	if err != nil {
		return nil, err
	}
	if !sc.done() {
		return nil, sc.errorf("unexpected trailing input")
	}
	return t, nil
}

func parseTree(sc *scanner) (*Term, error) {
	if err := sc.expect('['); err != nil {
		return nil, err
	}
	if sc.peek() != '[' {
		labels, err := parseLabels(sc)
		if err != nil {
			return nil, err
		}
		if err := sc.expect(']'); err != nil {
			return nil, err
		}
		return &Term{Indices: labels}, nil
	}

	left, err := parseTree(sc)
	if err != nil {
		return nil, err
	}
	t := &Term{Left: left}
	switch sc.peek() {
	case '+', ',':
		sc.next()
		if t.Right, err = parseTree(sc); err != nil {
			return nil, err
		}
	case '-':
	default:
		return nil, sc.errorf("expected '+', ',' or '->' after subtree")
	}
	if err := sc.expectArrow(); err != nil {
		return nil, err
	}
	if err := sc.expect('['); err != nil {
		return nil, err
	}
	if t.Indices, err = parseLabels(sc); err != nil {
		return nil, err
	}
	if err := sc.expect(']'); err != nil {
		return nil, err
	}
	if err := sc.expect(']'); err != nil {
		return nil, err
	}
	return t, nil
}

func parseLabels(sc *scanner) ([]string, error) {
	labels := []string{}
	if sc.peek() == ']' {
		return labels, nil
	}
	for {
		var b strings.Builder
		for isLabelRune(sc.peek()) {
			b.WriteRune(sc.next())
		}
		if b.Len() == 0 {
			return nil, sc.errorf("expected index label")
		}
		labels = append(labels, b.String())
		if sc.peek() != ',' {
			return labels, nil
		}
		sc.next()
	}
}

// FormatBracket serializes a term back to bracket notation. The result parses
// to a term of identical shape.
func FormatBracket(t *Term) string {
	var b strings.Builder
	writeTerm(&b, t)
	return b.String()
}

func writeTerm(b *strings.Builder, t *Term) {
	b.WriteByte('[')
	if t.IsLeaf() {
		b.WriteString(strings.Join(t.Indices, ","))
		b.WriteByte(']')
		return
	}
	writeTerm(b, t.Left)
	if t.Right != nil {
		b.WriteByte(',')
		writeTerm(b, t.Right)
	}
	b.WriteString("->[")
	b.WriteString(strings.Join(t.Indices, ","))
	b.WriteString("]]")
}
