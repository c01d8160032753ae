package grammar

import "unicode"

// scanner walks the non-whitespace runes of an input while remembering the
// original character offset of each one.
type scanner struct {
	runes []rune
	offs  []int
	end   int
	pos   int
}

func newScanner(s string) *scanner {
	sc := &scanner{}
	i := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			sc.runes = append(sc.runes, r)
			sc.offs = append(sc.offs, i)
		}
		i++
	}
	sc.end = i
	return sc
}

func (s *scanner) done() bool { return s.pos >= len(s.runes) }

// peek returns the current rune, or 0 at end of input.
func (s *scanner) peek() rune {
	if s.done() {
		return 0
	}
	return s.runes[s.pos]
}

func (s *scanner) next() rune {
	r := s.peek()
	if !s.done() {
		s.pos++
	}
	return r
}

// offset returns the original offset of the current rune.
func (s *scanner) offset() int {
	if s.done() {
		return s.end
	}
	return s.offs[s.pos]
}

// errorf builds a SyntaxError at the current position.
func (s *scanner) errorf(msg string) *SyntaxError {
	if s.done() {
		return &SyntaxError{Offset: s.end, Msg: "unexpected end of input, " + msg}
	}
	return &SyntaxError{Offset: s.offset(), Char: s.peek(), Msg: msg}
}

func (s *scanner) expect(r rune) error {
	if s.peek() != r {
		return s.errorf("expected " + string(r))
	}
	s.pos++
	return nil
}

func (s *scanner) expectArrow() error {
	if err := s.expect('-'); err != nil {
		return err
	}
	return s.expect('>')
}

func isLabelRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
