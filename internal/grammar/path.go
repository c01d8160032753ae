package grammar

import (
	"strconv"
	"unicode"
)

// ParsePath parses a contraction path given as a flat or nested list of
// operand positions, e.g. "(0,1),(0,1)", "[[1,2],[0,1]]" or "0 1 0 1".
// Positions are consumed two at a time.
func ParsePath(s string) ([][2]int, error) {
	var positions []int
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsDigit(r):
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			n, err := strconv.Atoi(string(runes[start:i]))
			if err != nil {
				return nil, &SyntaxError{Offset: start, Char: r, Msg: "position out of range"}
			}
			positions = append(positions, n)
			continue
		case unicode.IsSpace(r), r == ',', r == ';', r == '(', r == ')', r == '[', r == ']':
		default:
			return nil, &SyntaxError{Offset: i, Char: r, Msg: "unexpected character in path"}
		}
		i++
	}
	if len(positions)%2 != 0 {
		return nil, &SyntaxError{Offset: len(runes), Msg: "path must contain pairs of positions"}
	}
	path := make([][2]int, 0, len(positions)/2)
	for i := 0; i < len(positions); i += 2 {
		path = append(path, [2]int{positions[i], positions[i+1]})
	}
	return path, nil
}
