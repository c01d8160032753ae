package grammar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBracket_Binary(t *testing.T) {
	term, err := ParseBracket("[[a,b],[b,c]->[a,c]]")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, term.Indices)
	require.NotNil(t, term.Left)
	require.NotNil(t, term.Right)
	assert.True(t, term.Left.IsLeaf())
	assert.Equal(t, []string{"a", "b"}, term.Left.Indices)
	assert.Equal(t, []string{"b", "c"}, term.Right.Indices)
}

func TestParseBracket_PlusSeparator(t *testing.T) {
	a, err := ParseBracket("[[a,b]+[b,c]->[a,c]]")
	require.NoError(t, err)
	b, err := ParseBracket("[[a,b],[b,c]->[a,c]]")
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestParseBracket_Permutation(t *testing.T) {
	term, err := ParseBracket("[[a,b]->[b,a]]")
	require.NoError(t, err)
	assert.True(t, term.IsPermutation())
	assert.Equal(t, []string{"b", "a"}, term.Indices)
	assert.Equal(t, []string{"a", "b"}, term.Left.Indices)
}

func TestParseBracket_Tokens(t *testing.T) {
	term, err := ParseBracket("[ [ batch , i ] , [ i , j1 ] -> [ batch , j1 ] ]")
	require.NoError(t, err)
	assert.Equal(t, []string{"batch", "j1"}, term.Indices)
	assert.Equal(t, []string{"batch", "i"}, term.Left.Indices)
}

func TestParseBracket_ScalarLeaf(t *testing.T) {
	term, err := ParseBracket("[]")
	require.NoError(t, err)
	assert.True(t, term.IsLeaf())
	assert.Empty(t, term.Indices)
}

func TestParseBracket_RoundTrip(t *testing.T) {
	inputs := []string{
		"[[a,b],[b,c]->[a,c]]",
		"[[[a,b],[b,c]->[a,c]],[c,d]->[a,d]]",
		"[[[i,j]->[j,i]],[[k,l],[l,m]->[k,m]]->[i,j,k,m]]",
		"[x]",
	}
	for _, in := range inputs {
		term, err := ParseBracket(in)
		require.NoError(t, err, in)

		out := FormatBracket(term)
		again, err := ParseBracket(out)
		require.NoError(t, err, out)
		assert.Equal(t, term, again, in)
	}
}

func TestParseBracket_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
		char   rune
	}{
		{"missing open", "a,b]", 0, 'a'},
		{"unterminated leaf", "[a,b", 4, 0},
		{"missing head", "[[a],[b]]", 8, ']'},
		{"bad separator", "[[a];[b]->[a]]", 4, ';'},
		{"empty label", "[a,,b]", 3, ','},
		{"trailing input", "[a]x", 3, 'x'},
		{"missing closing bracket", "[[a],[b]->[a,b]", 15, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBracket(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.offset, se.Offset)
			assert.Equal(t, tt.char, se.Char)
		})
	}
}
