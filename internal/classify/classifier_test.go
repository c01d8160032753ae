package classify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// requireComplete checks that every label of the three sequences lands in
// exactly one bucket.
func requireComplete(t *testing.T, c *Classification, node, left, right []string) {
	t.Helper()
	want := map[string]bool{}
	for _, seq := range [][]string{node, left, right} {
		for _, l := range seq {
			want[l] = true
		}
	}
	seen := map[string]int{}
	for b := BucketCB; b <= BucketBK; b++ {
		for _, l := range c.Labels(b) {
			seen[l]++
		}
	}
	for l := range want {
		assert.Equal(t, 1, seen[l], "label %q", l)
	}
	assert.Len(t, seen, len(want))
}

func TestClassify_Empty(t *testing.T) {
	c, err := Classify(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Classification{}, *c)
}

func TestClassify_IdenticalSequences(t *testing.T) {
	for _, s := range []string{"a", "ab", "abcde"} {
		seq := labels(s)
		c, err := Classify(seq, seq, seq)
		require.NoError(t, err, s)

		assert.Equal(t, seq, c.Primitive.C, s)
		assert.Equal(t, len(seq), c.Primitive.Len(), s)
		assert.Zero(t, c.Loop.Len(), s)
		requireComplete(t, c, seq, seq, seq)
	}
}

func TestClassify_RepeatedPrimitiveCategories(t *testing.T) {
	// Two trailing M labels and two N labels stay in the primitive kernel.
	node, left, right := labels("pqmn"), labels("kmn"), labels("pqk")
	c, err := Classify(node, left, right)
	require.NoError(t, err)

	assert.Equal(t, labels("mn"), c.Primitive.M)
	assert.Equal(t, []string{"k"}, c.Primitive.K)
	assert.Equal(t, labels("pq"), c.Primitive.N)
	assert.Zero(t, c.Loop.Len())
	requireComplete(t, c, node, left, right)
}

func TestClassify_SecondContractionIsLoop(t *testing.T) {
	node, left, right := labels("nm"), labels("jkm"), labels("njk")
	c, err := Classify(node, left, right)
	require.NoError(t, err)

	assert.Equal(t, []string{"m"}, c.Primitive.M)
	assert.Equal(t, []string{"k"}, c.Primitive.K)
	assert.Equal(t, []string{"j"}, c.Loop.K)
	assert.Equal(t, []string{"n"}, c.Loop.N)
	requireComplete(t, c, node, left, right)
}

func TestClassify_GEMM(t *testing.T) {
	c, err := Classify(labels("nm"), labels("km"), labels("nk"))
	require.NoError(t, err)

	assert.Equal(t, []string{"m"}, c.Primitive.M)
	assert.Equal(t, []string{"k"}, c.Primitive.K)
	assert.Equal(t, []string{"n"}, c.Primitive.N)
	assert.Empty(t, c.Primitive.C)
	assert.Equal(t, 0, c.Loop.Len())
}

func TestClassify_BatchedGEMM(t *testing.T) {
	c, err := Classify(labels("bnmc"), labels("bkmc"), labels("bnkc"))
	require.NoError(t, err)

	assert.Equal(t, []string{"c"}, c.Primitive.C)
	assert.Equal(t, []string{"m"}, c.Primitive.M)
	assert.Equal(t, []string{"k"}, c.Primitive.K)
	assert.Equal(t, []string{"n"}, c.Primitive.N)
	assert.Equal(t, []string{"b"}, c.Loop.C)
}

func TestClassify_LeftOnlyLoops(t *testing.T) {
	node, left, right := labels("ijklm"), labels("ijk"), labels("lm")
	c, err := Classify(node, left, right)
	require.NoError(t, err)

	assert.Equal(t, []string{"i", "j", "k"}, c.Loop.M)
	assert.Equal(t, []string{"m"}, c.Primitive.N)
	assert.Equal(t, []string{"l"}, c.Loop.N)
	requireComplete(t, c, node, left, right)
}

func TestClassify_RightLeadingLoops(t *testing.T) {
	node, left, right := labels("ijklm"), labels("kl"), labels("ijm")
	c, err := Classify(node, left, right)
	require.NoError(t, err)

	assert.Equal(t, []string{"i", "j"}, c.Loop.N)
	assert.Equal(t, []string{"m"}, c.Primitive.N)
	assert.Equal(t, []string{"k", "l"}, c.Loop.M)
	requireComplete(t, c, node, left, right)
}

func TestClassify_TrailingContraction(t *testing.T) {
	node, left, right := labels("km"), labels("kmn"), labels("kmn")
	c, err := Classify(node, left, right)
	require.NoError(t, err)

	assert.Equal(t, []string{"n"}, c.Primitive.K)
	// C after K violates the priority order.
	assert.Empty(t, c.Primitive.C)
	assert.Equal(t, []string{"k", "m"}, c.Loop.C)
	requireComplete(t, c, node, left, right)
}

func TestClassify_LeftoverContraction(t *testing.T) {
	// Matrix-vector product: k is only reachable after the node scan.
	c, err := Classify(labels("m"), labels("km"), labels("k"))
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, c.Primitive.M)
	assert.Equal(t, []string{"k"}, c.Primitive.K)
}

func TestClassify_DotProduct(t *testing.T) {
	c, err := Classify(nil, labels("ab"), labels("ab"))
	require.NoError(t, err)
	// The trailing label of the right operand claims the single kb slot.
	assert.Equal(t, []string{"b"}, c.Primitive.K)
	assert.Equal(t, []string{"a"}, c.Loop.K)
}

func TestClassify_LoopContractionInterleaved(t *testing.T) {
	node, left, right := labels("nm"), labels("mk"), labels("kn")
	c, err := Classify(node, left, right)
	require.NoError(t, err)

	assert.Equal(t, 0, c.Primitive.Len())
	assert.Equal(t, []string{"k"}, c.Loop.K)
	assert.Equal(t, []string{"m"}, c.Loop.M)
	assert.Equal(t, []string{"n"}, c.Loop.N)
}

func TestClassify_Faulty(t *testing.T) {
	tests := []struct {
		name              string
		node, left, right string
		label             string
	}{
		{"label only in left", "m", "mz", "k", "z"},
		{"unmatched contraction in loop", "nm", "mz", "n", "z"},
		{"label only in right after scan", "", "", "k", "k"},
		{"label only in left after scan", "", "k", "", "k"},
		{"node label missing from operands", "x", "a", "a", "x"},
		{"duplicate in left", "m", "mm", "", "m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Classify(labels(tt.node), labels(tt.left), labels(tt.right))
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, ErrFaultyContraction))
			assert.False(t, errors.Is(err, ErrInternal))

			var ce *Error
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.label, ce.Label)
		})
	}
}

func TestClassify_DoesNotMutateInputs(t *testing.T) {
	node, left, right := labels("bnm"), labels("bkm"), labels("bnk")
	_, err := Classify(node, left, right)
	require.NoError(t, err)
	assert.Equal(t, labels("bnm"), node)
	assert.Equal(t, labels("bkm"), left)
	assert.Equal(t, labels("bnk"), right)
}

func TestClassify_Deterministic(t *testing.T) {
	a, err := Classify(labels("abcd"), labels("aced"), labels("bed"))
	require.NoError(t, err)
	b, err := Classify(labels("abcd"), labels("aced"), labels("bed"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestClassify_EmptyLabelIsInternal(t *testing.T) {
	_, err := Classify([]string{""}, []string{""}, []string{""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestClassification_Lookups(t *testing.T) {
	c, err := Classify(labels("bnm"), labels("bkm"), labels("bnk"))
	require.NoError(t, err)

	b, ok := c.Bucket("k")
	require.True(t, ok)
	assert.Equal(t, BucketKB, b)
	assert.Equal(t, "kb", b.String())

	cat, ok := c.Category("b")
	require.True(t, ok)
	assert.Equal(t, CategoryC, cat)

	_, ok = c.Bucket("z")
	assert.False(t, ok)
}
