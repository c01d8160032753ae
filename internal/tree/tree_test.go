package tree

import (
	"errors"
	"testing"

	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGenerator(t *testing.T) {
	var g IDGenerator
	assert.Equal(t, 0, g.Peek())
	assert.Equal(t, 0, g.Next())
	assert.Equal(t, 1, g.Next())
	assert.Equal(t, 2, g.Peek())
}

func TestIdentities_PerTree(t *testing.T) {
	a, err := Build("ab,bc->ac", [][2]int{{0, 1}})
	require.NoError(t, err)
	b, err := Build("ab,bc->ac", [][2]int{{0, 1}})
	require.NoError(t, err)

	var idsA, idsB []int
	a.Walk(func(n *Node) { idsA = append(idsA, n.ID) })
	b.Walk(func(n *Node) { idsB = append(idsB, n.ID) })
	assert.Equal(t, idsA, idsB)
}

func TestClone_PreservesIdentities(t *testing.T) {
	orig := chain(t)
	orig.Classify()
	c := orig.Clone()

	on, cn := orig.Nodes(), c.Nodes()
	require.Len(t, cn, len(on))
	for i := range on {
		assert.Equal(t, on[i].ID, cn[i].ID)
		assert.NotSame(t, on[i], cn[i])
		assert.Equal(t, on[i].Dims, cn[i].Dims)
	}
	assert.Equal(t, orig.NextID(), c.NextID())
}

func TestClone_IsIndependent(t *testing.T) {
	orig := chain(t)
	before := orig.String()
	c := orig.Clone()

	require.NoError(t, c.SwapChildren(c.Root.ID))
	_, err := c.UpdateIndices(IndexPatch{NodeID: c.Root.ID, Node: []string{"d", "a"}})
	require.NoError(t, err)
	_, err = c.AddPermutationNode(c.Root.ID)
	require.NoError(t, err)
	c.IndexSizes["a"] = 100

	assert.Equal(t, before, orig.String())
	assert.Equal(t, 2, orig.IndexSizes["a"])

	// Both trees keep handing out the same next identity without interference.
	assert.Equal(t, orig.NextID()+1, c.NextID())
	assert.Equal(t, orig.NextID(), orig.NewNode(nil).ID)
}

func TestFindAndParent(t *testing.T) {
	tr := chain(t)
	inter := tr.Root.Right

	assert.Same(t, inter, tr.Find(inter.ID))
	assert.Nil(t, tr.Find(1000))

	p, err := tr.Parent(inter.Left.ID)
	require.NoError(t, err)
	assert.Same(t, inter, p)

	p, err = tr.Parent(tr.Root.ID)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = tr.Parent(1000)
	assert.True(t, errors.Is(err, ErrNodeNotFound))
}

func TestLeaves(t *testing.T) {
	tr := chain(t)
	var got [][]string
	for _, l := range tr.Leaves() {
		got = append(got, l.Indices)
	}
	assert.Equal(t, [][]string{{"c", "d"}, {"a", "b"}, {"b", "c"}}, got)
}

func TestSetIndexSizes(t *testing.T) {
	tr := chain(t)
	tr.SetIndexSizes(map[string]int{"a": 7})

	assert.Equal(t, tensor.Shape{7, DefaultIndexSize}, tr.Root.Sizes)
	assert.Equal(t, tensor.Shape{DefaultIndexSize, DefaultIndexSize}, tr.Root.Left.Sizes)
}

func TestClassify_FailuresAreLocal(t *testing.T) {
	tr, err := FromBracket("[[[a,b],[b,c]->[a,c]],[[x],[y]->[z]]->[a,c,z]]")
	require.NoError(t, err)

	failures := tr.Classify()
	require.Len(t, failures, 1)
	assert.Equal(t, 5, failures[0].NodeID)
	assert.True(t, errors.Is(failures[0].Err, classify.ErrFaultyContraction))

	assert.NotNil(t, tr.Root.Dims)
	assert.NotNil(t, tr.Root.Left.Dims)
	assert.Nil(t, tr.Root.Right.Dims)
	assert.Nil(t, tr.Root.Left.Left.Dims)
}
