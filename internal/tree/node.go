package tree

import (
	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/tensor"
)

// Node is one tensor of a contraction tree: an input (leaf), the result of a
// binary contraction, or a permutation of its single child.
type Node struct {
	ID        int          // Unique within the owning tree, stable for the node's lifetime
	Indices   []string     // Physical dimension order
	Sizes     tensor.Shape // Parallel to Indices
	Left      *Node
	Right     *Node
	Removable bool // Inserted by AddPermutationNode

	// Annotations written by classification and metrics passes.
	Dims                 *classify.Classification
	DimsErr              error
	Operations           int64
	ByteAccesses         int64
	Percentage           float64
	NormalizedPercentage float64
}

// IsLeaf reports whether the node is an input tensor.
func (n *Node) IsLeaf() bool { return n.Left == nil && n.Right == nil }

// IsBinary reports whether the node contracts two operands.
func (n *Node) IsBinary() bool { return n.Left != nil && n.Right != nil }

// IsPermutation reports whether the node only reorders its single child.
func (n *Node) IsPermutation() bool { return n.Left != nil && n.Right == nil }

// Faulty reports whether classification of the node failed.
func (n *Node) Faulty() bool { return n.DimsErr != nil }

// clone deep-copies the subtree rooted at n, identities included.
func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Indices = append([]string(nil), n.Indices...)
	c.Sizes = n.Sizes.Clone()
	c.Left = n.Left.clone()
	c.Right = n.Right.clone()
	if n.Dims != nil {
		c.Dims = cloneClassification(n.Dims)
	}
	return &c
}

func cloneClassification(c *classify.Classification) *classify.Classification {
	cp := func(d classify.Dims) classify.Dims {
		return classify.Dims{
			C: append([]string(nil), d.C...),
			M: append([]string(nil), d.M...),
			N: append([]string(nil), d.N...),
			K: append([]string(nil), d.K...),
		}
	}
	return &classify.Classification{Primitive: cp(c.Primitive), Loop: cp(c.Loop)}
}

func (n *Node) resetAnnotations() {
	n.Dims, n.DimsErr = nil, nil
	n.Operations, n.ByteAccesses = 0, 0
	n.Percentage, n.NormalizedPercentage = 0, 0
}
