package tree

import (
	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/grammar"
	"github.com/born-ml/einsumtree/internal/tensor"
)

// DefaultIndexSize is the size of a label that has no entry in the index
// size table and no tree-specific default.
const DefaultIndexSize = 8

// IDGenerator hands out node identities. The zero value starts at 0.
type IDGenerator struct {
	next int
}

// Next returns a fresh identity.
func (g *IDGenerator) Next() int {
	id := g.next
	g.next++
	return id
}

// Peek returns the identity the next call to Next will return.
func (g *IDGenerator) Peek() int { return g.next }

// Tree is a contraction tree together with its index sizes.
type Tree struct {
	Root        *Node
	IndexSizes  map[string]int // Label sizes; missing labels use DefaultSize
	DefaultSize int            // Fallback size, DefaultIndexSize when <= 0

	ids IDGenerator
}

// New returns an empty tree with a fresh identity generator.
func New() *Tree {
	return &Tree{IndexSizes: map[string]int{}}
}

// NewNode creates a detached node owned by t with a fresh identity.
func (t *Tree) NewNode(indices []string) *Node {
	n := &Node{ID: t.ids.Next(), Indices: append([]string{}, indices...)}
	n.Sizes = t.shapeOf(n.Indices)
	return n
}

// NextID returns the identity the next created node will receive.
func (t *Tree) NextID() int { return t.ids.Peek() }

// Size returns the size of label.
func (t *Tree) Size(label string) int {
	if s, ok := t.IndexSizes[label]; ok && s > 0 {
		return s
	}
	if t.DefaultSize > 0 {
		return t.DefaultSize
	}
	return DefaultIndexSize
}

func (t *Tree) shapeOf(indices []string) tensor.Shape {
	s := make(tensor.Shape, len(indices))
	for i, l := range indices {
		s[i] = t.Size(l)
	}
	return s
}

// SetIndexSizes replaces the index size table and recomputes the sizes of
// every node.
func (t *Tree) SetIndexSizes(sizes map[string]int) {
	t.IndexSizes = make(map[string]int, len(sizes))
	for l, s := range sizes {
		t.IndexSizes[l] = s
	}
	t.Walk(func(n *Node) {
		n.Sizes = t.shapeOf(n.Indices)
	})
}

// Walk calls fn for every node in pre-order (node, left, right).
func (t *Tree) Walk(fn func(n *Node)) {
	var visit func(n *Node)
	visit = func(n *Node) {
		if n == nil {
			return
		}
		fn(n)
		visit(n.Left)
		visit(n.Right)
	}
	visit(t.Root)
}

// Nodes returns all nodes in pre-order.
func (t *Tree) Nodes() []*Node {
	var nodes []*Node
	t.Walk(func(n *Node) { nodes = append(nodes, n) })
	return nodes
}

// Leaves returns the input tensors from left to right.
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	t.Walk(func(n *Node) {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		}
	})
	return leaves
}

// Find returns the node with the given identity, or nil.
func (t *Tree) Find(id int) *Node {
	n, _ := t.locate(id)
	return n
}

// Parent returns the parent of the node with the given identity. The root
// has a nil parent.
func (t *Tree) Parent(id int) (*Node, error) {
	n, parent := t.locate(id)
	if n == nil {
		return nil, ErrNodeNotFound
	}
	return parent, nil
}

func (t *Tree) locate(id int) (node, parent *Node) {
	var visit func(n, p *Node) bool
	visit = func(n, p *Node) bool {
		if n == nil {
			return false
		}
		if n.ID == id {
			node, parent = n, p
			return true
		}
		return visit(n.Left, n) || visit(n.Right, n)
	}
	visit(t.Root, nil)
	return node, parent
}

// Failure is a node whose classification failed.
type Failure struct {
	NodeID int
	Err    error
}

// Classify classifies every binary node and stores the result on the node.
// Failures are collected per node; the traversal always covers the whole tree.
func (t *Tree) Classify() []Failure {
	var failures []Failure
	t.Walk(func(n *Node) {
		n.resetAnnotations()
		if !n.IsBinary() {
			return
		}
		n.Dims, n.DimsErr = classify.Classify(n.Indices, n.Left.Indices, n.Right.Indices)
		if n.DimsErr != nil {
			failures = append(failures, Failure{NodeID: n.ID, Err: n.DimsErr})
		}
	})
	return failures
}

// Term converts the subtree rooted at n into its syntax form.
func (n *Node) Term() *grammar.Term {
	if n == nil {
		return nil
	}
	return &grammar.Term{
		Indices: append([]string{}, n.Indices...),
		Left:    n.Left.Term(),
		Right:   n.Right.Term(),
	}
}

// String serializes the tree in bracket notation.
func (t *Tree) String() string {
	if t.Root == nil {
		return ""
	}
	return grammar.FormatBracket(t.Root.Term())
}

// Clone deep-copies the tree. Node identities are preserved and the clone
// continues the identity sequence independently of t.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		Root:        t.Root.clone(),
		IndexSizes:  make(map[string]int, len(t.IndexSizes)),
		DefaultSize: t.DefaultSize,
		ids:         t.ids,
	}
	for l, s := range t.IndexSizes {
		c.IndexSizes[l] = s
	}
	return c
}
