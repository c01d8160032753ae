package tree

import (
	"fmt"

	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/grammar"
	"github.com/born-ml/einsumtree/internal/tensor"
)

// BuildOption configures tree construction.
type BuildOption func(*buildConfig)

type buildConfig struct {
	leafSizes   [][]int
	indexSizes  map[string]int
	defaultSize int
}

// WithLeafSizes supplies the sizes of every input tensor, parallel to its
// labels. Intermediate sizes are derived from them.
func WithLeafSizes(sizes [][]int) BuildOption {
	return func(c *buildConfig) { c.leafSizes = sizes }
}

// WithIndexSizes supplies the size of each label.
func WithIndexSizes(sizes map[string]int) BuildOption {
	return func(c *buildConfig) { c.indexSizes = sizes }
}

// WithDefaultSize sets the size used for labels without an explicit size.
func WithDefaultSize(size int) BuildOption {
	return func(c *buildConfig) { c.defaultSize = size }
}

// SequentialPath returns the path that folds n operands from left to right:
// (0,1) applied n-1 times.
func SequentialPath(n int) [][2]int {
	path := make([][2]int, 0, max(n-1, 0))
	for i := 1; i < n; i++ {
		path = append(path, [2]int{0, 1})
	}
	return path
}

// Build parses a flat einsum expression and contracts its operands along
// path. Every step names two live operand positions; both are removed and the
// intermediate result is appended, so positions renumber after each step.
func Build(expr string, path [][2]int, opts ...BuildOption) (*Tree, error) {
	e, err := grammar.ParseEinsum(expr)
	if err != nil {
		return nil, fmt.Errorf("parse expression: %w", err)
	}
	return BuildExpression(e, path, opts...)
}

// BuildExpression is Build for an already parsed expression. On failure no
// tree is returned.
func BuildExpression(expr *grammar.Expression, path [][2]int, opts ...BuildOption) (*Tree, error) {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(expr.Inputs) == 0 {
		return nil, fmt.Errorf("%w: expression has no inputs", ErrStructure)
	}

	t := newConfigured(cfg)
	if err := t.mergeLeafSizes(expr.Inputs, cfg.leafSizes); err != nil {
		return nil, err
	}

	live := make([]*Node, len(expr.Inputs))
	for i, in := range expr.Inputs {
		live[i] = t.NewNode(in)
		if cfg.leafSizes != nil {
			live[i].Sizes = tensor.Shape(cfg.leafSizes[i]).Clone()
		}
	}

	for step, pair := range path {
		i, j := pair[0], pair[1]
		if i < 0 || j < 0 || i >= len(live) || j >= len(live) {
			return nil, &PathError{Step: step, Pair: pair, Live: len(live), Msg: "position out of range"}
		}
		if i == j {
			return nil, &PathError{Step: step, Pair: pair, Live: len(live), Msg: "operand contracted with itself"}
		}

		left, right := live[i], live[j]
		rest := make([]*Node, 0, len(live)-1)
		for k, n := range live {
			if k != i && k != j {
				rest = append(rest, n)
			}
		}

		keep := func(label string) bool {
			if contains(expr.Output, label) {
				return true
			}
			for _, n := range rest {
				if contains(n.Indices, label) {
					return true
				}
			}
			return false
		}
		d := classify.Partition(left.Indices, right.Indices, keep)

		node := t.NewNode(retained(left.Indices, right.Indices, d))
		node.Left, node.Right = left, right
		node.Sizes = t.derivedShape(node.Indices, left, right)
		live = append(rest, node)
	}

	if len(live) != 1 {
		return nil, &PathError{Step: len(path), Live: len(live), Msg: fmt.Sprintf("path leaves %d operands", len(live))}
	}

	root := live[0]
	switch {
	case root.IsLeaf() && !equalLabels(root.Indices, expr.Output):
		p := t.NewNode(expr.Output)
		p.Left = root
		p.Sizes = t.derivedShape(p.Indices, root, nil)
		root = p
	case root.IsBinary():
		root.Indices = append([]string{}, expr.Output...)
		root.Sizes = t.derivedShape(root.Indices, root.Left, root.Right)
	}
	t.Root = root
	return t, nil
}

func newConfigured(cfg buildConfig) *Tree {
	t := New()
	t.DefaultSize = cfg.defaultSize
	for l, s := range cfg.indexSizes {
		t.IndexSizes[l] = s
	}
	return t
}

// mergeLeafSizes validates per-leaf sizes and records them in the index size
// table. A label must have the same size wherever it appears.
func (t *Tree) mergeLeafSizes(inputs [][]string, sizes [][]int) error {
	if sizes == nil {
		return nil
	}
	if len(sizes) != len(inputs) {
		return fmt.Errorf("%w: %d leaf shapes for %d inputs", ErrStructure, len(sizes), len(inputs))
	}
	seen := map[string]int{}
	for i, in := range inputs {
		if len(sizes[i]) != len(in) {
			return fmt.Errorf("%w: input %d has %d labels but %d sizes", ErrStructure, i, len(in), len(sizes[i]))
		}
		if err := tensor.Shape(sizes[i]).Validate(); err != nil {
			return fmt.Errorf("%w: input %d: %v", ErrSizeMismatch, i, err)
		}
		for k, l := range in {
			if prev, ok := seen[l]; ok && prev != sizes[i][k] {
				return fmt.Errorf("%w: label %q is %d and %d", ErrSizeMismatch, l, prev, sizes[i][k])
			}
			seen[l] = sizes[i][k]
		}
	}
	for l, s := range seen {
		t.IndexSizes[l] = s
	}
	return nil
}

// derivedShape looks every label up in left, then right, then the size table.
func (t *Tree) derivedShape(indices []string, left, right *Node) tensor.Shape {
	s := make(tensor.Shape, len(indices))
	for i, l := range indices {
		s[i] = t.Size(l)
		for _, op := range []*Node{left, right} {
			if op == nil {
				continue
			}
			if p := position(op.Indices, l); p >= 0 && p < len(op.Sizes) {
				s[i] = op.Sizes[p]
				break
			}
		}
	}
	return s
}

// retained lists the labels surviving a contraction: left labels in left
// order, then labels found on the right only.
func retained(left, right []string, d classify.Dims) []string {
	out := make([]string, 0, len(d.C)+len(d.M)+len(d.N))
	for _, l := range left {
		if contains(d.C, l) || contains(d.M, l) {
			out = append(out, l)
		}
	}
	for _, r := range right {
		if contains(d.N, r) {
			out = append(out, r)
		}
	}
	return out
}

func position(s []string, label string) int {
	for i, l := range s {
		if l == label {
			return i
		}
	}
	return -1
}

func contains(s []string, label string) bool { return position(s, label) >= 0 }

func equalLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
