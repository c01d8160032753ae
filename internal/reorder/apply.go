package reorder

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/tree"
)

// Option configures Apply.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report nodes that could not be reordered.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Apply reorders the operands of every binary node, top down. Children are
// swapped when N leads. A node that cannot be reordered is recorded and left
// as is; its subtrees are still visited. Stored classifications are stale
// afterwards and must be recomputed by the caller.
func Apply(t *tree.Tree, opts ...Option) []tree.Failure {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	var failures []tree.Failure
	var visit func(n *tree.Node)
	visit = func(n *tree.Node) {
		if n == nil || n.IsLeaf() {
			return
		}
		if n.IsBinary() {
			if err := node(t, n); err != nil {
				o.logger.Warn("reorder skipped", "node", n.ID, "error", err)
				failures = append(failures, tree.Failure{NodeID: n.ID, Err: err})
			}
		}
		visit(n.Left)
		visit(n.Right)
	}
	visit(t.Root)
	return failures
}

func node(t *tree.Tree, n *tree.Node) error {
	dims, err := classify.Classify(n.Indices, n.Left.Indices, n.Right.Indices)
	if err != nil {
		return err
	}
	res, err := Operands(n.Indices, n.Left.Indices, n.Right.Indices, dims, sizeLookup(t, n))
	if err != nil {
		return err
	}
	if res.Swapped {
		if err := t.SwapChildren(n.ID); err != nil {
			return err
		}
	}
	if _, err := t.UpdateIndices(tree.IndexPatch{NodeID: n.ID, Left: res.Left, Right: res.Right}); err != nil {
		return fmt.Errorf("rewrite operands: %w", err)
	}
	return nil
}

// sizeLookup prefers the sizes stored on the operands over the tree defaults.
func sizeLookup(t *tree.Tree, n *tree.Node) func(string) int {
	sizes := make(map[string]int)
	for _, c := range []*tree.Node{n.Right, n.Left} {
		for i, l := range c.Indices {
			if i < len(c.Sizes) {
				sizes[l] = c.Sizes[i]
			}
		}
	}
	return func(l string) int {
		if s, ok := sizes[l]; ok {
			return s
		}
		return t.Size(l)
	}
}
