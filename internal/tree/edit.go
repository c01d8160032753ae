package tree

import (
	"fmt"

	"github.com/born-ml/einsumtree/internal/tensor"
)

// SwapChildren exchanges the operands of a binary node. Classification is not
// rerun.
func (t *Tree) SwapChildren(id int) error {
	n := t.Find(id)
	if n == nil {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if !n.IsBinary() {
		return fmt.Errorf("%w: node %d has no pair of children to swap", ErrStructure, id)
	}
	n.Left, n.Right = n.Right, n.Left
	return nil
}

// AddPermutationNode inserts a permutation node between the node and its left
// child. The new node starts with the child's index order, so it has no
// effect until its indices are edited. It is marked Removable.
func (t *Tree) AddPermutationNode(id int) (*Node, error) {
	n := t.Find(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if n.Left == nil {
		return nil, fmt.Errorf("%w: node %d is a leaf", ErrStructure, id)
	}
	p := t.NewNode(n.Left.Indices)
	p.Sizes = n.Left.Sizes.Clone()
	p.Left = n.Left
	p.Removable = true
	n.Left = p
	return p, nil
}

// RemovePermutationNode removes a permutation node and reattaches its child
// in its place.
func (t *Tree) RemovePermutationNode(id int) error {
	n, parent := t.locate(id)
	if n == nil {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if !n.IsPermutation() {
		return fmt.Errorf("%w: node %d", ErrNotPermutation, id)
	}
	switch {
	case parent == nil:
		t.Root = n.Left
	case parent.Left == n:
		parent.Left = n.Left
	default:
		parent.Right = n.Left
	}
	return nil
}

// IndexPatch replaces index sequences of a node and its children in one step.
// Nil sequences are left unchanged.
type IndexPatch struct {
	NodeID int
	Node   []string
	Left   []string
	Right  []string
}

// UpdateIndices applies patch atomically: either every sequence is replaced
// or, on error, none is. It reports whether anything changed.
func (t *Tree) UpdateIndices(patch IndexPatch) (bool, error) {
	n := t.Find(patch.NodeID)
	if n == nil {
		return false, fmt.Errorf("%w: %d", ErrNodeNotFound, patch.NodeID)
	}

	type edit struct {
		target  *Node
		indices []string
	}
	var edits []edit
	for _, e := range []struct {
		name    string
		target  *Node
		indices []string
	}{{"node", n, patch.Node}, {"left", n.Left, patch.Left}, {"right", n.Right, patch.Right}} {
		if e.indices == nil {
			continue
		}
		if e.target == nil {
			return false, fmt.Errorf("%w: node %d has no %s child", ErrStructure, n.ID, e.name)
		}
		if err := validateIndices(e.indices); err != nil {
			return false, fmt.Errorf("%s of node %d: %w", e.name, n.ID, err)
		}
		edits = append(edits, edit{e.target, e.indices})
	}

	changed := false
	for _, e := range edits {
		if equalLabels(e.target.Indices, e.indices) {
			continue
		}
		e.target.Sizes = t.resized(e.target, e.indices)
		e.target.Indices = append([]string{}, e.indices...)
		changed = true
	}
	return changed, nil
}

// resized returns the sizes of n after relabeling it to indices. Labels the
// node already had keep their size.
func (t *Tree) resized(n *Node, indices []string) tensor.Shape {
	s := make(tensor.Shape, len(indices))
	for i, l := range indices {
		if p := position(n.Indices, l); p >= 0 && p < len(n.Sizes) {
			s[i] = n.Sizes[p]
		} else {
			s[i] = t.Size(l)
		}
	}
	return s
}

func validateIndices(indices []string) error {
	seen := make(map[string]struct{}, len(indices))
	for _, l := range indices {
		if l == "" {
			return fmt.Errorf("%w: empty label", ErrInvalidIndices)
		}
		if _, ok := seen[l]; ok {
			return fmt.Errorf("%w: label %q repeated", ErrInvalidIndices, l)
		}
		seen[l] = struct{}{}
	}
	return nil
}
