package tree

import (
	"fmt"

	"github.com/born-ml/einsumtree/internal/grammar"
	"github.com/born-ml/einsumtree/internal/tensor"
)

// FromBracket builds a tree from bracket notation such as
// "[[a,b],[b,c]->[a,c]]". Identities are assigned children first. Leaf sizes
// given with WithLeafSizes are matched to leaves from left to right.
func FromBracket(s string, opts ...BuildOption) (*Tree, error) {
	term, err := grammar.ParseBracket(s)
	if err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	return FromTerm(term, opts...)
}

// FromTerm builds a tree from a parsed bracket term.
func FromTerm(term *grammar.Term, opts ...BuildOption) (*Tree, error) {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := newConfigured(cfg)

	var leaves [][]string
	collectLeaves(term, &leaves)
	if err := t.mergeLeafSizes(leaves, cfg.leafSizes); err != nil {
		return nil, err
	}

	leaf := 0
	var convert func(term *grammar.Term) *Node
	convert = func(term *grammar.Term) *Node {
		if term.IsLeaf() {
			n := t.NewNode(term.Indices)
			if cfg.leafSizes != nil {
				n.Sizes = tensor.Shape(cfg.leafSizes[leaf]).Clone()
			}
			leaf++
			return n
		}
		left := convert(term.Left)
		var right *Node
		if term.Right != nil {
			right = convert(term.Right)
		}
		n := t.NewNode(term.Indices)
		n.Left, n.Right = left, right
		n.Sizes = t.derivedShape(n.Indices, left, right)
		return n
	}
	t.Root = convert(term)
	return t, nil
}

func collectLeaves(term *grammar.Term, out *[][]string) {
	if term.IsLeaf() {
		*out = append(*out, term.Indices)
		return
	}
	collectLeaves(term.Left, out)
	if term.Right != nil {
		collectLeaves(term.Right, out)
	}
}
