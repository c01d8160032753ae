// Package reorder derives canonical operand dimension orders for binary
// contractions.
//
// All orders are read innermost first, i.e. starting at the last physical
// position. The category of the node's innermost label selects one of two
// forms (each list innermost first):
//
//	leading M/N   left  = mb kb bk bm bc      right = kb nb bk bn bc
//	leading C     left  = cb mb kb bk bm bc   right = cb kb nb bk bn bc
//
// When N leads, the operands are swapped first so that M always leads. The
// leading-C form takes every C label of the node's innermost run as cb.
package reorder

import (
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/einsumtree/internal/classify"
)

// ErrReorder is returned when the classification does not cover the operands.
var ErrReorder = errors.New("cannot reorder operands")

// Form is the canonical layout chosen for a node.
type Form int

// Canonical forms.
const (
	FormLeadingMN Form = iota
	FormLeadingC
)

// String returns the form name.
func (f Form) String() string {
	if f == FormLeadingC {
		return "leading-C"
	}
	return "leading-M/N"
}

// Result is the canonical order of both operands of one node.
type Result struct {
	Form      Form
	Swapped   bool     // Left and Right refer to the swapped operands
	Left      []string // Physical order of the (possibly swapped) left operand
	Right     []string // Physical order of the (possibly swapped) right operand
	Primitive classify.Dims
	Loop      classify.Dims
}

// Operands computes the canonical operand orders of node = left × right.
// sizeOf reports label sizes; the largest contracted label becomes kb.
func Operands(node, left, right []string, dims *classify.Classification, sizeOf func(string) int) (*Result, error) {
	if dims == nil {
		return nil, fmt.Errorf("%w: missing classification", ErrReorder)
	}
	cats := dims.Merged()
	if err := covers(cats, node, left, right); err != nil {
		return nil, err
	}

	inner := reversed(node)
	res := &Result{Form: FormLeadingMN}
	if len(inner) > 0 {
		switch {
		case slices.Contains(cats.C, inner[0]):
			res.Form = FormLeadingC
		case slices.Contains(cats.N, inner[0]):
			res.Swapped = true
			left, right = right, left
			cats.M, cats.N = cats.N, cats.M
		}
	}
	innerLeft := reversed(left)

	var prim, loop classify.Dims
	if res.Form == FormLeadingC {
		for _, l := range inner {
			if !slices.Contains(cats.C, l) {
				break
			}
			prim.C = append(prim.C, l)
		}
	}
	prim.M = first(filter(inner, cats.M))
	prim.N = first(filter(inner, cats.N))
	prim.K = largest(filter(innerLeft, cats.K), sizeOf)

	loop.C = without(filter(inner, cats.C), prim.C)
	loop.M = without(filter(inner, cats.M), prim.M)
	loop.N = without(filter(inner, cats.N), prim.N)
	loop.K = without(filter(innerLeft, cats.K), prim.K)

	l := concat(prim.C, prim.M, prim.K, loop.K, loop.M, loop.C)
	r := concat(prim.C, prim.K, prim.N, loop.K, loop.N, loop.C)
	res.Left, res.Right = reversed(l), reversed(r)

	// Physical orders within each group.
	for _, d := range []*classify.Dims{&prim, &loop} {
		d.C, d.M, d.N, d.K = reversed(d.C), reversed(d.M), reversed(d.N), reversed(d.K)
	}
	res.Primitive, res.Loop = prim, loop
	return res, nil
}

// covers checks that the categories describe exactly the given operands.
func covers(cats classify.Dims, node, left, right []string) error {
	check := func(name string, seq []string, groups ...[]string) error {
		n := 0
		for _, g := range groups {
			n += len(g)
			for _, l := range g {
				if !slices.Contains(seq, l) {
					return fmt.Errorf("%w: label %q missing from %s", ErrReorder, l, name)
				}
			}
		}
		if n != len(seq) {
			return fmt.Errorf("%w: %s has %d labels, classification covers %d", ErrReorder, name, len(seq), n)
		}
		return nil
	}
	if err := check("node", node, cats.C, cats.M, cats.N); err != nil {
		return err
	}
	if err := check("left", left, cats.C, cats.M, cats.K); err != nil {
		return err
	}
	return check("right", right, cats.C, cats.N, cats.K)
}

// largest returns the label with the largest size; ties go to the earliest.
func largest(labels []string, sizeOf func(string) int) []string {
	if len(labels) == 0 {
		return nil
	}
	best := labels[0]
	for _, l := range labels[1:] {
		if sizeOf(l) > sizeOf(best) {
			best = l
		}
	}
	return []string{best}
}

func filter(seq, set []string) []string {
	var out []string
	for _, l := range seq {
		if slices.Contains(set, l) {
			out = append(out, l)
		}
	}
	return out
}

func without(seq, drop []string) []string {
	var out []string
	for _, l := range seq {
		if !slices.Contains(drop, l) {
			out = append(out, l)
		}
	}
	return out
}

func first(seq []string) []string {
	if len(seq) == 0 {
		return nil
	}
	return seq[:1:1]
}

func concat(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func reversed(s []string) []string {
	out := make([]string, len(s))
	for i, l := range s {
		out[len(s)-1-i] = l
	}
	return out
}
