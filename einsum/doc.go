// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package einsum analyzes tensor contraction expressions.
//
// # Overview
//
// An einsum expression such as "bkm,bnk->bnm" together with a contraction
// path describes a binary tree of pairwise contractions. This package:
//   - Builds the tree from flat einsum notation or bracket notation
//   - Classifies every contraction's labels into GEMM dimensions
//     (primitive cb/mb/nb/kb and loop bc/bm/bn/bk buckets)
//   - Reorders operands into a canonical GEMM-friendly layout
//   - Computes operation counts and byte-access estimates per node
//   - Edits trees (swap children, permutation nodes, index edits, clone)
//
// # Basic Usage
//
//	t, err := einsum.Build("bkm,bnk->bnm", [][2]int{{0, 1}},
//	    einsum.WithIndexSizes(map[string]int{"m": 128, "n": 64, "k": 32}))
//	if err != nil {
//	    return err
//	}
//	r := einsum.Compute(t, einsum.Float32)
//	fmt.Println(r.TotalOperations)
//
// # Bracket Notation
//
// A leaf is written [a,b], a contraction [left,right->[out]] (or with "+" as
// separator) and a permutation [child->[out]]:
//
//	t, err := einsum.FromBracket("[[k,m],[n,k]->[n,m]]")
//
// # Classification
//
// Labels are read from the innermost (last) position outwards. While the
// labels line up as C, M, K, N in that order they are primitive; the first
// label out of order switches the classifier to loop buckets for the rest
// of the node. A label present in exactly one operand but not in the result
// makes the contraction faulty:
//
//	c, err := einsum.Classify([]string{"n", "m"}, []string{"k", "m"}, []string{"n", "k"})
//	// c.Primitive: M=[m] K=[k] N=[n]
//
// # Faulty Trees
//
// Compute never fails. When a node cannot be classified, or its cost does not
// fit in an int64 (ErrOverflow), the report lists it in Faulty and all totals
// and percentages are zero.
//
// # Concurrency
//
// A Tree must not be used from several goroutines at once. Independent trees
// share no state.
package einsum
