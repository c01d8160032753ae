// Package classify assigns the index labels of a binary tensor contraction to
// GEMM-style dimension buckets.
//
// For a contraction node = left × right every label is exactly one of
//
//	C  carried: in node, left and right (batch dimension)
//	M  in node and left only
//	N  in node and right only
//	K  in left and right only (contracted)
//
// and is either primitive (cb, mb, nb, kb: mapped onto the fixed-size inner
// kernel) or loop (bc, bm, bn, bk: iterated around the kernel). A primitive
// bucket may hold a run of labels, except kb which holds at most one.
//
// Labels are read from the innermost (last) position outwards. Primitive
// buckets are filled while the trailing labels line up in the priority order
// C, M, K, N, never going back to an earlier category; the first label that does not fit moves the classifier into the
// loop state for good.
package classify
