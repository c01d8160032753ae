// Package tree builds and edits binary contraction trees.
//
// A Tree owns its root Node and everything reachable from it, the index size
// table, and the generator of node identities. Trees share no state, so
// several of them can live side by side; a single Tree must not be used from
// more than one goroutine at a time.
//
// Node shapes:
//
//	leaf         Left == nil, Right == nil   input tensor
//	binary       Left != nil, Right != nil   contraction of two operands
//	permutation  Left != nil, Right == nil   pure axis reorder
package tree
