// Package grammar parses the textual forms of a tensor contraction.
//
// Two notations are supported:
//
//	ab,bc->ac                 flat einsum, one label per character
//	[[a,b],[b,c]->[a,c]]      bracket tree, comma-separated label tokens
//
// The bracket grammar is
//
//	tree     = leaf | binary | permute
//	leaf     = "[" labels "]"
//	binary   = "[" tree ("+" | ",") tree "->" "[" labels "]" "]"
//	permute  = "[" tree "->" "[" labels "]" "]"
//	labels   = [ label { "," label } ]
//
// Whitespace is ignored everywhere. Parse failures are reported as *SyntaxError
// carrying the 0-indexed character offset in the original input.
package grammar
