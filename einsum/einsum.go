// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package einsum

import (
	"github.com/born-ml/einsumtree/internal/analysis"
	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/grammar"
	"github.com/born-ml/einsumtree/internal/metrics"
	"github.com/born-ml/einsumtree/internal/reorder"
	"github.com/born-ml/einsumtree/internal/tensor"
	"github.com/born-ml/einsumtree/internal/tree"
)

// Type aliases for public API

// Tree is a contraction tree. It owns its nodes and identity sequence.
type Tree = tree.Tree

// Node is one tensor of a tree.
type Node = tree.Node

// Failure is a node whose classification or reorder failed.
type Failure = tree.Failure

// IndexPatch replaces index sequences of a node and its children.
type IndexPatch = tree.IndexPatch

// BuildOption configures tree construction.
type BuildOption = tree.BuildOption

// Shape represents the sizes of a node's dimensions.
type Shape = tensor.Shape

// DataType is the element type used for byte estimates.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32  DataType = tensor.Float32
	Float64  DataType = tensor.Float64
	Int32    DataType = tensor.Int32
	Int64    DataType = tensor.Int64
	Uint8    DataType = tensor.Uint8
	Bool     DataType = tensor.Bool
	Float16  DataType = tensor.Float16
	BFloat16 DataType = tensor.BFloat16
)

// Classification is the bucket assignment of one contraction.
type Classification = classify.Classification

// Dims groups labels by category.
type Dims = classify.Dims

// Bucket names one of the eight classification buckets.
type Bucket = classify.Bucket

// Buckets.
const (
	BucketCB = classify.BucketCB
	BucketMB = classify.BucketMB
	BucketNB = classify.BucketNB
	BucketKB = classify.BucketKB
	BucketBC = classify.BucketBC
	BucketBM = classify.BucketBM
	BucketBN = classify.BucketBN
	BucketBK = classify.BucketBK
)

// Expression is a parsed flat einsum expression.
type Expression = grammar.Expression

// Term is a parsed bracket-notation tree.
type Term = grammar.Term

// SyntaxError reports the offset and character of a parse failure.
type SyntaxError = grammar.SyntaxError

// Report holds tree-wide metrics.
type Report = metrics.Report

// NodeMetrics holds the cost of one node.
type NodeMetrics = metrics.NodeMetrics

// Reordering is the canonical operand order of one node.
type Reordering = reorder.Result

// Case is one contraction for Analyze.
type Case = analysis.Case

// Result is the outcome of Analyze.
type Result = analysis.Result

// Errors.
var (
	ErrSyntax            = grammar.ErrSyntax
	ErrFaultyContraction = classify.ErrFaultyContraction
	ErrInternal          = classify.ErrInternal
	ErrInvalidPath       = tree.ErrInvalidPath
	ErrStructure         = tree.ErrStructure
	ErrNodeNotFound      = tree.ErrNodeNotFound
	ErrNotPermutation    = tree.ErrNotPermutation
	ErrInvalidIndices    = tree.ErrInvalidIndices
	ErrSizeMismatch      = tree.ErrSizeMismatch
	ErrReorder           = reorder.ErrReorder
	ErrOverflow          = metrics.ErrOverflow
)

// Build options.
var (
	WithLeafSizes   = tree.WithLeafSizes
	WithIndexSizes  = tree.WithIndexSizes
	WithDefaultSize = tree.WithDefaultSize
)

// ParseEinsum parses "operand(,operand)*->operand".
func ParseEinsum(s string) (*Expression, error) { return grammar.ParseEinsum(s) }

// ParseBracket parses bracket tree notation.
func ParseBracket(s string) (*Term, error) { return grammar.ParseBracket(s) }

// ParsePath parses a contraction path such as "(0,1),(0,1)".
func ParsePath(s string) ([][2]int, error) { return grammar.ParsePath(s) }

// Build parses expr and contracts its operands along path.
func Build(expr string, path [][2]int, opts ...BuildOption) (*Tree, error) {
	return tree.Build(expr, path, opts...)
}

// FromBracket builds a tree from bracket notation.
func FromBracket(s string, opts ...BuildOption) (*Tree, error) {
	return tree.FromBracket(s, opts...)
}

// SequentialPath folds n operands from left to right.
func SequentialPath(n int) [][2]int { return tree.SequentialPath(n) }

// Classify assigns every label of node, left and right to one bucket.
func Classify(node, left, right []string) (*Classification, error) {
	return classify.Classify(node, left, right)
}

// Reorder computes the canonical operand order of one contraction.
func Reorder(node, left, right []string, dims *Classification, sizeOf func(string) int) (*Reordering, error) {
	return reorder.Operands(node, left, right, dims, sizeOf)
}

// ReorderTree rewrites every contraction of t into canonical operand order.
func ReorderTree(t *Tree) []Failure { return reorder.Apply(t) }

// Compute classifies t and annotates every contraction with its cost.
// Unknown data types are treated as Float32.
func Compute(t *Tree, dt DataType) *Report {
	return metrics.Compute(t, metrics.WithDataType(dt))
}

// Analyze runs the whole pipeline on one case with default settings.
func Analyze(c Case) (*Result, error) { return analysis.New().Analyze(c) }
