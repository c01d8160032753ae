// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package einsum_test

import (
	"errors"
	"testing"

	"github.com/born-ml/einsumtree/einsum"
)

// TestPipeline builds, reorders and measures a batched GEMM.
func TestPipeline(t *testing.T) {
	tr, err := einsum.Build("bmk,bkn->bmn", einsum.SequentialPath(2),
		einsum.WithIndexSizes(map[string]int{"b": 2, "m": 4, "n": 8, "k": 16}))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if failures := einsum.ReorderTree(tr); len(failures) != 0 {
		t.Fatalf("ReorderTree failures: %v", failures)
	}
	r := einsum.Compute(tr, einsum.Float32)
	if !r.Valid() {
		t.Fatalf("report has faulty nodes: %v", r.Faulty)
	}

	// 2*CMN*K - CMN with CMN = 2*4*8, K = 16.
	if want := int64(2*64*16 - 64); r.TotalOperations != want {
		t.Errorf("TotalOperations = %d, want %d", r.TotalOperations, want)
	}
	// Only the batch label stays a loop; m, n and k become primitive.
	if loop := tr.Root.Dims.Loop; loop.Len() != 1 || len(loop.C) != 1 || loop.C[0] != "b" {
		t.Errorf("reordered root loop = %+v, want C=[b]", loop)
	}
}

// TestClassify checks the primitive GEMM buckets of a plain matrix product.
func TestClassify(t *testing.T) {
	c, err := einsum.Classify([]string{"n", "m"}, []string{"k", "m"}, []string{"n", "k"})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	for b, want := range map[einsum.Bucket]string{einsum.BucketMB: "m", einsum.BucketKB: "k", einsum.BucketNB: "n"} {
		if got := c.Labels(b); len(got) != 1 || got[0] != want {
			t.Errorf("%v = %v, want [%s]", b, got, want)
		}
	}

	_, err = einsum.Classify([]string{"a", "d"}, []string{"a", "b"}, []string{"c", "d"})
	if !errors.Is(err, einsum.ErrFaultyContraction) {
		t.Errorf("err = %v, want ErrFaultyContraction", err)
	}
}

// TestSyntaxError verifies that parse errors expose their offset.
func TestSyntaxError(t *testing.T) {
	_, err := einsum.FromBracket("[[a,b],[b,c]->[a,c]")
	var se *einsum.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if se.Offset != 19 {
		t.Errorf("Offset = %d, want 19", se.Offset)
	}
}

// TestAnalyze runs the default pipeline.
func TestAnalyze(t *testing.T) {
	res, err := einsum.Analyze(einsum.Case{Expression: "ab,bc,cd->ad", Path: "(1,2),(0,1)"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got := len(res.Metrics.Nodes); got != 2 {
		t.Errorf("len(Nodes) = %d, want 2", got)
	}
}

// TestComputeOverflow checks that a cost beyond int64 marks the tree faulty.
func TestComputeOverflow(t *testing.T) {
	sizes := map[string]int{}
	for _, l := range "abcdefghk" {
		sizes[string(l)] = 1024
	}
	tr, err := einsum.Build("abcdk,efghk->abcdefgh", einsum.SequentialPath(2), einsum.WithIndexSizes(sizes))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	r := einsum.Compute(tr, einsum.DataType(42))
	if r.Valid() {
		t.Fatal("report is valid, want overflow")
	}
	if !errors.Is(r.Faulty[0].Err, einsum.ErrOverflow) {
		t.Errorf("Faulty[0].Err = %v, want ErrOverflow", r.Faulty[0].Err)
	}
	if r.TotalOperations != 0 || r.TotalByteAccesses != 0 {
		t.Errorf("totals = %d, %d, want 0", r.TotalOperations, r.TotalByteAccesses)
	}
	if r.DataType != einsum.Float32 {
		t.Errorf("DataType = %v, want Float32 fallback", r.DataType)
	}
}
