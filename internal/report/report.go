// Package report turns analysis results into serializable documents and
// renders them as JSON, YAML or a terminal table.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/born-ml/einsumtree/internal/analysis"
	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/tree"
)

// ErrFingerprintMismatch is returned when a report does not describe the
// given tree.
var ErrFingerprintMismatch = errors.New("fingerprint mismatch: report describes a different tree")

// Node kinds.
const (
	KindLeaf        = "leaf"
	KindContraction = "contraction"
	KindPermutation = "permutation"
)

// Node is the serialized view of one tree node.
type Node struct {
	ID                   int                      `json:"id" yaml:"id"`
	Kind                 string                   `json:"kind" yaml:"kind"`
	Indices              []string                 `json:"indices" yaml:"indices"`
	Sizes                []int                    `json:"sizes" yaml:"sizes"`
	Elements             int64                    `json:"elements" yaml:"elements"`
	Left                 *int                     `json:"left,omitempty" yaml:"left,omitempty"`
	Right                *int                     `json:"right,omitempty" yaml:"right,omitempty"`
	Classification       *classify.Classification `json:"classification,omitempty" yaml:"classification,omitempty"`
	Error                string                   `json:"error,omitempty" yaml:"error,omitempty"`
	Operations           int64                    `json:"operations,omitempty" yaml:"operations,omitempty"`
	ByteAccesses         int64                    `json:"byte_accesses,omitempty" yaml:"byte_accesses,omitempty"`
	Percentage           float64                  `json:"percentage,omitempty" yaml:"percentage,omitempty"`
	NormalizedPercentage float64                  `json:"normalized_percentage,omitempty" yaml:"normalized_percentage,omitempty"`
}

// Fault is a node that could not be classified or reordered.
type Fault struct {
	NodeID int    `json:"node_id" yaml:"node_id"`
	Error  string `json:"error" yaml:"error"`
}

// Report describes one analyzed contraction tree.
type Report struct {
	RunID             string  `json:"run_id" yaml:"run_id"`
	Name              string  `json:"name,omitempty" yaml:"name,omitempty"`
	Tree              string  `json:"tree" yaml:"tree"`
	Fingerprint       string  `json:"fingerprint" yaml:"fingerprint"`
	DataType          string  `json:"data_type" yaml:"data_type"`
	Valid             bool    `json:"valid" yaml:"valid"`
	TotalOperations   int64   `json:"total_operations" yaml:"total_operations"`
	TotalByteAccesses int64   `json:"total_byte_accesses" yaml:"total_byte_accesses"`
	Nodes             []Node  `json:"nodes" yaml:"nodes"`
	Faulty            []Fault `json:"faulty,omitempty" yaml:"faulty,omitempty"`
	ReorderFailures   []Fault `json:"reorder_failures,omitempty" yaml:"reorder_failures,omitempty"`
}

// NewRunID returns a fresh identifier for one CLI invocation.
func NewRunID() string { return uuid.NewString() }

// New builds the report of res. Nodes are listed in pre-order.
func New(runID string, res *analysis.Result) *Report {
	t := res.Tree
	bracket := t.String()
	r := &Report{
		RunID:             runID,
		Name:              res.Case.Name,
		Tree:              bracket,
		Fingerprint:       Fingerprint(bracket),
		DataType:          res.Metrics.DataType.String(),
		Valid:             res.Metrics.Valid(),
		TotalOperations:   res.Metrics.TotalOperations,
		TotalByteAccesses: res.Metrics.TotalByteAccesses,
		Faulty:            faults(res.Metrics.Faulty),
		ReorderFailures:   faults(res.ReorderFailures),
	}
	t.Walk(func(n *tree.Node) {
		r.Nodes = append(r.Nodes, node(n))
	})
	return r
}

func node(n *tree.Node) Node {
	out := Node{
		ID:                   n.ID,
		Kind:                 kind(n),
		Indices:              append([]string{}, n.Indices...),
		Sizes:                append([]int{}, n.Sizes...),
		Elements:             n.Sizes.NumElements(),
		Classification:       n.Dims,
		Operations:           n.Operations,
		ByteAccesses:         n.ByteAccesses,
		Percentage:           n.Percentage,
		NormalizedPercentage: n.NormalizedPercentage,
	}
	if n.Left != nil {
		id := n.Left.ID
		out.Left = &id
	}
	if n.Right != nil {
		id := n.Right.ID
		out.Right = &id
	}
	if n.DimsErr != nil {
		out.Error = n.DimsErr.Error()
	}
	return out
}

func kind(n *tree.Node) string {
	switch {
	case n.IsLeaf():
		return KindLeaf
	case n.IsPermutation():
		return KindPermutation
	default:
		return KindContraction
	}
}

func faults(fs []tree.Failure) []Fault {
	if len(fs) == 0 {
		return nil
	}
	out := make([]Fault, len(fs))
	for i, f := range fs {
		out[i] = Fault{NodeID: f.NodeID, Error: f.Err.Error()}
	}
	return out
}

// Fingerprint returns the hex SHA-256 of a tree's bracket notation. Trees
// with the same shape and index orders share a fingerprint.
func Fingerprint(bracket string) string {
	sum := sha256.Sum256([]byte(bracket))
	return hex.EncodeToString(sum[:])
}

// Verify checks that r was produced from t.
func (r *Report) Verify(t *tree.Tree) error {
	if got := Fingerprint(t.String()); got != r.Fingerprint {
		return fmt.Errorf("%w: have %s, tree is %s", ErrFingerprintMismatch, r.Fingerprint, got)
	}
	return nil
}

// Entry is one case of a batch run.
type Entry struct {
	Index  int     `json:"index" yaml:"index"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"`
	Report *Report `json:"report,omitempty" yaml:"report,omitempty"`
}

// Batch is the report of a batch run.
type Batch struct {
	RunID   string  `json:"run_id" yaml:"run_id"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// NewBatch collects batch outcomes under one run identifier.
func NewBatch(runID string, cases []analysis.Case, outcomes []analysis.Outcome) *Batch {
	b := &Batch{RunID: runID, Entries: make([]Entry, 0, len(outcomes))}
	for _, o := range outcomes {
		e := Entry{Index: o.Index}
		if o.Index < len(cases) {
			e.Name = cases[o.Index].Name
		}
		if o.Err != nil {
			e.Error = o.Err.Error()
		} else {
			e.Report = New(runID, o.Result)
		}
		b.Entries = append(b.Entries, e)
	}
	return b
}
