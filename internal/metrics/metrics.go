// Package metrics computes operation counts and memory traffic estimates for
// the binary contractions of a tree.
package metrics

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/bits"

	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/tensor"
	"github.com/born-ml/einsumtree/internal/tree"
)

// ErrOverflow is reported for a node whose cost does not fit in an int64.
var ErrOverflow = errors.New("cost exceeds int64 range")

// Option configures Compute.
type Option func(*options)

type options struct {
	dtype  tensor.DataType
	logger *slog.Logger
}

// WithDataType sets the element type used for byte-access estimates.
// The default is Float32, which also replaces unknown types.
func WithDataType(dt tensor.DataType) Option {
	return func(o *options) {
		if dt.Valid() {
			o.dtype = dt
		}
	}
}

// WithLogger sets the logger that reports faulty nodes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NodeMetrics holds the cost of one binary node.
type NodeMetrics struct {
	NodeID               int     `json:"node_id" yaml:"node_id"`
	Operations           int64   `json:"operations" yaml:"operations"`
	ByteAccesses         int64   `json:"byte_accesses" yaml:"byte_accesses"`
	Percentage           float64 `json:"percentage" yaml:"percentage"`
	NormalizedPercentage float64 `json:"normalized_percentage" yaml:"normalized_percentage"`
}

// Report aggregates the metrics of a whole tree.
type Report struct {
	DataType          tensor.DataType
	TotalOperations   int64
	TotalByteAccesses int64
	Nodes             []NodeMetrics // Binary nodes in pre-order
	Faulty            []tree.Failure
}

// Valid reports whether every binary node could be classified and costed.
func (r *Report) Valid() bool { return len(r.Faulty) == 0 }

// Compute classifies every binary node of t and annotates it with its cost.
// When any node is faulty, totals and percentages are zero and the failures
// are listed in the report; the operation counts of the other nodes are kept.
// A node whose cost overflows int64 is faulty with ErrOverflow.
func Compute(t *tree.Tree, opts ...Option) *Report {
	o := options{dtype: tensor.Float32, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Report{DataType: o.dtype, Faulty: t.Classify()}
	for _, f := range r.Faulty {
		o.logger.Warn("faulty contraction", "node", f.NodeID, "error", f.Err)
	}

	var nodes []*tree.Node
	t.Walk(func(n *tree.Node) {
		if !n.IsBinary() {
			return
		}
		nodes = append(nodes, n)
		if n.Dims == nil {
			return
		}
		ops, bytes, err := cost(n.Dims, sizeLookup(t, n), o.dtype.Size())
		if err != nil {
			o.logger.Warn("cost overflow", "node", n.ID, "error", err)
			r.Faulty = append(r.Faulty, tree.Failure{NodeID: n.ID, Err: err})
			return
		}
		n.Operations, n.ByteAccesses = ops, bytes
	})

	if r.Valid() {
		var a arith
		var ops, bytes int64
		for _, n := range nodes {
			ops = a.add(ops, n.Operations)
			bytes = a.add(bytes, n.ByteAccesses)
		}
		if a.overflow {
			err := fmt.Errorf("%w: tree totals", ErrOverflow)
			o.logger.Warn("cost overflow", "node", t.Root.ID, "error", err)
			r.Faulty = append(r.Faulty, tree.Failure{NodeID: t.Root.ID, Err: err})
		} else {
			r.TotalOperations, r.TotalByteAccesses = ops, bytes
			percentages(nodes, r.TotalOperations)
		}
	}

	r.Nodes = make([]NodeMetrics, 0, len(nodes))
	for _, n := range nodes {
		r.Nodes = append(r.Nodes, NodeMetrics{
			NodeID:               n.ID,
			Operations:           n.Operations,
			ByteAccesses:         n.ByteAccesses,
			Percentage:           n.Percentage,
			NormalizedPercentage: n.NormalizedPercentage,
		})
	}
	return r
}

func cost(d *classify.Classification, size func(string) int64, elemSize int) (int64, int64, error) {
	var a arith
	cmn := a.product(size, d.Primitive.C, d.Primitive.M, d.Primitive.N, d.Loop.C, d.Loop.M, d.Loop.N)
	k := a.product(size, d.Primitive.K, d.Loop.K)
	if a.overflow {
		return 0, 0, fmt.Errorf("%w: operand sizes", ErrOverflow)
	}
	ops, err := Operations(cmn, k)
	if err != nil {
		return 0, 0, err
	}
	bytes, err := ByteAccesses(d, size, elemSize)
	if err != nil {
		return 0, 0, err
	}
	return ops, bytes, nil
}

// Operations returns the multiply-add count of a contraction whose C, M and
// N sizes multiply to cmn and whose contracted sizes multiply to k.
func Operations(cmn, k int64) (int64, error) {
	var a arith
	ops := a.mul(a.mul(2, cmn), k) - cmn
	if a.overflow {
		return 0, fmt.Errorf("%w: operations", ErrOverflow)
	}
	return ops, nil
}

// ByteAccesses estimates the memory traffic of one contraction: both operand
// footprints plus a read and a write of the output, repeated for every loop
// iteration.
func ByteAccesses(d *classify.Classification, size func(string) int64, elemSize int) (int64, error) {
	var a arith
	pc, pm := a.product(size, d.Primitive.C), a.product(size, d.Primitive.M)
	pn, pk := a.product(size, d.Primitive.N), a.product(size, d.Primitive.K)
	loops := a.product(size, d.Loop.C, d.Loop.M, d.Loop.N, d.Loop.K)

	left := a.mul(a.mul(pc, pm), pk)
	right := a.mul(a.mul(pc, pn), pk)
	out := a.mul(2, a.mul(a.mul(pc, pm), pn))
	kernel := a.add(a.add(left, right), out)
	bytes := a.mul(int64(elemSize), a.mul(loops, kernel))
	if a.overflow {
		return 0, fmt.Errorf("%w: byte accesses", ErrOverflow)
	}
	return bytes, nil
}

// arith multiplies and adds non-negative int64 values and remembers whether
// any step left the int64 range. Once set, overflow sticks and results are 0.
type arith struct {
	overflow bool
}

func (a *arith) mul(x, y int64) int64 {
	if a.overflow {
		return 0
	}
	if x < 0 || y < 0 {
		a.overflow = true
		return 0
	}
	hi, lo := bits.Mul64(uint64(x), uint64(y))
	if hi != 0 || lo > math.MaxInt64 {
		a.overflow = true
		return 0
	}
	return int64(lo)
}

func (a *arith) add(x, y int64) int64 {
	if a.overflow {
		return 0
	}
	if y > 0 && x > math.MaxInt64-y {
		a.overflow = true
		return 0
	}
	return x + y
}

// product multiplies the sizes of every label in groups.
func (a *arith) product(size func(string) int64, groups ...[]string) int64 {
	p := int64(1)
	for _, g := range groups {
		for _, l := range g {
			p = a.mul(p, size(l))
		}
	}
	return p
}

// percentages stores each node's share of total and rescales the shares
// linearly to [0,100]. Equal shares all map to 100.
func percentages(nodes []*tree.Node, total int64) {
	if len(nodes) == 0 {
		return
	}
	lo, hi := 0.0, 0.0
	for i, n := range nodes {
		if total > 0 {
			n.Percentage = float64(n.Operations) / float64(total) * 100
		}
		if i == 0 || n.Percentage < lo {
			lo = n.Percentage
		}
		if i == 0 || n.Percentage > hi {
			hi = n.Percentage
		}
	}
	for _, n := range nodes {
		if hi == lo {
			n.NormalizedPercentage = 100
			continue
		}
		n.NormalizedPercentage = (n.Percentage - lo) / (hi - lo) * 100
	}
}

// sizeLookup resolves label sizes from the node and its operands, falling
// back to the tree's index sizes.
func sizeLookup(t *tree.Tree, n *tree.Node) func(string) int64 {
	sizes := make(map[string]int)
	for _, c := range []*tree.Node{n.Right, n.Left, n} {
		for i, l := range c.Indices {
			if i < len(c.Sizes) {
				sizes[l] = c.Sizes[i]
			}
		}
	}
	return func(l string) int64 {
		if s, ok := sizes[l]; ok {
			return int64(s)
		}
		return int64(t.Size(l))
	}
}
