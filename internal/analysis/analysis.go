// Package analysis runs the full contraction pipeline: parse, build the tree,
// optionally reorder operands, then classify and compute metrics.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/go-playground/validator/v10"

	"github.com/born-ml/einsumtree/internal/grammar"
	"github.com/born-ml/einsumtree/internal/metrics"
	"github.com/born-ml/einsumtree/internal/parallel"
	"github.com/born-ml/einsumtree/internal/reorder"
	"github.com/born-ml/einsumtree/internal/tensor"
	"github.com/born-ml/einsumtree/internal/tree"
)

// ErrInvalidCase is returned for cases that fail validation.
var ErrInvalidCase = errors.New("invalid case")

// Case is one contraction to analyze.
type Case struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Expression is a flat einsum string, or bracket notation when Bracket
	// is set.
	Expression string `json:"expression" yaml:"expression" validate:"required"`
	Bracket    bool   `json:"bracket,omitempty" yaml:"bracket,omitempty"`

	// Path is the contraction path of a flat expression. Empty means fold
	// left to right.
	Path string `json:"path,omitempty" yaml:"path,omitempty" validate:"excluded_if=Bracket true"`

	// Sizes override the analyzer's index sizes for this case.
	Sizes map[string]int `json:"sizes,omitempty" yaml:"sizes,omitempty" validate:"dive,keys,required,endkeys,gte=1"`
}

// Result is the outcome of analyzing one case.
type Result struct {
	Case            Case
	Tree            *tree.Tree
	Metrics         *metrics.Report
	ReorderFailures []tree.Failure
}

var validate = validator.New()

// Analyzer holds the settings shared by all cases.
type Analyzer struct {
	defaultSize int
	indexSizes  map[string]int
	dtype       tensor.DataType
	reorder     bool
	logger      *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDefaultSize sets the size of labels without an explicit size.
func WithDefaultSize(n int) Option { return func(a *Analyzer) { a.defaultSize = n } }

// WithIndexSizes sets label sizes applied to every case.
func WithIndexSizes(sizes map[string]int) Option {
	return func(a *Analyzer) { a.indexSizes = maps.Clone(sizes) }
}

// WithDataType sets the element type for byte estimates.
func WithDataType(dt tensor.DataType) Option { return func(a *Analyzer) { a.dtype = dt } }

// WithReorder enables canonical operand reordering before metrics.
func WithReorder(on bool) Option { return func(a *Analyzer) { a.reorder = on } }

// WithLogger sets the logger passed down to reorder and metrics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{dtype: tensor.Float32, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze builds and analyzes one case. Faulty nodes are reported in the
// metrics, not as an error; errors are reserved for input that does not
// produce a tree.
func (a *Analyzer) Analyze(c Case) (*Result, error) {
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCase, err)
	}

	t, err := a.build(c)
	if err != nil {
		return nil, err
	}
	res := &Result{Case: c, Tree: t}
	if a.reorder {
		res.ReorderFailures = reorder.Apply(t, reorder.WithLogger(a.logger))
	}
	res.Metrics = metrics.Compute(t, metrics.WithDataType(a.dtype), metrics.WithLogger(a.logger))

	a.logger.Debug("analyzed contraction",
		"case", c.Name,
		"nodes", len(t.Nodes()),
		"operations", res.Metrics.TotalOperations,
		"faulty", len(res.Metrics.Faulty))
	return res, nil
}

func (a *Analyzer) build(c Case) (*tree.Tree, error) {
	sizes := maps.Clone(a.indexSizes)
	if sizes == nil {
		sizes = map[string]int{}
	}
	maps.Copy(sizes, c.Sizes)
	opts := []tree.BuildOption{tree.WithIndexSizes(sizes), tree.WithDefaultSize(a.defaultSize)}

	if c.Bracket {
		return tree.FromBracket(c.Expression, opts...)
	}
	expr, err := grammar.ParseEinsum(c.Expression)
	if err != nil {
		return nil, fmt.Errorf("parse expression: %w", err)
	}
	path := tree.SequentialPath(len(expr.Inputs))
	if c.Path != "" {
		if path, err = grammar.ParsePath(c.Path); err != nil {
			return nil, fmt.Errorf("parse path: %w", err)
		}
	}
	return tree.BuildExpression(expr, path, opts...)
}

// Outcome pairs a batch case with its result or error.
type Outcome struct {
	Index  int
	Result *Result
	Err    error
}

// Batch analyzes cases concurrently. Each case gets its own tree; a failing
// case does not stop the others. Outcomes are in input order.
func (a *Analyzer) Batch(ctx context.Context, cases []Case, cfg parallel.Config) ([]Outcome, error) {
	return parallel.Map(ctx, cases, func(_ context.Context, i int, c Case) (Outcome, error) {
		res, err := a.Analyze(c)
		if err != nil {
			a.logger.Warn("case failed", "index", i, "case", c.Name, "error", err)
		}
		return Outcome{Index: i, Result: res, Err: err}, nil
	}, cfg)
}
