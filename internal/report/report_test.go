package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/einsumtree/internal/analysis"
	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/parallel"
)

func analyze(t *testing.T, c analysis.Case) *analysis.Result {
	t.Helper()
	res, err := analysis.New(analysis.WithLogger(slog.New(slog.DiscardHandler))).Analyze(c)
	require.NoError(t, err)
	return res
}

func TestNew(t *testing.T) {
	res := analyze(t, analysis.Case{Name: "gemm", Expression: "[[k,m],[n,k]->[n,m]]", Bracket: true})
	runID := NewRunID()
	_, err := uuid.Parse(runID)
	require.NoError(t, err)

	r := New(runID, res)
	assert.Equal(t, runID, r.RunID)
	assert.Equal(t, "gemm", r.Name)
	assert.Equal(t, "[[k,m],[n,k]->[n,m]]", r.Tree)
	assert.Equal(t, "float32", r.DataType)
	assert.True(t, r.Valid)
	assert.Equal(t, res.Metrics.TotalOperations, r.TotalOperations)

	require.Len(t, r.Nodes, 3)
	root := r.Nodes[0]
	assert.Equal(t, KindContraction, root.Kind)
	require.NotNil(t, root.Left)
	assert.Equal(t, 0, *root.Left)
	assert.Equal(t, 1, *root.Right)
	require.NotNil(t, root.Classification)
	assert.Equal(t, []string{"m"}, root.Classification.Primitive.M)
	assert.Equal(t, int64(64), root.Elements)
	assert.Equal(t, KindLeaf, r.Nodes[1].Kind)
	assert.Nil(t, r.Nodes[1].Left)
}

func TestNew_Faulty(t *testing.T) {
	res := analyze(t, analysis.Case{Expression: "[[a,b],[c,d]->[a,d]]", Bracket: true})

	r := New("run", res)
	assert.False(t, r.Valid)
	require.Len(t, r.Faulty, 1)
	assert.Equal(t, r.Nodes[0].ID, r.Faulty[0].NodeID)
	assert.NotEmpty(t, r.Nodes[0].Error)
	assert.Nil(t, r.Nodes[0].Classification)
}

func TestNew_Permutation(t *testing.T) {
	res := analyze(t, analysis.Case{Expression: "ab->ba"})
	r := New("run", res)
	require.Len(t, r.Nodes, 2)
	assert.Equal(t, KindPermutation, r.Nodes[0].Kind)
	assert.Nil(t, r.Nodes[0].Right)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("[[a,b],[b,c]->[a,c]]")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint("[[a,b],[b,c]->[a,c]]"))
	assert.NotEqual(t, a, Fingerprint("[[b,c],[a,b]->[a,c]]"))
}

func TestVerify(t *testing.T) {
	res := analyze(t, analysis.Case{Expression: "ab,bc->ac"})
	r := New("run", res)
	require.NoError(t, r.Verify(res.Tree))

	require.NoError(t, res.Tree.SwapChildren(res.Tree.Root.ID))
	assert.True(t, errors.Is(r.Verify(res.Tree), ErrFingerprintMismatch))
}

func TestWriter_JSON(t *testing.T) {
	r := New("run", analyze(t, analysis.Case{Expression: "ab,bc->ac"}))

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatJSON, false).Report(r))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, r.Fingerprint, got.Fingerprint)
	assert.Equal(t, r.TotalOperations, got.TotalOperations)
	assert.Contains(t, buf.String(), `"primitive"`)
}

func TestWriter_YAML(t *testing.T) {
	r := New("run", analyze(t, analysis.Case{Expression: "ab,bc->ac"}))

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatYAML, false).Report(r))

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, r.Tree, got.Tree)
	assert.Len(t, got.Nodes, 3)
}

func TestWriter_Text(t *testing.T) {
	r := New("run-1", analyze(t, analysis.Case{Name: "mm", Expression: "[[k,m],[n,k]->[n,m]]", Bracket: true}))

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText, false).Report(r))
	out := buf.String()
	assert.Contains(t, out, "einsum tree mm")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "M:m K:k N:n")
	assert.NotContains(t, out, "\x1b[", "unstyled output has no escape codes")
}

func TestWriter_Batch(t *testing.T) {
	cases := []analysis.Case{
		{Name: "ok", Expression: "ab,bc->ac"},
		{Name: "bad", Expression: "ab,bc"},
	}
	a := analysis.New(analysis.WithLogger(slog.New(slog.DiscardHandler)))
	out, err := a.Batch(t.Context(), cases, parallel.DefaultConfig())
	require.NoError(t, err)

	b := NewBatch("run", cases, out)
	require.Len(t, b.Entries, 2)
	assert.NotNil(t, b.Entries[0].Report)
	assert.Equal(t, "bad", b.Entries[1].Name)
	assert.NotEmpty(t, b.Entries[1].Error)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText, false).Batch(b))
	assert.Contains(t, buf.String(), "✓ #0 ok")
	assert.Contains(t, buf.String(), "✗ #1 bad")

	buf.Reset()
	require.NoError(t, NewWriter(&buf, FormatJSON, false).Batch(b))
	var got Batch
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run", got.RunID)
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "JSON", "yaml"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(strings.ToLower(s)), f)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatDims(t *testing.T) {
	res := analyze(t, analysis.Case{Expression: "bkm,bnk->bnm"})
	dims := res.Tree.Root.Dims
	require.NotNil(t, dims)
	assert.Equal(t, "M:m K:k N:n", formatDims(dims.Primitive))
	assert.Equal(t, "C:b", formatDims(dims.Loop))

	assert.Equal(t, "-", formatDims(classify.Dims{}))
}

func TestWriter_Classification(t *testing.T) {
	c, err := classify.Classify([]string{"n", "m"}, []string{"k", "m"}, []string{"n", "k"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText, false).Classification(c))
	assert.Equal(t, "cb -\nmb m\nnb n\nkb k\nbc -\nbm -\nbn -\nbk -\n", buf.String())

	buf.Reset()
	require.NoError(t, NewWriter(&buf, FormatJSON, false).Classification(c))
	assert.JSONEq(t, `{"primitive":{"c":null,"m":["m"],"n":["n"],"k":["k"]},"loop":{"c":null,"m":null,"n":null,"k":null}}`, buf.String())
}
