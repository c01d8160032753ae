package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/einsumtree/internal/classify"
)

// Format selects an output encoding.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// ColorEnabled reports whether f is a terminal that should get styled output.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer encodes reports in one format.
type Writer struct {
	w      io.Writer
	format Format
	styles styles
}

// NewWriter returns a Writer for format. styled enables colours in text output.
func NewWriter(w io.Writer, format Format, styled bool) *Writer {
	return &Writer{w: w, format: format, styles: newStyles(styled)}
}

// Report writes a single report.
func (w *Writer) Report(r *Report) error {
	switch w.format {
	case FormatJSON:
		return w.json(r)
	case FormatYAML:
		return w.yaml(r)
	default:
		_, err := io.WriteString(w.w, w.text(r))
		return err
	}
}

// Batch writes a batch report.
func (w *Writer) Batch(b *Batch) error {
	switch w.format {
	case FormatJSON:
		return w.json(b)
	case FormatYAML:
		return w.yaml(b)
	}
	var sb strings.Builder
	sb.WriteString(w.styles.title.Render("batch "+b.RunID) + "\n\n")
	for _, e := range b.Entries {
		label := "#" + strconv.Itoa(e.Index)
		if e.Name != "" {
			label += " " + e.Name
		}
		if e.Error != "" {
			sb.WriteString(w.styles.bad.Render("✗ "+label) + "  " + e.Error + "\n\n")
			continue
		}
		sb.WriteString(w.styles.good.Render("✓ "+label) + "\n")
		sb.WriteString(w.text(e.Report) + "\n")
	}
	_, err := io.WriteString(w.w, sb.String())
	return err
}

func (w *Writer) json(v any) error {
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (w *Writer) yaml(v any) error {
	enc := yaml.NewEncoder(w.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

type styles struct {
	title, key, muted, good, bad, header lipgloss.Style
	styled                               bool
}

func newStyles(styled bool) styles {
	if !styled {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, false}
	}
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7")),
		key:    lipgloss.NewStyle().Foreground(lipgloss.Color("#20B9B4")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54")),
		good:   lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7")),
		bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")),
		header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		styled: true,
	}
}

func (w *Writer) text(r *Report) string {
	s := w.styles
	var sb strings.Builder
	field := func(k, v string) {
		fmt.Fprintf(&sb, "%s %s\n", s.key.Render(fmt.Sprintf("%-12s", k)), v)
	}

	title := "einsum tree"
	if r.Name != "" {
		title += " " + r.Name
	}
	sb.WriteString(s.title.Render(title) + "\n")
	field("run", r.RunID)
	field("tree", r.Tree)
	field("fingerprint", s.muted.Render(short(r.Fingerprint)))
	field("data type", r.DataType)
	if r.Valid {
		field("status", s.good.Render("valid"))
	} else {
		field("status", s.bad.Render(fmt.Sprintf("faulty (%d nodes)", len(r.Faulty))))
	}
	field("operations", strconv.FormatInt(r.TotalOperations, 10))
	field("bytes", strconv.FormatInt(r.TotalByteAccesses, 10))

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("id", "kind", "indices", "sizes", "primitive", "loop", "ops", "bytes", "%", "norm %").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	if s.styled {
		tbl = tbl.BorderStyle(s.muted)
	}
	for _, n := range r.Nodes {
		tbl.Row(nodeRow(n)...)
	}
	sb.WriteString(tbl.Render() + "\n")

	for _, f := range r.Faulty {
		sb.WriteString(s.bad.Render(fmt.Sprintf("node %d: %s", f.NodeID, f.Error)) + "\n")
	}
	for _, f := range r.ReorderFailures {
		sb.WriteString(s.muted.Render(fmt.Sprintf("reorder skipped node %d: %s", f.NodeID, f.Error)) + "\n")
	}
	return sb.String()
}

func nodeRow(n Node) []string {
	row := []string{
		strconv.Itoa(n.ID),
		n.Kind,
		strings.Join(n.Indices, ","),
		joinInts(n.Sizes),
		"", "", "", "", "", "",
	}
	if n.Kind != KindContraction {
		return row
	}
	if n.Classification == nil {
		row[4] = "faulty"
		return row
	}
	row[4] = formatDims(n.Classification.Primitive)
	row[5] = formatDims(n.Classification.Loop)
	row[6] = strconv.FormatInt(n.Operations, 10)
	row[7] = strconv.FormatInt(n.ByteAccesses, 10)
	row[8] = strconv.FormatFloat(n.Percentage, 'f', 1, 64)
	row[9] = strconv.FormatFloat(n.NormalizedPercentage, 'f', 1, 64)
	return row
}

// formatDims renders non-empty groups as "C:b M:i,j".
func formatDims(d classify.Dims) string {
	var parts []string
	for c := classify.CategoryC; c <= classify.CategoryN; c++ {
		if ls := d.Get(c); len(ls) > 0 {
			parts = append(parts, c.String()+":"+strings.Join(ls, ","))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func short(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}

// Classification writes the buckets of a single classification.
func (w *Writer) Classification(c *classify.Classification) error {
	switch w.format {
	case FormatJSON:
		return w.json(c)
	case FormatYAML:
		return w.yaml(c)
	}
	var sb strings.Builder
	for b := classify.BucketCB; b <= classify.BucketBK; b++ {
		labels := c.Labels(b)
		v := strings.Join(labels, ",")
		if len(labels) == 0 {
			v = w.styles.muted.Render("-")
		}
		fmt.Fprintf(&sb, "%s %s\n", w.styles.key.Render(b.String()), v)
	}
	_, err := io.WriteString(w.w, sb.String())
	return err
}
