package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/einsumtree/internal/analysis"
	"github.com/born-ml/einsumtree/internal/classify"
	"github.com/born-ml/einsumtree/internal/config"
	"github.com/born-ml/einsumtree/internal/parallel"
	"github.com/born-ml/einsumtree/internal/report"
	"github.com/born-ml/einsumtree/internal/tensor"
)

const version = "v0.1.0-dev"

// app carries the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	output     string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "einsumtree",
		Short:         "Analyze einsum contraction trees",
		Long:          "einsumtree builds binary contraction trees from einsum expressions, classifies\nevery contraction into GEMM dimensions and estimates its cost.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML or JSON config file")
	f.StringVarP(&a.output, "output", "o", "", "output format: text, json or yaml")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	f.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(a.analyzeCmd(), a.classifyCmd(), a.batchCmd(), versionCmd())
	return root
}

// setup loads the configuration, applies flag overrides and installs the
// logger. Flags take priority over the environment and the config file.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Output = strings.ToLower(a.output)
	}
	if f.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(a.logLevel)
	}
	if f.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(a.logFormat)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) writer(cmd *cobra.Command) *report.Writer {
	out := cmd.OutOrStdout()
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = report.ColorEnabled(f)
	}
	return report.NewWriter(out, report.Format(a.cfg.Output), styled)
}

func (a *app) analyzer(sizes map[string]int, dtype tensor.DataType, reorder bool) *analysis.Analyzer {
	merged := make(map[string]int, len(a.cfg.IndexSizes)+len(sizes))
	for l, s := range a.cfg.IndexSizes {
		merged[l] = s
	}
	for l, s := range sizes {
		merged[l] = s
	}
	return analysis.New(
		analysis.WithDefaultSize(a.cfg.DefaultIndexSize),
		analysis.WithIndexSizes(merged),
		analysis.WithDataType(dtype),
		analysis.WithReorder(reorder),
		analysis.WithLogger(a.logger),
	)
}

func (a *app) analyzeCmd() *cobra.Command {
	var (
		path    string
		sizes   []string
		bracket bool
		reorder bool
		dtype   string
	)
	cmd := &cobra.Command{
		Use:   "analyze EXPR",
		Short: "Build, classify and measure one contraction tree",
		Example: `  einsumtree analyze 'bkm,bnk->bnm' --size m=128 --size n=64 --size k=32
  einsumtree analyze 'ab,bc,cd->ad' --path '(1,2),(0,1)' -o json
  einsumtree analyze --bracket '[[k,m],[n,k]->[n,m]]' --reorder`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := config.ParseSizes(sizes)
			if err != nil {
				return err
			}
			dt := a.cfg.ElementType()
			if dtype != "" {
				if dt, err = tensor.ParseDataType(dtype); err != nil {
					return err
				}
			}
			res, err := a.analyzer(parsed, dt, reorder || a.cfg.Reorder).
				Analyze(analysis.Case{Expression: args[0], Path: path, Bracket: bracket})
			if err != nil {
				return err
			}
			return a.writer(cmd).Report(report.New(report.NewRunID(), res))
		},
	}
	f := cmd.Flags()
	f.StringVar(&path, "path", "", "contraction path, e.g. '(0,1),(0,1)' (default: left to right)")
	f.StringArrayVar(&sizes, "size", nil, "label size as label=size (repeatable)")
	f.BoolVar(&bracket, "bracket", false, "EXPR is in bracket tree notation")
	f.BoolVar(&reorder, "reorder", false, "reorder operands canonically before measuring")
	f.StringVar(&dtype, "dtype", "", "element type for byte estimates (default from config)")
	return cmd
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify NODE LEFT RIGHT",
		Short: "Classify the labels of one binary contraction",
		Long: "Classify the labels of one binary contraction into primitive and loop buckets.\n" +
			"Label lists are either comma separated (\"i,j,k\") or one label per character (\"ijk\").",
		Example: "  einsumtree classify bnm bkm bnk",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := classify.Classify(splitLabels(args[0]), splitLabels(args[1]), splitLabels(args[2]))
			if err != nil {
				return err
			}
			return a.writer(cmd).Classification(c)
		},
	}
}

func splitLabels(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ",") {
		var out []string
		for _, l := range strings.Split(s, ",") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
		return out
	}
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func (a *app) batchCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Analyze every case of a YAML or JSON batch file concurrently",
		Example: `  einsumtree batch cases.yaml -o json

cases.yaml:
  cases:
    - name: gemm
      expression: bkm,bnk->bnm
      sizes: {m: 128}
    - expression: "[[a,b],[b,c]->[a,c]]"
      bracket: true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := analysis.LoadCases(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}
			pc := parallel.Config{Enabled: workers > 1, NumWorkers: workers}

			a.logger.Info("batch started", "cases", len(cases), "workers", pc.Workers())
			out, err := a.analyzer(nil, a.cfg.ElementType(), a.cfg.Reorder).Batch(cmd.Context(), cases, pc)
			if err != nil {
				return err
			}
			b := report.NewBatch(report.NewRunID(), cases, out)
			if err := a.writer(cmd).Batch(b); err != nil {
				return err
			}
			if n := failed(b); n > 0 {
				return fmt.Errorf("%d of %d cases failed", n, len(b.Entries))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent analyses (default from config)")
	return cmd
}

func failed(b *report.Batch) int {
	n := 0
	for _, e := range b.Entries {
		if e.Error != "" {
			n++
		}
	}
	return n
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		// version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "einsumtree %s\n", version)
		},
	}
}
