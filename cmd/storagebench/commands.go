package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/storagekit"
	"github.com/hupe1980/storagekit/alloc"
	"github.com/hupe1980/storagekit/metrics"
)

var strategyHelp = map[string]string{
	"heap":    "garbage-collected heap buffers",
	"aligned": "cache-line aligned heap buffers",
	"fixed":   "one inline buffer of --inline slots, never reallocated",
	"hybrid":  "inline up to --inline slots, heap beyond",
	"mmap":    "off-heap anonymous mappings, resized in place where the OS allows",
	"arena":   "bump allocation from mmap chunks, freed all at once",
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storagebench",
		Short:         "Drive random workloads against storagekit containers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newStrategiesCmd())
	return root
}

type runFlags struct {
	config   string
	json     bool
	override Config
}

func newRunCmd() *cobra.Command {
	var f runFlags
	d := DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a seeded workload and report allocator statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(f.config)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, f.override)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			level, _ := parseLevel(cfg.LogLevel)
			logger := newLogger(cmd.ErrOrStderr(), level, f.json)
			return run(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML workload file")
	fl.BoolVar(&f.json, "json-logs", false, "log as JSON")
	fl.StringVar(&f.override.Container, "container", d.Container, "vector, ring or sparse")
	fl.StringVar(&f.override.Strategy, "strategy", d.Strategy, "storage strategy (see 'storagebench strategies')")
	fl.IntVar(&f.override.Inline, "inline", d.Inline, "inline slots for fixed and hybrid")
	fl.IntVar(&f.override.Ops, "ops", d.Ops, "number of operations")
	fl.Int64Var(&f.override.Seed, "seed", d.Seed, "random seed")
	fl.IntVar(&f.override.MaxLen, "max-len", d.MaxLen, "upper bound on the container length")
	fl.Float64Var(&f.override.PushRatio, "push-ratio", d.PushRatio, "probability of a push when not full")
	fl.IntVar(&f.override.VerifyEvery, "verify-every", d.VerifyEvery, "steps between full model comparisons")
	fl.Int64Var(&f.override.BudgetBytes, "budget", d.BudgetBytes, "allocator byte budget, 0 for none")
	fl.StringVar(&f.override.LogLevel, "log-level", d.LogLevel, "debug, info, warn or error")
	fl.BoolVar(&f.override.Metrics, "metrics", d.Metrics, "print allocator metrics after the run")
	return cmd
}

// applyFlags copies explicitly set flags over the file configuration.
func applyFlags(cmd *cobra.Command, cfg *Config, o Config) {
	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("container", func() { cfg.Container = o.Container })
	set("strategy", func() { cfg.Strategy = o.Strategy })
	set("inline", func() { cfg.Inline = o.Inline })
	set("ops", func() { cfg.Ops = o.Ops })
	set("seed", func() { cfg.Seed = o.Seed })
	set("max-len", func() { cfg.MaxLen = o.MaxLen })
	set("push-ratio", func() { cfg.PushRatio = o.PushRatio })
	set("verify-every", func() { cfg.VerifyEvery = o.VerifyEvery })
	set("budget", func() { cfg.BudgetBytes = o.BudgetBytes })
	set("log-level", func() { cfg.LogLevel = o.LogLevel })
	set("metrics", func() { cfg.Metrics = o.Metrics })
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List storage strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range strategies {
				fmt.Fprintf(tw, "%s\t%s\n", s, strategyHelp[s])
			}
			return tw.Flush()
		},
	}
}

func newLogger(w io.Writer, level slog.Level, json bool) *storagekit.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return storagekit.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return storagekit.NewLogger(slog.NewTextHandler(w, opts))
}

func run(ctx context.Context, cfg Config, logger *storagekit.Logger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tr, closeAlloc, err := newAllocator(cfg, alloc.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeAlloc(); err != nil {
			logger.Warn("close allocator", "error", err)
		}
	}()

	st := newStrategy(cfg, tr)
	logger.Info("workload start",
		"container", cfg.Container,
		"strategy", st.String(),
		"ops", cfg.Ops,
		"seed", cfg.Seed,
	)

	res, err := runWorkload(ctx, cfg, st)
	stats := tr.Stats()
	logger.Info("workload done",
		"ops", res.Ops,
		"pushes", res.Pushes,
		"pops", res.Pops,
		"verifies", res.Verifies,
		"peak_len", res.PeakLen,
		"broken_steps", res.Broken,
		"duration", res.Duration,
		"allocations", stats.Allocations,
		"reallocations", stats.Reallocations,
		"fallbacks", stats.Fallbacks,
		"peak_bytes", stats.PeakBytes,
		"live_bytes", stats.LiveBytes,
	)
	if err != nil {
		return fmt.Errorf("%s on %s: %w", cfg.Container, cfg.Strategy, err)
	}

	if !cfg.Metrics {
		return nil
	}
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector(tr, "storagekit")); err != nil {
		return err
	}
	return writeMetrics(out, reg)
}

// writeMetrics prints one "name{labels} value" line per gathered series.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if _, err := fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), labels(m), value(mf.GetType(), m)); err != nil {
				return err
			}
		}
	}
	return nil
}

func labels(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	s := "{"
	for i, lp := range m.GetLabel() {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue())
	}
	return s + "}"
}

func value(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		return m.GetUntyped().GetValue()
	}
	return math.NaN()
}
