package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ignis/internal/driver"
	"ignis/internal/ir"
	"ignis/internal/observ"
	"ignis/internal/trace"
	"ignis/internal/types"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build the sample kernels, run the pass pipeline, dump before/after",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().String("kernel", "", "run a single kernel by name")
	demoCmd.Flags().Bool("cache", false, "record pipeline reports in the report cache")
}

func runDemo(cmd *cobra.Command, args []string) error {
	setupColor(cmd)
	kernel, _ := cmd.Flags().GetString("kernel")
	jobs, _ := cmd.Flags().GetInt("jobs")
	timings, _ := cmd.Flags().GetBool("timings")
	useCache, _ := cmd.Flags().GetBool("cache")

	cfg, err := loadPipelineConfig(cmd)
	if err != nil {
		return err
	}
	if jobs == 0 {
		jobs = cfg.Jobs
	}
	passes, err := driver.BuildPipeline(cfg)
	if err != nil {
		return err
	}

	ctx := ir.NewContext(types.NewInterner())
	methods, err := buildKernels(ctx, kernel)
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	for _, m := range methods {
		header.Printf("== %s (before) ==\n", m.Name())
		if err := ir.DumpMethod(os.Stdout, m); err != nil {
			return err
		}
	}

	opts := driver.Options{Jobs: jobs, Tracer: traceFromFlags(cmd)}
	if useCache {
		cache, err := driver.OpenReportCache("ignis")
		if err != nil {
			return err
		}
		opts.Cache = cache
	}
	results, err := driver.Run(context.Background(), methods, passes, opts)
	if err != nil {
		return err
	}

	failed := 0
	reports := make([]observ.Report, 0, len(results))
	for _, res := range results {
		header.Printf("== %s (after) ==\n", res.Method.Name())
		if res.Bag.HasErrors() {
			failed++
			for _, d := range res.Bag.Items() {
				color.Red("%s", d)
			}
			continue
		}
		if err := ir.DumpMethod(os.Stdout, res.Method); err != nil {
			return err
		}
		if timings {
			for _, p := range res.Timing.Phases {
				fmt.Printf("  %-20s %7.2f ms %s\n", p.Pass, p.DurationMS, p.Note)
			}
			fmt.Printf("  %-20s %7.2f ms\n", "total", res.Timing.TotalMS)
			reports = append(reports, res.Timing)
		}
	}
	if timings && len(reports) > 1 {
		batch := observ.Merge(reports...)
		fmt.Printf("batch: %.2f ms over %d phases\n", batch.TotalMS, len(batch.Phases))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d kernels failed", failed, len(results))
	}
	return nil
}

func loadPipelineConfig(cmd *cobra.Command) (driver.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return driver.DefaultConfig(), nil
	}
	return driver.LoadConfig(path)
}

func traceFromFlags(cmd *cobra.Command) trace.Tracer {
	raw, _ := cmd.Flags().GetString("trace")
	level, err := trace.ParseLevel(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return trace.Nop()
	}
	return trace.NewStream(os.Stderr, level)
}
