package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ignis/internal/driver"
	"ignis/internal/ir"
	"ignis/internal/types"
)

func newTestContext() (*ir.Context, types.Builtins) {
	in := types.NewInterner()
	return ir.NewContext(in), in.Builtins()
}

// buildReturning constructs a one-block method returning v + 1.
func buildReturning(t *testing.T, ctx *ir.Context, name string) *ir.Method {
	t.Helper()
	bi := ctx.Types().Builtins()
	m := ctx.Declare(name, bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	v := b.AddParameter(bi.Int32, "v")
	one := b.CreateInt(bi.Int32, 1)
	sum, err := b.EntryBlock().CreateBinary(ir.BinAdd, v, one)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.EntryBlock().CreateReturn(sum); err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}
	return m
}

// buildPoisoned constructs a method whose entry is unterminated: it
// fails input validation.
func buildPoisoned(t *testing.T, ctx *ir.Context) *ir.Method {
	t.Helper()
	bi := ctx.Types().Builtins()
	m := ctx.Declare("poisoned", bi.Void)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}
	return m
}

// TestRunIsolatesFailures: a failing method never aborts its batch
// siblings.
func TestRunIsolatesFailures(t *testing.T) {
	ctx, _ := newTestContext()
	methods := []*ir.Method{
		buildReturning(t, ctx, "a"),
		buildPoisoned(t, ctx),
		buildReturning(t, ctx, "b"),
	}

	cfg := driver.DefaultConfig()
	passes, err := driver.BuildPipeline(cfg)
	if err != nil {
		t.Fatal(err)
	}
	results, err := driver.Run(context.Background(), methods, passes, driver.Options{Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Bag.HasErrors() || results[2].Bag.HasErrors() {
		t.Errorf("healthy siblings picked up errors")
	}
	if !results[1].Bag.HasErrors() {
		t.Errorf("poisoned method produced no diagnostics")
	}
	if results[1].Method.Name() != "poisoned" {
		t.Errorf("results out of input order")
	}
}

// TestBuildPipelineRejectsUnknownPass: configuration errors surface.
func TestBuildPipelineRejectsUnknownPass(t *testing.T) {
	cfg := driver.DefaultConfig()
	cfg.Passes = []string{"no-such-pass"}
	if _, err := driver.BuildPipeline(cfg); err == nil {
		t.Errorf("unknown pass accepted")
	}
}

// TestLoadConfig decodes a TOML pipeline file.
func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ignis.toml")
	data := []byte("passes = [\"if-conversion\"]\njobs = 3\n\n[if_conversion]\nmax_block_size = 4\nmax_size_difference = 2\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := driver.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Passes) != 1 || cfg.Passes[0] != "if-conversion" {
		t.Errorf("passes = %v", cfg.Passes)
	}
	if cfg.Jobs != 3 {
		t.Errorf("jobs = %d, want 3", cfg.Jobs)
	}
	if cfg.IfConversion.MaxBlockSize != 4 || cfg.IfConversion.MaxSizeDifference != 2 {
		t.Errorf("if-conversion knobs = %+v", cfg.IfConversion)
	}
}

// TestReportCacheRoundTrip stores and reloads a pipeline report.
func TestReportCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := driver.OpenReportCache("ignis-test")
	if err != nil {
		t.Fatal(err)
	}

	ctx, _ := newTestContext()
	m := buildReturning(t, ctx, "cached")
	key, err := driver.Fingerprint(m)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := cache.Load(key); err != nil || ok {
		t.Fatalf("unexpected hit before store (ok=%v err=%v)", ok, err)
	}

	cfg := driver.DefaultConfig()
	passes, err := driver.BuildPipeline(cfg)
	if err != nil {
		t.Fatal(err)
	}
	results, err := driver.Run(context.Background(), []*ir.Method{m}, passes, driver.Options{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Bag.HasErrors() {
		t.Fatalf("pipeline failed: %v", results[0].Bag.Items())
	}

	payload, ok, err := cache.Load(key)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("no report stored for the input fingerprint")
	}
	if payload.Method != "cached" {
		t.Errorf("cached method name = %q", payload.Method)
	}
}

// TestFingerprintTracksGraph: equal graphs share a fingerprint,
// different graphs do not.
func TestFingerprintTracksGraph(t *testing.T) {
	ctx, _ := newTestContext()
	a := buildReturning(t, ctx, "same")
	b := buildReturning(t, ctx, "same")
	c := buildPoisonedName(t, ctx)

	fa, err := driver.Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := driver.Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}
	if fa != fb {
		t.Errorf("identical graphs fingerprint differently")
	}
	fc, err := driver.Fingerprint(c)
	if err != nil {
		t.Fatal(err)
	}
	if fc == fa {
		t.Errorf("different graphs share a fingerprint")
	}
}

// buildPoisonedName builds a structurally different method under the
// same name.
func buildPoisonedName(t *testing.T, ctx *ir.Context) *ir.Method {
	t.Helper()
	bi := ctx.Types().Builtins()
	m := ctx.Declare("same", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	v := b.AddParameter(bi.Int32, "v")
	if _, err := b.EntryBlock().CreateReturn(v); err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}
	return m
}
