package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ignis/internal/diag"
	"ignis/internal/ir"
	"ignis/internal/observ"
	"ignis/internal/trace"
	"ignis/internal/transform"
)

// MethodResult is the outcome of running the pipeline over one method.
type MethodResult struct {
	Method  *ir.Method
	Bag     *diag.Bag
	Timing  observ.Report
	Changed bool
}

// Options configures a pipeline run.
type Options struct {
	Jobs           int
	MaxDiagnostics int
	Tracer         trace.Tracer
	Cache          *ReportCache
}

func (o *Options) fill() {
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = 100
	}
	if o.Tracer == nil {
		o.Tracer = trace.Nop()
	}
}

// Run executes the passes over every method in parallel. Results come
// back in input order. An error is only returned for infrastructure
// failures (context cancellation); per-method failures land in the
// method's bag.
func Run(ctx context.Context, methods []*ir.Method, passes []transform.Pass, opts Options) ([]MethodResult, error) {
	opts.fill()

	results := make([]MethodResult, len(methods))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)

	for i, m := range methods {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = runMethod(m, passes, &opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runMethod drives every pass over one method. Validation runs before
// and after the pipeline: the IR never leaves here malformed without a
// diagnostic saying so.
func runMethod(m *ir.Method, passes []transform.Pass, opts *Options) MethodResult {
	res := MethodResult{
		Method: m,
		Bag:    diag.NewBag(opts.MaxDiagnostics),
	}
	timer := observ.NewTimer()

	if err := ir.Validate(m); err != nil {
		res.Bag.AddError(diag.CodeInvalidIR, m.Name(), "input", err)
		return res
	}

	// The IR itself is never persisted; the cache keys the pipeline
	// report by a fingerprint of the incoming graph.
	var fingerprint Digest
	if opts.Cache != nil {
		if fp, err := Fingerprint(m); err == nil {
			fingerprint = fp
		}
	}

	for _, pass := range passes {
		trace.Emit(opts.Tracer, trace.LevelPass, "pass.begin", m.Name(), pass.Name(), "")
		idx := timer.Begin(m.Name(), pass.Name())
		changed, err := pass.Apply(m)
		if err != nil {
			timer.End(idx, "failed")
			res.Bag.AddError(diag.CodePassFailed, m.Name(), pass.Name(), err)
			trace.Emit(opts.Tracer, trace.LevelPass, "pass.fail", m.Name(), pass.Name(), err.Error())
			break
		}
		note := ""
		if changed {
			note = "changed"
			res.Changed = true
		}
		timer.End(idx, note)
		trace.Emit(opts.Tracer, trace.LevelPass, "pass.end", m.Name(), pass.Name(), note)
	}

	if !res.Bag.HasErrors() {
		if err := ir.Validate(m); err != nil {
			res.Bag.AddError(diag.CodeInvalidIR, m.Name(), "output", err)
		}
	}

	res.Timing = timer.Report()
	if opts.Cache != nil && !res.Bag.HasErrors() && fingerprint != (Digest{}) {
		opts.Cache.Store(fingerprint, m.Name(), res.Timing)
	}
	return res
}
