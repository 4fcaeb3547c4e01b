package main

import (
	"fmt"
	"sort"

	"ignis/internal/ir"
)

// kernelBuilder constructs one built-in sample kernel through the
// public builder API.
type kernelBuilder func(ctx *ir.Context) (*ir.Method, error)

// sampleKernels are the graphs the demo and dump commands operate on.
// Each exercises a different shape: straight-line code, a predicate
// diamond, a switch fan-out, and a forwarding chain.
var sampleKernels = map[string]kernelBuilder{
	"saxpy": buildSaxpy,
	"abs":   buildAbs,
	"sign":  buildSign,
	"chain": buildChain,
}

func kernelNames() []string {
	names := make([]string, 0, len(sampleKernels))
	for name := range sampleKernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildSaxpy builds a*x + y over f32, a single straight-line block.
func buildSaxpy(ctx *ir.Context) (*ir.Method, error) {
	bi := ctx.Types().Builtins()
	m := ctx.Declare("saxpy", bi.Float32)
	b, err := m.NewBuilder()
	if err != nil {
		return nil, err
	}
	a := b.AddParameter(bi.Float32, "a")
	x := b.AddParameter(bi.Float32, "x")
	y := b.AddParameter(bi.Float32, "y")

	entry := b.EntryBlock()
	ax, err := entry.CreateBinary(ir.BinMul, a, x)
	if err != nil {
		return nil, err
	}
	sum, err := entry.CreateBinary(ir.BinAdd, ax, y)
	if err != nil {
		return nil, err
	}
	if _, err := entry.CreateReturn(sum); err != nil {
		return nil, err
	}
	return m, b.Dispose()
}

// buildAbs builds |v| as a diamond: a candidate for if-conversion.
func buildAbs(ctx *ir.Context) (*ir.Method, error) {
	bi := ctx.Types().Builtins()
	m := ctx.Declare("abs", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		return nil, err
	}
	v := b.AddParameter(bi.Int32, "v")

	entry := b.EntryBlock()
	neg := b.CreateBlock("abs.neg")
	pos := b.CreateBlock("abs.pos")
	exit := b.CreateBlock("abs.exit")
	res := exit.AddParameter(bi.Int32, "res")

	zero := b.CreateInt(bi.Int32, 0)
	cond, err := entry.CreateCompare(ir.CmpLt, v, zero)
	if err != nil {
		return nil, err
	}
	if _, err := entry.CreateConditionalBranch(cond, neg.Block(), pos.Block()); err != nil {
		return nil, err
	}

	n, err := neg.CreateUnary(ir.UnaryNeg, v)
	if err != nil {
		return nil, err
	}
	_, nt, err := neg.CreateBranch(exit.Block())
	if err != nil {
		return nil, err
	}
	if err := nt.AddArgument(n); err != nil {
		return nil, err
	}

	_, pt, err := pos.CreateBranch(exit.Block())
	if err != nil {
		return nil, err
	}
	if err := pt.AddArgument(v); err != nil {
		return nil, err
	}

	if _, err := exit.CreateReturn(res); err != nil {
		return nil, err
	}
	return m, b.Dispose()
}

// buildSign builds sign(v) through a switch over a clamped selector.
func buildSign(ctx *ir.Context) (*ir.Method, error) {
	bi := ctx.Types().Builtins()
	m := ctx.Declare("sign", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		return nil, err
	}
	sel := b.AddParameter(bi.Int32, "sel")

	entry := b.EntryBlock()
	zeroB := b.CreateBlock("sign.zero")
	posB := b.CreateBlock("sign.pos")
	negB := b.CreateBlock("sign.neg")

	if _, err := entry.CreateSwitchBranch(sel,
		[]*ir.BasicBlock{zeroB.Block(), posB.Block(), negB.Block()}); err != nil {
		return nil, err
	}

	for _, c := range []struct {
		bld *ir.BlockBuilder
		val int64
	}{{zeroB, 0}, {posB, 1}, {negB, -1}} {
		if _, err := c.bld.CreateReturn(b.CreateInt(bi.Int32, c.val)); err != nil {
			return nil, err
		}
	}
	return m, b.Dispose()
}

// buildChain builds a return reached through two empty forwarding
// blocks: a candidate for branch simplification.
func buildChain(ctx *ir.Context) (*ir.Method, error) {
	bi := ctx.Types().Builtins()
	m := ctx.Declare("chain", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		return nil, err
	}
	v := b.AddParameter(bi.Int32, "v")

	hop1 := b.CreateBlock("chain.hop1")
	hop2 := b.CreateBlock("chain.hop2")
	last := b.CreateBlock("chain.last")

	if _, _, err := b.EntryBlock().CreateBranch(hop1.Block()); err != nil {
		return nil, err
	}
	if _, _, err := hop1.CreateBranch(hop2.Block()); err != nil {
		return nil, err
	}
	if _, _, err := hop2.CreateBranch(last.Block()); err != nil {
		return nil, err
	}

	one := b.CreateInt(bi.Int32, 1)
	sum, err := last.CreateBinary(ir.BinAdd, v, one)
	if err != nil {
		return nil, err
	}
	if _, err := last.CreateReturn(sum); err != nil {
		return nil, err
	}
	return m, b.Dispose()
}

// buildKernels instantiates the selected kernels, or all of them.
func buildKernels(ctx *ir.Context, only string) ([]*ir.Method, error) {
	var names []string
	if only != "" {
		if _, ok := sampleKernels[only]; !ok {
			return nil, fmt.Errorf("unknown kernel %q (have: %v)", only, kernelNames())
		}
		names = []string{only}
	} else {
		names = kernelNames()
	}
	methods := make([]*ir.Method, 0, len(names))
	for _, name := range names {
		m, err := sampleKernels[name](ctx)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		methods = append(methods, m)
	}
	return methods, nil
}
