package ir_test

import (
	"errors"
	"testing"

	"ignis/internal/ir"
	"ignis/internal/types"
)

func newTestContext() (*ir.Context, types.Builtins) {
	in := types.NewInterner()
	return ir.NewContext(in), in.Builtins()
}

// TestReplaceIdempotent checks that replacing twice with the same
// target is a no-op and resolution lands on the target.
func TestReplaceIdempotent(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	v := b.AddParameter(bi.Int32, "v")
	w := b.AddParameter(bi.Int32, "w")

	if err := v.Replace(w); err != nil {
		t.Fatalf("first Replace: %v", err)
	}
	if err := v.Replace(w); err != nil {
		t.Fatalf("second Replace with the same target: %v", err)
	}
	if !v.IsReplaced() {
		t.Errorf("IsReplaced is false after Replace")
	}
	if v.Resolved() != w {
		t.Errorf("Resolved() != replacement target")
	}
	b.Abandon()
}

// TestReplaceChainCollapses checks transitive resolution with path
// shortening.
func TestReplaceChainCollapses(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	a := b.AddParameter(bi.Int32, "a")
	c := b.AddParameter(bi.Int32, "c")
	d := b.AddParameter(bi.Int32, "d")

	if err := a.Replace(c); err != nil {
		t.Fatal(err)
	}
	if err := c.Replace(d); err != nil {
		t.Fatal(err)
	}
	if a.Resolved() != d {
		t.Errorf("chain a->c->d resolved to %v, want d", a.Resolved())
	}
	// After resolution the chain is shortened.
	if a.DirectTarget() != d {
		t.Errorf("chain was not shortened: direct target is %v", a.DirectTarget())
	}
	b.Abandon()
}

// TestReplaceConflictingTargets checks that re-replacing towards a
// different value is rejected.
func TestReplaceConflictingTargets(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	a := b.AddParameter(bi.Int32, "a")
	c := b.AddParameter(bi.Int32, "c")
	d := b.AddParameter(bi.Int32, "d")

	if err := a.Replace(c); err != nil {
		t.Fatal(err)
	}
	if err := a.Replace(d); !errors.Is(err, ir.ErrInvalidState) {
		t.Errorf("conflicting re-replace returned %v, want ErrInvalidState", err)
	}
	b.Abandon()
}

// TestReplaceCycleRejected checks that a self-directed replacement is
// refused.
func TestReplaceCycleRejected(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	a := b.AddParameter(bi.Int32, "a")
	c := b.AddParameter(bi.Int32, "c")

	if err := a.Replace(a); !errors.Is(err, ir.ErrInvalidArgument) {
		t.Errorf("self-replace returned %v, want ErrInvalidArgument", err)
	}
	if err := a.Replace(c); err != nil {
		t.Fatal(err)
	}
	if err := c.Replace(a); !errors.Is(err, ir.ErrInvalidArgument) {
		t.Errorf("cycle-forming replace returned %v, want ErrInvalidArgument", err)
	}
	b.Abandon()
}

// TestValueRefModes checks resolving vs direct dereference.
func TestValueRefModes(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	a := b.AddParameter(bi.Int32, "a")
	c := b.AddParameter(bi.Int32, "c")

	resolving := ir.Ref(a)
	direct := ir.DirectRef(a)

	if err := a.Replace(c); err != nil {
		t.Fatal(err)
	}
	if resolving.Resolve() != c {
		t.Errorf("resolving reference did not follow the replacement")
	}
	if direct.Resolve() != a {
		t.Errorf("direct reference followed the replacement")
	}
	if direct.Direct() != a || resolving.Direct() != a {
		t.Errorf("Direct() must always observe the stored value")
	}
	b.Abandon()
}

// TestOperandsStableUntilReplace checks that a sealed value's operand
// resolution is stable across reads.
func TestOperandsStableUntilReplace(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	x := b.AddParameter(bi.Int32, "x")
	y := b.AddParameter(bi.Int32, "y")

	entry := b.EntryBlock()
	sum, err := entry.CreateBinary(ir.BinAdd, x, y)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := entry.CreateReturn(sum); err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}

	if !sum.IsSealed() {
		t.Fatalf("created value is not sealed")
	}
	first := []*ir.Value{sum.Operand(0), sum.Operand(1)}
	second := []*ir.Value{sum.Operand(0), sum.Operand(1)}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("operand %d changed between reads", i)
		}
	}
	if first[0] != x || first[1] != y {
		t.Errorf("operands are not the original parameters")
	}
}

// TestConstantsAreShared checks that primitives intern per method.
func TestConstantsAreShared(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	a := b.CreateInt(bi.Int32, 42)
	c := b.CreateInt(bi.Int32, 42)
	if a != c {
		t.Errorf("equal constants interned to distinct nodes")
	}
	if a.Block() != nil {
		t.Errorf("constant has a parent block")
	}
	d := b.CreateInt(bi.Int64, 42)
	if d == a {
		t.Errorf("constants of different types shared a node")
	}
	b.Abandon()
}

// TestKindClassification pins the side-effect and terminator tables.
func TestKindClassification(t *testing.T) {
	sideEffecting := map[ir.ValueKind]bool{
		ir.KindStore: true,
		ir.KindCall:  true,
	}
	for k := ir.KindParameter; k <= ir.KindBranchTarget; k++ {
		if got := k.HasSideEffects(); got != sideEffecting[k] {
			t.Errorf("HasSideEffects(%v) = %v", k, got)
		}
	}
	for _, k := range []ir.ValueKind{
		ir.KindReturn, ir.KindUnconditionalBranch, ir.KindConditionalBranch,
		ir.KindSwitchBranch, ir.KindBuilderTerminator,
	} {
		if !k.IsTerminator() {
			t.Errorf("%v is not classified as terminator", k)
		}
	}
	if ir.KindBranchTarget.IsTerminator() {
		t.Errorf("branch target classified as terminator")
	}
}
