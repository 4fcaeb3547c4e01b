package transform_test

import (
	"testing"

	"ignis/internal/ir"
	"ignis/internal/testkit"
	"ignis/internal/transform"
)

// buildChain constructs entry -> hop1 -> hop2 -> last; the hops are
// empty forwarding blocks.
func buildChain(t *testing.T) *ir.Method {
	t.Helper()
	ctx, bi := newTestContext()
	m := ctx.Declare("chain", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	v := b.AddParameter(bi.Int32, "v")

	hop1 := b.CreateBlock("hop1")
	hop2 := b.CreateBlock("hop2")
	last := b.CreateBlock("last")

	if _, _, err := b.EntryBlock().CreateBranch(hop1.Block()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := hop1.CreateBranch(hop2.Block()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := hop2.CreateBranch(last.Block()); err != nil {
		t.Fatal(err)
	}
	one := b.CreateInt(bi.Int32, 1)
	sum, err := last.CreateBinary(ir.BinAdd, v, one)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := last.CreateReturn(sum); err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}
	return m
}

// TestSimplifyCollapsesChain: the forwarding hops drop out and the
// entry branches straight to the last block.
func TestSimplifyCollapsesChain(t *testing.T) {
	m := buildChain(t)

	changed, err := transform.SimplifyBranches{}.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatalf("pass reported no change")
	}
	if err := testkit.CheckMethodInvariants(m); err != nil {
		t.Fatalf("invariants after simplification: %v", err)
	}

	s, err := ir.NewScope(m)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("method has %d reachable blocks, want 2", s.Len())
	}
	succs := m.EntryBlock().Successors()
	if len(succs) != 1 || succs[0].Name() != "last" {
		t.Errorf("entry does not branch directly to the last block")
	}
}

// TestSimplifyIdempotent: a second sweep finds nothing.
func TestSimplifyIdempotent(t *testing.T) {
	m := buildChain(t)
	if _, err := (transform.SimplifyBranches{}).Apply(m); err != nil {
		t.Fatal(err)
	}
	changed, err := transform.SimplifyBranches{}.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Errorf("second sweep still reported changes")
	}
}

// TestSimplifyKeepsConditional: a diamond has no trivial forwarding
// blocks to collapse (its arms carry values).
func TestSimplifyKeepsConditional(t *testing.T) {
	m, _ := buildDiamond(t, false)
	before, err := ir.NewScope(m)
	if err != nil {
		t.Fatal(err)
	}

	changed, err := transform.SimplifyBranches{}.Apply(m)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Errorf("pass changed a diamond with non-trivial arms")
	}
	after, err := ir.NewScope(m)
	if err != nil {
		t.Fatal(err)
	}
	if before.Len() != after.Len() {
		t.Errorf("block count moved from %d to %d", before.Len(), after.Len())
	}
}
