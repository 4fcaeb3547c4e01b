package ir_test

import (
	"errors"
	"testing"

	"ignis/internal/ir"
)

// buildDiamond constructs:
//
//	entry --cond--> ifB / elseB --> exit(p) ; ret p
//
// with one arithmetic value in each arm.
func buildDiamond(t *testing.T) (*ir.Method, *ir.BasicBlock, *ir.BasicBlock, *ir.BasicBlock, *ir.BasicBlock) {
	t.Helper()
	ctx, bi := newTestContext()
	m := ctx.Declare("diamond", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	c := b.AddParameter(bi.Int1, "c")
	x := b.AddParameter(bi.Int32, "x")

	entry := b.EntryBlock()
	ifB := b.CreateBlock("then")
	elseB := b.CreateBlock("else")
	exit := b.CreateBlock("exit")
	p := exit.AddParameter(bi.Int32, "p")

	if _, err := entry.CreateConditionalBranch(c, ifB.Block(), elseB.Block()); err != nil {
		t.Fatal(err)
	}

	one := b.CreateInt(bi.Int32, 1)
	tv, err := ifB.CreateBinary(ir.BinAdd, x, one)
	if err != nil {
		t.Fatal(err)
	}
	_, tt, err := ifB.CreateBranch(exit.Block())
	if err != nil {
		t.Fatal(err)
	}
	if err := tt.AddArgument(tv); err != nil {
		t.Fatal(err)
	}

	fv, err := elseB.CreateBinary(ir.BinSub, x, one)
	if err != nil {
		t.Fatal(err)
	}
	_, ft, err := elseB.CreateBranch(exit.Block())
	if err != nil {
		t.Fatal(err)
	}
	if err := ft.AddArgument(fv); err != nil {
		t.Fatal(err)
	}

	if _, err := exit.CreateReturn(p); err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}
	return m, entry.Block(), ifB.Block(), elseB.Block(), exit.Block()
}

// TestScopeRPO checks the deterministic reverse post-order.
func TestScopeRPO(t *testing.T) {
	m, entry, ifB, elseB, exit := buildDiamond(t)

	s, err := ir.NewScope(m)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 4 {
		t.Fatalf("scope sees %d blocks, want 4", s.Len())
	}
	if s.Block(0) != entry {
		t.Errorf("RPO does not start at the entry")
	}
	if s.IndexOf(exit) != 3 {
		t.Errorf("exit is at RPO %d, want 3", s.IndexOf(exit))
	}
	// Arms precede the join.
	if !(s.IndexOf(ifB) < s.IndexOf(exit) && s.IndexOf(elseB) < s.IndexOf(exit)) {
		t.Errorf("arms do not precede the join in RPO")
	}

	// Same graph, same order.
	s2, err := ir.NewScope(m)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < s.Len(); i++ {
		if s.Block(i) != s2.Block(i) {
			t.Fatalf("RPO differs between runs at %d", i)
		}
	}
}

// TestScopeStaleness checks generation tracking.
func TestScopeStaleness(t *testing.T) {
	m, _, _, _, _ := buildDiamond(t)
	s, err := ir.NewScope(m)
	if err != nil {
		t.Fatal(err)
	}
	if s.Stale() {
		t.Fatalf("fresh scope is stale")
	}
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	b.CreateBlock("noise")
	b.Abandon()
	if !s.Stale() {
		t.Errorf("scope not stale after CFG mutation")
	}
}

// TestScopeRejectsLiveBuilder checks the frozen-snapshot rule.
func TestScopeRejectsLiveBuilder(t *testing.T) {
	m, _, _, _, _ := buildDiamond(t)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Abandon()
	if _, err := ir.NewScope(m); !errors.Is(err, ir.ErrInvalidState) {
		t.Errorf("scope over a live builder: %v", err)
	}
}

// TestScopeRejectsBuilderTerminator: no analysis may observe the
// transient construction terminator.
func TestScopeRejectsBuilderTerminator(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Void)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	next := b.CreateBlock("next")
	if _, err := b.EntryBlock().CreateBuilderTerminator(next.Block()); err != nil {
		t.Fatal(err)
	}
	if _, err := next.CreateReturn(nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}
	if _, err := ir.NewScope(m); !errors.Is(err, ir.ErrInvalidState) {
		t.Errorf("scope accepted a builder terminator: %v", err)
	}
}

// TestCFGEdges checks predecessor/successor symmetry.
func TestCFGEdges(t *testing.T) {
	m, entry, ifB, elseB, exit := buildDiamond(t)
	s, err := ir.NewScope(m)
	if err != nil {
		t.Fatal(err)
	}
	cfg := ir.NewCFG(s)

	ei, ii, li, xi := s.IndexOf(entry), s.IndexOf(ifB), s.IndexOf(elseB), s.IndexOf(exit)
	if got := cfg.Successors(ei); len(got) != 2 {
		t.Fatalf("entry has %d successors, want 2", len(got))
	}
	if got := cfg.Predecessors(xi); len(got) != 2 {
		t.Fatalf("exit has %d predecessors, want 2", len(got))
	}
	if got := cfg.Predecessors(ii); len(got) != 1 || got[0] != ei {
		t.Errorf("then block predecessors = %v, want [entry]", got)
	}
	if got := cfg.Successors(li); len(got) != 1 || got[0] != xi {
		t.Errorf("else block successors = %v, want [exit]", got)
	}
	if got := cfg.Successors(xi); len(got) != 0 {
		t.Errorf("return block has successors: %v", got)
	}
}

// TestDominators checks the tree over a diamond.
func TestDominators(t *testing.T) {
	m, entry, ifB, elseB, exit := buildDiamond(t)
	s, err := ir.NewScope(m)
	if err != nil {
		t.Fatal(err)
	}
	dom := ir.NewDominators(ir.NewCFG(s))

	if dom.ImmediateDominator(exit) != entry {
		t.Errorf("idom(exit) = %v, want entry", dom.ImmediateDominator(exit).Name())
	}
	if dom.ImmediateDominator(ifB) != entry || dom.ImmediateDominator(elseB) != entry {
		t.Errorf("arms are not immediately dominated by the entry")
	}
	if !dom.Dominates(entry, exit) {
		t.Errorf("entry does not dominate exit")
	}
	if dom.Dominates(ifB, exit) {
		t.Errorf("one arm dominates the join")
	}
	if got := dom.ImmediateCommonDominator(ifB, elseB); got != entry {
		t.Errorf("common dominator of the arms = %v, want entry", got.Name())
	}
	if got := dom.ImmediateCommonDominator(ifB, ifB); got != ifB {
		t.Errorf("common dominator of a block with itself = %v, want itself", got.Name())
	}
}

// TestDumpDeterminism: two identical builds dump byte-identically.
func TestDumpDeterminism(t *testing.T) {
	m1, _, _, _, _ := buildDiamond(t)
	m2, _, _, _, _ := buildDiamond(t)

	d1, err := ir.DumpString(m1)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := ir.DumpString(m2)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Errorf("identical builds dump differently:\n%s\n---\n%s", d1, d2)
	}
	if d1 == "" {
		t.Errorf("empty dump")
	}
}
