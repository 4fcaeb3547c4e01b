package ir_test

import (
	"testing"

	"ignis/internal/ir"
)

func ifInfosOf(t *testing.T, m *ir.Method) []ir.IfInfo {
	t.Helper()
	s, err := ir.NewScope(m)
	if err != nil {
		t.Fatal(err)
	}
	return ir.NewIfInfos(ir.NewDominators(ir.NewCFG(s))).Infos()
}

// TestIfInfoRecognizesDiamond checks the pattern sweep on a simple
// diamond.
func TestIfInfoRecognizesDiamond(t *testing.T) {
	m, entry, ifB, elseB, exit := buildDiamond(t)

	infos := ifInfosOf(t, m)
	if len(infos) != 1 {
		t.Fatalf("recognized %d ifs, want 1", len(infos))
	}
	info := infos[0]
	if info.Entry != entry || info.IfBlock != ifB || info.ElseBlock != elseB || info.ExitBlock != exit {
		t.Errorf("if blocks misassigned: entry=%s if=%s else=%s exit=%s",
			info.Entry.Name(), info.IfBlock.Name(), info.ElseBlock.Name(), info.ExitBlock.Name())
	}
	if info.Condition != ir.Condition(entry.Terminator()) {
		t.Errorf("condition is not the branch condition")
	}
	if !info.IsSimple() {
		t.Errorf("plain diamond not recognized as simple")
	}
}

// TestIfInfoVariables checks positional pairing of exit parameters
// with the arm arguments.
func TestIfInfoVariables(t *testing.T) {
	m, _, ifB, elseB, exit := buildDiamond(t)

	infos := ifInfosOf(t, m)
	if len(infos) != 1 {
		t.Fatalf("recognized %d ifs, want 1", len(infos))
	}
	vars := infos[0].Variables()
	if len(vars) != 1 {
		t.Fatalf("paired %d variables, want 1", len(vars))
	}
	v := vars[0]
	if v.Param != exit.Params().At(0) {
		t.Errorf("variable param is not the exit parameter")
	}
	if v.TrueValue.Block() != ifB {
		t.Errorf("true value does not come from the then arm")
	}
	if v.FalseValue.Block() != elseB {
		t.Errorf("false value does not come from the else arm")
	}
}

// TestIfInfoSkipsHalfDiamond: a join fed directly by the entry is not
// a simple if.
func TestIfInfoSkipsHalfDiamond(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("half", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	c := b.AddParameter(bi.Int1, "c")
	x := b.AddParameter(bi.Int32, "x")

	entry := b.EntryBlock()
	arm := b.CreateBlock("arm")
	exit := b.CreateBlock("exit")
	p := exit.AddParameter(bi.Int32, "p")

	if _, err := entry.CreateConditionalBranch(c, arm.Block(), exit.Block()); err != nil {
		t.Fatal(err)
	}
	if err := entry.AddBranchArgument(exit.Block(), x); err != nil {
		t.Fatal(err)
	}

	one := b.CreateInt(bi.Int32, 1)
	av, err := arm.CreateBinary(ir.BinAdd, x, one)
	if err != nil {
		t.Fatal(err)
	}
	_, at, err := arm.CreateBranch(exit.Block())
	if err != nil {
		t.Fatal(err)
	}
	if err := at.AddArgument(av); err != nil {
		t.Fatal(err)
	}
	if _, err := exit.CreateReturn(p); err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}

	for _, info := range ifInfosOf(t, m) {
		if info.IsSimple() {
			t.Errorf("half diamond recognized as a simple if")
		}
	}
}
