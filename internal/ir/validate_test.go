package ir_test

import (
	"strings"
	"testing"

	"ignis/internal/ir"
)

// TestValidateAcceptsDiamond: a well-formed method validates cleanly.
func TestValidateAcceptsDiamond(t *testing.T) {
	m, _, _, _, _ := buildDiamond(t)
	if err := ir.Validate(m); err != nil {
		t.Errorf("valid method rejected: %v", err)
	}
}

// TestValidateCatchesArityMismatch: an edge with too few arguments for
// the destination's parameters is reported.
func TestValidateCatchesArityMismatch(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Int32)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	exit := b.CreateBlock("exit")
	p := exit.AddParameter(bi.Int32, "p")
	// Branch with no argument for p.
	if _, _, err := b.EntryBlock().CreateBranch(exit.Block()); err != nil {
		t.Fatal(err)
	}
	if _, err := exit.CreateReturn(p); err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}

	err = ir.Validate(m)
	if err == nil {
		t.Fatalf("arity mismatch not reported")
	}
	if !strings.Contains(err.Error(), "arguments") {
		t.Errorf("unexpected validation message: %v", err)
	}
}

// TestValidateCatchesUnterminated: a reachable block without a
// terminator is reported.
func TestValidateCatchesUnterminated(t *testing.T) {
	ctx, bi := newTestContext()
	m := ctx.Declare("f", bi.Void)
	b, err := m.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Dispose(); err != nil {
		t.Fatal(err)
	}

	err = ir.Validate(m)
	if err == nil {
		t.Fatalf("unterminated entry not reported")
	}
	if !strings.Contains(err.Error(), "unterminated") {
		t.Errorf("unexpected validation message: %v", err)
	}
}

// TestDumpGolden pins the textual form of the diamond.
func TestDumpGolden(t *testing.T) {
	m, _, _, _, _ := buildDiamond(t)
	got, err := ir.DumpString(m)
	if err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"fn diamond(i1 %0, i32 %1) -> i32:",
		"  bb0 diamond.entry:",
		"    branch.if %0, bb2, bb1",
		"  bb1 else:",
		"    %2: i32 = binary.sub %1, 1",
		"    branch bb3(%2)",
		"  bb2 then:",
		"    %3: i32 = binary.add %1, 1",
		"    branch bb3(%3)",
		"  bb3 exit(i32 %4):",
		"    ret %4",
		"",
	}, "\n")
	if got != want {
		t.Errorf("dump mismatch:\n--- got ---\n%s--- want ---\n%s", got, want)
	}
}
