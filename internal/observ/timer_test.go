package observ_test

import (
	"strings"
	"testing"

	"ignis/internal/observ"
)

func TestTimerReportAttribution(t *testing.T) {
	timer := observ.NewTimer()
	i := timer.Begin("saxpy", "if-conversion")
	timer.End(i, "changed")
	j := timer.Begin("saxpy", "simplify-branches")
	timer.End(j, "")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("report has %d phases, want 2", len(report.Phases))
	}
	p := report.Phases[0]
	if p.Method != "saxpy" || p.Pass != "if-conversion" {
		t.Errorf("phase 0 attributed to %s/%s", p.Method, p.Pass)
	}
	if p.Note != "changed" {
		t.Errorf("phase 0 note = %q", p.Note)
	}
	if !strings.Contains(timer.Summary(), "saxpy/if-conversion") {
		t.Errorf("summary lost the method attribution:\n%s", timer.Summary())
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := observ.NewTimer()
	timer.End(3, "nope")
	if got := len(timer.Report().Phases); got != 0 {
		t.Errorf("out-of-range End created %d phases", got)
	}
}

func TestMergeKeepsAttribution(t *testing.T) {
	a := observ.Report{
		TotalMS: 1.5,
		Phases:  []observ.PhaseReport{{Method: "a", Pass: "p1", DurationMS: 1.5}},
	}
	b := observ.Report{
		TotalMS: 2.5,
		Phases:  []observ.PhaseReport{{Method: "b", Pass: "p1", DurationMS: 2.5}},
	}
	merged := observ.Merge(a, b)
	if merged.TotalMS != 4.0 {
		t.Errorf("merged total = %v, want 4.0", merged.TotalMS)
	}
	if len(merged.Phases) != 2 || merged.Phases[0].Method != "a" || merged.Phases[1].Method != "b" {
		t.Errorf("merge lost per-method attribution: %+v", merged.Phases)
	}
}
