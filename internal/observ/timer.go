// Package observ provides lightweight timing of pass pipelines.
package observ

import (
	"fmt"
	"time"
)

// Phase records the duration of one pass over one method. The method
// name is part of the phase identity: reports from a parallel batch
// merge without losing attribution.
type Phase struct {
	Method string
	Pass   string
	Start  time.Time
	Dur    time.Duration
	Note   string
}

// Timer tracks the execution time of a pass pipeline over a method.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a new method/pass phase and returns its index.
func (t *Timer) Begin(method, pass string) int {
	t.phases = append(t.phases, Phase{Method: method, Pass: pass, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	out := "timings:\n"
	for _, p := range report.Phases {
		out += fmt.Sprintf("  %-24s %7.2f ms", p.Method+"/"+p.Pass, p.DurationMS)
		if p.Note != "" {
			out += "  // " + p.Note
		}
		out += "\n"
	}
	out += fmt.Sprintf("  %-24s %7.2f ms\n", "total", report.TotalMS)
	return out
}

// PhaseReport is the serializable form of one phase.
type PhaseReport struct {
	Method     string  `msgpack:"method" json:"method"`
	Pass       string  `msgpack:"pass" json:"pass"`
	DurationMS float64 `msgpack:"duration_ms" json:"duration_ms"`
	Note       string  `msgpack:"note,omitempty" json:"note,omitempty"`
}

// Report aggregates all phases with the total duration.
type Report struct {
	TotalMS float64       `msgpack:"total_ms" json:"total_ms"`
	Phases  []PhaseReport `msgpack:"phases" json:"phases"`
}

// Report compacts the tracked phases into a serializable report.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Method:     phase.Method,
			Pass:       phase.Pass,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Merge appends the phases of other reports, re-totaling. The driver
// uses it to fold per-method reports into a batch view.
func Merge(reports ...Report) Report {
	var out Report
	for _, r := range reports {
		out.Phases = append(out.Phases, r.Phases...)
		out.TotalMS += r.TotalMS
	}
	return out
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
