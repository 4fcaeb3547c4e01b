// Package transform hosts the structural rewrites that run over frozen
// IR methods: each pass inspects the method, decides applicability,
// and rewrites through a fresh builder.
package transform

import (
	"ignis/internal/ir"
)

// Pass is one structural rewrite of a method. Apply reports whether
// the method changed; "not applicable" is a normal false return, not
// an error.
type Pass interface {
	Name() string
	Apply(m *ir.Method) (bool, error)
}

// Info describes a registered pass for tooling.
type Info struct {
	Name    string
	Summary string
}

// Registry lists the known passes in pipeline order.
func Registry() []Info {
	return []Info{
		{Name: "simplify-branches", Summary: "drop unreachable blocks and forward trivial branch blocks"},
		{Name: "if-conversion", Summary: "rewrite simple if diamonds into straight-line predicates"},
	}
}
