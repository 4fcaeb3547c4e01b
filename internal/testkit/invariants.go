// Package testkit holds invariant checkers shared by package tests.
package testkit

import (
	"fmt"

	"ignis/internal/ir"
)

// CheckMethodInvariants runs the structural laws every frozen method
// must satisfy:
//  1. the method validates (termination, target arity, condition types)
//  2. every branch-target argument tuple matches the destination's
//     parameter count
//  3. no reachable body value is replaced or unsealed
func CheckMethodInvariants(m *ir.Method) error {
	if m == nil {
		return fmt.Errorf("nil method")
	}
	if err := ir.Validate(m); err != nil {
		return err
	}

	scope, err := ir.NewScope(m)
	if err != nil {
		return err
	}
	for i, bb := range scope.Blocks() {
		t := bb.Terminator()
		if t == nil {
			return fmt.Errorf("bb%d: unterminated", i)
		}
		for _, tgt := range ir.TerminatorTargets(t) {
			dest := tgt.DestinationBlock()
			if got, want := tgt.NumOperands(), dest.Params().Len(); got != want {
				return fmt.Errorf("bb%d: edge to %s has %d arguments, want %d", i, dest.Name(), got, want)
			}
		}
		for j, ref := range bb.Body() {
			v := ref.Direct()
			if v == nil {
				return fmt.Errorf("bb%d value %d: dangling", i, j)
			}
			if v.IsReplaced() {
				return fmt.Errorf("bb%d value %d: replaced value %s survived removal", i, j, v)
			}
			if !v.IsSealed() {
				return fmt.Errorf("bb%d value %d: unsealed value %s", i, j, v)
			}
		}
	}
	return nil
}
