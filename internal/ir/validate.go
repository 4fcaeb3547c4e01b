package ir

import (
	"errors"
	"fmt"
)

// Validate checks method invariants on a frozen method.
// Returns an error joining every violation found.
func Validate(m *Method) error {
	if m == nil {
		return nil
	}
	scope, err := NewScope(m)
	if err != nil {
		return err
	}

	var errs []error
	if err := validateTerminated(scope); err != nil {
		errs = append(errs, err)
	}
	if err := validateTargets(scope); err != nil {
		errs = append(errs, err)
	}
	if err := validateArguments(scope); err != nil {
		errs = append(errs, err)
	}
	if err := validateBranchConditions(scope); err != nil {
		errs = append(errs, err)
	}
	if err := validateOwnership(scope); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("method %s: %w", m.name, err)
	}
	return nil
}

// validateTerminated checks that every reachable block has a
// terminator.
func validateTerminated(s *Scope) error {
	var errs []error
	for i, bb := range s.Blocks() {
		if !bb.Terminated() {
			errs = append(errs, fmt.Errorf("bb%d (%s): unterminated block", i, bb.Name()))
		}
	}
	return errors.Join(errs...)
}

// validateTargets checks that every branch target reaches a block of
// the same method that the scope can see.
func validateTargets(s *Scope) error {
	var errs []error
	for i, bb := range s.Blocks() {
		t := bb.Terminator()
		if t == nil {
			continue
		}
		for j, tgt := range TerminatorTargets(t) {
			dest := tgt.DestinationBlock()
			if dest == nil {
				errs = append(errs, fmt.Errorf("bb%d: target %d has no destination", i, j))
				continue
			}
			if dest.Method() != s.Method() {
				errs = append(errs, fmt.Errorf("bb%d: target %d leaves the method", i, j))
				continue
			}
			if s.IndexOf(dest) < 0 {
				errs = append(errs, fmt.Errorf("bb%d: target %d reaches detached block %s", i, j, dest.Name()))
			}
		}
	}
	return errors.Join(errs...)
}

// validateArguments checks the arity law: every branch target supplies
// exactly as many arguments as its destination has parameters, with
// matching types.
func validateArguments(s *Scope) error {
	var errs []error
	for i, bb := range s.Blocks() {
		t := bb.Terminator()
		if t == nil {
			continue
		}
		for _, tgt := range TerminatorTargets(t) {
			dest := tgt.DestinationBlock()
			if dest == nil {
				continue
			}
			want := dest.Params().Len()
			if tgt.NumOperands() != want {
				errs = append(errs, fmt.Errorf("bb%d: edge to %s carries %d arguments, want %d",
					i, dest.Name(), tgt.NumOperands(), want))
				continue
			}
			for k := 0; k < want; k++ {
				if tgt.Operand(k).Type() != dest.Params().At(k).Type() {
					errs = append(errs, fmt.Errorf("bb%d: edge to %s argument %d has type %s, want %s",
						i, dest.Name(), k, tgt.Operand(k), dest.Params().At(k)))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// validateBranchConditions checks that conditional branches test an i1
// and switches select on an integer primitive.
func validateBranchConditions(s *Scope) error {
	in := s.Method().Context().Types()
	var errs []error
	for i, bb := range s.Blocks() {
		t := bb.Terminator()
		if t == nil {
			continue
		}
		switch t.Kind() {
		case KindConditionalBranch:
			if Condition(t).Type() != in.Builtins().Int1 {
				errs = append(errs, fmt.Errorf("bb%d: branch condition %s is not i1", i, Condition(t)))
			}
		case KindSwitchBranch:
			if !in.IsInteger(SwitchSelector(t).Type()) {
				errs = append(errs, fmt.Errorf("bb%d: switch selector %s is not an integer", i, SwitchSelector(t)))
			}
		}
	}
	return errors.Join(errs...)
}

// validateOwnership checks that every body value is parented by its
// block and sealed, and that no body value is a terminator kind.
func validateOwnership(s *Scope) error {
	var errs []error
	for i, bb := range s.Blocks() {
		for j, ref := range bb.Body() {
			v := ref.Direct()
			if v == nil {
				errs = append(errs, fmt.Errorf("bb%d value %d: dangling reference", i, j))
				continue
			}
			if v.IsReplaced() {
				// Compacts away on the next removal sweep.
				continue
			}
			if v.Kind().IsTerminator() {
				errs = append(errs, fmt.Errorf("bb%d value %d: terminator %s in block body", i, j, v))
			}
			if !v.IsSealed() {
				errs = append(errs, fmt.Errorf("bb%d value %d: unsealed value %s", i, j, v))
			}
			if v.Block() != bb {
				errs = append(errs, fmt.Errorf("bb%d value %d: %s is parented elsewhere", i, j, v))
			}
		}
		for j, p := range bb.Params().Values() {
			if p.Index() != j {
				errs = append(errs, fmt.Errorf("bb%d: parameter %s has index %d, want %d", i, p, p.Index(), j))
			}
		}
	}
	return errors.Join(errs...)
}
