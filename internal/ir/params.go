package ir

import (
	"fmt"

	"ignis/internal/types"
)

// paramOwner is the creation capability a ParamList delegates to. The
// owner constructs the parameter node, registers it in the context and
// binds its parent (the block for block parameters, nil for function
// parameters).
type paramOwner interface {
	allocateParameter(typ types.TypeID, name string) *Value
	parameterOwnerMethod() *Method
}

// ParamList is the ordered, mutable parameter list of a method or a
// basic block. Indices are stable: they are only reassigned by an
// explicit renumbering sweep.
type ParamList struct {
	owner  paramOwner
	params []*Value
}

// Len returns the number of parameters.
func (l *ParamList) Len() int { return len(l.params) }

// At returns the parameter at position i.
func (l *ParamList) At(i int) *Value { return l.params[i] }

// Values returns the parameters in order. The returned slice aliases
// internal storage and must not be modified.
func (l *ParamList) Values() []*Value { return l.params }

// IndexOf returns the position of p, or -1.
func (l *ParamList) IndexOf(p *Value) int {
	for i, q := range l.params {
		if q == p {
			return i
		}
	}
	return -1
}

// Contains reports whether p is in the list.
func (l *ParamList) Contains(p *Value) bool { return l.IndexOf(p) >= 0 }

// Add creates a parameter of the given type, appends it and returns it.
func (l *ParamList) Add(typ types.TypeID, name string) *Value {
	p := l.owner.allocateParameter(typ, name)
	p.index = len(l.params)
	l.params = append(l.params, p)
	return p
}

// InsertFront creates a parameter and prepends it, renumbering the
// rest.
func (l *ParamList) InsertFront(typ types.TypeID, name string) *Value {
	p := l.owner.allocateParameter(typ, name)
	l.params = append([]*Value{p}, l.params...)
	l.renumber()
	return p
}

// AppendFrom moves every parameter of other onto the end of this list,
// rebinding block parameters to this list's owner. other is left
// empty.
func (l *ParamList) AppendFrom(other *ParamList) {
	for _, p := range other.params {
		if p.block != nil {
			if bb, ok := l.owner.(*BasicBlock); ok {
				p.block = bb
			}
		}
		p.index = len(l.params)
		l.params = append(l.params, p)
	}
	other.params = nil
}

// Remove deletes p from the list and renumbers. It reports whether p
// was present.
func (l *ParamList) Remove(p *Value) bool {
	i := l.IndexOf(p)
	if i < 0 {
		return false
	}
	l.RemoveAt(i)
	return true
}

// RemoveAt deletes the parameter at position i and renumbers.
func (l *ParamList) RemoveAt(i int) {
	l.params = append(l.params[:i], l.params[i+1:]...)
	l.renumber()
}

// replacedIndices returns the positions of parameters that have been
// replaced, in ascending order. The builder uses it to drop the
// positionally matching branch-target arguments in lock-step with
// PerformRemoval.
func (l *ParamList) replacedIndices() []int {
	var idx []int
	for i, p := range l.params {
		if p.IsReplaced() {
			idx = append(idx, i)
		}
	}
	return idx
}

// PerformRemoval drops every replaced parameter and compacts indices.
func (l *ParamList) PerformRemoval() {
	kept := l.params[:0]
	for _, p := range l.params {
		if !p.IsReplaced() {
			kept = append(kept, p)
		}
	}
	l.params = kept
	l.renumber()
}

func (l *ParamList) renumber() {
	for i, p := range l.params {
		p.index = i
	}
}

func (l *ParamList) String() string {
	return fmt.Sprintf("params(%d)", len(l.params))
}
