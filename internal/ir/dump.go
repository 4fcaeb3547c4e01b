package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// dumper renders a method listing with scope-local value numbering so
// two structurally identical methods dump identically regardless of
// global node ids.
type dumper struct {
	scope *Scope
	names map[*Value]string
	next  int
}

// DumpMethod writes a human-readable listing of the method. The output
// is deterministic: same graph, same bytes. Test goldens rely on it;
// it is not part of the stable API.
func DumpMethod(w io.Writer, m *Method) error {
	scope, err := NewScope(m)
	if err != nil {
		return err
	}
	return DumpScope(w, scope)
}

// DumpScope writes the listing of an existing snapshot.
func DumpScope(w io.Writer, s *Scope) error {
	d := &dumper{scope: s, names: make(map[*Value]string)}
	in := s.Method().Context().Types()

	var params []string
	for _, p := range s.Method().Params().Values() {
		params = append(params, fmt.Sprintf("%s %s", in.String(p.Type()), d.name(p)))
	}
	fmt.Fprintf(w, "fn %s(%s) -> %s:\n",
		s.Method().Name(), strings.Join(params, ", "), in.String(s.Method().ReturnType()))

	for i, bb := range s.Blocks() {
		d.dumpBlock(w, i, bb)
	}
	return nil
}

func (d *dumper) name(v *Value) string {
	v = v.Resolved()
	switch v.Kind() {
	case KindPrimitive:
		return v.ConstValue().String()
	case KindNull:
		return "null"
	}
	if n, ok := d.names[v]; ok {
		return n
	}
	n := fmt.Sprintf("%%%d", d.next)
	d.next++
	d.names[v] = n
	return n
}

func (d *dumper) blockName(bb *BasicBlock) string {
	return fmt.Sprintf("bb%d", d.scope.IndexOf(bb))
}

func (d *dumper) dumpBlock(w io.Writer, i int, bb *BasicBlock) {
	in := d.scope.Method().Context().Types()

	var params []string
	for _, p := range bb.Params().Values() {
		params = append(params, fmt.Sprintf("%s %s", in.String(p.Type()), d.name(p)))
	}
	head := fmt.Sprintf("bb%d %s", i, bb.Name())
	if len(params) > 0 {
		head += "(" + strings.Join(params, ", ") + ")"
	}
	fmt.Fprintf(w, "  %s:\n", head)

	// Two sweeps: measure the definition column, then emit aligned.
	type line struct {
		def string
		rhs string
	}
	var lines []line
	defWidth := 0
	for _, ref := range bb.Body() {
		v := ref.Resolve()
		if v == nil || v.IsReplaced() {
			continue
		}
		def := fmt.Sprintf("%s: %s", d.name(v), in.String(v.Type()))
		if wd := runewidth.StringWidth(def); wd > defWidth {
			defWidth = wd
		}
		lines = append(lines, line{def: def, rhs: d.formatValue(v)})
	}
	for _, ln := range lines {
		fmt.Fprintf(w, "    %s = %s\n", runewidth.FillRight(ln.def, defWidth), ln.rhs)
	}

	if t := bb.Terminator(); t != nil {
		fmt.Fprintf(w, "    %s\n", d.formatTerminator(t))
	}
}

func (d *dumper) formatValue(v *Value) string {
	ops := make([]string, 0, v.NumOperands())
	for i := 0; i < v.NumOperands(); i++ {
		ops = append(ops, d.name(v.Operand(i)))
	}
	switch v.Kind() {
	case KindUnary:
		return fmt.Sprintf("%s.%s %s", v.Kind().Prefix(), v.UnaryOp(), ops[0])
	case KindBinary:
		return fmt.Sprintf("%s.%s %s", v.Kind().Prefix(), v.BinaryOp(), strings.Join(ops, ", "))
	case KindCompare:
		return fmt.Sprintf("%s.%s %s", v.Kind().Prefix(), v.CompareOp(), strings.Join(ops, ", "))
	case KindCall:
		return fmt.Sprintf("%s %s(%s)", v.Kind().Prefix(), v.Callee().Name(), strings.Join(ops, ", "))
	default:
		if len(ops) == 0 {
			return v.Kind().Prefix()
		}
		return fmt.Sprintf("%s %s", v.Kind().Prefix(), strings.Join(ops, ", "))
	}
}

func (d *dumper) formatTarget(target *Value) string {
	args := TargetArguments(target)
	if len(args) == 0 {
		return d.blockName(target.DestinationBlock())
	}
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = d.name(a)
	}
	return fmt.Sprintf("%s(%s)", d.blockName(target.DestinationBlock()), strings.Join(names, ", "))
}

func (d *dumper) formatTerminator(t *Value) string {
	switch t.Kind() {
	case KindReturn:
		if v := ReturnValue(t); v != nil {
			return "ret " + d.name(v)
		}
		return "ret"
	case KindUnconditionalBranch:
		return "branch " + d.formatTarget(TerminatorTargets(t)[0])
	case KindConditionalBranch:
		return fmt.Sprintf("branch.if %s, %s, %s",
			d.name(Condition(t)), d.formatTarget(TrueTarget(t)), d.formatTarget(FalseTarget(t)))
	case KindSwitchBranch:
		parts := make([]string, 0, t.NumOperands())
		for _, tgt := range TerminatorTargets(t) {
			parts = append(parts, d.formatTarget(tgt))
		}
		return fmt.Sprintf("switch %s, %s", d.name(SwitchSelector(t)), strings.Join(parts, ", "))
	}
	return t.Kind().Prefix()
}

// DumpString renders the method listing into a string, for tests and
// fingerprinting.
func DumpString(m *Method) (string, error) {
	var sb strings.Builder
	if err := DumpMethod(&sb, m); err != nil {
		return "", err
	}
	return sb.String(), nil
}
