package transform

import (
	"fmt"

	"ignis/internal/ir"
)

// Default if-conversion bounds.
const (
	DefaultMaxBlockSize      = 2
	DefaultMaxSizeDifference = 1
)

// IfConversion rewrites simple if diamonds into straight-line code:
// the two arms merge into the entry, every exit-block parameter is
// replaced by a select predicate over the branch condition, and the
// exit merges in behind them. Diamonds with side effects or with arms
// beyond the size bounds are left alone.
type IfConversion struct {
	// MaxBlockSize is the largest arm body accepted, in values.
	MaxBlockSize int
	// MaxSizeDifference is the largest accepted size skew between the
	// two arms.
	MaxSizeDifference int
}

// NewIfConversion validates the knobs; both must be at least 1.
func NewIfConversion(maxBlockSize, maxSizeDifference int) (*IfConversion, error) {
	if maxBlockSize < 1 {
		return nil, fmt.Errorf("%w: MaxBlockSize %d, must be >= 1", ir.ErrInvalidArgument, maxBlockSize)
	}
	if maxSizeDifference < 1 {
		return nil, fmt.Errorf("%w: MaxSizeDifference %d, must be >= 1", ir.ErrInvalidArgument, maxSizeDifference)
	}
	return &IfConversion{MaxBlockSize: maxBlockSize, MaxSizeDifference: maxSizeDifference}, nil
}

func (p *IfConversion) Name() string { return "if-conversion" }

// candidate carries everything Apply needs after the analysis phase,
// so the rewrite never consults a stale snapshot.
type candidate struct {
	info ir.IfInfo
	vars []ir.IfVariable
}

// Apply performs a single sweep over the current IfInfos snapshot.
// Re-running may expose further opportunities; iterating is the
// pipeline's decision.
func (p *IfConversion) Apply(m *ir.Method) (bool, error) {
	scope, err := ir.NewScope(m)
	if err != nil {
		return false, err
	}
	dom := ir.NewDominators(ir.NewCFG(scope))

	var cands []candidate
	for _, info := range ir.NewIfInfos(dom).Infos() {
		if !p.applicable(&info) {
			continue
		}
		cands = append(cands, candidate{info: info, vars: info.Variables()})
	}
	if len(cands) == 0 {
		return false, nil
	}

	b, err := m.NewBuilder()
	if err != nil {
		return false, err
	}

	// Converting one diamond detaches its arm and exit blocks; a later
	// candidate touching any of them is stale and skipped.
	touched := make(map[*ir.BasicBlock]struct{})
	converted := false
	for _, c := range cands {
		if overlaps(touched, c.info) {
			continue
		}
		if err := p.convert(b, c); err != nil {
			b.Abandon()
			return converted, err
		}
		touched[c.info.IfBlock] = struct{}{}
		touched[c.info.ElseBlock] = struct{}{}
		touched[c.info.ExitBlock] = struct{}{}
		touched[c.info.Entry] = struct{}{}
		converted = true
	}

	if err := b.Dispose(); err != nil {
		return converted, err
	}
	return converted, nil
}

func (p *IfConversion) applicable(info *ir.IfInfo) bool {
	if !info.IsSimple() {
		return false
	}
	if info.IfBlock.Params().Len() != 0 || info.ElseBlock.Params().Len() != 0 {
		return false
	}
	ifSize := bodySize(info.IfBlock)
	elseSize := bodySize(info.ElseBlock)
	if ifSize > p.MaxBlockSize || elseSize > p.MaxBlockSize {
		return false
	}
	if abs(ifSize-elseSize) > p.MaxSizeDifference {
		return false
	}
	if info.IfBlock.HasSideEffects() || info.ElseBlock.HasSideEffects() {
		return false
	}
	return true
}

func (p *IfConversion) convert(b *ir.Builder, c candidate) error {
	entry := b.Block(c.info.Entry)

	// Flatten the two arms; their parameters stay behind (applicable
	// rejects arms that have any).
	if err := entry.MergeBlock(c.info.IfBlock, false); err != nil {
		return err
	}
	if err := entry.MergeBlock(c.info.ElseBlock, false); err != nil {
		return err
	}

	// Select each joined value by the branch condition, then retire
	// the exit parameter it replaces.
	for _, v := range c.vars {
		sel, err := entry.CreatePredicate(c.info.Condition, v.TrueValue, v.FalseValue)
		if err != nil {
			return err
		}
		if err := v.Param.Replace(sel); err != nil {
			return err
		}
	}

	// The exit merges in behind the predicates and donates its
	// terminator; its replaced parameters compact away on disposal.
	return entry.MergeBlock(c.info.ExitBlock, false)
}

func overlaps(touched map[*ir.BasicBlock]struct{}, info ir.IfInfo) bool {
	for _, bb := range []*ir.BasicBlock{info.Entry, info.IfBlock, info.ElseBlock, info.ExitBlock} {
		if _, ok := touched[bb]; ok {
			return true
		}
	}
	return false
}

func bodySize(bb *ir.BasicBlock) int {
	n := 0
	for _, ref := range bb.Body() {
		if v := ref.Resolve(); v != nil && !v.IsReplaced() {
			n++
		}
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
