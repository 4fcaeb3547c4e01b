// Package ir implements the SSA intermediate representation of the
// kernel compiler: a control-flow graph of basic blocks with block
// parameters instead of phi nodes and explicit branch-argument
// passing.
//
// A Method owns its graph and is mutated only through a Builder; at
// most one builder is live per method. Builders hand out BlockBuilders
// with insertion cursors; terminators reference BranchTarget edge
// values that carry the argument tuple for the destination's block
// parameters. Replacing a value redirects every ValueRef to it; the
// builder's Dispose step compacts replaced values out of block bodies
// and drops branch-target arguments in lock-step with removed block
// parameters.
//
// Analyses (Scope, CFG, Dominators, IfInfos) operate on frozen
// snapshots in deterministic reverse post-order and become stale when
// the method mutates.
package ir
