// Package collect implements the single-pass tree walk that feeds every
// analysis layer. One walk per file populates a State; the classifiers,
// safety rules, structural checks and duplicate detector all read that State
// and never touch the syntax tree again.
package collect

import (
	"fmt"
	"sort"

	"github.com/couplint/couplint/pkg/parser"
)

// Position is a source location. Known is false when the node the walker saw
// carried no usable position, in which case Line and Column are zero and the
// finding degrades to file-level precision instead of being dropped.
type Position struct {
	Line   uint32
	Column uint32
	Known  bool
}

// LiteralSite records one literal occurrence in source order.
type LiteralSite struct {
	Value         string
	Numeric       bool
	Pos           Position
	Enclosing     parser.NodeKind
	InConditional bool
	InReturn      bool
	ModuleScope   bool
	FunctionName  string
	AssignedName  string // LHS identifier for module-scope assignments
}

// FunctionSig describes one function or method declaration.
type FunctionSig struct {
	Name        string
	Scope       string // enclosing class or receiver type, empty at module scope
	ParamCount  int
	ParamNames  []string
	TypedParams int
	StartLine   uint32
	EndLine     uint32
	Column      uint32
	BodyTokens  []string // one statement-kind token per direct body statement
	AssertCount int
	Recursive   bool
}

// ID returns the function identity used for grouping: name qualified by its
// defining scope.
func (f *FunctionSig) ID() string {
	if f.Scope == "" {
		return f.Name
	}
	return fmt.Sprintf("%s.%s", f.Scope, f.Name)
}

// LineSpan returns the body line span of the function.
func (f *FunctionSig) LineSpan() int {
	if f.EndLine < f.StartLine {
		return 0
	}
	return int(f.EndLine - f.StartLine + 1)
}

// ClassInfo describes one class-like definition.
type ClassInfo struct {
	Name         string
	MethodCount  int
	EstimatedLOC int
	Pos          Position
}

// CallSite records one call expression.
type CallSite struct {
	Callee   string // final name segment
	Receiver string // empty for plain function calls
	Pos      Position
	Function string // enclosing function ID, empty at module scope
	Guarded  bool   // a conditional sits between this call and the previous statement
}

// ImportRecord records one imported symbol and its local binding.
type ImportRecord struct {
	Module string
	Local  string
	Pos    Position
}

// LoopSite records one loop construct and whether a static upper bound could
// be determined for it.
type LoopSite struct {
	Kind     parser.NodeKind
	Pos      Position
	Bounded  bool
	Function string
}

// State is the per-file collection state. It is created fresh for each file,
// written exactly once during the walk, and read-only afterwards: all fields
// are unexported and exposed through accessors so no classifier can mutate
// what another classifier depends on.
type State struct {
	path     string
	language parser.Language

	literals  []LiteralSite
	functions []FunctionSig
	classes   []ClassInfo
	globals   map[string]Position
	bodySigs  map[string][]string // normalized signature -> function IDs, discovery order
	sigOrder  []string            // signatures in discovery order, for determinism
	blocking  []CallSite
	receiver  []CallSite
	evalCalls []CallSite
	unchecked []CallSite // expression-statement calls whose result is discarded
	imports   []ImportRecord
	loops     []LoopSite
}

// Path returns the analyzed file path.
func (s *State) Path() string { return s.path }

// Language returns the file's detected language.
func (s *State) Language() parser.Language { return s.language }

// MagicLiteralSites returns every literal site in source order.
func (s *State) MagicLiteralSites() []LiteralSite { return s.literals }

// FunctionSignatures returns every function signature in source order.
func (s *State) FunctionSignatures() []FunctionSig { return s.functions }

// ClassInventory returns every class definition in source order.
func (s *State) ClassInventory() []ClassInfo { return s.classes }

// GlobalCount returns the number of distinct global names referenced or
// declared. Identity, not occurrence count, drives the coupling checks.
func (s *State) GlobalCount() int { return len(s.globals) }

// GlobalNames returns the distinct global names, sorted for determinism.
func (s *State) GlobalNames() []string {
	names := make([]string, 0, len(s.globals))
	for name := range s.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FirstGlobalPosition returns the earliest recorded global reference site,
// used as the anchor for the single per-file identity violation.
func (s *State) FirstGlobalPosition() Position {
	var best Position
	for _, pos := range s.globals {
		if !best.Known || (pos.Known && pos.Line < best.Line) {
			best = pos
		}
	}
	return best
}

// BodySignatures iterates normalized body signatures in discovery order,
// yielding the signature and the function IDs sharing it.
func (s *State) BodySignatures(fn func(sig string, functions []string)) {
	for _, sig := range s.sigOrder {
		fn(sig, s.bodySigs[sig])
	}
}

// BlockingCalls returns call sites matching the configured blocking-call
// names, in source order.
func (s *State) BlockingCalls() []CallSite { return s.blocking }

// ReceiverCalls returns method-call statements with an explicit receiver, in
// source order, for the execution-order heuristic.
func (s *State) ReceiverCalls() []CallSite { return s.receiver }

// EvalCalls returns dynamic code execution call sites (eval/exec).
func (s *State) EvalCalls() []CallSite { return s.evalCalls }

// UncheckedCalls returns expression-statement calls whose return value is
// discarded.
func (s *State) UncheckedCalls() []CallSite { return s.unchecked }

// ImportRecords returns imports in source order.
func (s *State) ImportRecords() []ImportRecord { return s.imports }

// Loops returns loop sites in source order.
func (s *State) Loops() []LoopSite { return s.loops }

// FindFunction returns the signature for a function ID, if collected.
func (s *State) FindFunction(id string) (FunctionSig, bool) {
	for _, fn := range s.functions {
		if fn.ID() == id {
			return fn, true
		}
	}
	return FunctionSig{}, false
}
