// Package safety checks ten fixed rules modeled on aerospace
// safety-critical coding standards. Rules a language front end cannot
// observe are recorded as not-applicable, never as silent passes.
package safety

import (
	"fmt"

	"github.com/couplint/couplint/pkg/collect"
	"github.com/couplint/couplint/pkg/models"
	"github.com/couplint/couplint/pkg/parser"
)

// Rule identifiers. The set is fixed; configuration can disable members but
// never add an eleventh.
const (
	RuleNoRecursion    = 1
	RuleBoundedLoops   = 2
	RuleNoDynamicCode  = 3
	RuleFunctionLength = 4
	RuleAssertDensity  = 5
	RuleDataHiding     = 6
	RuleParameterLimit = 7
	RuleNoMacros       = 8
	RulePointerDepth   = 9
	RuleCheckedResults = 10
)

// Thresholds tune the measurable rules.
type Thresholds struct {
	// FunctionLineCeiling is the largest acceptable function body span.
	FunctionLineCeiling int `json:"function_line_ceiling"`
	// AssertDensityMinLines is the span above which a function must
	// contain at least one assertion.
	AssertDensityMinLines int `json:"assert_density_min_lines"`
	// ParameterThreshold is the largest acceptable parameter count.
	ParameterThreshold int `json:"parameter_threshold"`
	// ParameterCritical escalates the parameter rule past this count.
	ParameterCritical int `json:"parameter_critical"`
	// GlobalVarThreshold is the largest acceptable distinct global count.
	GlobalVarThreshold int `json:"global_var_threshold"`
	// UncheckedResultCap bounds rule 10 findings per file.
	UncheckedResultCap int `json:"unchecked_result_cap"`
}

// DefaultThresholds returns the standard limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FunctionLineCeiling:   60,
		AssertDensityMinLines: 30,
		ParameterThreshold:    6,
		ParameterCritical:     10,
		GlobalVarThreshold:    5,
		UncheckedResultCap:    5,
	}
}

// Analyzer runs the safety rules. Safe for concurrent use.
type Analyzer struct {
	thresholds Thresholds
	enabled    map[int]bool
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThresholds sets custom rule thresholds.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithEnabledRules restricts checking to the given rule identifiers.
func WithEnabledRules(ids []int) Option {
	return func(a *Analyzer) {
		a.enabled = make(map[int]bool, len(ids))
		for _, id := range ids {
			a.enabled[id] = true
		}
	}
}

// New creates a rule engine with every rule enabled by default.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(a)
	}
	if a.thresholds.FunctionLineCeiling <= 0 {
		a.thresholds.FunctionLineCeiling = 60
	}
	if a.thresholds.AssertDensityMinLines <= 0 {
		a.thresholds.AssertDensityMinLines = 30
	}
	if a.thresholds.ParameterThreshold <= 0 {
		a.thresholds.ParameterThreshold = 6
	}
	if a.thresholds.ParameterCritical <= a.thresholds.ParameterThreshold {
		a.thresholds.ParameterCritical = a.thresholds.ParameterThreshold + 4
	}
	if a.thresholds.GlobalVarThreshold <= 0 {
		a.thresholds.GlobalVarThreshold = 5
	}
	if a.thresholds.UncheckedResultCap <= 0 {
		a.thresholds.UncheckedResultCap = 5
	}
	return a
}

func (a *Analyzer) ruleEnabled(id int) bool {
	if a.enabled == nil {
		return true
	}
	return a.enabled[id]
}

type ruleResult struct {
	violations []models.Violation
	note       *models.RuleNote
}

// Analyze runs every enabled rule and returns its findings alongside the
// not-applicable notes for rules the front end cannot observe.
func (a *Analyzer) Analyze(state *collect.State) ([]models.Violation, []models.RuleNote) {
	rules := []struct {
		id int
		fn func(*collect.State) ruleResult
	}{
		{RuleNoRecursion, a.checkRecursion},
		{RuleBoundedLoops, a.checkBoundedLoops},
		{RuleNoDynamicCode, a.checkDynamicCode},
		{RuleFunctionLength, a.checkFunctionLength},
		{RuleAssertDensity, a.checkAssertDensity},
		{RuleDataHiding, a.checkDataHiding},
		{RuleParameterLimit, a.checkParameterLimit},
		{RuleNoMacros, a.checkMacros},
		{RulePointerDepth, a.checkPointerDepth},
		{RuleCheckedResults, a.checkResults},
	}

	var violations []models.Violation
	var notes []models.RuleNote
	for _, r := range rules {
		if !a.ruleEnabled(r.id) {
			continue
		}
		res := r.fn(state)
		violations = append(violations, res.violations...)
		if res.note != nil {
			notes = append(notes, *res.note)
		}
	}
	return violations, notes
}

func (a *Analyzer) checkRecursion(state *collect.State) ruleResult {
	var res ruleResult
	for _, fn := range state.FunctionSignatures() {
		if !fn.Recursive {
			continue
		}
		res.violations = append(res.violations, a.violation(state, RuleNoRecursion, fn.StartLine, fn.Column,
			models.SeverityHigh,
			fmt.Sprintf("function %s calls itself; recursion depth is unbounded", fn.ID()),
			"rewrite using an explicit loop with a bounded work list",
			map[string]any{models.CtxFunctionName: fn.ID()}))
	}
	return res
}

func (a *Analyzer) checkBoundedLoops(state *collect.State) ruleResult {
	var res ruleResult
	for _, loop := range state.Loops() {
		if loop.Bounded {
			continue
		}
		res.violations = append(res.violations, a.violation(state, RuleBoundedLoops, loop.Pos.Line, loop.Pos.Column,
			models.SeverityHigh,
			"loop has no statically determinable upper bound",
			"bound the loop with an explicit limit counter or a terminating condition",
			map[string]any{models.CtxFunctionName: loop.Function}))
	}
	return res
}

func (a *Analyzer) checkDynamicCode(state *collect.State) ruleResult {
	if !parser.SupportsEval(state.Language()) {
		return notApplicable(RuleNoDynamicCode, "language has no dynamic code execution construct")
	}
	var res ruleResult
	for _, call := range state.EvalCalls() {
		res.violations = append(res.violations, a.violation(state, RuleNoDynamicCode, call.Pos.Line, call.Pos.Column,
			models.SeverityCritical,
			fmt.Sprintf("%s executes dynamically constructed code", call.Callee),
			"replace dynamic execution with an explicit dispatch table",
			map[string]any{models.CtxFunctionName: call.Function}))
	}
	return res
}

func (a *Analyzer) checkFunctionLength(state *collect.State) ruleResult {
	var res ruleResult
	for _, fn := range state.FunctionSignatures() {
		span := fn.LineSpan()
		if span <= a.thresholds.FunctionLineCeiling {
			continue
		}
		res.violations = append(res.violations, a.violation(state, RuleFunctionLength, fn.StartLine, fn.Column,
			models.SeverityMedium,
			fmt.Sprintf("function %s spans %d lines, over the %d-line ceiling", fn.ID(), span, a.thresholds.FunctionLineCeiling),
			"split the function so each piece fits on one screen",
			map[string]any{models.CtxFunctionName: fn.ID(), models.CtxEstimatedLOC: span}))
	}
	return res
}

func (a *Analyzer) checkAssertDensity(state *collect.State) ruleResult {
	if state.Language() != parser.LangPython {
		return notApplicable(RuleAssertDensity, "language has no assertion statement")
	}
	var res ruleResult
	for _, fn := range state.FunctionSignatures() {
		if fn.LineSpan() <= a.thresholds.AssertDensityMinLines || fn.AssertCount > 0 {
			continue
		}
		res.violations = append(res.violations, a.violation(state, RuleAssertDensity, fn.StartLine, fn.Column,
			models.SeverityMedium,
			fmt.Sprintf("function %s spans %d lines with no assertions", fn.ID(), fn.LineSpan()),
			"assert preconditions and invariants so failures surface close to their cause",
			map[string]any{models.CtxFunctionName: fn.ID()}))
	}
	return res
}

func (a *Analyzer) checkDataHiding(state *collect.State) ruleResult {
	count := state.GlobalCount()
	if count <= a.thresholds.GlobalVarThreshold {
		return ruleResult{}
	}
	pos := state.FirstGlobalPosition()
	v := a.violation(state, RuleDataHiding, pos.Line, pos.Column,
		models.SeverityCritical,
		fmt.Sprintf("%d distinct global variables exceed the data-hiding limit of %d", count, a.thresholds.GlobalVarThreshold),
		"declare data in the smallest scope that needs it",
		map[string]any{models.CtxGlobalCount: count})
	v.Level = 9 // pinned; the severity engine leaves preset levels alone
	return ruleResult{violations: []models.Violation{v}}
}

func (a *Analyzer) checkParameterLimit(state *collect.State) ruleResult {
	var res ruleResult
	for _, fn := range state.FunctionSignatures() {
		if fn.ParamCount <= a.thresholds.ParameterThreshold {
			continue
		}
		severity := models.SeverityMedium
		level := 5
		if fn.ParamCount > a.thresholds.ParameterCritical {
			severity = models.SeverityHigh
			level = 8
		}
		v := a.violation(state, RuleParameterLimit, fn.StartLine, fn.Column,
			severity,
			fmt.Sprintf("function %s takes %d parameters, over the limit of %d", fn.ID(), fn.ParamCount, a.thresholds.ParameterThreshold),
			"pass a single structured argument instead of a long parameter list",
			map[string]any{models.CtxFunctionName: fn.ID(), models.CtxParameterCount: fn.ParamCount})
		v.Level = level
		res.violations = append(res.violations, v)
	}
	return res
}

func (a *Analyzer) checkMacros(state *collect.State) ruleResult {
	return notApplicable(RuleNoMacros, "language has no preprocessor")
}

func (a *Analyzer) checkPointerDepth(state *collect.State) ruleResult {
	return notApplicable(RulePointerDepth, "front end does not expose indirection depth")
}

// checkResults flags statement-position calls whose result is silently
// discarded. Capped per file; an untyped codebase would otherwise drown the
// report in one rule's findings.
func (a *Analyzer) checkResults(state *collect.State) ruleResult {
	if state.Language() != parser.LangPython {
		return notApplicable(RuleCheckedResults, "toolchain rejects unused results at build time")
	}
	var res ruleResult
	for _, call := range state.UncheckedCalls() {
		if voidCallees[call.Callee] {
			continue
		}
		if len(res.violations) >= a.thresholds.UncheckedResultCap {
			break
		}
		res.violations = append(res.violations, a.violation(state, RuleCheckedResults, call.Pos.Line, call.Pos.Column,
			models.SeverityLow,
			fmt.Sprintf("result of %s is discarded", call.Callee),
			"bind and check the call's result, or name the discard explicitly",
			map[string]any{models.CtxFunctionName: call.Function}))
	}
	return res
}

// voidCallees are calls conventionally used for effect only.
var voidCallees = map[string]bool{
	"print":    true,
	"append":   true,
	"extend":   true,
	"add":      true,
	"update":   true,
	"remove":   true,
	"pop":      true,
	"clear":    true,
	"sort":     true,
	"reverse":  true,
	"insert":   true,
	"close":    true,
	"write":    true,
	"debug":    true,
	"info":     true,
	"warning":  true,
	"error":    true,
	"critical": true,
	"exit":     true,
}

func (a *Analyzer) violation(state *collect.State, ruleID int, line, column uint32, severity models.Severity, desc, rec string, ctx map[string]any) models.Violation {
	return models.Violation{
		Kind:           models.KindSafetyRule,
		Severity:       severity,
		Layer:          models.LayerSafety,
		File:           state.Path(),
		Line:           line,
		Column:         column,
		Description:    desc,
		Recommendation: rec,
		RuleID:         ruleID,
		Context:        ctx,
	}
}

func notApplicable(ruleID int, reason string) ruleResult {
	return ruleResult{note: &models.RuleNote{RuleID: ruleID, Reason: reason}}
}
