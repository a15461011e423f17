// Package connascence classifies coupling violations from the collected
// per-file state. Each classifier is a pure function over the state; none of
// them touch the syntax tree. Algorithm coupling is the one kind not emitted
// here: the duplication analyzer owns it so each duplicate group is reported
// exactly once.
package connascence

import (
	"fmt"
	"strings"

	"github.com/couplint/couplint/pkg/collect"
	"github.com/couplint/couplint/pkg/models"
	"github.com/couplint/couplint/pkg/parser"
)

// Analyzer runs the connascence classifiers. Safe for concurrent use.
type Analyzer struct {
	thresholds Thresholds
	allowlist  Allowlist
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThresholds sets custom detection thresholds.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithAllowlist replaces the self-evident literal allowlist.
func WithAllowlist(al Allowlist) Option {
	return func(a *Analyzer) {
		a.allowlist = al
	}
}

// New creates a classifier set.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: DefaultThresholds(),
		allowlist:  DefaultAllowlist(),
	}
	for _, opt := range opts {
		opt(a)
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

	return a
}

type classifier struct {
	name string
	fn   func(*collect.State) []models.Violation
}

// Analyze runs every classifier over the state. A classifier panic becomes a
// diagnostic and never suppresses the others.
func (a *Analyzer) Analyze(state *collect.State) ([]models.Violation, []models.Diagnostic) {
	classifiers := []classifier{
		{"meaning", a.checkMeaning},
		{"position", a.checkPosition},
		{"identity", a.checkIdentity},
		{"timing", a.checkTiming},
		{"name", a.checkName},
		{"type", a.checkType},
		{"value", a.checkValue},
		{"execution", a.checkExecution},
	}

	var violations []models.Violation
	var diags []models.Diagnostic
	for _, c := range classifiers {
		vs, diag := runClassifier(c, state)
		violations = append(violations, vs...)
		if diag != nil {
			diags = append(diags, *diag)
		}
	}
	return violations, diags
}

func runClassifier(c classifier, state *collect.State) (vs []models.Violation, diag *models.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			vs = nil
			diag = &models.Diagnostic{
				File:    state.Path(),
				Layer:   models.LayerConnascence,
				Message: fmt.Sprintf("%s classifier failed: %v", c.name, r),
			}
		}
	}()
	return c.fn(state), nil
}

func (a *Analyzer) checkMeaning(state *collect.State) []models.Violation {
	var out []models.Violation
	for _, site := range state.MagicLiteralSites() {
		if site.Numeric {
			if a.allowlist.AllowsNumber(site.Value) {
				continue
			}
		} else if a.allowlist.AllowsString(site.Value) {
			continue
		}

		v := models.Violation{
			Kind:           models.KindMeaning,
			Severity:       models.SeverityMedium,
			Layer:          models.LayerConnascence,
			File:           state.Path(),
			Line:           site.Pos.Line,
			Column:         site.Pos.Column,
			Description:    fmt.Sprintf("magic literal %q used without a named constant", site.Value),
			Recommendation: "extract the literal into a named constant that states its meaning",
			Context: map[string]any{
				models.CtxLiteralValue:  site.Value,
				models.CtxInConditional: site.InConditional,
				models.CtxInReturn:      site.InReturn,
			},
		}
		if site.FunctionName != "" {
			v.Context[models.CtxFunctionName] = site.FunctionName
		}
		out = append(out, v)
	}
	return out
}

func (a *Analyzer) checkPosition(state *collect.State) []models.Violation {
	var out []models.Violation
	for _, fn := range state.FunctionSignatures() {
		if fn.ParamCount <= a.thresholds.ParameterThreshold {
			continue
		}

		severity := models.SeverityMedium
		if fn.ParamCount > a.thresholds.ParameterCritical {
			severity = models.SeverityCritical
		}
		out = append(out, models.Violation{
			Kind:           models.KindPosition,
			Severity:       severity,
			Layer:          models.LayerConnascence,
			File:           state.Path(),
			Line:           fn.StartLine,
			Column:         fn.Column,
			Description:    fmt.Sprintf("function %s takes %d parameters; callers must remember their order", fn.ID(), fn.ParamCount),
			Recommendation: "group related parameters into a struct or options type",
			Context: map[string]any{
				models.CtxParameterCount: fn.ParamCount,
				models.CtxFunctionName:   fn.ID(),
			},
		})
	}
	return out
}

func (a *Analyzer) checkIdentity(state *collect.State) []models.Violation {
	count := state.GlobalCount()
	if count <= a.thresholds.GlobalVarThreshold {
		return nil
	}

	pos := state.FirstGlobalPosition()
	return []models.Violation{{
		Kind:           models.KindIdentity,
		Severity:       models.SeverityHigh,
		Layer:          models.LayerConnascence,
		File:           state.Path(),
		Line:           pos.Line,
		Column:         pos.Column,
		Description:    fmt.Sprintf("%d distinct global variables shared across this file: %s", count, strings.Join(state.GlobalNames(), ", ")),
		Recommendation: "pass shared state explicitly instead of through module-level variables",
		Context: map[string]any{
			models.CtxGlobalCount: count,
		},
	}}
}

func (a *Analyzer) checkTiming(state *collect.State) []models.Violation {
	var out []models.Violation
	for _, call := range state.BlockingCalls() {
		out = append(out, models.Violation{
			Kind:           models.KindTiming,
			Severity:       models.SeverityMedium,
			Layer:          models.LayerConnascence,
			File:           state.Path(),
			Line:           call.Pos.Line,
			Column:         call.Pos.Column,
			Description:    fmt.Sprintf("blocking call %s couples correctness to wall-clock timing", call.Callee),
			Recommendation: "replace fixed delays with explicit synchronization or event waits",
			Context: map[string]any{
				models.CtxFunctionName: call.Function,
			},
		})
	}
	return out
}

// checkName flags imports whose local binding collides with an earlier
// import, silently shadowing it.
func (a *Analyzer) checkName(state *collect.State) []models.Violation {
	var out []models.Violation
	seen := make(map[string]collect.ImportRecord)
	for _, rec := range state.ImportRecords() {
		prev, dup := seen[rec.Local]
		if !dup {
			seen[rec.Local] = rec
			continue
		}
		if prev.Module == rec.Module {
			continue // re-import of the same thing, harmless
		}
		out = append(out, models.Violation{
			Kind:           models.KindName,
			Severity:       models.SeverityMedium,
			Layer:          models.LayerConnascence,
			File:           state.Path(),
			Line:           rec.Pos.Line,
			Column:         rec.Pos.Column,
			Description:    fmt.Sprintf("import %q from %s shadows the earlier import from %s", rec.Local, rec.Module, prev.Module),
			Recommendation: "alias one of the imports so each name has a single source",
			Context:        map[string]any{},
		})
	}
	return out
}

// checkType fires only for front ends with optional annotations; a language
// where every parameter is typed by construction has nothing to report.
func (a *Analyzer) checkType(state *collect.State) []models.Violation {
	if !parser.HasTypeAnnotations(state.Language()) {
		return nil
	}

	var out []models.Violation
	for _, fn := range state.FunctionSignatures() {
		if fn.ParamCount == 0 || fn.TypedParams > 0 {
			continue
		}
		out = append(out, models.Violation{
			Kind:           models.KindType,
			Severity:       models.SeverityLow,
			Layer:          models.LayerConnascence,
			File:           state.Path(),
			Line:           fn.StartLine,
			Column:         fn.Column,
			Description:    fmt.Sprintf("function %s declares %d parameters without type annotations", fn.ID(), fn.ParamCount),
			Recommendation: "annotate parameter types so callers agree on types by contract, not convention",
			Context: map[string]any{
				models.CtxParameterCount: fn.ParamCount,
				models.CtxFunctionName:   fn.ID(),
			},
		})
	}
	return out
}

// checkValue flags module-level configuration literals whose value also
// appears inline elsewhere in the file. The two sites must agree to stay
// correct, but nothing names that dependency.
func (a *Analyzer) checkValue(state *collect.State) []models.Violation {
	inline := make(map[string]bool)
	for _, site := range state.MagicLiteralSites() {
		if !site.ModuleScope {
			inline[site.Value] = true
		}
	}

	var out []models.Violation
	for _, site := range state.MagicLiteralSites() {
		if !site.ModuleScope || site.AssignedName == "" {
			continue
		}
		if site.Numeric && a.allowlist.AllowsNumber(site.Value) {
			continue
		}
		if !site.Numeric && a.allowlist.AllowsString(site.Value) {
			continue
		}
		if !inline[site.Value] {
			continue
		}
		out = append(out, models.Violation{
			Kind:           models.KindValue,
			Severity:       models.SeverityMedium,
			Layer:          models.LayerConnascence,
			File:           state.Path(),
			Line:           site.Pos.Line,
			Column:         site.Pos.Column,
			Description:    fmt.Sprintf("value %q assigned to %s is duplicated inline elsewhere in this file", site.Value, site.AssignedName),
			Recommendation: fmt.Sprintf("reference %s at the other sites instead of repeating the value", site.AssignedName),
			Context: map[string]any{
				models.CtxLiteralValue: site.Value,
			},
		})
	}
	return out
}

// checkExecution applies the conservative call-ordering heuristic: an
// unguarded statement call on a receiver immediately after an
// initializer-style call on the same receiver. Narrow on purpose: it
// misses far more orderings than it finds and should never gate a build
// on its own.
func (a *Analyzer) checkExecution(state *collect.State) []models.Violation {
	var out []models.Violation
	calls := state.ReceiverCalls()
	for i := 1; i < len(calls); i++ {
		prev, cur := calls[i-1], calls[i]
		if cur.Receiver != prev.Receiver || cur.Function != prev.Function {
			continue
		}
		if _, initer := initializerVerbs[strings.ToLower(prev.Callee)]; !initer {
			continue
		}
		if cur.Guarded {
			continue
		}
		out = append(out, models.Violation{
			Kind:           models.KindExecution,
			Severity:       models.SeverityMedium,
			Layer:          models.LayerConnascence,
			File:           state.Path(),
			Line:           cur.Pos.Line,
			Column:         cur.Pos.Column,
			Description:    fmt.Sprintf("%s.%s assumes %s.%s already succeeded, with no guard between them", cur.Receiver, cur.Callee, prev.Receiver, prev.Callee),
			Recommendation: "check the initializing call's result before the dependent call",
			Context: map[string]any{
				models.CtxFunctionName: cur.Function,
			},
		})
	}
	return out
}
