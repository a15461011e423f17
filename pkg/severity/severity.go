// Package severity assigns the numeric 1-10 level to every violation.
// Detectors only attach a categorical severity and context facts; the
// numeric scale is decided here, in one place, so two detectors can never
// rank the same finding differently.
package severity

import "github.com/couplint/couplint/pkg/models"

// Thresholds tune the context-sensitive level rules.
type Thresholds struct {
	// GodObjectCriticalLOC promotes a god object to the maximum level.
	GodObjectCriticalLOC int
	// PositionCriticalParams promotes positional coupling past this count.
	PositionCriticalParams int
	// IdentityCriticalGlobals promotes shared-state coupling past this count.
	IdentityCriticalGlobals int
}

// DefaultThresholds returns the standard promotion points.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GodObjectCriticalLOC:    1000,
		PositionCriticalParams:  10,
		IdentityCriticalGlobals: 5,
	}
}

// Engine finalizes violation levels.
type Engine struct {
	thresholds Thresholds
}

// New creates an engine with the given thresholds.
func New(t Thresholds) *Engine {
	return &Engine{thresholds: t}
}

// Finalize sets v.Level exactly once, from kind-specific rules where they
// exist and from the categorical severity otherwise. Violations carrying a
// pre-set level (safety rules pin their own) are left alone.
func (e *Engine) Finalize(v *models.Violation) {
	if v.Level != 0 {
		return
	}

	switch v.Kind {
	case models.KindGodObject:
		if loc, _ := v.IntContext(models.CtxEstimatedLOC); loc > e.thresholds.GodObjectCriticalLOC {
			v.Level = 10
		} else {
			v.Level = 9
		}
	case models.KindPosition:
		if params, _ := v.IntContext(models.CtxParameterCount); params > e.thresholds.PositionCriticalParams {
			v.Level = 8
		} else {
			v.Level = 5
		}
	case models.KindMeaning:
		switch {
		case v.BoolContext(models.CtxInConditional):
			v.Level = 6
		case v.BoolContext(models.CtxInReturn):
			v.Level = 5
		default:
			v.Level = 4
		}
	case models.KindIdentity:
		if globals, _ := v.IntContext(models.CtxGlobalCount); globals > e.thresholds.IdentityCriticalGlobals {
			v.Level = 9
		} else {
			v.Level = 3
		}
	default:
		// Kinds without a context rule keep their categorical label and
		// derive the level from it.
		v.Level = defaultLevel(v.Severity)
		return
	}

	alignSeverity(v)
}

// FinalizeAll runs Finalize over a slice in place.
func (e *Engine) FinalizeAll(violations []models.Violation) {
	for i := range violations {
		e.Finalize(&violations[i])
	}
}

func defaultLevel(s models.Severity) int {
	switch s {
	case models.SeverityCritical:
		return 8
	case models.SeverityHigh:
		return 6
	case models.SeverityMedium:
		return 4
	case models.SeverityLow:
		return 2
	default:
		return 2
	}
}

// alignSeverity keeps the categorical label consistent with the numeric
// level, so report filters and the numeric scale never disagree.
func alignSeverity(v *models.Violation) {
	switch {
	case v.Level >= 9:
		v.Severity = models.SeverityCritical
	case v.Level >= 7:
		v.Severity = models.SeverityHigh
	case v.Level >= 4:
		v.Severity = models.SeverityMedium
	default:
		v.Severity = models.SeverityLow
	}
}
