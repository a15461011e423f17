package severity

import (
	"testing"

	"github.com/couplint/couplint/pkg/models"
)

func TestFinalizeKindRules(t *testing.T) {
	engine := New(DefaultThresholds())

	tests := []struct {
		name         string
		violation    models.Violation
		wantLevel    int
		wantSeverity models.Severity
	}{
		{
			name: "god object below critical loc",
			violation: models.Violation{
				Kind:     models.KindGodObject,
				Severity: models.SeverityCritical,
				Context:  map[string]any{models.CtxEstimatedLOC: 600},
			},
			wantLevel:    9,
			wantSeverity: models.SeverityCritical,
		},
		{
			name: "god object past critical loc",
			violation: models.Violation{
				Kind:     models.KindGodObject,
				Severity: models.SeverityCritical,
				Context:  map[string]any{models.CtxEstimatedLOC: 1500},
			},
			wantLevel:    10,
			wantSeverity: models.SeverityCritical,
		},
		{
			name: "position at moderate count",
			violation: models.Violation{
				Kind:     models.KindPosition,
				Severity: models.SeverityMedium,
				Context:  map[string]any{models.CtxParameterCount: 7},
			},
			wantLevel:    5,
			wantSeverity: models.SeverityMedium,
		},
		{
			name: "position past critical count",
			violation: models.Violation{
				Kind:     models.KindPosition,
				Severity: models.SeverityMedium,
				Context:  map[string]any{models.CtxParameterCount: 11},
			},
			wantLevel:    8,
			wantSeverity: models.SeverityHigh,
		},
		{
			name: "meaning in conditional",
			violation: models.Violation{
				Kind:     models.KindMeaning,
				Severity: models.SeverityMedium,
				Context:  map[string]any{models.CtxInConditional: true},
			},
			wantLevel:    6,
			wantSeverity: models.SeverityMedium,
		},
		{
			name: "meaning in return",
			violation: models.Violation{
				Kind:     models.KindMeaning,
				Severity: models.SeverityMedium,
				Context:  map[string]any{models.CtxInReturn: true},
			},
			wantLevel:    5,
			wantSeverity: models.SeverityMedium,
		},
		{
			name: "meaning elsewhere",
			violation: models.Violation{
				Kind:     models.KindMeaning,
				Severity: models.SeverityMedium,
			},
			wantLevel:    4,
			wantSeverity: models.SeverityMedium,
		},
		{
			name: "identity few globals",
			violation: models.Violation{
				Kind:     models.KindIdentity,
				Severity: models.SeverityMedium,
				Context:  map[string]any{models.CtxGlobalCount: 3},
			},
			wantLevel:    3,
			wantSeverity: models.SeverityLow,
		},
		{
			name: "identity many globals",
			violation: models.Violation{
				Kind:     models.KindIdentity,
				Severity: models.SeverityMedium,
				Context:  map[string]any{models.CtxGlobalCount: 6},
			},
			wantLevel:    9,
			wantSeverity: models.SeverityCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.violation
			engine.Finalize(&v)
			if v.Level != tt.wantLevel {
				t.Errorf("level = %d, want %d", v.Level, tt.wantLevel)
			}
			if v.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", v.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestFinalizeDefaultKeepsLabel(t *testing.T) {
	engine := New(DefaultThresholds())

	tests := []struct {
		severity models.Severity
		want     int
	}{
		{models.SeverityCritical, 8},
		{models.SeverityHigh, 6},
		{models.SeverityMedium, 4},
		{models.SeverityLow, 2},
	}

	for _, tt := range tests {
		v := models.Violation{Kind: models.KindTiming, Severity: tt.severity}
		engine.Finalize(&v)
		if v.Level != tt.want {
			t.Errorf("%s: level = %d, want %d", tt.severity, v.Level, tt.want)
		}
		// The categorical label is authoritative for kinds without a
		// context rule; critical must not be demoted to high.
		if v.Severity != tt.severity {
			t.Errorf("%s: label changed to %s", tt.severity, v.Severity)
		}
	}
}

func TestFinalizeSkipsPresetLevel(t *testing.T) {
	engine := New(DefaultThresholds())

	v := models.Violation{
		Kind:     models.KindSafetyRule,
		Severity: models.SeverityCritical,
		Level:    9,
	}
	engine.Finalize(&v)
	if v.Level != 9 {
		t.Errorf("preset level overwritten: got %d", v.Level)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	engine := New(DefaultThresholds())

	v := models.Violation{
		Kind:     models.KindPosition,
		Severity: models.SeverityMedium,
		Context:  map[string]any{models.CtxParameterCount: 11},
	}
	engine.Finalize(&v)
	level, label := v.Level, v.Severity
	engine.Finalize(&v)
	if v.Level != level || v.Severity != label {
		t.Errorf("second Finalize changed the violation: %d/%s vs %d/%s", v.Level, v.Severity, level, label)
	}
}

func TestFinalizeAll(t *testing.T) {
	engine := New(DefaultThresholds())

	violations := []models.Violation{
		{Kind: models.KindTiming, Severity: models.SeverityMedium},
		{Kind: models.KindName, Severity: models.SeverityLow},
	}
	engine.FinalizeAll(violations)
	for i, v := range violations {
		if v.Level == 0 {
			t.Errorf("violation %d left without a level", i)
		}
	}
}
