package output

import (
	"strings"
	"testing"

	"github.com/couplint/couplint/pkg/models"
)

func sampleReport() *models.Report {
	report := &models.Report{
		Files: []models.FileReport{
			{
				Path:     "app.py",
				Language: "python",
				Violations: []models.Violation{
					{
						Kind:        models.KindMeaning,
						Severity:    models.SeverityMedium,
						Level:       6,
						File:        "app.py",
						Line:        12,
						Column:      8,
						Description: `magic literal "947" used without a named constant`,
						Layer:       models.LayerConnascence,
					},
					{
						Kind:        models.KindSafetyRule,
						Severity:    models.SeverityHigh,
						Level:       8,
						File:        "app.py",
						Line:        30,
						RuleID:      7,
						Description: "function wide takes 11 parameters, over the limit of 6",
						Layer:       models.LayerSafety,
					},
				},
			},
			{
				Path:        "broken.py",
				ParseFailed: true,
				ParseError:  "unexpected token",
			},
		},
		Summary: models.NewSummary(),
	}
	report.Summary.FilesAnalyzed = 1
	report.Summary.FilesFailed = 1
	for _, v := range report.Files[0].Violations {
		report.Summary.AddViolation(v)
	}
	return report
}

func TestBuildRenderable(t *testing.T) {
	group, ok := BuildRenderable(sampleReport()).(*Group)
	if !ok {
		t.Fatal("expected a Group")
	}

	// Summary, one violations table, one parse-failure section.
	if len(group.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(group.Parts))
	}

	summary, ok := group.Parts[0].(*Section)
	if !ok || summary.Title != "Summary" {
		t.Fatalf("first part must be the summary, got %#v", group.Parts[0])
	}
	if !strings.Contains(summary.Content, "Files analyzed: 1") {
		t.Errorf("summary missing file count: %s", summary.Content)
	}
	if !strings.Contains(summary.Content, "failed to parse: 1") {
		t.Errorf("summary missing failure count: %s", summary.Content)
	}
	if !strings.Contains(summary.Content, "Safety compliance:") {
		t.Errorf("summary missing compliance score: %s", summary.Content)
	}

	table, ok := group.Parts[1].(*Table)
	if !ok {
		t.Fatalf("second part must be the violations table, got %#v", group.Parts[1])
	}
	if table.Title != "app.py" || len(table.Rows) != 2 {
		t.Errorf("table = %q with %d rows", table.Title, len(table.Rows))
	}
	if table.Rows[0][0] != "12:8" {
		t.Errorf("location cell = %q, want 12:8", table.Rows[0][0])
	}
	if table.Rows[1][4] != "7" {
		t.Errorf("rule cell = %q, want 7", table.Rows[1][4])
	}

	failure, ok := group.Parts[2].(*Section)
	if !ok || !strings.Contains(failure.Content, "unexpected token") {
		t.Errorf("parse failure section missing: %#v", group.Parts[2])
	}
}

func TestComplianceScore(t *testing.T) {
	tests := []struct {
		name    string
		summary models.Summary
		want    int
	}{
		{"no files", models.Summary{}, 100},
		{"clean", models.Summary{FilesAnalyzed: 3}, 100},
		{"mixed", models.Summary{FilesAnalyzed: 1, CriticalCount: 2, MediumCount: 5}, 70},
		{"floored at zero", models.Summary{FilesAnalyzed: 1, CriticalCount: 20}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComplianceScore(&tt.summary); got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}
