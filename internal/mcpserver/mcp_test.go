package mcpserver

import (
	"strings"
	"testing"

	"github.com/couplint/couplint/pkg/config"
	"github.com/couplint/couplint/pkg/models"
)

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test", config.DefaultConfig())
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
}

func TestServerNilConfig(t *testing.T) {
	if server := NewServer("dev", nil); server == nil {
		t.Fatal("NewServer with nil config returned nil")
	}
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"connascence": describeConnascence,
		"safety":      describeSafety,
		"duplicates":  describeDuplicates,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			if desc == "" {
				t.Fatalf("%s description is empty", name)
			}
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "RESULTS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s section", name, section)
				}
			}
		})
	}
}

func TestFilterViolations(t *testing.T) {
	report := &models.Report{
		Files: []models.FileReport{
			{
				Path: "a.py",
				Violations: []models.Violation{
					{Kind: models.KindMeaning, Severity: models.SeverityMedium, Level: 4},
					{Kind: models.KindPosition, Severity: models.SeverityCritical, Level: 8},
				},
			},
			{
				Path:        "broken.py",
				ParseFailed: true,
				Violations: []models.Violation{
					{Kind: models.KindUnparseable, Severity: models.SeverityLow},
				},
			},
		},
		Summary: models.NewSummary(),
	}
	report.Summary.FilesAnalyzed = 1
	report.Summary.FilesFailed = 1
	for _, v := range report.Files[0].Violations {
		report.Summary.AddViolation(v)
	}

	filterViolations(report, func(v models.Violation) bool { return v.Level >= 8 })

	if len(report.Files[0].Violations) != 1 {
		t.Fatalf("expected 1 surviving violation, got %d", len(report.Files[0].Violations))
	}
	if report.Summary.TotalViolations != 1 || report.Summary.CriticalCount != 1 {
		t.Errorf("summary not recomputed: %+v", report.Summary)
	}
	if report.Summary.FilesFailed != 1 {
		t.Errorf("file counts must survive filtering: %+v", report.Summary)
	}
	// The unparseable sentinel is not subject to level filtering.
	if len(report.Files[1].Violations) != 1 {
		t.Error("parse-failed file lost its sentinel")
	}
}

func TestToolResultFormats(t *testing.T) {
	data := map[string]any{"answer": 42}

	res, _, err := toolResult(data, "json")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if res.IsError {
		t.Error("result flagged as error")
	}

	if res, _, err = toolResult(data, ""); err != nil {
		t.Fatalf("toon: %v", err)
	} else if len(res.Content) == 0 {
		t.Error("empty content")
	}
}
