package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/couplint/couplint/pkg/models"
)

// BuildRenderable turns an analysis report into its text/markdown form: a
// summary block, one violations table per file, and the safety notes.
func BuildRenderable(report *models.Report) Renderable {
	group := &Group{
		Title: "Coupling Analysis",
		Data:  report,
	}

	group.Parts = append(group.Parts, summarySection(&report.Summary))

	for i := range report.Files {
		fr := &report.Files[i]
		if fr.ParseFailed {
			group.Parts = append(group.Parts, &Section{
				Title:   fr.Path,
				Content: fmt.Sprintf("parse failed: %s", fr.ParseError),
			})
			continue
		}
		if len(fr.Violations) == 0 {
			continue
		}
		group.Parts = append(group.Parts, violationsTable(fr))
	}

	return group
}

func summarySection(s *models.Summary) *Section {
	var b strings.Builder
	fmt.Fprintf(&b, "Files analyzed: %d", s.FilesAnalyzed)
	if s.FilesFailed > 0 {
		fmt.Fprintf(&b, "  failed to parse: %d", s.FilesFailed)
	}
	if s.FilesSkipped > 0 {
		fmt.Fprintf(&b, "  skipped: %d", s.FilesSkipped)
	}
	fmt.Fprintf(&b, "\nViolations: %d (critical %d, high %d, medium %d, low %d)",
		s.TotalViolations, s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount)
	fmt.Fprintf(&b, "\nSafety compliance: %d%%", ComplianceScore(s))

	if len(s.ByKind) > 0 {
		kinds := make([]string, 0, len(s.ByKind))
		for k := range s.ByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		parts := make([]string, 0, len(kinds))
		for _, k := range kinds {
			parts = append(parts, fmt.Sprintf("%s %d", k, s.ByKind[models.Kind(k)]))
		}
		fmt.Fprintf(&b, "\nBy kind: %s", strings.Join(parts, ", "))
	}

	return &Section{Title: "Summary", Content: b.String(), Data: s}
}

func violationsTable(fr *models.FileReport) *Table {
	rows := make([][]string, 0, len(fr.Violations))
	for _, v := range fr.Violations {
		rule := ""
		if v.RuleID > 0 {
			rule = strconv.Itoa(v.RuleID)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d:%d", v.Line, v.Column),
			string(v.Kind),
			string(v.Severity),
			strconv.Itoa(v.Level),
			rule,
			v.Description,
		})
	}
	return &Table{
		Title:   fr.Path,
		Headers: []string{"Location", "Kind", "Severity", "Level", "Rule", "Description"},
		Rows:    rows,
		Data:    fr,
	}
}

// ComplianceScore condenses the violation counts into a 0-100 score, with
// severer findings costing more.
func ComplianceScore(s *models.Summary) int {
	if s.FilesAnalyzed == 0 {
		return 100
	}
	weighted := s.CriticalCount*models.SeverityCritical.Weight() +
		s.HighCount*models.SeverityHigh.Weight() +
		s.MediumCount*models.SeverityMedium.Weight() +
		s.LowCount*models.SeverityLow.Weight()
	score := 100 - weighted
	if score < 0 {
		score = 0
	}
	return score
}
