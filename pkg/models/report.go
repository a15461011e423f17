package models

import "time"

// FileReport is the per-file analysis result.
type FileReport struct {
	Path        string       `json:"path"`
	Language    string       `json:"language"`
	Violations  []Violation  `json:"violations"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	ParseFailed bool         `json:"parse_failed,omitempty"`
	ParseError  string       `json:"parse_error,omitempty"`

	// NotApplicable lists safety rules the front end cannot check for this
	// file's language, recorded explicitly rather than passed silently.
	NotApplicable []RuleNote `json:"not_applicable,omitempty"`
}

// RuleNote explains why a safety rule was skipped for a file.
type RuleNote struct {
	RuleID int    `json:"rule_id"`
	Reason string `json:"reason"`
}

// Summary aggregates counts across a run.
type Summary struct {
	FilesAnalyzed int `json:"files_analyzed"`
	FilesFailed   int `json:"files_failed"`
	FilesSkipped  int `json:"files_skipped"`

	TotalViolations int `json:"total_violations"`
	CriticalCount   int `json:"critical_count"`
	HighCount       int `json:"high_count"`
	MediumCount     int `json:"medium_count"`
	LowCount        int `json:"low_count"`

	ByKind map[Kind]int `json:"by_kind,omitempty"`
	ByRule map[int]int  `json:"by_rule,omitempty"`
}

// NewSummary creates an initialized summary.
func NewSummary() Summary {
	return Summary{
		ByKind: make(map[Kind]int),
		ByRule: make(map[int]int),
	}
}

// AddViolation updates counts for a single violation.
func (s *Summary) AddViolation(v Violation) {
	s.TotalViolations++
	s.ByKind[v.Kind]++
	if v.RuleID > 0 {
		s.ByRule[v.RuleID]++
	}

	switch v.Severity {
	case SeverityCritical:
		s.CriticalCount++
	case SeverityHigh:
		s.HighCount++
	case SeverityMedium:
		s.MediumCount++
	case SeverityLow:
		s.LowCount++
	}
}

// Report is the full multi-file analysis result handed to reporting.
type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Files       []FileReport `json:"files"`
	Summary     Summary      `json:"summary"`
}

// Violations returns every violation across all files in report order.
func (r *Report) Violations() []Violation {
	var out []Violation
	for _, f := range r.Files {
		out = append(out, f.Violations...)
	}
	return out
}
