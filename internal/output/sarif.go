package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/couplint/couplint/pkg/models"
)

// SARIF 2.1.0 structures, limited to the fields code-scanning consumers
// actually read.

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string            `json:"id"`
	ShortDescription sarifMessage      `json:"shortDescription"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations"`
	Properties map[string]any  `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn,omitempty"`
}

// WriteSARIF serializes the report as a SARIF 2.1.0 log so code-scanning
// platforms can ingest it directly.
func WriteSARIF(w io.Writer, report *models.Report) error {
	seen := make(map[string]bool)
	var rules []sarifRule
	var results []sarifResult

	for _, v := range report.Violations() {
		ruleID := sarifRuleID(&v)
		if !seen[ruleID] {
			seen[ruleID] = true
			rules = append(rules, sarifRule{
				ID:               ruleID,
				ShortDescription: sarifMessage{Text: ruleID},
			})
		}

		line := v.Line
		if line == 0 {
			line = 1 // SARIF regions are 1-based
		}
		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   sarifLevel(v.Severity),
			Message: sarifMessage{Text: v.Description},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: v.File},
					Region:           sarifRegion{StartLine: line, StartColumn: v.Column + 1},
				},
			}},
			Properties: map[string]any{
				"severityLevel": v.Level,
				"fingerprint":   v.ContextHash,
			},
		})
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           "couplint",
				InformationURI: "https://github.com/couplint/couplint",
				Rules:          rules,
			}},
			Results: results,
		}},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}

func sarifRuleID(v *models.Violation) string {
	if v.RuleID > 0 {
		return fmt.Sprintf("safety-rule-%d", v.RuleID)
	}
	return string(v.Kind)
}

func sarifLevel(s models.Severity) string {
	switch s {
	case models.SeverityCritical, models.SeverityHigh:
		return "error"
	case models.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
