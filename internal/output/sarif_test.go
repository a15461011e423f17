package output

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						Region struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if log.Version != "2.1.0" {
		t.Errorf("version = %q", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("runs = %d", len(log.Runs))
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "couplint" {
		t.Errorf("driver = %q", run.Tool.Driver.Name)
	}

	if len(run.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(run.Results))
	}
	if run.Results[0].RuleID != "connascence_of_meaning" {
		t.Errorf("ruleId = %q", run.Results[0].RuleID)
	}
	if run.Results[1].RuleID != "safety-rule-7" {
		t.Errorf("safety ruleId = %q", run.Results[1].RuleID)
	}
	if run.Results[1].Level != "error" {
		t.Errorf("high severity maps to error, got %q", run.Results[1].Level)
	}

	region := run.Results[0].Locations[0].PhysicalLocation.Region
	if region.StartLine != 12 || region.StartColumn != 9 {
		t.Errorf("region = %+v, want 12:9 (columns are 1-based)", region)
	}
}
