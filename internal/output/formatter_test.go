package output

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couplint/couplint/internal/testutil"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"sarif", FormatSARIF},
		{"text", FormatText},
		{"", FormatText},
		{"bogus", FormatText},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriteReportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}

	if err := f.WriteReport(sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(testutil.ReadFile(t, path)), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decoded["summary"]; !ok {
		t.Error("JSON report missing summary")
	}
}

func TestWriteReportMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	f, err := NewFormatter(FormatMarkdown, path, false)
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}
	if err := f.WriteReport(sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	content := testutil.ReadFile(t, path)
	if !strings.Contains(content, "app.py") {
		t.Errorf("markdown output missing file section:\n%s", content)
	}
	if !strings.Contains(content, "| Location |") {
		t.Errorf("markdown output missing table header:\n%s", content)
	}
}

func TestWriteReportText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	f, err := NewFormatter(FormatText, path, true)
	if err != nil {
		t.Fatalf("new formatter: %v", err)
	}
	if err := f.WriteReport(sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	content := testutil.ReadFile(t, path)
	if !strings.Contains(content, "Files analyzed: 1") {
		t.Errorf("text output missing summary:\n%s", content)
	}
	if strings.Contains(content, "\x1b[") {
		t.Error("file output must not contain color escapes")
	}
}
