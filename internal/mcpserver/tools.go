package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/couplint/couplint/internal/scanner"
	"github.com/couplint/couplint/pkg/analyzer"
	"github.com/couplint/couplint/pkg/models"
)

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// ConnascenceInput selects connascence analysis options.
type ConnascenceInput struct {
	AnalyzeInput
	MinLevel int `json:"min_level,omitempty" jsonschema:"Only report violations at or above this 1-10 severity level."`
}

// SafetyInput selects safety-rule options.
type SafetyInput struct {
	AnalyzeInput
	Rules []int `json:"rules,omitempty" jsonschema:"Restrict checking to these rule ids (1-10). Empty means all."`
}

// DuplicatesInput selects duplicate detection options.
type DuplicatesInput struct {
	AnalyzeInput
}

func (s *Server) handleAnalyzeConnascence(ctx context.Context, req *mcp.CallToolRequest, input ConnascenceInput) (*mcp.CallToolResult, any, error) {
	report, err := s.run(ctx, input.AnalyzeInput, models.LayerSafety, models.LayerStructure, models.LayerDuplication)
	if err != nil {
		return toolError(err.Error())
	}
	if input.MinLevel > 0 {
		filterViolations(report, func(v models.Violation) bool { return v.Level >= input.MinLevel })
	}
	return toolResult(report, input.Format)
}

func (s *Server) handleAnalyzeSafety(ctx context.Context, req *mcp.CallToolRequest, input SafetyInput) (*mcp.CallToolResult, any, error) {
	report, err := s.run(ctx, input.AnalyzeInput, models.LayerConnascence, models.LayerStructure, models.LayerDuplication)
	if err != nil {
		return toolError(err.Error())
	}
	if len(input.Rules) > 0 {
		want := make(map[int]bool, len(input.Rules))
		for _, id := range input.Rules {
			want[id] = true
		}
		filterViolations(report, func(v models.Violation) bool { return want[v.RuleID] })
	}
	return toolResult(report, input.Format)
}

func (s *Server) handleAnalyzeDuplicates(ctx context.Context, req *mcp.CallToolRequest, input DuplicatesInput) (*mcp.CallToolResult, any, error) {
	report, err := s.run(ctx, input.AnalyzeInput, models.LayerConnascence, models.LayerSafety, models.LayerStructure)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report, input.Format)
}

// run scans the requested paths and analyzes them with every layer except
// the excluded ones.
func (s *Server) run(ctx context.Context, input AnalyzeInput, exclude ...models.Layer) (*models.Report, error) {
	paths := input.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	scn := scanner.New(s.config)
	var files []string
	skipped := 0
	for _, path := range paths {
		if ok, err := scn.ScanFile(path); err == nil && ok {
			files = append(files, path)
			continue
		}
		result, err := scn.ScanDir(path)
		if err != nil {
			return nil, err
		}
		files = append(files, result.Files...)
		skipped += result.Skipped
	}

	engine := analyzer.FromConfig(s.config, analyzer.WithDisabledLayers(exclude...))
	defer engine.Close()

	report, err := engine.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}
	report.Summary.FilesSkipped = skipped
	return report, nil
}

func filterViolations(report *models.Report, keep func(models.Violation) bool) {
	summary := models.NewSummary()
	summary.FilesAnalyzed = report.Summary.FilesAnalyzed
	summary.FilesFailed = report.Summary.FilesFailed
	summary.FilesSkipped = report.Summary.FilesSkipped

	for i := range report.Files {
		fr := &report.Files[i]
		if fr.ParseFailed {
			continue
		}
		kept := fr.Violations[:0]
		for _, v := range fr.Violations {
			if !keep(v) {
				continue
			}
			kept = append(kept, v)
			summary.AddViolation(v)
		}
		fr.Violations = kept
	}
	report.Summary = summary
}

func toolResult(data any, format string) (*mcp.CallToolResult, any, error) {
	var text string
	switch format {
	case "json":
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, nil, err
		}
		text = string(out)
	default:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return nil, nil, err
		}
		text = string(out)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}
