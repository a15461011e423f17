package analyzer

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/zeebo/blake3"

	"github.com/couplint/couplint/pkg/analyzer/connascence"
	"github.com/couplint/couplint/pkg/analyzer/duplication"
	"github.com/couplint/couplint/pkg/analyzer/godobject"
	"github.com/couplint/couplint/pkg/analyzer/safety"
	"github.com/couplint/couplint/pkg/collect"
	"github.com/couplint/couplint/pkg/models"
	"github.com/couplint/couplint/pkg/parser"
	"github.com/couplint/couplint/pkg/severity"
)

// Engine runs the full per-file pipeline: parse, collect, the analysis
// layers, then severity finalization and aggregation. Each file owns its
// collection state, so files analyze in parallel with no shared mutation.
type Engine struct {
	connascence *connascence.Analyzer
	safety      *safety.Analyzer
	godobject   *godobject.Analyzer
	duplication *duplication.Analyzer
	severity    *severity.Engine
	collector   *collect.Collector

	maxWorkers int
	onProgress ProgressFunc
	disabled   map[models.Layer]bool
}

var _ FileAnalyzer[*models.Report] = (*Engine)(nil)

// EngineOption is a functional option for configuring Engine.
type EngineOption func(*Engine)

// WithConnascence replaces the connascence classifier set.
func WithConnascence(a *connascence.Analyzer) EngineOption {
	return func(e *Engine) { e.connascence = a }
}

// WithSafety replaces the safety-rule engine.
func WithSafety(a *safety.Analyzer) EngineOption {
	return func(e *Engine) { e.safety = a }
}

// WithGodObject replaces the god-object detector.
func WithGodObject(a *godobject.Analyzer) EngineOption {
	return func(e *Engine) { e.godobject = a }
}

// WithSeverity replaces the severity engine.
func WithSeverity(s *severity.Engine) EngineOption {
	return func(e *Engine) { e.severity = s }
}

// WithCollector replaces the tree-walk collector.
func WithCollector(c *collect.Collector) EngineOption {
	return func(e *Engine) { e.collector = c }
}

// WithMaxWorkers sets the parallel file worker count.
func WithMaxWorkers(n int) EngineOption {
	return func(e *Engine) { e.maxWorkers = n }
}

// WithProgress installs a per-file progress callback.
func WithProgress(fn ProgressFunc) EngineOption {
	return func(e *Engine) { e.onProgress = fn }
}

// WithDisabledLayers turns off whole detection layers.
func WithDisabledLayers(layers ...models.Layer) EngineOption {
	return func(e *Engine) {
		if e.disabled == nil {
			e.disabled = make(map[models.Layer]bool, len(layers))
		}
		for _, l := range layers {
			e.disabled[l] = true
		}
	}
}

// NewEngine creates an engine with default analyzers.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		connascence: connascence.New(),
		safety:      safety.New(),
		godobject:   godobject.New(),
		duplication: duplication.New(),
		severity:    severity.New(severity.DefaultThresholds()),
		collector:   collect.New(collect.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the pipeline over files in parallel and merges the per-file
// reports into one deterministic result. Cancellation is checked between
// files only; a file's analysis is atomic.
func (e *Engine) Analyze(ctx context.Context, files []string) (*models.Report, error) {
	reports := MapFilesN(files, e.maxWorkers, func(psr *parser.Parser, path string) (models.FileReport, error) {
		if err := ctx.Err(); err != nil {
			return models.FileReport{}, err
		}
		return e.analyzeFile(psr, path), nil
	}, e.onProgress)

	report := &models.Report{
		GeneratedAt: time.Now().UTC(),
		Files:       reports,
		Summary:     models.NewSummary(),
	}

	sort.Slice(report.Files, func(i, j int) bool {
		return report.Files[i].Path < report.Files[j].Path
	})

	for i := range report.Files {
		fr := &report.Files[i]
		if fr.ParseFailed {
			report.Summary.FilesFailed++
			continue
		}
		report.Summary.FilesAnalyzed++
		for _, v := range fr.Violations {
			report.Summary.AddViolation(v)
		}
	}

	return report, ctx.Err()
}

// AnalyzeSource runs the pipeline on in-memory source, for callers that do
// not have a file on disk.
func (e *Engine) AnalyzeSource(psr *parser.Parser, path string, source []byte) models.FileReport {
	res, err := psr.Parse(source, parser.DetectLanguage(path), path)
	if err != nil {
		return unparseableReport(path, err)
	}
	defer res.Tree.Close()
	return e.analyzeParsed(res)
}

// Close releases engine resources.
func (e *Engine) Close() {}

func (e *Engine) analyzeFile(psr *parser.Parser, path string) models.FileReport {
	res, err := psr.ParseFile(path)
	if err != nil {
		return unparseableReport(path, err)
	}
	defer res.Tree.Close()
	return e.analyzeParsed(res)
}

func (e *Engine) analyzeParsed(res *parser.ParseResult) models.FileReport {
	state, err := e.collector.Run(res)
	if err != nil {
		return unparseableReport(res.Path, err)
	}

	fr := models.FileReport{
		Path:     res.Path,
		Language: string(res.Language),
	}

	var all []models.Violation
	if !e.disabled[models.LayerConnascence] {
		connViolations, diags := e.connascence.Analyze(state)
		all = append(all, connViolations...)
		fr.Diagnostics = diags
	}
	if !e.disabled[models.LayerSafety] {
		safetyViolations, notes := e.safety.Analyze(state)
		all = append(all, safetyViolations...)
		fr.NotApplicable = notes
	}
	if !e.disabled[models.LayerStructure] {
		all = append(all, e.godobject.Analyze(state)...)
	}
	if !e.disabled[models.LayerDuplication] {
		all = append(all, e.duplication.Analyze(state)...)
	}

	e.severity.FinalizeAll(all)
	fr.Violations = aggregate(all)
	return fr
}

// aggregate orders violations for stable output and drops exact repeats
// within a layer. Cross-layer repeats survive: the position classifier and
// the parameter safety rule reporting the same function is two findings.
func aggregate(violations []models.Violation) []models.Violation {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := &violations[i], &violations[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.RuleID < b.RuleID
	})

	seen := make(map[string]bool, len(violations))
	out := violations[:0]
	for _, v := range violations {
		key := fmt.Sprintf("%s|%s|%d|%d|%d|%s", v.Layer, v.Kind, v.Line, v.Column, v.RuleID, v.Description)
		if seen[key] {
			continue
		}
		seen[key] = true
		v.ContextHash = contextHash(&v)
		out = append(out, v)
	}
	return out
}

// contextHash fingerprints a violation's identity for external baseline
// matching across runs.
func contextHash(v *models.Violation) string {
	h := blake3.New()
	fmt.Fprintf(h, "%s|%s|%s|%d|%d|%d|%s", v.File, v.Layer, v.Kind, v.Line, v.Column, v.RuleID, v.Description)
	return hex.EncodeToString(h.Sum(nil)[:8])
}

func unparseableReport(path string, err error) models.FileReport {
	return models.FileReport{
		Path:        path,
		ParseFailed: true,
		ParseError:  err.Error(),
		Violations: []models.Violation{{
			Kind:        models.KindUnparseable,
			Severity:    models.SeverityLow,
			Layer:       models.LayerParser,
			File:        path,
			Description: fmt.Sprintf("file could not be parsed: %v", err),
		}},
	}
}
