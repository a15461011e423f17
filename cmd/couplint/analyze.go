package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/couplint/couplint/internal/output"
	"github.com/couplint/couplint/internal/progress"
	"github.com/couplint/couplint/internal/scanner"
	"github.com/couplint/couplint/pkg/analyzer"
	"github.com/couplint/couplint/pkg/config"
	"github.com/couplint/couplint/pkg/models"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Run all detection layers over the given paths",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min-level",
				Usage: "Only report violations at or above this 1-10 level",
			},
			&cli.BoolFlag{
				Name:  "fail-on-critical",
				Usage: "Exit with code 2 when any critical violation is found",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	report, err := runAnalysis(c, cfg)
	if err != nil {
		return err
	}

	if minLevel := c.Int("min-level"); minLevel > 0 {
		filterReport(report, func(v models.Violation) bool { return v.Level >= minLevel })
	}

	if err := writeReport(c, cfg, report); err != nil {
		return err
	}

	if c.Bool("fail-on-critical") && report.Summary.CriticalCount > 0 {
		return cli.Exit(fmt.Sprintf("%d critical violations", report.Summary.CriticalCount), 2)
	}
	return nil
}

// runAnalysis scans the requested paths and runs the engine over them,
// with a progress bar on stderr for terminal runs.
func runAnalysis(c *cli.Context, cfg *config.Config, extra ...analyzer.EngineOption) (*models.Report, error) {
	scn := scanner.New(cfg)

	var files []string
	skipped := 0
	for _, path := range getPaths(c) {
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
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files found")
	}

	var tracker *progress.Tracker
	if cfg.Output.Format == "text" || cfg.Output.Format == "" {
		tracker = progress.NewTracker("analyzing", len(files))
		extra = append(extra, analyzer.WithProgress(tracker.Tick))
	}

	engine := analyzer.FromConfig(cfg, extra...)
	defer engine.Close()

	report, err := engine.Analyze(c.Context, files)
	if tracker != nil {
		if err != nil {
			tracker.FinishError(err)
		} else {
			tracker.FinishSuccess()
		}
	}
	if err != nil {
		return nil, err
	}
	report.Summary.FilesSkipped = skipped
	return report, nil
}

func writeReport(c *cli.Context, cfg *config.Config, report *models.Report) error {
	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.WriteReport(report)
}

// filterReport drops violations the predicate rejects and recomputes the
// summary. Parse failures stay untouched.
func filterReport(report *models.Report, keep func(models.Violation) bool) {
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
