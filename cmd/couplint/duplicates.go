package main

import (
	"github.com/urfave/cli/v2"

	"github.com/couplint/couplint/pkg/analyzer"
	"github.com/couplint/couplint/pkg/models"
)

func duplicatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dup"},
		Usage:     "Find functions sharing the same control-flow shape",
		ArgsUsage: "[path...]",
		Action:    runDuplicates,
	}
}

func runDuplicates(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	report, err := runAnalysis(c, cfg, analyzer.WithDisabledLayers(
		models.LayerConnascence, models.LayerSafety, models.LayerStructure))
	if err != nil {
		return err
	}
	return writeReport(c, cfg, report)
}
