package main

import (
	"github.com/urfave/cli/v2"

	"github.com/couplint/couplint/pkg/analyzer"
	"github.com/couplint/couplint/pkg/models"
)

func safetyCmd() *cli.Command {
	return &cli.Command{
		Name:      "safety",
		Usage:     "Check only the ten safety rules",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{
				Name:  "rules",
				Usage: "Restrict checking to these rule ids (1-10)",
			},
		},
		Action: runSafety,
	}
}

func runSafety(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if rules := c.IntSlice("rules"); len(rules) > 0 {
		cfg.Detection.SafetyRulesEnabled = rules
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	report, err := runAnalysis(c, cfg, analyzer.WithDisabledLayers(
		models.LayerConnascence, models.LayerStructure, models.LayerDuplication))
	if err != nil {
		return err
	}
	return writeReport(c, cfg, report)
}
