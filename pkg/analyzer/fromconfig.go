package analyzer

import (
	"github.com/couplint/couplint/pkg/analyzer/connascence"
	"github.com/couplint/couplint/pkg/analyzer/godobject"
	"github.com/couplint/couplint/pkg/analyzer/safety"
	"github.com/couplint/couplint/pkg/collect"
	"github.com/couplint/couplint/pkg/config"
	"github.com/couplint/couplint/pkg/models"
	"github.com/couplint/couplint/pkg/severity"
)

// FromConfig builds an engine from a validated configuration. Extra options
// apply after the config mapping and win on conflict.
func FromConfig(cfg *config.Config, extra ...EngineOption) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	t := cfg.Thresholds

	allowlist := connascence.DefaultAllowlist()
	for _, n := range cfg.Detection.AllowedNumbers {
		allowlist.Numbers[n] = struct{}{}
	}
	for _, s := range cfg.Detection.AllowedStrings {
		allowlist.Strings[s] = struct{}{}
	}

	blocking := collect.DefaultBlockingCalls()
	if len(cfg.Detection.BlockingCallNames) > 0 {
		blocking = make(map[string]struct{}, len(cfg.Detection.BlockingCallNames))
		for _, name := range cfg.Detection.BlockingCallNames {
			blocking[name] = struct{}{}
		}
	}

	safetyOpts := []safety.Option{
		safety.WithThresholds(safety.Thresholds{
			FunctionLineCeiling:   t.FunctionLineCeiling,
			AssertDensityMinLines: t.AssertDensityMinLines,
			ParameterThreshold:    t.ParameterThreshold,
			ParameterCritical:     t.ParameterCritical,
			GlobalVarThreshold:    t.GlobalVarThreshold,
		}),
	}
	if len(cfg.Detection.SafetyRulesEnabled) > 0 {
		safetyOpts = append(safetyOpts, safety.WithEnabledRules(cfg.Detection.SafetyRulesEnabled))
	}

	var disabled []models.Layer
	if !cfg.Analysis.Connascence {
		disabled = append(disabled, models.LayerConnascence)
	}
	if !cfg.Analysis.Safety {
		disabled = append(disabled, models.LayerSafety)
	}
	if !cfg.Analysis.GodObjects {
		disabled = append(disabled, models.LayerStructure)
	}
	if !cfg.Analysis.Duplicates {
		disabled = append(disabled, models.LayerDuplication)
	}

	opts := []EngineOption{
		WithConnascence(connascence.New(
			connascence.WithThresholds(connascence.Thresholds{
				ParameterThreshold: t.ParameterThreshold,
				ParameterCritical:  t.ParameterCritical,
				GlobalVarThreshold: t.GlobalVarThreshold,
			}),
			connascence.WithAllowlist(allowlist),
		)),
		WithSafety(safety.New(safetyOpts...)),
		WithGodObject(godobject.New(godobject.WithThresholds(godobject.Thresholds{
			MethodThreshold: t.GodObjectMethods,
			LOCThreshold:    t.GodObjectLOC,
		}))),
		WithSeverity(severity.New(severity.Thresholds{
			GodObjectCriticalLOC:    2 * t.GodObjectLOC,
			PositionCriticalParams:  t.ParameterCritical,
			IdentityCriticalGlobals: t.GlobalVarThreshold,
		})),
		WithCollector(collect.New(collect.Options{BlockingCallNames: blocking})),
		WithMaxWorkers(cfg.Workers),
	}
	if len(disabled) > 0 {
		opts = append(opts, WithDisabledLayers(disabled...))
	}
	opts = append(opts, extra...)

	return NewEngine(opts...)
}
