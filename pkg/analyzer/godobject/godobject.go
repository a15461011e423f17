// Package godobject flags class-like definitions that have absorbed too much
// responsibility, by method count or by estimated size.
package godobject

import (
	"fmt"

	"github.com/couplint/couplint/pkg/collect"
	"github.com/couplint/couplint/pkg/models"
)

// Thresholds control what counts as a god object.
type Thresholds struct {
	// MethodThreshold is the largest acceptable method count.
	MethodThreshold int `json:"method_threshold"`
	// LOCThreshold is the largest acceptable estimated line count.
	LOCThreshold int `json:"loc_threshold"`
}

// DefaultThresholds returns the standard limits.
func DefaultThresholds() Thresholds {
	return Thresholds{MethodThreshold: 20, LOCThreshold: 500}
}

// Analyzer detects god objects. Safe for concurrent use.
type Analyzer struct {
	thresholds Thresholds
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThresholds sets custom detection thresholds.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// New creates a detector.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(a)
	}
	if a.thresholds.MethodThreshold <= 0 {
		a.thresholds.MethodThreshold = 20
	}
	if a.thresholds.LOCThreshold <= 0 {
		a.thresholds.LOCThreshold = 500
	}
	return a
}

// Analyze emits one violation per offending class, never one per method.
func (a *Analyzer) Analyze(state *collect.State) []models.Violation {
	var out []models.Violation
	for _, cls := range state.ClassInventory() {
		if cls.MethodCount <= a.thresholds.MethodThreshold && cls.EstimatedLOC <= a.thresholds.LOCThreshold {
			continue
		}
		out = append(out, models.Violation{
			Kind:           models.KindGodObject,
			Severity:       models.SeverityCritical,
			Layer:          models.LayerStructure,
			File:           state.Path(),
			Line:           cls.Pos.Line,
			Column:         cls.Pos.Column,
			Description:    fmt.Sprintf("%s holds %d methods across ~%d lines; it has become a god object", cls.Name, cls.MethodCount, cls.EstimatedLOC),
			Recommendation: "split the class along its responsibility seams into smaller collaborators",
			Context: map[string]any{
				models.CtxClassName:    cls.Name,
				models.CtxMethodCount:  cls.MethodCount,
				models.CtxEstimatedLOC: cls.EstimatedLOC,
				models.CtxPrinciple:    "single-responsibility",
			},
		})
	}
	return out
}
