// Package duplication finds near-duplicate functions by structural shape.
// Two functions whose bodies emit the same statement-kind sequence are
// duplicate candidates regardless of the names and values inside them.
//
// Shape-only signatures conflate functions that merely share control flow;
// tightening the signature would trade away recall on real duplicates, so
// the false positives stay.
package duplication

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/couplint/couplint/pkg/collect"
	"github.com/couplint/couplint/pkg/models"
)

// Analyzer groups functions by normalized body signature. Safe for
// concurrent use.
type Analyzer struct{}

// New creates a detector.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze emits one violation per redundant group member: a group of N
// functions sharing a signature yields N-1 violations, each naming the
// group's first member as the canonical original.
func (a *Analyzer) Analyze(state *collect.State) []models.Violation {
	var out []models.Violation
	state.BodySignatures(func(sig string, functions []string) {
		if len(functions) < 2 {
			return
		}

		groupKey := strconv.FormatUint(xxhash.Sum64String(sig), 16)
		original := functions[0]
		for _, dup := range functions[1:] {
			fn, ok := state.FindFunction(dup)
			if !ok {
				continue
			}
			out = append(out, models.Violation{
				Kind:           models.KindAlgorithm,
				Severity:       models.SeverityMedium,
				Layer:          models.LayerDuplication,
				File:           state.Path(),
				Line:           fn.StartLine,
				Column:         fn.Column,
				Description:    fmt.Sprintf("function %s shares its structure with %s (group %s, %d functions)", dup, original, groupKey, len(functions)),
				Recommendation: fmt.Sprintf("extract the shared algorithm from %s and %s into one function", original, dup),
				Context: map[string]any{
					models.CtxFunctionName: dup,
					models.CtxDuplicateOf:  original,
					models.CtxGroupSize:    len(functions),
				},
			})
		}
	})
	return out
}
