package models

// Kind identifies the form of coupling a violation represents.
type Kind string

// String implements fmt.Stringer for toon serialization.
func (k Kind) String() string {
	return string(k)
}

const (
	KindName      Kind = "connascence_of_name"
	KindType      Kind = "connascence_of_type"
	KindMeaning   Kind = "connascence_of_meaning"
	KindPosition  Kind = "connascence_of_position"
	KindAlgorithm Kind = "connascence_of_algorithm"
	KindExecution Kind = "connascence_of_execution"
	KindTiming    Kind = "connascence_of_timing"
	KindValue     Kind = "connascence_of_value"
	KindIdentity  Kind = "connascence_of_identity"

	// KindGodObject is emitted by the structural layer, one per offending class.
	KindGodObject Kind = "god_object"

	// KindSafetyRule is emitted by the safety-rule layer; RuleID names the rule.
	KindSafetyRule Kind = "safety_rule"

	// KindUnparseable is the sentinel for a file the front end could not parse.
	// It carries no severity level and is counted separately in the summary.
	KindUnparseable Kind = "unparseable"
)

// Severity is the coarse severity bucket of a violation.
type Severity string

// String implements fmt.Stringer for toon serialization.
func (s Severity) String() string {
	return string(s)
}

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight returns a numeric weight for sorting and compliance scoring
// (higher = more severe).
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 10
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Layer identifies which analysis layer emitted a violation. The aggregator
// deduplicates exact repeats within a layer but never across layers: the
// position classifier and the safety parameter-limit rule report the same
// fact through two lenses on purpose.
type Layer string

const (
	LayerConnascence Layer = "connascence"
	LayerSafety      Layer = "safety"
	LayerStructure   Layer = "structure"
	LayerDuplication Layer = "duplication"
	LayerParser      Layer = "parser"
)

// Violation is a single detected coupling or safety finding.
//
// A violation is immutable after creation except for Level, which the
// severity engine assigns exactly once during aggregation. Emitting layers
// leave Level at zero.
type Violation struct {
	Kind           Kind           `json:"kind" toon:"kind"`
	Severity       Severity       `json:"severity" toon:"severity"`
	Level          int            `json:"severity_level,omitempty" toon:"severity_level,omitempty"`
	File           string         `json:"file" toon:"file"`
	Line           uint32         `json:"line" toon:"line"`
	Column         uint32         `json:"column" toon:"column"`
	Description    string         `json:"description" toon:"description"`
	Recommendation string         `json:"recommendation,omitempty" toon:"recommendation,omitempty"`
	RuleID         int            `json:"rule_id,omitempty" toon:"rule_id,omitempty"`
	Layer          Layer          `json:"layer" toon:"layer"`
	Context        map[string]any `json:"context,omitempty" toon:"-"`
	ContextHash    string         `json:"context_hash,omitempty" toon:"context_hash,omitempty"`
}

// Context keys written by the collection layers and consumed by the severity
// engine. Downstream reporting may read them; core layers never read each
// other's context (that would couple the layers through the bag).
const (
	CtxParameterCount = "parameter_count"
	CtxGlobalCount    = "global_count"
	CtxInConditional  = "in_conditional"
	CtxInReturn       = "in_return"
	CtxEstimatedLOC   = "estimated_loc"
	CtxMethodCount    = "method_count"
	CtxLiteralValue   = "literal_value"
	CtxFunctionName   = "function_name"
	CtxClassName      = "class_name"
	CtxDuplicateOf    = "duplicate_of"
	CtxGroupSize      = "group_size"
	CtxPrinciple      = "principle_violated"
)

// IntContext reads an integer value from the context bag, tolerating the
// int/float64 ambiguity introduced by JSON round-trips.
func (v *Violation) IntContext(key string) (int, bool) {
	raw, ok := v.Context[key]
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// BoolContext reads a boolean value from the context bag.
func (v *Violation) BoolContext(key string) bool {
	raw, ok := v.Context[key]
	if !ok {
		return false
	}
	b, ok := raw.(bool)
	return ok && b
}

// Diagnostic records an internal analyzer fault. Diagnostics are kept apart
// from violations so a classifier crash never masquerades as a finding.
type Diagnostic struct {
	File    string `json:"file"`
	Layer   Layer  `json:"layer"`
	Message string `json:"message"`
}
