package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeConnascence() string {
	return `Detects connascence (coupling) violations: magic literals, long parameter lists, shared global state, blocking calls, shadowed imports, untyped parameters and order-dependent call sequences.

USE WHEN:
- Assessing how tightly a module's pieces are coupled before refactoring
- Finding magic numbers and strings that should become named constants
- Locating functions whose call sites break when parameter order changes

INTERPRETING RESULTS:
- Each violation carries a kind (connascence_of_meaning, _position, _identity, ...), a 1-10 severity level and a context bag with the numbers that drove the level
- Level 8+: fix before merging; 4-7: schedule; 1-3: informational
- connascence_of_execution findings are conservative; absence of findings does not mean call order is safe

RESULTS RETURNED:
- Per-file violation lists sorted by line, plus summary counts by kind and severity bucket`
}

func describeSafety() string {
	return `Checks ten safety rules modeled on aerospace coding standards: no recursion, bounded loops, no dynamic code execution, function length ceiling, assertion density, data hiding, parameter limits, and checked call results.

USE WHEN:
- Reviewing code that must behave predictably under all inputs
- Gating merges on a compliance score for safety-sensitive components

INTERPRETING RESULTS:
- Each violation names its rule_id (1-10); not_applicable entries record rules the language cannot express, distinct from passes
- The data-hiding rule (6) reports level 9 once per offending file, not per variable
- Rule 7 findings overlap connascence_of_position; the two layers report the same function through different lenses and are never merged

RESULTS RETURNED:
- Per-file violations with rule ids, not-applicable notes, summary counts by rule`
}

func describeDuplicates() string {
	return `Finds functions sharing the same control-flow shape: identical statement-kind sequences regardless of names and literal values.

USE WHEN:
- Hunting copy-pasted algorithms that drifted apart
- Sizing a deduplication refactor before starting it

INTERPRETING RESULTS:
- A group of N structurally identical functions yields N-1 findings, each naming the first function as the canonical original
- Shape matching is coarse: short functions with common shapes can collide, so treat findings as candidates, not verdicts

RESULTS RETURNED:
- Per-file violations of kind connascence_of_algorithm with group sizes and originals in context`
}
