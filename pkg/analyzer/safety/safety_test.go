package safety_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/couplint/couplint/internal/testutil"
	"github.com/couplint/couplint/pkg/analyzer/safety"
	"github.com/couplint/couplint/pkg/models"
)

func analyze(t *testing.T, path, src string) ([]models.Violation, []models.RuleNote) {
	t.Helper()
	return safety.New().Analyze(testutil.CollectSource(t, path, src))
}

func byRule(violations []models.Violation, ruleID int) []models.Violation {
	var out []models.Violation
	for _, v := range violations {
		if v.RuleID == ruleID {
			out = append(out, v)
		}
	}
	return out
}

func hasNote(notes []models.RuleNote, ruleID int) bool {
	for _, n := range notes {
		if n.RuleID == ruleID {
			return true
		}
	}
	return false
}

func TestRecursionRule(t *testing.T) {
	src := `def descend(node):
    if node:
        descend(node.child)
`
	violations, _ := analyze(t, "recurse.py", src)
	if got := byRule(violations, safety.RuleNoRecursion); len(got) != 1 {
		t.Fatalf("expected 1 recursion finding, got %d", len(got))
	}
}

func TestBoundedLoopsRule(t *testing.T) {
	src := `def spin():
    while True:
        tick()

def drain(q):
    while True:
        if q.empty():
            break
        q.get()
`
	violations, _ := analyze(t, "spin.py", src)
	got := byRule(violations, safety.RuleBoundedLoops)
	if len(got) != 1 {
		t.Fatalf("expected 1 unbounded-loop finding, got %d: %v", len(got), got)
	}
	if got[0].Line != 2 {
		t.Errorf("expected line 2, got %d", got[0].Line)
	}
}

func TestDynamicCodeRule(t *testing.T) {
	violations, _ := analyze(t, "dyn.py", "def run(code):\n    eval(code)\n")
	got := byRule(violations, safety.RuleNoDynamicCode)
	if len(got) != 1 {
		t.Fatalf("expected 1 dynamic-code finding, got %d", len(got))
	}
	if got[0].Severity != models.SeverityCritical {
		t.Errorf("eval is critical, got %s", got[0].Severity)
	}
}

func TestDynamicCodeNotApplicableForGo(t *testing.T) {
	_, notes := analyze(t, "dyn.go", "package p\n\nfunc run() {}\n")
	if !hasNote(notes, safety.RuleNoDynamicCode) {
		t.Error("Go has no eval; rule 3 must be noted not-applicable")
	}
}

func TestFunctionLengthRule(t *testing.T) {
	var b strings.Builder
	b.WriteString("def long():\n")
	for i := 0; i < 65; i++ {
		b.WriteString(fmt.Sprintf("    x%d = step()\n", i))
	}
	violations, _ := analyze(t, "long.py", b.String())
	got := byRule(violations, safety.RuleFunctionLength)
	if len(got) != 1 {
		t.Fatalf("expected 1 length finding, got %d", len(got))
	}
	if span, _ := got[0].IntContext(models.CtxEstimatedLOC); span <= 60 {
		t.Errorf("span context = %d, want > 60", span)
	}
}

func TestAssertDensityRule(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 35; i++ {
		body.WriteString(fmt.Sprintf("    x%d = step()\n", i))
	}

	t.Run("no asserts", func(t *testing.T) {
		violations, _ := analyze(t, "dense.py", "def long():\n"+body.String())
		if got := byRule(violations, safety.RuleAssertDensity); len(got) != 1 {
			t.Fatalf("expected 1 assert-density finding, got %d", len(got))
		}
	})

	t.Run("one assert suffices", func(t *testing.T) {
		violations, _ := analyze(t, "dense.py", "def long():\n    assert step is not None\n"+body.String())
		if got := byRule(violations, safety.RuleAssertDensity); len(got) != 0 {
			t.Errorf("asserting function flagged: %v", got)
		}
	})

	t.Run("not applicable for go", func(t *testing.T) {
		_, notes := analyze(t, "dense.go", "package p\n\nfunc run() {}\n")
		if !hasNote(notes, safety.RuleAssertDensity) {
			t.Error("Go has no assert; rule 5 must be noted not-applicable")
		}
	})
}

func TestDataHidingPinsLevel(t *testing.T) {
	violations, _ := analyze(t, "globals.py", "def touch():\n    global g0, g1, g2, g3, g4, g5\n    g0 = 1\n")
	got := byRule(violations, safety.RuleDataHiding)
	if len(got) != 1 {
		t.Fatalf("expected 1 data-hiding finding, got %d", len(got))
	}
	if got[0].Level != 9 {
		t.Errorf("data hiding pins level 9, got %d", got[0].Level)
	}
}

func TestParameterLimitPinsLevel(t *testing.T) {
	params := func(n int) string {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("p%d", i)
		}
		return strings.Join(names, ", ")
	}

	t.Run("over threshold", func(t *testing.T) {
		violations, _ := analyze(t, "seven.py", fmt.Sprintf("def seven(%s):\n    pass\n", params(7)))
		got := byRule(violations, safety.RuleParameterLimit)
		if len(got) != 1 {
			t.Fatalf("expected 1 parameter finding, got %d", len(got))
		}
		if got[0].Level != 5 || got[0].Severity != models.SeverityMedium {
			t.Errorf("7 parameters pins level 5 medium, got %d %s", got[0].Level, got[0].Severity)
		}
	})

	t.Run("over critical", func(t *testing.T) {
		violations, _ := analyze(t, "eleven.py", fmt.Sprintf("def eleven(%s):\n    pass\n", params(11)))
		got := byRule(violations, safety.RuleParameterLimit)
		if len(got) != 1 {
			t.Fatalf("expected 1 parameter finding, got %d", len(got))
		}
		if got[0].Level != 8 || got[0].Severity != models.SeverityHigh {
			t.Errorf("11 parameters pins level 8 high, got %d %s", got[0].Level, got[0].Severity)
		}
	})
}

func TestAlwaysNotApplicableRules(t *testing.T) {
	_, notes := analyze(t, "any.py", "def f():\n    pass\n")
	if !hasNote(notes, safety.RuleNoMacros) {
		t.Error("rule 8 must always be noted not-applicable")
	}
	if !hasNote(notes, safety.RulePointerDepth) {
		t.Error("rule 9 must always be noted not-applicable")
	}
}

func TestCheckedResultsRule(t *testing.T) {
	src := `def work(conn):
    conn.fetch()
    print("done")
    items = conn.all()
`
	violations, notes := analyze(t, "work.py", src)
	got := byRule(violations, safety.RuleCheckedResults)
	if len(got) != 1 {
		t.Fatalf("expected 1 unchecked-result finding, got %d: %v", len(got), got)
	}
	if got[0].Line != 2 {
		t.Errorf("expected line 2 (conn.fetch), got %d", got[0].Line)
	}
	if hasNote(notes, safety.RuleCheckedResults) {
		t.Error("rule 10 applies to Python; no note expected")
	}

	_, goNotes := analyze(t, "work.go", "package p\n\nfunc run() {}\n")
	if !hasNote(goNotes, safety.RuleCheckedResults) {
		t.Error("rule 10 must be noted not-applicable for Go")
	}
}

func TestCheckedResultsCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("def noisy(conn):\n")
	for i := 0; i < 10; i++ {
		b.WriteString("    conn.fetch()\n")
	}
	violations, _ := analyze(t, "noisy.py", b.String())
	if got := byRule(violations, safety.RuleCheckedResults); len(got) != 5 {
		t.Errorf("cap is 5 per file, got %d", len(got))
	}
}

func TestDisabledRules(t *testing.T) {
	state := testutil.CollectSource(t, "recurse.py", "def descend(node):\n    descend(node)\n")
	analyzer := safety.New(safety.WithEnabledRules([]int{safety.RuleBoundedLoops}))
	violations, notes := analyzer.Analyze(state)
	if got := byRule(violations, safety.RuleNoRecursion); len(got) != 0 {
		t.Errorf("disabled rule fired: %v", got)
	}
	if hasNote(notes, safety.RuleNoMacros) {
		t.Error("disabled rules must not leave notes either")
	}
}

func TestThresholdBackfill(t *testing.T) {
	analyzer := safety.New(safety.WithThresholds(safety.Thresholds{ParameterThreshold: 8, ParameterCritical: 4}))
	state := testutil.CollectSource(t, "f.py", "def f(a, b, c, d, e, f, g, h, i):\n    pass\n")
	violations, _ := analyzer.Analyze(state)
	got := byRule(violations, safety.RuleParameterLimit)
	if len(got) != 1 {
		t.Fatalf("expected 1 finding with threshold 8, got %d", len(got))
	}
	// An inverted critical bound is corrected to threshold+4, so 9
	// parameters stays below critical.
	if got[0].Level != 5 {
		t.Errorf("expected level 5 after backfill, got %d", got[0].Level)
	}
}
