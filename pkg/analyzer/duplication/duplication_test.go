package duplication_test

import (
	"testing"

	"github.com/couplint/couplint/internal/testutil"
	"github.com/couplint/couplint/pkg/analyzer/duplication"
	"github.com/couplint/couplint/pkg/models"
)

// Three functions with identical statement shapes, distinct names and values.
const triplet = `def parse_users(raw):
    rows = split(raw)
    validate(rows)
    if not rows:
        return None
    return build_users(rows)

def parse_orders(raw):
    rows = tokenize(raw)
    check(rows)
    if not rows:
        return None
    return build_orders(rows)

def parse_items(raw):
    rows = scan(raw)
    verify(rows)
    if not rows:
        return None
    return build_items(rows)
`

func TestGroupEmitsNMinusOne(t *testing.T) {
	state := testutil.CollectSource(t, "parsers.py", triplet)
	violations := duplication.New().Analyze(state)

	if len(violations) != 2 {
		t.Fatalf("group of 3 must yield 2 violations, got %d", len(violations))
	}

	for _, v := range violations {
		if v.Kind != models.KindAlgorithm || v.Layer != models.LayerDuplication {
			t.Errorf("unexpected kind/layer: %s/%s", v.Kind, v.Layer)
		}
		if orig, _ := v.Context[models.CtxDuplicateOf].(string); orig != "parse_users" {
			t.Errorf("canonical original must be the first member, got %q", orig)
		}
		if size, _ := v.IntContext(models.CtxGroupSize); size != 3 {
			t.Errorf("group size context = %d, want 3", size)
		}
	}

	// The first member is never reported against itself.
	for _, v := range violations {
		if name, _ := v.Context[models.CtxFunctionName].(string); name == "parse_users" {
			t.Error("canonical original reported as its own duplicate")
		}
	}
}

func TestDistinctShapesNotGrouped(t *testing.T) {
	src := `def alpha(x):
    a = x
    b = a
    if a:
        b = a
    return b

def beta(x):
    for i in x:
        use(i)
    a = x
    if a:
        use(a)
    return a
`
	state := testutil.CollectSource(t, "distinct.py", src)
	if got := duplication.New().Analyze(state); len(got) != 0 {
		t.Errorf("distinct shapes grouped: %v", got)
	}
}

func TestTinyFunctionsIgnored(t *testing.T) {
	src := `def one():
    return 1

def two():
    return 2

def three():
    return 3
`
	state := testutil.CollectSource(t, "tiny.py", src)
	if got := duplication.New().Analyze(state); len(got) != 0 {
		t.Errorf("tiny bodies must not participate in grouping: %v", got)
	}
}

func TestDeterministicOrdering(t *testing.T) {
	first := duplication.New().Analyze(testutil.CollectSource(t, "parsers.py", triplet))
	second := duplication.New().Analyze(testutil.CollectSource(t, "parsers.py", triplet))

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Description != second[i].Description || first[i].Line != second[i].Line {
			t.Errorf("violation %d differs across runs", i)
		}
	}
}
