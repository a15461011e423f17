package testutil

import (
	"testing"

	"github.com/couplint/couplint/pkg/collect"
	"github.com/couplint/couplint/pkg/parser"
)

// ParseSource parses in-memory source text, inferring the language from the
// path extension. The test fails on parse errors.
func ParseSource(t *testing.T, path, source string) *parser.ParseResult {
	t.Helper()

	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		t.Fatalf("unsupported fixture path %q", path)
	}

	p := parser.New()
	t.Cleanup(p.Close)

	res, err := p.Parse([]byte(source), lang, path)
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return res
}

// CollectSource parses source text and runs the collection walk, returning the
// populated per-file state. Analyzer tests build their inputs through this so
// they exercise the same walk production code does.
func CollectSource(t *testing.T, path, source string) *collect.State {
	t.Helper()

	res := ParseSource(t, path, source)
	state, err := collect.New(collect.Options{}).Run(res)
	if err != nil {
		t.Fatalf("collect %s: %v", path, err)
	}
	return state
}
