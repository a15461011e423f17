package parser

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.go", LangGo},
		{"app.py", LangPython},
		{"stub.pyi", LangPython},
		{"legacy.pyw", LangPython},
		{"UPPER.PY", LangPython},
		{"README.md", LangUnknown},
		{"noext", LangUnknown},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseGo(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte("package main\n\nfunc main() {}\n"), LangGo, "main.go")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer res.Tree.Close()

	root := res.Tree.RootNode()
	if root.Type() != "source_file" {
		t.Errorf("root = %q, want source_file", root.Type())
	}

	funcs := FindNodesByType(root, res.Source, "function_declaration")
	if len(funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(funcs))
	}
	if got := GetNodeText(funcs[0].ChildByFieldName("name"), res.Source); got != "main" {
		t.Errorf("function name = %q", got)
	}
}

func TestWalkTyped(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte("while True:\n    break\n"), LangPython, "spin.py")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer res.Tree.Close()
	root := res.Tree.RootNode()

	sawBreak := false
	WalkTyped(root, res.Source, func(n *sitter.Node, nodeType string, _ []byte) bool {
		if nodeType != n.Type() {
			t.Errorf("cached type %q does not match node type %q", nodeType, n.Type())
		}
		if nodeType == "break_statement" {
			sawBreak = true
		}
		return true
	})
	if !sawBreak {
		t.Error("full walk never reached the break statement")
	}

	sawBreak = false
	WalkTyped(root, res.Source, func(_ *sitter.Node, nodeType string, _ []byte) bool {
		if nodeType == "break_statement" {
			sawBreak = true
		}
		return nodeType != "while_statement"
	})
	if sawBreak {
		t.Error("returning false must prune the subtree")
	}
}

func TestParsePython(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte("def greet(name):\n    return name\n"), LangPython, "greet.py")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer res.Tree.Close()

	if res.Tree.RootNode().Type() != "module" {
		t.Errorf("root = %q, want module", res.Tree.RootNode().Type())
	}
}

func TestParserReuseAcrossLanguages(t *testing.T) {
	p := New()
	defer p.Close()

	if _, err := p.Parse([]byte("package a\n"), LangGo, "a.go"); err != nil {
		t.Fatalf("go parse: %v", err)
	}
	res, err := p.Parse([]byte("x = 1\n"), LangPython, "b.py")
	if err != nil {
		t.Fatalf("python parse: %v", err)
	}
	if res.Tree.RootNode().Type() != "module" {
		t.Error("language switch did not take effect")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(LangPython, "while_statement") != KindWhile {
		t.Error("python while_statement")
	}
	if KindOf(LangGo, "method_declaration") != KindFunction {
		t.Error("go method_declaration")
	}
	if KindOf(LangGo, "nonexistent") != KindOther {
		t.Error("unknown node types map to KindOther")
	}
	if KindOf(LangUnknown, "call") != KindOther {
		t.Error("unknown language maps to KindOther")
	}
}
