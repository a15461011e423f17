package scanner

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/couplint/couplint/internal/testutil"
	"github.com/couplint/couplint/pkg/config"
)

func scanTree(t *testing.T, cfg *config.Config, files map[string]string) Result {
	t.Helper()
	root := t.TempDir()
	testutil.CreateFileTree(t, root, files)

	result, err := New(cfg).ScanDir(root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for i, f := range result.Files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		result.Files[i] = filepath.ToSlash(rel)
	}
	sort.Strings(result.Files)
	return result
}

func TestScanDirFindsSourceFiles(t *testing.T) {
	result := scanTree(t, nil, map[string]string{
		"main.go":      "package main\n",
		"lib/util.py":  "x = 1\n",
		"README.md":    "# readme\n",
		"data/set.csv": "a,b\n",
	})

	want := []string{"lib/util.py", "main.go"}
	if len(result.Files) != len(want) {
		t.Fatalf("files = %v, want %v", result.Files, want)
	}
	for i := range want {
		if result.Files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, result.Files[i], want[i])
		}
	}
}

func TestScanDirExcludesDirs(t *testing.T) {
	result := scanTree(t, nil, map[string]string{
		"app.py":            "x = 1\n",
		"vendor/dep.go":     "package dep\n",
		"__pycache__/c.py":  "x = 1\n",
		"node_modules/m.go": "package m\n",
	})

	if len(result.Files) != 1 || result.Files[0] != "app.py" {
		t.Errorf("excluded directories leaked into %v", result.Files)
	}
}

func TestScanDirCountsSkippedTests(t *testing.T) {
	result := scanTree(t, nil, map[string]string{
		"server.go":      "package s\n",
		"server_test.go": "package s\n",
		"test_app.py":    "x = 1\n",
	})

	if len(result.Files) != 1 {
		t.Fatalf("files = %v", result.Files)
	}
	if result.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", result.Skipped)
	}
}

func TestScanDirCustomPatterns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "generated_*.go")

	result := scanTree(t, cfg, map[string]string{
		"handler.go":           "package h\n",
		"generated_schema.go":  "package h\n",
		"sub/generated_api.go": "package h\n",
	})

	if len(result.Files) != 1 || result.Files[0] != "handler.go" {
		t.Errorf("custom pattern not honored: %v", result.Files)
	}
}

func TestScanDirGitignore(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFileTree(t, root, map[string]string{
		".git/HEAD":     "ref: refs/heads/main\n",
		".gitignore":    "ignored/\n",
		"kept.py":       "x = 1\n",
		"ignored/no.py": "x = 1\n",
	})

	result, err := New(nil).ScanDir(root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(result.Files) != 1 || filepath.Base(result.Files[0]) != "kept.py" {
		t.Errorf("gitignore not honored: %v", result.Files)
	}
}

func TestScanFile(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFileTree(t, root, map[string]string{
		"app.py":      "x = 1\n",
		"notes.txt":   "hello\n",
		"test_app.py": "x = 1\n",
	})

	s := New(nil)

	ok, err := s.ScanFile(filepath.Join(root, "app.py"))
	if err != nil || !ok {
		t.Errorf("app.py should be analyzable: %v %v", ok, err)
	}

	ok, err = s.ScanFile(filepath.Join(root, "notes.txt"))
	if err != nil || ok {
		t.Errorf("notes.txt is not a source file: %v %v", ok, err)
	}

	ok, err = s.ScanFile(filepath.Join(root, "test_app.py"))
	if err != nil || ok {
		t.Errorf("test files are excluded by default: %v %v", ok, err)
	}

	if _, err := s.ScanFile(filepath.Join(root, "missing.py")); err == nil {
		t.Error("missing file must return an error")
	}
}
