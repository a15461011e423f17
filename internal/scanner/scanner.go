// Package scanner finds the source files an analysis run should cover.
// Directory walking, exclusion patterns and gitignore handling all live
// here; the analysis engine only ever sees the final file list.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/couplint/couplint/pkg/config"
	"github.com/couplint/couplint/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// New creates a file scanner.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// Result is the outcome of a directory scan.
type Result struct {
	// Files are the source files to analyze, in walk order.
	Files []string
	// Skipped counts source files excluded by configuration.
	Skipped int
}

// ScanDir recursively scans a directory for source files the parser can
// handle. Paths resolving outside the root via symlinks are skipped.
func (s *Scanner) ScanDir(root string) (Result, error) {
	var result Result

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return result, err
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	s.loadExcludePatterns(root)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if parser.DetectLanguage(path) == parser.LangUnknown {
			return nil
		}
		if s.isExcluded(relPath, false) {
			result.Skipped++
			return nil
		}
		result.Files = append(result.Files, path)
		return nil
	})

	return result, walkErr
}

// ScanFile checks if a single file should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	if len(s.matchers) == 0 {
		s.loadExcludePatterns(filepath.Dir(path))
	}
	if s.isExcluded(filepath.Base(path), false) {
		return false, nil
	}

	return parser.DetectLanguage(path) != parser.LangUnknown, nil
}

// loadExcludePatterns combines config exclusions with the repository's own
// .gitignore tree. Config patterns use gitignore syntax throughout.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(dir+"/", nil))
	}
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fs := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

func (s *Scanner) isExcluded(path string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}
	parts := strings.Split(path, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// findGitRoot walks upward looking for a .git directory. Returns empty when
// the start path is not inside a repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// isWithinRoot reports whether path stays inside root after normalization.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}
