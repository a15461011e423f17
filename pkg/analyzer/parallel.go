package analyzer

import (
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/couplint/couplint/pkg/parser"
)

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// MapFilesN processes files in parallel, calling fn for each file with a
// dedicated parser, using maxWorkers goroutines (<= 0 means 2x NumCPU,
// which soaks up the mixed I/O and CGO stalls of tree-sitter parsing).
// Results come back in arbitrary order; per-file errors drop that file's
// result. onProgress, when non-nil, runs after every file.
func MapFilesN[T any](files []string, maxWorkers int, fn func(*parser.Parser, string) (T, error), onProgress ProgressFunc) []T {
	if len(files) == 0 {
		return nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * 2
	}

	results := make([]T, 0, len(files))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, path := range files {
		p.Go(func() {
			psr := parser.New()
			defer psr.Close()

			result, err := fn(psr, path)

			if onProgress != nil {
				onProgress()
			}

			if err != nil {
				return
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	return results
}
