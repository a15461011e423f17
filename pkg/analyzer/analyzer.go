package analyzer

import "context"

// FileAnalyzer is implemented by anything that turns a set of source files
// into a result. Engine satisfies it with *models.Report; callers embedding
// couplint can swap in narrower analyzers behind the same shape.
type FileAnalyzer[T any] interface {
	// Analyze processes the given files and returns the result. The context
	// cancels in-flight file work.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases parser resources held by the analyzer.
	Close()
}
