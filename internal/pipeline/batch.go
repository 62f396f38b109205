package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-formatter/internal/types"
)

// DefaultBatchConcurrency is used when FormatBatch is given a non-positive limit
const DefaultBatchConcurrency = 4

// BatchResult is the outcome for one document of a batch
type BatchResult struct {
	Source    string
	Formatted *types.FormattedResume
	Err       error
}

// FormatBatch formats independent documents in parallel, at most limit at a
// time. Results are in input order; a failed document does not stop the
// others. The returned error is set only when ctx ends before the batch does.
func FormatBatch(ctx context.Context, orch *Orchestrator, docs []types.RawDocument, limit int) ([]BatchResult, error) {
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}

	results := make([]BatchResult, len(docs))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, doc := range docs {
		g.Go(func() error {
			formatted, err := orch.Format(ctx, doc)
			results[i] = BatchResult{Source: doc.Source, Formatted: formatted, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
