package extract

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
)

// Batch extracts every record in recs through a bounded worker pool. Unlike
// a fail-fast pipeline, one record's failure never aborts the rest — every
// record gets an Outcome, in the same order as recs, and the caller decides
// what a partial failure means for it.
func (e *Extractor) Batch(ctx context.Context, recs []idxfile.FileRecord, maxWorkers int) []Outcome {
	outcomes := make([]Outcome, len(recs))

	pl := pool.New().WithMaxGoroutines(maxWorkers)
	for i, rec := range recs {
		pl.Go(func() {
			path, err := e.One(ctx, rec)
			outcomes[i] = Outcome{Record: rec, Path: path, Err: err}
		})
	}
	pl.Wait()

	return outcomes
}
