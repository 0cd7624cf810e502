package pipeline

import (
	"context"
	"sync"

	"github.com/medcanon/platform/pkg/common/models"
	"github.com/medcanon/platform/pkg/dedupe"
	"github.com/medcanon/platform/pkg/normalize"
	"github.com/medcanon/platform/pkg/quality"
)

// Runner is the batch entry point: normalize every raw record, then collapse
// duplicates. Normalization fans out over a bounded worker pool; records are
// independent so the only synchronization is collecting results. Dedupe needs
// the full batch and runs as a single reduction after the pool drains.
type Runner struct {
	normalizer *normalize.Normalizer
	workers    int
}

type Result struct {
	Dataset *models.CanonicalDataset
	Quality models.QualitySummary
}

func NewRunner(n *normalize.Normalizer, workers int) *Runner {
	if workers <= 0 {
		workers = 4
	}
	return &Runner{normalizer: n, workers: workers}
}

func (r *Runner) Run(ctx context.Context, batch []models.RawRecord) Result {
	cleaned := r.normalizeAll(ctx, batch)
	ds := dedupe.Deduplicate(cleaned)
	return Result{
		Dataset: ds,
		Quality: quality.Summarize(cleaned, ds),
	}
}

// NormalizeAndDeduplicate is the single-call boundary external collaborators
// use when they do not need the quality counters.
func (r *Runner) NormalizeAndDeduplicate(ctx context.Context, batch []models.RawRecord) *models.CanonicalDataset {
	return r.Run(ctx, batch).Dataset
}

func (r *Runner) normalizeAll(ctx context.Context, batch []models.RawRecord) []models.CleanRecord {
	cleaned := make([]models.CleanRecord, len(batch))
	if len(batch) == 0 {
		return cleaned
	}

	workers := r.workers
	if workers > len(batch) {
		workers = len(batch)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				cleaned[i] = r.normalizer.Normalize(batch[i])
			}
		}()
	}

	// Each unit of work is bounded and pure, so cancellation only stops
	// dispatch of records not yet started; started records still finish.
	for i := range batch {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return cleaned[:i]
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return cleaned
}
