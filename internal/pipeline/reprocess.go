package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gif-player/internal/database"
	"gif-player/internal/logging"
	"gif-player/internal/workers"
)

// ReprocessSummary reports the outcome of a batch run over every known
// source.
type ReprocessSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// ReprocessAll re-runs the pipeline for every recorded source, using a
// bounded worker pool. Individual skips still apply, so sources whose
// assets already exist cost almost nothing. A per-source failure is
// counted and logged, never fatal for the batch.
func (o *Orchestrator) ReprocessAll(ctx context.Context, limit int) (ReprocessSummary, error) {
	start := time.Now()

	sources, err := o.db.ListSources(ctx)
	if err != nil {
		return ReprocessSummary{}, fmt.Errorf("failed to list sources: %w", err)
	}

	summary := ReprocessSummary{Total: len(sources)}
	if len(sources) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	numWorkers := workers.ForMixed(limit)
	if numWorkers > len(sources) {
		numWorkers = len(sources)
	}
	logging.Info("Reprocessing %d sources with %d workers", len(sources), numWorkers)

	jobs := make(chan database.SourceRecord)
	var failed int64
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				_, err := o.Process(ctx, Source{
					ID:       rec.ID,
					Location: rec.Location,
					MimeType: rec.MimeType,
					Strategy: rec.Strategy,
				})
				if err != nil {
					atomic.AddInt64(&failed, 1)
					logging.Warn("Reprocess failed for source %s: %v", rec.ID, err)
				}
			}
		}()
	}

	for _, rec := range sources {
		select {
		case jobs <- rec:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return summary, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	summary.Failed = int(atomic.LoadInt64(&failed))
	summary.Succeeded = summary.Total - summary.Failed
	summary.Duration = time.Since(start)
	logging.Info("Reprocess complete: %d succeeded, %d failed in %v", summary.Succeeded, summary.Failed, summary.Duration)
	return summary, nil
}
