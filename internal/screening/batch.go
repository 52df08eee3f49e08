package screening

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parcelworks/sitescreen/internal/model"
)

// BatchItem is the outcome for one site of a batch: a result or a per-site
// error, never both.
type BatchItem struct {
	Site   model.Site
	Result *model.ScoringResult
	Err    error
}

// BatchSummary aggregates a finished batch run.
type BatchSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed"`
}

// RunBatch scores sites concurrently with at most concurrency workers. Sites
// share nothing, so workers need no coordination beyond the limit. A site
// failure is recorded on its item without aborting the rest; cancelling the
// context stops new sites from starting while in-flight sites finish. Items
// are returned in input order.
func (o *Orchestrator) RunBatch(ctx context.Context, sites []model.Site, concurrency int) ([]BatchItem, BatchSummary) {
	if concurrency < 1 {
		concurrency = 1
	}
	start := time.Now()

	items := make([]BatchItem, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, site := range sites {
		i, site := i, site
		items[i].Site = site
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			result, err := o.Score(site)
			if err != nil {
				zap.L().Error("screening: site failed",
					zap.String("site", site.ID),
					zap.Error(err))
				items[i].Err = err
				return nil // don't abort other sites
			}
			items[i].Result = result
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	summary := BatchSummary{Total: len(sites), Elapsed: time.Since(start)}
	for _, it := range items {
		if it.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	zap.L().Info("screening: batch complete",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed))
	return items, summary
}

// Results extracts the successful results of a batch, preserving order.
func Results(items []BatchItem) []*model.ScoringResult {
	out := make([]*model.ScoringResult, 0, len(items))
	for _, it := range items {
		if it.Result != nil {
			out = append(out, it.Result)
		}
	}
	return out
}
