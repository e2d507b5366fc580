package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/infra/http/middleware"
	"github.com/reverio/leadgen/internal/usecase"
)

// RecordSource is a batch lead source such as a directory of spreadsheets.
type RecordSource interface {
	Name() string
	Load(ctx context.Context) ([]entity.SourceRecord, error)
}

type RecordIngester interface {
	Execute(ctx context.Context, records []entity.SourceRecord) (usecase.IngestReport, error)
}

// FeedUpdater pulls every source into the lead pool on start and then on a
// fixed interval. RunOnce is also what the admin "load" endpoint calls.
type FeedUpdater struct {
	sources  []RecordSource
	ingest   RecordIngester
	interval time.Duration
	logger   *zap.Logger

	// serialises scheduled and on-demand runs
	mu sync.Mutex
}

func NewFeedUpdater(ingest RecordIngester, interval time.Duration, logger *zap.Logger, sources ...RecordSource) *FeedUpdater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedUpdater{
		sources:  sources,
		ingest:   ingest,
		interval: interval,
		logger:   logger,
	}
}

func (w *FeedUpdater) Start(ctx context.Context) {
	w.logger.Info("feed updater started", zap.Duration("interval", w.interval), zap.Int("sources", len(w.sources)))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("feed updater stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *FeedUpdater) run(ctx context.Context) {
	if _, err := w.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error("feed update failed", zap.Error(err))
	}
}

// RunOnce loads all sources. A source that fails to load is logged and
// skipped; a storage failure aborts the run.
func (w *FeedUpdater) RunOnce(ctx context.Context) (usecase.IngestReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var total usecase.IngestReport
	for _, src := range w.sources {
		records, err := src.Load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			w.logger.Warn("lead source unavailable", zap.String("source", src.Name()), zap.Error(err))
			continue
		}

		report, err := w.ingest.Execute(ctx, records)
		total.Add(report)
		middleware.RecordIngestReport(src.Name(), report.Created, report.Duplicates, report.Rejected)
		if err != nil {
			return total, err
		}

		w.logger.Info("lead source ingested",
			zap.String("source", src.Name()),
			zap.Int("received", report.Received),
			zap.Int("created", report.Created),
			zap.Int("duplicates", report.Duplicates),
			zap.Int("rejected", report.Rejected),
		)
	}
	return total, nil
}
