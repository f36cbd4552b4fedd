package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/inmet-scraper/internal/domain"
	"github.com/couchcryptid/inmet-scraper/internal/observability"
)

// Batch processes every year from startYear through the current year.
type Batch struct {
	processor   YearProcessor
	publisher   OutcomePublisher
	startYear   int
	currentYear int
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool

	mu       sync.Mutex
	progress []domain.Outcome
}

// NewBatch creates a Batch. The current year is resolved here, once, so a
// run that crosses New Year does not grow its range. publisher may be nil.
func NewBatch(processor YearProcessor, publisher OutcomePublisher, startYear int, logger *slog.Logger, metrics *observability.Metrics) *Batch {
	return &Batch{
		processor:   processor,
		publisher:   publisher,
		startYear:   startYear,
		currentYear: domain.CurrentYear(),
		logger:      logger,
		metrics:     metrics,
	}
}

// Years returns the inclusive range the batch covers.
func (b *Batch) Years() (first, last int) {
	return b.startYear, b.currentYear
}

// CheckReadiness returns nil once at least one year has been processed.
func (b *Batch) CheckReadiness(_ context.Context) error {
	if !b.ready.Load() {
		return errors.New("batch has not processed any year yet")
	}
	return nil
}

// Outcomes returns a snapshot of the outcomes produced so far.
func (b *Batch) Outcomes() []domain.Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Outcome(nil), b.progress...)
}

// Run processes each year in ascending order, sequentially, and returns one
// Outcome per year. A failed year never stops the batch.
func (b *Batch) Run(ctx context.Context) []domain.Outcome {
	b.logger.Info("batch started", "start_year", b.startYear, "current_year", b.currentYear)
	b.metrics.BatchRunning.Set(1)
	defer b.metrics.BatchRunning.Set(0)

	b.mu.Lock()
	b.progress = nil
	b.mu.Unlock()

	outcomes := make([]domain.Outcome, 0, max(b.currentYear-b.startYear+1, 0))
	for year := b.startYear; year <= b.currentYear; year++ {
		outcome := b.processor.ProcessYear(ctx, year)
		outcomes = append(outcomes, outcome)

		b.mu.Lock()
		b.progress = append(b.progress, outcome)
		b.mu.Unlock()
		b.ready.Store(true)
		b.publish(ctx, outcome)
	}

	b.logger.Info("batch finished",
		"years", len(outcomes),
		"succeeded", len(domain.SuccessfulPaths(outcomes)),
		"failed", len(domain.FailedYears(outcomes)),
	)
	return outcomes
}

func (b *Batch) publish(ctx context.Context, outcome domain.Outcome) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.Publish(ctx, outcome); err != nil {
		b.logger.Warn("publish outcome failed", "year", outcome.Year, "error", err)
		b.metrics.OutcomesPublished.WithLabelValues("error").Inc()
		return
	}
	b.metrics.OutcomesPublished.WithLabelValues("success").Inc()
}
