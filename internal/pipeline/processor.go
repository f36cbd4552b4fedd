package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/inmet-scraper/internal/domain"
	"github.com/couchcryptid/inmet-scraper/internal/observability"
)

// Processor runs the fetch-extract-parse-write cycle for a single year.
type Processor struct {
	outputDir string
	fetcher   ArchiveFetcher
	extractor StationExtractor
	writer    TableWriter
	mirror    ArtifactMirror
	exists    func(path string) bool
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option configures a Processor.
type Option func(*Processor)

// WithMirror copies every freshly written artifact through m.
func WithMirror(m ArtifactMirror) Option {
	return func(p *Processor) { p.mirror = m }
}

// WithExistsFunc replaces the artifact existence check.
func WithExistsFunc(fn func(path string) bool) Option {
	return func(p *Processor) { p.exists = fn }
}

// NewProcessor creates a Processor writing artifacts under outputDir, which
// is created if absent.
func NewProcessor(outputDir string, f ArchiveFetcher, x StationExtractor, w TableWriter, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) (*Processor, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	p := &Processor{
		outputDir: outputDir,
		fetcher:   f,
		extractor: x,
		writer:    w,
		exists:    fileExists,
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProcessYear materializes the station file for year. It never returns an
// error: every failure is captured in the Outcome.
func (p *Processor) ProcessYear(ctx context.Context, year int) (outcome domain.Outcome) {
	path := domain.OutputPath(p.outputDir, year)

	if p.exists(path) {
		p.logger.Info("artifact already exists, skipping", "year", year, "path", path)
		p.metrics.YearsProcessed.WithLabelValues("skipped").Inc()
		return domain.AlreadyMaterialized(year, path)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = p.fail(year, fmt.Errorf("panic: %v", r))
		}
		p.metrics.YearProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	rows, err := p.materialize(ctx, year, path)
	if err != nil {
		return p.fail(year, err)
	}

	p.logger.Info("station data extracted", "year", year, "path", path, "rows", rows)
	p.metrics.YearsProcessed.WithLabelValues("success").Inc()
	p.metrics.RowsWritten.Add(float64(rows))

	if p.mirror != nil {
		if err := p.mirror.Mirror(ctx, path); err != nil {
			p.logger.Warn("artifact mirror failed", "year", year, "path", path, "error", err)
			p.metrics.ArtifactsMirrored.WithLabelValues("error").Inc()
		} else {
			p.metrics.ArtifactsMirrored.WithLabelValues("success").Inc()
		}
	}

	return domain.Succeeded(year, path)
}

func (p *Processor) materialize(ctx context.Context, year int, path string) (int, error) {
	payload, err := p.fetcher.FetchArchive(ctx, year)
	if err != nil {
		if !errors.Is(err, domain.ErrTransport) {
			err = fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		return 0, err
	}

	table, member, err := p.extractor.ExtractStation(payload)
	if err != nil {
		return 0, err
	}
	p.logger.Debug("station member parsed", "year", year, "member", member, "rows", table.NumRows())

	if err := p.writer.WriteTable(path, table); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return table.NumRows(), nil
}

func (p *Processor) fail(year int, err error) domain.Outcome {
	kind := domain.ClassifyError(err)
	outcome := domain.Failed(year, kind, err)

	p.logger.Error(outcome.ErrorMessage, "year", year, "kind", kind)
	p.metrics.YearsProcessed.WithLabelValues("failed").Inc()
	p.metrics.YearFailures.WithLabelValues(string(kind)).Inc()
	return outcome
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
