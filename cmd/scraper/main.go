// Command scraper downloads the INMET yearly archives, extracts station A652
// and writes one Parquet file per year, skipping years already on disk.
//
// Usage:
//
//	go run ./cmd/scraper --output-dir rio_a652_station_data --start-year 2019
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	httpadapter "github.com/couchcryptid/inmet-scraper/internal/adapter/http"
	"github.com/couchcryptid/inmet-scraper/internal/adapter/inmet"
	kafkaadapter "github.com/couchcryptid/inmet-scraper/internal/adapter/kafka"
	"github.com/couchcryptid/inmet-scraper/internal/adapter/parquetfile"
	s3adapter "github.com/couchcryptid/inmet-scraper/internal/adapter/s3"
	"github.com/couchcryptid/inmet-scraper/internal/config"
	"github.com/couchcryptid/inmet-scraper/internal/domain"
	"github.com/couchcryptid/inmet-scraper/internal/observability"
	"github.com/couchcryptid/inmet-scraper/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	outputDirFlag := flag.String("output-dir", "", "directory for Parquet artifacts (or set OUTPUT_DIR env var)")
	startYearFlag := flag.Int("start-year", 0, "first year to process (or set START_YEAR env var)")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	// godotenv does not override existing env vars, so process env wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, *outputDirFlag, *startYearFlag, *verboseFlag)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []pipeline.Option
	if cfg.MirrorEnabled() {
		mirror, err := s3adapter.NewMirror(ctx, s3adapter.MirrorConfig{
			Bucket:      cfg.S3Bucket,
			Region:      cfg.S3Region,
			Prefix:      cfg.S3Prefix,
			EndpointURL: cfg.S3Endpoint,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create artifact mirror: %w", err)
		}
		opts = append(opts, pipeline.WithMirror(mirror))
		logger.Info("artifact mirroring enabled", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
	}

	var publisher pipeline.OutcomePublisher
	if cfg.KafkaEnabled() {
		p := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := p.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		publisher = p
		logger.Info("outcome publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaOutcomeTopic)
	}

	client := inmet.NewClient(domain.BaseURL, cfg.DownloadTimeout, metrics, logger)
	processor, err := pipeline.NewProcessor(cfg.OutputDir, client, inmet.Extractor{}, parquetfile.NewWriter(logger), logger, metrics, opts...)
	if err != nil {
		return err
	}
	batch := pipeline.NewBatch(processor, publisher, cfg.StartYear, logger, metrics)

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, batch, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer shutdownServer(srv, cfg, logger)
	}

	outcomes := batch.Run(ctx)
	printSummary(os.Stdout, outcomes)
	return nil
}

// applyOverrides lets command-line flags win over the environment. Zero
// values mean the flag was not given.
func applyOverrides(cfg *config.Config, outputDir string, startYear int, verbose bool) {
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if startYear != 0 {
		cfg.StartYear = startYear
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
}

func shutdownServer(srv *httpadapter.Server, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
}

func printSummary(w io.Writer, outcomes []domain.Outcome) {
	successful := domain.SuccessfulPaths(outcomes)
	failed := domain.FailedYears(outcomes)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Processing Summary:")
	fmt.Fprintf(w, "Successfully processed: %d files\n", len(successful))
	fmt.Fprintf(w, "Failed processing: %d files\n", len(failed))

	if len(failed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failed years and reasons:")
		for _, f := range failed {
			fmt.Fprintf(w, "%d: %s\n", f.Year, f.Message)
		}
	}
}
