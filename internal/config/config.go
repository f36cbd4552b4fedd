package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all scraper settings, populated from environment variables.
type Config struct {
	OutputDir       string
	StartYear       int
	DownloadTimeout time.Duration

	LogLevel        string
	LogFormat       string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Outcome event publishing, disabled when no brokers are set.
	KafkaBrokers      []string
	KafkaOutcomeTopic string

	// Artifact mirroring, disabled when no bucket is set.
	S3Bucket   string
	S3Region   string
	S3Prefix   string
	S3Endpoint string
}

// Load reads configuration from environment variables, applying defaults where
// unset. Only parse errors are reported here; see Validate.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	downloadTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("DOWNLOAD_TIMEOUT", "10m"))
	if err != nil || downloadTimeout <= 0 {
		return nil, errors.New("invalid DOWNLOAD_TIMEOUT")
	}

	startYear, err := strconv.Atoi(sharedcfg.EnvOrDefault("START_YEAR", "2019"))
	if err != nil {
		return nil, fmt.Errorf("invalid START_YEAR: %w", err)
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "rio_a652_station_data"),
		StartYear:       startYear,
		DownloadTimeout: downloadTimeout,

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:      brokers,
		KafkaOutcomeTopic: sharedcfg.EnvOrDefault("KAFKA_OUTCOME_TOPIC", "inmet-year-outcomes"),

		S3Bucket:   os.Getenv("ARTIFACT_S3_BUCKET"),
		S3Region:   sharedcfg.EnvOrDefault("ARTIFACT_S3_REGION", "us-east-1"),
		S3Prefix:   sharedcfg.EnvOrDefault("ARTIFACT_S3_PREFIX", "inmet/a652"),
		S3Endpoint: os.Getenv("ARTIFACT_S3_ENDPOINT"),
	}

	return cfg, nil
}

// Validate checks range and consistency invariants. Callers run it once,
// after command-line overrides have been applied to the loaded values.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	if c.StartYear < 2000 || c.StartYear > 9999 {
		return fmt.Errorf("START_YEAR %d out of range [2000, 9999]", c.StartYear)
	}
	if c.KafkaEnabled() && c.KafkaOutcomeTopic == "" {
		return errors.New("KAFKA_OUTCOME_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// KafkaEnabled reports whether outcome events should be published.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// MirrorEnabled reports whether written artifacts should be copied to S3.
func (c *Config) MirrorEnabled() bool { return c.S3Bucket != "" }
