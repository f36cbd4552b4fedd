package s3

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MirrorConfig configures the artifact mirror.
type MirrorConfig struct {
	Bucket      string // S3 bucket name
	Region      string // AWS region
	Prefix      string // key prefix, e.g. "inmet/a652"
	EndpointURL string // Optional custom endpoint (for MinIO testing)

	// Optional static credentials; the default AWS chain is used when empty.
	AccessKeyID     string
	SecretAccessKey string
}

// Mirror uploads written artifacts to S3 under a fixed prefix.
// It implements pipeline.ArtifactMirror.
type Mirror struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewMirror creates an S3 mirror.
func NewMirror(ctx context.Context, cfg MirrorConfig, logger *slog.Logger) (*Mirror, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOpts := []func(*s3.Options){
		func(o *s3.Options) {
			o.UsePathStyle = true // Required for MinIO compatibility
		},
	}
	if cfg.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		})
	}

	return &Mirror{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

// Key returns the object key for a local artifact path.
func (m *Mirror) Key(localPath string) string {
	return path.Join(m.prefix, filepath.Base(localPath))
}

// Mirror uploads the file at localPath.
func (m *Mirror) Mirror(ctx context.Context, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	key := m.Key(localPath)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("application/vnd.apache.parquet"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	m.logger.Info("artifact mirrored", "bucket", m.bucket, "key", key, "bytes", info.Size())
	return nil
}
