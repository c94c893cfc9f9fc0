package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/keyvault/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// S3FeedSource reads the feed from an object in any S3-compatible store
// (AWS S3, MinIO, Supabase storage)
type S3FeedSource struct {
	client *s3.Client
	bucket string
	key    string
	logger *zap.Logger
}

// S3FeedSourceOption is a functional option for configuring S3FeedSource
type S3FeedSourceOption func(*S3FeedSource)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3FeedSourceOption {
	return func(s *S3FeedSource) {
		s.logger = logger
	}
}

// NewS3FeedSource creates an S3 feed source from configuration. Without
// static keys the default AWS credential chain is used.
func NewS3FeedSource(ctx context.Context, cfg *config.CatalogFeedConfig, opts ...S3FeedSourceOption) (*S3FeedSource, error) {
	if cfg == nil {
		return nil, errors.New("catalog feed configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("catalog feed bucket is required")
	}
	if cfg.Key == "" {
		return nil, errors.New("catalog feed key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, errors.New("catalog feed access key and secret key must be set together")
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	src := &S3FeedSource{
		client: client,
		bucket: cfg.Bucket,
		key:    cfg.Key,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(src)
	}
	return src, nil
}

// Open downloads the feed object
func (s *S3FeedSource) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrFeedNotFound, s.bucket, s.key)
		}
		s.logger.Error("Failed to download catalog feed",
			zap.String("bucket", s.bucket),
			zap.String("key", s.key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download catalog feed: %w", err)
	}
	return out.Body, nil
}

// Name identifies the source in logs
func (s *S3FeedSource) Name() string {
	return "s3://" + s.bucket + "/" + s.key
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

var _ FeedSource = (*S3FeedSource)(nil)
