package storage

import (
	"bytes"
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
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

const defaultS3Domain = "s3.amazonaws.com"

// S3API is the subset of the S3 client used by S3FileStorage
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3FileStorage implements FileStorage on one S3 bucket
type S3FileStorage struct {
	client       S3API
	bucket       string
	endpoint     string
	domain       string
	usePathStyle bool
}

// NewS3FileStorage wraps an existing client. Use NewS3Client to build one
// from configuration.
func NewS3FileStorage(client S3API, cfg *Config) (*S3FileStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket name is required", ErrInvalidConfig)
	}

	domain := cfg.Domain
	if domain == "" {
		domain = defaultS3Domain
	}

	return &S3FileStorage{
		client:       client,
		bucket:       cfg.Bucket,
		endpoint:     strings.TrimSuffix(cfg.Endpoint, "/"),
		domain:       domain,
		usePathStyle: cfg.UsePathStyle,
	}, nil
}

// NewS3Client builds an S3 client from configuration
func NewS3Client(ctx context.Context, cfg *Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if cfg.Endpoint != "" || cfg.UsePathStyle {
		s3Options = append(s3Options, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	return s3.NewFromConfig(awsCfg, s3Options...), nil
}

// Store implements FileStorage.Store
func (s *S3FileStorage) Store(ctx context.Context, key string, data []byte, opts *StoreOptions) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Store", key, err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if opts != nil {
		if opts.ContentType != "" {
			input.ContentType = aws.String(opts.ContentType)
		}
		if len(opts.Metadata) > 0 {
			input.Metadata = opts.Metadata
		}
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return NewStorageError("Store", key, describeS3Error(err))
	}
	return nil
}

// Retrieve implements FileStorage.Retrieve
func (s *S3FileStorage) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Retrieve", key, err)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, NewStorageError("Retrieve", key, ErrFileNotFound)
		}
		return nil, NewStorageError("Retrieve", key, describeS3Error(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, NewStorageError("Retrieve", key, err)
	}
	return data, nil
}

// URL implements FileStorage.URL. Virtual-hosted URLs take the form
// https://{bucket}.{domain}/{key}; path-style URLs put the bucket in the path.
func (s *S3FileStorage) URL(key string) string {
	if s.usePathStyle {
		base := s.endpoint
		if base == "" {
			base = "https://" + s.domain
		}
		return fmt.Sprintf("%s/%s/%s", base, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.domain, key)
}

// Close implements FileStorage.Close
func (s *S3FileStorage) Close() error {
	return nil
}

// describeS3Error keeps the AWS error code in the message and marks
// throttling and server-side failures with ErrStorageUnavailable.
func describeS3Error(err error) error {
	code := ""
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}

	if isUnavailable(err, code) {
		if code == "" {
			return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		return fmt.Errorf("%s: %w: %w", code, ErrStorageUnavailable, err)
	}
	if code != "" {
		return fmt.Errorf("%s: %w", code, err)
	}
	return err
}

func isUnavailable(err error, code string) bool {
	switch code {
	case "SlowDown", "Throttling", "ThrottlingException", "RequestLimitExceeded",
		"ServiceUnavailable", "InternalError", "RequestTimeout":
		return true
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() >= 500
	}
	return false
}
