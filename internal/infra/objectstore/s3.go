package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Config configures the S3 backend. Endpoint and UsePathStyle allow
// S3-compatible services such as MinIO or Supabase Storage.
type S3Config struct {
	Region          string
	Bucket          string // physical bucket; logical buckets become key prefixes
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
	PublicBaseURL   string // e.g. https://cdn.example.com
}

// S3Store implements Store on an S3 bucket.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Store builds an S3 client from cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("public base URL is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		// failures surface to the editor, who decides whether to try again
		o.RetryMaxAttempts = 1
	})

	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: cfg.PublicBaseURL}, nil
}

func (s *S3Store) key(bucket, name string) string {
	return bucket + "/" + name
}

func (s *S3Store) Upload(ctx context.Context, bucket, name string, body io.Reader, size int64, opts PutOptions) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(bucket, name)),
		Body:   body,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(opts.CacheControl)
	}
	if !opts.Overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", translateS3Error(err)
	}
	return name, nil
}

func (s *S3Store) PublicURL(bucket, path string) string {
	return joinURL(s.baseURL, bucket, path)
}

func translateS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		msg := apiErr.ErrorMessage()
		if code == "PreconditionFailed" || code == "ConditionalRequestConflict" {
			code = ErrCodeAlreadyExists
			msg = "The resource already exists"
		}
		if msg == "" {
			msg = apiErr.ErrorCode()
		}
		return &Error{Code: code, Message: msg, Err: err}
	}
	return &Error{Message: err.Error(), Err: err}
}
