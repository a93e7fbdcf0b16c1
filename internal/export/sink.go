package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/conorfennell/nerd/internal/config"
)

// Sink stores an encoded snapshot.
type Sink interface {
	Put(ctx context.Context, data []byte, contentType string) error
	String() string
}

// FileSink writes to a local file, creating parent directories.
type FileSink struct {
	Path string
}

func (f FileSink) Put(_ context.Context, data []byte, _ string) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot to %s: %w", f.Path, err)
	}
	return nil
}

func (f FileSink) String() string {
	return f.Path
}

// S3Sink uploads to one object of a bucket.
type S3Sink struct {
	Client *s3.Client
	Bucket string
	Key    string
}

func (s S3Sink) Put(ctx context.Context, data []byte, contentType string) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
			return fmt.Errorf("bucket %s does not exist", s.Bucket)
		}
		return fmt.Errorf("failed to upload snapshot to %s: %w", s, err)
	}
	return nil
}

func (s S3Sink) String() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

// NewS3Client returns a client for cfg. An empty endpoint targets AWS, and
// empty keys use the default credential chain.
func NewS3Client(ctx context.Context, cfg config.S3) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// ParseS3URL splits s3://bucket/key. ok is false for any other target.
func ParseS3URL(target string) (bucket, key string, ok bool, err error) {
	if !strings.HasPrefix(target, "s3://") {
		return "", "", false, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", "", true, fmt.Errorf("invalid S3 target %s: %w", target, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", true, fmt.Errorf("S3 target %s needs a bucket and a key", target)
	}
	return u.Host, key, true, nil
}

// NewSink returns the sink for target: an s3:// URL or a file path.
func NewSink(ctx context.Context, target string, cfg config.S3) (Sink, error) {
	bucket, key, isS3, err := ParseS3URL(target)
	if err != nil {
		return nil, err
	}
	if !isS3 {
		return FileSink{Path: target}, nil
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return S3Sink{Client: client, Bucket: bucket, Key: key}, nil
}
