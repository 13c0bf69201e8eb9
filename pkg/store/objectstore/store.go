// Package objectstore reads and writes files addressed either by a local path
// or by an s3://bucket/key URI.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const DefaultRegion = "us-east-1"

// S3API is the subset of the S3 client used here.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	profile string

	mu     sync.Mutex
	client S3API
}

// New returns a Store whose S3 client is created from the shared AWS profile
// on first use. An empty profile uses the default credential chain.
func New(profile string) *Store {
	return &Store{profile: profile}
}

func NewWithClient(client S3API) *Store {
	return &Store{client: client}
}

// ParseS3URI splits s3://bucket/key. ok is false for anything else.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

func (s *Store) s3Client(ctx context.Context) (S3API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(DefaultRegion)}
	if s.profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	s.client = s3.NewFromConfig(cfg)
	return s.client, nil
}

// Open returns a reader for a local path or an S3 object.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if !IsRemote(uri) {
		f, err := os.Open(uri)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", uri, err)
		}
		return f, nil
	}

	bucket, key, ok := ParseS3URI(uri)
	if !ok {
		return nil, fmt.Errorf("malformed object uri %q", uri)
	}
	client, err := s.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}
	zerolog.Ctx(ctx).Debug().Str("uri", uri).Msg("opened object")
	return out.Body, nil
}

// Write stores body at a local path (creating parent directories) or as an S3 object.
func (s *Store) Write(ctx context.Context, uri string, body []byte, contentType string) error {
	if !IsRemote(uri) {
		if dir := filepath.Dir(uri); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create directory for %s: %w", uri, err)
			}
		}
		if err := os.WriteFile(uri, body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", uri, err)
		}
		return nil
	}

	bucket, key, ok := ParseS3URI(uri)
	if !ok {
		return fmt.Errorf("malformed object uri %q", uri)
	}
	client, err := s.s3Client(ctx)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", uri, err)
	}
	zerolog.Ctx(ctx).Info().Str("uri", uri).Int("bytes", len(body)).Msg("uploaded object")
	return nil
}
