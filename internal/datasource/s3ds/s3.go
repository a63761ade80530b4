// Package s3ds reads snapshot objects from an S3 bucket.
package s3ds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// API is the subset of *s3.Client used by Store.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store opens objects below bucket/prefix.
type Store struct {
	api    API
	bucket string
	prefix string
}

// New builds a Store using the default AWS credential chain. An empty region
// defers to the SDK (AWS_REGION, shared config).
func New(ctx context.Context, bucket, prefix, region string) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	return NewWithAPI(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewWithAPI wraps an existing client.
func NewWithAPI(api API, bucket, prefix string) *Store {
	return &Store{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key for name. A full s3:// URI is split into its
// own bucket and key.
func (s *Store) Key(name string) (bucket, key string) {
	if rest, ok := strings.CutPrefix(name, "s3://"); ok {
		b, k, _ := strings.Cut(rest, "/")
		return b, k
	}
	if s.prefix == "" {
		return s.bucket, name
	}
	return s.bucket, path.Join(s.prefix, name)
}

// Open streams the object body. The caller closes it. A missing key wraps
// fs.ErrNotExist.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, key := s.Key(name)
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("s3: get s3://%s/%s: %w", bucket, key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("s3: get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

func (s *Store) Close() error { return nil }
