// Package gcsds reads snapshot objects from a Google Cloud Storage bucket.
package gcsds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

// Store opens objects below bucket/prefix using application default
// credentials.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a GCS client.
func New(ctx context.Context, bucket, prefix string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}
	return &Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

// ObjectName returns the bucket and object path for name. A full gs:// URI
// names its own bucket.
func ObjectName(bucket, prefix, name string) (string, string) {
	if rest, ok := strings.CutPrefix(name, "gs://"); ok {
		b, o, _ := strings.Cut(rest, "/")
		return b, o
	}
	if prefix == "" {
		return bucket, name
	}
	return bucket, path.Join(prefix, name)
}

// Open returns a reader over the object. A missing object is reported as
// fs.ErrNotExist.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, obj := ObjectName(s.bucket, s.prefix, name)
	r, err := s.client.Bucket(bucket).Object(obj).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gcs: gs://%s/%s: %w", bucket, obj, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("gcs: open gs://%s/%s: %w", bucket, obj, err)
	}
	return r, nil
}

// Close closes the GCS client.
func (s *Store) Close() error { return s.client.Close() }
