// Package datasource abstracts where raw snapshot objects are read from.
//
// A Store resolves object names relative to a snapshot base (a local
// directory, an S3 prefix, a GCS prefix or an HTTP(S) base URL). Source binds a Store to a single
// object so callers that only need one stream keep the original one-method
// interface.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"elt/internal/config"
	"elt/internal/datasource/file"
	"elt/internal/datasource/gcsds"
	"elt/internal/datasource/httpds"
	"elt/internal/datasource/s3ds"
)

type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Store opens named objects below a snapshot base.
type Store interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Close() error
}

// Bind returns a Source that opens name from st.
func Bind(st Store, name string) Source { return bound{st: st, name: name} }

type bound struct {
	st   Store
	name string
}

func (b bound) Open(ctx context.Context) (io.ReadCloser, error) { return b.st.Open(ctx, b.name) }

// Test seams.
var (
	newS3Store   = func(ctx context.Context, bucket, prefix, region string) (Store, error) { return s3ds.New(ctx, bucket, prefix, region) }
	newGCSStore  = func(ctx context.Context, bucket, prefix string) (Store, error) { return gcsds.New(ctx, bucket, prefix) }
	newHTTPStore = func(base string) (Store, error) { return httpds.New(base, httpds.Config{Headers: authHeader()}) }
)

// Open returns the Store described by cfg. A base carrying an s3://, gs://,
// http:// or https:// scheme selects the backend regardless of cfg.Kind.
func Open(ctx context.Context, cfg config.Source) (Store, error) {
	kind, bucket, prefix := ParseBase(cfg.Kind, cfg.Base)
	switch kind {
	case "file", "":
		return file.NewDir(cfg.Base), nil
	case "s3":
		if bucket == "" {
			return nil, fmt.Errorf("datasource: s3 base %q has no bucket", cfg.Base)
		}
		return newS3Store(ctx, bucket, prefix, cfg.Region)
	case "gcs":
		if bucket == "" {
			return nil, fmt.Errorf("datasource: gcs base %q has no bucket", cfg.Base)
		}
		return newGCSStore(ctx, bucket, prefix)
	case "http":
		return newHTTPStore(prefix)
	default:
		return nil, fmt.Errorf("datasource: unknown source kind %q", kind)
	}
}

// ParseBase splits an object-store base into kind, bucket and key prefix.
// Accepted forms are "s3://bucket/prefix", "gs://bucket/prefix" and a bare
// "bucket/prefix" interpreted with kind. File and HTTP bases are returned
// untouched in prefix.
func ParseBase(kind, base string) (string, string, string) {
	switch {
	case strings.HasPrefix(base, "s3://"):
		kind, base = "s3", strings.TrimPrefix(base, "s3://")
	case strings.HasPrefix(base, "gs://"):
		kind, base = "gcs", strings.TrimPrefix(base, "gs://")
	case strings.HasPrefix(base, "http://"), strings.HasPrefix(base, "https://"):
		return "http", "", base
	case kind == "http":
		return kind, "", base
	case kind == "file" || kind == "":
		return kind, "", base
	}
	bucket, prefix, _ := strings.Cut(strings.Trim(base, "/"), "/")
	return kind, bucket, prefix
}

// authHeader sends WAREHOUSE_HTTP_TOKEN as a bearer token when set.
func authHeader() http.Header {
	tok := os.Getenv("WAREHOUSE_HTTP_TOKEN")
	if tok == "" {
		return nil
	}
	return http.Header{"Authorization": {"Bearer " + tok}}
}
