package httpds

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
)

// Store opens objects relative to a base URL. A failed request is returned
// as-is; the run fails and the orchestrator decides whether to rerun.
type Store struct {
	client  *http.Client
	headers http.Header
	base    *url.URL
}

// New returns a Store rooted at base, which must be an http or https URL.
func New(base string, cfg Config) (*Store, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("httpds: parse base %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpds: base %q is not an http(s) URL", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Store{client: newHTTPClient(cfg), headers: cfg.Headers.Clone(), base: u}, nil
}

// URL resolves name against the base. Absolute URLs are used as-is.
func (s *Store) URL(name string) string {
	ref, err := url.Parse(name)
	if err != nil {
		return s.base.String() + name
	}
	return s.base.ResolveReference(ref).String()
}

// Open streams the body of name. A 404 or 410 wraps fs.ErrNotExist so
// optional entities can be told apart from failures.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	u := s.URL(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpds: build request: %w", err)
	}
	for k, vs := range s.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpds: get %s: %w", u, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, fmt.Errorf("httpds: get %s: %w", u, fs.ErrNotExist)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("httpds: get %s: unexpected status %s", u, resp.Status)
	}
	return resp.Body, nil
}

func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
