package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/canopy/pkg/ports"
)

// DefaultMaxBytes caps a single payload.
const DefaultMaxBytes = 4 << 20

// Source fetches payloads over HTTP GET from {base}/{name}.
// It implements ports.Source.
type Source struct {
	base     *url.URL
	client   *http.Client
	token    string
	suffix   string
	maxBytes int64
}

type Option func(*Source)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithBearerToken sends an Authorization header on every request.
func WithBearerToken(token string) Option {
	return func(s *Source) { s.token = token }
}

// WithSuffix appends a fixed suffix (e.g. ".json") to every resource path.
func WithSuffix(suffix string) Option {
	return func(s *Source) { s.suffix = suffix }
}

// WithMaxBytes limits the size of a payload. Larger bodies are unreadable.
func WithMaxBytes(n int64) Option {
	return func(s *Source) { s.maxBytes = n }
}

// New creates a remote source rooted at base.
func New(base string, opts ...Option) (*Source, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	s := &Source{
		base:     u,
		client:   &http.Client{Timeout: 10 * time.Second},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Fetch performs one GET. 404 wraps ports.ErrNotFound; any other failure is
// returned as is and means unreadable.
func (s *Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	name = strings.Trim(name, "/")
	if name == "" {
		return nil, errors.New("screen name cannot be empty")
	}
	target := s.base.JoinPath(strings.Split(name, "/")...)
	target.Path += s.suffix

	body, status, err := s.get(ctx, target.String())
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("screen %s: %w", name, ports.ErrNotFound)
	case status < 200 || status > 299:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target.Redacted(), status)
	}
	return body, nil
}

func (s *Source) get(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s: %w", target, err)
	}
	if int64(len(body)) > s.maxBytes {
		return nil, resp.StatusCode, fmt.Errorf("read %s: payload exceeds %d bytes", target, s.maxBytes)
	}
	return body, resp.StatusCode, nil
}
