// Package publish uploads report artifacts to object storage and builds their public URLs.
package publish

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"health-report/internal/config"
)

// ObjectStore is the minimal object storage surface a report run needs.
// Put overwrites any existing object under the same key.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	URL(bucket, key string) string
}

// New picks the backend named by storage.backend.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		store ObjectStore
		err   error
	)
	switch cfg.Backend {
	case "s3":
		store, err = NewS3Store(ctx, cfg)
	case "minio":
		store, err = NewMinioStore(cfg)
	case "local":
		store, err = NewLocalStore(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.PublicBaseURL != "" {
		return &publicURLStore{ObjectStore: store, base: strings.TrimRight(cfg.PublicBaseURL, "/")}, nil
	}
	return store, nil
}

// publicURLStore serves URLs from a fixed base such as a CDN: <base>/<bucket>/<key>.
type publicURLStore struct {
	ObjectStore
	base string
}

func (s *publicURLStore) URL(bucket, key string) string {
	return s.base + "/" + url.PathEscape(bucket) + "/" + escapeKey(key)
}

// escapeKey percent-encodes each path segment of key and keeps the slashes.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
