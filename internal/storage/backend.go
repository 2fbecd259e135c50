package storage

import (
	"context"
	"io"
)

// ObjectClient is the backend's file storage endpoint.
type ObjectClient interface {
	PutObject(ctx context.Context, bucket, key string, data io.Reader, contentType string) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	PublicURL(bucket, key string) string
}

// BackendStorage stores images in a bucket of the backend service.
type BackendStorage struct {
	client ObjectClient
	bucket string
}

var _ Storage = (*BackendStorage)(nil)

// NewBackendStorage creates a BackendStorage writing to bucket.
func NewBackendStorage(client ObjectClient, bucket string) *BackendStorage {
	return &BackendStorage{client: client, bucket: bucket}
}

func (s *BackendStorage) Save(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	return s.client.PutObject(ctx, s.bucket, key, data, contentType)
}

func (s *BackendStorage) Delete(ctx context.Context, key string) error {
	return s.client.DeleteObject(ctx, s.bucket, key)
}

func (s *BackendStorage) KeyOf(url string) (string, bool) {
	return cutPrefix(url, s.client.PublicURL(s.bucket, ""))
}
