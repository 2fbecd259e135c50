package storage

import (
	"context"
	"io"
)

// Storage abstracts where uploaded images live. Implementations exist for
// the local filesystem, S3-compatible buckets and the backend's own storage
// endpoint.
type Storage interface {
	// Save stores data under key and returns its public URL.
	// key is a unique path inside the store, e.g. "images/<uuid>.jpg".
	Save(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error

	// KeyOf maps a URL returned by Save back to its key. It reports false
	// for URLs this store did not produce.
	KeyOf(url string) (key string, ok bool)
}
