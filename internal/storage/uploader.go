package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxImageSize bounds an upload when no limit is configured.
const DefaultMaxImageSize = 5 << 20 // 5 MB

// File is a locally selected file waiting to be uploaded.
type File struct {
	Name string
	Body io.Reader
}

// UploadError reports a failed image upload. No record may reference a URL
// from an upload that returned this error.
type UploadError struct {
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload failed: %s: %v", e.Reason, e.Err)
	}
	return "upload failed: " + e.Reason
}

func (e *UploadError) Unwrap() error { return e.Err }

// Uploader turns a selected image file into a durable URL.
type Uploader struct {
	store   Storage
	maxSize int64
	log     *slog.Logger
}

// NewUploader creates an Uploader writing to store. maxSize <= 0 means DefaultMaxImageSize.
func NewUploader(store Storage, maxSize int64, log *slog.Logger) *Uploader {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{store: store, maxSize: maxSize, log: log}
}

// Upload stores file and returns its public URL. Only image content is accepted.
func (u *Uploader) Upload(ctx context.Context, file File) (string, error) {
	if file.Body == nil {
		return "", &UploadError{Reason: "no file selected"}
	}

	data, err := io.ReadAll(io.LimitReader(file.Body, u.maxSize+1))
	if err != nil {
		return "", &UploadError{Reason: "read file", Err: err}
	}
	if int64(len(data)) > u.maxSize {
		return "", &UploadError{Reason: fmt.Sprintf("file exceeds %d bytes", u.maxSize)}
	}
	if len(data) == 0 {
		return "", &UploadError{Reason: "file is empty"}
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", &UploadError{Reason: fmt.Sprintf("unsupported content type %s", mt.String())}
	}

	key := path.Join("images", uuid.NewString()+mt.Extension())
	url, err := u.store.Save(ctx, key, bytes.NewReader(data), mt.String())
	if err != nil {
		return "", &UploadError{Reason: "store image", Err: err}
	}
	if url == "" {
		return "", &UploadError{Reason: "store returned an empty url"}
	}

	u.log.Info("image uploaded", "key", key, "file", file.Name, "content_type", mt.String(), "bytes", len(data))
	return url, nil
}

// Discard removes an image previously returned by Upload. URLs the store
// does not recognise are ignored.
func (u *Uploader) Discard(ctx context.Context, url string) error {
	key, ok := u.store.KeyOf(url)
	if !ok {
		return nil
	}
	if err := u.store.Delete(ctx, key); err != nil {
		return errors.Join(fmt.Errorf("discard %s", url), err)
	}
	return nil
}
