package storage

import (
	"context"
	"io"
)

// BlobStore hides where uploaded documents live. The disk store backs local
// development; production points STORAGE_BACKEND=s3 at a bucket.
type BlobStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}
