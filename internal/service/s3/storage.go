package s3

import (
	"context"
	"io"
)

// Storage is the blob store the file services write content through. Keys
// are opaque to callers; a blob is durable once Upload returns.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
