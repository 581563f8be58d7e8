package storage

import (
	"context"
	"io"
)

// Storage is an object store keyed by slash-separated paths. Delete of a
// missing key is not an error on any backend; the database record is
// authoritative, storage only follows it.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
