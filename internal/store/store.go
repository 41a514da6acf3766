// Package store abstracts the object storage backend that holds the
// uploaded mod archives and the published manifest.
package store

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Part identifies one completed piece of a multipart upload.
type Part struct {
	Number int
	ETag   string
}

// Store is the gateway to the object storage backend. Put overwrites a
// single key atomically; there is no compare-and-swap, so concurrent
// writers to the same key are last-writer-wins.
type Store interface {
	// List returns every object in the store. Backend pagination is
	// handled internally; the caller always sees the full set.
	List(ctx context.Context) ([]ObjectInfo, error)

	// Get opens the content of the object at key for reading. The caller
	// must close the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put stores size bytes from r under key, replacing any existing
	// object.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// NewMultipartUpload starts a chunked upload to key and returns its
	// upload id. The object does not become visible until the upload is
	// completed.
	NewMultipartUpload(ctx context.Context, key string) (string, error)

	// PutPart uploads one numbered part of a multipart upload.
	PutPart(ctx context.Context, key string, uploadID string, partNumber int, data []byte) (Part, error)

	// CompleteMultipartUpload assembles the uploaded parts into the final
	// object at key.
	CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []Part) error

	// AbortMultipartUpload discards an in-progress multipart upload and
	// any parts already stored for it.
	AbortMultipartUpload(ctx context.Context, key string, uploadID string) error

	// Location returns the store-relative path published for key in the
	// manifest's file attribute.
	Location(key string) string
}
