package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memObject struct {
	data         []byte
	lastModified time.Time
}

type memUpload struct {
	key   string
	parts map[int][]byte
}

// MemStore is an in-memory Store used in tests and local development.
// It mirrors the backend's semantics: multipart uploads stay invisible
// until completed, and Put replaces a key in one step.
type MemStore struct {
	mu      sync.Mutex
	objects map[string]memObject
	uploads map[string]*memUpload

	// Now supplies object timestamps and can be overridden in tests.
	Now func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string]memObject),
		uploads: make(map[string]*memUpload),
		Now:     time.Now,
	}
}

func (s *MemStore) List(ctx context.Context) ([]ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects := make([]ObjectInfo, 0, len(s.objects))
	for key, obj := range s.objects {
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
		})
	}

	slices.SortFunc(objects, func(a, b ObjectInfo) int {
		return strings.Compare(a.Key, b.Key)
	})

	return objects, nil
}

func (s *MemStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object: %q", key)
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *MemStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = memObject{data: data, lastModified: s.Now()}
	return nil
}

func (s *MemStore) NewMultipartUpload(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uploadID := uuid.NewString()
	s.uploads[uploadID] = &memUpload{key: key, parts: make(map[int][]byte)}
	return uploadID, nil
}

func (s *MemStore) PutPart(ctx context.Context, key string, uploadID string, partNumber int, data []byte) (Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	upload, ok := s.uploads[uploadID]
	if !ok || upload.key != key {
		return Part{}, fmt.Errorf("no such multipart upload: %q", uploadID)
	}

	upload.parts[partNumber] = slices.Clone(data)
	return Part{Number: partNumber, ETag: fmt.Sprintf("part-%d", partNumber)}, nil
}

func (s *MemStore) CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	upload, ok := s.uploads[uploadID]
	if !ok || upload.key != key {
		return fmt.Errorf("no such multipart upload: %q", uploadID)
	}

	var data []byte
	for _, p := range parts {
		chunk, ok := upload.parts[p.Number]
		if !ok {
			return fmt.Errorf("multipart upload %q has no part %d", uploadID, p.Number)
		}
		data = append(data, chunk...)
	}

	s.objects[key] = memObject{data: data, lastModified: s.Now()}
	delete(s.uploads, uploadID)
	return nil
}

func (s *MemStore) AbortMultipartUpload(ctx context.Context, key string, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.uploads[uploadID]; !ok {
		return fmt.Errorf("no such multipart upload: %q", uploadID)
	}

	delete(s.uploads, uploadID)
	return nil
}

func (s *MemStore) Location(key string) string {
	return key
}

// Pending reports the number of in-progress multipart uploads.
func (s *MemStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}
