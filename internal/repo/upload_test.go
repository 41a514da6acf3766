package repo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"ommrepo/internal/store"
)

// countingStore wraps a Store and records PutPart calls, optionally
// failing a specific part number.
type countingStore struct {
	store.Store
	parts    []int
	failPart int
}

func (s *countingStore) PutPart(ctx context.Context, key string, uploadID string, partNumber int, data []byte) (store.Part, error) {
	if s.failPart != 0 && partNumber == s.failPart {
		return store.Part{}, errors.New("part upload failed")
	}
	s.parts = append(s.parts, partNumber)
	return s.Store.PutPart(ctx, key, uploadID, partNumber, data)
}

func readObject(t *testing.T, mem *store.MemStore, key string) []byte {
	t.Helper()

	rc, err := mem.Get(context.Background(), key)
	require.NoErrorf(t, err, "Get %q error", key)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err, "reading object")
	return data
}

func TestUploadObjectChunks(t *testing.T) {
	t.Parallel()

	srv, mem := newTestRepo(t, "https://mods.example.com")
	counting := &countingStore{Store: mem}
	srv.store = counting
	srv.partSize = 8

	payload := []byte("exactly twenty bytes")
	require.Len(t, payload, 20)

	require.NoError(t, srv.uploadObject(context.Background(), "big.ozp", bytes.NewReader(payload)), "uploadObject error")

	require.Equal(t, []int{1, 2, 3}, counting.parts, "20 bytes in 8-byte parts is three parts")
	require.Equal(t, payload, readObject(t, mem, "big.ozp"), "assembled object content")
	require.Zero(t, mem.Pending(), "no pending multipart uploads")
}

func TestUploadObjectExactMultiple(t *testing.T) {
	t.Parallel()

	srv, mem := newTestRepo(t, "https://mods.example.com")
	counting := &countingStore{Store: mem}
	srv.store = counting
	srv.partSize = 8

	payload := bytes.Repeat([]byte("x"), 16)
	require.NoError(t, srv.uploadObject(context.Background(), "even.ozp", bytes.NewReader(payload)), "uploadObject error")

	require.Equal(t, []int{1, 2}, counting.parts, "a body of exactly two parts must not produce an empty third part")
	require.Equal(t, payload, readObject(t, mem, "even.ozp"))
}

func TestUploadObjectEmptyBody(t *testing.T) {
	t.Parallel()

	srv, mem := newTestRepo(t, "https://mods.example.com")
	srv.partSize = 8

	require.NoError(t, srv.uploadObject(context.Background(), "empty.ozp", bytes.NewReader(nil)), "uploadObject error")
	require.Empty(t, readObject(t, mem, "empty.ozp"), "empty body yields an empty object")
}

func TestUploadObjectAbortsOnFailure(t *testing.T) {
	t.Parallel()

	srv, mem := newTestRepo(t, "https://mods.example.com")
	srv.store = &countingStore{Store: mem, failPart: 2}
	srv.partSize = 8

	payload := bytes.Repeat([]byte("y"), 20)
	err := srv.uploadObject(context.Background(), "big.ozp", bytes.NewReader(payload))
	require.Error(t, err, "expected upload failure")

	require.Zero(t, mem.Pending(), "failed upload must be aborted")

	_, err = mem.Get(context.Background(), "big.ozp")
	require.Error(t, err, "failed upload must not create an object")
}
