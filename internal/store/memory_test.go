package store

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func putString(t *testing.T, s *MemStore, key string, content string) {
	t.Helper()

	err := s.Put(context.Background(), key, bytes.NewReader([]byte(content)), int64(len(content)), "application/octet-stream")
	require.NoErrorf(t, err, "Put %q error", key)
}

func TestMemStorePutGetList(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()

	putString(t, s, "b.ozp", "bravo")
	putString(t, s, "a.ozp", "alpha")

	rc, err := s.Get(ctx, "a.ozp")
	require.NoError(t, err, "Get error")
	data, err := io.ReadAll(rc)
	require.NoError(t, err, "reading object")
	require.NoError(t, rc.Close(), "closing object")
	require.Equal(t, "alpha", string(data))

	objects, err := s.List(ctx)
	require.NoError(t, err, "List error")
	require.Len(t, objects, 2)
	require.Equal(t, "a.ozp", objects[0].Key, "listing is key-ordered")
	require.Equal(t, int64(5), objects[0].Size)

	_, err = s.Get(ctx, "missing.ozp")
	require.Error(t, err, "expected error for missing object")
}

func TestMemStorePutOverwrites(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()

	putString(t, s, "a.ozp", "old content")
	putString(t, s, "a.ozp", "new")

	objects, err := s.List(ctx)
	require.NoError(t, err, "List error")
	require.Len(t, objects, 1)
	require.Equal(t, int64(3), objects[0].Size)
}

func TestMemStoreMultipart(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()

	uploadID, err := s.NewMultipartUpload(ctx, "big.ozp")
	require.NoError(t, err, "NewMultipartUpload error")

	// The object must not be visible before the upload completes.
	objects, err := s.List(ctx)
	require.NoError(t, err, "List error")
	require.Empty(t, objects)

	var parts []Part
	for i, chunk := range []string{"first-", "second-", "third"} {
		part, err := s.PutPart(ctx, "big.ozp", uploadID, i+1, []byte(chunk))
		require.NoErrorf(t, err, "PutPart %d error", i+1)
		parts = append(parts, part)
	}

	require.NoError(t, s.CompleteMultipartUpload(ctx, "big.ozp", uploadID, parts), "CompleteMultipartUpload error")
	require.Zero(t, s.Pending(), "no pending uploads after complete")

	rc, err := s.Get(ctx, "big.ozp")
	require.NoError(t, err, "Get error")
	data, err := io.ReadAll(rc)
	require.NoError(t, err, "reading object")
	require.Equal(t, "first-second-third", string(data))
}

func TestMemStoreMultipartAbort(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()

	uploadID, err := s.NewMultipartUpload(ctx, "big.ozp")
	require.NoError(t, err, "NewMultipartUpload error")

	_, err = s.PutPart(ctx, "big.ozp", uploadID, 1, []byte("data"))
	require.NoError(t, err, "PutPart error")

	require.NoError(t, s.AbortMultipartUpload(ctx, "big.ozp", uploadID), "AbortMultipartUpload error")
	require.Zero(t, s.Pending(), "no pending uploads after abort")

	err = s.CompleteMultipartUpload(ctx, "big.ozp", uploadID, []Part{{Number: 1}})
	require.Error(t, err, "expected error completing an aborted upload")

	objects, err := s.List(ctx)
	require.NoError(t, err, "List error")
	require.Empty(t, objects, "aborted upload must not create an object")
}

func TestMemStoreTimestamps(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }

	putString(t, s, "a.ozp", "alpha")
	now = now.Add(time.Minute)
	putString(t, s, "b.ozp", "bravo")

	objects, err := s.List(context.Background())
	require.NoError(t, err, "List error")
	require.Len(t, objects, 2)
	require.True(t, objects[1].LastModified.After(objects[0].LastModified), "later put has later timestamp")
}
