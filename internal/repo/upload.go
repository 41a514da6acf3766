package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"ommrepo/internal/store"
)

// uploadChunkSize is the multipart part size for incoming archives.
const uploadChunkSize = 10 << 20

// uploadObject streams body into the store under key using a chunked
// multipart upload, so arbitrarily large archives never get buffered in
// full. On any failure the in-progress upload is aborted best-effort
// before the error is returned.
func (s *Server) uploadObject(ctx context.Context, key string, body io.Reader) error {

	uploadID, err := s.store.NewMultipartUpload(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to start multipart upload for %q: %w", key, err)
	}

	abort := func() {
		if err := s.store.AbortMultipartUpload(ctx, key, uploadID); err != nil {
			slog.Warn("Failed to abort multipart upload", "key", key, "upload_id", uploadID, "error", err)
		}
	}

	buf := make([]byte, s.partSize)
	var parts []store.Part

	for partNumber := 1; ; partNumber++ {
		n, readErr := io.ReadFull(body, buf)
		if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
			abort()
			return fmt.Errorf("failed to read upload body: %w", readErr)
		}

		if n > 0 {
			part, err := s.store.PutPart(ctx, key, uploadID, partNumber, buf[:n])
			if err != nil {
				abort()
				return fmt.Errorf("failed to upload part %d of %q: %w", partNumber, key, err)
			}
			parts = append(parts, part)
		}

		// A short or empty read means the body is exhausted.
		if readErr != nil {
			break
		}
	}

	if err := s.store.CompleteMultipartUpload(ctx, key, uploadID, parts); err != nil {
		abort()
		return fmt.Errorf("failed to complete multipart upload for %q: %w", key, err)
	}

	return nil
}
