package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore is a Store backed by an S3-compatible server, accessed with
// the MinIO client. Multipart operations use the low-level Core client.
type MinioStore struct {
	client *minio.Client
	core   *minio.Core
	bucket string
}

// NewMinioStore connects to the given S3-compatible endpoint and verifies
// that the bucket exists.
func NewMinioStore(ctx context.Context, endpoint string, accessKey string, secretKey string, secure bool, bucket string) (*MinioStore, error) {

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	core, err := minio.NewCore(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO core client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
		}
	}

	return &MinioStore{client: client, core: core, bucket: bucket}, nil
}

func (s *MinioStore) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for objectInfo := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if objectInfo.Err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %q: %w", s.bucket, objectInfo.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          objectInfo.Key,
			Size:         objectInfo.Size,
			LastModified: objectInfo.LastModified,
		})
	}
	return objects, nil
}

func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	return obj, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", key, err)
	}
	return nil
}

func (s *MinioStore) NewMultipartUpload(ctx context.Context, key string) (string, error) {
	uploadID, err := s.core.NewMultipartUpload(ctx, s.bucket, key, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("failed to initiate multipart upload for %q: %w", key, err)
	}
	return uploadID, nil
}

func (s *MinioStore) PutPart(ctx context.Context, key string, uploadID string, partNumber int, data []byte) (Part, error) {
	objPart, err := s.core.PutObjectPart(ctx, s.bucket, key, uploadID, partNumber, bytes.NewReader(data), int64(len(data)), minio.PutObjectPartOptions{})
	if err != nil {
		return Part{}, fmt.Errorf("failed to upload part %d of %q: %w", partNumber, key, err)
	}
	return Part{Number: objPart.PartNumber, ETag: objPart.ETag}, nil
}

func (s *MinioStore) CompleteMultipartUpload(ctx context.Context, key string, uploadID string, parts []Part) error {
	completeParts := make([]minio.CompletePart, 0, len(parts))
	for _, p := range parts {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: p.Number,
			ETag:       p.ETag,
		})
	}

	_, err := s.core.CompleteMultipartUpload(ctx, s.bucket, key, uploadID, completeParts, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload for %q: %w", key, err)
	}
	return nil
}

func (s *MinioStore) AbortMultipartUpload(ctx context.Context, key string, uploadID string) error {
	if err := s.core.AbortMultipartUpload(ctx, s.bucket, key, uploadID); err != nil {
		return fmt.Errorf("failed to abort multipart upload for %q: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Location(key string) string {
	return key
}
