package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"articleapi/internal/config"
	"articleapi/internal/model"
)

// minioStore implements ContentStore on an S3-compatible backend (MinIO, AWS
// S3, etc.) for deployments where the content area cannot live on local disk.
// Attachment records stay byte-identical with the fs backend; only the
// location of the raw bytes changes. Safe for concurrent use.
type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates the S3 content backend. It validates connectivity and
// ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (ContentStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &minioStore{client: cli, bucket: cfg.Bucket}, nil
}

func (m *minioStore) Save(ctx context.Context, cand model.AttachmentCandidate) (model.Attachment, error) {
	if err := validateCandidate(cand); err != nil {
		return model.Attachment{}, err
	}

	name := storedName(nowMillis(), cand.Name)
	// Object keys carry the same millisecond-prefixed names as the fs
	// backend; a same-millisecond duplicate would need two uploads of the
	// same original name inside one millisecond, which the single-writer
	// model rules out.
	info, err := m.client.PutObject(ctx, m.bucket, name, cand.Reader, cand.Size, minio.PutObjectOptions{
		ContentType: string(cand.DeclaredType),
		UserMetadata: map[string]string{
			"original-filename": cand.Name,
		},
	})
	if err != nil {
		return model.Attachment{}, &model.StorageError{Op: "put attachment object", Err: err}
	}

	return model.Attachment{
		StoredName:   name,
		OriginalName: cand.Name,
		Size:         info.Size,
		MediaType:    cand.DeclaredType,
	}, nil
}

func (m *minioStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !safeName(name) {
		return nil, model.ErrNotFound
	}
	obj, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, &model.StorageError{Op: "get attachment object", Err: err}
	}
	// GetObject is lazy; Stat forces the round trip so a missing key surfaces
	// here instead of on first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, model.ErrNotFound
		}
		return nil, &model.StorageError{Op: "stat attachment object", Err: err}
	}
	return obj, nil
}

func (m *minioStore) Delete(ctx context.Context, name string) error {
	if !safeName(name) {
		return model.ErrNotFound
	}
	// RemoveObject succeeds on a missing key, so stat first to keep the
	// soft-miss contract the reconciliation loop logs on.
	if _, err := m.client.StatObject(ctx, m.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return model.ErrNotFound
		}
		return &model.StorageError{Op: "stat attachment object", Err: err}
	}
	if err := m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return &model.StorageError{Op: "delete attachment object", Err: err}
	}
	return nil
}
