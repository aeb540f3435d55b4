package labreports

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

// S3Storage stores lab reports in any S3-compatible object store.
type S3Storage struct {
	client *minio.Client
	logger *slog.Logger

	mu      sync.Mutex
	ensured map[string]bool
}

// NewS3Storage constructs the storage adapter.
func NewS3Storage(endpoint, accessKey, secretKey, region string, logger *slog.Logger) (*S3Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	useSSL := strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "https")
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Storage{
		client:  client,
		logger:  logger.With("component", "labreports.s3"),
		ensured: make(map[string]bool),
	}, nil
}

func (s *S3Storage) ensureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	done := s.ensured[bucket]
	s.mu.Unlock()
	if done {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil || !exists {
		err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			return err
		}
		s.logger.Info("report bucket created", "bucket", bucket)
	}
	s.mu.Lock()
	s.ensured[bucket] = true
	s.mu.Unlock()
	return nil
}

// Put implements agronomy.ReportStorage.
func (s *S3Storage) Put(ctx context.Context, bucket, key string, data []byte, mimeType string) (agronomy.StoredReport, error) {
	if err := s.ensureBucket(ctx, bucket); err != nil {
		return agronomy.StoredReport{}, err
	}
	info, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      mimeType,
		DisableMultipart: len(data) < 5*1024*1024,
	})
	if err != nil {
		return agronomy.StoredReport{}, err
	}
	return agronomy.StoredReport{
		Bucket:   bucket,
		Key:      key,
		Size:     info.Size,
		MimeType: mimeType,
		ETag:     info.ETag,
	}, nil
}

var _ agronomy.ReportStorage = (*S3Storage)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
