package labreports

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

// MemoryStorage keeps reports in memory. Useful for tests and local dev.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

// Put implements agronomy.ReportStorage.
func (s *MemoryStorage) Put(_ context.Context, bucket, key string, data []byte, mimeType string) (agronomy.StoredReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := md5.Sum(data)
	s.blobs[bucket+"/"+key] = append([]byte(nil), data...)
	return agronomy.StoredReport{
		Bucket:   bucket,
		Key:      key,
		Size:     int64(len(data)),
		MimeType: mimeType,
		ETag:     hex.EncodeToString(hash[:]),
	}, nil
}

// Object returns a stored report by bucket and key.
func (s *MemoryStorage) Object(bucket, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[bucket+"/"+key]
	return data, ok
}

var _ agronomy.ReportStorage = (*MemoryStorage)(nil)
