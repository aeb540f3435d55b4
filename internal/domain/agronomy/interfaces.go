package agronomy

import "context"

// MeasurementRepository persists lab samples and exposes analytics rows.
type MeasurementRepository interface {
	// LatestSamples returns up to limit samples newest first. limit <= 0 means all.
	LatestSamples(ctx context.Context, fieldID string, family Family, limit int) ([]Sample, error)
	Analytics(ctx context.Context, fieldID string, family Family) ([]AnalyticsRow, error)
	InsertSample(ctx context.Context, sample Sample) error
}

// ReportStorage abstracts the blob store holding uploaded lab reports.
type ReportStorage interface {
	Put(ctx context.Context, bucket, key string, data []byte, mimeType string) (StoredReport, error)
}

// StoredReport captures persisted blob metadata.
type StoredReport struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	ETag     string `json:"etag,omitempty"`
}

// HistoryExporter renders a sample history into a downloadable document.
type HistoryExporter interface {
	Export(family Family, params []Parameter, samples []Sample) ([]byte, error)
	ContentType() string
	Extension() string
}

// Metrics receives classification counts. Implementations must be safe for concurrent use.
type Metrics interface {
	ObserveClassification(family, status string)
}
