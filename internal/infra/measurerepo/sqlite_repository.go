package measurerepo

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

type labSampleModel struct {
	ID           string             `gorm:"primaryKey"`
	FieldID      string             `gorm:"index:idx_lab_samples_field_family"`
	UserID       string
	Family       string             `gorm:"index:idx_lab_samples_field_family"`
	Source       string
	RecordedDate time.Time          `gorm:"index"`
	Readings     map[string]float64 `gorm:"serializer:json"`
	ReportKey    string
	CreatedAt    time.Time
}

func (labSampleModel) TableName() string { return "lab_samples" }

type analyticsModel struct {
	ID           uint   `gorm:"primaryKey"`
	FieldID      string `gorm:"index:idx_field_analytics_field_family"`
	Family       string `gorm:"index:idx_field_analytics_field_family"`
	MetricType   string
	MetricValue  *float64
	RecordedDate time.Time
}

func (analyticsModel) TableName() string { return "field_analytics" }

// SQLiteRepository is a CGO-free local store for single-node deployments.
type SQLiteRepository struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at path and migrates the tables.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewSQLiteRepository(db)
}

// NewSQLiteRepository wraps an existing gorm handle and migrates the tables.
func NewSQLiteRepository(db *gorm.DB) (*SQLiteRepository, error) {
	if err := db.AutoMigrate(&labSampleModel{}, &analyticsModel{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// LatestSamples implements agronomy.MeasurementRepository.
func (r *SQLiteRepository) LatestSamples(ctx context.Context, fieldID string, family agronomy.Family, limit int) ([]agronomy.Sample, error) {
	q := r.db.WithContext(ctx).
		Where("field_id = ? AND family = ?", fieldID, string(family)).
		Order("recorded_date DESC").
		Order("created_at DESC").
		Order("rowid DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []labSampleModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]agronomy.Sample, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// Analytics implements agronomy.MeasurementRepository.
func (r *SQLiteRepository) Analytics(ctx context.Context, fieldID string, family agronomy.Family) ([]agronomy.AnalyticsRow, error) {
	var models []analyticsModel
	err := r.db.WithContext(ctx).
		Where("field_id = ? AND family = ?", fieldID, string(family)).
		Order("recorded_date DESC").
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]agronomy.AnalyticsRow, 0, len(models))
	for _, m := range models {
		out = append(out, agronomy.AnalyticsRow{
			FieldID:      m.FieldID,
			MetricType:   m.MetricType,
			MetricValue:  m.MetricValue,
			RecordedDate: m.RecordedDate.UTC(),
		})
	}
	return out, nil
}

// InsertSample implements agronomy.MeasurementRepository.
func (r *SQLiteRepository) InsertSample(ctx context.Context, sample agronomy.Sample) error {
	model := labSampleModel{
		ID:           sample.ID,
		FieldID:      sample.FieldID,
		UserID:       sample.UserID,
		Family:       string(sample.Family),
		Source:       string(sample.Source),
		RecordedDate: sample.RecordedDate.UTC(),
		Readings:     sample.Values,
		ReportKey:    sample.ReportKey,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// AddAnalytics stores analytics rows. Used by the CLI import and tests.
func (r *SQLiteRepository) AddAnalytics(ctx context.Context, family agronomy.Family, rows ...agronomy.AnalyticsRow) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]analyticsModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, analyticsModel{
			FieldID:      row.FieldID,
			Family:       string(family),
			MetricType:   row.MetricType,
			MetricValue:  row.MetricValue,
			RecordedDate: row.RecordedDate.UTC(),
		})
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (m labSampleModel) toDomain() agronomy.Sample {
	values := m.Readings
	if values == nil {
		values = map[string]float64{}
	}
	return agronomy.Sample{
		ID:           m.ID,
		FieldID:      m.FieldID,
		UserID:       m.UserID,
		Family:       agronomy.Family(m.Family),
		Source:       agronomy.Source(m.Source),
		RecordedDate: m.RecordedDate.UTC(),
		Values:       values,
		ReportKey:    m.ReportKey,
	}
}

var _ agronomy.MeasurementRepository = (*SQLiteRepository)(nil)
