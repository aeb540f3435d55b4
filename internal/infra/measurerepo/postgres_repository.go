package measurerepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

// PostgresRepository reads lab samples and analytics rows from Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// LatestSamples implements agronomy.MeasurementRepository.
func (r *PostgresRepository) LatestSamples(ctx context.Context, fieldID string, family agronomy.Family, limit int) ([]agronomy.Sample, error) {
	query := `
		SELECT id, field_id, user_id, family, source, recorded_date, readings, report_key
		FROM lab_samples
		WHERE field_id = $1 AND family = $2
		ORDER BY recorded_date DESC, created_at DESC`
	args := []any{fieldID, string(family)}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]agronomy.Sample, 0)
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, rows.Err()
}

// Analytics implements agronomy.MeasurementRepository.
func (r *PostgresRepository) Analytics(ctx context.Context, fieldID string, family agronomy.Family) ([]agronomy.AnalyticsRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT field_id, metric_type, metric_value, recorded_date
		FROM field_analytics
		WHERE field_id = $1 AND family = $2
		ORDER BY recorded_date DESC, id DESC
	`, fieldID, string(family))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]agronomy.AnalyticsRow, 0)
	for rows.Next() {
		var (
			row      agronomy.AnalyticsRow
			recorded time.Time
		)
		if err := rows.Scan(&row.FieldID, &row.MetricType, &row.MetricValue, &recorded); err != nil {
			return nil, err
		}
		row.RecordedDate = recorded.UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}

// InsertSample implements agronomy.MeasurementRepository.
func (r *PostgresRepository) InsertSample(ctx context.Context, sample agronomy.Sample) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lab_samples (id, field_id, user_id, family, source, recorded_date, readings, report_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sample.ID, sample.FieldID, sample.UserID, string(sample.Family), string(sample.Source),
		sample.RecordedDate, sample.Values, nullIfEmpty(sample.ReportKey))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSample(row rowScanner) (agronomy.Sample, error) {
	var (
		s         agronomy.Sample
		family    string
		source    string
		recorded  time.Time
		reportKey *string
	)
	if err := row.Scan(&s.ID, &s.FieldID, &s.UserID, &family, &source, &recorded, &s.Values, &reportKey); err != nil {
		return agronomy.Sample{}, err
	}
	s.Family = agronomy.Family(family)
	s.Source = agronomy.Source(source)
	s.RecordedDate = recorded.UTC()
	if reportKey != nil {
		s.ReportKey = *reportKey
	}
	if s.Values == nil {
		s.Values = map[string]float64{}
	}
	return s, nil
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

var _ agronomy.MeasurementRepository = (*PostgresRepository)(nil)
