package measurerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

type memoryRow struct {
	family agronomy.Family
	row    agronomy.AnalyticsRow
}

// MemoryRepository is an in-memory agronomy.MeasurementRepository used for tests/dev.
type MemoryRepository struct {
	mu        sync.RWMutex
	samples   []agronomy.Sample
	analytics []memoryRow
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// LatestSamples implements agronomy.MeasurementRepository.
func (r *MemoryRepository) LatestSamples(_ context.Context, fieldID string, family agronomy.Family, limit int) ([]agronomy.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]agronomy.Sample, 0)
	// newest insert first so same-day samples keep the latest entry on top
	for i := len(r.samples) - 1; i >= 0; i-- {
		if s := r.samples[i]; s.FieldID == fieldID && s.Family == family {
			out = append(out, copySample(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedDate.After(out[j].RecordedDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Analytics implements agronomy.MeasurementRepository.
func (r *MemoryRepository) Analytics(_ context.Context, fieldID string, family agronomy.Family) ([]agronomy.AnalyticsRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]agronomy.AnalyticsRow, 0)
	for i := len(r.analytics) - 1; i >= 0; i-- {
		if a := r.analytics[i]; a.row.FieldID == fieldID && a.family == family {
			out = append(out, a.row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedDate.After(out[j].RecordedDate)
	})
	return out, nil
}

// InsertSample implements agronomy.MeasurementRepository. Reads sort by date,
// then by insertion order newest first.
func (r *MemoryRepository) InsertSample(_ context.Context, sample agronomy.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, copySample(sample))
	return nil
}

// AddAnalytics seeds analytics rows for a family.
func (r *MemoryRepository) AddAnalytics(family agronomy.Family, rows ...agronomy.AnalyticsRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		if row.MetricValue != nil {
			v := *row.MetricValue
			row.MetricValue = &v
		}
		r.analytics = append(r.analytics, memoryRow{family: family, row: row})
	}
}

func copySample(s agronomy.Sample) agronomy.Sample {
	values := make(map[string]float64, len(s.Values))
	for k, v := range s.Values {
		values[k] = v
	}
	s.Values = values
	return s
}

var _ agronomy.MeasurementRepository = (*MemoryRepository)(nil)
