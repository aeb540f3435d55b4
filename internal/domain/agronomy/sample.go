package agronomy

import (
	"sort"
	"strings"
	"time"
)

// Source tells where a sample came from.
type Source string

const (
	SourceManual    Source = "manual"
	SourceAnalytics Source = "analytics"
)

// Sample is one dated set of lab readings for a field.
type Sample struct {
	ID           string             `json:"id"`
	FieldID      string             `json:"fieldId"`
	UserID       string             `json:"userId,omitempty"`
	Family       Family             `json:"family"`
	Source       Source             `json:"source"`
	RecordedDate time.Time          `json:"recordedDate"`
	Values       map[string]float64 `json:"values"`
	ReportKey    string             `json:"reportKey,omitempty"`
}

// Value returns the reading for key, or nil when it was not measured.
func (s *Sample) Value(key string) *float64 {
	if s == nil {
		return nil
	}
	v, ok := s.Values[key]
	if !ok {
		return nil
	}
	return &v
}

// AnalyticsRow is one metric emitted by the field analytics pipeline.
type AnalyticsRow struct {
	FieldID      string    `json:"fieldId"`
	MetricType   string    `json:"metricType"`
	MetricValue  *float64  `json:"metricValue"`
	RecordedDate time.Time `json:"recordedDate"`
}

// TiePreference decides which source wins when manual and analytics samples share a date.
type TiePreference string

const (
	TiePrefersManual    TiePreference = "manual"
	TiePrefersAnalytics TiePreference = "analytics"
)

// ParseTiePreference falls back to manual for anything it does not recognise.
func ParseTiePreference(value string) TiePreference {
	if strings.EqualFold(strings.TrimSpace(value), string(TiePrefersAnalytics)) {
		return TiePrefersAnalytics
	}
	return TiePrefersManual
}

// LatestFromAnalytics folds analytics rows into one sample holding, for every
// metric the table knows, the most recent non-null value. The sample is dated
// with the newest row that contributed. Returns nil when nothing resolves.
func LatestFromAnalytics(rows []AnalyticsRow, family Family, table *ReferenceTable) *Sample {
	latest := latestByParameter(rows, family, table, true)
	if len(latest) == 0 {
		return nil
	}
	out := &Sample{
		Family: family,
		Source: SourceAnalytics,
		Values: make(map[string]float64, len(latest)),
	}
	for key, row := range latest {
		out.Values[key] = *row.MetricValue
		if out.FieldID == "" {
			out.FieldID = row.FieldID
		}
		if row.RecordedDate.After(out.RecordedDate) {
			out.RecordedDate = row.RecordedDate
		}
	}
	return out
}

// latestByParameter keys rows by canonical parameter key. With skipNull the
// newest non-null value wins; otherwise the newest row wins even when null.
func latestByParameter(rows []AnalyticsRow, family Family, table *ReferenceTable, skipNull bool) map[string]AnalyticsRow {
	latest := make(map[string]AnalyticsRow)
	for _, row := range rows {
		if skipNull && row.MetricValue == nil {
			continue
		}
		param, ok := table.Resolve(family, row.MetricType)
		if !ok {
			continue
		}
		prev, seen := latest[param.Key]
		if !seen || row.RecordedDate.After(prev.RecordedDate) {
			latest[param.Key] = row
		}
	}
	return latest
}

// SelectLatest picks the newer of the two candidates. When both carry the
// same date the tie preference decides. Both nil means no test on record.
func SelectLatest(manual, analytics *Sample, tie TiePreference) *Sample {
	switch {
	case manual == nil:
		return analytics
	case analytics == nil:
		return manual
	case analytics.RecordedDate.After(manual.RecordedDate):
		return analytics
	case manual.RecordedDate.After(analytics.RecordedDate):
		return manual
	case tie == TiePrefersAnalytics:
		return analytics
	default:
		return manual
	}
}

// SortSamplesDesc orders samples newest first; equal dates keep their input order.
func SortSamplesDesc(samples []Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].RecordedDate.After(samples[j].RecordedDate)
	})
}
