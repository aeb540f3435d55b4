package measurerepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

func date(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}

func value(v float64) *float64 { return &v }

func exerciseRepository(t *testing.T, repo agronomy.MeasurementRepository) {
	t.Helper()
	ctx := context.Background()

	for _, s := range []agronomy.Sample{
		{ID: "s1", FieldID: "f1", Family: agronomy.FamilySoil, Source: agronomy.SourceManual, RecordedDate: date("2024-03-01"), Values: map[string]float64{"nitrogen": 300}},
		{ID: "s2", FieldID: "f1", Family: agronomy.FamilySoil, Source: agronomy.SourceManual, RecordedDate: date("2025-03-01"), Values: map[string]float64{"nitrogen": 320, "soil_ph": 6.6}},
		{ID: "s3", FieldID: "f1", Family: agronomy.FamilyWater, Source: agronomy.SourceManual, RecordedDate: date("2025-04-01"), Values: map[string]float64{"tds": 410}},
		{ID: "s4", FieldID: "f2", Family: agronomy.FamilySoil, Source: agronomy.SourceManual, RecordedDate: date("2025-05-01"), Values: map[string]float64{}},
	} {
		require.NoError(t, repo.InsertSample(ctx, s))
	}

	latest, err := repo.LatestSamples(ctx, "f1", agronomy.FamilySoil, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, "s2", latest[0].ID)
	require.Equal(t, map[string]float64{"nitrogen": 320, "soil_ph": 6.6}, latest[0].Values)

	all, err := repo.LatestSamples(ctx, "f1", agronomy.FamilySoil, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "s1", all[1].ID)

	empty, err := repo.LatestSamples(ctx, "f2", agronomy.FamilySoil, 5)
	require.NoError(t, err)
	require.Len(t, empty, 1)
	require.NotNil(t, empty[0].Values)

	// a same-day correction replaces the earlier entry
	require.NoError(t, repo.InsertSample(ctx, agronomy.Sample{ID: "s5", FieldID: "f3", Family: agronomy.FamilySoil, Source: agronomy.SourceManual, RecordedDate: date("2025-05-01"), Values: map[string]float64{"soil_ph": 5.0}}))
	require.NoError(t, repo.InsertSample(ctx, agronomy.Sample{ID: "s6", FieldID: "f3", Family: agronomy.FamilySoil, Source: agronomy.SourceManual, RecordedDate: date("2025-05-01"), Values: map[string]float64{"soil_ph": 6.5}}))
	sameDay, err := repo.LatestSamples(ctx, "f3", agronomy.FamilySoil, 0)
	require.NoError(t, err)
	require.Len(t, sameDay, 2)
	require.Equal(t, "s6", sameDay[0].ID)
	require.Equal(t, "s5", sameDay[1].ID)
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	exerciseRepository(t, repo)

	repo.AddAnalytics(agronomy.FamilySoil,
		agronomy.AnalyticsRow{FieldID: "f1", MetricType: "N", MetricValue: value(280), RecordedDate: date("2025-01-01")},
		agronomy.AnalyticsRow{FieldID: "f1", MetricType: "N", MetricValue: value(290), RecordedDate: date("2025-02-01")},
	)
	rows, err := repo.Analytics(context.Background(), "f1", agronomy.FamilySoil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 290.0, *rows[0].MetricValue)

	repo.AddAnalytics(agronomy.FamilySoil,
		agronomy.AnalyticsRow{FieldID: "f1", MetricType: "N", MetricValue: value(295), RecordedDate: date("2025-02-01")},
	)
	rows, err = repo.Analytics(context.Background(), "f1", agronomy.FamilySoil)
	require.NoError(t, err)
	require.Equal(t, 295.0, *rows[0].MetricValue)

	rows, err = repo.Analytics(context.Background(), "f1", agronomy.FamilyWater)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestSQLiteRepository(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "orchard.db"))
	require.NoError(t, err)
	exerciseRepository(t, repo)

	ctx := context.Background()
	require.NoError(t, repo.AddAnalytics(ctx, agronomy.FamilySoil,
		agronomy.AnalyticsRow{FieldID: "f1", MetricType: "P", MetricValue: value(25), RecordedDate: date("2025-01-01")},
		agronomy.AnalyticsRow{FieldID: "f1", MetricType: "K", MetricValue: nil, RecordedDate: date("2025-02-01")},
	))
	rows, err := repo.Analytics(ctx, "f1", agronomy.FamilySoil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "K", rows[0].MetricType)
	require.Nil(t, rows[0].MetricValue)
	require.Equal(t, 25.0, *rows[1].MetricValue)
}
