package forecast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/orchardcare/orchard-advisor/pkg/errors"
)

func TestServiceOutlookFetchesAndCaches(t *testing.T) {
	source := &stubSource{forecast: Forecast{
		Current: Current{Temperature: 21},
		Days:    []Day{dayWith(80, 5, 20, 10), dayWith(10, 5, 20, 10)},
		Source:  "open-meteo",
	}}
	cache := newStubCache()
	catalog := &stubCatalog{items: []ActionCandidate{
		{Name: "Captan", TargetPest: "apple scab"},
		{Name: "Urea"},
	}}
	metrics := &stubMetrics{}
	svc := newTestService(source, cache, catalog, metrics)

	resp, err := svc.Outlook(context.Background(), OutlookRequest{Latitude: 34.0837, Longitude: 74.7973})
	require.NoError(t, err)
	require.False(t, resp.Cached)
	require.Equal(t, 21.0, resp.Current.Temperature)
	require.Equal(t, IrrigationNotRecommended, resp.Outlook.Irrigation)
	require.Equal(t, []string{"Urea"}, names(resp.Actions))
	require.Equal(t, "2025-04-01T06:00:00Z", resp.FetchedAt)
	require.Equal(t, 1, source.calls)
	require.Contains(t, cache.items, "forecast:34.08:74.80")

	resp, err = svc.Outlook(context.Background(), OutlookRequest{Latitude: 34.0841, Longitude: 74.7968})
	require.NoError(t, err)
	require.True(t, resp.Cached)
	require.Equal(t, 1, source.calls)
	require.Equal(t, []string{"fetched", "cache_hit"}, metrics.results)
}

func TestServiceOutlookInvalidCoordinates(t *testing.T) {
	svc := newTestService(&stubSource{}, nil, nil, nil)

	_, err := svc.Outlook(context.Background(), OutlookRequest{Latitude: 91})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Outlook(context.Background(), OutlookRequest{Longitude: -181})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServiceOutlookSourceFailure(t *testing.T) {
	metrics := &stubMetrics{}
	svc := newTestService(&stubSource{err: errors.New("missing daily")}, nil, nil, metrics)

	_, err := svc.Outlook(context.Background(), OutlookRequest{Latitude: 10, Longitude: 10})
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeather))
	require.Equal(t, []string{"failed"}, metrics.results)
}

func TestServiceOutlookSurvivesCatalogFailure(t *testing.T) {
	source := &stubSource{forecast: Forecast{Days: []Day{dayWith(10, 5, 20, 10)}}}
	svc := newTestService(source, nil, &stubCatalog{err: errors.New("bad yaml")}, nil)

	resp, err := svc.Outlook(context.Background(), OutlookRequest{Latitude: 10, Longitude: 10})
	require.NoError(t, err)
	require.Empty(t, resp.Actions)
	require.True(t, resp.Outlook.SpraySafe)
}

func newTestService(source WeatherSource, cache Cache, catalog ActionCatalog, metrics Metrics) *service {
	return &service{
		cfg:     Config{CacheTTL: time.Hour, Rule: DefaultActionRule()},
		source:  source,
		cache:   cache,
		catalog: catalog,
		metrics: metrics,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)
		},
	}
}

type stubSource struct {
	forecast Forecast
	err      error
	calls    int
}

func (s *stubSource) Fetch(context.Context, float64, float64) (Forecast, error) {
	s.calls++
	return s.forecast, s.err
}

type stubCache struct {
	items map[string]Forecast
}

func newStubCache() *stubCache {
	return &stubCache{items: map[string]Forecast{}}
}

func (c *stubCache) Get(_ context.Context, key string) (Forecast, bool, error) {
	fc, ok := c.items[key]
	return fc, ok, nil
}

func (c *stubCache) Save(_ context.Context, key string, fc Forecast, _ time.Duration) error {
	c.items[key] = fc
	return nil
}

type stubCatalog struct {
	items []ActionCandidate
	err   error
}

func (c *stubCatalog) Candidates(context.Context) ([]ActionCandidate, error) {
	return c.items, c.err
}

type stubMetrics struct {
	results []string
}

func (m *stubMetrics) ObserveWeatherFetch(result string) {
	m.results = append(m.results, result)
}
