package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.ObserveClassification("soil", "amber")
	r.ObserveClassification("soil", "amber")
	r.ObserveTransition("consultation", "IN_PROGRESS")
	r.ObserveRejection("issue_rx", "")
	r.ObserveWeatherFetch("cache_hit")

	require.Equal(t, 2.0, testutil.ToFloat64(r.classifications.WithLabelValues("soil", "amber")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.transitions.WithLabelValues("consultation", "IN_PROGRESS")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.rejections.WithLabelValues("issue_rx", "unknown")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.weatherFetches.WithLabelValues("cache_hit")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveClassification("soil", "green")
	r.ObserveTransition("prescription", "APPLIED")
	r.ObserveRejection("execute_rx", "conflict")
	r.ObserveWeatherFetch("failed")
	require.NotNil(t, r.Handler())
}

func TestHandlerExposesCounters(t *testing.T) {
	r := NewRecorder()
	r.ObserveWeatherFetch("fetched")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `orchard_weather_fetch_total{result="fetched"} 1`)
}
