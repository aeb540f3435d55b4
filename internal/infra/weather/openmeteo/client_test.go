package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "latitude": 34.08,
  "longitude": 74.8,
  "timezone": "Asia/Kolkata",
  "current_weather": {"temperature": 18.4, "windspeed": 7.2, "winddirection": 240, "weathercode": 2, "time": "2025-04-01T10:00"},
  "daily": {
    "time": ["2025-04-01", "2025-04-02", "2025-04-03"],
    "temperature_2m_max": [21.5, 23.0, null],
    "temperature_2m_min": [6.1, 1.8, 4.0],
    "precipitation_sum": [0, 12.4, 3.1],
    "precipitation_probability_max": [10, 85, 45],
    "windspeed_10m_max": [8.2, 19.0, 11.0],
    "weathercode": [2, 63, 3],
    "uv_index_max": [5.1, 2.0]
  }
}`

func TestClientFetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"latitude":        r.URL.Query().Get("latitude"),
			"daily":           r.URL.Query().Get("daily"),
			"current_weather": r.URL.Query().Get("current_weather"),
			"forecast_days":   r.URL.Query().Get("forecast_days"),
			"timezone":        r.URL.Query().Get("timezone"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0, time.Second)
	client.now = func() time.Time { return time.Date(2025, 4, 1, 4, 30, 0, 0, time.UTC) }

	fc, err := client.Fetch(context.Background(), 34.0837, 74.7973)
	require.NoError(t, err)

	require.Equal(t, "34.0837", gotQuery["latitude"])
	require.Equal(t, dailyFields, gotQuery["daily"])
	require.Equal(t, "true", gotQuery["current_weather"])
	require.Equal(t, "7", gotQuery["forecast_days"])
	require.Equal(t, "auto", gotQuery["timezone"])

	require.Equal(t, 18.4, fc.Current.Temperature)
	require.Equal(t, "Asia/Kolkata", fc.Timezone)
	require.Len(t, fc.Days, 3)
	require.Equal(t, 85.0, *fc.Days[1].PrecipitationProb)
	require.Equal(t, 63, *fc.Days[1].WeatherCode)
	require.Nil(t, fc.Days[2].TempMax)
	require.Nil(t, fc.Days[2].UVIndex)
	require.Equal(t, srv.URL, fc.Source)
	require.Equal(t, time.Date(2025, 4, 1, 4, 30, 0, 0, time.UTC), fc.FetchedAt)
}

func TestClientFetchMissingSections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"latitude": 1, "longitude": 2, "daily": {"time": []}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 7, time.Second).Fetch(context.Background(), 1, 2)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestClientFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":true,"reason":"Latitude must be in range"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 7, time.Second).Fetch(context.Background(), 1, 2)
	require.ErrorContains(t, err, "status=400")
}

func TestNormalizeShortArrays(t *testing.T) {
	tempMax := 30.0
	fc, err := normalize(apiResponse{
		Current: &currentWeather{},
		Daily: &daily{
			Time:    []string{"2025-04-01", "2025-04-02"},
			TempMax: []*float64{&tempMax},
		},
	})
	require.NoError(t, err)
	require.Len(t, fc.Days, 2)
	require.Equal(t, 30.0, *fc.Days[0].TempMax)
	require.Nil(t, fc.Days[1].TempMax)
	require.Nil(t, fc.Days[1].WindSpeed)
}
