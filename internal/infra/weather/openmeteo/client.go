package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	dailyFields    = "temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_probability_max,windspeed_10m_max,weathercode,uv_index_max"
	defaultDays    = 7
)

// ErrMalformed is returned when the response lacks current_weather or daily.
var ErrMalformed = errors.New("openmeteo: invalid weather data")

// Client fetches daily forecasts from Open-Meteo.
type Client struct {
	baseURL    string
	days       int
	httpClient *http.Client
	now        func() time.Time
}

// NewClient builds an API client. Zero values fall back to the public endpoint, 7 days and 10s.
func NewClient(baseURL string, days int, timeout time.Duration) *Client {
	u := strings.TrimSpace(baseURL)
	if u == "" {
		u = defaultBaseURL
	}
	if days <= 0 || days > 16 {
		days = defaultDays
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(u, "/"),
		days:       days,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Fetch implements forecast.WeatherSource.
func (c *Client) Fetch(ctx context.Context, latitude, longitude float64) (forecast.Forecast, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', 4, 64))
	q.Set("current_weather", "true")
	q.Set("daily", dailyFields)
	q.Set("forecast_days", strconv.Itoa(c.days))
	q.Set("timezone", "auto")
	endpoint := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return forecast.Forecast{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return forecast.Forecast{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return forecast.Forecast{}, fmt.Errorf("weather request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return forecast.Forecast{}, fmt.Errorf("decode weather response: %w", err)
	}

	fc, err := normalize(raw)
	if err != nil {
		return forecast.Forecast{}, err
	}
	fc.Source = c.baseURL
	fc.FetchedAt = c.now().UTC()
	return fc, nil
}

type apiResponse struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Timezone  string          `json:"timezone"`
	Current   *currentWeather `json:"current_weather"`
	Daily     *daily          `json:"daily"`
}

type currentWeather struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WindDirection float64 `json:"winddirection"`
	WeatherCode   int     `json:"weathercode"`
	Time          string  `json:"time"`
}

type daily struct {
	Time              []string   `json:"time"`
	TempMax           []*float64 `json:"temperature_2m_max"`
	TempMin           []*float64 `json:"temperature_2m_min"`
	PrecipitationSum  []*float64 `json:"precipitation_sum"`
	PrecipitationProb []*float64 `json:"precipitation_probability_max"`
	WindSpeed         []*float64 `json:"windspeed_10m_max"`
	WeatherCode       []*int     `json:"weathercode"`
	UVIndex           []*float64 `json:"uv_index_max"`
}

func normalize(raw apiResponse) (forecast.Forecast, error) {
	if raw.Current == nil || raw.Daily == nil {
		return forecast.Forecast{}, ErrMalformed
	}
	d := raw.Daily
	days := make([]forecast.Day, 0, len(d.Time))
	for i, date := range d.Time {
		days = append(days, forecast.Day{
			Date:              date,
			TempMax:           at(d.TempMax, i),
			TempMin:           at(d.TempMin, i),
			PrecipitationSum:  at(d.PrecipitationSum, i),
			PrecipitationProb: at(d.PrecipitationProb, i),
			WindSpeed:         at(d.WindSpeed, i),
			WeatherCode:       at(d.WeatherCode, i),
			UVIndex:           at(d.UVIndex, i),
		})
	}
	return forecast.Forecast{
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Timezone:  raw.Timezone,
		Current: forecast.Current{
			Temperature:   raw.Current.Temperature,
			WindSpeed:     raw.Current.WindSpeed,
			WindDirection: raw.Current.WindDirection,
			WeatherCode:   raw.Current.WeatherCode,
			Time:          raw.Current.Time,
		},
		Days: days,
	}, nil
}

// at tolerates short arrays; a missing index reads as absent.
func at[T any](values []*T, i int) *T {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

var _ forecast.WeatherSource = (*Client)(nil)
