package forecast

import "time"

// Day is one daily forecast record. Nil fields were not reported upstream.
type Day struct {
	Date              string   `json:"date"`
	TempMax           *float64 `json:"tempMax"`
	TempMin           *float64 `json:"tempMin"`
	PrecipitationSum  *float64 `json:"precipitationSum"`
	PrecipitationProb *float64 `json:"precipitationProb"`
	WindSpeed         *float64 `json:"windSpeed"`
	WeatherCode       *int     `json:"weathercode"`
	UVIndex           *float64 `json:"uvIndex,omitempty"`
}

// Current holds the instantaneous conditions returned with the forecast.
type Current struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
	WeatherCode   int     `json:"weathercode"`
	Time          string  `json:"time"`
}

// Forecast is a normalized upstream response.
type Forecast struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timezone  string    `json:"timezone"`
	Current   Current   `json:"current"`
	Days      []Day     `json:"days"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// OutlookRequest selects the location to evaluate.
type OutlookRequest struct {
	Latitude  float64 `form:"lat" json:"latitude"`
	Longitude float64 `form:"lon" json:"longitude"`
}

// OutlookResponse is serialized back to API consumers.
type OutlookResponse struct {
	Current   Current           `json:"current"`
	Outlook   Outlook           `json:"outlook"`
	Actions   []ActionCandidate `json:"smartActions"`
	Source    string            `json:"source"`
	FetchedAt string            `json:"fetchedAt"`
	Cached    bool              `json:"cached"`
}

// Config wires runtime knobs for the forecast domain.
type Config struct {
	CacheTTL time.Duration
	Rule     ActionRule
}
