package forecast

// SprayStatus is the spray-window traffic light for a day.
type SprayStatus string

const (
	SprayRed     SprayStatus = "RED"
	SprayAmber   SprayStatus = "AMBER"
	SprayGreen   SprayStatus = "GREEN"
	SprayUnknown SprayStatus = "UNKNOWN"
)

// Spray and risk thresholds.
const (
	HeavyRainProb  = 70.0
	MarginalRain   = 40.0
	WindThreshold  = 15.0 // km/h
	HighTemp       = 32.0 // °C
	FrostTemp      = 2.0
	HotDryMaxRain  = 30.0
	nearTermWindow = 3
)

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// tempMin defaults high so a missing reading never signals frost.
func tempMinOrDefault(d *Day) float64 {
	if d.TempMin == nil {
		return 100
	}
	return *d.TempMin
}

// Evaluate classifies a day for spraying. A nil day is UNKNOWN; missing
// readings inside a day count as 0.
func Evaluate(d *Day) SprayStatus {
	if d == nil {
		return SprayUnknown
	}
	rain := orZero(d.PrecipitationProb)
	wind := orZero(d.WindSpeed)
	tempMax := orZero(d.TempMax)

	if rain >= HeavyRainProb || wind > WindThreshold {
		return SprayRed
	}
	if tempMax >= HighTemp || rain >= MarginalRain {
		return SprayAmber
	}
	return SprayGreen
}

// IsSpraySafeDay reports whether the day is GREEN.
func IsSpraySafeDay(d *Day) bool {
	return Evaluate(d) == SprayGreen
}

// Badge is the user facing label of a spray status.
type Badge struct {
	Status SprayStatus `json:"status"`
	Text   string      `json:"text"`
}

// BadgeFor maps a status to its label.
func BadgeFor(status SprayStatus) Badge {
	switch status {
	case SprayRed:
		return Badge{Status: status, Text: "Do NOT Spray"}
	case SprayAmber:
		return Badge{Status: status, Text: "Spray with Caution"}
	case SprayGreen:
		return Badge{Status: status, Text: "Safe to Spray"}
	default:
		return Badge{Status: SprayUnknown, Text: "Unknown"}
	}
}

// IsHeavyRain reports precipitation probability at or above 70%.
func IsHeavyRain(d *Day) bool {
	return d != nil && orZero(d.PrecipitationProb) >= HeavyRainProb
}

// IsFrostRisk reports a minimum temperature at or below 2 °C.
func IsFrostRisk(d *Day) bool {
	return d != nil && tempMinOrDefault(d) <= FrostTemp
}

// Condition is a coarse sky category derived from the WMO weather code.
func Condition(code *int) string {
	if code == nil {
		return "unknown"
	}
	switch *code {
	case 0:
		return "clear"
	case 1, 2:
		return "partly_cloudy"
	case 3:
		return "overcast"
	case 45, 48:
		return "fog"
	case 51, 53, 55, 61, 63, 65:
		return "rain"
	case 71, 73, 75:
		return "snow"
	case 95, 96, 99:
		return "thunderstorm"
	default:
		return "other"
	}
}
