package forecast

import "strings"

// IrrigationAdvice is the irrigation recommendation for the forecast window.
type IrrigationAdvice string

const (
	IrrigationNotRecommended IrrigationAdvice = "not_recommended"
	IrrigationHotDry         IrrigationAdvice = "recommended_hot_dry"
	IrrigationModerate       IrrigationAdvice = "moderate_if_dry"
	IrrigationUnknown        IrrigationAdvice = "unknown"
)

// Text is the display sentence for the advice.
func (a IrrigationAdvice) Text() string {
	switch a {
	case IrrigationNotRecommended:
		return "Irrigation not recommended - rainfall or wind expected"
	case IrrigationHotDry:
		return "Irrigation recommended - hot & dry conditions"
	case IrrigationModerate:
		return "Moderate irrigation only if soil is dry"
	default:
		return ""
	}
}

// DayOutlook annotates a forecast day with its derived flags.
type DayOutlook struct {
	Day
	Spray     SprayStatus `json:"spray"`
	Badge     string      `json:"badge"`
	Condition string      `json:"condition"`
	HeavyRain bool        `json:"heavyRain"`
	FrostRisk bool        `json:"frostRisk"`
}

// Outlook summarizes risks across the forecast window.
type Outlook struct {
	HeavyRain      bool             `json:"heavyRain"`
	FrostRisk      bool             `json:"frostRisk"`
	SpraySafe      bool             `json:"spraySafe"`
	Irrigation     IrrigationAdvice `json:"irrigation"`
	IrrigationText string           `json:"irrigationText"`
	Days           []DayOutlook     `json:"days"`
}

// Summarize derives the risk flags and irrigation advice for days.
func Summarize(days []Day) Outlook {
	out := Outlook{
		Irrigation: Irrigate(days),
		Days:       make([]DayOutlook, 0, len(days)),
	}
	out.IrrigationText = out.Irrigation.Text()
	for i := range days {
		d := &days[i]
		status := Evaluate(d)
		annotated := DayOutlook{
			Day:       *d,
			Spray:     status,
			Badge:     BadgeFor(status).Text,
			Condition: Condition(d.WeatherCode),
			HeavyRain: IsHeavyRain(d),
			FrostRisk: IsFrostRisk(d),
		}
		out.HeavyRain = out.HeavyRain || annotated.HeavyRain
		out.FrostRisk = out.FrostRisk || annotated.FrostRisk
		out.SpraySafe = out.SpraySafe || status == SprayGreen
		out.Days = append(out.Days, annotated)
	}
	return out
}

// Irrigate picks the first matching rule: a RED day in the near term window,
// then any hot and dry day, then the moderate default.
func Irrigate(days []Day) IrrigationAdvice {
	if len(days) == 0 {
		return IrrigationUnknown
	}
	if anyRedWithin(days, nearTermWindow) {
		return IrrigationNotRecommended
	}
	for i := range days {
		if orZero(days[i].TempMax) >= HighTemp && orZero(days[i].PrecipitationProb) < HotDryMaxRain {
			return IrrigationHotDry
		}
	}
	return IrrigationModerate
}

func anyRedWithin(days []Day, window int) bool {
	if window > len(days) {
		window = len(days)
	}
	for i := 0; i < window; i++ {
		if Evaluate(&days[i]) == SprayRed {
			return true
		}
	}
	return false
}

// ActionCandidate is one entry of the seasonal spray program.
type ActionCandidate struct {
	Name       string `json:"name" yaml:"name"`
	Stage      string `json:"stage" yaml:"stage"`
	TargetPest string `json:"targetPest" yaml:"targetPest"`
	Chemical   string `json:"chemical" yaml:"chemical"`
	Dose       string `json:"dose" yaml:"dose"`
	Notes      string `json:"notes" yaml:"notes"`
}

// ActionRule controls how the smart action list is filtered.
type ActionRule struct {
	RainSensitive []string
	Limit         int
}

// DefaultActionRule hides scab sprays ahead of rain and keeps three actions.
func DefaultActionRule() ActionRule {
	return ActionRule{RainSensitive: []string{"scab"}, Limit: 3}
}

// FilterActions drops rain-sensitive candidates when any of the next three
// days is RED, then truncates to the rule's limit keeping input order.
func FilterActions(candidates []ActionCandidate, days []Day, rule ActionRule) []ActionCandidate {
	limit := rule.Limit
	if limit <= 0 {
		limit = DefaultActionRule().Limit
	}
	redAhead := anyRedWithin(days, nearTermWindow)
	out := make([]ActionCandidate, 0, limit)
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		if redAhead && isRainSensitive(c, rule.RainSensitive) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func isRainSensitive(c ActionCandidate, keywords []string) bool {
	target := strings.ToLower(c.TargetPest)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(target, kw) {
			return true
		}
	}
	return false
}
