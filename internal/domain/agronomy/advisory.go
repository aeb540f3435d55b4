package agronomy

type advisoryKey struct {
	key       string
	direction Direction
}

var advisoryTexts = map[advisoryKey]string{
	{"soil_ph", DirectionDeficiency}:    "Apply lime to raise pH or sulfur to lower pH as per recommendation.",
	{"nitrogen", DirectionDeficiency}:   "Apply recommended dose of nitrogen fertilizer.",
	{"phosphorus", DirectionDeficiency}: "Apply phosphorus fertilizer as per soil test.",
	{"potassium", DirectionDeficiency}:  "Apply potassium fertilizer as per soil test.",

	{"soil_ph", DirectionExcess}:    "Reduce lime application or use acidifying amendments.",
	{"nitrogen", DirectionExcess}:   "Reduce nitrogen application, avoid over-fertilization.",
	{"phosphorus", DirectionExcess}: "Reduce phosphorus application, avoid over-fertilization.",
	{"potassium", DirectionExcess}:  "Reduce potassium application, avoid over-fertilization.",
}

// AdvisoryText returns the static advice for a parameter that is out of band.
// Parameters without curated text return "".
func AdvisoryText(key string, direction Direction) string {
	if direction == DirectionNone {
		return ""
	}
	return advisoryTexts[advisoryKey{key: key, direction: direction}]
}
