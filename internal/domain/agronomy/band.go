package agronomy

import "math"

// DefaultMargin is the fraction of the green band width that forms the amber zone on each side.
const DefaultMargin = 0.15

// Status is the RAG classification of a single measured value.
type Status string

const (
	StatusGreen Status = "green"
	StatusAmber Status = "amber"
	StatusRed   Status = "red"
	StatusGray  Status = "gray"
)

// Rank orders statuses by severity. Gray sorts below green because it carries no reading.
func (s Status) Rank() int {
	switch s {
	case StatusGreen:
		return 1
	case StatusAmber:
		return 2
	case StatusRed:
		return 3
	default:
		return 0
	}
}

// Worse returns whichever status is more severe.
func Worse(a, b Status) Status {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Direction tells on which side of the band a value falls.
type Direction string

const (
	DirectionNone       Direction = ""
	DirectionDeficiency Direction = "deficiency"
	DirectionExcess     Direction = "excess"
)

// Band is a closed optimal interval [Min, Max].
type Band struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Width is never negative; an inverted band is treated as zero width.
func (b Band) Width() float64 {
	if b.Max < b.Min {
		return 0
	}
	return b.Max - b.Min
}

// Contains reports min <= v <= max.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Direction reports deficiency below Min, excess above Max.
func (b Band) Direction(v float64) Direction {
	switch {
	case v < b.Min:
		return DirectionDeficiency
	case v > b.Max:
		return DirectionExcess
	default:
		return DirectionNone
	}
}

// Classify maps an optional value onto the band. A nil value is gray.
func Classify(value *float64, band Band, margin float64) Status {
	if value == nil {
		return StatusGray
	}
	return ClassifyValue(*value, band, margin)
}

// ClassifyValue is Classify for a present reading. NaN is treated as absent.
func ClassifyValue(v float64, band Band, margin float64) Status {
	if math.IsNaN(v) {
		return StatusGray
	}
	if band.Contains(v) {
		return StatusGreen
	}
	if math.IsNaN(margin) || margin < 0 {
		margin = 0
	}
	// zero width band yields a zero amber zone
	slack := band.Width() * margin
	if v < band.Min && v >= band.Min-slack {
		return StatusAmber
	}
	if v > band.Max && v <= band.Max+slack {
		return StatusAmber
	}
	return StatusRed
}
