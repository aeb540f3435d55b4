package agronomy

// Finding is one parameter outside its green band.
type Finding struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Summary is the binary in/out view of a single sample.
type Summary struct {
	Lacking []Finding `json:"lacking"`
	Excess  []Finding `json:"excess"`
}

// Classification is the banded status of one parameter of a sample.
type Classification struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Unit      string    `json:"unit"`
	Value     *float64  `json:"value"`
	Green     Band      `json:"green"`
	Status    Status    `json:"status"`
	Direction Direction `json:"direction,omitempty"`
	Advisory  string    `json:"advisory"`
}

// Alert is one entry of the deficiency view computed from analytics history.
type Alert struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Status   Status  `json:"status"`
	Advisory string  `json:"advisory"`
}

// Summarize splits the sample's out-of-band readings into lacking and excess.
// Amber is not distinguished here. Keys the table does not know are skipped.
func Summarize(sample *Sample, table *ReferenceTable) Summary {
	summary := Summary{Lacking: []Finding{}, Excess: []Finding{}}
	if sample == nil {
		return summary
	}
	for _, param := range table.Parameters(sample.Family) {
		v := sample.Value(param.Key)
		if v == nil {
			continue
		}
		finding := Finding{Key: param.Key, Label: param.Label, Value: *v, Unit: param.Unit}
		switch param.Green.Direction(*v) {
		case DirectionDeficiency:
			summary.Lacking = append(summary.Lacking, finding)
		case DirectionExcess:
			summary.Excess = append(summary.Excess, finding)
		}
	}
	return summary
}

// ClassifySample classifies every parameter of the sample's family in table
// order. Parameters without a reading come back gray.
func ClassifySample(sample *Sample, table *ReferenceTable, margin float64) []Classification {
	if sample == nil {
		return nil
	}
	params := table.Parameters(sample.Family)
	out := make([]Classification, 0, len(params))
	for _, param := range params {
		v := sample.Value(param.Key)
		c := Classification{
			Key:    param.Key,
			Label:  param.Label,
			Unit:   param.Unit,
			Value:  v,
			Green:  param.Green,
			Status: Classify(v, param.Green, margin),
		}
		if v != nil && c.Status != StatusGreen && c.Status != StatusGray {
			c.Direction = param.Green.Direction(*v)
			c.Advisory = AdvisoryText(param.Key, c.Direction)
		}
		out = append(out, c)
	}
	return out
}

// DeficiencyAlerts classifies the latest value of every metric found in the
// analytics history. Green entries are kept so callers can show the full set.
// A metric whose newest row is null is left out.
func DeficiencyAlerts(rows []AnalyticsRow, family Family, table *ReferenceTable, margin float64) []Alert {
	latest := latestByParameter(rows, family, table, false)
	alerts := make([]Alert, 0, len(latest))
	for _, param := range table.Parameters(family) {
		row, ok := latest[param.Key]
		if !ok || row.MetricValue == nil {
			continue
		}
		v := *row.MetricValue
		status := ClassifyValue(v, param.Green, margin)
		alert := Alert{Key: param.Key, Label: param.Label, Value: v, Status: status}
		if status == StatusAmber || status == StatusRed {
			alert.Advisory = AdvisoryText(param.Key, param.Green.Direction(v))
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

// Indicator collapses a summary into the field's traffic light.
// hasTest=false means no sample with readings exists and yields gray.
func Indicator(summary Summary, hasTest bool) Status {
	switch {
	case !hasTest:
		return StatusGray
	case len(summary.Excess) > 0:
		return StatusRed
	case len(summary.Lacking) > 0:
		return StatusAmber
	default:
		return StatusGreen
	}
}

// Measured reports whether at least one classification carries a reading.
func Measured(items []Classification) bool {
	for _, c := range items {
		if c.Status != StatusGray {
			return true
		}
	}
	return false
}

// WorstStatus returns the most severe status among the classifications.
func WorstStatus(items []Classification) Status {
	worst := StatusGray
	for _, c := range items {
		worst = Worse(worst, c.Status)
	}
	return worst
}
