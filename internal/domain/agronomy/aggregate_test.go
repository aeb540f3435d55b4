package agronomy

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestSummarizeSplitsLackingAndExcess(t *testing.T) {
	table := DefaultReferenceTable()
	sample := &Sample{
		Family: FamilySoil,
		Values: map[string]float64{
			"soil_ph":    5.8,
			"nitrogen":   300,
			"phosphorus": 55,
			"potassium":  90,
			"mystery":    1,
		},
	}

	got := Summarize(sample, table)
	want := Summary{
		Lacking: []Finding{
			{Key: "soil_ph", Label: "Soil pH", Value: 5.8, Unit: ""},
			{Key: "potassium", Label: "Potassium (K)", Value: 90, Unit: "kg/ha"},
		},
		Excess: []Finding{
			{Key: "phosphorus", Label: "Phosphorus (P)", Value: 55, Unit: "kg/ha"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, StatusRed, Indicator(got, true))
}

func TestIndicator(t *testing.T) {
	require.Equal(t, StatusGray, Indicator(Summary{}, false))
	require.Equal(t, StatusGreen, Indicator(Summary{}, true))
	require.Equal(t, StatusAmber, Indicator(Summary{Lacking: []Finding{{Key: "n"}}}, true))
}

func TestClassifySampleMarksMissingGray(t *testing.T) {
	table := DefaultReferenceTable()
	sample := &Sample{Family: FamilySoil, Values: map[string]float64{"nitrogen": 260}}

	got := ClassifySample(sample, table, DefaultMargin)
	require.Len(t, got, len(table.Parameters(FamilySoil)))

	byKey := make(map[string]Classification, len(got))
	for _, c := range got {
		byKey[c.Key] = c
	}
	require.Equal(t, StatusAmber, byKey["nitrogen"].Status)
	require.Equal(t, DirectionDeficiency, byKey["nitrogen"].Direction)
	require.Equal(t, "Apply recommended dose of nitrogen fertilizer.", byKey["nitrogen"].Advisory)
	require.Equal(t, StatusGray, byKey["soil_ph"].Status)
	require.Nil(t, byKey["soil_ph"].Value)
	require.Equal(t, StatusAmber, WorstStatus(got))
}

func TestDeficiencyAlertsUseLatestPerMetric(t *testing.T) {
	table := DefaultReferenceTable()
	rows := []AnalyticsRow{
		{FieldID: "f1", MetricType: "N", MetricValue: ptr(100), RecordedDate: day("2024-01-01")},
		{FieldID: "f1", MetricType: "N", MetricValue: ptr(265), RecordedDate: day("2024-06-01")},
		{FieldID: "f1", MetricType: "soil_ph", MetricValue: ptr(6.8), RecordedDate: day("2024-03-01")},
		{FieldID: "f1", MetricType: "K", MetricValue: nil, RecordedDate: day("2024-07-01")},
		{FieldID: "f1", MetricType: "P", MetricValue: ptr(80), RecordedDate: day("2024-02-01")},
	}

	got := DeficiencyAlerts(rows, FamilySoil, table, DefaultMargin)
	want := []Alert{
		{Key: "soil_ph", Label: "Soil pH", Value: 6.8, Status: StatusGreen},
		{Key: "nitrogen", Label: "Nitrogen (N)", Value: 265, Status: StatusAmber, Advisory: "Apply recommended dose of nitrogen fertilizer."},
		{Key: "phosphorus", Label: "Phosphorus (P)", Value: 80, Status: StatusRed, Advisory: "Reduce phosphorus application, avoid over-fertilization."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("alerts mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestFromAnalytics(t *testing.T) {
	table := DefaultReferenceTable()
	rows := []AnalyticsRow{
		{FieldID: "f1", MetricType: "N", MetricValue: ptr(300), RecordedDate: day("2024-05-01")},
		{FieldID: "f1", MetricType: "P", MetricValue: ptr(30), RecordedDate: day("2024-04-01")},
		{FieldID: "f1", MetricType: "unknown", MetricValue: ptr(1), RecordedDate: day("2024-09-01")},
	}

	got := LatestFromAnalytics(rows, FamilySoil, table)
	require.NotNil(t, got)
	require.Equal(t, SourceAnalytics, got.Source)
	require.Equal(t, day("2024-05-01"), got.RecordedDate)
	require.Equal(t, map[string]float64{"nitrogen": 300, "phosphorus": 30}, got.Values)

	require.Nil(t, LatestFromAnalytics(nil, FamilySoil, table))
}

func TestSelectLatest(t *testing.T) {
	manual := &Sample{ID: "m", RecordedDate: day("2024-05-01")}
	newer := &Sample{ID: "a", RecordedDate: day("2024-06-01")}
	same := &Sample{ID: "a", RecordedDate: day("2024-05-01")}

	require.Nil(t, SelectLatest(nil, nil, TiePrefersManual))
	require.Equal(t, "m", SelectLatest(manual, nil, TiePrefersManual).ID)
	require.Equal(t, "a", SelectLatest(nil, newer, TiePrefersManual).ID)
	require.Equal(t, "a", SelectLatest(manual, newer, TiePrefersManual).ID)
	require.Equal(t, "m", SelectLatest(manual, same, TiePrefersManual).ID)
	require.Equal(t, "a", SelectLatest(manual, same, TiePrefersAnalytics).ID)
	require.Equal(t, TiePrefersAnalytics, ParseTiePreference(" Analytics "))
	require.Equal(t, TiePrefersManual, ParseTiePreference("bogus"))
}

func TestNeedsTest(t *testing.T) {
	now := day("2025-06-15")

	require.True(t, NeedsTest(nil, now, 12))
	require.False(t, NeedsTest(&Sample{RecordedDate: day("2024-06-01")}, now, 12))
	require.True(t, NeedsTest(&Sample{RecordedDate: day("2024-05-01")}, now, 12))
}

func TestValidateSubmission(t *testing.T) {
	table := DefaultReferenceTable()

	_, err := ValidateSubmission(FamilySoil, map[string]float64{}, table)
	require.EqualError(t, err, EmptySubmissionMessage)

	_, err = ValidateSubmission(FamilySoil, map[string]float64{"N": 300, "bogus": 1}, table)
	require.ErrorContains(t, err, "bogus")

	_, err = ValidateSubmission(FamilyWeather, map[string]float64{"windspeed_10m_max": 3}, table)
	require.Error(t, err)

	got, err := ValidateSubmission(FamilyWater, map[string]float64{"pH": 7.1, "tds": 320}, table)
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"ph": 7.1, "tds": 320}, got)
}

func TestDeficiencyAlertsSkipMetricWhenNewestRowIsNull(t *testing.T) {
	table := DefaultReferenceTable()
	rows := []AnalyticsRow{
		{FieldID: "f1", MetricType: "N", MetricValue: ptr(100), RecordedDate: day("2024-01-01")},
		{FieldID: "f1", MetricType: "N", MetricValue: nil, RecordedDate: day("2024-06-01")},
		{FieldID: "f1", MetricType: "soil_ph", MetricValue: ptr(6.8), RecordedDate: day("2024-03-01")},
	}

	got := DeficiencyAlerts(rows, FamilySoil, table, DefaultMargin)
	require.Len(t, got, 1)
	require.Equal(t, "soil_ph", got[0].Key)

	// the latest sample still carries the last known nitrogen reading
	sample := LatestFromAnalytics(rows, FamilySoil, table)
	require.NotNil(t, sample)
	require.Equal(t, 100.0, sample.Values["nitrogen"])
}

func TestMeasured(t *testing.T) {
	table := DefaultReferenceTable()
	placeholder := &Sample{Family: FamilyWater, Values: map[string]float64{}}
	require.False(t, Measured(ClassifySample(placeholder, table, DefaultMargin)))
	require.False(t, Measured(nil))

	sample := &Sample{Family: FamilyWater, Values: map[string]float64{"tds": 300}}
	require.True(t, Measured(ClassifySample(sample, table, DefaultMargin)))
}
