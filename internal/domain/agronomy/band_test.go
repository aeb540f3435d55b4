package agronomy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestClassifySoilPH(t *testing.T) {
	band := Band{Min: 6, Max: 7.5}

	require.Equal(t, StatusGreen, Classify(ptr(6.5), band, DefaultMargin))
	require.Equal(t, StatusAmber, Classify(ptr(5.8), band, DefaultMargin))
	require.Equal(t, StatusRed, Classify(ptr(5.0), band, DefaultMargin))
	require.Equal(t, StatusGray, Classify(nil, band, DefaultMargin))
}

func TestClassifyBoundaries(t *testing.T) {
	band := Band{Min: 20, Max: 40}

	require.Equal(t, StatusGreen, ClassifyValue(20, band, DefaultMargin))
	require.Equal(t, StatusGreen, ClassifyValue(40, band, DefaultMargin))
	require.Equal(t, StatusAmber, ClassifyValue(17, band, DefaultMargin))
	require.Equal(t, StatusAmber, ClassifyValue(43, band, DefaultMargin))
	require.Equal(t, StatusRed, ClassifyValue(16.9, band, DefaultMargin))
	require.Equal(t, StatusRed, ClassifyValue(43.1, band, DefaultMargin))
}

func TestClassifyZeroWidthBand(t *testing.T) {
	band := Band{Min: 0, Max: 0}

	require.Equal(t, StatusGreen, ClassifyValue(0, band, DefaultMargin))
	require.Equal(t, StatusRed, ClassifyValue(0.001, band, DefaultMargin))
	require.Equal(t, StatusRed, ClassifyValue(-0.001, band, DefaultMargin))
}

func TestClassifyInvalidInputs(t *testing.T) {
	band := Band{Min: 6, Max: 7.5}

	require.Equal(t, StatusGray, ClassifyValue(math.NaN(), band, DefaultMargin))
	require.Equal(t, StatusRed, ClassifyValue(5.9, band, -1))
	require.Equal(t, StatusRed, ClassifyValue(5.9, band, math.NaN()))
}

func TestClassifyIsMonotonicAwayFromBand(t *testing.T) {
	band := Band{Min: 120, Max: 250}

	prev := StatusGreen
	for v := 250.0; v <= 400; v += 0.5 {
		got := ClassifyValue(v, band, DefaultMargin)
		require.GreaterOrEqual(t, got.Rank(), prev.Rank(), "value %v", v)
		prev = got
	}
	prev = StatusGreen
	for v := 120.0; v >= 0; v -= 0.5 {
		got := ClassifyValue(v, band, DefaultMargin)
		require.GreaterOrEqual(t, got.Rank(), prev.Rank(), "value %v", v)
		prev = got
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	band := Band{Min: 280, Max: 450}
	for _, v := range []float64{100, 260, 300, 470, 900} {
		first := ClassifyValue(v, band, DefaultMargin)
		require.Equal(t, first, ClassifyValue(v, band, DefaultMargin))
	}
}

func TestBandDirection(t *testing.T) {
	band := Band{Min: 6, Max: 7.5}

	require.Equal(t, DirectionDeficiency, band.Direction(5))
	require.Equal(t, DirectionExcess, band.Direction(8))
	require.Equal(t, DirectionNone, band.Direction(7))
	require.Zero(t, Band{Min: 5, Max: 1}.Width())
}

func TestWorse(t *testing.T) {
	require.Equal(t, StatusRed, Worse(StatusAmber, StatusRed))
	require.Equal(t, StatusAmber, Worse(StatusAmber, StatusGreen))
	require.Equal(t, StatusGreen, Worse(StatusGray, StatusGreen))
}

func TestAdvisoryText(t *testing.T) {
	require.Equal(t, "Apply recommended dose of nitrogen fertilizer.", AdvisoryText("nitrogen", DirectionDeficiency))
	require.Equal(t, "Reduce lime application or use acidifying amendments.", AdvisoryText("soil_ph", DirectionExcess))
	require.Empty(t, AdvisoryText("zn", DirectionDeficiency))
	require.Empty(t, AdvisoryText("nitrogen", DirectionNone))
}

func TestReferenceTableResolve(t *testing.T) {
	table := DefaultReferenceTable()

	p, ok := table.Resolve(FamilySoil, "N")
	require.True(t, ok)
	require.Equal(t, "nitrogen", p.Key)

	p, ok = table.Resolve(FamilySoil, "pH")
	require.True(t, ok)
	require.Equal(t, "soil_ph", p.Key)

	p, ok = table.Resolve(FamilyWater, "pH")
	require.True(t, ok)
	require.Equal(t, "ph", p.Key)
	require.Equal(t, Band{Min: 6.5, Max: 8.4}, p.Green)

	_, ok = table.Resolve(FamilySoil, "unobtainium")
	require.False(t, ok)

	soil := table.Parameters(FamilySoil)
	require.Len(t, soil, 14)
	require.Equal(t, "soil_ph", soil[0].Key)
	require.Len(t, table.Parameters(FamilyWater), 17)
}
