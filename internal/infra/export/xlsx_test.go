package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

func TestXLSXExport(t *testing.T) {
	table := agronomy.DefaultReferenceTable()
	params := table.Parameters(agronomy.FamilySoil)[:3]
	samples := []agronomy.Sample{
		{
			Family:       agronomy.FamilySoil,
			Source:       agronomy.SourceManual,
			RecordedDate: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
			Values:       map[string]float64{"soil_ph": 6.5, "nitrogen": 300},
		},
		{
			Family:       agronomy.FamilySoil,
			Source:       agronomy.SourceManual,
			RecordedDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			Values:       map[string]float64{"ec": 0.4},
		},
	}

	exp := NewXLSX()
	data, err := exp.Export(agronomy.FamilySoil, params, samples)
	require.NoError(t, err)
	require.Equal(t, ".xlsx", exp.Extension())

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Soil tests")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"Date", "Source", "Soil pH", "EC (dS/m)", "Nitrogen (N) (kg/ha)"}, rows[0])
	require.Equal(t, "2025-05-02", rows[1][0])
	require.Equal(t, "manual", rows[1][1])
	require.Equal(t, "6.5", rows[1][2])
	require.Equal(t, "2024-04-01", rows[2][0])
	require.Equal(t, "0.4", rows[2][3])
}

func TestXLSXExportEmptyHistory(t *testing.T) {
	data, err := NewXLSX().Export(agronomy.FamilyWater, nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Water tests")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
