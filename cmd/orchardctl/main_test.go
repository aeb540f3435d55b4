package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyTable(t *testing.T) {
	out, err := execute(t, "classify", "--family", "soil", "soil_ph=5.8", "nitrogen=300")
	require.NoError(t, err)
	require.Contains(t, out, "Soil pH")
	require.Contains(t, out, "amber")
	require.Contains(t, out, "Indicator: amber (1 lacking, 0 excess)")
}

func TestClassifyJSON(t *testing.T) {
	out, err := execute(t, "classify", "--json", "--family", "soil", "soil_ph=5.0")
	require.NoError(t, err)

	var res classifyResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, agronomy.StatusAmber, res.Indicator)
	for _, c := range res.Classifications {
		if c.Key == "soil_ph" {
			require.Equal(t, agronomy.StatusRed, c.Status)
		}
	}
}

func TestClassifyRejectsMalformedReading(t *testing.T) {
	_, err := execute(t, "classify", "soil_ph")
	require.Error(t, err)

	_, err = execute(t, "classify", "soil_ph=abc")
	require.Error(t, err)

	_, err = execute(t, "classify", "--family", "water", "unknown_key=1")
	require.Error(t, err)
}

func TestMigrateDryRun(t *testing.T) {
	out, err := execute(t, "migrate", "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "0001_lab_samples.sql")
	require.Contains(t, out, "0002_consultations.sql")
}

func TestOutlookRequiresCoordinates(t *testing.T) {
	_, err := execute(t, "outlook")
	require.Error(t, err)
}
