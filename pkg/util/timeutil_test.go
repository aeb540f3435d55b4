package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	ts, err := ParseDate(" 2025-03-09 ")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), ts)

	ts, err = ParseDate("2025-03-09T10:00:00+05:30")
	require.NoError(t, err)
	require.Equal(t, 4, ts.Hour())

	_, err = ParseDate("09/03/2025")
	require.Error(t, err)
}

func TestMonthsBetween(t *testing.T) {
	then := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 12, MonthsBetween(then, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 13, MonthsBetween(then, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 0, MonthsBetween(then, then))
}
