package forecastcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
)

func TestMemoryStoreExpires(t *testing.T) {
	now := time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	fc := forecast.Forecast{Source: "open-meteo", Days: []forecast.Day{{Date: "2025-04-01"}}}
	require.NoError(t, store.Save(context.Background(), "k", fc, time.Hour))

	got, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "open-meteo", got.Source)

	now = now.Add(2 * time.Hour)
	_, ok, err = store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreWithoutTTL(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "k", forecast.Forecast{}, 0))

	_, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}
